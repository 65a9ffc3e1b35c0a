package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/transport"
)

const RefreshTokenCookie = "refresh_token"

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	cookie  internal.CookieConfig
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI, cookie internal.CookieConfig) *Handler {
	if cookie.MaxAge == 0 {
		cookie.MaxAge = 30 * 24 * time.Hour
	}
	return &Handler{
		BaseHandler: base,
		Service:     svc,
		cookie:      cookie,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	result, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Login: authentication failed", "username", dto.Username, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	h.WriteJSON(w, http.StatusOK, LoginResponse{Access: result.AccessToken, User: result.User})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		h.HandleServiceError(w, ErrRefreshTokenNotFound)
		return
	}

	result, err := h.Service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.Logger.Warn("RefreshToken: refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	if result.RefreshToken != "" {
		h.setRefreshCookie(w, result.RefreshToken)
	}
	h.WriteJSON(w, http.StatusOK, RefreshResponse{Access: result.AccessToken})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = cookie.Value
	}

	if err := h.Service.Logout(r.Context(), token); err != nil {
		h.Logger.Error("Logout: failed to revoke refresh token", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.clearRefreshCookie(w)
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}

// AuthMiddleware authenticates the request from the bearer header or the
// access_token cookie and attaches the caller as an internal.Principal.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractAccessToken(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(r.Context(), token)
		if err != nil {
			h.Logger.Warn("auth middleware: token validation failed", "path", r.URL.Path, "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithPrincipal(r.Context(), claims.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSiteMode(),
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSiteMode(),
	})
}
