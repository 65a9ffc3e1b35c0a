package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/auth"
	"github.com/frahmantamala/task-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var _ = Describe("Auth Handler", func() {
	var (
		handler *auth.Handler
		service *auth.Service
	)

	login := func(username, password string) *httptest.ResponseRecorder {
		body := `{"username":"` + username + `","password":"` + password + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.Login(w, req)
		return w
	}

	BeforeEach(func() {
		tokenGen := auth.NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, 24*time.Hour)
		service = auth.NewService(newMockUserRepository(), tokenGen, auth.NewMemoryBlacklist(), auth.ServiceConfig{RotateRefreshTokens: true}, quietLogger())
		handler = auth.NewHandler(transport.NewBaseHandler(quietLogger()), service, internal.CookieConfig{SameSite: "lax"})
	})

	Describe("Login", func() {
		It("returns the access token and sets an http-only refresh cookie", func() {
			w := login("kim", "correct_password")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp auth.LoginResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Access).NotTo(BeEmpty())
			Expect(resp.User.Username).To(Equal("kim"))

			cookie := findCookie(w, auth.RefreshTokenCookie)
			Expect(cookie).NotTo(BeNil())
			Expect(cookie.HttpOnly).To(BeTrue())
			Expect(cookie.Path).To(Equal("/"))
			Expect(cookie.MaxAge).To(Equal(int((30 * 24 * time.Hour).Seconds())))
		})

		It("returns 401 for invalid credentials", func() {
			w := login("kim", "nope")

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring("Invalid credentials"))
			Expect(findCookie(w, auth.RefreshTokenCookie)).To(BeNil())
		})
	})

	Describe("RefreshToken", func() {
		It("returns 401 when the cookie is missing", func() {
			w := httptest.NewRecorder()
			handler.RefreshToken(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil))

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring("Refresh token not found"))
		})

		It("rotates the cookie and rejects the old token afterwards", func() {
			old := findCookie(login("kim", "correct_password"), auth.RefreshTokenCookie)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
			req.AddCookie(old)
			w := httptest.NewRecorder()
			handler.RefreshToken(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"access"`))
			rotated := findCookie(w, auth.RefreshTokenCookie)
			Expect(rotated).NotTo(BeNil())
			Expect(rotated.Value).NotTo(Equal(old.Value))

			again := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
			again.AddCookie(old)
			w = httptest.NewRecorder()
			handler.RefreshToken(w, again)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring("Refresh token is blacklisted"))
		})
	})

	Describe("Logout", func() {
		It("blacklists the refresh token and clears the cookie", func() {
			cookie := findCookie(login("kim", "correct_password"), auth.RefreshTokenCookie)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
			req.AddCookie(cookie)
			w := httptest.NewRecorder()
			handler.Logout(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			cleared := findCookie(w, auth.RefreshTokenCookie)
			Expect(cleared).NotTo(BeNil())
			Expect(cleared.MaxAge).To(BeNumerically("<", 0))

			_, err := service.Refresh(req.Context(), cookie.Value)
			Expect(err).To(Equal(auth.ErrRefreshTokenBlacklisted))
		})
	})

	Describe("AuthMiddleware", func() {
		var (
			access   string
			captured *internal.Principal
			next     http.Handler
		)

		BeforeEach(func() {
			captured = nil
			var resp auth.LoginResponse
			Expect(json.Unmarshal(login("kim", "correct_password").Body.Bytes(), &resp)).To(Succeed())
			access = resp.Access
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured, _ = internal.PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})
		})

		It("accepts a bearer token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+access)
			w := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(captured).NotTo(BeNil())
			Expect(captured.ID).To(Equal(int64(1)))
			Expect(captured.Role).To(Equal("EMPLOYEE"))
		})

		It("accepts the access_token cookie", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.AddCookie(&http.Cookie{Name: transport.AccessTokenCookie, Value: access})
			w := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(captured.Username).To(Equal("kim"))
		})

		It("rejects missing and invalid tokens", func() {
			w := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			Expect(w.Code).To(Equal(http.StatusUnauthorized))

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Authorization", "Bearer invalid")
			w = httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(captured).To(BeNil())
		})
	})
})
