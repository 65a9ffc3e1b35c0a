package auth

import (
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims carries the caller identity inside both token types. The jti lives
// in RegisteredClaims.ID and keys the revocation blacklist.
type Claims struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	TokenType    string `json:"token_type"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the request-scoped caller.
func (c *Claims) Principal() *internal.Principal {
	return &internal.Principal{
		ID:           c.UserID,
		Username:     c.Username,
		Role:         c.Role,
		DepartmentID: c.DepartmentID,
	}
}

// Remaining returns how long the token stays valid, never negative.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Time.Sub(now); d > 0 {
		return d
	}
	return 0
}

// UserCredentials is what the login flow needs from the user store.
type UserCredentials struct {
	ID           int64
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	Role         string
	Rank         string
	DepartmentID *int64
	IsActive     bool
}

type LoginResult struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             UserSummary
}

// RefreshResult holds a new access token and, when rotation is on, a
// replacement refresh token.
type RefreshResult struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

var (
	ErrRefreshTokenNotFound    = internal.NewUnauthorizedError("Refresh token not found", internal.ErrCodeInvalidToken)
	ErrRefreshTokenBlacklisted = internal.NewUnauthorizedError("Refresh token is blacklisted", internal.ErrCodeTokenRevoked)
)
