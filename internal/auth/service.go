package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/core/common/validation"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	GetCredentialsByUsername(ctx context.Context, username string) (*UserCredentials, error)
	GetCredentialsByID(ctx context.Context, id int64) (*UserCredentials, error)
}

type ServiceConfig struct {
	RotateRefreshTokens bool
}

type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	blacklist      Blacklist
	cfg            ServiceConfig
	logger         *slog.Logger
	now            func() time.Time
}

func NewService(userRepo UserRepository, tokenGen TokenGenerator, blacklist Blacklist, cfg ServiceConfig, logger *slog.Logger) *Service {
	if blacklist == nil {
		blacklist = NewMemoryBlacklist()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		blacklist:      blacklist,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

// Authenticate checks the password and issues an access and refresh token pair.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	creds, err := s.userRepo.GetCredentialsByUsername(ctx, dto.Username)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if creds == nil {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}
	if !creds.IsActive {
		return nil, internal.ErrUserInactive
	}

	access, err := s.tokenGenerator.GenerateAccessToken(creds)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue access token", err)
	}
	refresh, refreshExp, err := s.tokenGenerator.GenerateRefreshToken(creds)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue refresh token", err)
	}

	s.logger.Info("user authenticated", "user_id", creds.ID, "username", creds.Username)

	return &LoginResult{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		User:             summaryFromCredentials(creds),
	}, nil
}

// Refresh exchanges a live, non-revoked refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenNotFound
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check token blacklist", err)
	}
	if revoked {
		return nil, ErrRefreshTokenBlacklisted
	}

	creds, err := s.userRepo.GetCredentialsByID(ctx, claims.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if creds == nil {
		return nil, internal.ErrInvalidToken
	}
	if !creds.IsActive {
		return nil, internal.ErrUserInactive
	}

	access, err := s.tokenGenerator.GenerateAccessToken(creds)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue access token", err)
	}
	result := &RefreshResult{AccessToken: access}

	if s.cfg.RotateRefreshTokens {
		if err := s.blacklist.Add(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
			return nil, internal.NewInternalError("failed to revoke refresh token", err)
		}
		result.RefreshToken, result.RefreshExpiresAt, err = s.tokenGenerator.GenerateRefreshToken(creds)
		if err != nil {
			return nil, internal.NewInternalError("failed to issue refresh token", err)
		}
	}

	return result, nil
}

// Logout revokes the refresh token. Tokens that no longer validate are
// already unusable and are ignored.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, internal.ErrTokenExpired) || errors.Is(err, internal.ErrInvalidToken) {
			s.logger.Debug("logout with unusable refresh token", "error", err)
			return nil
		}
		return err
	}

	if err := s.blacklist.Add(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		return internal.NewInternalError("failed to revoke refresh token", err)
	}
	s.logger.Info("refresh token revoked", "user_id", claims.UserID, "jti", claims.ID)
	return nil
}

func (s *Service) ValidateAccessToken(_ context.Context, tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
