package service

import (
	"context"
	"log/slog"

	"github.com/nestsplit/nestsplit/internal/auth"
	"github.com/nestsplit/nestsplit/internal/models"
	"github.com/nestsplit/nestsplit/internal/storage"
)

// AuthService combines an authenticator with token issuance so the
// HTTP layer deals in a single Register/Login surface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
}

// NewAuthService creates an AuthService.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
	}
}

// Register creates an account and logs the user straight in.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*models.User, string, error) {
	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}
	slog.Info("User registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// CurrentUser loads the account behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUserByID(ctx, userID)
}
