// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

var (
	ErrEmailTaken         = apperr.New(apperr.KindConflict, "an account with this email already exists").WithCode("email_taken")
	ErrInvalidCredentials = apperr.New(apperr.KindNotAuthenticated, "invalid email or password").WithCode("invalid_credentials")
	ErrSessionExpired     = apperr.New(apperr.KindNotAuthenticated, "session expired, please log in again").WithCode("session_expired")
)

// Service handles user business logic
type Service struct {
	repo            Repository
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	sessions        auth.SessionStore
	log             logrus.FieldLogger
}

// NewService creates a new user service. sessions may be nil, in which case
// tokens stay valid until they expire.
func NewService(repo Repository, passwords *auth.PasswordManager, tokens *auth.JWTManager, sessions auth.SessionStore, log logrus.FieldLogger) *Service {
	return &Service{
		repo:            repo,
		passwordManager: passwords,
		jwtManager:      tokens,
		sessions:        sessions,
		log:             log,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User      *User     `json:"user"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register creates a new user account and opens a session for it
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return nil, apperr.New(apperr.KindInvalidInput, "passwords do not match")
	}

	email := NormalizeEmail(req.Email)
	if email == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "email is required")
	}

	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err, err.Error())
	}

	u := &User{
		Email:    email,
		Password: hashedPassword,
		Role:     ParseRole(req.Role),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")

	return s.openSession(ctx, u)
}

// Login authenticates a user
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, u)
}

func (s *Service) openSession(ctx context.Context, u *User) (*AuthResponse, error) {
	token, claims, err := s.jwtManager.GenerateSessionToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to open session")
	}

	if s.sessions != nil {
		if err := s.sessions.Save(ctx, claims.SessionID(), u.ID, s.jwtManager.Expiry()); err != nil {
			return nil, apperr.Storage(err, "store session")
		}
	}

	return &AuthResponse{
		User:      u,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authenticate resolves a session token to its caller
func (s *Service) Authenticate(ctx context.Context, token string) (Caller, *auth.Claims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return Anonymous, nil, ErrSessionExpired
	}

	if s.sessions != nil {
		active, err := s.sessions.Active(ctx, claims.SessionID())
		if err != nil {
			return Anonymous, nil, apperr.Storage(err, "look up session")
		}
		if !active {
			return Anonymous, nil, ErrSessionExpired
		}
	}

	return Caller{UserID: claims.UserID, Role: ParseRole(claims.Role), Email: claims.Email}, claims, nil
}

// Logout revokes a session. Logging out an unknown session succeeds.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || s.sessions == nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID()); err != nil {
		return apperr.Storage(err, "revoke session")
	}
	return nil
}

// Me returns the account behind the caller
func (s *Service) Me(ctx context.Context, caller Caller) (*User, error) {
	if err := caller.RequireAuthenticated(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return u, nil
}
