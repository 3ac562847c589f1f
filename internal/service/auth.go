package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventra-hq/eventra/internal/model"
	"github.com/eventra-hq/eventra/internal/repository"
	"github.com/eventra-hq/eventra/internal/token"
)

// minPasswordLength is the floor for new account passwords.
const minPasswordLength = 8

// TokenStore is the persistence contract for refresh tokens. Rotate must
// revoke the presented value and persist its replacement atomically.
type TokenStore interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	Rotate(ctx context.Context, presented string, now time.Time, replacement *model.RefreshToken) (*model.RefreshToken, error)
	Revoke(ctx context.Context, value string, now time.Time) error
}

// AuthService orchestrates account registration, login, token refresh and
// logout.
type AuthService struct {
	users  UserStore
	tokens TokenStore
	issuer *token.Issuer

	// now is swappable for tests.
	now func() time.Time
}

// NewAuthService constructs an AuthService with its dependencies.
func NewAuthService(users UserStore, tokens TokenStore, issuer *token.Issuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, issuer: issuer, now: time.Now}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, req model.RegisterUserRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !isValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: email is not a valid address", ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if !model.ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// Unknown email and wrong password collapse into one error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.TokenPair, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !verifyPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(ctx, user)
}

// Refresh rotates a refresh token: the presented value is revoked and a
// brand-new record issued in one atomic step, alongside a fresh access
// token. A value that has already been rotated always fails, whatever its
// nominal expiry; reuse of a revoked token is the replay signal rotation
// exists to create.
func (s *AuthService) Refresh(ctx context.Context, value string) (*model.TokenPair, error) {
	if value == "" {
		return nil, ErrInvalidRefreshToken
	}

	// UserID is filled in by the store from the presented record.
	replacement, err := s.issuer.IssueRefresh("")
	if err != nil {
		return nil, err
	}

	old, err := s.tokens.Rotate(ctx, value, s.now().UTC(), replacement)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrTokenInactive) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, old.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	access, err := s.issuer.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: replacement.Token}, nil
}

// Logout revokes the presented refresh token. Unknown values succeed
// silently and repeated calls are a no-op, so logout never confirms whether
// a token exists.
func (s *AuthService) Logout(ctx context.Context, value string) error {
	if value == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, value, s.now().UTC())
}

func (s *AuthService) issuePair(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	access, err := s.issuer.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, refresh); err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refresh.Token}, nil
}

func hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
