// Package token mints short-lived JWT access tokens and opaque refresh
// token values.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/eventra-hq/eventra/internal/model"
)

// ErrMissingSecret is returned by NewIssuer when no signing secret is
// configured. Callers are expected to treat it as fatal at startup.
var ErrMissingSecret = errors.New("jwt signing secret is not configured")

// refreshValueBytes sizes the random refresh token value (256 bits before
// encoding).
const refreshValueBytes = 32

// Claims are the access-token claims: registered subject/expiry plus the
// caller's email and role.
type Claims struct {
	jwt.RegisteredClaims
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// Issuer mints access and refresh tokens with configured TTLs.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewIssuer constructs an Issuer. An empty secret is a configuration error,
// not something to detect per request.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive (access %v, refresh %v)", accessTTL, refreshTTL)
	}
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// IssueAccess signs a stateless HS256 access token for the given user.
func (i *Issuer) IssueAccess(userID, email string, role model.Role) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
		Email: email,
		Role:  role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccess validates a signed access token and returns its claims.
func (i *Issuer) ParseAccess(signed string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return &claims, nil
}

// IssueRefresh builds a new refresh token record for userID with a
// cryptographically unguessable value. The record is not persisted here.
func (i *Issuer) IssueRefresh(userID string) (*model.RefreshToken, error) {
	value, err := randomValue()
	if err != nil {
		return nil, err
	}
	now := i.now().UTC()
	return &model.RefreshToken{
		ID:        uuid.New().String(),
		Token:     value,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(i.refreshTTL),
	}, nil
}

func randomValue() (string, error) {
	buf := make([]byte, refreshValueBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token value: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
