package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventra-hq/eventra/internal/model"
)

const tokenColumns = `id, token, user_id, created_at, expires_at, revoked_at`

// RefreshTokenRepository handles persistence for refresh tokens.
type RefreshTokenRepository struct {
	db *pgxpool.Pool
}

// NewRefreshTokenRepository constructs a RefreshTokenRepository.
func NewRefreshTokenRepository(db *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func scanToken(row pgx.Row) (*model.RefreshToken, error) {
	var t model.RefreshToken
	err := row.Scan(&t.ID, &t.Token, &t.UserID, &t.CreatedAt, &t.ExpiresAt, &t.RevokedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persists a freshly issued refresh token.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO refresh_tokens (id, token, user_id, created_at, expires_at, revoked_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		token.ID, token.Token, token.UserID, token.CreatedAt, token.ExpiresAt, token.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// GetByValue returns the token record holding value or ErrNotFound.
func (r *RefreshTokenRepository) GetByValue(ctx context.Context, value string) (*model.RefreshToken, error) {
	t, err := scanToken(r.db.QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM refresh_tokens WHERE token = $1`, value,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return t, nil
}

// Rotate atomically revokes the presented token and persists its replacement.
//
// The presented row is locked FOR UPDATE, so two concurrent redemptions of
// the same value serialise: the first commits the revocation, the second
// observes revoked_at set and fails with ErrTokenInactive. A crash between
// revoke and insert rolls both back, leaving the old token intact.
//
// replacement carries the new id/value/timestamps; its UserID is taken from
// the presented record. The revoked record is returned so the caller can
// mint a matching access token.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, presented string, now time.Time, replacement *model.RefreshToken) (*model.RefreshToken, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	old, err := scanToken(tx.QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM refresh_tokens WHERE token = $1 FOR UPDATE`,
		presented,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return nil, err
		}
		return nil, fmt.Errorf("lock refresh token: %w", err)
	}

	if !old.IsActive(now) {
		err = ErrTokenInactive
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $2 WHERE id = $1`,
		old.ID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	replacement.UserID = old.UserID
	_, err = tx.Exec(ctx,
		`INSERT INTO refresh_tokens (id, token, user_id, created_at, expires_at, revoked_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		replacement.ID, replacement.Token, replacement.UserID,
		replacement.CreatedAt, replacement.ExpiresAt, replacement.RevokedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert replacement token: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	revokedAt := now
	old.RevokedAt = &revokedAt
	return old, nil
}

// Revoke marks the token holding value as revoked. Unknown or already
// revoked values are a silent no-op so logout never acts as an existence
// oracle.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, value string, now time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $2 WHERE token = $1 AND revoked_at IS NULL`,
		value, now,
	)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// PurgeExpired deletes token records whose expiry has passed. Run
// periodically; redeemability never depends on it.
func (r *RefreshTokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= $1`, now,
	)
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
