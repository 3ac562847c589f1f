package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventra-hq/eventra/internal/model"
)

const userColumns = `id, name, email, password_hash, role, created_at`

// UserRepository handles persistence for user accounts.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. A taken email fails with ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID returns a single user or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail returns the user holding email or ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// List returns all users ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Update applies a partial profile update. Nil fields are left untouched;
// passwordHash must already be hashed by the caller.
func (r *UserRepository) Update(ctx context.Context, id string, name, email, passwordHash *string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	user, err := scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return err
		}
		return fmt.Errorf("lock user row: %w", err)
	}

	if name != nil {
		user.Name = *name
	}
	if email != nil {
		user.Email = *email
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET name = $2, email = $3, password_hash = $4 WHERE id = $1`,
		user.ID, user.Name, user.Email, user.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			err = ErrDuplicateEmail
			return err
		}
		return fmt.Errorf("update user: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete removes a user and everything that exists only in relation to it,
// as one all-or-nothing transaction:
//
//   - an organizer's events and all registrations for those events
//   - a participant's registrations, releasing one slot per registered event
//   - every refresh token held by the user
//
// Partial completion would leave slot counters stale, so any failure rolls
// the whole cascade back.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var role model.Role
	err = tx.QueryRow(ctx,
		`SELECT role FROM users WHERE id = $1 FOR UPDATE`, id,
	).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return err
		}
		return fmt.Errorf("lock user row: %w", err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("delete refresh tokens: %w", err)
	}

	switch role {
	case model.RoleOrganizer:
		_, err = tx.Exec(ctx,
			`DELETE FROM registrations
			 WHERE event_id IN (SELECT id FROM events WHERE organizer_id = $1)`, id)
		if err != nil {
			return fmt.Errorf("delete event registrations: %w", err)
		}
		if _, err = tx.Exec(ctx, `DELETE FROM events WHERE organizer_id = $1`, id); err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
	case model.RoleParticipant:
		// One registration per (event, participant), so each registered
		// event releases exactly one slot. Clamped at zero like Cancel.
		_, err = tx.Exec(ctx,
			`UPDATE events SET occupied_slots = GREATEST(occupied_slots - 1, 0)
			 WHERE id IN (SELECT event_id FROM registrations WHERE participant_id = $1)`, id)
		if err != nil {
			return fmt.Errorf("release slots: %w", err)
		}
		if _, err = tx.Exec(ctx, `DELETE FROM registrations WHERE participant_id = $1`, id); err != nil {
			return fmt.Errorf("delete registrations: %w", err)
		}
	}

	if _, err = tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
