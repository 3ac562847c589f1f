package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. Statements are idempotent so repeated boots
// are safe without a migration tool.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id             UUID PRIMARY KEY,
	title          TEXT NOT NULL UNIQUE,
	type           TEXT NOT NULL,
	location       TEXT NOT NULL,
	status         TEXT NOT NULL,
	date           TIMESTAMPTZ NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	total_slots    INT NOT NULL CHECK (total_slots > 0),
	occupied_slots INT NOT NULL DEFAULT 0 CHECK (occupied_slots >= 0 AND occupied_slots <= total_slots),
	organizer_id   UUID NOT NULL REFERENCES users(id),
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS registrations (
	id             UUID PRIMARY KEY,
	event_id       UUID NOT NULL REFERENCES events(id),
	participant_id UUID NOT NULL REFERENCES users(id),
	created_at     TIMESTAMPTZ NOT NULL,
	UNIQUE (event_id, participant_id)
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	id         UUID PRIMARY KEY,
	token      TEXT NOT NULL UNIQUE,
	user_id    UUID NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	revoked_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_registrations_event ON registrations (event_id);
CREATE INDEX IF NOT EXISTS idx_registrations_participant ON registrations (participant_id);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens (user_id);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
