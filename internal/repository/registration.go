package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventra-hq/eventra/internal/model"
)

// RegistrationRepository handles persistence for registrations and owns the
// slot accounting that goes with them.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Enroll performs a concurrency-safe registration inside a serialised
// transaction.
//
// Two naive concurrent enrollments can both read occupied_slots = total - 1
// and both commit, overbooking the event. SELECT ... FOR UPDATE takes a
// row-level exclusive lock on the event the moment the read executes, so
// every competing transaction queues behind it until COMMIT or ROLLBACK.
// The existence check, duplicate check, capacity guard, counter increment
// and registration insert all happen under that lock as one unit.
func (r *RegistrationRepository) Enroll(ctx context.Context, eventID, participantID string) (*model.Registration, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var totalSlots, occupiedSlots int
	err = tx.QueryRow(ctx,
		`SELECT total_slots, occupied_slots FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&totalSlots, &occupiedSlots)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return nil, err
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	var participantExists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND role = $2)`,
		participantID, model.RoleParticipant,
	).Scan(&participantExists)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !participantExists {
		err = ErrNotFound
		return nil, err
	}

	var dupCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND participant_id = $2`,
		eventID, participantID,
	).Scan(&dupCount)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dupCount > 0 {
		err = ErrAlreadyRegistered
		return nil, err
	}

	if occupiedSlots >= totalSlots {
		err = ErrEventFull
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET occupied_slots = occupied_slots + 1 WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("increment occupied_slots: %w", err)
	}

	reg := &model.Registration{
		ID:            uuid.New().String(),
		EventID:       eventID,
		ParticipantID: participantID,
		CreatedAt:     time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (id, event_id, participant_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		reg.ID, reg.EventID, reg.ParticipantID, reg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return reg, nil
}

// Cancel deletes a registration and releases its slot in one transaction.
// The decrement clamps at zero so an externally desynced counter can never
// go negative.
func (r *RegistrationRepository) Cancel(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var eventID string
	err = tx.QueryRow(ctx,
		`SELECT event_id FROM registrations WHERE id = $1`, id,
	).Scan(&eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return err
		}
		return fmt.Errorf("get registration: %w", err)
	}

	// Same lock order as Enroll: event row first, registrations second.
	var one int
	err = tx.QueryRow(ctx,
		`SELECT 1 FROM events WHERE id = $1 FOR UPDATE`, eventID,
	).Scan(&one)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lock event row: %w", err)
	}
	err = nil

	tag, err := tx.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrNotFound
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET occupied_slots = GREATEST(occupied_slots - 1, 0) WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("decrement occupied_slots: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID returns a single registration or ErrNotFound.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.QueryRow(ctx,
		`SELECT id, event_id, participant_id, created_at FROM registrations WHERE id = $1`,
		id,
	).Scan(&reg.ID, &reg.EventID, &reg.ParticipantID, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &reg, nil
}

// List returns every registration, oldest first.
func (r *RegistrationRepository) List(ctx context.Context) ([]model.Registration, error) {
	return r.list(ctx,
		`SELECT id, event_id, participant_id, created_at FROM registrations ORDER BY created_at ASC`)
}

// ListByEvent returns all registrations for a given event.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	return r.list(ctx,
		`SELECT id, event_id, participant_id, created_at FROM registrations
		 WHERE event_id = $1 ORDER BY created_at ASC`, eventID)
}

// ListByParticipant returns all registrations held by a participant.
func (r *RegistrationRepository) ListByParticipant(ctx context.Context, participantID string) ([]model.Registration, error) {
	return r.list(ctx,
		`SELECT id, event_id, participant_id, created_at FROM registrations
		 WHERE participant_id = $1 ORDER BY created_at ASC`, participantID)
}

func (r *RegistrationRepository) list(ctx context.Context, query string, args ...any) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.ParticipantID, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
