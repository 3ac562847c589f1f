package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventra-hq/eventra/internal/model"
)

const eventColumns = `id, title, type, location, status, date, description,
	total_slots, occupied_slots, organizer_id, created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// isUniqueViolation reports whether err is a violation of the named unique
// constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Type, &e.Location, &e.Status, &e.Date,
		&e.Description, &e.TotalSlots, &e.OccupiedSlots, &e.OrganizerID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event owned by organizerID and returns it with a
// generated UUID.
func (r *EventRepository) Create(ctx context.Context, req model.CreateEventRequest, organizerID string) (*model.Event, error) {
	event := &model.Event{
		ID:            uuid.New().String(),
		Title:         req.Title,
		Type:          req.Type,
		Location:      req.Location,
		Status:        model.StatusScheduled,
		Date:          req.Date,
		Description:   req.Description,
		TotalSlots:    req.TotalSlots,
		OccupiedSlots: 0,
		OrganizerID:   organizerID,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, type, location, status, date, description,
			total_slots, occupied_slots, organizer_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		event.ID, event.Title, event.Type, event.Location, event.Status, event.Date,
		event.Description, event.TotalSlots, event.OccupiedSlots, event.OrganizerID, event.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "events_title_key") {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// List returns all events ordered by creation time descending.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Update applies a partial update inside a transaction. The event row is
// locked for the duration so a capacity resize cannot race an enrollment:
// shrinking total_slots below occupied_slots fails with
// ErrCapacityBelowOccupied and leaves the row untouched.
func (r *EventRepository) Update(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	event, err := scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Type != nil {
		event.Type = *req.Type
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.TotalSlots != nil {
		if *req.TotalSlots < event.OccupiedSlots {
			err = ErrCapacityBelowOccupied
			return nil, err
		}
		event.TotalSlots = *req.TotalSlots
	}

	_, err = tx.Exec(ctx,
		`UPDATE events
		 SET title = $2, type = $3, location = $4, status = $5, date = $6,
		     description = $7, total_slots = $8
		 WHERE id = $1`,
		event.ID, event.Title, event.Type, event.Location, event.Status,
		event.Date, event.Description, event.TotalSlots,
	)
	if err != nil {
		if isUniqueViolation(err, "events_title_key") {
			err = ErrDuplicateTitle
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return event, nil
}

// Delete removes an event and all of its registrations as one unit.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the event row first so in-flight enrollments drain before the
	// cascade runs.
	var one int
	err = tx.QueryRow(ctx,
		`SELECT 1 FROM events WHERE id = $1 FOR UPDATE`, id,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return err
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM registrations WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete registrations: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
