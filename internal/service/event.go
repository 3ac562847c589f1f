package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventra-hq/eventra/internal/model"
)

// maxCapacity bounds total_slots to keep obviously bogus requests out.
const maxCapacity = 100_000

// EventStore is the persistence contract the event service depends on.
type EventStore interface {
	Create(ctx context.Context, req model.CreateEventRequest, organizerID string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService orchestrates event-related business operations.
type EventService struct {
	events EventStore
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore) *EventService {
	return &EventService{events: events}
}

// Create validates the request and creates an event owned by the caller.
// Only organizers and admins create events.
func (s *EventService) Create(ctx context.Context, caller model.Identity, req model.CreateEventRequest) (*model.Event, error) {
	if caller.Role != model.RoleOrganizer && caller.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, fmt.Errorf("%w: event title is required", ErrValidation)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: event date is required", ErrValidation)
	}
	if req.TotalSlots <= 0 {
		return nil, fmt.Errorf("%w: total_slots must be a positive integer", ErrValidation)
	}
	if req.TotalSlots > maxCapacity {
		return nil, fmt.Errorf("%w: total_slots cannot exceed %d", ErrValidation, maxCapacity)
	}

	return s.events.Create(ctx, req, caller.UserID)
}

// List returns all events.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// Get returns a single event by ID.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	return s.events.GetByID(ctx, id)
}

// Update applies a partial update to an event the caller owns. Shrinking
// capacity below committed enrollments is rejected by the store.
func (s *EventService) Update(ctx context.Context, caller model.Identity, id string, req model.UpdateEventRequest) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanManage(caller, event.OrganizerID) {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: event title cannot be empty", ErrValidation)
		}
		req.Title = &trimmed
	}
	if req.Status != nil && !model.ValidStatus(*req.Status) {
		return nil, fmt.Errorf("%w: unknown event status %q", ErrValidation, *req.Status)
	}
	if req.TotalSlots != nil {
		if *req.TotalSlots <= 0 {
			return nil, fmt.Errorf("%w: total_slots must be a positive integer", ErrValidation)
		}
		if *req.TotalSlots > maxCapacity {
			return nil, fmt.Errorf("%w: total_slots cannot exceed %d", ErrValidation, maxCapacity)
		}
	}

	return s.events.Update(ctx, id, req)
}

// Delete removes an event the caller owns, together with all of its
// registrations.
func (s *EventService) Delete(ctx context.Context, caller model.Identity, id string) error {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !model.CanManage(caller, event.OrganizerID) {
		return ErrForbidden
	}
	return s.events.Delete(ctx, id)
}
