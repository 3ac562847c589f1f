package service

import (
	"context"
	"fmt"

	"github.com/eventra-hq/eventra/internal/model"
)

// RegistrationStore is the persistence contract the registration service
// depends on. Enroll and Cancel own the slot accounting: both apply the
// registration mutation and the occupied_slots change as one unit.
type RegistrationStore interface {
	Enroll(ctx context.Context, eventID, participantID string) (*model.Registration, error)
	Cancel(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	List(ctx context.Context) ([]model.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
	ListByParticipant(ctx context.Context, participantID string) ([]model.Registration, error)
}

// RegistrationService orchestrates enroll/cancel on top of the
// capacity-safe store.
type RegistrationService struct {
	registrations RegistrationStore
	events        EventStore
}

// NewRegistrationService constructs a RegistrationService with its
// dependencies.
func NewRegistrationService(registrations RegistrationStore, events EventStore) *RegistrationService {
	return &RegistrationService{registrations: registrations, events: events}
}

// Enroll registers the calling participant for an event. The store rejects
// full events and duplicate (event, participant) pairs with the
// corresponding conflict errors.
func (s *RegistrationService) Enroll(ctx context.Context, caller model.Identity, eventID string) (*model.Registration, error) {
	if caller.Role != model.RoleParticipant {
		return nil, ErrForbidden
	}
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	return s.registrations.Enroll(ctx, eventID, caller.UserID)
}

// Cancel removes a registration owned by the caller (or any registration,
// for admins) and releases its slot.
func (s *RegistrationService) Cancel(ctx context.Context, caller model.Identity, id string) error {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !model.CanManage(caller, reg.ParticipantID) {
		return ErrForbidden
	}
	return s.registrations.Cancel(ctx, id)
}

// Get returns a registration visible to the caller: its holder or an admin.
func (s *RegistrationService) Get(ctx context.Context, caller model.Identity, id string) (*model.Registration, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanManage(caller, reg.ParticipantID) {
		return nil, ErrForbidden
	}
	return reg, nil
}

// List returns every registration. Admin only.
func (s *RegistrationService) List(ctx context.Context, caller model.Identity) ([]model.Registration, error) {
	if caller.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.registrations.List(ctx)
}

// ListByEvent returns all registrations for an event.
func (s *RegistrationService) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.registrations.ListByEvent(ctx, eventID)
}

// ListMine returns the caller's own registrations.
func (s *RegistrationService) ListMine(ctx context.Context, caller model.Identity) ([]model.Registration, error) {
	return s.registrations.ListByParticipant(ctx, caller.UserID)
}
