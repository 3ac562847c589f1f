package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eventra-hq/eventra/internal/model"
)

type testEnv struct {
	store  *memStore
	events *EventService
	regs   *RegistrationService
	users  *UserService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	events := NewEventService(memEvents{store})
	regs := NewRegistrationService(memRegistrations{store}, memEvents{store})
	users := NewUserService(memUsers{store})
	return &testEnv{store: store, events: events, regs: regs, users: users}
}

func (e *testEnv) seedUser(t *testing.T, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         "user " + uuid.New().String()[:8],
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) seedEvent(t *testing.T, organizerID string, totalSlots int) *model.Event {
	t.Helper()
	event, err := e.store.Create(context.Background(), model.CreateEventRequest{
		Title:      "event " + uuid.New().String()[:8],
		Type:       "workshop",
		Location:   "room 1",
		Date:       time.Now().Add(24 * time.Hour).UTC(),
		TotalSlots: totalSlots,
	}, organizerID)
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return event
}

func identityOf(u *model.User) model.Identity {
	return model.Identity{UserID: u.ID, Role: u.Role}
}

// occupancy returns the stored counter and the true count of registrations
// for the event, which must agree at every observable point.
func (e *testEnv) occupancy(t *testing.T, eventID string) (counter, actual int) {
	t.Helper()
	event, err := e.store.GetByID(context.Background(), eventID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	regs, err := e.store.ListByEvent(context.Background(), eventID)
	if err != nil {
		t.Fatalf("list registrations: %v", err)
	}
	return event.OccupiedSlots, len(regs)
}
