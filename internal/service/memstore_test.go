package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eventra-hq/eventra/internal/model"
	"github.com/eventra-hq/eventra/internal/repository"
)

// memStore is an in-memory implementation of the store contracts. A single
// mutex spans every operation, mirroring the serialisation the repository
// gets from row locks: enroll's read-check-increment-insert sequence is one
// critical section, as are rotation and the cascade deletes.
type memStore struct {
	mu            sync.Mutex
	events        map[string]*model.Event
	registrations map[string]*model.Registration
	users         map[string]*model.User
	tokens        map[string]*model.RefreshToken // keyed by token value
}

func newMemStore() *memStore {
	return &memStore{
		events:        make(map[string]*model.Event),
		registrations: make(map[string]*model.Registration),
		users:         make(map[string]*model.User),
		tokens:        make(map[string]*model.RefreshToken),
	}
}

// ─── EventStore ───────────────────────────────────────────────────────────────

func (m *memStore) Create(ctx context.Context, req model.CreateEventRequest, organizerID string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.events {
		if e.Title == req.Title {
			return nil, repository.ErrDuplicateTitle
		}
	}
	event := &model.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Type:        req.Type,
		Location:    req.Location,
		Status:      model.StatusScheduled,
		Date:        req.Date,
		Description: req.Description,
		TotalSlots:  req.TotalSlots,
		OrganizerID: organizerID,
		CreatedAt:   time.Now().UTC(),
	}
	m.events[event.ID] = event
	out := *event
	return &out, nil
}

func (m *memStore) List(ctx context.Context) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []model.Event
	for _, e := range m.events {
		events = append(events, *e)
	}
	return events, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *e
	return &out, nil
}

func (m *memStore) Update(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if req.Title != nil {
		for _, e := range m.events {
			if e.ID != id && e.Title == *req.Title {
				return nil, repository.ErrDuplicateTitle
			}
		}
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
			return nil, repository.ErrCapacityBelowOccupied
		}
		event.TotalSlots = *req.TotalSlots
	}
	out := *event
	return &out, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return repository.ErrNotFound
	}
	for regID, reg := range m.registrations {
		if reg.EventID == id {
			delete(m.registrations, regID)
		}
	}
	delete(m.events, id)
	return nil
}

// ─── RegistrationStore ────────────────────────────────────────────────────────

func (m *memStore) Enroll(ctx context.Context, eventID, participantID string) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	participant, ok := m.users[participantID]
	if !ok || participant.Role != model.RoleParticipant {
		return nil, repository.ErrNotFound
	}
	for _, reg := range m.registrations {
		if reg.EventID == eventID && reg.ParticipantID == participantID {
			return nil, repository.ErrAlreadyRegistered
		}
	}
	if event.OccupiedSlots >= event.TotalSlots {
		return nil, repository.ErrEventFull
	}

	event.OccupiedSlots++
	reg := &model.Registration{
		ID:            uuid.New().String(),
		EventID:       eventID,
		ParticipantID: participantID,
		CreatedAt:     time.Now().UTC(),
	}
	m.registrations[reg.ID] = reg
	out := *reg
	return &out, nil
}

func (m *memStore) Cancel(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registrations[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(m.registrations, id)
	if event, ok := m.events[reg.EventID]; ok && event.OccupiedSlots > 0 {
		event.OccupiedSlots--
	}
	return nil
}

func (m *memStore) GetRegistrationByID(ctx context.Context, id string) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.registrations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *reg
	return &out, nil
}

func (m *memStore) ListRegistrations(ctx context.Context) ([]model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var regs []model.Registration
	for _, reg := range m.registrations {
		regs = append(regs, *reg)
	}
	return regs, nil
}

func (m *memStore) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var regs []model.Registration
	for _, reg := range m.registrations {
		if reg.EventID == eventID {
			regs = append(regs, *reg)
		}
	}
	return regs, nil
}

func (m *memStore) ListByParticipant(ctx context.Context, participantID string) ([]model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var regs []model.Registration
	for _, reg := range m.registrations {
		if reg.ParticipantID == participantID {
			regs = append(regs, *reg)
		}
	}
	return regs, nil
}

// ─── UserStore ────────────────────────────────────────────────────────────────

func (m *memStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	out := *user
	m.users[user.ID] = &out
	return nil
}

func (m *memStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) ListUsers(ctx context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var users []model.User
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

func (m *memStore) UpdateUser(ctx context.Context, id string, name, email, passwordHash *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if email != nil {
		for _, u := range m.users {
			if u.ID != id && u.Email == *email {
				return repository.ErrDuplicateEmail
			}
		}
		user.Email = *email
	}
	if name != nil {
		user.Name = *name
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	return nil
}

func (m *memStore) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}

	for value, t := range m.tokens {
		if t.UserID == id {
			delete(m.tokens, value)
		}
	}

	switch user.Role {
	case model.RoleOrganizer:
		for eventID, event := range m.events {
			if event.OrganizerID != id {
				continue
			}
			for regID, reg := range m.registrations {
				if reg.EventID == eventID {
					delete(m.registrations, regID)
				}
			}
			delete(m.events, eventID)
		}
	case model.RoleParticipant:
		for regID, reg := range m.registrations {
			if reg.ParticipantID != id {
				continue
			}
			if event, ok := m.events[reg.EventID]; ok && event.OccupiedSlots > 0 {
				event.OccupiedSlots--
			}
			delete(m.registrations, regID)
		}
	}

	delete(m.users, id)
	return nil
}

// ─── TokenStore ───────────────────────────────────────────────────────────────

func (m *memStore) CreateToken(ctx context.Context, t *model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := *t
	m.tokens[t.Token] = &out
	return nil
}

func (m *memStore) Rotate(ctx context.Context, presented string, now time.Time, replacement *model.RefreshToken) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.tokens[presented]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !old.IsActive(now) {
		return nil, repository.ErrTokenInactive
	}

	revokedAt := now
	old.RevokedAt = &revokedAt

	replacement.UserID = old.UserID
	stored := *replacement
	m.tokens[replacement.Token] = &stored

	out := *old
	return &out, nil
}

func (m *memStore) Revoke(ctx context.Context, value string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tokens[value]; ok && t.RevokedAt == nil {
		revokedAt := now
		t.RevokedAt = &revokedAt
	}
	return nil
}

// ─── adapters ────────────────────────────────────────────────────────────────
//
// memStore carries every entity in one struct so cascades can reach across
// them, but the services want distinct interfaces whose method names
// collide (Create, GetByID, List). Thin views resolve each name to the
// right entity.

type memEvents struct{ *memStore }

type memRegistrations struct{ *memStore }

func (v memRegistrations) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	return v.GetRegistrationByID(ctx, id)
}

func (v memRegistrations) List(ctx context.Context) ([]model.Registration, error) {
	return v.ListRegistrations(ctx)
}

type memUsers struct{ *memStore }

func (v memUsers) Create(ctx context.Context, user *model.User) error {
	return v.CreateUser(ctx, user)
}

func (v memUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	return v.GetUserByID(ctx, id)
}

func (v memUsers) List(ctx context.Context) ([]model.User, error) {
	return v.ListUsers(ctx)
}

func (v memUsers) Update(ctx context.Context, id string, name, email, passwordHash *string) error {
	return v.UpdateUser(ctx, id, name, email, passwordHash)
}

func (v memUsers) Delete(ctx context.Context, id string) error {
	return v.DeleteUser(ctx, id)
}

type memTokens struct{ *memStore }

func (v memTokens) Create(ctx context.Context, t *model.RefreshToken) error {
	return v.CreateToken(ctx, t)
}
