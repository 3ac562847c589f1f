// Package model defines the core domain types for the event registration system.
package model

import "time"

// EventStatus tracks where an event sits in its lifecycle.
type EventStatus string

const (
	StatusScheduled  EventStatus = "scheduled"
	StatusOpen       EventStatus = "open"
	StatusInProgress EventStatus = "in_progress"
	StatusClosed     EventStatus = "closed"
	StatusCancelled  EventStatus = "cancelled"
	StatusCompleted  EventStatus = "completed"
)

// ValidStatus reports whether s is one of the known event statuses.
func ValidStatus(s EventStatus) bool {
	switch s {
	case StatusScheduled, StatusOpen, StatusInProgress, StatusClosed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// EventType is a free-form category tag (conference, workshop, seminar, ...).
type EventType string

// Event represents a bookable event created by an organizer.
type Event struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Type          EventType   `json:"type"`
	Location      string      `json:"location"`
	Status        EventStatus `json:"status"`
	Date          time.Time   `json:"date"`
	Description   string      `json:"description"`
	TotalSlots    int         `json:"total_slots"`
	OccupiedSlots int         `json:"occupied_slots"`
	OrganizerID   string      `json:"organizer_id"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Remaining returns the number of available slots.
func (e *Event) Remaining() int {
	return e.TotalSlots - e.OccupiedSlots
}

// IsFull returns true when no slots remain.
func (e *Event) IsFull() bool {
	return e.OccupiedSlots >= e.TotalSlots
}

// Registration ties one participant to one event.
type Registration struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	ParticipantID string    `json:"participant_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// User is an account with one of the three roles.
// PasswordHash never leaves the persistence and service layers.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken is a persisted, single-use credential for minting new access
// tokens. Once revoked (rotation or logout) or expired it is never
// reactivated; a replacement record is always issued instead.
type RefreshToken struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// IsExpired reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsRevoked reports whether the token has been explicitly revoked.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsActive reports whether the token can still be redeemed.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(now)
}

// Identity is the authenticated caller, passed explicitly into every service
// operation that enforces ownership.
type Identity struct {
	UserID string
	Role   Role
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
