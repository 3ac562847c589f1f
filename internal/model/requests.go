package model

import "time"

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Type        EventType `json:"type"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	TotalSlots  int       `json:"total_slots"`
}

// UpdateEventRequest carries a partial event update. Nil fields are left
// untouched.
type UpdateEventRequest struct {
	Title       *string      `json:"title,omitempty"`
	Type        *EventType   `json:"type,omitempty"`
	Location    *string      `json:"location,omitempty"`
	Status      *EventStatus `json:"status,omitempty"`
	Date        *time.Time   `json:"date,omitempty"`
	Description *string      `json:"description,omitempty"`
	TotalSlots  *int         `json:"total_slots,omitempty"`
}

// RegisterUserRequest is the payload for creating an account.
type RegisterUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// UpdateUserRequest carries a partial profile update. Nil fields are left
// untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// LoginRequest is the payload for password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest presents a refresh token for rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// EnrollRequest is the payload for registering for an event.
type EnrollRequest struct {
	EventID string `json:"event_id"`
}
