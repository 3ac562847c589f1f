// Package repository implements all database queries for the event
// registration system. It uses pgx directly (no ORM) for transparency and
// performance.
package repository

import "errors"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrEventFull is returned when an event has no remaining capacity.
var ErrEventFull = errors.New("event is fully booked")

// ErrAlreadyRegistered is returned when the same participant registers twice
// for one event.
var ErrAlreadyRegistered = errors.New("participant already registered for this event")

// ErrCapacityBelowOccupied is returned when an event's total slots would be
// shrunk below the number of committed registrations.
var ErrCapacityBelowOccupied = errors.New("total slots cannot be reduced below occupied slots")

// ErrDuplicateEmail is returned when a user email is already taken.
var ErrDuplicateEmail = errors.New("email already in use")

// ErrDuplicateTitle is returned when an event title is already taken.
var ErrDuplicateTitle = errors.New("an event with this title already exists")

// ErrTokenInactive is returned when a refresh token exists but is revoked or
// expired.
var ErrTokenInactive = errors.New("refresh token is no longer active")
