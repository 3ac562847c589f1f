// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import "errors"

// ErrValidation wraps all input validation failures.
var ErrValidation = errors.New("invalid input")

// ErrForbidden is returned when the caller is authenticated but lacks
// ownership or role for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidCredentials is returned on login failure. It deliberately does
// not reveal whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidRefreshToken is returned when a presented refresh token is
// unknown, revoked or expired. One error for all three keeps the failure
// path from leaking token state.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")
