package core

import "errors"

// Validation errors returned to callers that enforce the input contract.
var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrZeroAmount       = errors.New("amount must be non-zero")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyUsername    = errors.New("empty username")
	ErrEmptyPassword    = errors.New("empty password")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// ErrUnknownUser is returned when a write names a user id that does not exist.
var ErrUnknownUser = errors.New("unknown user")
