package model

import "errors"

var (
	// ErrNotFound is returned when a referenced item, loan, beneficiary, member or location is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a precondition no longer holds because of a concurrent change.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition is returned for status changes the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAlreadyReturned is returned when closing a loan that is no longer active.
	ErrAlreadyReturned = errors.New("loan already returned")
	// ErrNoop is returned when a requested change would leave the state as it is.
	ErrNoop = errors.New("no-op transition")
	// ErrIntegrityViolation marks a broken invariant that needs an operator.
	ErrIntegrityViolation = errors.New("integrity violation")
	// ErrInvalidInput is returned for malformed requests.
	ErrInvalidInput = errors.New("invalid input")
)
