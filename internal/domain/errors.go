// Package domain holds the plain data types shared across services and
// repositories, plus the sentinel errors that higher layers translate
// into HTTP responses.
package domain

import "errors"

// ErrNotFound is returned when a flight, booking, ticket or payment
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrInsufficientCapacity is returned when a flight does not have
// enough available seats for the requested reservation.
var ErrInsufficientCapacity = errors.New("not enough seats available")

// ErrInvalidState is returned on illegal lifecycle transitions, such as
// paying a cancelled booking or cancelling twice.
var ErrInvalidState = errors.New("invalid booking state")

// ErrForbidden is returned when the requester is neither the booking's
// owner nor staff.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidAmount is returned for non-positive payment amounts.
var ErrInvalidAmount = errors.New("invalid payment amount")

// ErrInconsistency signals that a multi-step operation committed an
// earlier step but failed a later one, leaving state that needs
// reconciliation. It must be surfaced, never swallowed.
var ErrInconsistency = errors.New("data inconsistency detected")
