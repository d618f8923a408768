package domain

import "errors"

// Failure taxonomy shared by the services and repositories. Callers match
// with errors.Is; nothing below is retried internally.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCapacityExceeded means a cabin class has no available seats left.
	ErrCapacityExceeded = errors.New("no available seats in class")

	// ErrOverbooked means reserved > max was observed. This is a pre-existing
	// data defect, not a new rejection, and is kept distinct so operators can
	// tell the two apart.
	ErrOverbooked = errors.New("reserved seats exceed class capacity")

	// ErrInvalidState means a counter was asked to go below zero. It signals
	// a caller bug (releasing more than was reserved) and is never clamped.
	ErrInvalidState = errors.New("reserved count already zero")

	// ErrInvalidArgument means malformed input, e.g. an unknown cabin class.
	ErrInvalidArgument = errors.New("invalid argument")
)
