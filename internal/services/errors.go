package services

import "errors"

var (
	// ErrEmptyCalendar is returned when a plan is requested without fixed events.
	ErrEmptyCalendar = errors.New("empty calendar: no fixed events to anchor gaps")

	ErrInvalidEvent = errors.New("invalid fixed event")
	ErrInvalidTask  = errors.New("invalid flexible task")

	// ErrUnreachableTour is returned when some route node cannot be reached
	// from the start node under the given travel matrix.
	ErrUnreachableTour = errors.New("unreachable tour")

	ErrInvalidRoute  = errors.New("invalid route instance")
	ErrRouteTooLarge = errors.New("route instance too large for exact optimization")
)
