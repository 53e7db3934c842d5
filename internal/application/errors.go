package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a write collides with an existing record.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidTransition is returned when a submission is driven out of order.
	ErrInvalidTransition = errors.New("application: invalid submission transition")
)
