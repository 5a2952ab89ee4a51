package repository

import "errors"

// Common repository errors
var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrThingNotFound is returned when a thing is not found
	ErrThingNotFound = errors.New("thing not found")

	// ErrDuplicateEmail is returned when a user's email address is already taken
	ErrDuplicateEmail = errors.New("email address already registered")

	// ErrInvalidSortField is returned when a list query names a sort field
	// outside the allowed set
	ErrInvalidSortField = errors.New("invalid sort field")
)
