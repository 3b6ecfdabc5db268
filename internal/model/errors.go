package model

import "errors"

// Errors returned by the profile and action update functions.
var (
	// ErrProfileNotFound is returned when no profile matches the given id or name.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrActionNotFound is returned when an action index is out of range.
	ErrActionNotFound = errors.New("action not found")

	// ErrUnsupportedMethod is returned when an HTTP method other than
	// GET, POST or PUT is requested.
	ErrUnsupportedMethod = errors.New("unsupported method: must be GET, POST or PUT")

	// ErrEmptyName is returned when a profile or action would get an empty name.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrEmptyKey is returned when a header or data field would get an empty key.
	ErrEmptyKey = errors.New("key must not be empty")

	// ErrInvalidData is returned when action data is not a JSON object.
	ErrInvalidData = errors.New("invalid data: must be a JSON object")
)
