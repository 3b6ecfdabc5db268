package runner

import "errors"

// Precondition errors returned by Run before any action executes.
var (
	// ErrNoProfileSelected is returned when no profile is named and none is
	// stored as selected.
	ErrNoProfileSelected = errors.New("no profile selected")

	// ErrProfileDisabled is returned when the profile's status is disabled.
	ErrProfileDisabled = errors.New("profile is disabled")

	// ErrRunInProgress is returned when the profile is already running in
	// this or another process.
	ErrRunInProgress = errors.New("profile is already running")
)
