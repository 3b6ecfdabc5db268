package store

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when CreateIfNotExists is false
	// and no database file exists.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrInvalidLockTTL is returned when a run lock is requested with a
	// non-positive time to live.
	ErrInvalidLockTTL = errors.New("invalid lock ttl: must be positive")
)
