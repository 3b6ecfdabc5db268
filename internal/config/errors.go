package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrEmptyDBDir is returned when no database directory is configured.
	ErrEmptyDBDir = errors.New("database directory must not be empty")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the body limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidLockTTL is returned when the lock TTL is not positive.
	ErrInvalidLockTTL = errors.New("invalid lock TTL: must be positive")

	// ErrInvalidReportFormat is returned for an unknown report format.
	ErrInvalidReportFormat = errors.New("invalid report format: must be text, html, json or markdown")

	// ErrInvalidProxy is returned when the proxy address is malformed.
	ErrInvalidProxy = errors.New("invalid proxy")
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
