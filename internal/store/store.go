package store

import (
	"context"
	"time"

	"github.com/azdolinski/emissary/internal/model"
)

// Keys of the documents kept in the key-value store.
const (
	KeyProfiles  = "appProfiles"
	KeySettings  = "appSettings"
	KeyUserInput = "userInput"
)

// KV is the key-value contract the engine depends on.
type KV interface {
	// Get returns the values of the requested keys. Keys that do not exist
	// are absent from the result; that is not an error.
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)

	// Set writes all values atomically.
	Set(ctx context.Context, values map[string][]byte) error
}

// RunHistory stores execution reports.
type RunHistory interface {
	// SaveRun stores the report and returns its run ID.
	SaveRun(ctx context.Context, report *model.ExecutionReport) (int64, error)

	// ListRuns returns the most recent reports first. An empty profileID
	// lists runs of all profiles. A non-positive limit means no limit.
	ListRuns(ctx context.Context, profileID string, limit int) ([]*model.ExecutionReport, error)
}

// RunLocker guards against concurrent runs of the same profile across
// processes.
type RunLocker interface {
	// AcquireRunLock takes the lock for profileID on behalf of owner. It
	// returns false when another owner holds an unexpired lock.
	AcquireRunLock(ctx context.Context, profileID, owner string, ttl time.Duration) (bool, error)

	// ReleaseRunLock drops the lock if owner holds it.
	ReleaseRunLock(ctx context.Context, profileID, owner string) error
}

// Backend is a complete storage backend.
type Backend interface {
	KV
	RunHistory
	RunLocker
	Close() error
}
