package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/azdolinski/emissary/internal/model"
)

// Memory is an in-process Backend. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
	runs   [][]byte
	locks  map[string]memoryLock

	// failSet, when non-nil, is returned by Set. Tests use it to simulate
	// a failing store.
	failSet error
}

type memoryLock struct {
	owner   string
	expires time.Time
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string][]byte),
		locks:  make(map[string]memoryLock),
	}
}

// FailWrites makes every subsequent Set return err. A nil err restores
// normal behavior.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSet = err
}

// Get implements KV.
func (m *Memory) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = bytes.Clone(v)
		}
	}
	return out, nil
}

// Set implements KV.
func (m *Memory) Set(ctx context.Context, values map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet != nil {
		return m.failSet
	}
	for k, v := range values {
		m.values[k] = bytes.Clone(v)
	}
	return nil
}

// SaveRun implements RunHistory.
func (m *Memory) SaveRun(ctx context.Context, report *model.ExecutionReport) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, b)
	return int64(len(m.runs)), nil
}

// ListRuns implements RunHistory.
func (m *Memory) ListRuns(ctx context.Context, profileID string, limit int) ([]*model.ExecutionReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	runs := slices.Clone(m.runs)
	m.mu.Unlock()

	var out []*model.ExecutionReport
	for i := len(runs) - 1; i >= 0; i-- {
		var r model.ExecutionReport
		if err := json.Unmarshal(runs[i], &r); err != nil {
			continue
		}
		if profileID != "" && r.ProfileID != profileID {
			continue
		}
		r.RunID = int64(i + 1)
		out = append(out, &r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// AcquireRunLock implements RunLocker.
func (m *Memory) AcquireRunLock(ctx context.Context, profileID, owner string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if ttl <= 0 {
		return false, ErrInvalidLockTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if l, ok := m.locks[profileID]; ok && l.owner != owner && now.Before(l.expires) {
		return false, nil
	}
	m.locks[profileID] = memoryLock{owner: owner, expires: now.Add(ttl)}
	return true, nil
}

// ReleaseRunLock implements RunLocker.
func (m *Memory) ReleaseRunLock(_ context.Context, profileID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[profileID]; ok && l.owner == owner {
		delete(m.locks, profileID)
	}
	return nil
}

// Close implements Backend. It is a no-op.
func (m *Memory) Close() error {
	return nil
}
