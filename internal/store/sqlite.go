package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/azdolinski/emissary/internal/model"
)

// DatabaseFile is the name of the SQLite file inside the data directory.
const DatabaseFile = "emissary.db"

// SQLite is a Backend stored in a single SQLite database file.
type SQLite struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SQLite behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so readers don't block the writer.
	EnableWAL bool

	// BusyTimeout is how long a connection waits on a lock held by another
	// process before failing. Zero uses the driver default.
	BusyTimeout time.Duration
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		BusyTimeout:       5 * time.Second,
	}
}

// Open opens or creates the database in dbDir.
func Open(dbDir string, opts Options) (*SQLite, error) {
	dbPath := filepath.Join(dbDir, DatabaseFile)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}
	if opts.BusyTimeout > 0 {
		dsn += fmt.Sprintf("&_pragma=busy_timeout(%d)", opts.BusyTimeout.Milliseconds())
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLite{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *SQLite) createTables() error {
	schema := `
	-- Key-value documents (appProfiles, appSettings, userInput)
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- One row per profile run; the full report is kept as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id TEXT NOT NULL,
		profile_name TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_profile ON runs(profile_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- In-flight run guard; expires_at is unix nanoseconds
	CREATE TABLE IF NOT EXISTS run_locks (
		profile_id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Get implements KV.
func (s *SQLite) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	query := `SELECT key, value FROM kv WHERE key IN (` + placeholders + `)` //nolint:gosec // placeholders only

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		out[key] = []byte(value)
	}

	return out, rows.Err()
}

// Set implements KV. All values are written in one transaction.
func (s *SQLite) Set(ctx context.Context, values map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	query := `
	INSERT INTO kv (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = CURRENT_TIMESTAMP
	`
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, query, key, string(value)); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// SaveRun implements RunHistory.
func (s *SQLite) SaveRun(ctx context.Context, report *model.ExecutionReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO runs (profile_id, profile_name, started_at, finished_at, succeeded, failed, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		report.ProfileID,
		report.ProfileName,
		report.StartedAt.UnixNano(),
		report.FinishedAt.UnixNano(),
		report.SuccessCount(),
		report.FailureCount(),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	return result.LastInsertId()
}

// ListRuns implements RunHistory.
func (s *SQLite) ListRuns(ctx context.Context, profileID string, limit int) ([]*model.ExecutionReport, error) {
	query := `SELECT id, report_json FROM runs WHERE 1=1`
	args := make([]any, 0, 2)

	if profileID != "" {
		query += ` AND profile_id = ?`
		args = append(args, profileID)
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var reports []*model.ExecutionReport
	for rows.Next() {
		var (
			id         int64
			reportJSON string
		)
		if err := rows.Scan(&id, &reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		var report model.ExecutionReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		report.RunID = id
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// AcquireRunLock implements RunLocker. An expired lock held by another
// owner is taken over.
func (s *SQLite) AcquireRunLock(ctx context.Context, profileID, owner string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, ErrInvalidLockTTL
	}

	now := time.Now()
	query := `
	INSERT INTO run_locks (profile_id, owner, expires_at) VALUES (?, ?, ?)
	ON CONFLICT(profile_id) DO UPDATE SET
		owner = excluded.owner,
		expires_at = excluded.expires_at
	WHERE run_locks.expires_at < ? OR run_locks.owner = excluded.owner
	`

	result, err := s.db.ExecContext(ctx, query,
		profileID,
		owner,
		now.Add(ttl).UnixNano(),
		now.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return n > 0, nil
}

// ReleaseRunLock implements RunLocker.
func (s *SQLite) ReleaseRunLock(ctx context.Context, profileID, owner string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM run_locks WHERE profile_id = ? AND owner = ?`,
		profileID, owner,
	)
	if err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}
