package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	frgerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/foundation/lang/diagnostics"
)

// Origin names the surface a run came through
type Origin string

const (
	OriginCLI       Origin = "cli"
	OriginREPL      Origin = "repl"
	OriginGRPC      Origin = "grpc"
	OriginWebSocket Origin = "websocket"
	OriginHTTP      Origin = "http"
)

// Run is one evaluated unit
type Run struct {
	ID          string                   `json:"id"`
	Timestamp   time.Time                `json:"timestamp"`
	Session     string                   `json:"session,omitempty"`
	Source      string                   `json:"source"`
	Value       string                   `json:"value,omitempty"`
	HasValue    bool                     `json:"has_value"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics,omitempty"`
	Error       string                   `json:"error,omitempty"`
	ErrorCode   string                   `json:"error_code,omitempty"`
	DurationMs  int64                    `json:"duration_ms"`
	Origin      Origin                   `json:"origin"`
}

// Failed reports whether the run ended with an error
func (r *Run) Failed() bool {
	return r.Error != ""
}

// RunFilter defines criteria for listing runs
type RunFilter struct {
	Origin     Origin
	Session    string
	Since      time.Time
	Until      time.Time
	OnlyFailed bool
	Contains   string
	Limit      int
	Offset     int
}

// RunStore defines the interface for run history persistence
type RunStore interface {
	Record(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	Query(ctx context.Context, filter RunFilter) ([]*Run, error)
	Count(ctx context.Context) (int64, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteRunStore implements RunStore using SQLite
type SQLiteRunStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/history.db",
	}
}

// NewSQLiteRunStore opens (and creates) the history database
func NewSQLiteRunStore(cfg SQLiteConfig) (*SQLiteRunStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, dbError(err, "failed to create directory").WithDetail("path", dir)
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError(err, "failed to open database").WithDetail("path", cfg.Path)
	}

	store := &SQLiteRunStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema").WithDetail("path", cfg.Path)
	}

	return store, nil
}

func dbError(err error, msg string) *frgerror.Error {
	return frgerror.Wrap(err, msg).WithCode(frgerror.CodeDatabaseError)
}

// initSchema creates the necessary tables
func (s *SQLiteRunStore) initSchema() error {
	// value is TEXT so that Inf and NaN survive
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		session TEXT,
		source TEXT NOT NULL,
		value TEXT,
		has_value INTEGER NOT NULL DEFAULT 0,
		diagnostics TEXT,
		error TEXT,
		error_code TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		origin TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_origin ON runs(origin);
	CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(session);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run. ID and Timestamp are filled in when empty.
func (s *SQLiteRunStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(run)

	var diagsJSON []byte
	if len(run.Diagnostics) > 0 {
		var err error
		if diagsJSON, err = json.Marshal(run.Diagnostics); err != nil {
			return dbError(err, "failed to encode diagnostics")
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, timestamp, session, source, value, has_value, diagnostics, error, error_code, duration_ms, origin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Timestamp, run.Session, run.Source, run.Value, run.HasValue, nullable(diagsJSON),
		run.Error, run.ErrorCode, run.DurationMs, string(run.Origin))

	if err != nil {
		return dbError(err, "failed to insert run").WithDetail("id", run.ID)
	}

	return nil
}

func prepare(run *Run) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	run.Timestamp = run.Timestamp.UTC()
	if run.Origin == "" {
		run.Origin = OriginCLI
	}
}

func nullable(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

const selectRuns = `SELECT id, timestamp, session, source, value, has_value, diagnostics, error, error_code, duration_ms, origin FROM runs`

// Get returns the run with the given id
func (s *SQLiteRunStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectRuns+" WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, frgerror.Newf("run %s not found", id).
			WithCode(frgerror.CodeNotFound).
			WithDetail("id", id)
	}
	if err != nil {
		return nil, dbError(err, "failed to read run").WithDetail("id", id)
	}
	return run, nil
}

// Query retrieves runs matching filter, newest first
func (s *SQLiteRunStore) Query(ctx context.Context, filter RunFilter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRuns + ` WHERE 1=1`
	var args []interface{}

	if filter.Origin != "" {
		query += " AND origin = ?"
		args = append(args, string(filter.Origin))
	}
	if filter.Session != "" {
		query += " AND session = ?"
		args = append(args, filter.Session)
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}
	if !filter.Until.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.Until.UTC())
	}
	if filter.OnlyFailed {
		query += " AND error IS NOT NULL AND error != ''"
	}
	if filter.Contains != "" {
		query += " AND instr(source, ?) > 0"
		args = append(args, filter.Contains)
	}

	query += " ORDER BY timestamp DESC"

	// SQLite only accepts OFFSET after a LIMIT; -1 means no limit
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := -1
		if filter.Limit > 0 {
			limit = filter.Limit
		}
		query += " LIMIT ?"
		args = append(args, limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan run")
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to iterate runs")
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	var run Run
	var session, value, diags, errText, errCode sql.NullString
	var origin string

	if err := sc.Scan(&run.ID, &run.Timestamp, &session, &run.Source, &value, &run.HasValue,
		&diags, &errText, &errCode, &run.DurationMs, &origin); err != nil {
		return nil, err
	}

	run.Session = session.String
	run.Value = value.String
	run.Error = errText.String
	run.ErrorCode = errCode.String
	run.Origin = Origin(origin)
	if diags.Valid && diags.String != "" {
		if err := json.Unmarshal([]byte(diags.String), &run.Diagnostics); err != nil {
			return nil, err
		}
	}
	return &run, nil
}

// Count returns the number of stored runs
func (s *SQLiteRunStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, dbError(err, "failed to count runs")
	}
	return n, nil
}

// Prune removes runs older than the given age
func (s *SQLiteRunStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, dbError(err, "failed to prune runs")
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (s *SQLiteRunStore) Close() error {
	return s.db.Close()
}

// MemoryRunStore is an in-memory RunStore used by tests
type MemoryRunStore struct {
	runs []*Run
	mu   sync.RWMutex
}

// NewMemoryRunStore creates an empty in-memory store
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{}
}

// Record stores a copy of run
func (s *MemoryRunStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(run)
	cp := *run
	s.runs = append(s.runs, &cp)
	return nil
}

// Get returns the run with the given id
func (s *MemoryRunStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.runs {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, frgerror.Newf("run %s not found", id).
		WithCode(frgerror.CodeNotFound).
		WithDetail("id", id)
}

// Query retrieves runs matching filter, newest first
func (s *MemoryRunStore) Query(ctx context.Context, filter RunFilter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Run
	for _, r := range s.runs {
		if filter.Origin != "" && r.Origin != filter.Origin {
			continue
		}
		if filter.Session != "" && r.Session != filter.Session {
			continue
		}
		if !filter.Since.IsZero() && r.Timestamp.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && r.Timestamp.After(filter.Until) {
			continue
		}
		if filter.OnlyFailed && !r.Failed() {
			continue
		}
		if filter.Contains != "" && !strings.Contains(r.Source, filter.Contains) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Count returns the number of stored runs
func (s *MemoryRunStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.runs)), nil
}

// Prune removes old entries
func (s *MemoryRunStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var deleted int64

	kept := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		if r.Timestamp.After(cutoff) {
			kept = append(kept, r)
		} else {
			deleted++
		}
	}
	s.runs = kept

	return deleted, nil
}

// Close is a no-op for memory store
func (s *MemoryRunStore) Close() error {
	return nil
}
