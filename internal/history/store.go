// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite journal of conversion runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/notesheet/pkg/types"
)

const (
	dbFile = "history.db"

	// DefaultLimit bounds List when no limit is given.
	DefaultLimit = 20

	// timeLayout is fixed-width so started_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Store manages the run journal database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates the journal at dir/history.db and creates the
// schema if it does not exist.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, dbFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			rule TEXT NOT NULL,
			zoom REAL NOT NULL,
			source_pages INTEGER NOT NULL,
			output_pages INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewRecord starts a record for a run beginning now.
func NewRecord(source, destination string, rule types.LayoutRule, zoom float64) types.RunRecord {
	return types.RunRecord{
		ID:          uuid.NewString(),
		Source:      source,
		Destination: destination,
		Rule:        rule,
		Zoom:        zoom,
		StartedAt:   time.Now().UTC(),
	}
}

// Record inserts rec, replacing any record with the same ID.
func (s *Store) Record(ctx context.Context, rec types.RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("recording run for %s: missing id", rec.Source)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, destination, rule, zoom, source_pages, output_pages, status, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source=excluded.source, destination=excluded.destination, rule=excluded.rule,
			zoom=excluded.zoom, source_pages=excluded.source_pages, output_pages=excluded.output_pages,
			status=excluded.status, error=excluded.error, started_at=excluded.started_at,
			duration_ms=excluded.duration_ms`,
		rec.ID, rec.Source, rec.Destination, string(rec.Rule), rec.Zoom,
		rec.SourcePages, rec.OutputPages, string(rec.Status), rec.Error,
		rec.StartedAt.UTC().Format(timeLayout), rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", rec.ID, err)
	}
	return tx.Commit()
}

// QueryOptions filters List.
type QueryOptions struct {
	// Limit caps the number of records; zero means DefaultLimit and a
	// negative value means no limit.
	Limit int

	// Status keeps only runs with this status when set.
	Status types.RunStatus
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.RunRecord, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	query := `SELECT id, source, destination, rule, zoom, source_pages, output_pages, status, error, started_at, duration_ms FROM runs`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY started_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []types.RunRecord
	for rows.Next() {
		var (
			rec        types.RunRecord
			rule       string
			status     string
			errMsg     sql.NullString
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Destination, &rule, &rec.Zoom,
			&rec.SourcePages, &rec.OutputPages, &status, &errMsg, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		rec.Rule = types.LayoutRule(rule)
		rec.Status = types.RunStatus(status)
		rec.Error = errMsg.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(timeLayout, startedAt); err == nil {
			rec.StartedAt = t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading runs: %w", err)
	}
	return records, nil
}
