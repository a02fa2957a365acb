package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunRecord is one finished invocation of the research workflow.
type RunRecord struct {
	ID          string
	Prompt      string
	Mode        string
	AgentID     string
	ThreadID    string
	RunID       string
	Status      string
	LastError   string
	Error       string
	SummaryPath string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration returns how long the invocation took.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// HistoryStorage records past invocations in a SQLite database. Rows are
// written once the workflow has ended and are never re-executed.
type HistoryStorage struct {
	db *sql.DB
}

// NewHistoryStorage opens (creating if needed) history.db in dataDir.
func NewHistoryStorage(dataDir string) (*HistoryStorage, error) {
	return OpenHistoryStorage(filepath.Join(dataDir, "history.db"))
}

// OpenHistoryStorage opens the history database at dbPath.
func OpenHistoryStorage(dbPath string) (*HistoryStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	storage := &HistoryStorage{db: db}

	if err := storage.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return storage, nil
}

func (hs *HistoryStorage) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		mode TEXT NOT NULL DEFAULT '',
		agent_id TEXT NOT NULL DEFAULT '',
		thread_id TEXT NOT NULL DEFAULT '',
		run_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		last_error TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		summary_path TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := hs.db.Exec(schema)
	return err
}

// Record inserts rec, assigning an ID when it has none.
func (hs *HistoryStorage) Record(rec RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = rec.FinishedAt
	}

	query := `
	INSERT INTO runs (id, prompt, mode, agent_id, thread_id, run_id, status, last_error, error, summary_path, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := hs.db.Exec(query,
		rec.ID,
		rec.Prompt,
		rec.Mode,
		rec.AgentID,
		rec.ThreadID,
		rec.RunID,
		rec.Status,
		rec.LastError,
		rec.Error,
		rec.SummaryPath,
		rec.StartedAt.UnixMilli(),
		rec.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// Load returns the record with the given ID, or nil if there is none.
func (hs *HistoryStorage) Load(id string) (*RunRecord, error) {
	query := `
	SELECT id, prompt, mode, agent_id, thread_id, run_id, status, last_error, error, summary_path, started_at, finished_at
	FROM runs
	WHERE id = ?
	`

	rec, err := scanRecord(hs.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// List returns up to limit records, newest first. limit <= 0 means all.
func (hs *HistoryStorage) List(limit int) ([]RunRecord, error) {
	query := `
	SELECT id, prompt, mode, agent_id, thread_id, run_id, status, last_error, error, summary_path, started_at, finished_at
	FROM runs
	ORDER BY started_at DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := hs.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			continue // Skip corrupted rows
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var startedAt, finishedAt int64
	err := row.Scan(
		&rec.ID,
		&rec.Prompt,
		&rec.Mode,
		&rec.AgentID,
		&rec.ThreadID,
		&rec.RunID,
		&rec.Status,
		&rec.LastError,
		&rec.Error,
		&rec.SummaryPath,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.StartedAt = time.UnixMilli(startedAt)
	rec.FinishedAt = time.UnixMilli(finishedAt)
	return &rec, nil
}

func (hs *HistoryStorage) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}
