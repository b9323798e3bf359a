package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"FundEye/internal/failure"
)

// SQLiteRecorder persists cycle and error history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external dashboards can read while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS refresh_cycles (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			cycle_id       TEXT,
			trigger_type   TEXT,
			fund_count     INTEGER,
			primary_hits   INTEGER,
			fallback_count INTEGER,
			quote_count    INTEGER,
			duration_ms    INTEGER,
			error          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON refresh_cycles(timestamp)`,

		`CREATE TABLE IF NOT EXISTS error_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			kind        TEXT,
			message     TEXT,
			retryable   INTEGER,
			retry_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_errors_ts ON error_history(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordCycle inserts one refresh-cycle summary row.
func (r *SQLiteRecorder) RecordCycle(rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT INTO refresh_cycles
			(timestamp, cycle_id, trigger_type, fund_count, primary_hits, fallback_count, quote_count, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), rec.CycleID, rec.Trigger, rec.FundCount,
		rec.PrimaryHits, rec.FallbackCount, rec.QuoteCount,
		rec.Duration.Milliseconds(), rec.Err,
	)
	if err != nil {
		return fmt.Errorf("insert refresh cycle: %w", err)
	}
	return nil
}

// RecordError inserts one terminal-failure row.
func (r *SQLiteRecorder) RecordError(state *failure.ErrorState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	retryable := 0
	if state.Retryable {
		retryable = 1
	}
	_, err := r.db.Exec(
		`INSERT INTO error_history (timestamp, kind, message, retryable, retry_count)
		 VALUES (?, ?, ?, ?, ?)`,
		state.Timestamp.Unix(), string(state.Kind), state.Message, retryable, state.RetryCount,
	)
	if err != nil {
		return fmt.Errorf("insert error state: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
