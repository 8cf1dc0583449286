/*
Package sqlite provides a SQLite-backed implementation of ledger.Repository.

PURPOSE:
  Durable storage for the aggregate debt record, the per-date prayer
  records, and the day-transition marker. The same patterns apply to
  PostgreSQL with minor dialect changes.

KEY TABLES:
  debt_records:   single-row aggregate record (JSON payload, last-write-wins)
  daily_records:  one row per calendar date (JSON payload)
  ledger_markers: named markers, currently only last_processed_date

DATA-INTEGRITY RECOVERY:
  A malformed stored payload is recovered locally: the row is logged and
  treated as absent, so the caller falls back to an empty/default state.
  Decode failures never crash the caller.

WAL MODE:
  Opened with WAL so the minute-tick scheduler and API reads don't block
  each other. A sync.RWMutex serializes writers within the process.

USAGE:
  store, err := sqlite.New("./data/qada.db")   // ":memory:" for tests
  led := ledger.New(store, loc)
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/miqat/qada-engine/ledger"
	"github.com/miqat/qada-engine/qada"
)

const markerLastProcessed = "last_processed_date"

// Store implements ledger.Repository using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Aggregate prayer debt (single user per database)
	CREATE TABLE IF NOT EXISTS debt_records (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- One row per calendar date
	CREATE TABLE IF NOT EXISTS daily_records (
		date TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Named markers (last processed date for the day transition)
	CREATE TABLE IF NOT EXISTS ledger_markers (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// AGGREGATE DEBT
// =============================================================================

func (s *Store) LoadDebt(ctx context.Context) (*qada.UserPrayerDebt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM debt_records WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query debt record: %w", err)
	}

	var debt qada.UserPrayerDebt
	if err := json.Unmarshal([]byte(payload), &debt); err != nil {
		// Malformed stored data: recover to the empty state.
		log.Printf("[Store] malformed debt record, falling back to empty: %v", err)
		return nil, nil
	}
	return &debt, nil
}

func (s *Store) SaveDebt(ctx context.Context, debt *qada.UserPrayerDebt) error {
	payload, err := json.Marshal(debt)
	if err != nil {
		return fmt.Errorf("encode debt record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO debt_records (id, payload, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save debt record: %w", err)
	}
	return nil
}

// =============================================================================
// DAILY RECORDS
// =============================================================================

func (s *Store) LoadDay(ctx context.Context, key string) (*ledger.DailyPrayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM daily_records WHERE date = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query daily record %s: %w", key, err)
	}

	var rec ledger.DailyPrayerRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		log.Printf("[Store] malformed daily record %s, falling back to empty: %v", key, err)
		return nil, nil
	}
	if rec.Date == "" {
		rec.Date = key
	}
	return &rec, nil
}

func (s *Store) SaveDay(ctx context.Context, record ledger.DailyPrayerRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode daily record %s: %w", record.Date, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_records (date, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		record.Date, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save daily record %s: %w", record.Date, err)
	}
	return nil
}

// =============================================================================
// MARKERS
// =============================================================================

func (s *Store) LoadMarker(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM ledger_markers WHERE name = ?`, markerLastProcessed).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query marker: %w", err)
	}
	return value, nil
}

func (s *Store) SaveMarker(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_markers (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		markerLastProcessed, key, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save marker: %w", err)
	}
	return nil
}
