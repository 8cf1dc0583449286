/*
repository.go - Persistence seam for the ledger and reconciler

PURPOSE:
  An explicit repository interface injected into the ledger, so persistence
  is swappable (in-memory for tests, SQLite in production, anything else
  later) instead of ambient key-value storage with ad-hoc JSON parsing.

CONTRACT:
  - Loads return (nil-ish zero, nil error) when nothing is stored.
  - Implementations recover from malformed persisted data by falling back
    to the empty state and logging; they never propagate a decode failure
    as a crash to the caller.
  - Saves are last-write-wins whole-record replacements.

IMPLEMENTATIONS:
  - store/memory:  in-memory, for tests and dev
  - store/sqlite:  SQLite with WAL, for production
*/
package ledger

import (
	"context"
	"errors"

	"github.com/miqat/qada-engine/qada"
)

var (
	// ErrNoDebtRecord is returned by operations that need an aggregate debt
	// record when none has been calculated yet.
	ErrNoDebtRecord = errors.New("no prayer debt record")

	// ErrAlreadyCompleted is returned when marking a prayer slot that is
	// already in its terminal completed state.
	ErrAlreadyCompleted = errors.New("prayer already completed for this date")
)

// Repository persists the aggregate debt record, the per-date prayer
// records, and the day-transition marker.
type Repository interface {
	// LoadDebt returns the aggregate record, or nil when none is stored.
	LoadDebt(ctx context.Context) (*qada.UserPrayerDebt, error)

	// SaveDebt replaces the aggregate record. Last write wins.
	SaveDebt(ctx context.Context, debt *qada.UserPrayerDebt) error

	// LoadDay returns the record for a date key, or nil when none is stored.
	LoadDay(ctx context.Context, key string) (*DailyPrayerRecord, error)

	// SaveDay upserts a daily record.
	SaveDay(ctx context.Context, record DailyPrayerRecord) error

	// LoadMarker returns the last processed date key, "" when unset.
	LoadMarker(ctx context.Context) (string, error)

	// SaveMarker durably records the last processed date key.
	SaveMarker(ctx context.Context, key string) error
}
