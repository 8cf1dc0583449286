/*
ledger.go - The daily prayer ledger state machine

PURPOSE:
  Tracks the six per-date prayer slots, answers "which prayer window are we
  in", and runs the idempotent midnight day transition that folds
  yesterday's unperformed prayers into the aggregate debt.

STATE MACHINE (per date, per prayer):
  pending -> completed (is_qada=false)   performed on time
  pending -> completed (is_qada=true)    restitution of older debt today
  Both transitions are terminal for that date.

DAY TRANSITION:
  Guarded by a persisted "last processed date" marker, not by call time:
  calling it twice in the same calendar day accrues nothing twice. The
  original runtime was single-threaded; here concurrent timer and API
  callers are serialized behind an in-process mutex so the marker check
  cannot race before it is durably written.

SEE ALSO:
  - qada/prayertimes.go: window boundaries (pluggable provider)
  - restitution.go: the reconciler sharing this mutex
*/
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/miqat/qada-engine/qada"
)

// DailyLedger owns the per-date prayer records and the day-transition
// marker. Single-writer: all mutation goes through its mutex.
type DailyLedger struct {
	repo  Repository
	times qada.PrayerTimeProvider
	loc   *time.Location
	clock func() time.Time

	mu sync.Mutex
}

// Option configures a DailyLedger.
type Option func(*DailyLedger)

// WithPrayerTimes swaps the prayer-time provider (default: FixedSchedule).
func WithPrayerTimes(p qada.PrayerTimeProvider) Option {
	return func(l *DailyLedger) { l.times = p }
}

// WithClock swaps the wall-clock source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(l *DailyLedger) { l.clock = clock }
}

// New creates a ledger over repo operating in the given user time zone.
func New(repo Repository, loc *time.Location, opts ...Option) *DailyLedger {
	l := &DailyLedger{
		repo:  repo,
		times: qada.FixedSchedule{},
		loc:   loc,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Location returns the ledger's reference time zone.
func (l *DailyLedger) Location() *time.Location {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loc
}

// SetLocation retargets the ledger when the user reassigns their time
// zone. Subsequent date keys and window decisions use the new zone.
func (l *DailyLedger) SetLocation(loc *time.Location) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loc = loc
}

// GetDailyRecord returns the stored record for date, or synthesizes an
// all-pending one. Reading never persists anything.
func (l *DailyLedger) GetDailyRecord(ctx context.Context, date time.Time) (DailyPrayerRecord, error) {
	key := qada.DateKey(date, l.Location())
	rec, err := l.repo.LoadDay(ctx, key)
	if err != nil {
		return DailyPrayerRecord{}, fmt.Errorf("load day %s: %w", key, err)
	}
	if rec == nil {
		return NewDailyRecord(key), nil
	}
	return rec.Clone(), nil
}

// MarkPrayerCompleted sets the slot for prayer on date to completed with
// the current timestamp. Completion is terminal: a second mark for the
// same slot returns ErrAlreadyCompleted.
//
// When isQada is set the completion additionally repays one unit of the
// aggregate debt for that prayer type, floored at zero.
func (l *DailyLedger) MarkPrayerCompleted(ctx context.Context, prayer qada.PrayerType, date time.Time, isQada bool) error {
	if !prayer.IsValid() {
		return fmt.Errorf("%w: %q", qada.ErrUnknownPrayer, prayer)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := qada.DateKey(date, l.loc)
	stored, err := l.repo.LoadDay(ctx, key)
	if err != nil {
		return fmt.Errorf("load day %s: %w", key, err)
	}
	rec := NewDailyRecord(key)
	if stored != nil {
		rec = stored.Clone()
	}

	slot := rec.Prayers[prayer]
	if slot.Completed {
		return fmt.Errorf("%s on %s: %w", prayer, key, ErrAlreadyCompleted)
	}
	now := l.clock()
	slot.Completed = true
	slot.CompletedAt = &now
	slot.IsQada = isQada
	rec.Prayers[prayer] = slot

	if err := l.repo.SaveDay(ctx, rec); err != nil {
		return fmt.Errorf("save day %s: %w", key, err)
	}

	if !isQada {
		return nil
	}

	// Qada completion repays one unit of aggregate debt.
	debt, err := l.repo.LoadDebt(ctx)
	if err != nil {
		return fmt.Errorf("load debt: %w", err)
	}
	if debt == nil {
		// Nothing to repay against; the slot itself is still recorded.
		return nil
	}
	debt.DebtCalculation.MissedPrayers.Sub(prayer, 1)
	debt.RepaymentProgress.CompletedPrayers.Add(prayer, 1)
	debt.RepaymentProgress.LastUpdated = now
	if err := l.repo.SaveDebt(ctx, debt); err != nil {
		return fmt.Errorf("save debt: %w", err)
	}
	return nil
}

// CurrentPrayer maps now to exactly one of the six prayer windows.
func (l *DailyLedger) CurrentPrayer(now time.Time) qada.PrayerType {
	return qada.CurrentPrayer(l.times, now, l.Location())
}

// IsPrayerTimePast reports whether prayer's window has opened by now.
func (l *DailyLedger) IsPrayerTimePast(prayer qada.PrayerType, now time.Time) bool {
	return qada.IsPrayerTimePast(l.times, prayer, now, l.Location())
}

// HandleDayTransition folds yesterday's unperformed prayers into the
// aggregate debt when the calendar day has changed since the last call.
//
// Idempotent within a day: the persisted marker, not the call time, guards
// accrual. First run initializes the marker without migrating anything.
func (l *DailyLedger) HandleDayTransition(ctx context.Context, now time.Time) (DayTransitionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := qada.DateKey(now, l.loc)
	marker, err := l.repo.LoadMarker(ctx)
	if err != nil {
		return DayTransitionResult{}, fmt.Errorf("load marker: %w", err)
	}

	if marker == today {
		return DayTransitionResult{}, nil
	}
	if marker == "" {
		// First run: establish the marker, nothing to migrate.
		if err := l.repo.SaveMarker(ctx, today); err != nil {
			return DayTransitionResult{}, fmt.Errorf("save marker: %w", err)
		}
		return DayTransitionResult{}, nil
	}

	yesterday := qada.StartOfDay(now, l.loc).AddDate(0, 0, -1)
	yesterdayKey := qada.DateKey(yesterday, l.loc)
	cutoff := qada.EndOfDay(yesterday, l.loc)

	stored, err := l.repo.LoadDay(ctx, yesterdayKey)
	if err != nil {
		return DayTransitionResult{}, fmt.Errorf("load day %s: %w", yesterdayKey, err)
	}
	rec := NewDailyRecord(yesterdayKey)
	if stored != nil {
		rec = stored.Clone()
	}

	var missed qada.PrayerCounts
	for _, prayer := range qada.DailyPrayers {
		slot := rec.Prayers[prayer]
		if !slot.Completed && qada.IsPrayerTimePast(l.times, prayer, cutoff, l.loc) {
			missed.Add(prayer, 1)
		}
	}

	if !missed.IsZero() {
		debt, err := l.repo.LoadDebt(ctx)
		if err != nil {
			return DayTransitionResult{}, fmt.Errorf("load debt: %w", err)
		}
		if debt != nil {
			for _, prayer := range qada.DailyPrayers {
				debt.DebtCalculation.MissedPrayers.Add(prayer, missed.Get(prayer))
			}
			if err := l.repo.SaveDebt(ctx, debt); err != nil {
				return DayTransitionResult{}, fmt.Errorf("save debt: %w", err)
			}
		}
	}

	if err := l.repo.SaveMarker(ctx, today); err != nil {
		return DayTransitionResult{}, fmt.Errorf("save marker: %w", err)
	}

	return DayTransitionResult{MissedPrayers: missed, NewDayStarted: true}, nil
}
