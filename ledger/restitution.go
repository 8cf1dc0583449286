/*
restitution.go - The restitution reconciler

PURPOSE:
  Applies user-entered "paid back" counts against the aggregate debt:
  completed counters go up, missed counters go down, floored at zero.

ATOMICITY:
  The whole batch is applied to a working copy of the aggregate record and
  persisted with a single save. Either every entry in the batch is applied
  or none is; a persistence failure mid-batch can never leave a partially
  updated record.

OVERSHOOT:
  Repaying more than is owed is not an error: the missed counter floors at
  zero, the completed counter still records the full amount. The clamped
  remainder per type is reported in the result so callers can surface a
  warning instead of silently masking the mistake.
*/
package ledger

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/miqat/qada-engine/qada"
)

// RestitutionEntry is one user-entered repayment. Type is either one of
// the six daily prayers or one of the three safar categories.
type RestitutionEntry struct {
	Type   string `json:"type"`
	Amount int    `json:"amount"`
}

// RestitutionResult reports what a batch did.
type RestitutionResult struct {
	BatchID string         `json:"batch_id"`
	Applied int            `json:"applied"`
	Clamped map[string]int `json:"clamped,omitempty"`
}

// ApplyRestitution applies a batch of repayment entries against the
// aggregate record. Entries with amount <= 0 are ignored. An unknown type
// fails the whole batch before anything is applied.
func (l *DailyLedger) ApplyRestitution(ctx context.Context, entries []RestitutionEntry) (RestitutionResult, error) {
	for _, e := range entries {
		if !qada.PrayerType(e.Type).IsValid() && !qada.TravelPrayerType(e.Type).IsValid() {
			return RestitutionResult{}, fmt.Errorf("%w: %q", qada.ErrUnknownPrayer, e.Type)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	stored, err := l.repo.LoadDebt(ctx)
	if err != nil {
		return RestitutionResult{}, fmt.Errorf("load debt: %w", err)
	}
	if stored == nil {
		return RestitutionResult{}, ErrNoDebtRecord
	}

	// Work on a copy so a failed save leaves the stored record untouched.
	debt := *stored
	result := RestitutionResult{
		BatchID: uuid.NewString(),
		Clamped: make(map[string]int),
	}

	for _, e := range entries {
		if e.Amount <= 0 {
			continue
		}
		var clamped int
		if p := qada.PrayerType(e.Type); p.IsValid() {
			debt.RepaymentProgress.CompletedPrayers.Add(p, e.Amount)
			clamped = debt.DebtCalculation.MissedPrayers.Sub(p, e.Amount)
		} else {
			t := qada.TravelPrayerType(e.Type)
			debt.RepaymentProgress.CompletedTravelPrayers.Add(t, e.Amount)
			clamped = debt.DebtCalculation.TravelPrayers.Sub(t, e.Amount)
		}
		if clamped > 0 {
			result.Clamped[e.Type] += clamped
		}
		result.Applied++
	}

	if result.Applied == 0 {
		return result, nil
	}

	debt.RepaymentProgress.LastUpdated = l.clock()
	if err := l.repo.SaveDebt(ctx, &debt); err != nil {
		return RestitutionResult{}, fmt.Errorf("save debt: %w", err)
	}

	for t, n := range result.Clamped {
		log.Printf("[Reconciler] batch %s: clamped %d excess repayment(s) for %s", result.BatchID, n, t)
	}
	return result, nil
}
