/*
Package ledger provides the stateful daily prayer ledger.

PURPOSE:
  Day-by-day record of the six daily prayers, current-prayer-window
  detection, the idempotent midnight day transition that folds unperformed
  prayers into the aggregate debt, and the restitution reconciler that
  applies "paid back" entries against it.

OWNERSHIP:
  The ledger exclusively owns the per-date records and the "last processed
  date" marker. The aggregate UserPrayerDebt record is shared with the
  reconciler and mutated only through the operations in this package.

SEE ALSO:
  - ledger.go: the DailyLedger state machine
  - restitution.go: ApplyRestitution
  - repository.go: the persistence seam
*/
package ledger

import (
	"time"

	"github.com/miqat/qada-engine/qada"
)

// PrayerSlot is the per-date state of one prayer. A slot is created
// pending and becomes terminal once completed; there is no un-completing
// at the ledger level.
type PrayerSlot struct {
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_time,omitempty"`
	IsQada      bool       `json:"is_qada,omitempty"`
}

// DailyPrayerRecord holds the six slots for one calendar date, keyed by the
// canonical YYYY-MM-DD date key.
type DailyPrayerRecord struct {
	Date    string                         `json:"date"`
	Prayers map[qada.PrayerType]PrayerSlot `json:"prayers"`
}

// NewDailyRecord synthesizes an all-pending record for a date key.
func NewDailyRecord(key string) DailyPrayerRecord {
	prayers := make(map[qada.PrayerType]PrayerSlot, len(qada.DailyPrayers))
	for _, p := range qada.DailyPrayers {
		prayers[p] = PrayerSlot{}
	}
	return DailyPrayerRecord{Date: key, Prayers: prayers}
}

// Clone returns a deep copy. Repositories hand out clones so callers can
// never mutate stored state behind the ledger's back.
func (r DailyPrayerRecord) Clone() DailyPrayerRecord {
	out := DailyPrayerRecord{Date: r.Date, Prayers: make(map[qada.PrayerType]PrayerSlot, len(r.Prayers))}
	for p, s := range r.Prayers {
		if s.CompletedAt != nil {
			at := *s.CompletedAt
			s.CompletedAt = &at
		}
		out.Prayers[p] = s
	}
	return out
}

// DayTransitionResult reports what a HandleDayTransition call did.
type DayTransitionResult struct {
	MissedPrayers qada.PrayerCounts `json:"missed_prayers"`
	NewDayStarted bool              `json:"new_day_started"`
}
