/*
prayertimes.go - Prayer window boundaries

PURPOSE:
  Defines the capability interface the daily ledger uses to decide which
  prayer window a wall-clock instant falls into, plus the fixed-table
  implementation the product currently ships.

DESIGN:
  True astronomical prayer-time calculation (location, method, season) is a
  precision concern the core stays decoupled from. PrayerTimeProvider is the
  seam: the fixed table is one concrete provider, an astronomical one can be
  swapped in without touching the ledger.

WINDOW SEMANTICS:
  Windows are half-open [start, next start). The span from midnight to the
  fajr boundary belongs to witr: last night's window is still open.
*/
package qada

import "time"

// PrayerWindow is the opening instant of one prayer's window on a given day.
type PrayerWindow struct {
	Prayer PrayerType
	Start  time.Time
}

// PrayerTimeProvider resolves per-prayer window start times for a calendar
// day. Implementations must return all six windows in chronological order.
type PrayerTimeProvider interface {
	Windows(date time.Time, loc *time.Location) []PrayerWindow
}

// =============================================================================
// FIXED SCHEDULE - table-driven provider
// =============================================================================

// fixedBoundary is a wall-clock window start.
type fixedBoundary struct {
	prayer PrayerType
	hour   int
	minute int
}

var fixedBoundaries = []fixedBoundary{
	{PrayerFajr, 5, 30},
	{PrayerDhuhr, 12, 30},
	{PrayerAsr, 15, 30},
	{PrayerMaghrib, 18, 0},
	{PrayerIsha, 19, 30},
	{PrayerWitr, 20, 0},
}

// FixedSchedule is the table-driven PrayerTimeProvider: the same six
// wall-clock boundaries every day of the year.
type FixedSchedule struct{}

// Windows returns the six fixed window starts for date's calendar day.
func (FixedSchedule) Windows(date time.Time, loc *time.Location) []PrayerWindow {
	day := date.In(loc)
	windows := make([]PrayerWindow, 0, len(fixedBoundaries))
	for _, b := range fixedBoundaries {
		windows = append(windows, PrayerWindow{
			Prayer: b.prayer,
			Start:  time.Date(day.Year(), day.Month(), day.Day(), b.hour, b.minute, 0, 0, loc),
		})
	}
	return windows
}

// CurrentPrayer maps now to exactly one window using the provider's
// boundaries. Before the first window of the day it returns witr.
func CurrentPrayer(p PrayerTimeProvider, now time.Time, loc *time.Location) PrayerType {
	current := PrayerWitr // midnight..first window: last night's witr
	for _, w := range p.Windows(now, loc) {
		if now.Before(w.Start) {
			break
		}
		current = w.Prayer
	}
	return current
}

// IsPrayerTimePast reports whether the window for prayer has opened by now,
// regardless of whether a later window has also begun.
func IsPrayerTimePast(p PrayerTimeProvider, prayer PrayerType, now time.Time, loc *time.Location) bool {
	for _, w := range p.Windows(now, loc) {
		if w.Prayer == prayer {
			return !now.Before(w.Start)
		}
	}
	return false
}
