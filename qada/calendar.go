/*
calendar.go - Day counting and date-key arithmetic

PURPOSE:
  The calendar helpers the rest of the engine is built on: floor-division
  day diffs, canonical YYYY-MM-DD date keys in an explicit time zone, and
  the civil/lunar derivation of the bulugh date.

TIME ZONE POLICY:
  Nothing in this package reads the host's local clock zone. Every helper
  that needs a zone takes a *time.Location resolved from the user-assigned
  IANA name in PersonalData. This makes "today" deterministic for users who
  travel and for server-side recomputation.

LUNAR YEARS:
  The Hijri year is shorter than the civil year (~354.367 days). Bulugh age
  is traditionally counted in lunar years, so the lunar derivation converts
  age to days with exact decimal arithmetic before flooring.

SEE ALSO:
  - calculator.go: consumes DaysBetween and BulughDate
  - prayertimes.go: date keys anchor the daily ledger
*/
package qada

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateKeyLayout is the canonical ledger key format.
const DateKeyLayout = "2006-01-02"

// lunarYearDays is the mean length of a Hijri year in civil days.
var lunarYearDays = decimal.NewFromFloat(354.367)

// DaysBetween returns the whole-day difference to - from, floored toward
// negative infinity. Callers that require a non-negative span must validate
// ordering first.
func DaysBetween(from, to time.Time) int {
	d := to.Sub(from)
	days := d / (24 * time.Hour)
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return int(days)
}

// DateKey returns the canonical YYYY-MM-DD key for t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}

// ParseDateKey parses a canonical YYYY-MM-DD key as midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last second of t's calendar day in loc. The day
// transition evaluates "was the window already open" against this instant.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Second)
}

// ResolveLocation loads the IANA zone named by PersonalData.Timezone.
// An empty name is an error: the engine refuses to guess a zone.
func ResolveLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, ErrMissingTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// BulughDate derives the date religious majority is reached. When the
// personal record carries an explicit BulughDate it wins; otherwise the
// date is birth + BulughAge years, counted in civil years or, when
// UseLunarBulugh is set, in lunar years floored to whole days.
func BulughDate(p PersonalData) time.Time {
	if !p.BulughDate.IsZero() {
		return p.BulughDate
	}
	if p.UseLunarBulugh {
		days := decimal.NewFromInt(int64(p.BulughAge)).Mul(lunarYearDays).Floor().IntPart()
		return p.BirthDate.AddDate(0, 0, int(days))
	}
	return p.BirthDate.AddDate(p.BulughAge, 0, 0)
}

// MonthsIn approximates the number of months in a day span (30-day months,
// floored). Used to scale the monthly haid exclusion.
func MonthsIn(totalDays int) int {
	if totalDays < 0 {
		return 0
	}
	return totalDays / 30
}
