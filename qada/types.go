/*
Package qada provides the core prayer-debt accounting engine.

PURPOSE:
  This package contains the pure calculation core: it converts a person's
  biography (birth date, age of religious majority, travel periods,
  menstrual/postpartum exclusions) into a structured ledger of missed
  obligatory prayers. It has no UI, transport, or storage dependency.

KEY CONCEPTS IN THIS FILE (types.go):
  - PrayerType / TravelPrayerType: the tracked obligation categories
  - PrayerCounts: fixed record of six non-negative counters
  - PersonalData / WomenData / TravelData: calculation inputs
  - DebtCalculation: the immutable calculation result
  - UserPrayerDebt: the persisted aggregate record (debt + progress)

DESIGN PRINCIPLES:
  1. Purity: Calculate is a total function over validated inputs
  2. Clamping: arithmetic edge cases floor at zero, they never error
  3. Explicit time zone: the engine never assumes UTC or device-local time
  4. Boundary dates are ISO-8601: time.Time in memory, strings on the wire

SEE ALSO:
  - calculator.go: the debt calculation algorithm
  - validate.go: pre-flight input validation
  - calendar.go: day-counting and date-key helpers
  - prayertimes.go: prayer window boundaries
*/
package qada

import (
	"time"
)

// =============================================================================
// PRAYER TYPES
// =============================================================================

// PrayerType identifies one of the six tracked daily obligations.
// Witr is only an obligation under the Hanafi madhab.
type PrayerType string

const (
	PrayerFajr    PrayerType = "fajr"
	PrayerDhuhr   PrayerType = "dhuhr"
	PrayerAsr     PrayerType = "asr"
	PrayerMaghrib PrayerType = "maghrib"
	PrayerIsha    PrayerType = "isha"
	PrayerWitr    PrayerType = "witr"
)

// DailyPrayers lists all six tracked prayers in window order.
var DailyPrayers = []PrayerType{
	PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha, PrayerWitr,
}

// IsValid reports whether p is one of the six tracked prayers.
func (p PrayerType) IsValid() bool {
	switch p {
	case PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha, PrayerWitr:
		return true
	}
	return false
}

// TravelPrayerType identifies a shortened (safar) prayer obligation.
// Only the four-rak'ah prayers are shortened during travel; Fajr, Maghrib
// and Witr are never affected.
type TravelPrayerType string

const (
	TravelDhuhr TravelPrayerType = "dhuhr_safar"
	TravelAsr   TravelPrayerType = "asr_safar"
	TravelIsha  TravelPrayerType = "isha_safar"
)

// TravelPrayerTypes lists the three shortened-prayer categories.
var TravelPrayerTypes = []TravelPrayerType{TravelDhuhr, TravelAsr, TravelIsha}

// IsValid reports whether t is one of the three safar categories.
func (t TravelPrayerType) IsValid() bool {
	switch t {
	case TravelDhuhr, TravelAsr, TravelIsha:
		return true
	}
	return false
}

// =============================================================================
// MADHAB & GENDER
// =============================================================================

// Madhab is the school of jurisprudence governing the witr rule.
type Madhab string

const (
	MadhabHanafi Madhab = "hanafi" // witr counts as an obligatory missed prayer
	MadhabShafii Madhab = "shafii" // witr is not counted
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// =============================================================================
// PRAYER COUNTERS
// =============================================================================

// PrayerCounts is a fixed record of six non-negative integer counters.
// It serves both as MissedPrayers (outstanding debt) and CompletedPrayers
// (restitution progress); the zero-floor business invariant is enforced by
// the operations that mutate it, not by the type.
type PrayerCounts struct {
	Fajr    int `json:"fajr"`
	Dhuhr   int `json:"dhuhr"`
	Asr     int `json:"asr"`
	Maghrib int `json:"maghrib"`
	Isha    int `json:"isha"`
	Witr    int `json:"witr"`
}

// Get returns the counter for p. Unknown prayer types read as zero.
func (c PrayerCounts) Get(p PrayerType) int {
	switch p {
	case PrayerFajr:
		return c.Fajr
	case PrayerDhuhr:
		return c.Dhuhr
	case PrayerAsr:
		return c.Asr
	case PrayerMaghrib:
		return c.Maghrib
	case PrayerIsha:
		return c.Isha
	case PrayerWitr:
		return c.Witr
	}
	return 0
}

// Add increments the counter for p by n (n may be negative; callers that
// subtract must clamp via Sub).
func (c *PrayerCounts) Add(p PrayerType, n int) {
	switch p {
	case PrayerFajr:
		c.Fajr += n
	case PrayerDhuhr:
		c.Dhuhr += n
	case PrayerAsr:
		c.Asr += n
	case PrayerMaghrib:
		c.Maghrib += n
	case PrayerIsha:
		c.Isha += n
	case PrayerWitr:
		c.Witr += n
	}
}

// Sub decrements the counter for p by n, floored at zero. It returns the
// overshoot that was clamped away (zero when the full amount applied).
func (c *PrayerCounts) Sub(p PrayerType, n int) int {
	have := c.Get(p)
	if n <= have {
		c.Add(p, -n)
		return 0
	}
	c.Add(p, -have)
	return n - have
}

// Total returns the sum of all six counters.
func (c PrayerCounts) Total() int {
	return c.Fajr + c.Dhuhr + c.Asr + c.Maghrib + c.Isha + c.Witr
}

// IsZero reports whether every counter is zero.
func (c PrayerCounts) IsZero() bool { return c.Total() == 0 }

// TravelPrayers counts shortened prayers owed from travel days. These are a
// distinct qada category, additive to the ordinary missed-prayer counters.
type TravelPrayers struct {
	DhuhrSafar int `json:"dhuhr_safar"`
	AsrSafar   int `json:"asr_safar"`
	IshaSafar  int `json:"isha_safar"`
}

// Get returns the counter for t. Unknown types read as zero.
func (tp TravelPrayers) Get(t TravelPrayerType) int {
	switch t {
	case TravelDhuhr:
		return tp.DhuhrSafar
	case TravelAsr:
		return tp.AsrSafar
	case TravelIsha:
		return tp.IshaSafar
	}
	return 0
}

// Add increments the counter for t by n.
func (tp *TravelPrayers) Add(t TravelPrayerType, n int) {
	switch t {
	case TravelDhuhr:
		tp.DhuhrSafar += n
	case TravelAsr:
		tp.AsrSafar += n
	case TravelIsha:
		tp.IshaSafar += n
	}
}

// Sub decrements the counter for t by n, floored at zero, returning the
// clamped overshoot.
func (tp *TravelPrayers) Sub(t TravelPrayerType, n int) int {
	have := tp.Get(t)
	if n <= have {
		tp.Add(t, -n)
		return 0
	}
	tp.Add(t, -have)
	return n - have
}

// Total returns the sum of the three counters.
func (tp TravelPrayers) Total() int { return tp.DhuhrSafar + tp.AsrSafar + tp.IshaSafar }

// =============================================================================
// CALCULATION INPUTS
// =============================================================================

// PersonalData is the biography driving the debt calculation.
//
// BulughDate is derived from BirthDate + BulughAge years when left zero:
// civil years by default, lunar (Hijri) years when UseLunarBulugh is set.
// Invariant: BulughDate >= BirthDate.
//
// Timezone is the user-assigned IANA zone name (e.g. "Europe/Istanbul").
// Every "today" and prayer-window decision is made in this zone; the engine
// never silently falls back to UTC or to the host's local clock.
type PersonalData struct {
	BirthDate       time.Time `json:"birth_date"`
	Gender          Gender    `json:"gender"`
	BulughAge       int       `json:"bulugh_age"`
	BulughDate      time.Time `json:"bulugh_date"`
	PrayerStartDate time.Time `json:"prayer_start_date"`
	TodayAsStart    bool      `json:"today_as_start"`
	UseLunarBulugh  bool      `json:"use_lunar_bulugh,omitempty"`
	Timezone        string    `json:"timezone"`
}

// WomenData holds the exclusion inputs for female users. It only ever
// reduces the number of accountable days; it never mutates prayer counters
// directly.
type WomenData struct {
	HaidDaysPerMonth       int `json:"haid_days_per_month"`
	NifasDaysPerChildbirth int `json:"nifas_days_per_childbirth"`
	ChildbirthCount        int `json:"childbirth_count"`
}

// TravelPeriod is a single journey. DaysCount is carried as entered and is
// validated independently of the date span.
type TravelPeriod struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	DaysCount int       `json:"days_count"`
}

// TravelData aggregates travel history. TotalTravelDays is the
// authoritative exclusion count; it is not reconciled against the sum of
// the individual periods.
type TravelData struct {
	TotalTravelDays int            `json:"total_travel_days"`
	Periods         []TravelPeriod `json:"travel_periods,omitempty"`
}

// =============================================================================
// CALCULATION RESULT
// =============================================================================

// Period is the accountable span [Start, End] of the calculation.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DebtCalculation is the immutable result of Calculate.
//
// Invariants:
//   - EffectiveDays = max(0, TotalDays - ExcludedDays)
//   - MissedPrayers[x] = EffectiveDays for the five daily prayers
//   - MissedPrayers.Witr = EffectiveDays iff madhab is hanafi
//   - TravelPrayers counters each equal TotalTravelDays when travel data
//     is present (additive to MissedPrayers, not subtracted from it)
type DebtCalculation struct {
	Period        Period        `json:"period"`
	TotalDays     int           `json:"total_days"`
	ExcludedDays  int           `json:"excluded_days"`
	EffectiveDays int           `json:"effective_days"`
	MissedPrayers PrayerCounts  `json:"missed_prayers"`
	TravelPrayers TravelPrayers `json:"travel_prayers"`
}

// =============================================================================
// AGGREGATE RECORD
// =============================================================================

// RepaymentProgress tracks restitution applied against the debt.
type RepaymentProgress struct {
	CompletedPrayers       PrayerCounts  `json:"completed_prayers"`
	CompletedTravelPrayers TravelPrayers `json:"completed_travel_prayers"`
	LastUpdated            time.Time     `json:"last_updated"`
}

// UserPrayerDebt is the persisted aggregate record shared between the daily
// ledger and the restitution reconciler. It is mutated only through their
// defined operations, never concurrently within one process tick.
type UserPrayerDebt struct {
	PersonalData      PersonalData      `json:"personal_data"`
	WomenData         *WomenData        `json:"women_data,omitempty"`
	TravelData        *TravelData       `json:"travel_data,omitempty"`
	Madhab            Madhab            `json:"madhab"`
	DebtCalculation   DebtCalculation   `json:"debt_calculation"`
	RepaymentProgress RepaymentProgress `json:"repayment_progress"`
}
