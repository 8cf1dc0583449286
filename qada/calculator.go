/*
calculator.go - The prayer-debt calculation

PURPOSE:
  Maps (personal data, women's exclusions, travel data, madhab) to an
  immutable DebtCalculation: missed prayer counts per type, shortened
  travel-prayer counts, and the day accounting behind them.

CONTRACT:
  Calculate is pure and total. It never errors: zero or negative spans,
  missing optional inputs, and oversized exclusions all clamp to zero
  counters. It assumes the validator has already accepted the input;
  out-of-range values are not re-checked here.

ALGORITHM:
  1. period = [bulugh date, prayer start date] (or [bulugh date, now] when
     today_as_start is set)
  2. total days = floor day diff, zero when end <= start
  3. excluded days = total travel days
                   + haid days/month x months in period
                   + nifas days/childbirth x childbirth count
     (women terms only for female users with women data present)
  4. effective days = max(0, total - excluded)
  5. one missed obligation per effective day per prayer; witr only under
     the hanafi madhab
  6. each travel day additionally owes one shortened dhuhr, asr and isha
     (additive: the travel day still required the two-rak'ah prayer,
     tracked as its own qada category)

SEE ALSO:
  - validate.go: the pre-flight gate this function assumes
  - calendar.go: DaysBetween, BulughDate, MonthsIn
*/
package qada

import "time"

// CalculationInput bundles the calculator arguments. Women and Travel are
// optional; an empty Madhab defaults to hanafi.
type CalculationInput struct {
	Personal PersonalData
	Women    *WomenData
	Travel   *TravelData
	Madhab   Madhab
}

// Calculate computes the prayer debt for the given input. now supplies the
// period end when Personal.TodayAsStart is set; passing it explicitly keeps
// the function deterministic.
func Calculate(in CalculationInput, now time.Time) DebtCalculation {
	madhab := in.Madhab
	if madhab == "" {
		madhab = MadhabHanafi
	}

	start := BulughDate(in.Personal)
	end := in.Personal.PrayerStartDate
	if in.Personal.TodayAsStart {
		end = now
	}

	totalDays := 0
	if end.After(start) {
		totalDays = DaysBetween(start, end)
	}

	excluded := 0
	if in.Travel != nil {
		excluded += in.Travel.TotalTravelDays
	}
	if in.Personal.Gender == GenderFemale && in.Women != nil {
		excluded += in.Women.HaidDaysPerMonth * MonthsIn(totalDays)
		excluded += in.Women.NifasDaysPerChildbirth * in.Women.ChildbirthCount
	}

	effective := totalDays - excluded
	if effective < 0 {
		effective = 0
	}

	missed := PrayerCounts{
		Fajr:    effective,
		Dhuhr:   effective,
		Asr:     effective,
		Maghrib: effective,
		Isha:    effective,
	}
	if madhab == MadhabHanafi {
		missed.Witr = effective
	}

	var travel TravelPrayers
	if in.Travel != nil {
		travel = TravelPrayers{
			DhuhrSafar: in.Travel.TotalTravelDays,
			AsrSafar:   in.Travel.TotalTravelDays,
			IshaSafar:  in.Travel.TotalTravelDays,
		}
	}

	return DebtCalculation{
		Period:        Period{Start: start, End: end},
		TotalDays:     totalDays,
		ExcludedDays:  excluded,
		EffectiveDays: effective,
		MissedPrayers: missed,
		TravelPrayers: travel,
	}
}
