/*
validate.go - Pre-flight input validation

PURPOSE:
  Validates calculator inputs and produces a human-readable error list a
  UI can show all at once. Validation never throws and never stops at the
  first problem.

RULES:
  - bulugh age must be within [12, 18]; the message names the violated bound
  - each travel period's end date must be strictly after its start date
  - each travel period's days count must be non-negative (checked
    independently of the date span)
  - women exclusion inputs must be within domain bounds
  - a user time zone must be set and resolvable

NOT CHECKED (deliberately):
  total_travel_days is never reconciled against the sum of the individual
  periods; they are independent fields in this domain.
*/
package qada

import (
	"fmt"
	"time"
)

// Bulugh age domain bounds.
const (
	MinBulughAge = 12
	MaxBulughAge = 18
)

// Women exclusion domain bounds.
const (
	MaxHaidDaysPerMonth       = 15
	MaxNifasDaysPerChildbirth = 40
)

// ValidationResult carries every applicable problem, not just the first.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks the calculator inputs. Women and travel are optional; nil
// skips their rules. The returned error list is empty iff Valid is true.
func Validate(personal PersonalData, women *WomenData, travel *TravelData) ValidationResult {
	var errs []string

	if personal.BulughAge < MinBulughAge {
		errs = append(errs, fmt.Sprintf("bulugh age %d is below the minimum of %d", personal.BulughAge, MinBulughAge))
	}
	if personal.BulughAge > MaxBulughAge {
		errs = append(errs, fmt.Sprintf("bulugh age %d is above the maximum of %d", personal.BulughAge, MaxBulughAge))
	}

	if personal.Timezone == "" {
		errs = append(errs, "timezone is not set")
	} else if _, err := time.LoadLocation(personal.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("unknown timezone %q", personal.Timezone))
	}

	if women != nil {
		if women.HaidDaysPerMonth < 0 || women.HaidDaysPerMonth > MaxHaidDaysPerMonth {
			errs = append(errs, fmt.Sprintf("haid days per month must be between 0 and %d", MaxHaidDaysPerMonth))
		}
		if women.NifasDaysPerChildbirth < 0 || women.NifasDaysPerChildbirth > MaxNifasDaysPerChildbirth {
			errs = append(errs, fmt.Sprintf("nifas days per childbirth must be between 0 and %d", MaxNifasDaysPerChildbirth))
		}
		if women.ChildbirthCount < 0 {
			errs = append(errs, "childbirth count is negative")
		}
	}

	if travel != nil {
		for i, p := range travel.Periods {
			// The two period checks are independent: a bad days count is
			// reported even when the dates themselves are fine.
			if !p.EndDate.After(p.StartDate) {
				errs = append(errs, fmt.Sprintf("travel period %d: end date is earlier than or equal to start date", i+1))
			}
			if p.DaysCount < 0 {
				errs = append(errs, fmt.Sprintf("travel period %d: days count is negative", i+1))
			}
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
