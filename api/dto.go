/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. All date fields
  cross this boundary as ISO-8601 strings (YYYY-MM-DD for calendar dates,
  RFC 3339 for timestamps) and are parsed back to time values on the way in.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Shape/parse errors are handled here; domain validation lives in
  qada.Validate. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - qada/types.go: The domain shapes these mirror
*/
package api

import (
	"fmt"
	"time"

	"github.com/miqat/qada-engine/ledger"
	"github.com/miqat/qada-engine/qada"
)

const dateLayout = "2006-01-02"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// PersonalDataDTO mirrors qada.PersonalData with string dates.
type PersonalDataDTO struct {
	BirthDate       string `json:"birth_date"`
	Gender          string `json:"gender"`
	BulughAge       int    `json:"bulugh_age"`
	BulughDate      string `json:"bulugh_date,omitempty"`
	PrayerStartDate string `json:"prayer_start_date,omitempty"`
	TodayAsStart    bool   `json:"today_as_start"`
	UseLunarBulugh  bool   `json:"use_lunar_bulugh,omitempty"`
	Timezone        string `json:"timezone"`
}

// WomenDataDTO mirrors qada.WomenData.
type WomenDataDTO struct {
	HaidDaysPerMonth       int `json:"haid_days_per_month"`
	NifasDaysPerChildbirth int `json:"nifas_days_per_childbirth"`
	ChildbirthCount        int `json:"childbirth_count"`
}

// TravelPeriodDTO mirrors qada.TravelPeriod with string dates.
type TravelPeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	DaysCount int    `json:"days_count"`
}

// TravelDataDTO mirrors qada.TravelData.
type TravelDataDTO struct {
	TotalTravelDays int               `json:"total_travel_days"`
	Periods         []TravelPeriodDTO `json:"travel_periods,omitempty"`
}

// CalculateRequest is the body of POST /api/debt/calculate (and the async
// job variant).
type CalculateRequest struct {
	PersonalData PersonalDataDTO `json:"personal_data"`
	WomenData    *WomenDataDTO   `json:"women_data,omitempty"`
	TravelData   *TravelDataDTO  `json:"travel_data,omitempty"`
	Madhab       string          `json:"madhab,omitempty"`
}

// ProgressRequest is the body of POST /api/debt/progress.
type ProgressRequest struct {
	Entries []ledger.RestitutionEntry `json:"entries"`
}

// CompletePrayerRequest is the body of POST /api/prayers/complete.
// Date defaults to today in the user's zone when empty.
type CompletePrayerRequest struct {
	Prayer string `json:"prayer"`
	Date   string `json:"date,omitempty"`
	IsQada bool   `json:"is_qada"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details string   `json:"details,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// PeriodDTO is a calculation period with date-only strings.
type PeriodDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DebtCalculationDTO mirrors qada.DebtCalculation.
type DebtCalculationDTO struct {
	Period        PeriodDTO          `json:"period"`
	TotalDays     int                `json:"total_days"`
	ExcludedDays  int                `json:"excluded_days"`
	EffectiveDays int                `json:"effective_days"`
	MissedPrayers qada.PrayerCounts  `json:"missed_prayers"`
	TravelPrayers qada.TravelPrayers `json:"travel_prayers"`
}

// RepaymentProgressDTO mirrors qada.RepaymentProgress.
type RepaymentProgressDTO struct {
	CompletedPrayers       qada.PrayerCounts  `json:"completed_prayers"`
	CompletedTravelPrayers qada.TravelPrayers `json:"completed_travel_prayers"`
	LastUpdated            string             `json:"last_updated"`
}

// SnapshotDTO is the aggregate record as served to clients.
type SnapshotDTO struct {
	Madhab            string               `json:"madhab"`
	Timezone          string               `json:"timezone"`
	DebtCalculation   DebtCalculationDTO   `json:"debt_calculation"`
	RepaymentProgress RepaymentProgressDTO `json:"repayment_progress"`
}

// ProgressResponse reports an applied restitution batch.
type ProgressResponse struct {
	BatchID  string         `json:"batch_id"`
	Applied  int            `json:"applied"`
	Clamped  map[string]int `json:"clamped,omitempty"`
	Snapshot SnapshotDTO    `json:"snapshot"`
}

// TodayDTO is the daily ledger surface for the current date.
type TodayDTO struct {
	Record        ledger.DailyPrayerRecord `json:"record"`
	CurrentPrayer string                   `json:"current_prayer"`
}

// JobDTO is the async calculation job as served to pollers.
type JobDTO struct {
	ID          string              `json:"id"`
	Status      string              `json:"status"`
	Error       string              `json:"error,omitempty"`
	Calculation *DebtCalculationDTO `json:"calculation,omitempty"`
	CreatedAt   string              `json:"created_at"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date %q (want YYYY-MM-DD)", field, value)
	}
	return t, nil
}

// toCalculationInput parses a request into domain inputs. Parse problems
// come back as one error per field so the UI can show them all at once.
func toCalculationInput(req CalculateRequest) (qada.CalculationInput, []string) {
	var problems []string
	var in qada.CalculationInput

	p := req.PersonalData
	personal := qada.PersonalData{
		Gender:         qada.Gender(p.Gender),
		BulughAge:      p.BulughAge,
		TodayAsStart:   p.TodayAsStart,
		UseLunarBulugh: p.UseLunarBulugh,
		Timezone:       p.Timezone,
	}
	if p.BirthDate == "" {
		problems = append(problems, "birth_date is required")
	} else if t, err := parseDate("birth_date", p.BirthDate); err != nil {
		problems = append(problems, err.Error())
	} else {
		personal.BirthDate = t
	}
	if p.BulughDate != "" {
		if t, err := parseDate("bulugh_date", p.BulughDate); err != nil {
			problems = append(problems, err.Error())
		} else {
			personal.BulughDate = t
		}
	}
	if p.PrayerStartDate != "" {
		if t, err := parseDate("prayer_start_date", p.PrayerStartDate); err != nil {
			problems = append(problems, err.Error())
		} else {
			personal.PrayerStartDate = t
		}
	}
	if !p.TodayAsStart && p.PrayerStartDate == "" {
		problems = append(problems, "prayer_start_date is required unless today_as_start is set")
	}
	in.Personal = personal

	if req.WomenData != nil {
		in.Women = &qada.WomenData{
			HaidDaysPerMonth:       req.WomenData.HaidDaysPerMonth,
			NifasDaysPerChildbirth: req.WomenData.NifasDaysPerChildbirth,
			ChildbirthCount:        req.WomenData.ChildbirthCount,
		}
	}
	if req.TravelData != nil {
		travel := &qada.TravelData{TotalTravelDays: req.TravelData.TotalTravelDays}
		for i, tp := range req.TravelData.Periods {
			period := qada.TravelPeriod{DaysCount: tp.DaysCount}
			if t, err := parseDate(fmt.Sprintf("travel period %d start_date", i+1), tp.StartDate); err != nil {
				problems = append(problems, err.Error())
			} else {
				period.StartDate = t
			}
			if t, err := parseDate(fmt.Sprintf("travel period %d end_date", i+1), tp.EndDate); err != nil {
				problems = append(problems, err.Error())
			} else {
				period.EndDate = t
			}
			travel.Periods = append(travel.Periods, period)
		}
		in.Travel = travel
	}

	in.Madhab = qada.Madhab(req.Madhab)
	if req.Madhab != "" && in.Madhab != qada.MadhabHanafi && in.Madhab != qada.MadhabShafii {
		problems = append(problems, fmt.Sprintf("unknown madhab %q", req.Madhab))
	}

	return in, problems
}

func toDebtCalculationDTO(d qada.DebtCalculation) DebtCalculationDTO {
	return DebtCalculationDTO{
		Period: PeriodDTO{
			Start: d.Period.Start.Format(dateLayout),
			End:   d.Period.End.Format(dateLayout),
		},
		TotalDays:     d.TotalDays,
		ExcludedDays:  d.ExcludedDays,
		EffectiveDays: d.EffectiveDays,
		MissedPrayers: d.MissedPrayers,
		TravelPrayers: d.TravelPrayers,
	}
}

func toSnapshotDTO(debt *qada.UserPrayerDebt) SnapshotDTO {
	lastUpdated := ""
	if !debt.RepaymentProgress.LastUpdated.IsZero() {
		lastUpdated = debt.RepaymentProgress.LastUpdated.Format(time.RFC3339)
	}
	return SnapshotDTO{
		Madhab:          string(debt.Madhab),
		Timezone:        debt.PersonalData.Timezone,
		DebtCalculation: toDebtCalculationDTO(debt.DebtCalculation),
		RepaymentProgress: RepaymentProgressDTO{
			CompletedPrayers:       debt.RepaymentProgress.CompletedPrayers,
			CompletedTravelPrayers: debt.RepaymentProgress.CompletedTravelPrayers,
			LastUpdated:            lastUpdated,
		},
	}
}
