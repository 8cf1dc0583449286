/*
handlers.go - HTTP API handlers for the prayer-debt engine

PURPOSE:
  Exposes the engine via REST. Handles HTTP request/response, JSON
  serialization, and delegates to the core packages. The engine itself
  stays transport free; this layer is glue only.

ENDPOINTS:
  Debt:
    POST   /api/debt/calculate  Validate inputs, compute and persist debt
    POST   /api/debt/validate   Validation only (for form UIs)
    GET    /api/debt/snapshot   Last computed debt + repayment progress
    POST   /api/debt/progress   Apply restitution entries (atomic batch)
    POST   /api/debt/jobs       Async calculate variant
    GET    /api/debt/jobs/{id}  Poll job status

  Prayers:
    GET    /api/prayers/today    Today's six-slot record + current window
    GET    /api/prayers/current  Current prayer window only
    GET    /api/prayers/{date}   Record for an arbitrary date
    POST   /api/prayers/complete Mark a prayer completed (optionally qada)

ERROR HANDLING:
  - 400: malformed body, parse failures, unknown prayer types
  - 404: no debt record calculated yet
  - 409: slot already completed (terminal state)
  - 422: domain validation failures (full error list in body)
  - 500: repository failures

SEE ALSO:
  - dto.go: Request/response structures
  - jobs.go: Async calculation jobs
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/miqat/qada-engine/ledger"
	"github.com/miqat/qada-engine/qada"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo   ledger.Repository
	Ledger *ledger.DailyLedger
	Jobs   *JobStore

	clock func() time.Time
}

// NewHandler creates a handler over the given repository and ledger.
func NewHandler(repo ledger.Repository, led *ledger.DailyLedger) *Handler {
	return &Handler{
		Repo:   repo,
		Ledger: led,
		Jobs:   NewJobStore(),
		clock:  time.Now,
	}
}

// =============================================================================
// DEBT ENDPOINTS
// =============================================================================

// CalculateDebt validates the submitted biography, computes the debt, and
// persists the resulting aggregate record (last write wins).
// POST /api/debt/calculate
func (h *Handler) CalculateDebt(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, problems := toCalculationInput(req)
	if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Errors: problems})
		return
	}

	if result := qada.Validate(in.Personal, in.Women, in.Travel); !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "Validation failed", Errors: result.Errors})
		return
	}

	debt, err := h.saveCalculation(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save debt record", err)
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotDTO(debt))
}

// ValidateDebt runs validation only, so form UIs can show every problem
// before submission.
// POST /api/debt/validate
func (h *Handler) ValidateDebt(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, problems := toCalculationInput(req)
	result := qada.Validate(in.Personal, in.Women, in.Travel)
	result.Errors = append(problems, result.Errors...)
	result.Valid = len(result.Errors) == 0

	writeJSON(w, http.StatusOK, result)
}

// GetSnapshot returns the last computed debt and repayment progress.
// GET /api/debt/snapshot
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	debt, err := h.Repo.LoadDebt(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load debt record", err)
		return
	}
	if debt == nil {
		writeError(w, http.StatusNotFound, "No debt record calculated yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(debt))
}

// ApplyProgress applies a batch of restitution entries.
// POST /api/debt/progress
func (h *Handler) ApplyProgress(w http.ResponseWriter, r *http.Request) {
	var req ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Ledger.ApplyRestitution(r.Context(), req.Entries)
	switch {
	case errors.Is(err, qada.ErrUnknownPrayer):
		writeError(w, http.StatusBadRequest, "Unknown prayer type in entries", err)
		return
	case errors.Is(err, ledger.ErrNoDebtRecord):
		writeError(w, http.StatusNotFound, "No debt record calculated yet", nil)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to apply restitution", err)
		return
	}

	debt, err := h.Repo.LoadDebt(r.Context())
	if err != nil || debt == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload debt record", err)
		return
	}

	writeJSON(w, http.StatusOK, ProgressResponse{
		BatchID:  result.BatchID,
		Applied:  result.Applied,
		Clamped:  result.Clamped,
		Snapshot: toSnapshotDTO(debt),
	})
}

// SubmitCalculationJob starts an async calculation and returns a job ID
// for status polling.
// POST /api/debt/jobs
func (h *Handler) SubmitCalculationJob(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, problems := toCalculationInput(req)
	if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Errors: problems})
		return
	}
	if result := qada.Validate(in.Personal, in.Women, in.Travel); !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "Validation failed", Errors: result.Errors})
		return
	}

	// The job outlives the request, so it runs on a background context.
	job := h.Jobs.Submit(func() (qada.DebtCalculation, error) {
		debt, err := h.saveCalculation(context.Background(), in)
		if err != nil {
			return qada.DebtCalculation{}, err
		}
		return debt.DebtCalculation, nil
	})

	writeJSON(w, http.StatusAccepted, toJobDTO(job))
}

// GetCalculationJob returns the status of an async calculation.
// GET /api/debt/jobs/{id}
func (h *Handler) GetCalculationJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job := h.Jobs.Get(id)
	if job == nil {
		writeError(w, http.StatusNotFound, "Job not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(job))
}

// saveCalculation computes, persists, and returns the aggregate record. A
// recalculation replaces the record wholesale and resets progress.
func (h *Handler) saveCalculation(ctx context.Context, in qada.CalculationInput) (*qada.UserPrayerDebt, error) {
	now := h.clock()
	calc := qada.Calculate(in, now)

	madhab := in.Madhab
	if madhab == "" {
		madhab = qada.MadhabHanafi
	}
	debt := &qada.UserPrayerDebt{
		PersonalData:      in.Personal,
		WomenData:         in.Women,
		TravelData:        in.Travel,
		Madhab:            madhab,
		DebtCalculation:   calc,
		RepaymentProgress: qada.RepaymentProgress{LastUpdated: now},
	}

	if err := h.Repo.SaveDebt(ctx, debt); err != nil {
		return nil, err
	}

	// Keep the ledger's reference zone in step with the user's.
	if loc, err := qada.ResolveLocation(in.Personal.Timezone); err == nil {
		h.Ledger.SetLocation(loc)
	}
	return debt, nil
}

// =============================================================================
// PRAYER ENDPOINTS
// =============================================================================

// GetToday returns today's record and the current prayer window.
// GET /api/prayers/today
func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	now := h.clock()
	rec, err := h.Ledger.GetDailyRecord(r.Context(), now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load daily record", err)
		return
	}
	writeJSON(w, http.StatusOK, TodayDTO{
		Record:        rec,
		CurrentPrayer: string(h.Ledger.CurrentPrayer(now)),
	})
}

// GetCurrentPrayer returns the current prayer window.
// GET /api/prayers/current
func (h *Handler) GetCurrentPrayer(w http.ResponseWriter, r *http.Request) {
	now := h.clock()
	writeJSON(w, http.StatusOK, map[string]string{
		"current_prayer": string(h.Ledger.CurrentPrayer(now)),
		"date":           qada.DateKey(now, h.Ledger.Location()),
	})
}

// GetDailyRecord returns the record for an arbitrary date key.
// GET /api/prayers/{date}
func (h *Handler) GetDailyRecord(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "date")
	date, err := qada.ParseDateKey(key, h.Ledger.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	rec, err := h.Ledger.GetDailyRecord(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load daily record", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CompletePrayer marks a prayer slot completed, optionally as qada.
// POST /api/prayers/complete
func (h *Handler) CompletePrayer(w http.ResponseWriter, r *http.Request) {
	var req CompletePrayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date := h.clock()
	if req.Date != "" {
		parsed, err := qada.ParseDateKey(req.Date, h.Ledger.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		date = parsed
	}

	err := h.Ledger.MarkPrayerCompleted(r.Context(), qada.PrayerType(req.Prayer), date, req.IsQada)
	switch {
	case errors.Is(err, qada.ErrUnknownPrayer):
		writeError(w, http.StatusBadRequest, "Unknown prayer type", err)
		return
	case errors.Is(err, ledger.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, "Prayer already completed", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to mark prayer completed", err)
		return
	}

	rec, err := h.Ledger.GetDailyRecord(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load daily record", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
