/*
handlers_test.go - Unit tests for API handlers

Exercises the REST surface end to end against the in-memory repository:
calculate (sync and async job variant), snapshot, progress, and the
prayer-ledger endpoints.
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miqat/qada-engine/api"
	"github.com/miqat/qada-engine/ledger"
	"github.com/miqat/qada-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	repo := memory.New()
	led := ledger.New(repo, time.UTC)
	handler := api.NewHandler(repo, led)
	server := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(server.Close)
	return server, repo
}

// scenarioPayload is the ten-day scenario: born 2000-01-01, bulugh at 15,
// started praying 2015-01-11.
func scenarioPayload() map[string]any {
	return map[string]any{
		"personal_data": map[string]any{
			"birth_date":        "2000-01-01",
			"gender":            "male",
			"bulugh_age":        15,
			"prayer_start_date": "2015-01-11",
			"today_as_start":    false,
			"timezone":          "UTC",
		},
		"madhab": "hanafi",
	}
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// =============================================================================
// DEBT ENDPOINTS
// =============================================================================

func TestCalculateDebt_Success(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/debt/calculate", scenarioPayload())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot struct {
		Madhab          string `json:"madhab"`
		DebtCalculation struct {
			TotalDays     int `json:"total_days"`
			EffectiveDays int `json:"effective_days"`
			MissedPrayers struct {
				Fajr int `json:"fajr"`
				Witr int `json:"witr"`
			} `json:"missed_prayers"`
		} `json:"debt_calculation"`
	}
	decodeBody(t, resp, &snapshot)

	assert.Equal(t, "hanafi", snapshot.Madhab)
	assert.Equal(t, 10, snapshot.DebtCalculation.TotalDays)
	assert.Equal(t, 10, snapshot.DebtCalculation.EffectiveDays)
	assert.Equal(t, 10, snapshot.DebtCalculation.MissedPrayers.Fajr)
	assert.Equal(t, 10, snapshot.DebtCalculation.MissedPrayers.Witr)
}

func TestCalculateDebt_ValidationFailure(t *testing.T) {
	server, _ := newTestServer(t)

	payload := scenarioPayload()
	payload["personal_data"].(map[string]any)["bulugh_age"] = 11

	resp := postJSON(t, server.URL+"/api/debt/calculate", payload)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Errors []string `json:"errors"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Errors, 1)
	assert.Contains(t, body.Errors[0], "12")
}

func TestCalculateDebt_MalformedBody(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/debt/calculate", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSnapshot(t *testing.T) {
	server, _ := newTestServer(t)

	// Before any calculation: 404
	resp, err := http.Get(server.URL + "/api/debt/snapshot")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// After a calculation: the stored record comes back
	postJSON(t, server.URL+"/api/debt/calculate", scenarioPayload()).Body.Close()

	resp, err = http.Get(server.URL + "/api/debt/snapshot")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot struct {
		Timezone        string `json:"timezone"`
		DebtCalculation struct {
			Period struct {
				Start string `json:"start"`
				End   string `json:"end"`
			} `json:"period"`
		} `json:"debt_calculation"`
	}
	decodeBody(t, resp, &snapshot)
	assert.Equal(t, "UTC", snapshot.Timezone)
	assert.Equal(t, "2015-01-01", snapshot.DebtCalculation.Period.Start)
	assert.Equal(t, "2015-01-11", snapshot.DebtCalculation.Period.End)
}

func TestApplyProgress(t *testing.T) {
	server, _ := newTestServer(t)
	postJSON(t, server.URL+"/api/debt/calculate", scenarioPayload()).Body.Close()

	// WHEN: repaying 4 fajr and overshooting witr
	resp := postJSON(t, server.URL+"/api/debt/progress", map[string]any{
		"entries": []map[string]any{
			{"type": "fajr", "amount": 4},
			{"type": "witr", "amount": 25},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Applied  int            `json:"applied"`
		Clamped  map[string]int `json:"clamped"`
		Snapshot struct {
			DebtCalculation struct {
				MissedPrayers struct {
					Fajr int `json:"fajr"`
					Witr int `json:"witr"`
				} `json:"missed_prayers"`
			} `json:"debt_calculation"`
		} `json:"snapshot"`
	}
	decodeBody(t, resp, &body)

	assert.Equal(t, 2, body.Applied)
	assert.Equal(t, map[string]int{"witr": 15}, body.Clamped)
	assert.Equal(t, 6, body.Snapshot.DebtCalculation.MissedPrayers.Fajr)
	assert.Equal(t, 0, body.Snapshot.DebtCalculation.MissedPrayers.Witr)
}

func TestApplyProgress_NoDebtRecord(t *testing.T) {
	server, _ := newTestServer(t)
	resp := postJSON(t, server.URL+"/api/debt/progress", map[string]any{
		"entries": []map[string]any{{"type": "fajr", "amount": 1}},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCalculationJob_Lifecycle(t *testing.T) {
	server, _ := newTestServer(t)

	// Submit the async variant
	resp := postJSON(t, server.URL+"/api/debt/jobs", scenarioPayload())
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var job struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeBody(t, resp, &job)
	require.NotEmpty(t, job.ID)

	// Poll until completion
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(server.URL + "/api/debt/jobs/" + job.ID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var polled struct {
			Status      string `json:"status"`
			Calculation *struct {
				EffectiveDays int `json:"effective_days"`
			} `json:"calculation"`
		}
		decodeBody(t, resp, &polled)

		if polled.Status == "completed" {
			require.NotNil(t, polled.Calculation)
			assert.Equal(t, 10, polled.Calculation.EffectiveDays)
			break
		}
		require.NotEqual(t, "failed", polled.Status)
		require.True(t, time.Now().Before(deadline), "job did not complete in time")
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCalculationJob_NotFound(t *testing.T) {
	server, _ := newTestServer(t)
	resp, err := http.Get(server.URL + "/api/debt/jobs/no-such-job")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// PRAYER ENDPOINTS
// =============================================================================

func TestCompletePrayer_AndConflictOnRepeat(t *testing.T) {
	server, _ := newTestServer(t)
	payload := map[string]any{"prayer": "dhuhr", "date": "2023-06-01", "is_qada": false}

	resp := postJSON(t, server.URL+"/api/prayers/complete", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec struct {
		Prayers map[string]struct {
			Completed bool `json:"completed"`
		} `json:"prayers"`
	}
	decodeBody(t, resp, &rec)
	assert.True(t, rec.Prayers["dhuhr"].Completed)

	// Completion is terminal: a repeat conflicts
	resp = postJSON(t, server.URL+"/api/prayers/complete", payload)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCompletePrayer_UnknownPrayer(t *testing.T) {
	server, _ := newTestServer(t)
	resp := postJSON(t, server.URL+"/api/prayers/complete", map[string]any{"prayer": "tarawih"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetToday_And_CurrentPrayer(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/prayers/today")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var today struct {
		CurrentPrayer string `json:"current_prayer"`
		Record        struct {
			Date    string         `json:"date"`
			Prayers map[string]any `json:"prayers"`
		} `json:"record"`
	}
	decodeBody(t, resp, &today)
	assert.NotEmpty(t, today.CurrentPrayer)
	assert.Len(t, today.Record.Prayers, 6)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), today.Record.Date)
}

func TestGetDailyRecord_InvalidDate(t *testing.T) {
	server, _ := newTestServer(t)
	resp, err := http.Get(server.URL + "/api/prayers/not-a-date")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestValidateEndpoint_ReportsAllProblems(t *testing.T) {
	server, _ := newTestServer(t)

	payload := scenarioPayload()
	personal := payload["personal_data"].(map[string]any)
	personal["bulugh_age"] = 11
	personal["timezone"] = ""

	resp := postJSON(t, server.URL+"/api/debt/validate", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	decodeBody(t, resp, &result)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
}
