package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempus/worktime-engine/api"
	"github.com/tempus/worktime-engine/engine"
	"github.com/tempus/worktime-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (http.Handler, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	policy := engine.DefaultPolicy()
	locks := engine.NewEmployeeLocks()
	auditor := engine.NewAuditor(engine.NopRecorder{}, zerolog.Nop(), nil)

	ledger := engine.NewIntervalLedger(mem, policy, auditor, locks, zerolog.Nop())
	balance := engine.NewLeaveBalanceTracker(mem, policy)
	workflow := engine.NewApprovalWorkflow(mem, policy, balance, auditor, locks, zerolog.Nop())
	compliance := engine.NewComplianceEvaluator(mem, policy, nil)
	reports := engine.NewAggregationReporter(mem, policy)

	h := api.NewHandler(ledger, workflow, balance, compliance, reports, mem, nil)
	return api.NewRouter(h), mem
}

// do runs one request as the given employee and decodes the JSON reply.
func do(t *testing.T, router http.Handler, method, path string, employee, role string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if employee != "" {
		req.Header.Set("X-Employee-Id", employee)
	}
	if role != "" {
		req.Header.Set("X-Employee-Role", role)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
	}
	return rec
}

type intervalResp struct {
	ID       string  `json:"id"`
	Start    string  `json:"start"`
	End      *string `json:"end"`
	Manual   bool    `json:"manual"`
	Approved bool    `json:"approved"`
}

// =============================================================================
// IDENTITY
// =============================================================================

func TestAPI_MissingIdentityRejected(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/api/leave-requests", "", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_HealthzNeedsNoIdentity(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/healthz", "", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// INTERVAL FLOW
// =============================================================================

func TestAPI_StartStopFlow(t *testing.T) {
	// GIVEN: A clean ledger
	// WHEN: Alice starts, a second start races, then she stops
	// THEN: 201, then 409, then 200 with the closed interval

	router, _ := newTestServer(t)

	var started intervalResp
	rec := do(t, router, http.MethodPost, "/api/intervals/start", "alice", "", map[string]string{"description": "shift"}, &started)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Nil(t, started.End)
	assert.True(t, started.Approved, "live entries are approved on creation")

	rec = do(t, router, http.MethodPost, "/api/intervals/start", "alice", "", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var stopped intervalResp
	rec = do(t, router, http.MethodPost, "/api/intervals/"+started.ID+"/stop", "alice", "", nil, &stopped)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, stopped.End)
}

func TestAPI_ManualIntervalApprovalFlow(t *testing.T) {
	// GIVEN: Alice records a manual entry
	// WHEN: She tries to approve it herself, then an admin approves
	// THEN: 403 for Alice, 200 for the admin, 409 on re-approval

	router, _ := newTestServer(t)

	body := map[string]string{
		"start": "2025-03-10T09:00:00Z",
		"end":   "2025-03-10T17:00:00Z",
	}
	var created intervalResp
	rec := do(t, router, http.MethodPost, "/api/intervals", "alice", "", body, &created)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, created.Manual)
	assert.False(t, created.Approved)

	rec = do(t, router, http.MethodPost, "/api/intervals/"+created.ID+"/approve", "alice", "", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var approved intervalResp
	rec = do(t, router, http.MethodPost, "/api/intervals/"+created.ID+"/approve", "root", "admin", nil, &approved)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, approved.Approved)

	rec = do(t, router, http.MethodPost, "/api/intervals/"+created.ID+"/approve", "root", "admin", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_OverlapReturns409(t *testing.T) {
	router, _ := newTestServer(t)

	body := map[string]string{"start": "2025-03-10T09:00:00Z", "end": "2025-03-10T17:00:00Z"}
	rec := do(t, router, http.MethodPost, "/api/intervals", "alice", "", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	body = map[string]string{"start": "2025-03-10T16:00:00Z", "end": "2025-03-10T18:00:00Z"}
	rec = do(t, router, http.MethodPost, "/api/intervals", "alice", "", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_BadTimestampReturns400(t *testing.T) {
	router, _ := newTestServer(t)

	body := map[string]string{"start": "yesterday", "end": "2025-03-10T17:00:00Z"}
	rec := do(t, router, http.MethodPost, "/api/intervals", "alice", "", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ListIntervals_OwnershipEnforced(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/api/intervals?employee_id=alice&from=2025-03-01&to=2025-04-01", "bob", "", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/intervals?employee_id=alice&from=2025-03-01&to=2025-04-01", "root", "admin", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// LEAVE FLOW
// =============================================================================

func TestAPI_LeaveRequestLifecycle(t *testing.T) {
	// GIVEN: Alice submits a vacation request
	// WHEN: An admin approves it
	// THEN: The status and the balance reflect the approval

	router, _ := newTestServer(t)

	var lr struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Days   int    `json:"days"`
	}
	body := map[string]string{
		"type":       "vacation",
		"start_date": "2025-07-07",
		"end_date":   "2025-07-11",
		"reason":     "summer",
	}
	rec := do(t, router, http.MethodPost, "/api/leave-requests", "alice", "", body, &lr)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "pending", lr.Status)
	assert.Equal(t, 5, lr.Days)

	rec = do(t, router, http.MethodPost, "/api/leave-requests/"+lr.ID+"/approve", "alice", "", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "self approval must be rejected")

	rec = do(t, router, http.MethodPost, "/api/leave-requests/"+lr.ID+"/approve", "root", "admin", nil, &lr)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", lr.Status)

	var bal struct {
		Used      int `json:"used"`
		Remaining int `json:"remaining"`
	}
	rec = do(t, router, http.MethodGet, "/api/balance?type=vacation&year=2025", "alice", "", nil, &bal)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, bal.Used)
	assert.Equal(t, 20, bal.Remaining)

	rec = do(t, router, http.MethodPost, "/api/leave-requests/"+lr.ID+"/cancel", "alice", "", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "approved is terminal")
}

func TestAPI_RejectRequiresReason(t *testing.T) {
	router, _ := newTestServer(t)

	var lr struct {
		ID string `json:"id"`
	}
	body := map[string]string{"type": "sick_leave", "start_date": "2025-07-07", "end_date": "2025-07-08"}
	rec := do(t, router, http.MethodPost, "/api/leave-requests", "alice", "", body, &lr)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/leave-requests/"+lr.ID+"/reject", "root", "admin", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/leave-requests/"+lr.ID+"/reject", "root", "admin", map[string]string{"reason": "coverage"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// REPORTS
// =============================================================================

func seedWeek(t *testing.T, mem *store.Memory, hoursPerDay int) {
	t.Helper()
	for d := 10; d <= 14; d++ {
		start := time.Date(2025, time.March, d, 8, 0, 0, 0, time.UTC)
		end := start.Add(time.Duration(hoursPerDay) * time.Hour)
		err := mem.CreateInterval(context.Background(), engine.Interval{
			ID: engine.IntervalID(fmt.Sprintf("iv-%d", d)), EmployeeID: "alice",
			Start: start, End: &end, Approved: true, CreatedAt: start, UpdatedAt: end,
		})
		require.NoError(t, err)
	}
}

func TestAPI_ComplianceReport(t *testing.T) {
	// GIVEN: A 50-hour week
	// WHEN: Requesting the compliance report
	// THEN: One weekly_hours violation, compliant=false

	router, mem := newTestServer(t)
	seedWeek(t, mem, 10)

	var report struct {
		Compliant  bool `json:"compliant"`
		Violations []struct {
			Kind     string `json:"kind"`
			Period   string `json:"period"`
			Measured string `json:"measured"`
		} `json:"violations"`
	}
	rec := do(t, router, http.MethodGet, "/api/reports/compliance?from=2025-03-09&to=2025-03-23", "alice", "", nil, &report)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, report.Compliant)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "weekly_hours", report.Violations[0].Kind)
	assert.Equal(t, "50", report.Violations[0].Measured)
}

func TestAPI_DailyReport_DaysSorted(t *testing.T) {
	// GIVEN: A seeded work week
	// WHEN: Requesting the daily report
	// THEN: One entry per day, in date order

	router, mem := newTestServer(t)
	seedWeek(t, mem, 8)

	var report struct {
		EmployeeID string `json:"employee_id"`
		Days       []struct {
			Date    string `json:"date"`
			Hours   string `json:"hours"`
			Entries int    `json:"entries"`
		} `json:"days"`
	}
	rec := do(t, router, http.MethodGet, "/api/reports/daily?from=2025-03-10&to=2025-03-17", "alice", "", nil, &report)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", report.EmployeeID)
	require.Len(t, report.Days, 5)
	for i, day := range report.Days {
		assert.Equal(t, fmt.Sprintf("2025-03-%d", 10+i), day.Date)
		assert.Equal(t, "8", day.Hours)
		assert.Equal(t, 1, day.Entries)
	}
}

func TestAPI_OvertimeReport(t *testing.T) {
	router, mem := newTestServer(t)
	seedWeek(t, mem, 10)

	var sum struct {
		WorkingDays int    `json:"working_days"`
		Overtime    string `json:"overtime"`
	}
	rec := do(t, router, http.MethodGet, "/api/reports/overtime?from=2025-03-10&to=2025-03-17", "alice", "", nil, &sum)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5, sum.WorkingDays)
	assert.Equal(t, "10", sum.Overtime)
}

func TestAPI_ReportMissingPeriodReturns400(t *testing.T) {
	router, _ := newTestServer(t)

	rec := do(t, router, http.MethodGet, "/api/reports/compliance", "alice", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestAPI_EmployeeRegistry(t *testing.T) {
	router, _ := newTestServer(t)

	body := map[string]any{"name": "Alice", "email": "alice@example.com", "role": "normal"}
	rec := do(t, router, http.MethodPut, "/api/employees/alice", "alice", "", body, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "registry writes are admin only")

	rec = do(t, router, http.MethodPut, "/api/employees/alice", "root", "admin", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}
	rec = do(t, router, http.MethodGet, "/api/employees/alice", "bob", "", nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alice", got.Name)
	assert.True(t, got.Active, "active defaults to true")

	rec = do(t, router, http.MethodGet, "/api/employees/nobody", "bob", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
