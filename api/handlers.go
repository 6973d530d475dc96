/*
handlers.go - HTTP handlers for the worktime engine

PURPOSE:
  Exposes the engine via REST. Handlers parse the HTTP request, resolve
  the actor from the context, delegate to the engine, and serialize the
  result. No business rules live here.

ENDPOINTS:
  Intervals:
    POST   /api/intervals/start         Start live tracking
    POST   /api/intervals/{id}/stop     Stop an open interval
    POST   /api/intervals               Create a manual entry
    PATCH  /api/intervals/{id}          Edit an interval
    DELETE /api/intervals/{id}          Delete an interval
    GET    /api/intervals               List intervals in a period
    GET    /api/intervals/pending       Manual entries awaiting approval
    POST   /api/intervals/{id}/approve  Approve a manual entry

  Leave:
    POST   /api/leave-requests              Submit a request
    GET    /api/leave-requests              List own (or any, admin) requests
    GET    /api/leave-requests/pending      Pending requests (admin)
    POST   /api/leave-requests/{id}/approve
    POST   /api/leave-requests/{id}/reject
    POST   /api/leave-requests/{id}/cancel
    GET    /api/balance                     Per-type per-year balance

  Reports:
    GET    /api/reports/compliance      Weekly-hours / daily-rest check
    GET    /api/reports/daily           Hours and entries per day
    GET    /api/reports/overtime        Overtime vs standard hours

  Employees:
    GET    /api/employees               List employees
    GET    /api/employees/{id}          Get one employee
    PUT    /api/employees/{id}          Create or update (admin)

ERROR HANDLING:
  Engine error kinds map to HTTP status:
    validation  400
    permission  403
    not found   404
    conflict    409
    other       500

SEE ALSO:
  - dto.go: Request/response shapes
  - identity.go: Actor resolution
  - server.go: Router setup
*/
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tempus/worktime-engine/engine"
)

// OperationRecorder counts one handled operation with its outcome.
// Satisfied by metrics.Collector.
type OperationRecorder interface {
	RecordOperation(operation, outcome string)
}

type nopOperationRecorder struct{}

func (nopOperationRecorder) RecordOperation(operation, outcome string) {}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger     *engine.IntervalLedger
	Workflow   *engine.ApprovalWorkflow
	Balance    *engine.LeaveBalanceTracker
	Compliance *engine.ComplianceEvaluator
	Reports    *engine.AggregationReporter
	Employees  engine.EmployeeStore

	Metrics OperationRecorder
}

// NewHandler creates a handler. metrics may be nil.
func NewHandler(
	ledger *engine.IntervalLedger,
	workflow *engine.ApprovalWorkflow,
	balance *engine.LeaveBalanceTracker,
	compliance *engine.ComplianceEvaluator,
	reports *engine.AggregationReporter,
	employees engine.EmployeeStore,
	metrics OperationRecorder,
) *Handler {
	if metrics == nil {
		metrics = nopOperationRecorder{}
	}
	return &Handler{
		Ledger:     ledger,
		Workflow:   workflow,
		Balance:    balance,
		Compliance: compliance,
		Reports:    reports,
		Employees:  employees,
		Metrics:    metrics,
	}
}

// =============================================================================
// INTERVAL HANDLERS
// =============================================================================

// StartInterval starts live tracking for the actor (or, for admins, the
// employee named in the body).
func (h *Handler) StartInterval(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	var req StartIntervalRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "interval_start", http.StatusBadRequest, "Invalid request body", err)
		return
	}
	employeeID := actor.ID
	if req.EmployeeID != "" {
		employeeID = engine.EmployeeID(req.EmployeeID)
	}

	iv, err := h.Ledger.Start(r.Context(), actor, employeeID, req.Description)
	if err != nil {
		h.engineError(w, "interval_start", err)
		return
	}
	h.ok(w, "interval_start", http.StatusCreated, toIntervalDTO(iv))
}

// StopInterval closes an open interval. The end defaults to now.
func (h *Handler) StopInterval(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := engine.IntervalID(chi.URLParam(r, "id"))

	var req StopIntervalRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "interval_stop", http.StatusBadRequest, "Invalid request body", err)
		return
	}
	end := time.Now().UTC()
	if req.End != "" {
		parsed, err := time.Parse(time.RFC3339, req.End)
		if err != nil {
			h.fail(w, "interval_stop", http.StatusBadRequest, "Invalid end timestamp (use RFC3339)", err)
			return
		}
		end = parsed
	}

	iv, err := h.Ledger.Stop(r.Context(), actor, id, end)
	if err != nil {
		h.engineError(w, "interval_stop", err)
		return
	}
	h.ok(w, "interval_stop", http.StatusOK, toIntervalDTO(iv))
}

// CreateInterval records a manual after-the-fact entry.
func (h *Handler) CreateInterval(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	var req CreateIntervalRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "interval_create", http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		h.fail(w, "interval_create", http.StatusBadRequest, "Invalid start timestamp (use RFC3339)", err)
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		h.fail(w, "interval_create", http.StatusBadRequest, "Invalid end timestamp (use RFC3339)", err)
		return
	}
	employeeID := actor.ID
	if req.EmployeeID != "" {
		employeeID = engine.EmployeeID(req.EmployeeID)
	}

	iv, err := h.Ledger.CreateManual(r.Context(), actor, employeeID, start, end, req.Description)
	if err != nil {
		h.engineError(w, "interval_create", err)
		return
	}
	h.ok(w, "interval_create", http.StatusCreated, toIntervalDTO(iv))
}

// PatchInterval edits an interval. Absent fields keep their value.
func (h *Handler) PatchInterval(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := engine.IntervalID(chi.URLParam(r, "id"))

	var req PatchIntervalRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "interval_edit", http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var patch engine.IntervalPatch
	if req.Start != nil {
		start, err := time.Parse(time.RFC3339, *req.Start)
		if err != nil {
			h.fail(w, "interval_edit", http.StatusBadRequest, "Invalid start timestamp (use RFC3339)", err)
			return
		}
		patch.Start = &start
	}
	if req.End != nil {
		end, err := time.Parse(time.RFC3339, *req.End)
		if err != nil {
			h.fail(w, "interval_edit", http.StatusBadRequest, "Invalid end timestamp (use RFC3339)", err)
			return
		}
		patch.End = &end
	}
	patch.Description = req.Description

	iv, err := h.Ledger.Edit(r.Context(), actor, id, patch)
	if err != nil {
		h.engineError(w, "interval_edit", err)
		return
	}
	h.ok(w, "interval_edit", http.StatusOK, toIntervalDTO(iv))
}

// DeleteInterval removes an interval.
func (h *Handler) DeleteInterval(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := engine.IntervalID(chi.URLParam(r, "id"))

	if err := h.Ledger.Delete(r.Context(), actor, id); err != nil {
		h.engineError(w, "interval_delete", err)
		return
	}
	h.Metrics.RecordOperation("interval_delete", "ok")
	w.WriteHeader(http.StatusNoContent)
}

// ListIntervals returns the intervals of one employee intersecting
// [from, to). employee_id defaults to the actor.
func (h *Handler) ListIntervals(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	employeeID := actor.ID
	if q := r.URL.Query().Get("employee_id"); q != "" {
		employeeID = engine.EmployeeID(q)
	}
	from, to, err := parsePeriod(r)
	if err != nil {
		h.fail(w, "interval_list", http.StatusBadRequest, "Invalid period", err)
		return
	}

	ivs, err := h.Ledger.List(r.Context(), actor, employeeID, from, to)
	if err != nil {
		h.engineError(w, "interval_list", err)
		return
	}
	h.ok(w, "interval_list", http.StatusOK, toIntervalDTOs(ivs))
}

// PendingIntervals lists manual entries awaiting approval. Admin only.
func (h *Handler) PendingIntervals(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	ivs, err := h.Ledger.Pending(r.Context(), actor)
	if err != nil {
		h.engineError(w, "interval_pending", err)
		return
	}
	h.ok(w, "interval_pending", http.StatusOK, toIntervalDTOs(ivs))
}

// ApproveInterval marks a manual entry approved. Admin only.
func (h *Handler) ApproveInterval(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := engine.IntervalID(chi.URLParam(r, "id"))

	iv, err := h.Workflow.ApproveInterval(r.Context(), actor, id)
	if err != nil {
		h.engineError(w, "interval_approve", err)
		return
	}
	h.ok(w, "interval_approve", http.StatusOK, toIntervalDTO(iv))
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// CreateLeaveRequest submits a new pending leave request.
func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	var req CreateLeaveRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "leave_create", http.StatusBadRequest, "Invalid request body", err)
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		h.fail(w, "leave_create", http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		h.fail(w, "leave_create", http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}
	employeeID := actor.ID
	if req.EmployeeID != "" {
		employeeID = engine.EmployeeID(req.EmployeeID)
	}

	lr, err := h.Workflow.CreateLeaveRequest(r.Context(), actor, employeeID, engine.LeaveType(req.Type), startDate, endDate, req.Reason)
	if err != nil {
		h.engineError(w, "leave_create", err)
		return
	}
	h.ok(w, "leave_create", http.StatusCreated, toLeaveRequestDTO(lr))
}

// ListLeaveRequests returns one employee's requests, newest first.
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	employeeID := actor.ID
	if q := r.URL.Query().Get("employee_id"); q != "" {
		employeeID = engine.EmployeeID(q)
	}

	lrs, err := h.Workflow.ListRequests(r.Context(), actor, employeeID)
	if err != nil {
		h.engineError(w, "leave_list", err)
		return
	}
	h.ok(w, "leave_list", http.StatusOK, toLeaveRequestDTOs(lrs))
}

// PendingLeaveRequests lists all pending requests, oldest first. Admin
// only.
func (h *Handler) PendingLeaveRequests(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	lrs, err := h.Workflow.PendingRequests(r.Context(), actor)
	if err != nil {
		h.engineError(w, "leave_pending", err)
		return
	}
	h.ok(w, "leave_pending", http.StatusOK, toLeaveRequestDTOs(lrs))
}

// ApproveLeaveRequest moves a pending request to approved. Admin only.
func (h *Handler) ApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := engine.RequestID(chi.URLParam(r, "id"))

	lr, err := h.Workflow.Approve(r.Context(), actor, id)
	if err != nil {
		h.engineError(w, "leave_approve", err)
		return
	}
	h.ok(w, "leave_approve", http.StatusOK, toLeaveRequestDTO(lr))
}

// RejectLeaveRequest moves a pending request to rejected. Admin only;
// a reason is required.
func (h *Handler) RejectLeaveRequest(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := engine.RequestID(chi.URLParam(r, "id"))

	var req RejectLeaveRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "leave_reject", http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lr, err := h.Workflow.Reject(r.Context(), actor, id, req.Reason)
	if err != nil {
		h.engineError(w, "leave_reject", err)
		return
	}
	h.ok(w, "leave_reject", http.StatusOK, toLeaveRequestDTO(lr))
}

// CancelLeaveRequest moves a pending request to canceled. Owner only.
func (h *Handler) CancelLeaveRequest(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := engine.RequestID(chi.URLParam(r, "id"))

	lr, err := h.Workflow.Cancel(r.Context(), actor, id)
	if err != nil {
		h.engineError(w, "leave_cancel", err)
		return
	}
	h.ok(w, "leave_cancel", http.StatusOK, toLeaveRequestDTO(lr))
}

// GetBalance returns the balance for one leave type and year. Year
// defaults to the current year.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	employeeID := actor.ID
	if q := r.URL.Query().Get("employee_id"); q != "" {
		employeeID = engine.EmployeeID(q)
	}
	if employeeID != actor.ID && !actor.IsAdmin() {
		h.fail(w, "leave_balance", http.StatusForbidden, "Cannot view another employee's balance", nil)
		return
	}
	leaveType := engine.LeaveType(r.URL.Query().Get("type"))
	year := time.Now().UTC().Year()
	if q := r.URL.Query().Get("year"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil {
			h.fail(w, "leave_balance", http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	bal, err := h.Balance.Balance(r.Context(), employeeID, leaveType, year)
	if err != nil {
		h.engineError(w, "leave_balance", err)
		return
	}
	h.ok(w, "leave_balance", http.StatusOK, BalanceDTO{
		EmployeeID: string(bal.EmployeeID),
		Type:       string(bal.Type),
		Year:       bal.Year,
		Allocated:  bal.Allocated,
		Used:       bal.Used,
		Remaining:  bal.Remaining,
		Reserved:   bal.Reserved,
	})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// ComplianceReport evaluates weekly-hours and daily-rest limits over
// [from, to).
func (h *Handler) ComplianceReport(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	employeeID, from, to, ok := h.reportParams(w, r, "report_compliance", actor)
	if !ok {
		return
	}

	report, err := h.Compliance.Evaluate(r.Context(), employeeID, from, to)
	if err != nil {
		h.engineError(w, "report_compliance", err)
		return
	}

	dto := ComplianceReportDTO{
		EmployeeID:  string(report.EmployeeID),
		PeriodStart: report.PeriodStart.Format(time.RFC3339),
		PeriodEnd:   report.PeriodEnd.Format(time.RFC3339),
		Compliant:   report.Compliant(),
		Violations:  make([]ViolationDTO, len(report.Violations)),
	}
	for i, v := range report.Violations {
		dto.Violations[i] = ViolationDTO{
			EmployeeID: string(v.EmployeeID),
			Kind:       string(v.Kind),
			Period:     v.Period,
			Measured:   v.Measured.String(),
			Limit:      v.Limit.String(),
		}
	}
	h.ok(w, "report_compliance", http.StatusOK, dto)
}

// DailyReport returns per-day totals over [from, to), sorted by date.
func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	employeeID, from, to, ok := h.reportParams(w, r, "report_daily", actor)
	if !ok {
		return
	}

	totals, err := h.Reports.DailyTotals(r.Context(), employeeID, from, to)
	if err != nil {
		h.engineError(w, "report_daily", err)
		return
	}

	days := make([]string, 0, len(totals))
	for day := range totals {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]DayTotalDTO, 0, len(days))
	for _, day := range days {
		out = append(out, DayTotalDTO{
			Date:    day,
			Hours:   totals[day].Hours.String(),
			Entries: totals[day].Entries,
		})
	}
	h.ok(w, "report_daily", http.StatusOK, map[string]any{
		"employee_id": string(employeeID),
		"days":        out,
	})
}

// OvertimeReport returns hours worked beyond the standard expectation
// over [from, to).
func (h *Handler) OvertimeReport(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	employeeID, from, to, ok := h.reportParams(w, r, "report_overtime", actor)
	if !ok {
		return
	}

	summary, err := h.Reports.Overtime(r.Context(), employeeID, from, to)
	if err != nil {
		h.engineError(w, "report_overtime", err)
		return
	}
	h.ok(w, "report_overtime", http.StatusOK, OvertimeDTO{
		EmployeeID:    string(summary.EmployeeID),
		TotalHours:    summary.TotalHours.String(),
		WorkingDays:   summary.WorkingDays,
		StandardHours: summary.StandardHours.String(),
		Overtime:      summary.Overtime.String(),
	})
}

// reportParams parses employee_id/from/to and applies the owner-or-admin
// check the read-side engine components leave to the caller.
func (h *Handler) reportParams(w http.ResponseWriter, r *http.Request, operation string, actor engine.Actor) (engine.EmployeeID, time.Time, time.Time, bool) {
	employeeID := actor.ID
	if q := r.URL.Query().Get("employee_id"); q != "" {
		employeeID = engine.EmployeeID(q)
	}
	if employeeID != actor.ID && !actor.IsAdmin() {
		h.fail(w, operation, http.StatusForbidden, "Cannot view another employee's report", nil)
		return "", time.Time{}, time.Time{}, false
	}
	from, to, err := parsePeriod(r)
	if err != nil {
		h.fail(w, operation, http.StatusBadRequest, "Invalid period", err)
		return "", time.Time{}, time.Time{}, false
	}
	return employeeID, from, to, true
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Employees.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, "employee_list", http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	h.ok(w, "employee_list", http.StatusOK, dtos)
}

// GetEmployee returns one employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	e, err := h.Employees.GetEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, "employee_get", http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if e == nil {
		h.fail(w, "employee_get", http.StatusNotFound, "Employee not found", nil)
		return
	}
	h.ok(w, "employee_get", http.StatusOK, toEmployeeDTO(*e))
}

// PutEmployee creates or updates an employee record. Admin only.
func (h *Handler) PutEmployee(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if !actor.IsAdmin() {
		h.fail(w, "employee_put", http.StatusForbidden, "Only admins may manage employees", nil)
		return
	}
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var req PutEmployeeRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, "employee_put", http.StatusBadRequest, "Invalid request body", err)
		return
	}
	role := engine.Role(req.Role)
	if role == "" {
		role = engine.RoleNormal
	}
	if role != engine.RoleNormal && role != engine.RoleAdmin {
		h.fail(w, "employee_put", http.StatusBadRequest, "Role must be normal or admin", nil)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	e := engine.Employee{
		ID:     id,
		Name:   req.Name,
		Email:  req.Email,
		Role:   role,
		Active: active,
	}
	if err := h.Employees.PutEmployee(r.Context(), e); err != nil {
		h.fail(w, "employee_put", http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	h.ok(w, "employee_put", http.StatusOK, toEmployeeDTO(e))
}

func toEmployeeDTO(e engine.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:     string(e.ID),
		Name:   e.Name,
		Email:  e.Email,
		Role:   string(e.Role),
		Active: e.Active,
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// decodeBody decodes the JSON body into dst. An empty body decodes to
// the zero value so that bodyless POSTs (stop with default end) work.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

// parsePeriod reads the required from/to query parameters (RFC3339 or
// YYYY-MM-DD, half-open [from, to)).
func parsePeriod(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseTimeParam(r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, &engine.ValidationError{Field: "from", Reason: "use RFC3339 or YYYY-MM-DD"}
	}
	to, err := parseTimeParam(r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, &engine.ValidationError{Field: "to", Reason: "use RFC3339 or YYYY-MM-DD"}
	}
	return from, to, nil
}

func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}

// engineError maps an engine error kind to its HTTP status and records
// the outcome.
func (h *Handler) engineError(w http.ResponseWriter, operation string, err error) {
	switch {
	case engine.IsValidation(err):
		h.Metrics.RecordOperation(operation, "validation")
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case engine.IsPermission(err):
		h.Metrics.RecordOperation(operation, "permission")
		writeError(w, http.StatusForbidden, "Permission denied", err)
	case engine.IsNotFound(err):
		h.Metrics.RecordOperation(operation, "not_found")
		writeError(w, http.StatusNotFound, "Not found", err)
	case engine.IsConflict(err):
		h.Metrics.RecordOperation(operation, "conflict")
		writeError(w, http.StatusConflict, "Conflict", err)
	default:
		h.Metrics.RecordOperation(operation, "error")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func (h *Handler) ok(w http.ResponseWriter, operation string, status int, data any) {
	h.Metrics.RecordOperation(operation, "ok")
	writeJSON(w, status, data)
}

// fail records a handler-level failure (parse errors, pre-engine
// permission checks) and writes the error response.
func (h *Handler) fail(w http.ResponseWriter, operation string, status int, message string, err error) {
	outcome := "error"
	switch status {
	case http.StatusBadRequest:
		outcome = "validation"
	case http.StatusForbidden:
		outcome = "permission"
	case http.StatusNotFound:
		outcome = "not_found"
	}
	h.Metrics.RecordOperation(operation, outcome)
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
