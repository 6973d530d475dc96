/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model
  from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TIME FORMATS:
  Timestamps use RFC3339; leave dates use "2006-01-02". Hour totals are
  rendered as decimal strings to keep exact values on the wire.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/tempus/worktime-engine/engine"
)

// =============================================================================
// INTERVALS
// =============================================================================

// IntervalDTO represents a work interval in API responses.
type IntervalDTO struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	Start       string  `json:"start"`
	End         *string `json:"end"`
	Description string  `json:"description,omitempty"`
	Manual      bool    `json:"manual"`
	Approved    bool    `json:"approved"`
	ApprovedBy  *string `json:"approved_by,omitempty"`
	ApprovedAt  *string `json:"approved_at,omitempty"`
}

func toIntervalDTO(iv engine.Interval) IntervalDTO {
	dto := IntervalDTO{
		ID:          string(iv.ID),
		EmployeeID:  string(iv.EmployeeID),
		Start:       iv.Start.Format(time.RFC3339),
		Description: iv.Description,
		Manual:      iv.Manual,
		Approved:    iv.Approved,
	}
	if iv.End != nil {
		s := iv.End.Format(time.RFC3339)
		dto.End = &s
	}
	if iv.ApprovedBy != nil {
		s := string(*iv.ApprovedBy)
		dto.ApprovedBy = &s
	}
	if iv.ApprovedAt != nil {
		s := iv.ApprovedAt.Format(time.RFC3339)
		dto.ApprovedAt = &s
	}
	return dto
}

func toIntervalDTOs(ivs []engine.Interval) []IntervalDTO {
	dtos := make([]IntervalDTO, len(ivs))
	for i, iv := range ivs {
		dtos[i] = toIntervalDTO(iv)
	}
	return dtos
}

// StartIntervalRequest starts live tracking. EmployeeID defaults to the
// caller.
type StartIntervalRequest struct {
	EmployeeID  string `json:"employee_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// StopIntervalRequest closes an open interval. End defaults to now.
type StopIntervalRequest struct {
	End string `json:"end,omitempty"`
}

// CreateIntervalRequest records a manual after-the-fact interval.
type CreateIntervalRequest struct {
	EmployeeID  string `json:"employee_id,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description,omitempty"`
}

// PatchIntervalRequest edits an interval; absent fields keep their
// value.
type PatchIntervalRequest struct {
	Start       *string `json:"start"`
	End         *string `json:"end"`
	Description *string `json:"description"`
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type LeaveRequestDTO struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	Type            string  `json:"type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Days            int     `json:"days"`
	Status          string  `json:"status"`
	Reason          string  `json:"reason,omitempty"`
	DecidedBy       *string `json:"decided_by,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
}

func toLeaveRequestDTO(lr engine.LeaveRequest) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:              string(lr.ID),
		EmployeeID:      string(lr.EmployeeID),
		Type:            string(lr.Type),
		StartDate:       lr.StartDate.Format("2006-01-02"),
		EndDate:         lr.EndDate.Format("2006-01-02"),
		Days:            lr.Days(),
		Status:          string(lr.Status),
		Reason:          lr.Reason,
		RejectionReason: lr.RejectionReason,
	}
	if lr.DecidedBy != nil {
		s := string(*lr.DecidedBy)
		dto.DecidedBy = &s
	}
	if lr.DecidedAt != nil {
		s := lr.DecidedAt.Format(time.RFC3339)
		dto.DecidedAt = &s
	}
	return dto
}

func toLeaveRequestDTOs(lrs []engine.LeaveRequest) []LeaveRequestDTO {
	dtos := make([]LeaveRequestDTO, len(lrs))
	for i, lr := range lrs {
		dtos[i] = toLeaveRequestDTO(lr)
	}
	return dtos
}

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id,omitempty"`
	Type       string `json:"type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason,omitempty"`
}

type RejectLeaveRequest struct {
	Reason string `json:"reason"`
}

// =============================================================================
// BALANCES AND REPORTS
// =============================================================================

type BalanceDTO struct {
	EmployeeID string `json:"employee_id"`
	Type       string `json:"type"`
	Year       int    `json:"year"`
	Allocated  int    `json:"allocated"`
	Used       int    `json:"used"`
	Remaining  int    `json:"remaining"`
	Reserved   int    `json:"reserved"`
}

type ViolationDTO struct {
	EmployeeID string `json:"employee_id"`
	Kind       string `json:"kind"`
	Period     string `json:"period"`
	Measured   string `json:"measured"`
	Limit      string `json:"limit"`
}

type ComplianceReportDTO struct {
	EmployeeID  string         `json:"employee_id"`
	PeriodStart string         `json:"period_start"`
	PeriodEnd   string         `json:"period_end"`
	Compliant   bool           `json:"compliant"`
	Violations  []ViolationDTO `json:"violations"`
}

type DayTotalDTO struct {
	Date    string `json:"date"`
	Hours   string `json:"hours"`
	Entries int    `json:"entries"`
}

type OvertimeDTO struct {
	EmployeeID    string `json:"employee_id"`
	TotalHours    string `json:"total_hours"`
	WorkingDays   int    `json:"working_days"`
	StandardHours string `json:"standard_hours"`
	Overtime      string `json:"overtime"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

type PutEmployeeRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	Active *bool  `json:"active"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
