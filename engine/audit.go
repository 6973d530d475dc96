/*
audit.go - Audit events emitted on every mutation and transition

PURPOSE:
  Every ledger mutation and every workflow transition produces an audit
  event for the external audit collaborator. Emission is fire-and-forget:
  a failing recorder never fails the business operation, but the failure
  is logged and counted so operators can alert on it.

SEE ALSO:
  - metrics/metrics.go: The audit-failure counter implementation
  - ledger.go, workflow.go: Emission sites
*/
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// =============================================================================
// AUDIT EVENTS
// =============================================================================

type AuditAction string

const (
	AuditIntervalStarted  AuditAction = "interval_started"
	AuditIntervalStopped  AuditAction = "interval_stopped"
	AuditIntervalCreated  AuditAction = "interval_created"
	AuditIntervalEdited   AuditAction = "interval_edited"
	AuditIntervalDeleted  AuditAction = "interval_deleted"
	AuditIntervalApproved AuditAction = "interval_approved"
	AuditRequestCreated   AuditAction = "request_created"
	AuditRequestApproved  AuditAction = "request_approved"
	AuditRequestRejected  AuditAction = "request_rejected"
	AuditRequestCanceled  AuditAction = "request_canceled"
)

// AuditEvent records who did what, when, and the status change if the
// action was a workflow transition.
type AuditEvent struct {
	ID         string
	ActorID    EmployeeID
	EmployeeID EmployeeID
	Action     AuditAction
	ResourceID string
	OldStatus  string
	NewStatus  string
	At         time.Time
	Detail     map[string]string
}

// AuditRecorder is the external audit collaborator.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
}

// NopRecorder discards events. Used in tests and when no audit sink is
// configured.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, event AuditEvent) error { return nil }

// =============================================================================
// AUDITOR - Fire-and-forget emission with failure accounting
// =============================================================================

// AuditFailureCounter is incremented once per failed emission. Satisfied
// by metrics.Collector.
type AuditFailureCounter interface {
	RecordAuditFailure()
}

type nopCounter struct{}

func (nopCounter) RecordAuditFailure() {}

// Auditor wraps a recorder with the failure policy from the error
// handling design: log, count, continue.
type Auditor struct {
	rec      AuditRecorder
	log      zerolog.Logger
	failures AuditFailureCounter
}

func NewAuditor(rec AuditRecorder, log zerolog.Logger, failures AuditFailureCounter) *Auditor {
	if rec == nil {
		rec = NopRecorder{}
	}
	if failures == nil {
		failures = nopCounter{}
	}
	return &Auditor{rec: rec, log: log, failures: failures}
}

// Emit fills in the event id and timestamp and records the event. Never
// returns an error: audit failure does not abort the operation.
func (a *Auditor) Emit(ctx context.Context, event AuditEvent) {
	event.ID = uuid.NewString()
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if err := a.rec.Record(ctx, event); err != nil {
		a.failures.RecordAuditFailure()
		a.log.Warn().
			Err(err).
			Str("action", string(event.Action)).
			Str("resource_id", event.ResourceID).
			Str("actor_id", string(event.ActorID)).
			Msg("audit emission failed")
	}
}
