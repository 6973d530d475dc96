// Package metrics collects and exposes Prometheus metrics for the
// worktime engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers the engine's operational metrics. It satisfies
// engine.AuditFailureCounter and engine.ViolationCounter.
type Collector struct {
	operations    *prometheus.CounterVec
	auditFailures prometheus.Counter
	violations    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on the
// given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worktime_operations_total",
			Help: "Engine operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worktime_audit_failures_total",
			Help: "Audit events that could not be recorded. Alert on any increase.",
		}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worktime_compliance_violations_total",
			Help: "Compliance violations detected, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.operations,
		c.auditFailures,
		c.violations,
	)
	return c
}

// RecordOperation counts one engine operation with its outcome
// ("ok", "validation", "conflict", "not_found", "permission", "error").
func (c *Collector) RecordOperation(operation, outcome string) {
	c.operations.WithLabelValues(operation, outcome).Inc()
}

// RecordAuditFailure counts one failed audit emission.
func (c *Collector) RecordAuditFailure() {
	c.auditFailures.Inc()
}

// RecordViolation counts one detected compliance violation.
func (c *Collector) RecordViolation(kind string) {
	c.violations.WithLabelValues(kind).Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
