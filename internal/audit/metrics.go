package audit

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gosuda/techtransfer/internal/domain"
)

// Metrics holds the audit trail counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	RecordsWritten *prometheus.CounterVec
	Suppressed     *prometheus.CounterVec
	WriteFailures  prometheus.Counter
	SinkFailures   *prometheus.CounterVec
}

// NewMetrics creates the audit counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techtransfer_audit_records_written_total",
				Help: "Total number of audit records appended",
			},
			[]string{"action", "subject_type"},
		),
		Suppressed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techtransfer_audit_events_suppressed_total",
				Help: "Total number of candidate audit events skipped by the filter",
			},
			[]string{"reason"},
		),
		WriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "techtransfer_audit_write_failures_total",
			Help: "Total number of audit records the store failed to append",
		}),
		SinkFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "techtransfer_audit_sink_failures_total",
				Help: "Total number of audit records a sink failed to deliver",
			},
			[]string{"sink"},
		),
	}
	reg.MustRegister(m.RecordsWritten, m.Suppressed, m.WriteFailures, m.SinkFailures)
	return m
}

func (m *Metrics) incWritten(action domain.AuditAction, subjectType string) {
	if m == nil {
		return
	}
	m.RecordsWritten.WithLabelValues(string(action), subjectType).Inc()
}

func (m *Metrics) incSuppressed(v Verdict) {
	if m == nil {
		return
	}
	m.Suppressed.WithLabelValues(string(v)).Inc()
}

func (m *Metrics) incWriteFailure() {
	if m == nil {
		return
	}
	m.WriteFailures.Inc()
}

func (m *Metrics) incSinkFailure(sink string) {
	if m == nil {
		return
	}
	m.SinkFailures.WithLabelValues(sink).Inc()
}
