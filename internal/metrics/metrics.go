// Package metrics holds the Prometheus collectors of the plaque client.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds all collectors.
type Metrics struct {
	// Authentication
	LoginAttempts *prometheus.CounterVec // by status (success/failure)
	Registrations prometheus.Counter

	// Stores
	StoreMutations   *prometheus.CounterVec // by entity and op
	StoredRecords    *prometheus.GaugeVec   // current collection sizes by entity
	QREncodeFailures prometheus.Counter
	SnapshotWrites   *prometheus.CounterVec // by key and status

	// Export
	QRExports *prometheus.CounterVec // by backend and status

	gatherer prometheus.Gatherer
}

// NewMetrics registers the collectors on reg. A nil reg gets a private
// registry, which keeps separate store instances from colliding.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plaques_auth_login_attempts_total",
				Help: "Login attempts by status (success, failure)",
			},
			[]string{"status"},
		),
		Registrations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "plaques_auth_registrations_total",
				Help: "Accounts created through registration",
			},
		),
		StoreMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plaques_store_mutations_total",
				Help: "Committed store mutations by entity (user, plaque, settings) and op",
			},
			[]string{"entity", "op"},
		),
		StoredRecords: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plaques_store_records",
				Help: "Records currently held by the data store",
			},
			[]string{"entity"},
		),
		QREncodeFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "plaques_qr_encode_failures_total",
				Help: "QR image generations that failed",
			},
		),
		SnapshotWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plaques_snapshot_writes_total",
				Help: "Snapshot writes by key and status (success, failure)",
			},
			[]string{"key", "status"},
		),
		QRExports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plaques_qr_exports_total",
				Help: "QR image exports by backend (file, s3) and status",
			},
			[]string{"backend", "status"},
		),
		gatherer: reg,
	}
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *Metrics) RecordLoginAttempt(ok bool) {
	m.LoginAttempts.WithLabelValues(status(ok)).Inc()
}

func (m *Metrics) RecordRegistration() {
	m.Registrations.Inc()
}

func (m *Metrics) RecordMutation(entity, op string) {
	m.StoreMutations.WithLabelValues(entity, op).Inc()
}

func (m *Metrics) SetRecords(entity string, n int) {
	m.StoredRecords.WithLabelValues(entity).Set(float64(n))
}

func (m *Metrics) RecordQREncodeFailure() {
	m.QREncodeFailures.Inc()
}

func (m *Metrics) RecordSnapshotWrite(key string, err error) {
	m.SnapshotWrites.WithLabelValues(key, status(err == nil)).Inc()
}

func (m *Metrics) RecordQRExport(backend string, err error) {
	m.QRExports.WithLabelValues(backend, status(err == nil)).Inc()
}

// WriteText dumps every collected family in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.gatherer.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
