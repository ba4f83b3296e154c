// Package metrics счётчики Prometheus для стриминга, фоновых задач и оплат.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "tutoring"

// Metrics набор счётчиков приложения.
type Metrics struct {
	StreamRequests *prometheus.CounterVec
	StreamedBytes  prometheus.Counter
	SweepExpired   prometheus.Counter
	SweepFailures  prometheus.Counter
	CleanupDeleted *prometheus.CounterVec
	Payments       *prometheus.CounterVec
}

// New создаёт счётчики и регистрирует их в reg. Если reg равен nil, счётчики
// не регистрируются, что удобно в тестах.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "requests_total",
			Help:      "Stream requests by outcome.",
		}, []string{"outcome"}),
		StreamedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "bytes_total",
			Help:      "Bytes relayed from the media host.",
		}),
		SweepExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "expired_total",
			Help:      "Subscriptions deactivated by the expiry sweep.",
		}),
		SweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "failures_total",
			Help:      "Per-account failures during the expiry sweep.",
		}),
		CleanupDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cleanup",
			Name:      "deleted_total",
			Help:      "Unverified accounts removed, by path (timer or stale).",
		}, []string{"path"}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "verifications_total",
			Help:      "Payment verifications by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.StreamRequests,
			m.StreamedBytes,
			m.SweepExpired,
			m.SweepFailures,
			m.CleanupDeleted,
			m.Payments,
		)
	}
	return m
}
