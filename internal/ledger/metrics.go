package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus counters for ledger activity. Invariant violations
// must never pass silently, so they get their own counter in addition to the
// error log.
type Metrics struct {
	Reservations        prometheus.Counter
	ReservationFailures prometheus.Counter
	Releases            prometheus.Counter
	InvariantViolations prometheus.Counter
}

// NewMetrics creates and registers the ledger counters on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reservations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agroshare_ledger_reservations_total",
			Help: "Share reservations applied on offer approval",
		}),
		ReservationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agroshare_ledger_reservation_failures_total",
			Help: "Reservations rejected for insufficient available shares",
		}),
		Releases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agroshare_ledger_releases_total",
			Help: "Share releases applied on cancellation",
		}),
		InvariantViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agroshare_ledger_invariant_violations_total",
			Help: "Over-releases and other ledger invariant breaches",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Reservations, m.ReservationFailures, m.Releases, m.InvariantViolations)
	}
	return m
}
