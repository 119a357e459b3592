// Package metrics exposes the dispatch counters to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dispatch"

// Prometheus implements ports.Metrics.
type Prometheus struct {
	dispatched    *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	pings         *prometheus.CounterVec
	etaMinutes    prometheus.Histogram
	notifications *prometheus.CounterVec
	commission    prometheus.Counter
	credited      prometheus.Counter
}

// NewPrometheus creates the collectors and registers them on registerer.
func NewPrometheus(registerer prometheus.Registerer) (*Prometheus, error) {
	m := &Prometheus{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Driver assignments by outcome.",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_transitions_total",
			Help:      "Delivery status transitions by target status.",
		}, []string{"status"}),
		pings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_pings_total",
			Help:      "Location pings by whether they were accepted or debounced.",
		}, []string{"accepted"}),
		etaMinutes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "eta_minutes",
			Help:      "Computed ETAs in minutes.",
			Buckets:   []float64{1, 2, 5, 10, 15, 20, 30, 45, 60, 90},
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "ETA notifications by outcome.",
		}, []string{"outcome"}),
		commission: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commission_total",
			Help:      "Sum of commissions credited to drivers.",
		}),
		credited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "earnings_records_total",
			Help:      "Earnings ledger entries written.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.dispatched, m.transitions, m.pings, m.etaMinutes, m.notifications, m.commission, m.credited,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) DriverDispatched(outcome string) {
	m.dispatched.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) DeliveryTransitioned(status string) {
	m.transitions.WithLabelValues(status).Inc()
}

func (m *Prometheus) PingProcessed(accepted bool) {
	m.pings.WithLabelValues(strconv.FormatBool(accepted)).Inc()
}

func (m *Prometheus) ETACalculated(minutes int) {
	m.etaMinutes.Observe(float64(minutes))
}

func (m *Prometheus) NotificationSent(outcome string) {
	m.notifications.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) EarningsRecorded(commission float64) {
	m.credited.Inc()
	if commission > 0 {
		m.commission.Add(commission)
	}
}
