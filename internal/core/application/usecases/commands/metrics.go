package commands

import "dispatch/internal/core/ports"

// Dispatch outcomes reported to ports.Metrics.
const (
	OutcomeCreated   = "created"
	OutcomeRedriven  = "redriven"
	OutcomePartial   = "partial"
	OutcomeRejected  = "rejected"
	OutcomeSent      = "sent"
	OutcomeThrottled = "throttled"
	OutcomeFailed    = "failed"
)

type nopMetrics struct{}

func (nopMetrics) DriverDispatched(string)     {}
func (nopMetrics) DeliveryTransitioned(string) {}
func (nopMetrics) PingProcessed(bool)          {}
func (nopMetrics) ETACalculated(int)           {}
func (nopMetrics) NotificationSent(string)     {}
func (nopMetrics) EarningsRecorded(float64)    {}

func metricsOrNop(m ports.Metrics) ports.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
