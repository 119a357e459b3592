package ports

// Metrics records operational counters of the dispatch core.
type Metrics interface {
	DriverDispatched(outcome string)
	DeliveryTransitioned(status string)
	PingProcessed(accepted bool)
	ETACalculated(minutes int)
	NotificationSent(outcome string)
	EarningsRecorded(commission float64)
}
