package queries

import (
	"context"
	"time"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/earnings"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// EarningsEntry is one credited delivery.
type EarningsEntry struct {
	ID              kernel.UUID  `json:"id"`
	TrackingID      *kernel.UUID `json:"trackingId,omitempty"`
	Amount          kernel.Money `json:"amount"`
	OrderValue      kernel.Money `json:"orderValue"`
	DeliveryMinutes float64      `json:"deliveryTime"`
	Timestamp       time.Time    `json:"timestamp"`
}

// EarningsReport is the response of GetDriverEarningsQuery.
type EarningsReport struct {
	DriverID            kernel.UUID     `json:"driverId"`
	Period              earnings.Period `json:"period"`
	TotalEarnings       kernel.Money    `json:"totalEarnings"`
	TotalOrderValue     kernel.Money    `json:"totalOrderValue"`
	Deliveries          int             `json:"totalDeliveries"`
	AverageDeliveryTime float64         `json:"averageDeliveryTime"`
	Entries             []EarningsEntry `json:"earnings"`
}

// GetDriverEarningsQueryHandler filters the earnings ledger at read time.
type GetDriverEarningsQueryHandler struct {
	store      ReadStore
	authorizer ports.Authorizer
	clock      kernel.Clock
}

// NewGetDriverEarningsQueryHandler creates the handler.
func NewGetDriverEarningsQueryHandler(
	store ReadStore,
	authorizer ports.Authorizer,
	clock kernel.Clock,
) GetDriverEarningsQueryHandler {
	return GetDriverEarningsQueryHandler{store: store, authorizer: authorizer, clock: clock}
}

// Handle returns the driver's entries in the period, newest first, with totals.
// An unknown driver is an ObjectNotFound error.
func (h GetDriverEarningsQueryHandler) Handle(
	ctx context.Context,
	query GetDriverEarningsQuery,
) (EarningsReport, error) {
	if err := query.Validate(); err != nil {
		return EarningsReport{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceEarnings, ports.ActionRead,
		query.DriverID().String()); err != nil {
		return EarningsReport{}, err
	}

	if _, err := h.store.DriverRepository().Get(ctx, query.DriverID()); err != nil {
		return EarningsReport{}, err
	}

	records, err := h.store.EarningsRepository().ListByDriver(ctx, query.DriverID())
	if err != nil {
		return EarningsReport{}, err
	}

	summary := earnings.Summarize(records, query.Period(), h.clock.Now())

	report := EarningsReport{
		DriverID:            query.DriverID(),
		Period:              summary.Period,
		TotalEarnings:       summary.TotalEarnings,
		TotalOrderValue:     summary.TotalOrderValue,
		Deliveries:          summary.Deliveries,
		AverageDeliveryTime: summary.AverageDeliveryTime,
		Entries:             make([]EarningsEntry, 0, len(summary.Records)),
	}
	for _, r := range summary.Records {
		report.Entries = append(report.Entries, EarningsEntry{
			ID:              r.ID(),
			TrackingID:      r.TrackingID(),
			Amount:          r.Commission(),
			OrderValue:      r.OrderValue(),
			DeliveryMinutes: r.DeliveryMinutes(),
			Timestamp:       r.Timestamp(),
		})
	}
	return report, nil
}
