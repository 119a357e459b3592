package earnings

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrRecordIsNotConstructed is returned when a Record was not created through
	// NewRecord or RestoreRecord.
	ErrRecordIsNotConstructed = errors.New("Record must be created via NewRecord or RestoreRecord")
)

// Record is an immutable entry of the earnings ledger: one completed delivery
// credited to one driver. The ledger is the source of truth for every period total.
type Record struct {
	id              kernel.UUID
	driverID        kernel.UUID
	trackingID      *kernel.UUID
	commission      kernel.Money
	orderValue      kernel.Money
	deliveryMinutes float64
	timestamp       time.Time

	isConstructed bool
}

// NewRecord creates a ledger entry.
//
// Parameters:
//   - id: entry identifier
//   - driverID: credited driver
//   - trackingID: the delivery that produced the entry, or nil for manual credits.
//     When present it is unique across the ledger.
//   - commission, orderValue: non-negative amounts
//   - deliveryMinutes: non-negative delivery duration
//   - timestamp: when the credit happened
func NewRecord(
	id, driverID kernel.UUID,
	trackingID *kernel.UUID,
	commission, orderValue kernel.Money,
	deliveryMinutes float64,
	timestamp time.Time,
) (*Record, error) {
	r := &Record{
		commission:      commission,
		orderValue:      orderValue,
		deliveryMinutes: deliveryMinutes,
		timestamp:       timestamp.UTC(),
		isConstructed:   true,
	}

	var trackingErr error
	if trackingID != nil {
		trackingErr = trackingID.Validate()
		tid := *trackingID
		r.trackingID = &tid
	}

	if err := errors.Join(
		id.Validate(),
		driverID.Validate(),
		trackingErr,
		nonNegative("commission", commission),
		nonNegative("orderValue", orderValue),
		validMinutes(deliveryMinutes),
	); err != nil {
		return nil, err
	}
	r.id = id
	r.driverID = driverID

	return r, nil
}

// RestoreRecord rebuilds a persisted ledger entry.
func RestoreRecord(
	id, driverID kernel.UUID,
	trackingID *kernel.UUID,
	commission, orderValue kernel.Money,
	deliveryMinutes float64,
	timestamp time.Time,
) (*Record, error) {
	return NewRecord(id, driverID, trackingID, commission, orderValue, deliveryMinutes, timestamp)
}

// Validate ensures the Record was created through its constructors.
func (r *Record) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRecordIsNotConstructed
	}
	return nil
}

// ID returns the entry identifier.
func (r *Record) ID() kernel.UUID {
	return r.id
}

// DriverID returns the credited driver.
func (r *Record) DriverID() kernel.UUID {
	return r.driverID
}

// TrackingID returns the originating delivery, or nil.
func (r *Record) TrackingID() *kernel.UUID {
	return r.trackingID
}

// Commission returns the driver's credit.
func (r *Record) Commission() kernel.Money {
	return r.commission
}

// OrderValue returns the order total the commission was computed from.
func (r *Record) OrderValue() kernel.Money {
	return r.orderValue
}

// DeliveryMinutes returns the delivery duration.
func (r *Record) DeliveryMinutes() float64 {
	return r.deliveryMinutes
}

// Timestamp returns when the credit happened, in UTC.
func (r *Record) Timestamp() time.Time {
	return r.timestamp
}

func nonNegative(name string, m kernel.Money) error {
	if m.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s is negative", m))
	}
	return nil
}

func validMinutes(minutes float64) error {
	if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return errs.NewValueIsOutOfRangeError("deliveryTime", minutes, 0, "+Inf")
	}
	return nil
}
