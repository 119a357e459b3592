package tracking

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

var (
	// ErrTrackingIsNotConstructed is returned when a DeliveryTracking was not created
	// through New or Restore.
	ErrTrackingIsNotConstructed = errors.New("DeliveryTracking must be created via New or Restore")
)

// ETA is the last computed distance and travel time to the current target place.
type ETA struct {
	DistanceKm float64   `json:"distanceKm"`
	Minutes    int       `json:"minutes"`
	ComputedAt time.Time `json:"computedAt"`
}

// DeliveryTracking is the aggregate for one delivery's lifecycle and location trail.
// It is created by dispatch, mutated only by the delivery state machine and the
// location pipeline, and never deleted.
type DeliveryTracking struct {
	id       kernel.UUID
	orderID  kernel.UUID
	driverID kernel.UUID
	status   Status

	pickup          kernel.Place
	delivery        kernel.Place
	currentLocation *kernel.Location

	estimatedPickupTime   *time.Time
	estimatedDeliveryTime *time.Time
	actualPickupTime      *time.Time
	actualDeliveryTime    *time.Time
	eta                   *ETA

	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

// New creates a tracking record in the Assigned status.
//
// Parameters:
//   - id: unique identifier of the tracking record
//   - orderID: the order being delivered
//   - driverID: the driver bound to the delivery
//   - pickup, delivery: resolved places
//   - now: creation time
func New(
	id, orderID, driverID kernel.UUID,
	pickup, delivery kernel.Place,
	now time.Time,
) (*DeliveryTracking, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		driverID.Validate(),
		pickup.Location().Validate(),
		delivery.Location().Validate(),
	); err != nil {
		return nil, err
	}

	return &DeliveryTracking{
		id:            id,
		orderID:       orderID,
		driverID:      driverID,
		status:        Assigned,
		pickup:        pickup,
		delivery:      delivery,
		createdAt:     now.UTC(),
		updatedAt:     now.UTC(),
		isConstructed: true,
	}, nil
}

// Validate ensures the record was created through New or Restore.
func (t *DeliveryTracking) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrTrackingIsNotConstructed
	}
	return nil
}

func (t *DeliveryTracking) ID() kernel.UUID {
	return t.id
}

func (t *DeliveryTracking) OrderID() kernel.UUID {
	return t.orderID
}

func (t *DeliveryTracking) DriverID() kernel.UUID {
	return t.driverID
}

func (t *DeliveryTracking) Status() Status {
	return t.status
}

func (t *DeliveryTracking) Pickup() kernel.Place {
	return t.pickup
}

func (t *DeliveryTracking) Delivery() kernel.Place {
	return t.delivery
}

func (t *DeliveryTracking) CurrentLocation() *kernel.Location {
	return t.currentLocation
}

func (t *DeliveryTracking) ActualPickupTime() *time.Time {
	return t.actualPickupTime
}

func (t *DeliveryTracking) ActualDeliveryTime() *time.Time {
	return t.actualDeliveryTime
}

func (t *DeliveryTracking) EstimatedPickupTime() *time.Time {
	return t.estimatedPickupTime
}

func (t *DeliveryTracking) EstimatedDeliveryTime() *time.Time {
	return t.estimatedDeliveryTime
}

func (t *DeliveryTracking) ETA() *ETA {
	return t.eta
}

func (t *DeliveryTracking) CreatedAt() time.Time {
	return t.createdAt
}

func (t *DeliveryTracking) UpdatedAt() time.Time {
	return t.updatedAt
}

// IsLive reports whether the delivery has not reached Delivered yet.
func (t *DeliveryTracking) IsLive() bool {
	return !t.status.IsTerminal()
}

// Target returns the place the driver is heading to: the pickup until the
// parcel is picked up, the delivery address afterwards.
func (t *DeliveryTracking) Target() kernel.Place {
	if t.status.IsBefore(PickedUp) {
		return t.pickup
	}
	return t.delivery
}

// Advance moves the record to target, recording location when supplied.
//
// Picked-up stamps ActualPickupTime and Delivered stamps ActualDeliveryTime.
// Repeating the current status changes nothing except the location.
//
// Returns:
//   - true if the status changed
//   - error: ValueIsInvalid for unknown statuses, StateConflict for backward or skipping moves
func (t *DeliveryTracking) Advance(target Status, location *kernel.Location, now time.Time) (bool, error) {
	changed, err := t.status.CheckTransition(target)
	if err != nil {
		return false, err
	}

	if location != nil {
		if err = location.Validate(); err != nil {
			return false, err
		}
		loc := *location
		t.currentLocation = &loc
		t.touch(now)
	}

	if !changed {
		return false, nil
	}

	stamp := now.UTC()
	switch target {
	case PickedUp:
		t.actualPickupTime = &stamp
	case Delivered:
		t.actualDeliveryTime = &stamp
	case Assigned, PickupStarted, DeliveryStarted:
	}
	t.status = target
	t.touch(now)
	return true, nil
}

// MoveTo records the driver's latest location on a live record.
func (t *DeliveryTracking) MoveTo(location kernel.Location, now time.Time) {
	t.currentLocation = &location
	t.touch(now)
}

// ApplyETA stores a freshly computed ETA and projects it onto the estimated
// arrival at the current target.
func (t *DeliveryTracking) ApplyETA(distanceKm float64, minutes int, now time.Time) {
	computed := now.UTC()
	arrival := computed.Add(time.Duration(minutes) * time.Minute)
	t.eta = &ETA{DistanceKm: distanceKm, Minutes: minutes, ComputedAt: computed}
	if t.status.IsBefore(PickedUp) {
		t.estimatedPickupTime = &arrival
	} else {
		t.estimatedDeliveryTime = &arrival
	}
	t.touch(now)
}

// DeliveryMinutes returns the minutes between creation and delivery, or false
// if the record is not delivered.
func (t *DeliveryTracking) DeliveryMinutes() (float64, bool) {
	if t.actualDeliveryTime == nil {
		return 0, false
	}
	minutes := t.actualDeliveryTime.Sub(t.createdAt).Minutes()
	if minutes < 0 {
		minutes = 0
	}
	return minutes, true
}

func (t *DeliveryTracking) touch(now time.Time) {
	t.updatedAt = now.UTC()
}
