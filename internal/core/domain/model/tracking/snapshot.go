package tracking

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// PlaceView is the wire form of a resolved place.
type PlaceView struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Snapshot is the full current state of a tracking record, delivered to
// subscribers as replace-state and used for persistence.
type Snapshot struct {
	ID                    kernel.UUID   `json:"id"`
	OrderID               kernel.UUID   `json:"orderId"`
	DriverID              kernel.UUID   `json:"driverId"`
	Status                Status        `json:"status"`
	Pickup                PlaceView     `json:"pickupLocation"`
	Delivery              PlaceView     `json:"deliveryLocation"`
	CurrentLocation       *kernel.Point `json:"currentLocation,omitempty"`
	EstimatedPickupTime   *time.Time    `json:"estimatedPickupTime,omitempty"`
	EstimatedDeliveryTime *time.Time    `json:"estimatedDeliveryTime,omitempty"`
	ActualPickupTime      *time.Time    `json:"actualPickupTime,omitempty"`
	ActualDeliveryTime    *time.Time    `json:"actualDeliveryTime,omitempty"`
	ETA                   *ETA          `json:"eta,omitempty"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}

// Snapshot copies the record's state.
func (t *DeliveryTracking) Snapshot() Snapshot {
	s := Snapshot{
		ID:                    t.id,
		OrderID:               t.orderID,
		DriverID:              t.driverID,
		Status:                t.status,
		Pickup:                placeView(t.pickup),
		Delivery:              placeView(t.delivery),
		EstimatedPickupTime:   t.estimatedPickupTime,
		EstimatedDeliveryTime: t.estimatedDeliveryTime,
		ActualPickupTime:      t.actualPickupTime,
		ActualDeliveryTime:    t.actualDeliveryTime,
		CreatedAt:             t.createdAt,
		UpdatedAt:             t.updatedAt,
	}
	if t.currentLocation != nil {
		p := t.currentLocation.Point()
		s.CurrentLocation = &p
	}
	if t.eta != nil {
		eta := *t.eta
		s.ETA = &eta
	}
	return s
}

// Restore rebuilds a tracking record from persisted state.
func Restore(s Snapshot) (*DeliveryTracking, error) {
	pickup, pickupErr := s.Pickup.place()
	delivery, deliveryErr := s.Delivery.place()
	if err := errors.Join(
		s.ID.Validate(),
		s.OrderID.Validate(),
		s.DriverID.Validate(),
		s.Status.Validate(),
		pickupErr,
		deliveryErr,
	); err != nil {
		return nil, err
	}

	t := &DeliveryTracking{
		id:                    s.ID,
		orderID:               s.OrderID,
		driverID:              s.DriverID,
		status:                s.Status,
		pickup:                pickup,
		delivery:              delivery,
		estimatedPickupTime:   s.EstimatedPickupTime,
		estimatedDeliveryTime: s.EstimatedDeliveryTime,
		actualPickupTime:      s.ActualPickupTime,
		actualDeliveryTime:    s.ActualDeliveryTime,
		createdAt:             s.CreatedAt,
		updatedAt:             s.UpdatedAt,
		isConstructed:         true,
	}
	if s.CurrentLocation != nil {
		loc, err := s.CurrentLocation.Location()
		if err != nil {
			return nil, err
		}
		t.currentLocation = &loc
	}
	if s.ETA != nil {
		eta := *s.ETA
		t.eta = &eta
	}
	return t, nil
}

func placeView(p kernel.Place) PlaceView {
	return PlaceView{Address: p.Address(), Lat: p.Location().Lat(), Lng: p.Location().Lng()}
}

func (v PlaceView) place() (kernel.Place, error) {
	loc, err := kernel.NewLocation(v.Lat, v.Lng)
	if err != nil {
		return kernel.Place{}, err
	}
	return kernel.NewPlace(v.Address, loc)
}
