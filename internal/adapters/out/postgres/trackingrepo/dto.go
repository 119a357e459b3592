// Package trackingrepo persists delivery tracking records. Records are never deleted;
// a partial unique index keeps at most one live record per order.
package trackingrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"

	"github.com/google/uuid"
)

// TrackingDTO is the row shape of a tracking record.
type TrackingDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_tracking_live_order,where:status <> 'delivered'"`
	DriverID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status   string    `gorm:"type:varchar(32);not null;index"`

	Pickup   PlaceDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Delivery PlaceDTO `gorm:"embedded;embeddedPrefix:delivery_"`

	CurrentLat *float64
	CurrentLng *float64

	EstimatedPickupTime   *time.Time
	EstimatedDeliveryTime *time.Time
	ActualPickupTime      *time.Time
	ActualDeliveryTime    *time.Time

	ETADistanceKm *float64
	ETAMinutes    *int
	ETAComputedAt *time.Time

	CreatedAt time.Time `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName overrides GORM's default "tracking_dtos".
func (TrackingDTO) TableName() string {
	return "delivery_tracking"
}

// PlaceDTO is a resolved address with coordinates.
type PlaceDTO struct {
	Address string  `gorm:"type:varchar(512)"`
	Lat     float64 `gorm:"not null"`
	Lng     float64 `gorm:"not null"`
}

func fromDomain(t *tracking.DeliveryTracking) TrackingDTO {
	s := t.Snapshot()

	dto := TrackingDTO{
		ID:                    s.ID.Bytes(),
		OrderID:               s.OrderID.Bytes(),
		DriverID:              s.DriverID.Bytes(),
		Status:                s.Status.String(),
		Pickup:                PlaceDTO(s.Pickup),
		Delivery:              PlaceDTO(s.Delivery),
		EstimatedPickupTime:   s.EstimatedPickupTime,
		EstimatedDeliveryTime: s.EstimatedDeliveryTime,
		ActualPickupTime:      s.ActualPickupTime,
		ActualDeliveryTime:    s.ActualDeliveryTime,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}

	if p := s.CurrentLocation; p != nil {
		lat, lng := p.Lat, p.Lng
		dto.CurrentLat, dto.CurrentLng = &lat, &lng
	}
	if eta := s.ETA; eta != nil {
		km, minutes, at := eta.DistanceKm, eta.Minutes, eta.ComputedAt
		dto.ETADistanceKm, dto.ETAMinutes, dto.ETAComputedAt = &km, &minutes, &at
	}

	return dto
}

func toDomain(dto TrackingDTO) (*tracking.DeliveryTracking, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}

	s := tracking.Snapshot{
		ID:                    id,
		OrderID:               orderID,
		DriverID:              driverID,
		Status:                tracking.Status(dto.Status),
		Pickup:                tracking.PlaceView(dto.Pickup),
		Delivery:              tracking.PlaceView(dto.Delivery),
		EstimatedPickupTime:   utc(dto.EstimatedPickupTime),
		EstimatedDeliveryTime: utc(dto.EstimatedDeliveryTime),
		ActualPickupTime:      utc(dto.ActualPickupTime),
		ActualDeliveryTime:    utc(dto.ActualDeliveryTime),
		CreatedAt:             dto.CreatedAt.UTC(),
		UpdatedAt:             dto.UpdatedAt.UTC(),
	}

	if dto.CurrentLat != nil && dto.CurrentLng != nil {
		s.CurrentLocation = &kernel.Point{Lat: *dto.CurrentLat, Lng: *dto.CurrentLng}
	}
	if dto.ETADistanceKm != nil && dto.ETAMinutes != nil && dto.ETAComputedAt != nil {
		s.ETA = &tracking.ETA{
			DistanceKm: *dto.ETADistanceKm,
			Minutes:    *dto.ETAMinutes,
			ComputedAt: dto.ETAComputedAt.UTC(),
		}
	}

	return tracking.Restore(s)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
