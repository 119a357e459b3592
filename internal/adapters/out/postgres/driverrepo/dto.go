// Package driverrepo persists the driver aggregate. It maps drivers to a single
// "drivers" table; nested preference and performance groups are stored as JSON.
package driverrepo

import (
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DriverDTO is the row shape of a driver.
type DriverDTO struct {
	ID       uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name     string      `gorm:"type:varchar(255);not null;index"`
	Phone    string      `gorm:"type:varchar(64);not null"`
	Email    string      `gorm:"type:varchar(255)"`
	Vehicle  VehicleDTO  `gorm:"embedded;embeddedPrefix:vehicle_"`
	Status   string      `gorm:"type:varchar(16);not null;index"`
	IsOnline bool        `gorm:"not null;default:false"`
	Location LocationDTO `gorm:"embedded;embeddedPrefix:location_"`

	RatingSum           int          `gorm:"not null;default:0"`
	RatingCount         int          `gorm:"not null;default:0"`
	TotalDeliveries     int          `gorm:"not null;default:0"`
	AssignedDeliveries  int          `gorm:"not null;default:0"`
	TotalEarnings       kernel.Money `gorm:"type:numeric(12,2);not null;default:0"`
	AverageDeliveryTime float64      `gorm:"not null;default:0"`
	CompletionRate      float64      `gorm:"not null;default:0"`

	Performance driver.Performance `gorm:"type:text;serializer:json"`
	Shift       ShiftDTO           `gorm:"embedded;embeddedPrefix:shift_"`

	MaxRadiusKm    float64                        `gorm:"not null;default:0"`
	PreferredAreas []string                       `gorm:"type:text;serializer:json"`
	Notifications  driver.NotificationPreferences `gorm:"type:text;serializer:json"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName overrides GORM's default "driver_dtos".
func (DriverDTO) TableName() string {
	return "drivers"
}

// VehicleDTO is embedded with the vehicle_ prefix.
type VehicleDTO struct {
	Type  string `gorm:"type:varchar(64)"`
	Plate string `gorm:"type:varchar(32)"`
}

// LocationDTO is the last accepted fix; all columns are NULL until the first ping.
type LocationDTO struct {
	Lat       *float64
	Lng       *float64
	Timestamp *time.Time
}

// ShiftDTO is the current or most recent shift.
type ShiftDTO struct {
	StartTime  *time.Time
	EndTime    *time.Time
	TotalHours float64      `gorm:"not null;default:0"`
	Earnings   kernel.Money `gorm:"type:numeric(12,2);not null;default:0"`
}

func fromDomain(d *driver.Driver) DriverDTO {
	s := d.Snapshot()

	dto := DriverDTO{
		ID:                  s.ID.Bytes(),
		Name:                s.Name,
		Phone:               s.Phone,
		Email:               s.Email,
		Vehicle:             VehicleDTO{Type: s.Vehicle.Type, Plate: s.Vehicle.Plate},
		Status:              s.Status.String(),
		IsOnline:            s.IsOnline,
		RatingSum:           s.RatingSum,
		RatingCount:         s.RatingCount,
		TotalDeliveries:     s.TotalDeliveries,
		AssignedDeliveries:  s.AssignedDeliveries,
		TotalEarnings:       s.TotalEarnings,
		AverageDeliveryTime: s.AverageDeliveryTime,
		CompletionRate:      s.CompletionRate,
		Performance:         s.Performance,
		Shift: ShiftDTO{
			StartTime:  s.Shift.StartTime,
			EndTime:    s.Shift.EndTime,
			TotalHours: s.Shift.TotalHours,
			Earnings:   s.Shift.Earnings,
		},
		MaxRadiusKm:    s.Preferences.MaxRadiusKm,
		PreferredAreas: s.Preferences.PreferredAreas,
		Notifications:  s.Preferences.Notifications,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}

	if fix := s.CurrentLocation; fix != nil {
		lat, lng, ts := fix.Lat, fix.Lng, fix.Timestamp
		dto.Location = LocationDTO{Lat: &lat, Lng: &lng, Timestamp: &ts}
	}

	return dto
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	s := driver.Snapshot{
		ID:                  id,
		Name:                dto.Name,
		Phone:               dto.Phone,
		Email:               dto.Email,
		Vehicle:             driver.Vehicle{Type: dto.Vehicle.Type, Plate: dto.Vehicle.Plate},
		Status:              driver.Status(dto.Status),
		IsOnline:            dto.IsOnline,
		RatingSum:           dto.RatingSum,
		RatingCount:         dto.RatingCount,
		TotalDeliveries:     dto.TotalDeliveries,
		AssignedDeliveries:  dto.AssignedDeliveries,
		TotalEarnings:       dto.TotalEarnings,
		AverageDeliveryTime: dto.AverageDeliveryTime,
		CompletionRate:      dto.CompletionRate,
		Performance:         dto.Performance,
		Shift: driver.ShiftState{
			StartTime:  utc(dto.Shift.StartTime),
			EndTime:    utc(dto.Shift.EndTime),
			TotalHours: dto.Shift.TotalHours,
			Earnings:   dto.Shift.Earnings,
		},
		Preferences: driver.Preferences{
			MaxRadiusKm:    dto.MaxRadiusKm,
			PreferredAreas: dto.PreferredAreas,
			Notifications:  dto.Notifications,
		},
		CreatedAt: dto.CreatedAt.UTC(),
		UpdatedAt: dto.UpdatedAt.UTC(),
	}

	if loc := dto.Location; loc.Lat != nil && loc.Lng != nil && loc.Timestamp != nil {
		s.CurrentLocation = &driver.Fix{Lat: *loc.Lat, Lng: *loc.Lng, Timestamp: loc.Timestamp.UTC()}
	}

	return driver.Restore(s)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
