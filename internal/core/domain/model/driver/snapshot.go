package driver

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Fix is the wire form of a timed location.
type Fix struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is the full current state of a driver. It is what queries return,
// what subscribers receive on every change and what repositories persist.
// Observers must treat it as replace-state.
type Snapshot struct {
	ID                  kernel.UUID  `json:"id"`
	Name                string       `json:"name"`
	Phone               string       `json:"phone"`
	Email               string       `json:"email"`
	Vehicle             Vehicle      `json:"vehicle"`
	Status              Status       `json:"status"`
	IsOnline            bool         `json:"isOnline"`
	CurrentLocation     *Fix         `json:"currentLocation,omitempty"`
	Rating              float64      `json:"rating"`
	RatingSum           int          `json:"ratingSum"`
	RatingCount         int          `json:"ratingCount"`
	TotalDeliveries     int          `json:"totalDeliveries"`
	AssignedDeliveries  int          `json:"assignedDeliveries"`
	TotalEarnings       kernel.Money `json:"totalEarnings"`
	AverageDeliveryTime float64      `json:"averageDeliveryTime"`
	CompletionRate      float64      `json:"completionRate"`
	Performance         Performance  `json:"performance"`
	Shift               ShiftState   `json:"shift"`
	Preferences         Preferences  `json:"preferences"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// Snapshot copies the driver's state.
func (d *Driver) Snapshot() Snapshot {
	s := Snapshot{
		ID:                  d.id,
		Name:                d.name,
		Phone:               d.phone,
		Email:               d.email,
		Vehicle:             d.vehicle,
		Status:              d.status,
		IsOnline:            d.isOnline,
		Rating:              d.Rating(),
		RatingSum:           d.ratingSum,
		RatingCount:         d.ratingCount,
		TotalDeliveries:     d.totalDeliveries,
		AssignedDeliveries:  d.assignedDeliveries,
		TotalEarnings:       d.totalEarnings,
		AverageDeliveryTime: d.averageDeliveryTime,
		CompletionRate:      d.completionRate,
		Performance:         d.performance,
		Shift:               d.shift,
		Preferences:         d.preferences,
		CreatedAt:           d.createdAt,
		UpdatedAt:           d.updatedAt,
	}
	s.Preferences.PreferredAreas = append([]string{}, d.preferences.PreferredAreas...)
	if d.currentLocation != nil {
		s.CurrentLocation = &Fix{
			Lat:       d.currentLocation.Location().Lat(),
			Lng:       d.currentLocation.Location().Lng(),
			Timestamp: d.currentLocation.Timestamp(),
		}
	}
	return s
}

// Restore rebuilds a driver from persisted state, validating identity and status.
// Rating is recomputed from RatingSum and RatingCount; the stored value is ignored.
func Restore(s Snapshot) (*Driver, error) {
	d := &Driver{
		email:               s.Email,
		vehicle:             s.Vehicle,
		isOnline:            s.IsOnline,
		ratingSum:           s.RatingSum,
		ratingCount:         s.RatingCount,
		totalDeliveries:     s.TotalDeliveries,
		assignedDeliveries:  s.AssignedDeliveries,
		totalEarnings:       s.TotalEarnings,
		averageDeliveryTime: s.AverageDeliveryTime,
		completionRate:      s.CompletionRate,
		performance:         s.Performance,
		shift:               s.Shift,
		createdAt:           s.CreatedAt,
		updatedAt:           s.UpdatedAt,
		isConstructed:       true,
	}

	if err := errors.Join(
		d.setID(s.ID),
		d.setName(s.Name),
		d.setPhone(s.Phone),
		d.setPreferences(s.Preferences),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	d.status = s.Status

	if s.CurrentLocation != nil {
		loc, err := kernel.NewLocation(s.CurrentLocation.Lat, s.CurrentLocation.Lng)
		if err != nil {
			return nil, err
		}
		pos, err := kernel.NewPosition(loc, s.CurrentLocation.Timestamp)
		if err != nil {
			return nil, err
		}
		d.currentLocation = &pos
	}

	return d, nil
}
