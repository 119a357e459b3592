package driver

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Vehicle describes what the driver delivers with.
type Vehicle struct {
	Type  string `json:"type"`
	Plate string `json:"plate"`
}

// NotificationPreferences are the push categories a driver opted into.
type NotificationPreferences struct {
	NewOrders     bool `json:"newOrders"`
	StatusUpdates bool `json:"statusUpdates"`
	Earnings      bool `json:"earnings"`
}

// Preferences are driver-editable dispatch preferences.
type Preferences struct {
	MaxRadiusKm    float64                 `json:"maxRadiusKm"`
	PreferredAreas []string                `json:"preferredAreas"`
	Notifications  NotificationPreferences `json:"notifications"`
}

// DefaultPreferences returns the preferences assigned to new drivers.
func DefaultPreferences() Preferences {
	return Preferences{
		MaxRadiusKm:    10,
		PreferredAreas: []string{},
		Notifications: NotificationPreferences{
			NewOrders:     true,
			StatusUpdates: true,
			Earnings:      true,
		},
	}
}

// PeriodStats are deliveries and earnings within one reporting period.
type PeriodStats struct {
	Deliveries int          `json:"deliveries"`
	Earnings   kernel.Money `json:"earnings"`
}

// Performance is a snapshot of period totals derived from the earnings ledger.
// It is replaced wholesale and never incremented in place.
type Performance struct {
	Today      PeriodStats `json:"today"`
	Week       PeriodStats `json:"week"`
	Month      PeriodStats `json:"month"`
	ComputedAt time.Time   `json:"computedAt"`
}

// ShiftState is the driver's current or most recent shift.
type ShiftState struct {
	StartTime  *time.Time   `json:"startTime,omitempty"`
	EndTime    *time.Time   `json:"endTime,omitempty"`
	TotalHours float64      `json:"totalHours"`
	Earnings   kernel.Money `json:"earnings"`
}

// IsOpen reports whether a shift was started and not yet ended.
func (s ShiftState) IsOpen() bool {
	return s.StartTime != nil && s.EndTime == nil
}

// Profile holds the registry fields supplied when a driver is created.
type Profile struct {
	Name        string
	Phone       string
	Email       string
	Vehicle     Vehicle
	Preferences *Preferences
}

// ClosedShift is what EndShift hands to the shift ledger.
type ClosedShift struct {
	StartTime  time.Time
	EndTime    time.Time
	TotalHours float64
	Earnings   kernel.Money
}
