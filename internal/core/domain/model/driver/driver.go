package driver

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const (
	// RatingMin and RatingMax bound a single customer rating.
	RatingMin = 1
	RatingMax = 5
)

var (
	// ErrDriverIsNotConstructed is returned when a Driver was not created through
	// NewDriver or Restore.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver or Restore")
)

// Driver is the aggregate root of the driver pool. It owns the driver's
// availability, last known position, running accounting totals and shift state.
//
// Driver follows these invariants:
//   - Busy is entered only through Occupy and left only through Release
//   - Rating always equals the mean of every rating received (kept as sum and count)
//   - AverageDeliveryTime is the running mean over TotalDeliveries
//   - Performance is replaced from the ledger and never incremented in place
//
// Driver is not safe for concurrent use; each handler loads its own copy
// inside a unit of work.
type Driver struct {
	id      kernel.UUID
	name    string
	phone   string
	email   string
	vehicle Vehicle

	status          Status
	isOnline        bool
	currentLocation *kernel.Position

	ratingSum           int
	ratingCount         int
	totalDeliveries     int
	assignedDeliveries  int
	totalEarnings       kernel.Money
	averageDeliveryTime float64
	completionRate      float64
	performance         Performance

	shift       ShiftState
	preferences Preferences

	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

// NewDriver registers a new driver. New drivers start Offline and not online.
//
// Parameters:
//   - id: unique identifier
//   - profile: contact and vehicle data; Name and Phone are required
//   - now: creation time
//
// Returns:
//   - *Driver: the created driver
//   - error: joined validation errors for every invalid field
//
// Example:
//
//	d, err := driver.NewDriver(kernel.NewUUID(), driver.Profile{
//	    Name:  "Ana Lima",
//	    Phone: "+55 11 99999-0000",
//	}, time.Now())
func NewDriver(id kernel.UUID, profile Profile, now time.Time) (*Driver, error) {
	d := &Driver{
		status:        Offline,
		vehicle:       profile.Vehicle,
		email:         strings.TrimSpace(profile.Email),
		preferences:   DefaultPreferences(),
		createdAt:     now.UTC(),
		updatedAt:     now.UTC(),
		isConstructed: true,
	}
	if profile.Preferences != nil {
		d.preferences = *profile.Preferences
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(profile.Name),
		d.setPhone(profile.Phone),
		d.setPreferences(d.preferences),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate ensures the Driver was created through NewDriver or Restore.
func (d *Driver) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDriverIsNotConstructed
	}
	return nil
}

// IsEqual compares drivers by identifier.
func (d *Driver) IsEqual(other *Driver) bool {
	return other != nil && d.id.IsEqual(other.id)
}

func (d *Driver) ID() kernel.UUID {
	return d.id
}

func (d *Driver) Name() string {
	return d.name
}

func (d *Driver) Phone() string {
	return d.phone
}

func (d *Driver) Email() string {
	return d.email
}

func (d *Driver) Vehicle() Vehicle {
	return d.vehicle
}

func (d *Driver) Status() Status {
	return d.status
}

func (d *Driver) IsOnline() bool {
	return d.isOnline
}

func (d *Driver) CurrentLocation() *kernel.Position {
	return d.currentLocation
}

func (d *Driver) TotalDeliveries() int {
	return d.totalDeliveries
}

func (d *Driver) AssignedDeliveries() int {
	return d.assignedDeliveries
}

func (d *Driver) TotalEarnings() kernel.Money {
	return d.totalEarnings
}

func (d *Driver) AverageDeliveryTime() float64 {
	return d.averageDeliveryTime
}

func (d *Driver) CompletionRate() float64 {
	return d.completionRate
}

func (d *Driver) Performance() Performance {
	return d.performance
}

func (d *Driver) Shift() ShiftState {
	return d.shift
}

func (d *Driver) Preferences() Preferences {
	return d.preferences
}

func (d *Driver) CreatedAt() time.Time {
	return d.createdAt
}

func (d *Driver) UpdatedAt() time.Time {
	return d.updatedAt
}

// Rating returns the mean of all customer ratings, or 0 when none were received.
func (d *Driver) Rating() float64 {
	if d.ratingCount == 0 {
		return 0
	}
	return float64(d.ratingSum) / float64(d.ratingCount)
}

// RatingCount returns how many ratings were received.
func (d *Driver) RatingCount() int {
	return d.ratingCount
}

// SetStatus overwrites the status field. It does not check tracking consistency:
// callers outside dispatch and the delivery state machine must not force Busy away.
func (d *Driver) SetStatus(status Status, now time.Time) error {
	if err := status.Validate(); err != nil {
		return err
	}
	d.status = status
	d.touch(now)
	return nil
}

// UpdateLocation overwrites the last known position unconditionally.
func (d *Driver) UpdateLocation(position kernel.Position, now time.Time) {
	d.currentLocation = &position
	d.touch(now)
}

// MaxPingClockSkew bounds how far ahead of the server clock a device may stamp
// a fix.
const MaxPingClockSkew = 30 * time.Second

// AcceptPing stores position as the current location unless it is stale or a
// near-duplicate. A ping is dropped when its timestamp is not after the last
// accepted fix or falls within window of it.
//
// A fix stamped more than MaxPingClockSkew after now is kept at now, and a
// stored fix that lies in the future is not used for the comparison, so one
// bad device clock cannot freeze the driver's location.
//
// Returns:
//   - true if the ping was accepted and the location replaced
//   - false if the ping was dropped
func (d *Driver) AcceptPing(position kernel.Position, window time.Duration, now time.Time) bool {
	horizon := now.Add(MaxPingClockSkew)
	if position.Timestamp().After(horizon) {
		clamped, err := kernel.NewPosition(position.Location(), now)
		if err != nil {
			return false
		}
		position = clamped
	}

	if last := d.currentLocation; last != nil && !last.Timestamp().After(horizon) {
		if !position.Timestamp().After(last.Timestamp()) {
			return false
		}
		if position.Timestamp().Sub(last.Timestamp()) < window {
			return false
		}
	}
	d.UpdateLocation(position, now)
	return true
}

// Occupy binds the driver to a new delivery. Only Available drivers can be occupied.
//
// Returns:
//   - nil on success; the driver becomes Busy and AssignedDeliveries grows by one
//   - *errs.StateConflictError if the driver is Busy or Offline
func (d *Driver) Occupy(now time.Time) error {
	if d.status != Available {
		return errs.NewStateConflictError("driver", d.status.String(), Busy.String())
	}
	d.status = Busy
	d.assignedDeliveries++
	d.recomputeCompletionRate()
	d.touch(now)
	return nil
}

// Release returns a Busy driver to Available after a delivery completes.
// It is a no-op for drivers that are not Busy, so completion can be re-driven.
//
// Returns true when the status changed.
func (d *Driver) Release(now time.Time) bool {
	if d.status != Busy {
		return false
	}
	d.status = Available
	d.touch(now)
	return true
}

// StartShift opens a shift and brings the driver online. A Busy driver stays Busy.
// Starting a shift that is already open is a no-op.
//
// Returns true when a new shift was opened.
func (d *Driver) StartShift(now time.Time) bool {
	if d.isOnline && d.shift.IsOpen() {
		return false
	}
	start := now.UTC()
	d.shift = ShiftState{StartTime: &start, Earnings: kernel.ZeroMoney()}
	d.isOnline = true
	if d.status != Busy {
		d.status = Available
	}
	d.touch(now)
	return true
}

// EndShift closes the open shift and takes the driver offline.
//
// Returns:
//   - *ClosedShift: the finished shift for the ledger, or nil if no shift was open
//   - error: *errs.StateConflictError if the driver is Busy
func (d *Driver) EndShift(now time.Time) (*ClosedShift, error) {
	if d.status == Busy {
		return nil, errs.NewStateConflictError("driver", Busy.String(), Offline.String())
	}
	if !d.shift.IsOpen() {
		return nil, nil //nolint:nilnil // no open shift is not an error
	}

	end := now.UTC()
	hours := end.Sub(*d.shift.StartTime).Hours()
	if hours < 0 {
		hours = 0
	}
	d.shift.EndTime = &end
	d.shift.TotalHours = hours
	d.isOnline = false
	d.status = Offline
	d.touch(now)

	return &ClosedShift{
		StartTime:  *d.shift.StartTime,
		EndTime:    end,
		TotalHours: hours,
		Earnings:   d.shift.Earnings,
	}, nil
}

// RecordDelivery applies one completed delivery to the running totals.
//
// Parameters:
//   - commission: the driver's share of the order value
//   - deliveryMinutes: how long the delivery took; must not be negative
//   - now: time of the update
//
// The average uses the incremental mean (avg*n + t) / (n+1), so repeated
// identical delivery times leave it unchanged.
func (d *Driver) RecordDelivery(commission kernel.Money, deliveryMinutes float64, now time.Time) error {
	if commission.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("commission", fmt.Errorf("%s is negative", commission))
	}
	if deliveryMinutes < 0 || math.IsNaN(deliveryMinutes) {
		return errs.NewValueIsOutOfRangeError("deliveryTime", deliveryMinutes, 0, math.Inf(1))
	}

	n := float64(d.totalDeliveries)
	d.averageDeliveryTime = (d.averageDeliveryTime*n + deliveryMinutes) / (n + 1)
	d.totalDeliveries++
	d.totalEarnings = d.totalEarnings.Add(commission)
	if d.shift.IsOpen() {
		d.shift.Earnings = d.shift.Earnings.Add(commission)
	}
	d.recomputeCompletionRate()
	d.touch(now)
	return nil
}

// Rate adds one customer rating in [RatingMin, RatingMax].
func (d *Driver) Rate(rating int, now time.Time) error {
	if rating < RatingMin || rating > RatingMax {
		return errs.NewValueIsOutOfRangeError("rating", rating, RatingMin, RatingMax)
	}
	d.ratingSum += rating
	d.ratingCount++
	d.touch(now)
	return nil
}

// ApplyPerformance replaces the period snapshot with one recomputed from the ledger.
func (d *Driver) ApplyPerformance(performance Performance) {
	d.performance = performance
}

func (d *Driver) recomputeCompletionRate() {
	switch {
	case d.assignedDeliveries == 0 && d.totalDeliveries == 0:
		d.completionRate = 0
	case d.assignedDeliveries == 0:
		d.completionRate = 1
	default:
		d.completionRate = math.Min(1, float64(d.totalDeliveries)/float64(d.assignedDeliveries))
	}
}

func (d *Driver) touch(now time.Time) {
	d.updatedAt = now.UTC()
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	d.name = name
	return nil
}

func (d *Driver) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return errs.NewValueIsRequiredError("phone")
	}
	d.phone = phone
	return nil
}

func (d *Driver) setPreferences(p Preferences) error {
	if p.MaxRadiusKm < 0 {
		return errs.NewValueIsOutOfRangeError("maxRadiusKm", p.MaxRadiusKm, 0, math.Inf(1))
	}
	if p.PreferredAreas == nil {
		p.PreferredAreas = []string{}
	}
	d.preferences = p
	return nil
}
