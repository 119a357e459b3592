// Package shift contains the shift ledger: one immutable entry per completed
// driver shift.
package shift

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrShiftIsNotConstructed is returned when a Shift was not created through New.
	ErrShiftIsNotConstructed = errors.New("Shift must be created via New")
)

// Shift is a finished period during which a driver was online.
type Shift struct {
	id         kernel.UUID
	driverID   kernel.UUID
	startTime  time.Time
	endTime    time.Time
	totalHours float64
	earnings   kernel.Money

	isConstructed bool
}

// New creates a shift ledger entry. End must not be before start.
func New(
	id, driverID kernel.UUID,
	startTime, endTime time.Time,
	totalHours float64,
	earnings kernel.Money,
) (*Shift, error) {
	var rangeErr error
	if endTime.Before(startTime) {
		rangeErr = errs.NewValueIsInvalidError("endTime")
	}
	if totalHours < 0 {
		rangeErr = errors.Join(rangeErr, errs.NewValueIsOutOfRangeError("totalHours", totalHours, 0, "+Inf"))
	}
	if err := errors.Join(id.Validate(), driverID.Validate(), rangeErr); err != nil {
		return nil, err
	}

	return &Shift{
		id:            id,
		driverID:      driverID,
		startTime:     startTime.UTC(),
		endTime:       endTime.UTC(),
		totalHours:    totalHours,
		earnings:      earnings,
		isConstructed: true,
	}, nil
}

// Validate ensures the Shift was created through New.
func (s *Shift) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrShiftIsNotConstructed
	}
	return nil
}

func (s *Shift) ID() kernel.UUID {
	return s.id
}

func (s *Shift) DriverID() kernel.UUID {
	return s.driverID
}

func (s *Shift) StartTime() time.Time {
	return s.startTime
}

func (s *Shift) EndTime() time.Time {
	return s.endTime
}

// TotalHours returns the fractional hours between start and end.
func (s *Shift) TotalHours() float64 {
	return s.totalHours
}

// Earnings returns the commissions credited during the shift.
func (s *Shift) Earnings() kernel.Money {
	return s.earnings
}
