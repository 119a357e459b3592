package tracking

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is a step of the delivery lifecycle.
//
// State transitions are strictly forward, one step at a time:
//
//	Assigned -> PickupStarted -> PickedUp -> DeliveryStarted -> Delivered
//
// Delivered is terminal.
type Status string

const (
	Assigned        Status = "assigned"
	PickupStarted   Status = "pickup_started"
	PickedUp        Status = "picked_up"
	DeliveryStarted Status = "delivery_started"
	Delivered       Status = "delivered"
)

var lifecycle = []Status{Assigned, PickupStarted, PickedUp, DeliveryStarted, Delivered}

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

// Validate checks that the status is part of the lifecycle.
func (s Status) Validate() error {
	if s.rank() < 0 {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a delivery status", string(s)))
	}
	return nil
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Delivered
}

// IsBefore reports whether s comes earlier in the lifecycle than other.
func (s Status) IsBefore(other Status) bool {
	return s.rank() < other.rank()
}

// Next returns the following status, or false for Delivered.
func (s Status) Next() (Status, bool) {
	r := s.rank()
	if r < 0 || r == len(lifecycle)-1 {
		return "", false
	}
	return lifecycle[r+1], true
}

// CheckTransition validates moving from s to target.
//
// Returns:
//   - (false, nil) when target equals s; the call is an idempotent repeat
//   - (true, nil) when target is the next status
//   - error: ValueIsInvalid for unknown targets, StateConflict for backward or skipping moves
func (s Status) CheckTransition(target Status) (bool, error) {
	if err := target.Validate(); err != nil {
		return false, err
	}
	if target == s {
		return false, nil
	}
	if next, ok := s.Next(); ok && next == target {
		return true, nil
	}
	return false, errs.NewStateConflictError("tracking", s.String(), target.String())
}

func (s Status) String() string {
	return string(s)
}

func (s Status) rank() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}
