package driver

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the availability of a driver for dispatch.
//
// State transitions:
//
//	Offline <──> Available <──> Busy
//
// Busy is entered only through dispatch (Occupy) and left only through a
// delivered tracking record (Release). The shift toggle never touches Busy.
type Status string

const (
	// Available drivers are online and may be dispatched.
	Available Status = "available"

	// Busy drivers are bound to exactly one live tracking record.
	Busy Status = "busy"

	// Offline drivers are outside a shift.
	Offline Status = "offline"
)

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

// Validate checks that the status is one of Available, Busy or Offline.
func (s Status) Validate() error {
	switch s {
	case Available, Busy, Offline:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a driver status", string(s)))
	}
}

func (s Status) String() string {
	return string(s)
}
