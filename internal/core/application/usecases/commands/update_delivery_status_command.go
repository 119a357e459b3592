package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDeliveryStatusCommandIsNotConstructed = errors.New(
	"UpdateDeliveryStatusCommand must be created via NewUpdateDeliveryStatusCommand constructor",
)

// UpdateDeliveryStatusCommand moves a tracking record forward, optionally with
// the driver's location at the time of the move.
type UpdateDeliveryStatusCommand struct {
	trackingID kernel.UUID
	status     tracking.Status
	location   *kernel.Location

	guard guard.ConstructorGuard
}

// NewUpdateDeliveryStatusCommand creates the command. location may be nil.
func NewUpdateDeliveryStatusCommand(
	trackingID kernel.UUID,
	status string,
	location *kernel.Location,
) (UpdateDeliveryStatusCommand, error) {
	parsed, statusErr := tracking.ParseStatus(status)

	var locationErr error
	if location != nil {
		locationErr = location.Validate()
	}

	if err := errors.Join(trackingID.Validate(), statusErr, locationErr); err != nil {
		return UpdateDeliveryStatusCommand{}, err
	}

	command := UpdateDeliveryStatusCommand{
		trackingID: trackingID,
		status:     parsed,
		guard:      guard.NewConstructorGuard(),
	}
	if location != nil {
		loc := *location
		command.location = &loc
	}
	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDeliveryStatusCommandIsNotConstructed)
}

func (c UpdateDeliveryStatusCommand) TrackingID() kernel.UUID {
	return c.trackingID
}

func (c UpdateDeliveryStatusCommand) Status() tracking.Status {
	return c.status
}

func (c UpdateDeliveryStatusCommand) Location() *kernel.Location {
	return c.location
}
