package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRecordLocationPingCommandIsNotConstructed = errors.New(
	"RecordLocationPingCommand must be created via NewRecordLocationPingCommand constructor",
)

// RecordLocationPingCommand is one GPS fix reported by a driver's device.
type RecordLocationPingCommand struct {
	driverID kernel.UUID
	position kernel.Position

	guard guard.ConstructorGuard
}

// NewRecordLocationPingCommand validates the fix.
func NewRecordLocationPingCommand(
	driverID kernel.UUID,
	lat, lng float64,
	timestamp time.Time,
) (RecordLocationPingCommand, error) {
	location, locErr := kernel.NewLocation(lat, lng)
	if err := errors.Join(driverID.Validate(), locErr); err != nil {
		return RecordLocationPingCommand{}, err
	}
	position, err := kernel.NewPosition(location, timestamp)
	if err != nil {
		return RecordLocationPingCommand{}, err
	}

	return RecordLocationPingCommand{
		driverID: driverID,
		position: position,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordLocationPingCommand) Validate() error {
	return c.guard.Validate(ErrRecordLocationPingCommandIsNotConstructed)
}

func (c RecordLocationPingCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c RecordLocationPingCommand) Position() kernel.Position {
	return c.position
}
