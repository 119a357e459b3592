package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDriverLocationCommandIsNotConstructed = errors.New(
	"UpdateDriverLocationCommand must be created via NewUpdateDriverLocationCommand constructor",
)

// UpdateDriverLocationCommand overwrites a driver's last known position.
// Unlike a location ping it is not debounced and does not touch tracking records.
type UpdateDriverLocationCommand struct {
	driverID kernel.UUID
	position kernel.Position

	guard guard.ConstructorGuard
}

// NewUpdateDriverLocationCommand validates the coordinates and timestamp.
func NewUpdateDriverLocationCommand(
	driverID kernel.UUID,
	lat, lng float64,
	timestamp time.Time,
) (UpdateDriverLocationCommand, error) {
	command := UpdateDriverLocationCommand{guard: guard.NewConstructorGuard()}

	location, locErr := kernel.NewLocation(lat, lng)
	if err := errors.Join(driverID.Validate(), locErr); err != nil {
		return UpdateDriverLocationCommand{}, err
	}
	position, err := kernel.NewPosition(location, timestamp)
	if err != nil {
		return UpdateDriverLocationCommand{}, err
	}
	command.driverID = driverID
	command.position = position

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateDriverLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverLocationCommandIsNotConstructed)
}

func (c UpdateDriverLocationCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c UpdateDriverLocationCommand) Position() kernel.Position {
	return c.position
}
