package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDriverStatusCommandIsNotConstructed = errors.New(
	"UpdateDriverStatusCommand must be created via NewUpdateDriverStatusCommand constructor",
)

// UpdateDriverStatusCommand overwrites a driver's status field.
type UpdateDriverStatusCommand struct {
	driverID kernel.UUID
	status   driver.Status

	guard guard.ConstructorGuard
}

// NewUpdateDriverStatusCommand parses status and rejects values outside
// available, busy and offline.
func NewUpdateDriverStatusCommand(driverID kernel.UUID, status string) (UpdateDriverStatusCommand, error) {
	command := UpdateDriverStatusCommand{guard: guard.NewConstructorGuard()}

	parsed, statusErr := driver.ParseStatus(status)
	if err := errors.Join(driverID.Validate(), statusErr); err != nil {
		return UpdateDriverStatusCommand{}, err
	}
	command.driverID = driverID
	command.status = parsed

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateDriverStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverStatusCommandIsNotConstructed)
}

func (c UpdateDriverStatusCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c UpdateDriverStatusCommand) Status() driver.Status {
	return c.status
}
