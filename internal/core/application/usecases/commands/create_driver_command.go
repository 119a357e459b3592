package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCreateDriverCommandIsNotConstructed = errors.New(
	"CreateDriverCommand must be created via NewCreateDriverCommand constructor",
)

// CreateDriverCommand registers a new driver in the pool.
//
// Example:
//
//	cmd, err := NewCreateDriverCommand(driver.Profile{
//	    Name:    "Ana Lima",
//	    Phone:   "+55 11 99999-0000",
//	    Vehicle: driver.Vehicle{Type: "van", Plate: "ABC-1234"},
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid driver data: %w", err)
//	}
//	snapshot, err := handler.Handle(ctx, cmd)
type CreateDriverCommand struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	profile  driver.Profile

	guard guard.ConstructorGuard
}

// NewCreateDriverCommand creates a command with a freshly generated driver ID.
// Name and phone are required.
func NewCreateDriverCommand(profile driver.Profile) (CreateDriverCommand, error) {
	command := CreateDriverCommand{
		driverID: kernel.NewUUID(),
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setName(profile.Name),
		command.setPhone(profile.Phone),
	); err != nil {
		return CreateDriverCommand{}, err
	}
	command.profile.Email = profile.Email
	command.profile.Vehicle = profile.Vehicle
	command.profile.Preferences = profile.Preferences

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateDriverCommand) Validate() error {
	return c.guard.Validate(ErrCreateDriverCommandIsNotConstructed)
}

func (c CreateDriverCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c CreateDriverCommand) Profile() driver.Profile {
	return c.profile
}

func (c *CreateDriverCommand) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	c.profile.Name = name
	return nil
}

func (c *CreateDriverCommand) setPhone(phone string) error {
	if phone == "" {
		return errs.NewValueIsRequiredError("phone")
	}
	c.profile.Phone = phone
	return nil
}
