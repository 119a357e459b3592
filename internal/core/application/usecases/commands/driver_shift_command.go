package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrStartDriverShiftCommandIsNotConstructed = errors.New(
		"StartDriverShiftCommand must be created via NewStartDriverShiftCommand constructor",
	)
	ErrEndDriverShiftCommandIsNotConstructed = errors.New(
		"EndDriverShiftCommand must be created via NewEndDriverShiftCommand constructor",
	)
)

// StartDriverShiftCommand brings a driver online.
type StartDriverShiftCommand struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewStartDriverShiftCommand creates the command.
func NewStartDriverShiftCommand(driverID kernel.UUID) (StartDriverShiftCommand, error) {
	if err := driverID.Validate(); err != nil {
		return StartDriverShiftCommand{}, err
	}
	return StartDriverShiftCommand{driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c StartDriverShiftCommand) Validate() error {
	return c.guard.Validate(ErrStartDriverShiftCommandIsNotConstructed)
}

func (c StartDriverShiftCommand) DriverID() kernel.UUID {
	return c.driverID
}

// EndDriverShiftCommand takes a driver offline and books the finished shift.
type EndDriverShiftCommand struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewEndDriverShiftCommand creates the command.
func NewEndDriverShiftCommand(driverID kernel.UUID) (EndDriverShiftCommand, error) {
	if err := driverID.Validate(); err != nil {
		return EndDriverShiftCommand{}, err
	}
	return EndDriverShiftCommand{driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c EndDriverShiftCommand) Validate() error {
	return c.guard.Validate(ErrEndDriverShiftCommandIsNotConstructed)
}

func (c EndDriverShiftCommand) DriverID() kernel.UUID {
	return c.driverID
}
