package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAssignDriverCommandIsNotConstructed = errors.New(
	"AssignDriverCommand must be created via NewAssignDriverCommand constructor",
)

// AssignDriverCommand dispatches a caller-chosen driver to an order.
type AssignDriverCommand struct {
	orderID  kernel.UUID
	driverID kernel.UUID
	pickup   PlaceRequest
	delivery PlaceRequest

	guard guard.ConstructorGuard
}

// NewAssignDriverCommand creates the command. Each place needs an address or coordinates.
func NewAssignDriverCommand(
	orderID, driverID kernel.UUID,
	pickup, delivery PlaceRequest,
) (AssignDriverCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		driverID.Validate(),
		pickup.validate("pickup"),
		delivery.validate("delivery"),
	); err != nil {
		return AssignDriverCommand{}, err
	}

	return AssignDriverCommand{
		orderID:  orderID,
		driverID: driverID,
		pickup:   pickup,
		delivery: delivery,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignDriverCommand) Validate() error {
	return c.guard.Validate(ErrAssignDriverCommandIsNotConstructed)
}

func (c AssignDriverCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AssignDriverCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c AssignDriverCommand) Pickup() PlaceRequest {
	return c.pickup
}

func (c AssignDriverCommand) Delivery() PlaceRequest {
	return c.delivery
}
