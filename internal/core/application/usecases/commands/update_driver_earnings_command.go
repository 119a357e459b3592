package commands

import (
	"errors"
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDriverEarningsCommandIsNotConstructed = errors.New(
	"UpdateDriverEarningsCommand must be created via NewUpdateDriverEarningsCommand constructor",
)

// UpdateDriverEarningsCommand credits one completed delivery to a driver.
type UpdateDriverEarningsCommand struct { //nolint:recvcheck //using for validation
	driverID        kernel.UUID
	orderValue      kernel.Money
	deliveryMinutes float64
	trackingID      *kernel.UUID

	guard guard.ConstructorGuard
}

// NewUpdateDriverEarningsCommand creates the command. trackingID is optional; when
// present it makes the credit idempotent.
func NewUpdateDriverEarningsCommand(
	driverID kernel.UUID,
	orderValue kernel.Money,
	deliveryMinutes float64,
	trackingID *kernel.UUID,
) (UpdateDriverEarningsCommand, error) {
	command := UpdateDriverEarningsCommand{guard: guard.NewConstructorGuard()}

	var trackingErr error
	if trackingID != nil {
		trackingErr = trackingID.Validate()
		tid := *trackingID
		command.trackingID = &tid
	}

	if err := errors.Join(
		driverID.Validate(),
		trackingErr,
		command.setOrderValue(orderValue),
		command.setDeliveryMinutes(deliveryMinutes),
	); err != nil {
		return UpdateDriverEarningsCommand{}, err
	}
	command.driverID = driverID

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateDriverEarningsCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverEarningsCommandIsNotConstructed)
}

func (c UpdateDriverEarningsCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c UpdateDriverEarningsCommand) OrderValue() kernel.Money {
	return c.orderValue
}

func (c UpdateDriverEarningsCommand) DeliveryMinutes() float64 {
	return c.deliveryMinutes
}

func (c UpdateDriverEarningsCommand) TrackingID() *kernel.UUID {
	return c.trackingID
}

func (c *UpdateDriverEarningsCommand) setOrderValue(v kernel.Money) error {
	if v.IsNegative() {
		return errs.NewValueIsOutOfRangeError("orderValue", v.String(), "0", "+Inf")
	}
	c.orderValue = v
	return nil
}

func (c *UpdateDriverEarningsCommand) setDeliveryMinutes(minutes float64) error {
	if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return errs.NewValueIsOutOfRangeError("deliveryTime", minutes, 0, "+Inf")
	}
	c.deliveryMinutes = minutes
	return nil
}
