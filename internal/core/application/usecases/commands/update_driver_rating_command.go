package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDriverRatingCommandIsNotConstructed = errors.New(
	"UpdateDriverRatingCommand must be created via NewUpdateDriverRatingCommand constructor",
)

// UpdateDriverRatingCommand adds one customer rating to a driver.
type UpdateDriverRatingCommand struct {
	driverID kernel.UUID
	rating   int

	guard guard.ConstructorGuard
}

// NewUpdateDriverRatingCommand accepts ratings from 1 to 5.
func NewUpdateDriverRatingCommand(driverID kernel.UUID, rating int) (UpdateDriverRatingCommand, error) {
	var ratingErr error
	if rating < driver.RatingMin || rating > driver.RatingMax {
		ratingErr = errs.NewValueIsOutOfRangeError("rating", rating, driver.RatingMin, driver.RatingMax)
	}
	if err := errors.Join(driverID.Validate(), ratingErr); err != nil {
		return UpdateDriverRatingCommand{}, err
	}

	return UpdateDriverRatingCommand{
		driverID: driverID,
		rating:   rating,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateDriverRatingCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverRatingCommandIsNotConstructed)
}

func (c UpdateDriverRatingCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c UpdateDriverRatingCommand) Rating() int {
	return c.rating
}
