package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetDriverShiftsQueryIsNotConstructed = errors.New(
	"GetDriverShiftsQuery must be created via NewGetDriverShiftsQuery constructor",
)

// GetDriverShiftsQuery lists a driver's completed shifts.
type GetDriverShiftsQuery struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetDriverShiftsQuery creates the query.
func NewGetDriverShiftsQuery(driverID kernel.UUID) (GetDriverShiftsQuery, error) {
	if err := driverID.Validate(); err != nil {
		return GetDriverShiftsQuery{}, err
	}
	return GetDriverShiftsQuery{driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDriverShiftsQuery) Validate() error {
	return q.guard.Validate(ErrGetDriverShiftsQueryIsNotConstructed)
}

func (q GetDriverShiftsQuery) DriverID() kernel.UUID {
	return q.driverID
}
