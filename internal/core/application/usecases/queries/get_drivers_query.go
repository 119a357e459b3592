package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetAllDriversQueryIsNotConstructed = errors.New(
		"GetAllDriversQuery must be created via NewGetAllDriversQuery constructor",
	)
	ErrGetAvailableDriversQueryIsNotConstructed = errors.New(
		"GetAvailableDriversQuery must be created via NewGetAvailableDriversQuery constructor",
	)
	ErrGetDriverByIDQueryIsNotConstructed = errors.New(
		"GetDriverByIDQuery must be created via NewGetDriverByIDQuery constructor",
	)
)

// GetAllDriversQuery lists the whole driver pool ordered by name.
type GetAllDriversQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAllDriversQuery creates the query.
func NewGetAllDriversQuery() GetAllDriversQuery {
	return GetAllDriversQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetAllDriversQuery) Validate() error {
	return q.guard.Validate(ErrGetAllDriversQueryIsNotConstructed)
}

// GetAvailableDriversQuery lists the drivers that can take a new order.
//
// Example:
//
//	query := NewGetAvailableDriversQuery()
//	drivers, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list available drivers: %w", err)
//	}
//	for _, d := range drivers {
//	    fmt.Printf("%s (%s) rating %.1f\n", d.Name, d.Vehicle.Type, d.Rating)
//	}
type GetAvailableDriversQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAvailableDriversQuery creates the query.
func NewGetAvailableDriversQuery() GetAvailableDriversQuery {
	return GetAvailableDriversQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetAvailableDriversQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableDriversQueryIsNotConstructed)
}

// GetDriverByIDQuery fetches one driver.
type GetDriverByIDQuery struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetDriverByIDQuery creates the query.
func NewGetDriverByIDQuery(driverID kernel.UUID) (GetDriverByIDQuery, error) {
	if err := driverID.Validate(); err != nil {
		return GetDriverByIDQuery{}, err
	}
	return GetDriverByIDQuery{driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDriverByIDQuery) Validate() error {
	return q.guard.Validate(ErrGetDriverByIDQueryIsNotConstructed)
}

func (q GetDriverByIDQuery) DriverID() kernel.UUID {
	return q.driverID
}
