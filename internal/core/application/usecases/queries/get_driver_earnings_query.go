package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/earnings"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetDriverEarningsQueryIsNotConstructed = errors.New(
	"GetDriverEarningsQuery must be created via NewGetDriverEarningsQuery constructor",
)

// GetDriverEarningsQuery reads a driver's ledger for one period.
type GetDriverEarningsQuery struct {
	driverID kernel.UUID
	period   earnings.Period

	guard guard.ConstructorGuard
}

// NewGetDriverEarningsQuery creates the query. An empty period means "all".
func NewGetDriverEarningsQuery(driverID kernel.UUID, period string) (GetDriverEarningsQuery, error) {
	if period == "" {
		period = string(earnings.All)
	}
	p, err := earnings.ParsePeriod(period)
	if err = errors.Join(driverID.Validate(), err); err != nil {
		return GetDriverEarningsQuery{}, err
	}

	return GetDriverEarningsQuery{
		driverID: driverID,
		period:   p,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDriverEarningsQuery) Validate() error {
	return q.guard.Validate(ErrGetDriverEarningsQueryIsNotConstructed)
}

func (q GetDriverEarningsQuery) DriverID() kernel.UUID {
	return q.driverID
}

func (q GetDriverEarningsQuery) Period() earnings.Period {
	return q.period
}
