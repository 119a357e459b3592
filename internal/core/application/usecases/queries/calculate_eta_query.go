package queries

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/guard"
)

var ErrCalculateETAQueryIsNotConstructed = errors.New(
	"CalculateETAQuery must be created via NewCalculateETAQuery constructor",
)

// CalculateETAQuery estimates travel between two points.
type CalculateETAQuery struct {
	from kernel.Location
	to   kernel.Location

	guard guard.ConstructorGuard
}

// NewCalculateETAQuery creates the query from raw coordinates.
func NewCalculateETAQuery(fromLat, fromLng, toLat, toLng float64) (CalculateETAQuery, error) {
	from, fromErr := kernel.NewLocation(fromLat, fromLng)
	to, toErr := kernel.NewLocation(toLat, toLng)
	if err := errors.Join(fromErr, toErr); err != nil {
		return CalculateETAQuery{}, err
	}
	return CalculateETAQuery{from: from, to: to, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q CalculateETAQuery) Validate() error {
	return q.guard.Validate(ErrCalculateETAQueryIsNotConstructed)
}

func (q CalculateETAQuery) From() kernel.Location {
	return q.from
}

func (q CalculateETAQuery) To() kernel.Location {
	return q.to
}

// CalculateETAQueryHandler runs the ETA heuristic. It touches no storage.
type CalculateETAQueryHandler struct {
	calculator services.ETACalculator
	metrics    ports.Metrics
}

// NewCalculateETAQueryHandler creates the handler. metrics may be nil.
func NewCalculateETAQueryHandler(calculator services.ETACalculator, metrics ports.Metrics) CalculateETAQueryHandler {
	return CalculateETAQueryHandler{calculator: calculator, metrics: metrics}
}

// Handle returns the estimate.
func (h CalculateETAQueryHandler) Handle(_ context.Context, query CalculateETAQuery) (services.ETA, error) {
	if err := query.Validate(); err != nil {
		return services.ETA{}, err
	}
	eta := h.calculator.Calculate(query.From(), query.To())
	if h.metrics != nil {
		h.metrics.ETACalculated(eta.Minutes)
	}
	return eta, nil
}
