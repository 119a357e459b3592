package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// PlaceRequest is a pickup or delivery point as supplied by the caller: an address,
// coordinates, or both. Coordinates win over the address.
type PlaceRequest struct {
	Address  string
	Location *kernel.Location
}

func (r PlaceRequest) validate(param string) error {
	if r.Location == nil && r.Address == "" {
		return errs.NewValueIsRequiredError(param)
	}
	if r.Location != nil {
		return r.Location.Validate()
	}
	return nil
}

// PlaceResolver turns a PlaceRequest into a Place. Geocoding failures never fail
// the caller: the configured city centroid is used instead.
type PlaceResolver struct {
	geocoder ports.Geocoder
	centroid kernel.Location
	logger   *slog.Logger
}

// NewPlaceResolver creates a resolver. geocoder may be nil, in which case every
// address-only request resolves to centroid.
func NewPlaceResolver(geocoder ports.Geocoder, centroid kernel.Location, logger *slog.Logger) PlaceResolver {
	return PlaceResolver{geocoder: geocoder, centroid: centroid, logger: componentLogger(logger, "place-resolver")}
}

// Resolve returns the place for req.
func (r PlaceResolver) Resolve(ctx context.Context, req PlaceRequest) (kernel.Place, error) {
	if req.Location != nil {
		return kernel.NewPlace(req.Address, *req.Location)
	}

	if r.geocoder == nil {
		return kernel.NewPlace(req.Address, r.centroid)
	}

	loc, err := r.geocoder.Geocode(ctx, req.Address)
	if err != nil {
		r.logger.WarnContext(ctx, "geocoding failed, using city centroid",
			"address", req.Address, "centroid", r.centroid.String(), "error", err)
		return kernel.NewPlace(req.Address, r.centroid)
	}
	return kernel.NewPlace(req.Address, loc)
}
