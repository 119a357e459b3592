package queries

import (
	"context"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
)

// GetDeliveryTrackingQueryHandler returns the most recent tracking record of
// an order, live or delivered.
type GetDeliveryTrackingQueryHandler struct {
	store      ReadStore
	authorizer ports.Authorizer
}

// NewGetDeliveryTrackingQueryHandler creates the handler.
func NewGetDeliveryTrackingQueryHandler(store ReadStore, authorizer ports.Authorizer) GetDeliveryTrackingQueryHandler {
	return GetDeliveryTrackingQueryHandler{store: store, authorizer: authorizer}
}

// Handle returns the snapshot. An order that was never dispatched is an
// ObjectNotFound error.
func (h GetDeliveryTrackingQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryTrackingQuery,
) (tracking.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return tracking.Snapshot{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceTracking, ports.ActionRead, ""); err != nil {
		return tracking.Snapshot{}, err
	}

	tr, err := h.store.TrackingRepository().GetLatestByOrder(ctx, query.OrderID())
	if err != nil {
		return tracking.Snapshot{}, err
	}
	return tr.Snapshot(), nil
}
