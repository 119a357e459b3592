package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetDeliveryTrackingQueryIsNotConstructed = errors.New(
		"GetDeliveryTrackingQuery must be created via NewGetDeliveryTrackingQuery constructor",
	)
	ErrSubscribeToDeliveryTrackingQueryIsNotConstructed = errors.New(
		"SubscribeToDeliveryTrackingQuery must be created via NewSubscribeToDeliveryTrackingQuery constructor",
	)
	ErrSubscribeToDriverQueryIsNotConstructed = errors.New(
		"SubscribeToDriverQuery must be created via NewSubscribeToDriverQuery constructor",
	)
)

// GetDeliveryTrackingQuery reads the latest tracking record of an order.
type GetDeliveryTrackingQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetDeliveryTrackingQuery creates the query.
func NewGetDeliveryTrackingQuery(orderID kernel.UUID) (GetDeliveryTrackingQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetDeliveryTrackingQuery{}, err
	}
	return GetDeliveryTrackingQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDeliveryTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryTrackingQueryIsNotConstructed)
}

func (q GetDeliveryTrackingQuery) OrderID() kernel.UUID {
	return q.orderID
}

// SubscribeToDeliveryTrackingQuery attaches an observer to an order's tracking.
type SubscribeToDeliveryTrackingQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewSubscribeToDeliveryTrackingQuery creates the query.
func NewSubscribeToDeliveryTrackingQuery(orderID kernel.UUID) (SubscribeToDeliveryTrackingQuery, error) {
	if err := orderID.Validate(); err != nil {
		return SubscribeToDeliveryTrackingQuery{}, err
	}
	return SubscribeToDeliveryTrackingQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q SubscribeToDeliveryTrackingQuery) Validate() error {
	return q.guard.Validate(ErrSubscribeToDeliveryTrackingQueryIsNotConstructed)
}

func (q SubscribeToDeliveryTrackingQuery) OrderID() kernel.UUID {
	return q.orderID
}

// SubscribeToDriverQuery attaches an observer to one driver's snapshots.
type SubscribeToDriverQuery struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewSubscribeToDriverQuery creates the query.
func NewSubscribeToDriverQuery(driverID kernel.UUID) (SubscribeToDriverQuery, error) {
	if err := driverID.Validate(); err != nil {
		return SubscribeToDriverQuery{}, err
	}
	return SubscribeToDriverQuery{driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q SubscribeToDriverQuery) Validate() error {
	return q.guard.Validate(ErrSubscribeToDriverQueryIsNotConstructed)
}

func (q SubscribeToDriverQuery) DriverID() kernel.UUID {
	return q.driverID
}
