package services

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/errs"
)

// Assignment is the outcome of a dispatch.
type Assignment struct {
	// Tracking is the live tracking record binding the order to the driver.
	Tracking *tracking.DeliveryTracking

	// Created is true when Tracking was opened by this dispatch and false when an
	// earlier dispatch of the same order and driver is being re-driven.
	Created bool

	// DriverChanged is true when the driver aggregate was modified and must be saved.
	DriverChanged bool
}

// DeliveryDispatcher is a domain service that binds a caller-chosen driver to an
// order. There is no automatic matching: the driver is always supplied.
//
// Business rules:
//   - Only an Available driver can be dispatched to a new order
//   - An order has at most one live tracking record
//   - A delivered order is never dispatched again
//   - An order linked to one driver cannot be dispatched to another
//   - Dispatching the same order to the same driver again re-drives the
//     earlier assignment instead of failing
//
// Example usage:
//
//	dispatcher := services.NewDeliveryDispatcher()
//	assignment, err := dispatcher.Dispatch(o, d, latest, pickup, delivery, kernel.NewUUID(), now)
//	if errors.Is(err, errs.ErrStateConflict) {
//	    // driver busy or offline, order bound elsewhere or already delivered
//	}
type DeliveryDispatcher struct{}

// NewDeliveryDispatcher creates a DeliveryDispatcher.
func NewDeliveryDispatcher() DeliveryDispatcher {
	return DeliveryDispatcher{}
}

// Dispatch binds d to o.
//
// Parameters:
//   - o: the order to deliver
//   - d: the chosen driver
//   - latest: the order's most recent tracking record, or nil if it was never dispatched
//   - pickup, delivery: resolved places for a new tracking record
//   - trackingID: identifier to use when a new record is opened
//   - now: dispatch time
//
// Returns:
//   - Assignment: the live tracking record and what changed
//   - error: *errs.StateConflictError when the driver is not available, the
//     order already belongs to another driver or was already delivered,
//     validation errors otherwise
func (DeliveryDispatcher) Dispatch(
	o *order.Order,
	d *driver.Driver,
	latest *tracking.DeliveryTracking,
	pickup, delivery kernel.Place,
	trackingID kernel.UUID,
	now time.Time,
) (Assignment, error) {
	if err := errors.Join(o.Validate(), d.Validate()); err != nil {
		return Assignment{}, err
	}

	if o.DriverID() != nil && !o.IsLinkedTo(d.ID()) {
		return Assignment{}, errs.NewStateConflictError(
			"order", "linked to "+o.DriverID().String(), "linked to "+d.ID().String())
	}

	if latest != nil {
		if !latest.IsLive() {
			return Assignment{}, errs.NewStateConflictError(
				"order", "delivered by "+latest.DriverID().String(), "assigned to "+d.ID().String())
		}
		return redrive(latest, d, now)
	}

	if err := d.Occupy(now); err != nil {
		return Assignment{}, err
	}

	tr, err := tracking.New(trackingID, o.ID(), d.ID(), pickup, delivery, now)
	if err != nil {
		return Assignment{}, err
	}

	return Assignment{Tracking: tr, Created: true, DriverChanged: true}, nil
}

// redrive completes an earlier assignment of the same order to the same driver.
func redrive(live *tracking.DeliveryTracking, d *driver.Driver, now time.Time) (Assignment, error) {
	if err := live.Validate(); err != nil {
		return Assignment{}, err
	}
	if !live.DriverID().IsEqual(d.ID()) {
		return Assignment{}, errs.NewStateConflictError(
			"order", "assigned to "+live.DriverID().String(), "assigned to "+d.ID().String())
	}

	if d.Status() == driver.Busy {
		return Assignment{Tracking: live}, nil
	}
	if err := d.SetStatus(driver.Busy, now); err != nil {
		return Assignment{}, err
	}
	return Assignment{Tracking: live, DriverChanged: true}, nil
}
