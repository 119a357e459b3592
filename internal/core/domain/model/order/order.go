package order

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through Restore.
	ErrOrderIsNotConstructed = errors.New("Order must be created via Restore constructor")
)

// Order is the subset of a laundry order that dispatch consumes.
//
// Order follows these invariants:
//   - Must have a valid unique identifier
//   - Total must not be negative
//   - Once linked to a driver it can only be re-linked to the same driver
type Order struct {
	id       kernel.UUID
	address  string
	total    kernel.Money
	category string
	status   string
	driverID *kernel.UUID

	isConstructed bool
}

// Restore rebuilds an order read from the ordering subsystem.
//
// Parameters:
//   - id: order identifier
//   - address: delivery address as entered by the customer
//   - total: order value used for commission
//   - category: service category, for example "wash-and-fold"
//   - status: the ordering subsystem's status, kept verbatim
//   - driverID: linked driver or nil
func Restore(
	id kernel.UUID,
	address string,
	total kernel.Money,
	category string,
	status string,
	driverID *kernel.UUID,
) (*Order, error) {
	o := &Order{
		address:       strings.TrimSpace(address),
		category:      category,
		status:        status,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setTotal(total),
		o.setDriver(driverID),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order was created through Restore.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID returns the order's identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Address returns the customer's delivery address.
func (o *Order) Address() string {
	return o.address
}

// Total returns the order value.
func (o *Order) Total() kernel.Money {
	return o.total
}

// Category returns the service category.
func (o *Order) Category() string {
	return o.category
}

// Status returns the ordering subsystem's status string.
func (o *Order) Status() string {
	return o.status
}

// DriverID returns the linked driver, or nil.
func (o *Order) DriverID() *kernel.UUID {
	return o.driverID
}

// IsLinkedTo reports whether the order is linked to driverID.
func (o *Order) IsLinkedTo(driverID kernel.UUID) bool {
	return o.driverID != nil && o.driverID.IsEqual(driverID)
}

// LinkDriver links the order to a driver.
//
// Returns:
//   - true when the link was added
//   - false when the order was already linked to the same driver
//   - *errs.StateConflictError when it is linked to a different driver
func (o *Order) LinkDriver(driverID kernel.UUID) (bool, error) {
	if err := driverID.Validate(); err != nil {
		return false, err
	}
	if o.driverID != nil {
		if o.driverID.IsEqual(driverID) {
			return false, nil
		}
		return false, errs.NewStateConflictError("order", "linked to "+o.driverID.String(), "linked to "+driverID.String())
	}
	o.driverID = &driverID
	return true, nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setTotal(total kernel.Money) error {
	if total.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("total", fmt.Errorf("%s is negative", total))
	}
	o.total = total
	return nil
}

func (o *Order) setDriver(driverID *kernel.UUID) error {
	if driverID == nil {
		return nil
	}
	if err := driverID.Validate(); err != nil {
		return err
	}
	id := *driverID
	o.driverID = &id
	return nil
}
