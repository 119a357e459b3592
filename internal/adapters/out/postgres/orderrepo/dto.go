// Package orderrepo reads and links orders owned by the ordering subsystem.
// Dispatch never creates or completes orders; it only reads them and records
// which driver delivers them.
package orderrepo

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the subset of the orders table that dispatch touches.
type OrderDTO struct {
	ID       uuid.UUID    `gorm:"type:uuid;primaryKey"`
	DriverID *uuid.UUID   `gorm:"type:uuid;index"`
	Address  string       `gorm:"type:varchar(512)"`
	Total    kernel.Money `gorm:"type:numeric(12,2);not null;default:0"`
	Category string       `gorm:"type:varchar(64)"`
	Status   string       `gorm:"type:varchar(32)"`
}

// TableName specifies the orders table.
func (OrderDTO) TableName() string {
	return "orders"
}

// FromDomain converts an order to its row. Used by seeders and tests that stand in
// for the ordering subsystem.
func FromDomain(o *order.Order) OrderDTO {
	var driverID *uuid.UUID
	if id := o.DriverID(); id != nil {
		raw := id.Bytes()
		driverID = &raw
	}

	return OrderDTO{
		ID:       o.ID().Bytes(),
		DriverID: driverID,
		Address:  o.Address(),
		Total:    o.Total(),
		Category: o.Category(),
		Status:   o.Status(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		dID, driverErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if driverErr != nil {
			return nil, driverErr
		}
		driverID = &dID
	}

	return order.Restore(id, dto.Address, dto.Total, dto.Category, dto.Status, driverID)
}
