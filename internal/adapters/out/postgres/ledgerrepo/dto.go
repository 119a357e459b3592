// Package ledgerrepo persists the append-only earnings and shift ledgers.
// Rows are inserted once and never updated or deleted.
package ledgerrepo

import (
	"time"

	"dispatch/internal/core/domain/model/earnings"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/shift"

	"github.com/google/uuid"
)

// EarningsDTO is one ledger entry. TrackingID is unique when present so that a
// delivery is credited at most once.
type EarningsDTO struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey"`
	DriverID        uuid.UUID    `gorm:"type:uuid;not null;index:idx_earnings_driver_ts,priority:1"`
	TrackingID      *uuid.UUID   `gorm:"type:uuid;uniqueIndex"`
	Commission      kernel.Money `gorm:"type:numeric(12,2);not null"`
	OrderValue      kernel.Money `gorm:"type:numeric(12,2);not null"`
	DeliveryMinutes float64      `gorm:"not null"`
	Timestamp       time.Time    `gorm:"column:recorded_at;not null;index:idx_earnings_driver_ts,priority:2"`
}

// TableName overrides GORM's default "earnings_dtos".
func (EarningsDTO) TableName() string {
	return "driver_earnings"
}

// ShiftDTO is one completed shift.
type ShiftDTO struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey"`
	DriverID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	StartTime  time.Time    `gorm:"not null"`
	EndTime    time.Time    `gorm:"not null"`
	TotalHours float64      `gorm:"not null"`
	Earnings   kernel.Money `gorm:"type:numeric(12,2);not null"`
}

// TableName overrides GORM's default "shift_dtos".
func (ShiftDTO) TableName() string {
	return "driver_shifts"
}

func earningsFromDomain(r *earnings.Record) EarningsDTO {
	dto := EarningsDTO{
		ID:              r.ID().Bytes(),
		DriverID:        r.DriverID().Bytes(),
		Commission:      r.Commission(),
		OrderValue:      r.OrderValue(),
		DeliveryMinutes: r.DeliveryMinutes(),
		Timestamp:       r.Timestamp(),
	}
	if tid := r.TrackingID(); tid != nil {
		raw := tid.Bytes()
		dto.TrackingID = &raw
	}
	return dto
}

func earningsToDomain(dto EarningsDTO) (*earnings.Record, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}

	var trackingID *kernel.UUID
	if dto.TrackingID != nil {
		tid, tidErr := kernel.UUIDFromBytes(dto.TrackingID[:])
		if tidErr != nil {
			return nil, tidErr
		}
		trackingID = &tid
	}

	return earnings.RestoreRecord(id, driverID, trackingID,
		dto.Commission, dto.OrderValue, dto.DeliveryMinutes, dto.Timestamp.UTC())
}

func shiftFromDomain(s *shift.Shift) ShiftDTO {
	return ShiftDTO{
		ID:         s.ID().Bytes(),
		DriverID:   s.DriverID().Bytes(),
		StartTime:  s.StartTime(),
		EndTime:    s.EndTime(),
		TotalHours: s.TotalHours(),
		Earnings:   s.Earnings(),
	}
}

func shiftToDomain(dto ShiftDTO) (*shift.Shift, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}

	return shift.New(id, driverID, dto.StartTime.UTC(), dto.EndTime.UTC(), dto.TotalHours, dto.Earnings)
}
