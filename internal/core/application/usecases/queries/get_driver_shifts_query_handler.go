package queries

import (
	"context"
	"time"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShiftEntry is the read model of one completed shift.
type ShiftEntry struct {
	ID         kernel.UUID  `json:"id"`
	StartTime  time.Time    `json:"startTime"`
	EndTime    time.Time    `json:"endTime"`
	TotalHours float64      `json:"totalHours"`
	Earnings   kernel.Money `json:"earnings"`
}

// GetDriverShiftsQueryHandler reads the shift ledger with plain SQL.
//
// Example:
//
//	handler := NewGetDriverShiftsQueryHandler(db, authorizer)
//	query, _ := NewGetDriverShiftsQuery(driverID)
//
//	shifts, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	for _, s := range shifts {
//	    fmt.Printf("%s: %.2f h, %s\n", s.StartTime.Format(time.DateOnly), s.TotalHours, s.Earnings)
//	}
type GetDriverShiftsQueryHandler struct {
	db         *gorm.DB
	authorizer ports.Authorizer
}

// NewGetDriverShiftsQueryHandler creates the handler.
func NewGetDriverShiftsQueryHandler(db *gorm.DB, authorizer ports.Authorizer) GetDriverShiftsQueryHandler {
	return GetDriverShiftsQueryHandler{db: db, authorizer: authorizer}
}

// Handle returns the driver's shifts, newest first. An unknown driver is an
// ObjectNotFound error.
func (h GetDriverShiftsQueryHandler) Handle(ctx context.Context, query GetDriverShiftsQuery) ([]ShiftEntry, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceShifts, ports.ActionRead,
		query.DriverID().String()); err != nil {
		return nil, err
	}

	driverID := query.DriverID().Bytes()

	var drivers int64
	if err := h.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM drivers WHERE id = ?`, driverID).
		Scan(&drivers).Error; err != nil {
		return nil, err
	}
	if drivers == 0 {
		return nil, errs.NewObjectNotFoundError("driver", query.DriverID().String())
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			start_time,
			end_time,
			total_hours,
			earnings
		FROM driver_shifts
		WHERE driver_id = ?
		ORDER BY start_time DESC
	`, driverID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]ShiftEntry, 0)
	for rows.Next() {
		var entry ShiftEntry
		var id uuid.UUID

		err = rows.Scan(
			&id,
			&entry.StartTime,
			&entry.EndTime,
			&entry.TotalHours,
			&entry.Earnings,
		)
		if err != nil {
			return nil, err
		}

		shiftID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		entry.ID = shiftID
		entry.StartTime = entry.StartTime.UTC()
		entry.EndTime = entry.EndTime.UTC()
		shifts = append(shifts, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}
