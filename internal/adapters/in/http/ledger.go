package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// EarningsCredit is the manual earnings request body.
type EarningsCredit struct {
	OrderValue      kernel.Money `json:"orderValue"`
	DeliveryMinutes float64      `json:"deliveryTime"`
	TrackingID      string       `json:"trackingId"`
}

// RefreshResult reports how many drivers had their performance recomputed.
type RefreshResult struct {
	Refreshed int `json:"refreshed"`
}

// StartDriverShift handles POST /api/v1/drivers/:id/shifts.
func (s *Server) StartDriverShift(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewStartDriverShiftCommand(id)
	if err != nil {
		return err
	}

	snapshot, err := s.handlers.StartDriverShift.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// EndDriverShift handles POST /api/v1/drivers/:id/shifts/current/end.
func (s *Server) EndDriverShift(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewEndDriverShiftCommand(id)
	if err != nil {
		return err
	}

	snapshot, err := s.handlers.EndDriverShift.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// GetDriverShifts handles GET /api/v1/drivers/:id/shifts.
func (s *Server) GetDriverShifts(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetDriverShiftsQuery(id)
	if err != nil {
		return err
	}

	shifts, err := s.handlers.GetDriverShifts.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, shifts)
}

// GetDriverEarnings handles GET /api/v1/drivers/:id/earnings?period=today|week|month|all.
func (s *Server) GetDriverEarnings(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetDriverEarningsQuery(id, c.QueryParam("period"))
	if err != nil {
		return err
	}

	report, err := s.handlers.GetDriverEarnings.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// UpdateDriverEarnings handles POST /api/v1/drivers/:id/earnings.
func (s *Server) UpdateDriverEarnings(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body EarningsCredit
	if err = c.Bind(&body); err != nil {
		return badRequest(err)
	}

	var trackingID *kernel.UUID
	if body.TrackingID != "" {
		tid, parseErr := kernel.UUIDFromString(body.TrackingID)
		if parseErr != nil {
			return badRequest(parseErr)
		}
		trackingID = &tid
	}

	cmd, err := commands.NewUpdateDriverEarningsCommand(id, body.OrderValue, body.DeliveryMinutes, trackingID)
	if err != nil {
		return err
	}
	snapshot, err := s.handlers.UpdateDriverEarnings.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// RefreshPerformance handles POST /api/v1/performance/refresh.
func (s *Server) RefreshPerformance(c echo.Context) error {
	refreshed, err := s.handlers.RefreshPerformance.Handle(c.Request().Context(), commands.NewRefreshPerformanceCommand())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, RefreshResult{Refreshed: refreshed})
}
