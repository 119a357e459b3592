package http

import (
	"net/http"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/domain/services"

	"github.com/labstack/echo/v4"
)

// NewDriver is the registration request body.
type NewDriver struct {
	Name        string              `json:"name"`
	Phone       string              `json:"phone"`
	Email       string              `json:"email"`
	Vehicle     driver.Vehicle      `json:"vehicle"`
	Preferences *driver.Preferences `json:"preferences"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// LocationFix is a reported position. A zero timestamp means now.
type LocationFix struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

// PingResponse reports the outcome of a location ping.
type PingResponse struct {
	Accepted bool               `json:"accepted"`
	Tracking *tracking.Snapshot `json:"tracking,omitempty"`
	ETA      *services.ETA      `json:"eta,omitempty"`
}

// GetDrivers handles GET /api/v1/drivers. ?available=true lists only drivers
// that can take a delivery.
func (s *Server) GetDrivers(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("available") == "true" {
		drivers, err := s.handlers.GetDrivers.HandleAvailable(ctx, queries.NewGetAvailableDriversQuery())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, drivers)
	}

	drivers, err := s.handlers.GetDrivers.HandleAll(ctx, queries.NewGetAllDriversQuery())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, drivers)
}

// GetDriver handles GET /api/v1/drivers/:id.
func (s *Server) GetDriver(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetDriverByIDQuery(id)
	if err != nil {
		return err
	}

	snapshot, err := s.handlers.GetDrivers.HandleByID(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// CreateDriver handles POST /api/v1/drivers.
func (s *Server) CreateDriver(c echo.Context) error {
	var body NewDriver
	if err := c.Bind(&body); err != nil {
		return badRequest(err)
	}

	preferences := driver.DefaultPreferences()
	profile := driver.Profile{
		Name:        body.Name,
		Phone:       body.Phone,
		Email:       body.Email,
		Vehicle:     body.Vehicle,
		Preferences: &preferences,
	}
	if body.Preferences != nil {
		profile.Preferences = body.Preferences
	}

	cmd, err := commands.NewCreateDriverCommand(profile)
	if err != nil {
		return err
	}
	snapshot, err := s.handlers.CreateDriver.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, snapshot)
}

// DeleteDriver handles DELETE /api/v1/drivers/:id.
func (s *Server) DeleteDriver(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewDeleteDriverCommand(id)
	if err != nil {
		return err
	}

	if err = s.handlers.DeleteDriver.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateDriverStatus handles PATCH /api/v1/drivers/:id/status.
func (s *Server) UpdateDriverStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body statusRequest
	if err = c.Bind(&body); err != nil {
		return badRequest(err)
	}

	cmd, err := commands.NewUpdateDriverStatusCommand(id, body.Status)
	if err != nil {
		return err
	}
	snapshot, err := s.handlers.UpdateDriverStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// UpdateDriverLocation handles PUT /api/v1/drivers/:id/location. It replaces the
// driver's position without running the delivery pipeline.
func (s *Server) UpdateDriverLocation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	fix, err := s.bindFix(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateDriverLocationCommand(id, fix.Lat, fix.Lng, fix.Timestamp)
	if err != nil {
		return err
	}
	snapshot, err := s.handlers.UpdateDriverLocation.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// RecordLocationPing handles POST /api/v1/drivers/:id/pings.
func (s *Server) RecordLocationPing(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	fix, err := s.bindFix(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRecordLocationPingCommand(id, fix.Lat, fix.Lng, fix.Timestamp)
	if err != nil {
		return err
	}
	result, err := s.handlers.RecordLocationPing.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, PingResponse{
		Accepted: result.Accepted,
		Tracking: result.Tracking,
		ETA:      result.ETA,
	})
}

// UpdateDriverRating handles POST /api/v1/drivers/:id/rating.
func (s *Server) UpdateDriverRating(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body ratingRequest
	if err = c.Bind(&body); err != nil {
		return badRequest(err)
	}

	cmd, err := commands.NewUpdateDriverRatingCommand(id, body.Rating)
	if err != nil {
		return err
	}
	snapshot, err := s.handlers.UpdateDriverRating.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (s *Server) bindFix(c echo.Context) (LocationFix, error) {
	var fix LocationFix
	if err := c.Bind(&fix); err != nil {
		return LocationFix{}, badRequest(err)
	}
	if fix.Timestamp.IsZero() {
		fix.Timestamp = s.clock.Now()
	}
	return fix, nil
}
