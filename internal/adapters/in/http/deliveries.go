package http

import (
	"errors"
	"net/http"
	"strconv"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// PlaceInput is a pickup or delivery point. Lat and Lng win over the address
// when both are given.
type PlaceInput struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

func (p PlaceInput) request(param string) (commands.PlaceRequest, error) {
	req := commands.PlaceRequest{Address: p.Address}
	if p.Lat == nil && p.Lng == nil {
		return req, nil
	}
	if p.Lat == nil || p.Lng == nil {
		return commands.PlaceRequest{}, errs.NewValueIsRequiredError(param + ".lat/lng")
	}

	location, err := kernel.NewLocation(*p.Lat, *p.Lng)
	if err != nil {
		return commands.PlaceRequest{}, err
	}
	req.Location = &location
	return req, nil
}

// Assignment is the dispatch request body.
type Assignment struct {
	DriverID         string     `json:"driverId"`
	PickupLocation   PlaceInput `json:"pickupLocation"`
	DeliveryLocation PlaceInput `json:"deliveryLocation"`
}

type deliveryStatusRequest struct {
	Status   string        `json:"status"`
	Location *kernel.Point `json:"location"`
}

// AssignDriver handles POST /api/v1/orders/:orderId/assignment.
//
// When the delivery was committed but the order could not be linked, the
// response is 502 and carries the committed tracking snapshot.
func (s *Server) AssignDriver(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	var body Assignment
	if err = c.Bind(&body); err != nil {
		return badRequest(err)
	}
	driverID, err := kernel.UUIDFromString(body.DriverID)
	if err != nil {
		return badRequest(err)
	}
	pickup, pickupErr := body.PickupLocation.request("pickupLocation")
	delivery, deliveryErr := body.DeliveryLocation.request("deliveryLocation")
	if err = errors.Join(pickupErr, deliveryErr); err != nil {
		return err
	}

	cmd, err := commands.NewAssignDriverCommand(orderID, driverID, pickup, delivery)
	if err != nil {
		return err
	}

	snapshot, err := s.handlers.AssignDriver.Handle(c.Request().Context(), cmd)
	if errors.Is(err, errs.ErrPartialFailure) {
		return c.JSON(http.StatusBadGateway, Error{
			Code:    http.StatusBadGateway,
			Message: err.Error(),
			Data:    snapshot,
		})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// GetDeliveryTracking handles GET /api/v1/orders/:orderId/tracking.
func (s *Server) GetDeliveryTracking(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	query, err := queries.NewGetDeliveryTrackingQuery(orderID)
	if err != nil {
		return err
	}

	snapshot, err := s.handlers.GetDeliveryTracking.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// UpdateDeliveryStatus handles PATCH /api/v1/tracking/:id/status.
func (s *Server) UpdateDeliveryStatus(c echo.Context) error {
	trackingID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body deliveryStatusRequest
	if err = c.Bind(&body); err != nil {
		return badRequest(err)
	}

	var location *kernel.Location
	if body.Location != nil {
		loc, locErr := body.Location.Location()
		if locErr != nil {
			return locErr
		}
		location = &loc
	}

	cmd, err := commands.NewUpdateDeliveryStatusCommand(trackingID, body.Status, location)
	if err != nil {
		return err
	}
	snapshot, err := s.handlers.UpdateDeliveryStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// CalculateETA handles GET /api/v1/eta?fromLat=&fromLng=&toLat=&toLng=.
func (s *Server) CalculateETA(c echo.Context) error {
	var coords [4]float64
	for i, name := range []string{"fromLat", "fromLng", "toLat", "toLng"} {
		raw := c.QueryParam(name)
		if raw == "" {
			return errs.NewValueIsRequiredError(name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause(name, err)
		}
		coords[i] = v
	}

	query, err := queries.NewCalculateETAQuery(coords[0], coords[1], coords[2], coords[3])
	if err != nil {
		return err
	}
	eta, err := s.handlers.CalculateETA.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, eta)
}
