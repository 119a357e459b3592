package http

import (
	"log/slog"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers are the use cases exposed over HTTP.
type Handlers struct {
	CreateDriver         commands.CreateDriverCommandHandler
	UpdateDriverStatus   commands.UpdateDriverStatusCommandHandler
	UpdateDriverLocation commands.UpdateDriverLocationCommandHandler
	DeleteDriver         commands.DeleteDriverCommandHandler
	UpdateDriverRating   commands.UpdateDriverRatingCommandHandler
	StartDriverShift     commands.StartDriverShiftCommandHandler
	EndDriverShift       commands.EndDriverShiftCommandHandler
	AssignDriver         commands.AssignDriverCommandHandler
	UpdateDeliveryStatus commands.UpdateDeliveryStatusCommandHandler
	RecordLocationPing   commands.RecordLocationPingCommandHandler
	UpdateDriverEarnings commands.UpdateDriverEarningsCommandHandler
	RefreshPerformance   commands.RefreshPerformanceCommandHandler

	GetDrivers          queries.GetDriversQueryHandler
	GetDriverEarnings   queries.GetDriverEarningsQueryHandler
	GetDriverShifts     queries.GetDriverShiftsQueryHandler
	GetDeliveryTracking queries.GetDeliveryTrackingQueryHandler
	CalculateETA        queries.CalculateETAQueryHandler
	Subscribe           queries.SubscribeQueryHandler
}

// Server adapts HTTP requests and WebSocket streams onto the use cases.
type Server struct {
	handlers Handlers
	issuer   *TokenIssuer
	clock    kernel.Clock
	logger   *slog.Logger
}

// NewServer creates the server.
func NewServer(handlers Handlers, issuer *TokenIssuer, clock kernel.Clock, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		handlers: handlers,
		issuer:   issuer,
		clock:    clock,
		logger:   logger.With("component", "http"),
	}
}

// RegisterRoutes mounts the API on e. gatherer serves /metrics when non-nil.
func (s *Server) RegisterRoutes(e *echo.Echo, gatherer prometheus.Gatherer) {
	e.HTTPErrorHandler = ErrorHandler(s.logger)

	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/v1", Authenticate(s.issuer))

	api.GET("/drivers", s.GetDrivers)
	api.POST("/drivers", s.CreateDriver)
	api.GET("/drivers/:id", s.GetDriver)
	api.DELETE("/drivers/:id", s.DeleteDriver)
	api.PATCH("/drivers/:id/status", s.UpdateDriverStatus)
	api.PUT("/drivers/:id/location", s.UpdateDriverLocation)
	api.POST("/drivers/:id/pings", s.RecordLocationPing)
	api.POST("/drivers/:id/rating", s.UpdateDriverRating)
	api.POST("/drivers/:id/shifts", s.StartDriverShift)
	api.POST("/drivers/:id/shifts/current/end", s.EndDriverShift)
	api.GET("/drivers/:id/shifts", s.GetDriverShifts)
	api.GET("/drivers/:id/earnings", s.GetDriverEarnings)
	api.POST("/drivers/:id/earnings", s.UpdateDriverEarnings)

	api.POST("/orders/:orderId/assignment", s.AssignDriver)
	api.GET("/orders/:orderId/tracking", s.GetDeliveryTracking)
	api.PATCH("/tracking/:id/status", s.UpdateDeliveryStatus)
	api.GET("/eta", s.CalculateETA)
	api.POST("/performance/refresh", s.RefreshPerformance)

	ws := e.Group("/ws", Authenticate(s.issuer))
	ws.GET("/orders/:orderId/tracking", s.StreamTracking)
	ws.GET("/drivers/:id", s.StreamDriver)
}

func pathID(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, badRequest(err)
	}
	return id, nil
}
