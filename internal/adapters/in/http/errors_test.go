package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errs.NewObjectNotFoundError("driverID", "x"), http.StatusNotFound},
		{"invalid", errs.NewValueIsInvalidError("status"), http.StatusBadRequest},
		{"required", errs.NewValueIsRequiredError("name"), http.StatusBadRequest},
		{"out of range", errs.NewValueIsOutOfRangeError("rating", 9, 1, 5), http.StatusBadRequest},
		{"permission", errs.NewPermissionDeniedError("u", "earnings", "read"), http.StatusForbidden},
		{"conflict", errs.NewStateConflictError("tracking", "picked_up", "assigned"), http.StatusConflict},
		{"partial", errs.NewPartialFailureError("assign", []string{"tracking"}, "order link", cause), http.StatusBadGateway},
		{"provider", errs.NewExternalProviderError("geocoder", cause), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("handler: %w", errs.NewObjectNotFoundError("orderID", "y")), http.StatusNotFound},
		{"joined", errors.Join(errs.NewValueIsRequiredError("name"), errs.NewValueIsRequiredError("phone")), http.StatusBadRequest},
		{"echo", echo.NewHTTPError(http.StatusUnauthorized, "nope"), http.StatusUnauthorized},
		{"unknown", cause, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpadapter.StatusFor(tt.err))
		})
	}
}
