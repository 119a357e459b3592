package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("driverID", "d-1")

		assert.Equal(t, "driverID", err.ParamName)
		assert.Equal(t, "d-1", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: d-1", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("record not found")
		err := errs.NewObjectNotFoundErrorWithCause("trackingID", "t-9", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: trackingID, ID is: t-9 (cause: record not found)",
			err.Error())
	})
}

func TestValueErrors(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("status", errors.New("unknown value"))
		assert.Equal(t, "value is invalid: status (cause: unknown value)", err.Error())
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("required", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("name")
		assert.Equal(t, "value is required: name", err.Error())
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("out of range", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("rating", 7, 1, 5)

		assert.Equal(t, 7, err.Value)
		assert.Equal(t, "value is invalid: 7 is rating, min value is 1, max value is 5", err.Error())
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("out of range sanitizes newlines", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeErrorWithCause("plate", "AB\n12", 0, 10, errors.New("too long"))
		assert.Contains(t, err.Error(), "AB 12")
		assert.NotContains(t, err.Error(), "\n")
		assert.Contains(t, err.Error(), "(cause: too long)")
	})
}

func TestPermissionDeniedError(t *testing.T) {
	err := errs.NewPermissionDeniedError("driver:42", "drivers", "delete")

	assert.Equal(t, "permission denied: driver:42 may not delete drivers", err.Error())
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	anonymous := errs.NewPermissionDeniedError("", "earnings", "read")
	assert.Equal(t, "permission denied: anonymous may not read earnings", anonymous.Error())
}

func TestStateConflictError(t *testing.T) {
	err := errs.NewStateConflictError("tracking", "assigned", "delivered")

	assert.Equal(t, "state conflict: tracking cannot move from assigned to delivered", err.Error())
	assert.ErrorIs(t, err, errs.ErrStateConflict)
}

func TestPartialFailureError(t *testing.T) {
	t.Run("matches sentinel and cause", func(t *testing.T) {
		cause := errs.NewExternalProviderError("orders", errors.New("timeout"))
		err := errs.NewPartialFailureError("assign", []string{"tracking", "driver"}, "order link", cause)

		assert.Equal(t,
			"partial failure: assign completed [tracking, driver], failed at order link "+
				"(cause: external provider failure: orders (cause: timeout))",
			err.Error())
		assert.ErrorIs(t, err, errs.ErrPartialFailure)
		assert.ErrorIs(t, err, errs.ErrExternalProvider)
	})

	t.Run("survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", errs.NewPartialFailureError("assign", nil, "order link", nil))

		var partial *errs.PartialFailureError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, "order link", partial.Failed)
	})
}

func TestSentinelErrors(t *testing.T) {
	assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
	assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
	assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
	assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
	assert.Equal(t, "permission denied", errs.ErrPermissionDenied.Error())
	assert.Equal(t, "state conflict", errs.ErrStateConflict.Error())
	assert.Equal(t, "partial failure", errs.ErrPartialFailure.Error())
	assert.Equal(t, "external provider failure", errs.ErrExternalProvider.Error())
}
