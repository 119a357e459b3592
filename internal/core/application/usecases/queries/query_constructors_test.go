package queries_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/earnings"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueries_NotConstructedViaConstructor(t *testing.T) {
	tests := []struct {
		name     string
		validate func() error
		want     error
	}{
		{"all drivers", queries.GetAllDriversQuery{}.Validate, queries.ErrGetAllDriversQueryIsNotConstructed},
		{"available drivers", queries.GetAvailableDriversQuery{}.Validate,
			queries.ErrGetAvailableDriversQueryIsNotConstructed},
		{"driver by id", queries.GetDriverByIDQuery{}.Validate, queries.ErrGetDriverByIDQueryIsNotConstructed},
		{"earnings", queries.GetDriverEarningsQuery{}.Validate, queries.ErrGetDriverEarningsQueryIsNotConstructed},
		{"shifts", queries.GetDriverShiftsQuery{}.Validate, queries.ErrGetDriverShiftsQueryIsNotConstructed},
		{"tracking", queries.GetDeliveryTrackingQuery{}.Validate,
			queries.ErrGetDeliveryTrackingQueryIsNotConstructed},
		{"eta", queries.CalculateETAQuery{}.Validate, queries.ErrCalculateETAQueryIsNotConstructed},
		{"tracking stream", queries.SubscribeToDeliveryTrackingQuery{}.Validate,
			queries.ErrSubscribeToDeliveryTrackingQueryIsNotConstructed},
		{"driver stream", queries.SubscribeToDriverQuery{}.Validate, queries.ErrSubscribeToDriverQueryIsNotConstructed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.validate(), tt.want)
		})
	}
}

func TestNewGetDriverEarningsQuery(t *testing.T) {
	t.Run("empty period defaults to all", func(t *testing.T) {
		query, err := queries.NewGetDriverEarningsQuery(kernel.NewUUID(), "")

		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.Equal(t, earnings.All, query.Period())
	})

	t.Run("zero driver id is rejected", func(t *testing.T) {
		_, err := queries.NewGetDriverEarningsQuery(kernel.UUID{}, "week")

		assert.Error(t, err)
	})
}

func TestNewIDQueries_RejectZeroID(t *testing.T) {
	_, byID := queries.NewGetDriverByIDQuery(kernel.UUID{})
	_, shifts := queries.NewGetDriverShiftsQuery(kernel.UUID{})
	_, tracking := queries.NewGetDeliveryTrackingQuery(kernel.UUID{})
	_, stream := queries.NewSubscribeToDriverQuery(kernel.UUID{})

	for _, err := range []error{byID, shifts, tracking, stream} {
		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	}
}
