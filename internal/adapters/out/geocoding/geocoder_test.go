package geocoding_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dispatch/internal/adapters/out/geocoding"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGeocoder_Geocode(t *testing.T) {
	t.Run("returns the first result", func(t *testing.T) {
		// Given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "7 Dry Ln", r.URL.Query().Get("address"))
			assert.Equal(t, "secret", r.URL.Query().Get("key"))
			_, _ = w.Write([]byte(`{"status":"OK","results":[
				{"geometry":{"location":{"lat":-23.5614,"lng":-46.6559}}},
				{"geometry":{"location":{"lat":1,"lng":1}}}]}`))
		}))
		defer server.Close()
		geocoder := geocoding.NewHTTPGeocoder(server.URL, "secret", time.Second)

		// When
		loc, err := geocoder.Geocode(context.Background(), " 7 Dry Ln ")

		// Then
		require.NoError(t, err)
		assert.InDelta(t, -23.5614, loc.Lat(), 1e-9)
		assert.InDelta(t, -46.6559, loc.Lng(), 1e-9)
	})

	t.Run("empty result set is a provider error", func(t *testing.T) {
		// Given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
		}))
		defer server.Close()
		geocoder := geocoding.NewHTTPGeocoder(server.URL, "", time.Second)

		// When
		_, err := geocoder.Geocode(context.Background(), "nowhere")

		// Then
		assert.ErrorIs(t, err, errs.ErrExternalProvider)
	})

	t.Run("server error is a provider error", func(t *testing.T) {
		// Given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()
		geocoder := geocoding.NewHTTPGeocoder(server.URL, "", time.Second)

		// When
		_, err := geocoder.Geocode(context.Background(), "7 Dry Ln")

		// Then
		assert.ErrorIs(t, err, errs.ErrExternalProvider)
	})

	t.Run("out of range coordinates are rejected", func(t *testing.T) {
		// Given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":123,"lng":0}}}]}`))
		}))
		defer server.Close()
		geocoder := geocoding.NewHTTPGeocoder(server.URL, "", time.Second)

		// When
		_, err := geocoder.Geocode(context.Background(), "7 Dry Ln")

		// Then
		assert.ErrorIs(t, err, errs.ErrExternalProvider)
	})
}
