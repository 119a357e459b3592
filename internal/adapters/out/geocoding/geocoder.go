// Package geocoding resolves postal addresses into coordinates through a
// Google-compatible geocode endpoint, optionally behind a Redis cache.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const (
	DefaultEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"
	providerName    = "geocoder"
)

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// HTTPGeocoder calls the geocode endpoint once per address.
type HTTPGeocoder struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPGeocoder creates a geocoder. An empty endpoint uses DefaultEndpoint.
func NewHTTPGeocoder(endpoint, apiKey string, timeout time.Duration) *HTTPGeocoder {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPGeocoder{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Geocode returns the first match for address. Transport failures, non-200
// answers and empty result sets are ExternalProvider errors.
func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (kernel.Location, error) {
	params := url.Values{}
	params.Set("address", strings.TrimSpace(address))
	if g.apiKey != "" {
		params.Set("key", g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return kernel.Location{}, errs.NewExternalProviderError(providerName, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return kernel.Location{}, errs.NewExternalProviderError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return kernel.Location{}, errs.NewExternalProviderError(providerName,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body geocodeResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return kernel.Location{}, errs.NewExternalProviderError(providerName, err)
	}
	if len(body.Results) == 0 {
		return kernel.Location{}, errs.NewExternalProviderError(providerName,
			fmt.Errorf("no location found for %q (status %s)", address, body.Status))
	}

	loc := body.Results[0].Geometry.Location
	location, err := kernel.NewLocation(loc.Lat, loc.Lng)
	if err != nil {
		return kernel.Location{}, errs.NewExternalProviderError(providerName, err)
	}
	return location, nil
}
