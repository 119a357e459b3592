package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultCacheTTL = 24 * time.Hour
	cachePrefix     = "geo:address:"
)

// CachedGeocoder serves repeated addresses from Redis. Cache failures degrade
// to a direct lookup.
type CachedGeocoder struct {
	next   ports.Geocoder
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedGeocoder wraps next. A non-positive ttl uses DefaultCacheTTL.
func NewCachedGeocoder(next ports.Geocoder, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedGeocoder {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedGeocoder{next: next, client: client, ttl: ttl, logger: logger.With("component", "geocode-cache")}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (kernel.Location, error) {
	key := cachePrefix + strings.ToLower(strings.TrimSpace(address))

	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var point kernel.Point
		if jsonErr := json.Unmarshal(cached, &point); jsonErr == nil {
			if loc, locErr := point.Location(); locErr == nil {
				return loc, nil
			}
		}
		c.logger.WarnContext(ctx, "discarding unreadable cache entry", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "geocode cache unavailable", "error", err)
	}

	loc, err := c.next.Geocode(ctx, address)
	if err != nil {
		return kernel.Location{}, err
	}

	if body, jsonErr := json.Marshal(loc.Point()); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, body, c.ttl).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "failed to cache geocode", "error", setErr)
		}
	}
	return loc, nil
}
