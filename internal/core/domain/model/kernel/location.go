package kernel

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// LatitudeMin and LatitudeMax bound a WGS84 latitude in degrees.
	LatitudeMin = -90.0
	LatitudeMax = 90.0
	// LongitudeMin and LongitudeMax bound a WGS84 longitude in degrees.
	LongitudeMin = -180.0
	LongitudeMax = 180.0

	earthRadiusKm = 6371.0
)

// ErrLocationIsNotConstructed is returned when a zero-value Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation")

// Location is an immutable geographic point in decimal degrees.
// The zero value is invalid; create instances with NewLocation.
//
// Example:
//
//	plant, _ := kernel.NewLocation(55.7558, 37.6173)
//	customer, _ := kernel.NewLocation(55.7963, 37.5379)
//	fmt.Printf("%.1f km", plant.DistanceKm(customer))
type Location struct { //nolint:recvcheck // Validate is used on values
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewLocation creates a Location after checking both coordinates are within WGS84 bounds.
//
// Parameters:
//   - lat: latitude in [-90, 90]
//   - lng: longitude in [-180, 180]
//
// Returns:
//   - Location: a valid location
//   - error: joined out-of-range errors for every invalid coordinate
func NewLocation(lat, lng float64) (Location, error) {
	loc := Location{guard: guard.NewConstructorGuard()}

	if err := errors.Join(loc.setLat(lat), loc.setLng(lng)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// MustLocation is NewLocation for compile-time constants such as a default centroid.
// It panics on invalid input.
func MustLocation(lat, lng float64) Location {
	loc, err := NewLocation(lat, lng)
	if err != nil {
		panic(err)
	}
	return loc
}

// Validate reports whether the Location was created through NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (l Location) Lat() float64 {
	return l.lat
}

// Lng returns the longitude in degrees.
func (l Location) Lng() float64 {
	return l.lng
}

// IsEqual reports whether both locations hold the same coordinates.
func (l Location) IsEqual(other Location) bool {
	return l.lat == other.lat && l.lng == other.lng
}

// DistanceKm returns the great-circle distance to other using the haversine formula.
func (l Location) DistanceKm(other Location) float64 {
	lat1 := degreesToRadians(l.lat)
	lat2 := degreesToRadians(other.lat)
	dLat := lat2 - lat1
	dLng := degreesToRadians(other.lng - l.lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Point returns the coordinates as a plain serializable pair.
func (l Location) Point() Point {
	return Point{Lat: l.lat, Lng: l.lng}
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.lat, l.lng)
}

func (l *Location) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}
	l.lat = lat
	return nil
}

func (l *Location) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lng", lng, LongitudeMin, LongitudeMax)
	}
	l.lng = lng
	return nil
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}

// Point is the wire form of a Location used in snapshots and persistence.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location converts the point back into a validated Location.
func (p Point) Location() (Location, error) {
	return NewLocation(p.Lat, p.Lng)
}

// Position is a location fix reported at a moment in time.
type Position struct {
	location  Location
	timestamp time.Time
}

// NewPosition creates a Position. The timestamp is normalized to UTC.
func NewPosition(location Location, timestamp time.Time) (Position, error) {
	if err := location.Validate(); err != nil {
		return Position{}, err
	}
	if timestamp.IsZero() {
		return Position{}, errs.NewValueIsRequiredError("timestamp")
	}
	return Position{location: location, timestamp: timestamp.UTC()}, nil
}

// Location returns the fix's coordinates.
func (p Position) Location() Location {
	return p.location
}

// Timestamp returns when the fix was taken.
func (p Position) Timestamp() time.Time {
	return p.timestamp
}

// Place is a resolved pickup or delivery point: a human address plus its coordinates.
type Place struct {
	address  string
	location Location
}

// NewPlace creates a Place. The address may be empty when only coordinates are known.
func NewPlace(address string, location Location) (Place, error) {
	if err := location.Validate(); err != nil {
		return Place{}, err
	}
	return Place{address: address, location: location}, nil
}

// Address returns the postal address, possibly empty.
func (p Place) Address() string {
	return p.address
}

// Location returns the place's coordinates.
func (p Place) Location() Location {
	return p.location
}
