package services

import (
	"fmt"
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// DefaultMinutesPerKm is the travel-time heuristic used when none is configured.
const DefaultMinutesPerKm = 2.0

// ETA is a distance and duration estimate between two points.
type ETA struct {
	DistanceKm   float64 `json:"distanceKm"`
	Minutes      int     `json:"minutes"`
	DistanceText string  `json:"distance"`
	DurationText string  `json:"duration"`
}

// ETACalculator estimates travel time as great-circle distance multiplied by a
// constant number of minutes per kilometre. It does no routing.
type ETACalculator struct {
	minutesPerKm float64
}

// NewETACalculator creates a calculator. minutesPerKm must be positive.
func NewETACalculator(minutesPerKm float64) (ETACalculator, error) {
	if minutesPerKm <= 0 || math.IsNaN(minutesPerKm) || math.IsInf(minutesPerKm, 0) {
		return ETACalculator{}, errs.NewValueIsOutOfRangeError("minutesPerKm", minutesPerKm, "0 (exclusive)", "+Inf")
	}
	return ETACalculator{minutesPerKm: minutesPerKm}, nil
}

// MinutesPerKm returns the configured heuristic.
func (c ETACalculator) MinutesPerKm() float64 {
	if c.minutesPerKm == 0 {
		return DefaultMinutesPerKm
	}
	return c.minutesPerKm
}

// Calculate returns the ETA from one point to another.
//
// Example:
//
//	calc, _ := services.NewETACalculator(2)
//	eta := calc.Calculate(from, to) // 10 km apart
//	eta.DistanceText // "10.0 km"
//	eta.DurationText // "20 min"
func (c ETACalculator) Calculate(from, to kernel.Location) ETA {
	km := from.DistanceKm(to)
	minutes := int(math.Round(km * c.MinutesPerKm()))

	return ETA{
		DistanceKm:   km,
		Minutes:      minutes,
		DistanceText: fmt.Sprintf("%.1f km", km),
		DurationText: fmt.Sprintf("%d min", minutes),
	}
}
