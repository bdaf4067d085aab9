// pkg/core/position.go
package core

import (
	"fmt"
	"math"
	"time"
)

// Position is a WGS84 point in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the position lies inside the latitude/longitude ranges.
func (p Position) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// String formats the position as "lat, lng" with five decimals.
func (p Position) String() string {
	return fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lng)
}

// Hemisphere is the cardinal suffix of a degrees-minutes coordinate.
type Hemisphere string

const (
	North Hemisphere = "N"
	South Hemisphere = "S"
	East  Hemisphere = "E"
	West  Hemisphere = "W"
)

// IsLatitude reports whether the hemisphere belongs to the latitude axis.
func (h Hemisphere) IsLatitude() bool {
	return h == North || h == South
}

// Valid reports whether h is one of N, S, E, W.
func (h Hemisphere) Valid() bool {
	switch h {
	case North, South, East, West:
		return true
	}
	return false
}

// Negative reports whether coordinates in this hemisphere carry a negative sign.
func (h Hemisphere) Negative() bool {
	return h == South || h == West
}

// DegreesMinutes is a coordinate in DD° MM.MMM' form.
type DegreesMinutes struct {
	Degrees    int
	Minutes    float64
	Hemisphere Hemisphere
}

// Fix is a one-shot device location result.
type Fix struct {
	Position Position
	Accuracy float64 // metres, as reported by the location source
	At       time.Time
}
