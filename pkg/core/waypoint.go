// pkg/core/waypoint.go
package core

import "time"

// Waypoint is a named buoy on the chart. Waypoints are created and deleted,
// never edited in place.
type Waypoint struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Position    Position  `json:"position"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RouteID identifies a predefined race course.
type RouteID string

// RouteAll is the overview selection: every waypoint, no animation.
const RouteAll RouteID = "all"

const (
	RouteNumeral1 RouteID = "numeral1"
	RouteNumeral2 RouteID = "numeral2"
	RouteNumeral3 RouteID = "numeral3"
	RouteNumeral4 RouteID = "numeral4"
)
