// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"fmt"

	"github.com/riadevigo/buoyplanner/internal/geo"
	"github.com/riadevigo/buoyplanner/internal/model"
	"github.com/riadevigo/buoyplanner/pkg/core"
)

// CoreToWaypoint converts a core.Waypoint to its table row
func CoreToWaypoint(w core.Waypoint, seq uint) model.Waypoint {
	return model.Waypoint{
		ID:          w.ID,
		Seq:         seq,
		Name:        w.Name,
		Position:    geo.Point(w.Position),
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
	}
}

// WaypointToCore converts a table row back to a core.Waypoint
func WaypointToCore(m model.Waypoint) (core.Waypoint, error) {
	pos, ok := geo.PositionFromPoint(m.Position)
	if !ok {
		return core.Waypoint{}, fmt.Errorf("waypoint %s has an empty position", m.ID)
	}
	return core.Waypoint{
		ID:          m.ID,
		Name:        m.Name,
		Position:    pos,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}, nil
}
