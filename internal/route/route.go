// Package route maps race course identifiers to ordered waypoint paths.
package route

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riadevigo/buoyplanner/pkg/core"
)

// ErrUnknownRoute is returned when a route id has no definition.
var ErrUnknownRoute = errors.New("unknown route")

// DefaultLiveLabel names the route start when it comes from the live device position.
const DefaultLiveLabel = "MAD MAX"

// Definitions maps a route id to the ordered names of its waypoints. Names are
// the join key against the waypoint collection.
type Definitions map[core.RouteID][]string

// DefaultDefinitions returns the Ría de Vigo race courses.
func DefaultDefinitions() Definitions {
	return Definitions{
		core.RouteNumeral1: {"Subrido", "La Negra"},
		core.RouteNumeral2: {"Subrido", "Baliza Meteorológica Sur Cíes"},
		core.RouteNumeral3: {"Lousal", "Tofiño"},
		core.RouteNumeral4: {"Lousal", "Bondaña"},
	}
}

// Resolved is the concrete path for a route at one point in time. Consumers
// compare *Resolved pointers: a new pointer means the route changed.
type Resolved struct {
	RouteID core.RouteID
	// Positions is the animated path, start point first when HasStart is set.
	Positions []core.Position
	// Waypoints are the collection entries matched by the definition, in path order.
	Waypoints []core.Waypoint
	HasStart  bool
}

// Animatable reports whether the path has at least one segment to draw.
func (r *Resolved) Animatable() bool {
	return r != nil && r.RouteID != core.RouteAll && len(r.Positions) >= 2
}

// Resolve builds the path for id from the waypoint collection. For RouteAll it
// returns every waypoint in collection order without a start point. Otherwise
// waypoints are placed in definition order, the first waypoint carrying a name
// wins, missing names shrink the path, and liveStart (or fallbackStart when
// liveStart is nil) is prepended.
func Resolve(defs Definitions, id core.RouteID, waypoints []core.Waypoint, liveStart, fallbackStart *core.Position) (*Resolved, error) {
	if id == core.RouteAll {
		r := &Resolved{
			RouteID:   id,
			Positions: make([]core.Position, 0, len(waypoints)),
			Waypoints: append([]core.Waypoint(nil), waypoints...),
		}
		for _, wp := range waypoints {
			r.Positions = append(r.Positions, wp.Position)
		}
		return r, nil
	}

	names, ok := defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoute, id)
	}

	byName := make(map[string]core.Waypoint, len(waypoints))
	for _, wp := range waypoints {
		if _, seen := byName[wp.Name]; !seen {
			byName[wp.Name] = wp
		}
	}

	r := &Resolved{
		RouteID:   id,
		Positions: make([]core.Position, 0, len(names)+1),
		Waypoints: make([]core.Waypoint, 0, len(names)),
	}

	start := liveStart
	if start == nil {
		start = fallbackStart
	}
	if start != nil {
		r.Positions = append(r.Positions, *start)
		r.HasStart = true
	}

	for _, name := range names {
		wp, found := byName[name]
		if !found {
			continue
		}
		r.Positions = append(r.Positions, wp.Position)
		r.Waypoints = append(r.Waypoints, wp)
	}

	return r, nil
}

// StartLabel is the display name of the first route point.
func StartLabel(liveActive bool, liveLabel, fallbackName string) string {
	if liveActive {
		return liveLabel
	}
	return fallbackName
}

// Describe returns the "start - A - B" sub-label shown next to a route.
func Describe(defs Definitions, id core.RouteID, startLabel string) string {
	if id == core.RouteAll {
		return "Visão Geral"
	}
	parts := append([]string{startLabel}, defs[id]...)
	return strings.Join(parts, " - ")
}

// Visible filters waypoints down to the ones shown for a route, keeping the
// collection order. Every waypoint is visible on the overview.
func Visible(defs Definitions, id core.RouteID, waypoints []core.Waypoint) []core.Waypoint {
	if id == core.RouteAll {
		return append([]core.Waypoint(nil), waypoints...)
	}
	names := make(map[string]struct{}, len(defs[id]))
	for _, n := range defs[id] {
		names[n] = struct{}{}
	}
	out := make([]core.Waypoint, 0, len(names))
	for _, wp := range waypoints {
		if _, ok := names[wp.Name]; ok {
			out = append(out, wp)
		}
	}
	return out
}
