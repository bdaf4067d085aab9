package route

import (
	"github.com/riadevigo/buoyplanner/pkg/core"
)

// Resolver memoizes Resolve. When called with inputs equal to the previous call
// it returns the previous *Resolved, so callers keyed on pointer identity do not
// see a spurious change. A Resolver is not safe for concurrent use.
type Resolver struct {
	defs Definitions

	last      *Resolved
	lastID    core.RouteID
	lastWps   []core.Waypoint
	lastLive  *core.Position
	lastFall  *core.Position
	lastValid bool
}

// NewResolver creates a Resolver over a fixed set of definitions.
func NewResolver(defs Definitions) *Resolver {
	return &Resolver{defs: defs}
}

// Definitions returns the route table the resolver was built with.
func (r *Resolver) Definitions() Definitions {
	return r.defs
}

// Resolve returns the path for id, reusing the previous result when nothing changed.
func (r *Resolver) Resolve(id core.RouteID, waypoints []core.Waypoint, liveStart, fallbackStart *core.Position) (*Resolved, error) {
	if r.lastValid &&
		r.lastID == id &&
		samePosition(r.lastLive, liveStart) &&
		samePosition(r.lastFall, fallbackStart) &&
		sameWaypoints(r.lastWps, waypoints) {
		return r.last, nil
	}

	res, err := Resolve(r.defs, id, waypoints, liveStart, fallbackStart)
	if err != nil {
		r.lastValid = false
		return nil, err
	}

	r.last = res
	r.lastID = id
	r.lastWps = append([]core.Waypoint(nil), waypoints...)
	r.lastLive = copyPosition(liveStart)
	r.lastFall = copyPosition(fallbackStart)
	r.lastValid = true
	return res, nil
}

func samePosition(a, b *core.Position) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameWaypoints(a, b []core.Waypoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Name != b[i].Name || a[i].Position != b[i].Position {
			return false
		}
	}
	return true
}

func copyPosition(p *core.Position) *core.Position {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
