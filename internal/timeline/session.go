package timeline

import (
	"github.com/riadevigo/buoyplanner/internal/clock"
	"github.com/riadevigo/buoyplanner/internal/route"
	"github.com/riadevigo/buoyplanner/internal/surface"
	"github.com/riadevigo/buoyplanner/pkg/core"
)

// State is the lifecycle stage of a Session.
type State int

const (
	// StateIdle means no animation is running.
	StateIdle State = iota
	// StateScheduling means steps are still pending.
	StateScheduling
	// StateDraining means every step has fired; the drawn route stays on the
	// map until the session ends.
	StateDraining
	// StateCancelled means the session was torn down.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduling:
		return "scheduling"
	case StateDraining:
		return "draining"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Session is one run of the staggered segment drawing for a resolved route.
// It owns its pending timers and every overlay it created.
type Session struct {
	route     *route.Resolved
	positions []core.Position
	surface   surface.Surface

	state     State
	cancelled bool

	// pending holds timers keyed by step index until they fire or are stopped.
	pending  map[int]clock.Timer
	vessel   surface.Handle
	segments []surface.Handle
	drawn    int
}

// Route returns the resolved route the session animates.
func (s *Session) Route() *route.Resolved {
	return s.route
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	return s.state
}

// Live reports whether step callbacks may still mutate the map.
func (s *Session) Live() bool {
	return !s.cancelled
}

// Drawn returns the number of segments drawn so far.
func (s *Session) Drawn() int {
	return s.drawn
}

// Pending returns the number of steps not yet fired.
func (s *Session) Pending() int {
	return len(s.pending)
}

// Overlays returns the handles of every layer the session currently owns.
func (s *Session) Overlays() []surface.Handle {
	out := make([]surface.Handle, 0, len(s.segments)+1)
	if s.vessel != 0 {
		out = append(out, s.vessel)
	}
	return append(out, s.segments...)
}

// Cancel stops the session and removes everything it drew. The cancelled flag
// is set before timers are stopped so a callback that slipped through becomes
// a no-op. Calling Cancel again does nothing.
func (s *Session) Cancel() []error {
	if s.cancelled {
		return nil
	}
	s.cancelled = true
	s.state = StateCancelled

	for k, t := range s.pending {
		t.Stop()
		delete(s.pending, k)
	}

	var errs []error
	for _, h := range s.segments {
		if err := s.surface.Remove(h); err != nil {
			errs = append(errs, err)
		}
	}
	s.segments = nil

	if s.vessel != 0 {
		if err := s.surface.Remove(s.vessel); err != nil {
			errs = append(errs, err)
		}
		s.vessel = 0
	}
	return errs
}
