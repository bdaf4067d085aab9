package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/riadevigo/buoyplanner/internal/clock"
	"github.com/riadevigo/buoyplanner/internal/route"
	"github.com/riadevigo/buoyplanner/internal/surface"
	"github.com/riadevigo/buoyplanner/internal/surface/headless"
	"github.com/riadevigo/buoyplanner/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bouzas  = core.Position{Lat: 42.24762, Lng: -8.74563}
	subrido = core.Position{Lat: 42.24283, Lng: -8.86533}
	laNegra = core.Position{Lat: 42.15475, Lng: -8.88577}
	lousal  = core.Position{Lat: 42.27485, Lng: -8.68905}
	tofino  = core.Position{Lat: 42.22845, Lng: -8.77865}
)

// spySurface records when segments are drawn and can fail on demand.
type spySurface struct {
	*headless.Surface
	clock     *clock.Manual
	drawnAt   []time.Duration
	failAfter int
}

func (s *spySurface) AddPolyline(path []core.Position, style surface.LineStyle) (surface.Handle, error) {
	if s.failAfter > 0 && len(s.drawnAt) >= s.failAfter {
		return 0, errors.New("renderer lost")
	}
	s.drawnAt = append(s.drawnAt, s.clock.Now())
	return s.Surface.AddPolyline(path, style)
}

// leakyScheduler hands out timers whose Stop never wins, like a timer that
// already fired and queued its callback.
type leakyScheduler struct {
	*clock.Manual
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (l leakyScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	l.Manual.AfterFunc(d, f)
	return leakyTimer{}
}

func newEngine(t *testing.T, sched clock.Scheduler, s surface.Surface) *Engine {
	t.Helper()
	styles := surface.DefaultStyles()
	e, err := New(s, sched, Config{
		StepDelay:    time.Second,
		VesselStyle:  styles.Vessel,
		SegmentStyle: styles.Segment,
	}, nil)
	require.NoError(t, err)
	return e
}

func newMap() *headless.Surface {
	return headless.New(headless.Config{Center: core.Position{Lat: 42.2328, Lng: -8.7226}, Zoom: 12, Width: 1024, Height: 768})
}

func resolved(id core.RouteID, positions ...core.Position) *route.Resolved {
	return &route.Resolved{RouteID: id, Positions: positions}
}

func TestEngine_DegenerateRoutesDoNothing(t *testing.T) {
	m := clock.NewManual()
	s := newMap()
	e := newEngine(t, m, s)

	for _, r := range []*route.Resolved{
		nil,
		resolved(core.RouteNumeral1),
		resolved(core.RouteNumeral1, bouzas),
		resolved(core.RouteAll, bouzas, subrido, laNegra),
	} {
		started, err := e.Activate(r)
		require.NoError(t, err)
		assert.False(t, started)
	}

	assert.Nil(t, e.Session())
	assert.Equal(t, StateIdle, e.State())
	assert.Empty(t, s.Snapshot())
	assert.Equal(t, 0, m.Pending())
}

func TestEngine_StepsFireInOrderAtStepInterval(t *testing.T) {
	m := clock.NewManual()
	s := &spySurface{Surface: newMap(), clock: m}
	e := newEngine(t, m, s)

	started, err := e.Activate(resolved(core.RouteNumeral1, bouzas, subrido, laNegra, tofino))
	require.NoError(t, err)
	require.True(t, started)

	assert.Equal(t, StateScheduling, e.State())
	assert.Equal(t, 1, s.Count(headless.KindMarker), "vessel placed immediately")
	assert.Equal(t, 0, s.Count(headless.KindPolyline))
	assert.Equal(t, 3, e.Session().Pending())

	m.Advance(10 * time.Second)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, s.drawnAt)
	assert.Equal(t, 3, s.Count(headless.KindPolyline))
	assert.Equal(t, StateDraining, e.State())
	assert.Equal(t, 3, e.Session().Drawn())

	var vessel headless.Layer
	var segments [][]core.Position
	for _, l := range s.Snapshot() {
		switch l.Kind {
		case headless.KindMarker:
			vessel = l
		case headless.KindPolyline:
			segments = append(segments, l.Path)
		}
	}
	assert.Equal(t, tofino, vessel.Path[0], "vessel ends on the last waypoint")
	assert.Equal(t, [][]core.Position{
		{bouzas, subrido},
		{subrido, laNegra},
		{laNegra, tofino},
	}, segments)
}

func TestEngine_PartialProgress(t *testing.T) {
	m := clock.NewManual()
	s := newMap()
	e := newEngine(t, m, s)

	_, err := e.Activate(resolved(core.RouteNumeral3, bouzas, lousal, tofino))
	require.NoError(t, err)

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1, s.Count(headless.KindPolyline))
	assert.Equal(t, 1, e.Session().Pending())
	assert.Equal(t, StateScheduling, e.State())
}

func TestEngine_DeactivateRemovesEverything(t *testing.T) {
	m := clock.NewManual()
	s := newMap()
	e := newEngine(t, m, s)

	_, err := e.Activate(resolved(core.RouteNumeral1, bouzas, subrido, laNegra))
	require.NoError(t, err)
	m.Advance(1500 * time.Millisecond)
	require.Len(t, s.Snapshot(), 2)

	session := e.Session()
	e.Deactivate()

	assert.Empty(t, s.Snapshot())
	assert.Equal(t, 0, m.Pending(), "pending steps were stopped")
	assert.Equal(t, StateCancelled, session.State())
	assert.False(t, session.Live())
	assert.Empty(t, session.Overlays())
	assert.Equal(t, StateIdle, e.State())

	m.Advance(10 * time.Second)
	assert.Empty(t, s.Snapshot())
}

func TestEngine_StaleCallbacksAreDiscarded(t *testing.T) {
	m := clock.NewManual()
	s := newMap()
	e := newEngine(t, leakyScheduler{m}, s)

	_, err := e.Activate(resolved(core.RouteNumeral1, bouzas, subrido, laNegra, tofino))
	require.NoError(t, err)
	m.Advance(time.Second)

	e.Deactivate()
	require.Equal(t, 2, m.Pending(), "leaky timers survive cancellation")

	m.Advance(10 * time.Second)
	assert.Empty(t, s.Snapshot(), "late callbacks must not draw")
}

func TestEngine_RapidSwitchLeavesNoGhosts(t *testing.T) {
	m := clock.NewManual()
	s := newMap()
	e := newEngine(t, leakyScheduler{m}, s)

	a := resolved(core.RouteNumeral1, bouzas, subrido, laNegra)
	b := resolved(core.RouteNumeral3, bouzas, lousal, tofino)

	_, err := e.Activate(a)
	require.NoError(t, err)
	m.Advance(500 * time.Millisecond)

	_, err = e.Activate(b)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count(headless.KindMarker))
	assert.Equal(t, 0, s.Count(headless.KindPolyline))

	m.Advance(10 * time.Second)

	assert.Equal(t, 1, s.Count(headless.KindMarker), "exactly one vessel")
	require.Equal(t, 2, s.Count(headless.KindPolyline))
	for _, l := range s.Snapshot() {
		if l.Kind == headless.KindPolyline {
			assert.NotContains(t, l.Path, subrido, "segment from route A survived")
			assert.NotContains(t, l.Path, laNegra, "segment from route A survived")
		}
	}
}

func TestEngine_ManySwitches(t *testing.T) {
	m := clock.NewManual()
	s := newMap()
	e := newEngine(t, m, s)

	routes := []*route.Resolved{
		resolved(core.RouteNumeral1, bouzas, subrido, laNegra),
		resolved(core.RouteNumeral2, bouzas, subrido, tofino),
		resolved(core.RouteNumeral3, bouzas, lousal, tofino),
		resolved(core.RouteNumeral4, bouzas, lousal, laNegra),
	}
	for i := 0; i < 20; i++ {
		_, err := e.Activate(routes[i%len(routes)])
		require.NoError(t, err)
		m.Advance(time.Duration(i%3) * 700 * time.Millisecond)
		assert.Equal(t, 1, s.Count(headless.KindMarker))
		assert.Len(t, s.Snapshot(), 1+e.Session().Drawn())
	}

	e.Close()
	assert.Empty(t, s.Snapshot())
	assert.Equal(t, 0, m.Pending())
}

func TestEngine_SameRouteIsNoop(t *testing.T) {
	m := clock.NewManual()
	s := newMap()
	e := newEngine(t, m, s)

	r := resolved(core.RouteNumeral1, bouzas, subrido, laNegra)
	started, err := e.Activate(r)
	require.NoError(t, err)
	require.True(t, started)
	m.Advance(time.Second)

	session := e.Session()
	started, err = e.Activate(r)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Same(t, session, e.Session())
	assert.Equal(t, 1, m.Pending())

	// An equal route under a new identity restarts.
	started, err = e.Activate(resolved(core.RouteNumeral1, bouzas, subrido, laNegra))
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, 0, s.Count(headless.KindPolyline))
}

func TestEngine_ReactivateAfterDeactivate(t *testing.T) {
	m := clock.NewManual()
	s := newMap()
	e := newEngine(t, m, s)

	r := resolved(core.RouteNumeral1, bouzas, subrido)
	_, err := e.Activate(r)
	require.NoError(t, err)
	e.Deactivate()

	started, err := e.Activate(r)
	require.NoError(t, err)
	assert.True(t, started)
}

func TestEngine_PansWithoutZoomWhenOffScreen(t *testing.T) {
	m := clock.NewManual()
	s := newMap()
	e := newEngine(t, m, s)

	coruna := core.Position{Lat: 43.3623, Lng: -8.4115}
	_, err := e.Activate(resolved(core.RouteNumeral1, bouzas, subrido, coruna))
	require.NoError(t, err)

	m.Advance(time.Second)
	pans, flights, _ := s.Stats()
	assert.Equal(t, 0, pans, "subrido is already visible")

	m.Advance(time.Second)
	pans, flights, _ = s.Stats()
	assert.Equal(t, 1, pans)
	assert.Equal(t, 0, flights)
	assert.Equal(t, coruna, s.Center())
	assert.Equal(t, 12.0, s.Zoom())
}

func TestEngine_SegmentFailureKeepsVesselBehind(t *testing.T) {
	m := clock.NewManual()
	s := &spySurface{Surface: newMap(), clock: m, failAfter: 1}
	e := newEngine(t, m, s)

	_, err := e.Activate(resolved(core.RouteNumeral1, bouzas, subrido, laNegra, tofino))
	require.NoError(t, err)
	m.Advance(10 * time.Second)

	assert.Equal(t, 1, s.Count(headless.KindPolyline))
	assert.Equal(t, StateDraining, e.State())
	assert.Equal(t, 0, e.Session().Pending())
	for _, l := range s.Snapshot() {
		if l.Kind == headless.KindMarker {
			assert.Equal(t, subrido, l.Path[0])
		}
	}
}

func TestSession_CancelIsIdempotent(t *testing.T) {
	m := clock.NewManual()
	s := newMap()
	e := newEngine(t, m, s)

	_, err := e.Activate(resolved(core.RouteNumeral1, bouzas, subrido, laNegra))
	require.NoError(t, err)
	m.Advance(time.Second)

	session := e.Session()
	assert.Empty(t, session.Cancel())
	assert.Empty(t, session.Cancel())
	assert.Empty(t, s.Snapshot())

	// The engine still holds the cancelled session; ending it must not remove anything twice.
	e.Close()
	assert.Equal(t, StateIdle, e.State())
}

func TestEngine_DefaultStepDelay(t *testing.T) {
	e, err := New(newMap(), clock.NewManual(), Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultStepDelay, e.StepDelay())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "scheduling", StateScheduling.String())
	assert.Equal(t, "draining", StateDraining.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
}
