// Package timeline animates a resolved route on the map: a vessel marker
// travels waypoint to waypoint while the course is drawn one segment per step.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riadevigo/buoyplanner/internal/clock"
	"github.com/riadevigo/buoyplanner/internal/route"
	"github.com/riadevigo/buoyplanner/internal/surface"
	"github.com/riadevigo/buoyplanner/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultStepDelay is the interval between two drawn segments.
const DefaultStepDelay = time.Second

// Config holds the animation parameters.
type Config struct {
	StepDelay    time.Duration
	VesselStyle  surface.MarkerStyle
	SegmentStyle surface.LineStyle
}

// Engine owns at most one live Session. It is not safe for concurrent use:
// every method, and every callback the scheduler runs, must execute on the
// same event loop.
type Engine struct {
	surface surface.Surface
	sched   clock.Scheduler
	cfg     Config
	log     *slog.Logger

	session *Session

	started   metric.Int64Counter
	cancelled metric.Int64Counter
	segments  metric.Int64Counter
	stale     metric.Int64Counter
}

// New creates an Engine drawing on s with timers from sched.
func New(s surface.Surface, sched clock.Scheduler, cfg Config, log *slog.Logger) (*Engine, error) {
	if cfg.StepDelay <= 0 {
		cfg.StepDelay = DefaultStepDelay
	}
	if log == nil {
		log = slog.Default()
	}

	e := &Engine{
		surface: s,
		sched:   sched,
		cfg:     cfg,
		log:     log,
	}

	m := meter()
	var err error

	e.started, err = m.Int64Counter("timeline.sessions.started",
		metric.WithDescription("Animation sessions started"))
	if err != nil {
		return nil, fmt.Errorf("creating started counter: %w", err)
	}
	e.cancelled, err = m.Int64Counter("timeline.sessions.cancelled",
		metric.WithDescription("Animation sessions torn down"))
	if err != nil {
		return nil, fmt.Errorf("creating cancelled counter: %w", err)
	}
	e.segments, err = m.Int64Counter("timeline.segments.drawn",
		metric.WithDescription("Route segments drawn"))
	if err != nil {
		return nil, fmt.Errorf("creating segments counter: %w", err)
	}
	e.stale, err = m.Int64Counter("timeline.callbacks.stale",
		metric.WithDescription("Step callbacks discarded after their session ended"))
	if err != nil {
		return nil, fmt.Errorf("creating stale counter: %w", err)
	}

	return e, nil
}

// StepDelay returns the configured step interval.
func (e *Engine) StepDelay() time.Duration {
	return e.cfg.StepDelay
}

// Session returns the live session, or nil.
func (e *Engine) Session() *Session {
	return e.session
}

// State returns the state of the live session, or StateIdle.
func (e *Engine) State() State {
	if e.session == nil {
		return StateIdle
	}
	return e.session.state
}

// Activate makes r the animated route. Activating the route that is already
// running is a no-op. Any other route first tears down the running session;
// routes with fewer than two positions then leave the engine idle.
func (e *Engine) Activate(r *route.Resolved) (bool, error) {
	if e.session != nil && e.session.route == r && e.session.Live() {
		return false, nil
	}

	e.cancelCurrent("route changed")

	if !r.Animatable() {
		if r != nil {
			e.log.Debug("route not animatable", "route", r.RouteID, "positions", len(r.Positions))
		}
		return false, nil
	}

	vessel, err := e.surface.AddMarker(r.Positions[0], e.cfg.VesselStyle)
	if err != nil {
		return false, fmt.Errorf("placing vessel marker: %w", err)
	}

	s := &Session{
		route:     r,
		positions: append([]core.Position(nil), r.Positions...),
		surface:   e.surface,
		state:     StateScheduling,
		pending:   make(map[int]clock.Timer, len(r.Positions)-1),
		vessel:    vessel,
	}
	e.session = s

	for k := 1; k < len(s.positions); k++ {
		k := k
		s.pending[k] = e.sched.AfterFunc(time.Duration(k)*e.cfg.StepDelay, func() {
			e.step(s, k)
		})
	}

	e.started.Add(context.Background(), 1, metric.WithAttributes(attribute.String("route", string(r.RouteID))))
	e.log.Debug("animation started", "route", r.RouteID, "steps", len(s.positions)-1, "stepDelay", e.cfg.StepDelay)
	return true, nil
}

// Deactivate ends the running session, if any.
func (e *Engine) Deactivate() {
	e.cancelCurrent("route deactivated")
}

// Close ends the running session when the owning view goes away.
func (e *Engine) Close() {
	e.cancelCurrent("view closed")
}

func (e *Engine) cancelCurrent(reason string) {
	s := e.session
	if s == nil {
		return
	}
	e.session = nil

	if errs := s.Cancel(); len(errs) > 0 {
		e.log.Warn("animation cleanup incomplete", "route", s.route.RouteID, "error", errors.Join(errs...))
	}
	e.cancelled.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("route", string(s.route.RouteID)),
		attribute.String("reason", reason),
	))
	e.log.Debug("animation cancelled", "route", s.route.RouteID, "reason", reason, "drawn", s.drawn)
}

// step draws segment k-1→k, moves the vessel to position k and pans if that
// position is off screen. The vessel never moves ahead of the drawn course.
func (e *Engine) step(s *Session, k int) {
	if s.cancelled || e.session != s {
		e.stale.Add(context.Background(), 1)
		e.log.Debug("discarding stale animation step", "route", s.route.RouteID, "step", k)
		return
	}
	delete(s.pending, k)

	prev, pos := s.positions[k-1], s.positions[k]

	h, err := e.surface.AddPolyline([]core.Position{prev, pos}, e.cfg.SegmentStyle)
	if err != nil {
		e.log.Warn("drawing route segment failed, stopping animation", "route", s.route.RouteID, "step", k, "error", err)
		e.halt(s)
		return
	}
	s.segments = append(s.segments, h)
	s.drawn++
	e.segments.Add(context.Background(), 1)

	if err := e.surface.MoveMarker(s.vessel, pos); err != nil {
		e.log.Warn("moving vessel failed", "route", s.route.RouteID, "step", k, "error", err)
	}

	if !e.surface.Bounds().Contains(pos) {
		if err := e.surface.PanTo(pos); err != nil {
			e.log.Warn("panning to vessel failed", "route", s.route.RouteID, "step", k, "error", err)
		}
	}

	if len(s.pending) == 0 {
		s.state = StateDraining
		e.log.Debug("animation complete", "route", s.route.RouteID, "segments", s.drawn)
	}
}

// halt stops the remaining steps but keeps what was drawn.
func (e *Engine) halt(s *Session) {
	for k, t := range s.pending {
		t.Stop()
		delete(s.pending, k)
	}
	s.state = StateDraining
}
