// Package tracker turns one-shot geolocation fixes into the live route start
// and keeps a single accuracy overlay on the map.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/riadevigo/buoyplanner/internal/surface"
	"github.com/riadevigo/buoyplanner/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// DefaultMinFocusZoom is the zoom a successful fix flies to at least.
	DefaultMinFocusZoom = 14.0
	// DefaultLabel prefixes the coordinates in the fix tooltip.
	DefaultLabel = "MAD MAX"
)

var (
	// ErrClosed is returned for results that arrive after Close.
	ErrClosed = errors.New("tracker closed")
	// ErrLoopStopped is returned when the event loop no longer accepts work.
	ErrLoopStopped = errors.New("event loop stopped")
)

// Geolocator performs one device location request.
type Geolocator interface {
	Locate(ctx context.Context) (core.Fix, error)
}

// Loop runs functions on the view's event loop.
type Loop interface {
	Post(fn func()) bool
}

// Config holds tracker presentation settings.
type Config struct {
	Label        string
	MinFocusZoom float64
	CircleStyle  surface.CircleStyle
	LabelStyle   surface.TooltipStyle
}

// Result is the outcome of one Locate call. Err is a *GeolocationError when
// the device request failed.
type Result struct {
	Fix core.Fix
	Err error
}

// Tracker state is confined to the event loop; only the geolocator call runs
// elsewhere.
type Tracker struct {
	surface surface.Surface
	geo     Geolocator
	loop    Loop
	cfg     Config
	log     *slog.Logger

	onStart func(core.Position)

	pair   OverlayPair
	last   *core.Fix
	closed bool

	requests metric.Int64Counter
	failures metric.Int64Counter
}

// New creates a Tracker. onStart receives every successful position.
func New(s surface.Surface, g Geolocator, loop Loop, cfg Config, onStart func(core.Position), log *slog.Logger) (*Tracker, error) {
	if cfg.Label == "" {
		cfg.Label = DefaultLabel
	}
	if cfg.MinFocusZoom <= 0 {
		cfg.MinFocusZoom = DefaultMinFocusZoom
	}
	if log == nil {
		log = slog.Default()
	}

	t := &Tracker{
		surface: s,
		geo:     g,
		loop:    loop,
		cfg:     cfg,
		log:     log,
		onStart: onStart,
	}

	m := meter()
	var err error
	t.requests, err = m.Int64Counter("tracker.requests",
		metric.WithDescription("Geolocation requests issued"))
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}
	t.failures, err = m.Int64Counter("tracker.failures",
		metric.WithDescription("Geolocation requests that failed"))
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}
	return t, nil
}

// Locate issues one geolocation request. The geolocator runs on its own
// goroutine; its result is applied on the event loop and then delivered on
// the returned channel. Concurrent calls race and the last result applied
// wins.
func (t *Tracker) Locate(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)
	t.requests.Add(ctx, 1)

	go func() {
		fix, err := t.geo.Locate(ctx)
		posted := t.loop.Post(func() {
			out <- t.apply(fix, err)
		})
		if !posted {
			out <- Result{Err: ErrLoopStopped}
		}
	}()
	return out
}

func (t *Tracker) apply(fix core.Fix, err error) Result {
	if t.closed {
		return Result{Fix: fix, Err: ErrClosed}
	}

	if err == nil && !fix.Position.Valid() {
		err = &GeolocationError{Reason: ReasonPositionUnavailable, Err: fmt.Errorf("position out of range: %s", fix.Position)}
	}
	if err != nil {
		ge := Classify(err)
		t.failures.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", string(ge.Reason))))
		t.log.Warn("geolocation failed", "reason", ge.Reason, "error", ge.Err)
		return Result{Err: ge}
	}

	f := fix
	t.last = &f
	if t.onStart != nil {
		t.onStart(fix.Position)
	}

	zoom := math.Max(t.surface.Zoom(), t.cfg.MinFocusZoom)
	if err := t.surface.FlyTo(fix.Position, zoom); err != nil {
		t.log.Warn("focusing on fix failed", "position", fix.Position, "error", err)
	}

	if err := t.pair.Replace(t.surface, fix, t.LabelText(fix.Position), t.cfg.CircleStyle, t.cfg.LabelStyle); err != nil {
		t.log.Warn("updating location overlay failed", "error", err)
	}

	t.log.Info("position acquired", "position", fix.Position, "accuracy", fix.Accuracy)
	return Result{Fix: fix}
}

// LabelText is the tooltip text for pos.
func (t *Tracker) LabelText(pos core.Position) string {
	return fmt.Sprintf("%s: %s", t.cfg.Label, pos)
}

// Last returns the most recent successful fix, or nil.
func (t *Tracker) Last() *core.Fix {
	return t.last
}

// Overlay returns the handles of the current overlay pair.
func (t *Tracker) Overlay() OverlayPair {
	return t.pair
}

// Close removes the overlay pair. Results arriving later are discarded.
func (t *Tracker) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.pair.Clear(t.surface)
}
