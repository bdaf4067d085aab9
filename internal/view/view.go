// Package view binds the waypoint collection, route selection and live
// position to one map surface. A MapView is confined to its event loop: every
// method except Surface must run there.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riadevigo/buoyplanner/internal/cache"
	"github.com/riadevigo/buoyplanner/internal/clock"
	"github.com/riadevigo/buoyplanner/internal/route"
	"github.com/riadevigo/buoyplanner/internal/surface"
	"github.com/riadevigo/buoyplanner/internal/timeline"
	"github.com/riadevigo/buoyplanner/internal/tracker"
	"github.com/riadevigo/buoyplanner/internal/waypoint"
	"github.com/riadevigo/buoyplanner/pkg/core"
)

var (
	// ErrSurfaceNotReady is returned by operations that need the map before
	// it has been attached.
	ErrSurfaceNotReady = errors.New("map surface not ready")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("view closed")
)

// Loop is the event loop the view and its timers run on.
type Loop interface {
	Post(fn func()) bool
	AfterFunc(d time.Duration, f func()) clock.Timer
}

// Config holds the view's behaviour and presentation settings.
type Config struct {
	Definitions   route.Definitions
	FallbackStart string
	LiveLabel     string
	SelectZoom    float64
	MinFocusZoom  float64
	StepDelay     time.Duration
	Styles        surface.Styles
}

// MapView owns the single animation session and location overlay of a map.
type MapView struct {
	loop      Loop
	waypoints *waypoint.Collection
	geo       tracker.Geolocator
	cfg       Config
	log       *slog.Logger

	ready   chan struct{}
	surface surface.Surface
	engine  *timeline.Engine
	tracker *tracker.Tracker

	resolver *route.Resolver
	markers  *cache.MarkerCache

	active      core.RouteID
	items       []core.Waypoint
	liveStart   *core.Position
	resolved    *route.Resolved
	selected    string
	sidebarOpen bool

	unsubscribe func()
	closed      bool
}

// New creates a view over waypoints. The view follows collection changes
// from the moment it is created; the map itself is attached later.
func New(loop Loop, waypoints *waypoint.Collection, geo tracker.Geolocator, cfg Config, log *slog.Logger) *MapView {
	if cfg.Definitions == nil {
		cfg.Definitions = route.DefaultDefinitions()
	}
	if cfg.LiveLabel == "" {
		cfg.LiveLabel = route.DefaultLiveLabel
	}
	if cfg.SelectZoom <= 0 {
		cfg.SelectZoom = 15
	}
	if log == nil {
		log = slog.Default()
	}

	v := &MapView{
		loop:      loop,
		waypoints: waypoints,
		geo:       geo,
		cfg:       cfg,
		log:       log,
		ready:     make(chan struct{}),
		resolver:  route.NewResolver(cfg.Definitions),
		markers:   cache.NewMarkerCache(),
		active:    core.RouteAll,
		items:     waypoints.Snapshot(),
	}
	v.unsubscribe = waypoints.Subscribe(func(ws []core.Waypoint) {
		loop.Post(func() { v.WaypointsChanged(ws) })
	})
	if err := v.refresh(); err != nil {
		v.log.Warn("initial route resolution failed", "error", err)
	}
	return v
}

// AttachSurface completes the asynchronous map initialisation. The engine
// and tracker are created here and the current state is drawn.
func (v *MapView) AttachSurface(s surface.Surface) error {
	if v.closed {
		return ErrClosed
	}
	if v.surface != nil {
		return errors.New("surface already attached")
	}

	engine, err := timeline.New(s, v.loop, timeline.Config{
		StepDelay:    v.cfg.StepDelay,
		VesselStyle:  v.cfg.Styles.Vessel,
		SegmentStyle: v.cfg.Styles.Segment,
	}, v.log.With("component", "timeline"))
	if err != nil {
		return fmt.Errorf("creating timeline engine: %w", err)
	}

	tr, err := tracker.New(s, v.geo, v.loop, tracker.Config{
		Label:        v.cfg.LiveLabel,
		MinFocusZoom: v.cfg.MinFocusZoom,
		CircleStyle:  v.cfg.Styles.Accuracy,
		LabelStyle:   v.cfg.Styles.Label,
	}, v.SetLiveStart, v.log.With("component", "tracker"))
	if err != nil {
		return fmt.Errorf("creating tracker: %w", err)
	}

	v.surface = s
	v.engine = engine
	v.tracker = tr
	close(v.ready)

	v.log.Debug("map surface attached")
	return v.refresh()
}

// Surface waits until the map is attached. It may be called from any goroutine.
func (v *MapView) Surface(ctx context.Context) (surface.Surface, error) {
	select {
	case <-v.ready:
		return v.surface, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ready reports whether the map is attached.
func (v *MapView) Ready() bool {
	return v.surface != nil
}

// SelectRoute makes id the active route. Selecting "all" stops any animation.
func (v *MapView) SelectRoute(id core.RouteID) error {
	if v.closed {
		return ErrClosed
	}
	if id != core.RouteAll {
		if _, ok := v.cfg.Definitions[id]; !ok {
			return fmt.Errorf("%w: %s", route.ErrUnknownRoute, id)
		}
	}
	v.active = id
	return v.refresh()
}

// SetLiveStart records the vessel's live position as the start of every
// route. It stays set for the rest of the session.
func (v *MapView) SetLiveStart(pos core.Position) {
	if v.closed {
		return
	}
	p := pos
	v.liveStart = &p
	if err := v.refresh(); err != nil {
		v.log.Warn("route resolution failed", "error", err)
	}
}

// WaypointsChanged replaces the view's copy of the collection.
func (v *MapView) WaypointsChanged(ws []core.Waypoint) {
	if v.closed {
		return
	}
	v.items = ws
	if v.selected != "" && !containsID(ws, v.selected) {
		v.selected = ""
	}
	if err := v.refresh(); err != nil {
		v.log.Warn("route resolution failed", "error", err)
	}
}

// SelectWaypoint focuses the map on one waypoint.
func (v *MapView) SelectWaypoint(id string) error {
	if v.closed {
		return ErrClosed
	}
	if v.surface == nil {
		return ErrSurfaceNotReady
	}
	for _, w := range v.items {
		if w.ID == id {
			v.selected = id
			return v.surface.FlyTo(w.Position, v.cfg.SelectZoom)
		}
	}
	return fmt.Errorf("%w: %s", waypoint.ErrNotFound, id)
}

// SetSidebarOpen records the side panel state; the map container changes
// size so the surface is invalidated.
func (v *MapView) SetSidebarOpen(open bool) {
	if v.closed {
		return
	}
	v.sidebarOpen = open
	if v.surface != nil {
		v.surface.Invalidate()
	}
}

// Locate asks the tracker for the current position.
func (v *MapView) Locate(ctx context.Context) (<-chan tracker.Result, error) {
	if v.closed {
		return nil, ErrClosed
	}
	if v.tracker == nil {
		return nil, ErrSurfaceNotReady
	}
	return v.tracker.Locate(ctx), nil
}

// Close tears the view down: animation, location overlay and markers.
func (v *MapView) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	v.unsubscribe()

	var errs []error
	if v.engine != nil {
		v.engine.Close()
	}
	if v.tracker != nil {
		if err := v.tracker.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, h := range v.markers.Reset() {
		if err := v.surface.Remove(h); err != nil {
			errs = append(errs, err)
		}
	}
	v.log.Debug("view closed")
	return errors.Join(errs...)
}

// ActiveRoute returns the selected route.
func (v *MapView) ActiveRoute() core.RouteID {
	return v.active
}

// Resolved returns the current resolved route.
func (v *MapView) Resolved() *route.Resolved {
	return v.resolved
}

// LiveStart returns the live start position, or nil.
func (v *MapView) LiveStart() *core.Position {
	return v.liveStart
}

// Selected returns the focused waypoint ID.
func (v *MapView) Selected() string {
	return v.selected
}

// SidebarOpen reports the side panel state.
func (v *MapView) SidebarOpen() bool {
	return v.sidebarOpen
}

// Engine returns the timeline engine, nil before the surface is attached.
func (v *MapView) Engine() *timeline.Engine {
	return v.engine
}

// StartLabel names the first point of every route.
func (v *MapView) StartLabel() string {
	return route.StartLabel(v.liveStart != nil, v.cfg.LiveLabel, v.cfg.FallbackStart)
}

// Catalog lists the selectable routes.
func (v *MapView) Catalog() []route.Entry {
	return route.Catalog(v.cfg.Definitions, v.StartLabel())
}

// Visible returns the waypoints shown for the active route.
func (v *MapView) Visible() []core.Waypoint {
	return route.Visible(v.cfg.Definitions, v.active, v.items)
}

// refresh re-derives the resolved route and brings the map in line with it.
// The engine restarts only when the resolved route changes identity.
func (v *MapView) refresh() error {
	r, err := v.resolver.Resolve(v.active, v.items, v.liveStart, v.fallbackStart())
	if err != nil {
		return err
	}
	v.resolved = r

	if v.surface == nil {
		return nil
	}
	v.reconcileMarkers()

	if v.active == core.RouteAll {
		v.engine.Deactivate()
		return nil
	}
	if _, err := v.engine.Activate(r); err != nil {
		return fmt.Errorf("starting animation: %w", err)
	}
	return nil
}

func (v *MapView) fallbackStart() *core.Position {
	if v.cfg.FallbackStart == "" {
		return nil
	}
	for _, w := range v.items {
		if w.Name == v.cfg.FallbackStart {
			p := w.Position
			return &p
		}
	}
	return nil
}

// reconcileMarkers keeps exactly one marker per visible waypoint.
func (v *MapView) reconcileMarkers() {
	visible := v.Visible()
	want := make(map[string]core.Waypoint, len(visible))
	for _, w := range visible {
		want[w.ID] = w
	}

	for _, id := range v.markers.IDs() {
		if _, ok := want[id]; ok {
			continue
		}
		h, _ := v.markers.Get(id)
		if err := v.surface.Remove(h); err != nil {
			v.log.Warn("removing waypoint marker failed", "id", id, "error", err)
		}
		v.markers.Delete(id)
	}

	for _, w := range visible {
		if _, ok := v.markers.Get(w.ID); ok {
			continue
		}
		h, err := v.surface.AddMarker(w.Position, v.cfg.Styles.Waypoint)
		if err != nil {
			v.log.Warn("adding waypoint marker failed", "id", w.ID, "name", w.Name, "error", err)
			continue
		}
		v.markers.Set(w.ID, h)
	}
}

func containsID(ws []core.Waypoint, id string) bool {
	for _, w := range ws {
		if w.ID == id {
			return true
		}
	}
	return false
}
