// Package headless implements surface.Surface in memory. It keeps a real Web
// Mercator viewport so bounds checks behave like a browser map, and exports its
// layers as GeoJSON.
package headless

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/riadevigo/buoyplanner/internal/geo"
	"github.com/riadevigo/buoyplanner/internal/surface"
	"github.com/riadevigo/buoyplanner/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Kind is the type of a layer.
type Kind string

const (
	KindMarker   Kind = "marker"
	KindPolyline Kind = "polyline"
	KindCircle   Kind = "circle"
	KindTooltip  Kind = "tooltip"
)

// Config holds the initial viewport.
type Config struct {
	Center core.Position
	Zoom   float64
	Width  int
	Height int
}

// Layer is a copy of one layer held by the surface.
type Layer struct {
	Handle surface.Handle
	Kind   Kind
	Path   []core.Position
	Radius float64
	Text   string
	Style  any
}

// Surface is an in-memory map. It is safe for concurrent use so snapshots can
// be taken from outside the view's loop.
type Surface struct {
	mu sync.Mutex

	center core.Position
	zoom   float64
	width  int
	height int

	next   surface.Handle
	layers map[surface.Handle]*Layer

	pans          int
	flights       int
	invalidations int
}

// New creates an empty surface showing cfg's viewport.
func New(cfg Config) *Surface {
	if cfg.Width <= 0 {
		cfg.Width = 1024
	}
	if cfg.Height <= 0 {
		cfg.Height = 768
	}
	return &Surface{
		center: cfg.Center,
		zoom:   cfg.Zoom,
		width:  cfg.Width,
		height: cfg.Height,
		layers: make(map[surface.Handle]*Layer),
	}
}

var _ surface.Surface = (*Surface)(nil)

func (s *Surface) add(l *Layer) surface.Handle {
	s.next++
	l.Handle = s.next
	s.layers[l.Handle] = l
	return l.Handle
}

// AddMarker places a point marker.
func (s *Surface) AddMarker(pos core.Position, style surface.MarkerStyle) (surface.Handle, error) {
	if !pos.Valid() {
		return 0, fmt.Errorf("marker position out of range: %s", pos)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(&Layer{Kind: KindMarker, Path: []core.Position{pos}, Style: style}), nil
}

// MoveMarker repositions an existing marker.
func (s *Surface) MoveMarker(h surface.Handle, pos core.Position) error {
	if !pos.Valid() {
		return fmt.Errorf("marker position out of range: %s", pos)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.layers[h]
	if !ok || l.Kind != KindMarker {
		return fmt.Errorf("%w: marker %d", surface.ErrUnknownHandle, h)
	}
	l.Path = []core.Position{pos}
	return nil
}

// AddPolyline draws a line through path.
func (s *Surface) AddPolyline(path []core.Position, style surface.LineStyle) (surface.Handle, error) {
	if _, err := geo.LineString(path); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(&Layer{Kind: KindPolyline, Path: append([]core.Position(nil), path...), Style: style}), nil
}

// AddCircle draws a circle with a radius in metres.
func (s *Surface) AddCircle(center core.Position, radiusMeters float64, style surface.CircleStyle) (surface.Handle, error) {
	if !center.Valid() {
		return 0, fmt.Errorf("circle center out of range: %s", center)
	}
	if radiusMeters < 0 {
		return 0, fmt.Errorf("negative circle radius %v", radiusMeters)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(&Layer{Kind: KindCircle, Path: []core.Position{center}, Radius: radiusMeters, Style: style}), nil
}

// AddTooltip anchors a text label at pos.
func (s *Surface) AddTooltip(pos core.Position, text string, style surface.TooltipStyle) (surface.Handle, error) {
	if !pos.Valid() {
		return 0, fmt.Errorf("tooltip position out of range: %s", pos)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(&Layer{Kind: KindTooltip, Path: []core.Position{pos}, Text: text, Style: style}), nil
}

// Remove deletes a layer.
func (s *Surface) Remove(h surface.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layers[h]; !ok {
		return fmt.Errorf("%w: %d", surface.ErrUnknownHandle, h)
	}
	delete(s.layers, h)
	return nil
}

// Bounds returns the visible rectangle for the current center and zoom.
func (s *Surface) Bounds() geo.Bounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return geo.Viewport(s.center, s.zoom, s.width, s.height)
}

// Zoom returns the current zoom level.
func (s *Surface) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// Center returns the current view center.
func (s *Surface) Center() core.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center
}

// PanTo recentres without zooming.
func (s *Surface) PanTo(pos core.Position) error {
	if !pos.Valid() {
		return fmt.Errorf("pan target out of range: %s", pos)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = pos
	s.pans++
	return nil
}

// FlyTo recentres and sets the zoom.
func (s *Surface) FlyTo(pos core.Position, zoom float64) error {
	if !pos.Valid() {
		return fmt.Errorf("fly target out of range: %s", pos)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = pos
	s.zoom = zoom
	s.flights++
	return nil
}

// Invalidate records a container resize.
func (s *Surface) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidations++
}

// Resize changes the container size in pixels.
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.invalidations++
}

// Snapshot returns a copy of every layer ordered by creation.
func (s *Surface) Snapshot() []Layer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Layer, 0, len(s.layers))
	for _, l := range s.layers {
		c := *l
		c.Path = append([]core.Position(nil), l.Path...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// Count returns the number of layers of the given kind.
func (s *Surface) Count(kind Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, l := range s.layers {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

// Stats reports how often the view was moved.
func (s *Surface) Stats() (pans, flights, invalidations int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pans, s.flights, s.invalidations
}

// GeoJSON exports all layers as a FeatureCollection.
func (s *Surface) GeoJSON() ([]byte, error) {
	layers := s.Snapshot()

	fc := make(geom.GeoJSONFeatureCollection, 0, len(layers))
	for _, l := range layers {
		props := map[string]interface{}{"kind": string(l.Kind)}

		var g geom.Geometry
		switch l.Kind {
		case KindPolyline:
			ls, err := geo.LineString(l.Path)
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", l.Handle, err)
			}
			g = ls.AsGeometry()
		default:
			g = geo.Point(l.Path[0]).AsGeometry()
		}

		switch l.Kind {
		case KindCircle:
			props["radius"] = l.Radius
		case KindTooltip:
			props["text"] = l.Text
		}

		fc = append(fc, geom.GeoJSONFeature{
			Geometry:   g,
			ID:         uint64(l.Handle),
			Properties: props,
		})
	}

	return json.Marshal(fc)
}
