// Package surface defines the map rendering surface the view draws on.
package surface

import (
	"errors"

	"github.com/riadevigo/buoyplanner/internal/geo"
	"github.com/riadevigo/buoyplanner/pkg/core"
)

// ErrUnknownHandle is returned when an operation names a layer the surface does not hold.
var ErrUnknownHandle = errors.New("unknown layer handle")

// Handle identifies a layer created on a surface. The zero Handle is never issued.
type Handle uint64

// Surface is an external, mutable map widget. Implementations are not required
// to be safe for concurrent use; callers confine them to the view's event loop.
// Callers only ever remove handles they created themselves.
type Surface interface {
	AddMarker(pos core.Position, style MarkerStyle) (Handle, error)
	MoveMarker(h Handle, pos core.Position) error
	AddPolyline(path []core.Position, style LineStyle) (Handle, error)
	AddCircle(center core.Position, radiusMeters float64, style CircleStyle) (Handle, error)
	AddTooltip(pos core.Position, text string, style TooltipStyle) (Handle, error)
	Remove(h Handle) error

	// Bounds returns the currently visible rectangle.
	Bounds() geo.Bounds
	Zoom() float64
	// PanTo recentres the view without changing the zoom.
	PanTo(pos core.Position) error
	FlyTo(pos core.Position, zoom float64) error
	// Invalidate recomputes the size of the map container.
	Invalidate()
}
