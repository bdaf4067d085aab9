// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/riadevigo/buoyplanner/pkg/core"
)

// ErrNotFound is returned when a waypoint ID is not stored.
var ErrNotFound = errors.New("waypoint not found")

// Backend is the interface all storage implementations must satisfy.
// Backends only live for the session; nothing survives a restart.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// LoadWaypoints returns every stored waypoint in insertion order.
	LoadWaypoints() ([]core.Waypoint, error)
	SaveWaypoint(w *core.Waypoint) error
	DeleteWaypoint(id string) error
}
