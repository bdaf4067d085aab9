package storage

import (
	"fmt"
	"sync"

	"github.com/riadevigo/buoyplanner/pkg/core"
)

// Memory keeps waypoints in a map plus an insertion-order index.
type Memory struct {
	mu        sync.RWMutex
	waypoints map[string]core.Waypoint
	order     []string
}

// NewMemory creates an empty memory backend
func NewMemory() *Memory {
	return &Memory{
		waypoints: make(map[string]core.Waypoint),
	}
}

// Init initializes the backend
func (b *Memory) Init() error {
	return nil
}

// Close cleans up resources
func (b *Memory) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.waypoints = make(map[string]core.Waypoint)
	b.order = nil
	return nil
}

// LoadWaypoints returns a copy of the stored waypoints
func (b *Memory) LoadWaypoints() ([]core.Waypoint, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.Waypoint, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.waypoints[id])
	}
	return out, nil
}

// SaveWaypoint stores w. Waypoints are immutable, so saving an existing ID fails.
func (b *Memory) SaveWaypoint(w *core.Waypoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.waypoints[w.ID]; ok {
		return fmt.Errorf("waypoint %s already stored", w.ID)
	}
	b.waypoints[w.ID] = *w
	b.order = append(b.order, w.ID)
	return nil
}

// DeleteWaypoint removes a waypoint by ID
func (b *Memory) DeleteWaypoint(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.waypoints[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(b.waypoints, id)
	for i, o := range b.order {
		if o == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}
