// Package cache holds lookups the view needs between renders.
package cache

import (
	"sort"
	"sync"

	"github.com/riadevigo/buoyplanner/internal/surface"
)

// MarkerCache maps waypoint IDs to the surface layer drawing them
type MarkerCache struct {
	mu      sync.RWMutex
	markers map[string]surface.Handle
}

// NewMarkerCache creates a new MarkerCache
func NewMarkerCache() *MarkerCache {
	return &MarkerCache{
		markers: make(map[string]surface.Handle),
	}
}

// Get retrieves a layer handle by waypoint ID
func (c *MarkerCache) Get(id string) (surface.Handle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.markers[id]
	return h, ok
}

// Set stores a layer handle by waypoint ID
func (c *MarkerCache) Set(id string, h surface.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markers[id] = h
}

// Delete removes a waypoint entry
func (c *MarkerCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.markers, id)
}

// IDs returns the cached waypoint IDs in sorted order
func (c *MarkerCache) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.markers))
	for id := range c.markers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of cached markers
func (c *MarkerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.markers)
}

// Reset clears all markers from the cache and returns the handles it held
func (c *MarkerCache) Reset() []surface.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	handles := make([]surface.Handle, 0, len(c.markers))
	for _, h := range c.markers {
		handles = append(handles, h)
	}
	c.markers = make(map[string]surface.Handle)
	return handles
}
