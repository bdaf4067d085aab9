// Package waypoint owns the session's buoy collection, the single source of
// truth every view derives from.
package waypoint

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/riadevigo/buoyplanner/internal/queue"
	"github.com/riadevigo/buoyplanner/internal/storage"
	"github.com/riadevigo/buoyplanner/pkg/core"
)

var (
	// ErrNotFound is returned when removing an unknown waypoint.
	ErrNotFound = errors.New("waypoint not found")
	// ErrInvalidDraft is returned for drafts that cannot become a waypoint.
	ErrInvalidDraft = errors.New("invalid waypoint")
)

// Draft is the user-supplied part of a new waypoint.
type Draft struct {
	Name        string
	Position    core.Position
	Description string
}

// Validate checks the draft before anything is stored.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDraft)
	}
	if !d.Position.Valid() {
		return fmt.Errorf("%w: position out of range: %s", ErrInvalidDraft, d.Position)
	}
	return nil
}

// Collection is safe for concurrent use. Subscribers receive the snapshot of
// every mutation, outside the lock, in mutation order. One goroutine delivers
// at a time; a mutation made while another delivery is running, including
// one made by a subscriber, is delivered by that running goroutine once the
// current snapshot has reached every subscriber.
type Collection struct {
	mu    sync.RWMutex
	items []core.Waypoint
	store storage.Backend

	subMu   sync.Mutex
	subs    map[int]func([]core.Waypoint)
	nextSub int

	deliverMu  sync.Mutex
	pending    *queue.Queue[[]core.Waypoint]
	delivering bool

	now func() time.Time
	log *slog.Logger
}

// NewCollection loads the waypoints already held by store.
func NewCollection(store storage.Backend, log *slog.Logger) (*Collection, error) {
	if log == nil {
		log = slog.Default()
	}
	items, err := store.LoadWaypoints()
	if err != nil {
		return nil, fmt.Errorf("loading waypoints: %w", err)
	}
	return &Collection{
		items: items,
		store: store,
		subs:    make(map[int]func([]core.Waypoint)),
		pending: queue.New[[]core.Waypoint](),
		now:     time.Now,
		log:   log,
	}, nil
}

// Create validates d, stores it under a fresh ID and notifies subscribers.
func (c *Collection) Create(d Draft) (core.Waypoint, error) {
	if err := d.Validate(); err != nil {
		return core.Waypoint{}, err
	}

	w := core.Waypoint{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(d.Name),
		Position:    d.Position,
		Description: strings.TrimSpace(d.Description),
		CreatedAt:   c.now(),
	}

	c.mu.Lock()
	if err := c.store.SaveWaypoint(&w); err != nil {
		c.mu.Unlock()
		return core.Waypoint{}, fmt.Errorf("storing waypoint: %w", err)
	}
	c.items = append(c.snapshotLocked(), w)
	c.pending.Push(c.snapshotLocked())
	c.mu.Unlock()

	c.log.Debug("waypoint created", "id", w.ID, "name", w.Name, "position", w.Position)
	c.deliver()
	return w, nil
}

// Remove deletes a waypoint by ID.
func (c *Collection) Remove(id string) error {
	c.mu.Lock()
	idx := -1
	for i, w := range c.items {
		if w.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := c.store.DeleteWaypoint(id); err != nil && !storage.IsNotFound(err) {
		c.mu.Unlock()
		return fmt.Errorf("deleting waypoint: %w", err)
	}

	next := make([]core.Waypoint, 0, len(c.items)-1)
	next = append(next, c.items[:idx]...)
	next = append(next, c.items[idx+1:]...)
	c.items = next
	c.pending.Push(c.snapshotLocked())
	c.mu.Unlock()

	c.log.Debug("waypoint removed", "id", id)
	c.deliver()
	return nil
}

// Snapshot returns a copy of the collection in insertion order.
func (c *Collection) Snapshot() []core.Waypoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Collection) snapshotLocked() []core.Waypoint {
	return append([]core.Waypoint(nil), c.items...)
}

// Get returns the waypoint with the given ID.
func (c *Collection) Get(id string) (core.Waypoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, w := range c.items {
		if w.ID == id {
			return w, true
		}
	}
	return core.Waypoint{}, false
}

// FindByName returns the first waypoint called name.
func (c *Collection) FindByName(name string) (core.Waypoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, w := range c.items {
		if w.Name == name {
			return w, true
		}
	}
	return core.Waypoint{}, false
}

// Len returns the number of waypoints.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Subscribe registers fn for change notifications. The returned function
// unregisters it.
func (c *Collection) Subscribe(fn func([]core.Waypoint)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

// deliver hands queued snapshots to the subscribers unless another goroutine
// is already doing so.
func (c *Collection) deliver() {
	c.deliverMu.Lock()
	if c.delivering {
		c.deliverMu.Unlock()
		return
	}
	c.delivering = true

	for {
		snap, ok := c.pending.Pop()
		if !ok {
			c.delivering = false
			c.deliverMu.Unlock()
			return
		}
		c.deliverMu.Unlock()
		c.notify(snap)
		c.deliverMu.Lock()
	}
}

func (c *Collection) notify(snap []core.Waypoint) {
	c.subMu.Lock()
	fns := make([]func([]core.Waypoint), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
