// Package clock abstracts deferred callbacks so timelines can run against the
// wall clock in production and a manual clock in tests.
package clock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a scheduled callback that can be stopped before it fires.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer; false means it already fired or was stopped.
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Real schedules on the runtime timer, running f on its own goroutine.
type Real struct{}

var realClock = clockwork.NewRealClock()

// AfterFunc schedules f on the system clock.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return realClock.AfterFunc(d, f)
}

// Manual is a deterministic scheduler driven by Advance. Time is kept by a
// clockwork fake clock. Callbacks run synchronously on the goroutine calling
// Advance, in due-time order and, for equal due times, in scheduling order.
type Manual struct {
	fake  *clockwork.FakeClock
	start time.Time

	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	m     *Manual
	timer clockwork.Timer
	due   time.Time
	f     func()
	done  bool
}

// NewManual creates a manual clock at offset zero.
func NewManual() *Manual {
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return &Manual{fake: clockwork.NewFakeClockAt(start), start: start}
}

// AfterFunc registers f to run once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTimer{
		m:     m,
		timer: m.fake.NewTimer(d),
		due:   m.fake.Now().Add(d),
		f:     f,
	}
	m.timers = append(m.timers, t)
	return t
}

// Stop cancels the timer if its callback has not run yet.
func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.timer.Stop()
	return true
}

// Advance moves the clock forward by d, running every callback that becomes
// due, including callbacks scheduled by earlier callbacks.
func (m *Manual) Advance(d time.Duration) {
	target := m.fake.Now().Add(d)

	for {
		next, ok := m.nextDue(target)
		if !ok {
			break
		}
		m.fake.Advance(next.Sub(m.fake.Now()))
		for _, t := range m.expired() {
			m.run(t)
		}
	}
	m.fake.Advance(target.Sub(m.fake.Now()))
}

// nextDue returns the earliest due time of a live timer not after target.
func (m *Manual) nextDue(target time.Time) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var next time.Time
	found := false
	for _, t := range m.timers {
		if t.done || t.due.After(target) {
			continue
		}
		if !found || t.due.Before(next) {
			next, found = t.due, true
		}
	}
	return next, found
}

// expired collects, in scheduling order, the timers whose clockwork timer has
// fired, and forgets finished ones.
func (m *Manual) expired() []*manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*manualTimer
	live := m.timers[:0]
	for _, t := range m.timers {
		if t.done {
			continue
		}
		select {
		case <-t.timer.Chan():
			out = append(out, t)
		default:
			live = append(live, t)
		}
	}
	clear(m.timers[len(live):])
	m.timers = live
	return out
}

// run invokes t unless an earlier callback in the same batch stopped it.
func (m *Manual) run(t *manualTimer) {
	m.mu.Lock()
	if t.done {
		m.mu.Unlock()
		return
	}
	t.done = true
	m.mu.Unlock()

	t.f()
}

// Now returns the elapsed manual time.
func (m *Manual) Now() time.Duration {
	return m.fake.Since(m.start)
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.timers {
		if !t.done {
			n++
		}
	}
	return n
}
