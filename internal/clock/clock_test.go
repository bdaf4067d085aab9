package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_FiresInDueOrder(t *testing.T) {
	m := NewManual()
	var got []string
	var at []time.Duration

	m.AfterFunc(3*time.Second, func() { got = append(got, "c"); at = append(at, m.Now()) })
	m.AfterFunc(1*time.Second, func() { got = append(got, "a"); at = append(at, m.Now()) })
	m.AfterFunc(2*time.Second, func() { got = append(got, "b"); at = append(at, m.Now()) })

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 1500*time.Millisecond, m.Now())

	m.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, at)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_StopPreventsCallback(t *testing.T) {
	m := NewManual()
	fired := false

	timer := m.AfterFunc(time.Second, func() { fired = true })
	require.Equal(t, 1, m.Pending())

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports nothing to stop")

	m.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_StopAfterFire(t *testing.T) {
	m := NewManual()
	timer := m.AfterFunc(time.Second, func() {})
	m.Advance(time.Second)
	assert.False(t, timer.Stop())
}

func TestManual_CallbackSchedulesMore(t *testing.T) {
	m := NewManual()
	var got []int

	m.AfterFunc(time.Second, func() {
		got = append(got, 1)
		m.AfterFunc(time.Second, func() { got = append(got, 2) })
	})

	m.Advance(3 * time.Second)
	assert.Equal(t, []int{1, 2}, got)
}

func TestManual_EqualDueKeepsScheduleOrder(t *testing.T) {
	m := NewManual()
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		m.AfterFunc(time.Second, func() { got = append(got, i) })
	}
	m.Advance(time.Second)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestReal_AfterFunc(t *testing.T) {
	done := make(chan struct{})
	Real{}.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}

func TestManual_CallbackStopsTimerDueAtSameInstant(t *testing.T) {
	m := NewManual()
	var got []string

	var second Timer
	m.AfterFunc(time.Second, func() {
		got = append(got, "first")
		assert.True(t, second.Stop(), "expired but not yet run counts as stopped")
	})
	second = m.AfterFunc(time.Second, func() { got = append(got, "second") })

	m.Advance(time.Second)
	assert.Equal(t, []string{"first"}, got)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_ZeroDelayRunsOnNextAdvance(t *testing.T) {
	m := NewManual()
	fired := false
	m.AfterFunc(0, func() { fired = true })

	assert.False(t, fired, "callbacks only run inside Advance")
	m.Advance(0)
	assert.True(t, fired)
	assert.Equal(t, time.Duration(0), m.Now())
}
