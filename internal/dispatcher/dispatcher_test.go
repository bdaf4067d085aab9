package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

func (l *testLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func newRunningDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	logger := &testLogger{}

	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-d.Done()
	})

	return d, logger
}

func TestDispatcher_DispatchRunsHandler(t *testing.T) {
	d, _ := newRunningDispatcher(t)

	called := false
	d.Register("route", func(e Event) (any, error) {
		called = true
		return "selected " + e.Args[0], nil
	})

	result, err := d.Dispatch(context.Background(), Event{Command: "route", Args: []string{"numeral1"}})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !called {
		t.Error("handler was not called")
	}
	if result != "selected numeral1" {
		t.Errorf("expected 'selected numeral1', got %v", result)
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newRunningDispatcher(t)

	_, err := d.Dispatch(context.Background(), Event{Command: "nope"})

	if err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestDispatcher_HandlerError(t *testing.T) {
	d, logger := newRunningDispatcher(t)

	d.Register("fail", func(e Event) (any, error) {
		return nil, errors.New("boom")
	}, Logged())

	_, err := d.Dispatch(context.Background(), Event{Command: "fail"})
	if err == nil || err.Error() != "boom" {
		t.Errorf("expected handler error, got %v", err)
	}
	if !logger.contains("event failed") {
		t.Error("expected failure to be logged")
	}
}

func TestDispatcher_TasksRunInPostOrder(t *testing.T) {
	d, _ := newRunningDispatcher(t)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		d.Post(func() { got = append(got, i) })
	}
	if err := d.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if len(got) != 100 {
		t.Fatalf("expected 100 tasks, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
}

func TestDispatcher_PostFromLoopDoesNotBlock(t *testing.T) {
	d, _ := newRunningDispatcher(t)

	var order []string
	err := d.Do(context.Background(), func() {
		order = append(order, "outer")
		for i := 0; i < 1000; i++ {
			d.Post(func() {})
		}
		d.Post(func() { order = append(order, "inner") })
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if err := d.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if len(order) != 2 || order[1] != "inner" {
		t.Errorf("expected outer then inner, got %v", order)
	}
}

func TestDispatcher_AfterFuncRunsOnLoop(t *testing.T) {
	d, _ := newRunningDispatcher(t)

	fired := make(chan struct{})
	d.AfterFunc(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer callback was not run")
	}
}

func TestDispatcher_AfterFuncStopped(t *testing.T) {
	d, _ := newRunningDispatcher(t)

	fired := false
	timer := d.AfterFunc(20*time.Millisecond, func() { fired = true })
	if !timer.Stop() {
		t.Fatal("expected Stop to cancel a pending timer")
	}

	time.Sleep(50 * time.Millisecond)
	if err := d.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if fired {
		t.Error("stopped timer callback ran")
	}
}

func TestDispatcher_StoppedRejectsWork(t *testing.T) {
	logger := &testLogger{}
	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	d.Start(context.Background())
	d.Stop()
	d.Stop()
	<-d.Done()

	if d.Post(func() {}) {
		t.Error("expected Post to fail after Stop")
	}
	if err := d.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestDispatcher_HasHandler(t *testing.T) {
	d, _ := newRunningDispatcher(t)

	d.Register("locate", func(e Event) (any, error) { return nil, nil })

	if !d.HasHandler("locate") {
		t.Error("expected HasHandler to return true")
	}
	if d.HasHandler("other") {
		t.Error("expected HasHandler to return false")
	}
}
