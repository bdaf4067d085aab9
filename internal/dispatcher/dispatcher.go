// Package dispatcher provides the single serial event loop that owns all map
// view state. Commands, timer callbacks and asynchronous results are queued
// and run one at a time on the loop goroutine.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/riadevigo/buoyplanner/internal/clock"
	"github.com/riadevigo/buoyplanner/internal/queue"
	"go.opentelemetry.io/otel/metric"
)

// ErrStopped is returned when work is submitted to a loop that is not running anymore.
var ErrStopped = errors.New("dispatcher stopped")

// Event represents a user command addressed to the view.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// HandlerFunc processes an event on the loop goroutine and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	logged bool
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher is a serial executor. Tasks posted from any goroutine run in FIFO
// order on the goroutine executing Run. The queue is unbounded so timer
// callbacks and tasks posted from inside the loop never block.
type Dispatcher struct {
	logger Logger

	hmu      sync.RWMutex
	handlers map[string]HandlerFunc

	mu      sync.Mutex
	tasks   *queue.Queue[func()]
	stopped bool
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	rejected  metric.Int64Counter
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		logger:   logger,
		handlers: make(map[string]HandlerFunc),
		tasks:    queue.New[func()](),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of tasks waiting for the loop"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(d.queueSize, int64(d.tasks.Len()))
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.tasks.processed",
		metric.WithDescription("Total tasks run on the loop"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.rejected, err = m.Int64Counter(
		"dispatcher.tasks.rejected",
		metric.WithDescription("Total tasks posted after the loop stopped"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}

	return d, nil
}

// Run executes queued tasks until ctx is cancelled or Stop is called.
// Tasks still queued at that point are discarded.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.stop:
			return nil
		case <-d.wake:
		}

		for {
			task := d.next()
			if task == nil {
				break
			}
			task()
			d.processed.Add(context.Background(), 1)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-d.stop:
				return nil
			default:
			}
		}
	}
}

// Start runs the loop on a new goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("dispatcher loop exited", "error", err)
		}
	}()
}

// Stop ends the loop. It is safe to call more than once.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.stop) })
}

// Done is closed once the loop has exited.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) shutdown() {
	d.mu.Lock()
	d.stopped = true
	dropped := len(d.tasks.Drain())
	d.mu.Unlock()
	if dropped > 0 {
		d.logger.Debug("discarded queued tasks", "count", dropped)
	}
	close(d.done)
}

func (d *Dispatcher) next() func() {
	task, _ := d.tasks.Pop()
	return task
}

// Post queues fn to run on the loop. It reports false if the loop has stopped.
func (d *Dispatcher) Post(fn func()) bool {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		d.rejected.Add(context.Background(), 1)
		return false
	}
	d.tasks.Push(fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it to return. It must not be called from
// the loop goroutine itself.
func (d *Dispatcher) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !d.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc schedules fn to be posted to the loop after dur. The returned
// timer can be stopped from the loop before the callback is queued.
func (d *Dispatcher) AfterFunc(dur time.Duration, fn func()) clock.Timer {
	return clock.Real{}.AfterFunc(dur, func() {
		d.Post(fn)
	})
}

// Register adds a handler for the given command with optional configuration.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h
	if cfg.logged {
		handler = d.withLogging(command, handler)
	}

	d.hmu.Lock()
	d.handlers[command] = handler
	d.hmu.Unlock()
}

// HasHandler returns true if a handler is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	d.hmu.RLock()
	defer d.hmu.RUnlock()
	_, ok := d.handlers[command]
	return ok
}

// Dispatch runs the handler for e on the loop and waits for its result.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) (any, error) {
	d.hmu.RLock()
	h, ok := d.handlers[e.Command]
	d.hmu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	var (
		result any
		err    error
	)
	if doErr := d.Do(ctx, func() { result, err = h(e) }); doErr != nil {
		return nil, doErr
	}
	return result, err
}

func (d *Dispatcher) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "args", len(e.Args))

		result, err := h(e)

		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		}

		return result, err
	}
}
