package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nari/actlog/internal/actlog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrNoHandler is returned by Dispatch for line types nobody registered.
var ErrNoHandler = errors.New("no handler registered")

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("dispatcher closed")

// Event is one log line routed by its type code.
type Event struct {
	Line     actlog.Line
	Received time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes lines to the handler registered for their type code.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	processed metric.Int64Counter
	dropped   metric.Int64Counter
	failed    metric.Int64Counter
	queueSize metric.Int64ObservableGauge
	// queueCallback keeps the gauge callback, and so the dispatcher,
	// registered with the meter until Close
	queueCallback metric.Registration

	mu      sync.RWMutex
	buffers map[string]chan Event
	closed  bool
	wg      sync.WaitGroup
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		buffers:  make(map[string]chan Event),
		logger:   logger,
	}

	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"actlog.dispatcher.queue.size",
		metric.WithDescription("Current number of lines waiting in a handler queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	d.queueCallback, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for lineType, buf := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("line.type", lineType)))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"actlog.dispatcher.lines.processed",
		metric.WithDescription("Total lines handled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"actlog.dispatcher.lines.failed",
		metric.WithDescription("Total lines whose handler returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"actlog.dispatcher.lines.dropped",
		metric.WithDescription("Total lines dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given line type with optional configuration.
func (d *Dispatcher) Register(lineType string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.logged {
		handler = d.withLogging(lineType, handler)
	}

	if cfg.bufferSize > 0 {
		handler = d.withBuffer(lineType, cfg.bufferSize, cfg.blocking, handler)
	} else {
		handler = d.withCounting(lineType, handler)
	}

	d.handlers[lineType] = handler
}

// Dispatch routes an event to its registered handler.
// The read lock is held for the whole call so Close never closes a queue
// while a send is pending.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}

	h, ok := d.handlers[e.Line.Type]
	if !ok {
		return nil, fmt.Errorf("%w: line type %s", ErrNoHandler, e.Line.Type)
	}
	return h(e)
}

// HasHandler returns true if a handler is registered for the line type.
func (d *Dispatcher) HasHandler(lineType string) bool {
	_, ok := d.handlers[lineType]
	return ok
}

// Close stops accepting events and waits for buffered handlers to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, buf := range d.buffers {
		close(buf)
	}
	d.mu.Unlock()

	d.wg.Wait()

	if err := d.queueCallback.Unregister(); err != nil {
		d.logger.Error("Failed to unregister queue callback", "error", err)
	}
}

func (d *Dispatcher) withCounting(lineType string, h HandlerFunc) HandlerFunc {
	typeAttr := metric.WithAttributes(attribute.String("line.type", lineType))
	return func(e Event) (any, error) {
		result, err := h(e)
		d.processed.Add(context.Background(), 1, typeAttr)
		if err != nil {
			d.failed.Add(context.Background(), 1, typeAttr)
		}
		return result, err
	}
}

func (d *Dispatcher) withBuffer(lineType string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan Event, size)

	d.mu.Lock()
	d.buffers[lineType] = buffer
	d.mu.Unlock()

	counted := d.withCounting(lineType, h)
	typeAttr := metric.WithAttributes(attribute.String("line.type", lineType))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for e := range buffer {
			counted(e)
		}
	}()

	if blocking {
		return func(e Event) (any, error) {
			buffer <- e
			return "queued", nil
		}
	}

	return func(e Event) (any, error) {
		select {
		case buffer <- e:
			return "queued", nil
		default:
			d.dropped.Add(context.Background(), 1, typeAttr)
			return nil, fmt.Errorf("queue full: line type %s", lineType)
		}
	}
}

func (d *Dispatcher) withLogging(lineType string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling line", "type", lineType, "index", e.Line.Index, "fields", len(e.Line.Fields))

		result, err := h(e)

		if err != nil {
			d.logger.Error("line failed", "type", lineType, "index", e.Line.Index, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("line complete", "type", lineType, "index", e.Line.Index, "duration", time.Since(start))
		}

		return result, err
	}
}
