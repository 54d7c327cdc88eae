// Package eventbus carries pipeline progress notifications — stage
// start/completion and collected diagnostics — from the analyzer run to
// whatever is listening: obslog's structured logger, or a CLI flag that
// wants a live trace. It is a publish/subscribe bus with a sync and an
// async handler mode, narrowed to the handful of event names the
// pipeline actually raises.
package eventbus

import (
	"context"
	"fmt"
	"sync"
)

// Event is anything with a name and an arbitrary payload.
type Event interface {
	Name() string
}

// BaseEvent is the default Event implementation.
type BaseEvent struct {
	EventName string
	Payload   interface{}
}

func (e BaseEvent) Name() string { return e.EventName }

// New creates an Event with the given name and payload.
func New(name string, payload interface{}) Event {
	return BaseEvent{EventName: name, Payload: payload}
}

// Mode determines how a handler is executed.
type Mode int

const (
	// Sync executes the handler in the publisher's goroutine, in
	// registration order, before Publish returns.
	Sync Mode = iota
	// Async executes the handler in its own goroutine; Publish does not
	// wait for it.
	Async
)

// Handler processes one event.
type Handler func(ctx context.Context, event Event) error

// HandlerConfig configures how a single handler runs.
type HandlerConfig struct {
	Mode         Mode
	ErrorHandler func(err error, event Event, handlerName string)
}

func defaultErrorHandler(err error, event Event, handlerName string) {
	fmt.Printf("eventbus: handler %s failed for %s: %v\n", handlerName, event.Name(), err)
}

type registeredHandler struct {
	handler Handler
	config  HandlerConfig
	name    string
}

// Bus dispatches published events to every handler subscribed to that
// event's name.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]registeredHandler
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{
		handlers: make(map[string][]registeredHandler),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Subscribe registers handler for eventName under Sync mode with the
// default error handler.
func (b *Bus) Subscribe(eventName string, handler Handler) {
	b.SubscribeWithConfig(eventName, handler, HandlerConfig{Mode: Sync, ErrorHandler: defaultErrorHandler}, "")
}

// SubscribeWithConfig registers handler for eventName with a caller-chosen
// mode, error handler, and debug name.
func (b *Bus) SubscribeWithConfig(eventName string, handler Handler, config HandlerConfig, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if config.ErrorHandler == nil {
		config.ErrorHandler = defaultErrorHandler
	}
	if name == "" {
		name = fmt.Sprintf("%p", handler)
	}
	b.handlers[eventName] = append(b.handlers[eventName], registeredHandler{handler: handler, config: config, name: name})
}

// Publish dispatches event to every handler subscribed to its name,
// collecting errors from Sync handlers. Async handlers' errors only reach
// their own ErrorHandler.
func (b *Bus) Publish(ctx context.Context, event Event) []error {
	b.mu.RLock()
	handlers := append([]registeredHandler(nil), b.handlers[event.Name()]...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		switch h.config.Mode {
		case Async:
			go func(h registeredHandler) {
				if err := b.run(ctx, h, event); err != nil {
					h.config.ErrorHandler(err, event, h.name)
				}
			}(h)
		default:
			if err := b.run(ctx, h, event); err != nil {
				errs = append(errs, err)
				h.config.ErrorHandler(err, event, h.name)
			}
		}
	}
	return errs
}

func (b *Bus) run(ctx context.Context, h registeredHandler, event Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.ctx.Done():
		return b.ctx.Err()
	default:
	}
	return h.handler(ctx, event)
}

// Shutdown cancels the bus's internal context, signaling any in-flight
// async handlers to stop at their next context check.
func (b *Bus) Shutdown() {
	b.cancel()
}

// Pipeline event names.
const (
	StageStarted     = "pipeline.stage.started"
	StageCompleted   = "pipeline.stage.completed"
	DiagnosticRaised = "pipeline.diagnostic.collected"
)

// StageStartedPayload is the payload of a StageStarted event.
type StageStartedPayload struct {
	Stage string
}

// StageCompletedPayload is the payload of a StageCompleted event.
type StageCompletedPayload struct {
	Stage         string
	DurationNanos int64
	Diagnostics   int
}

// DiagnosticPayload is the payload of a DiagnosticRaised event.
type DiagnosticPayload struct {
	Stage   string
	Message string
}
