package pipeline

import (
	"context"
	"time"

	"safedi/internal/eventbus"
	"safedi/internal/obslog"
)

// Interceptor wraps each pipeline stage with timing and event-bus
// notification — the same cross-cutting role a logging/plugin manager
// plays around an HTTP handler, generalized from "time a request" to
// "time a pipeline stage" and from middleware chaining to a plain
// wrapped function call, since there is no handler chain here.
type Interceptor struct {
	bus *eventbus.Bus
	log *obslog.Logger
}

// NewInterceptor constructs an Interceptor publishing to bus and logging
// through log.
func NewInterceptor(bus *eventbus.Bus, log *obslog.Logger) *Interceptor {
	return &Interceptor{bus: bus, log: log}
}

// Run executes fn as stage, publishing StageStarted/StageCompleted events
// and logging a start/duration pair around it. diagnosticCount lets the
// caller report how many diagnostics the stage collected (0 for stages
// that can't fail partially, e.g. loading).
func (ic *Interceptor) Run(ctx context.Context, stage string, diagnosticCount func() int, fn func() error) error {
	ic.bus.Publish(ctx, eventbus.New(eventbus.StageStarted, eventbus.StageStartedPayload{Stage: stage}))
	stop := ic.log.StageTimer(stage)

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	count := 0
	if diagnosticCount != nil {
		count = diagnosticCount()
	}
	stop(obslog.F("diagnostics", count))
	ic.bus.Publish(ctx, eventbus.New(eventbus.StageCompleted, eventbus.StageCompletedPayload{
		Stage:         stage,
		DurationNanos: elapsed.Nanoseconds(),
		Diagnostics:   count,
	}))
	return err
}
