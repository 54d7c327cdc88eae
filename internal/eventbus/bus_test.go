package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSyncRunsBeforeReturn(t *testing.T) {
	bus := NewBus()
	var got Event
	bus.Subscribe(StageStarted, func(ctx context.Context, event Event) error {
		got = event
		return nil
	})

	errs := bus.Publish(context.Background(), New(StageStarted, StageStartedPayload{Stage: "registry.build"}))

	require.Empty(t, errs)
	require.NotNil(t, got)
	assert.Equal(t, StageStarted, got.Name())
	assert.Equal(t, StageStartedPayload{Stage: "registry.build"}, got.(BaseEvent).Payload)
}

func TestPublishSyncCollectsHandlerErrors(t *testing.T) {
	bus := NewBus()
	boom := errors.New("boom")
	bus.SubscribeWithConfig(StageCompleted, func(ctx context.Context, event Event) error {
		return boom
	}, HandlerConfig{Mode: Sync, ErrorHandler: func(err error, event Event, handlerName string) {}}, "failing-handler")

	errs := bus.Publish(context.Background(), New(StageCompleted, nil))

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
}

func TestPublishAsyncDoesNotBlock(t *testing.T) {
	bus := NewBus()
	var wg sync.WaitGroup
	wg.Add(1)
	bus.SubscribeWithConfig(DiagnosticRaised, func(ctx context.Context, event Event) error {
		defer wg.Done()
		return nil
	}, HandlerConfig{Mode: Async}, "")

	errs := bus.Publish(context.Background(), New(DiagnosticRaised, nil))
	assert.Empty(t, errs, "async handlers never contribute to Publish's own error slice")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async handler never ran")
	}
}

func TestShutdownStopsFurtherDispatch(t *testing.T) {
	bus := NewBus()
	ran := false
	bus.Subscribe(StageStarted, func(ctx context.Context, event Event) error {
		ran = true
		return nil
	})

	bus.Shutdown()
	errs := bus.Publish(context.Background(), New(StageStarted, nil))

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
	assert.False(t, ran)
}

func TestUnsubscribedEventNameIsANoop(t *testing.T) {
	bus := NewBus()
	errs := bus.Publish(context.Background(), New("nothing.listens.here", nil))
	assert.Empty(t, errs)
}
