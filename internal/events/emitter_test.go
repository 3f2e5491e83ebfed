package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTaskRequestEvent(t *testing.T) {
	t.Parallel()

	ev, err := NewTaskRequestEvent("entry_analysis", map[string]string{"entry_id": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "entry_analysis", ev.Type)
	assert.JSONEq(t, `{"entry_id":"abc"}`, string(ev.Payload))
	assert.False(t, ev.CreatedAt.IsZero())

	var got struct {
		EntryID string `json:"entry_id"`
	}
	require.NoError(t, ev.UnmarshalPayload(&got))
	assert.Equal(t, "abc", got.EntryID)

	_, err = NewTaskRequestEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestEmitEvent_RoutesByType(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(discardLogger())

	var analysisCalls, otherCalls int
	emitter.RegisterHandler("entry_analysis", HandlerFunc(func(ctx context.Context, e *TaskRequestEvent) error {
		analysisCalls++
		return nil
	}))
	emitter.RegisterHandler("other", HandlerFunc(func(ctx context.Context, e *TaskRequestEvent) error {
		otherCalls++
		return nil
	}))

	ev, err := NewTaskRequestEvent("entry_analysis", nil)
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), ev))
	assert.Equal(t, 1, analysisCalls)
	assert.Zero(t, otherCalls)
}

func TestEmitEvent_AllHandlersRunOnError(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(discardLogger())
	boom := errors.New("boom")

	var calls int
	emitter.RegisterHandler("x", HandlerFunc(func(ctx context.Context, e *TaskRequestEvent) error {
		calls++
		return boom
	}))
	emitter.RegisterHandler("x", HandlerFunc(func(ctx context.Context, e *TaskRequestEvent) error {
		calls++
		return nil
	}))

	ev, err := NewTaskRequestEvent("x", nil)
	require.NoError(t, err)

	err = emitter.EmitEvent(context.Background(), ev)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestEmitEvent_NoHandler(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(discardLogger())
	ev, err := NewTaskRequestEvent("unhandled", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, emitter.EmitEvent(context.Background(), ev), ErrNoHandler)
}
