package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var received []string
	d.Subscribe(EventStatusChanged, func(_ context.Context, e Event) error {
		received = append(received, e.EventID)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventStatusChanged, EventID: "ev-1"}))
	require.Equal(t, []string{"ev-1"}, received)
}

func TestDispatcherIgnoresUnrelatedTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	called := false
	d.Subscribe(EventCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventStatusChanged}))
	require.False(t, called)
}

// A failing handler must not block later handlers or fail the publish.
func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	d.Subscribe(EventStatusChanged, func(context.Context, Event) error {
		return errors.New("mail transport down")
	})
	secondCalled := false
	d.Subscribe(EventStatusChanged, func(context.Context, Event) error {
		secondCalled = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventStatusChanged}))
	require.True(t, secondCalled)
}
