package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventTransferCompleted, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	event := New(EventTransferCompleted, "subject-1", nil)
	require.NoError(t, d.Publish(context.Background(), event))

	require.Len(t, got, 1)
	assert.Equal(t, event.ID, got[0].ID)
	assert.Equal(t, "subject-1", got[0].SubjectID)
}

func TestPublishSkipsOtherEventTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	delivered := false
	d.Subscribe(EventSubscriptionCanceled, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventTransferCompleted, "s", nil)))
	assert.False(t, delivered)
}

func TestHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()

	second := false
	d.Subscribe(EventAccountStatusChanged, func(context.Context, Event) error {
		return errors.New("handler failed")
	})
	d.Subscribe(EventAccountStatusChanged, func(context.Context, Event) error {
		second = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventAccountStatusChanged, "s", nil)))
	assert.True(t, second)
}
