package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/interfaces"
)

func TestService_PublishReachesSubscribers(t *testing.T) {
	s := NewService(common.GetLogger())

	var received []interfaces.Event
	err := s.Subscribe(interfaces.EventSignalCreated, func(ctx context.Context, event interfaces.Event) error {
		received = append(received, event)
		return nil
	})
	require.NoError(t, err)

	err = s.Publish(context.Background(), interfaces.Event{Type: interfaces.EventSignalCreated, Payload: "x"})
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, "x", received[0].Payload)
}

func TestService_PublishSkipsOtherEventTypes(t *testing.T) {
	s := NewService(common.GetLogger())

	called := false
	s.Subscribe(interfaces.EventSignalCreated, func(ctx context.Context, event interfaces.Event) error {
		called = true
		return nil
	})

	s.Publish(context.Background(), interfaces.Event{Type: interfaces.EventRunCompleted})
	assert.False(t, called)
}

func TestService_FailingHandlerDoesNotStopOthers(t *testing.T) {
	s := NewService(common.GetLogger())

	reached := false
	s.Subscribe(interfaces.EventSignalCreated, func(ctx context.Context, event interfaces.Event) error {
		return errors.New("handler failure")
	})
	s.Subscribe(interfaces.EventSignalCreated, func(ctx context.Context, event interfaces.Event) error {
		reached = true
		return nil
	})

	err := s.Publish(context.Background(), interfaces.Event{Type: interfaces.EventSignalCreated})
	require.NoError(t, err)
	assert.True(t, reached)
}

func TestService_NilHandlerRejected(t *testing.T) {
	s := NewService(common.GetLogger())
	assert.Error(t, s.Subscribe(interfaces.EventSignalCreated, nil))
}
