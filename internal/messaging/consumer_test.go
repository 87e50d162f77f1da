package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/agentsystems/notary-arweave-bundler/internal/messaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

// startConsumer runs a consumer on a fresh mock subscriber and shuts it down with the test.
func startConsumer(
	t *testing.T, handler messaging.Handler[testEvent], opts ...messaging.ConsumerOption,
) *mockSubscriber {
	t.Helper()

	sub := newMockSubscriber()
	consumer := messaging.NewConsumer(sub, "submissions", "test.event", handler, zap.NewNop(), opts...)

	require.NoError(t, consumer.Start(context.Background()))
	t.Cleanup(func() { _ = consumer.Shutdown() })

	return sub
}

func newEventMessage(t *testing.T, event testEvent) *message.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return message.NewMessage(uuid.NewString(), payload)
}

// waitAcked reports true on ack and false on nack.
func waitAcked(t *testing.T, msg *message.Message) bool {
	t.Helper()

	select {
	case <-msg.Acked():
		return true
	case <-msg.Nacked():
		return false
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ack or nack")

		return false
	}
}

func TestConsumer_Start(t *testing.T) {
	t.Run("exposes topic", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(sub, "submissions", "test.event",
			func(context.Context, *testEvent) error { return nil }, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		assert.Equal(t, "submissions", consumer.Topic())
		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("returns error when subscribe fails", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := messaging.NewConsumer(sub, "submissions", "test.event",
			func(context.Context, *testEvent) error { return nil }, zap.NewNop())

		err := consumer.Start(context.Background())

		assert.Error(t, err)
		assert.NoError(t, consumer.Shutdown(), "shutdown after failed start must not block")
	})
}

func TestConsumer_Process(t *testing.T) {
	t.Run("acks handled event", func(t *testing.T) {
		received := make(chan testEvent, 1)
		sub := startConsumer(t, func(_ context.Context, event *testEvent) error {
			received <- *event

			return nil
		})

		msg := newEventMessage(t, testEvent{ID: "123", Name: "test"})
		msg.Metadata.Set(messaging.MetadataEventType, "test.event")
		sub.msgChan <- msg

		require.True(t, waitAcked(t, msg))
		assert.Equal(t, testEvent{ID: "123", Name: "test"}, <-received)
	})

	t.Run("drops undecodable payload", func(t *testing.T) {
		called := false
		sub := startConsumer(t, func(context.Context, *testEvent) error {
			called = true

			return nil
		})

		msg := message.NewMessage(uuid.NewString(), []byte("invalid json"))
		sub.msgChan <- msg

		assert.True(t, waitAcked(t, msg), "poison messages must not be redelivered")
		assert.False(t, called)
	})

	t.Run("nacks on handler error", func(t *testing.T) {
		sub := startConsumer(t, func(context.Context, *testEvent) error {
			return errors.New("database down")
		})

		msg := newEventMessage(t, testEvent{ID: "123"})
		sub.msgChan <- msg

		assert.False(t, waitAcked(t, msg))
	})

	t.Run("skips other event types", func(t *testing.T) {
		called := false
		sub := startConsumer(t, func(context.Context, *testEvent) error {
			called = true

			return nil
		})

		msg := newEventMessage(t, testEvent{ID: "1"})
		msg.Metadata.Set(messaging.MetadataEventType, "other.event")
		sub.msgChan <- msg

		assert.True(t, waitAcked(t, msg))
		assert.False(t, called, "handler should not run for other event types")
	})

	t.Run("bounds handler with timeout", func(t *testing.T) {
		sub := startConsumer(t, func(ctx context.Context, _ *testEvent) error {
			<-ctx.Done()

			return ctx.Err()
		}, messaging.WithHandlerTimeout(20*time.Millisecond))

		msg := newEventMessage(t, testEvent{ID: "slow"})
		sub.msgChan <- msg

		assert.False(t, waitAcked(t, msg))
	})
}

func TestConsumer_Shutdown(t *testing.T) {
	t.Run("stops when subscriber closes", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(sub, "submissions", "test.event",
			func(context.Context, *testEvent) error { return nil }, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		require.NoError(t, sub.Close())

		assert.NoError(t, consumer.Shutdown())
	})
}
