package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// DefaultHandlerTimeout bounds a single handler call.
const DefaultHandlerTimeout = 30 * time.Second

// Handler processes a single event. Returning an error redelivers the message.
type Handler[T any] func(ctx context.Context, event *T) error

// ConsumerOption configures a Consumer.
type ConsumerOption func(*consumerOptions)

type consumerOptions struct {
	handlerTimeout time.Duration
}

// WithHandlerTimeout overrides DefaultHandlerTimeout.
func WithHandlerTimeout(d time.Duration) ConsumerOption {
	return func(o *consumerOptions) {
		o.handlerTimeout = d
	}
}

// Consumer reads one topic and decodes each message into T before calling the handler.
//
// Messages tagged with another event type are acked without processing. Payloads that
// cannot be decoded are logged and acked as well, since redelivery would never succeed.
// Handler failures are nacked so the stream redelivers them.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	eventType  string
	handler    Handler[T]
	timeout    time.Duration
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewConsumer[T any](
	subscriber message.Subscriber,
	topic, eventType string,
	handler Handler[T],
	logger *zap.Logger,
	opts ...ConsumerOption,
) *Consumer[T] {
	o := consumerOptions{handlerTimeout: DefaultHandlerTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		eventType:  eventType,
		handler:    handler,
		timeout:    o.handlerTimeout,
		logger:     logger.With(zap.String("topic", topic), zap.String("eventType", eventType)),
		done:       make(chan struct{}),
	}
}

func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and consumes in the background until ctx is done or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		c.cancel()
		close(c.done)

		return err
	}

	go c.run(ctx, msgs)

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.process(ctx, msg)
		}
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) {
	log := c.logger.With(zap.String("uuid", msg.UUID))

	if t := msg.Metadata.Get(MetadataEventType); t != "" && t != c.eventType {
		log.Debug("skipping message of other type", zap.String("messageType", t))
		msg.Ack()

		return
	}

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Error("dropping undecodable message", zap.Error(err))
		msg.Ack()

		return
	}

	hctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()

	if err := c.handler(hctx, &event); err != nil {
		log.Error("failed to handle event, will be redelivered", zap.Error(err))
		msg.Nack()

		return
	}

	msg.Ack()

	log.Debug("processed event", zap.Duration("took", time.Since(started)))
}

// Shutdown stops consuming and waits for the in-flight message to finish.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}

	<-c.done

	return nil
}
