package analytics

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Sink receives decoded analytics events.
type Sink interface {
	EntryCreated(ctx context.Context, event *EntryCreatedEvent) error
	EntryViewed(ctx context.Context, event *EntryViewedEvent) error
}

// Consumer subscribes to both analytics topics and feeds a Sink.
type Consumer struct {
	subscriber message.Subscriber
	sink       Sink
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
	running    bool
}

// NewConsumer creates a new analytics consumer.
func NewConsumer(subscriber message.Subscriber, sink Sink, logger *zap.Logger) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		sink:       sink,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start begins consuming messages from both topics.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	createdMsgs, err := c.subscriber.Subscribe(ctx, TopicEntryCreated)
	if err != nil {
		return err
	}

	viewedMsgs, err := c.subscriber.Subscribe(ctx, TopicEntryViewed)
	if err != nil {
		return err
	}

	c.running = true

	go c.consumeLoop(ctx, createdMsgs, viewedMsgs)

	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, createdMsgs, viewedMsgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-createdMsgs:
			if !ok {
				return
			}

			c.handleEntryCreated(ctx, msg)
		case msg, ok := <-viewedMsgs:
			if !ok {
				return
			}

			c.handleEntryViewed(ctx, msg)
		}
	}
}

func (c *Consumer) handleEntryCreated(ctx context.Context, msg *message.Message) {
	var event EntryCreatedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Error("failed to unmarshal entry created event", zap.Error(err))
		msg.Nack()

		return
	}

	if err := c.sink.EntryCreated(ctx, &event); err != nil {
		c.logger.Error("failed to record entry created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
		msg.Nack()

		return
	}

	msg.Ack()
}

func (c *Consumer) handleEntryViewed(ctx context.Context, msg *message.Message) {
	var event EntryViewedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Error("failed to unmarshal entry viewed event", zap.Error(err))
		msg.Nack()

		return
	}

	if err := c.sink.EntryViewed(ctx, &event); err != nil {
		c.logger.Error("failed to record entry viewed event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
		msg.Nack()

		return
	}

	msg.Ack()
}

// Shutdown stops the consumer and waits for in-flight messages to complete.
// Safe to call when Start never ran or failed.
func (c *Consumer) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}

	if c.running {
		<-c.done
	}

	return c.subscriber.Close()
}
