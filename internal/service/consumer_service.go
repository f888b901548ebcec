package service

import (
	"context"
	"encoding/json"

	"noet-be/internal/pkg/logger"
	"noet-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// ChangeDelivery pushes an event to the connected clients of its user.
type ChangeDelivery interface {
	Deliver(event events.ChangeEvent)
}

// EventSink forwards events outside the process.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	delivery   ChangeDelivery
	sink       EventSink
	logger     logger.ILogger
}

// NewConsumerService wires the bus to the change feed. sink may be nil.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	delivery ChangeDelivery,
	sink EventSink,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		delivery:   delivery,
		sink:       sink,
		logger:     log,
	}
}

// Consume subscribes and processes messages in the background until ctx is done.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.ChangeEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal change event", map[string]interface{}{
			"error":      err,
			"message_id": msg.UUID,
		})
		// redelivery cannot fix a malformed payload
		msg.Ack()
		return
	}

	if cs.delivery != nil {
		cs.delivery.Deliver(event)
	}

	if cs.sink != nil {
		if err := cs.sink.Publish(ctx, event); err != nil {
			cs.logger.Warn("Consumer", "Failed to forward change event", map[string]interface{}{
				"error": err.Error(),
				"type":  event.Type,
			})
		}
	}

	msg.Ack()
}
