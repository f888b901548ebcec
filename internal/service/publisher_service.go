package service

import (
	"context"
	"encoding/json"

	"noet-be/internal/pkg/logger"
	"noet-be/internal/pkg/metrics"
	"noet-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService puts change events on the in-process bus. Failures are
// logged and counted; a mutation that already hit the disk is never undone
// because its notification could not be sent.
type IPublisherService interface {
	Publish(ctx context.Context, event events.ChangeEvent)
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	logger    logger.ILogger
	metrics   *metrics.Metrics
}

func NewPublisherService(
	topicName string,
	publisher message.Publisher,
	log logger.ILogger,
	m *metrics.Metrics,
) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		logger:    log,
		metrics:   m,
	}
}

func (p *publisherService) Publish(ctx context.Context, event events.ChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.fail(event, err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", event.Type)

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.fail(event, err)
		return
	}
	p.metrics.ChangeEvent(event.Type, true)
}

func (p *publisherService) fail(event events.ChangeEvent, err error) {
	p.metrics.ChangeEvent(event.Type, false)
	p.logger.Error("Publisher", "Failed to publish change event", map[string]interface{}{
		"error":     err,
		"type":      event.Type,
		"user_id":   event.UserId,
		"entity_id": event.EntityId,
	})
}
