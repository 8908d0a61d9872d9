package pubsub

import (
	"context"
	"log/slog"

	"cloud.google.com/go/pubsub"

	"github.com/agrovision/stress-map-service/internal/domain/port"
	"github.com/agrovision/stress-map-service/pkg/errors"
)

type Publisher struct {
	client *pubsub.Client
	logger *slog.Logger
}

func NewPublisher(client *pubsub.Client, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, topicID string, data []byte, attributes map[string]string) error {
	topic := p.client.Topic(topicID)
	defer topic.Stop()

	result := topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	})

	if _, err := result.Get(ctx); err != nil {
		p.logger.Error("Failed to publish message", "topic", topicID, "error", err)
		return errors.WrapMessagingError(err, "could not publish message").
			WithContext("topic", topicID)
	}

	p.logger.Debug("Message published", "topic", topicID)
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

var _ port.EventPublisher = (*Publisher)(nil)
