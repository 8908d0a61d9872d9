package stdout

import (
	"context"
	"log/slog"

	"github.com/agrovision/stress-map-service/internal/domain/port"
)

// Publisher logs events instead of publishing them. Used when no Pub/Sub
// topic is configured (local development, tests).
type Publisher struct {
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{
		logger: logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, topicID string, data []byte, attributes map[string]string) error {
	p.logger.InfoContext(ctx, "Event published to STDOUT (Local Dev)",
		slog.String("topic", topicID),
		slog.String("data", string(data)),
		slog.Any("attributes", attributes),
	)

	return nil
}

func (p *Publisher) Close() error {
	return nil
}

var _ port.EventPublisher = (*Publisher)(nil)
