package port

import "context"

type EventPublisher interface {
	Publish(ctx context.Context, topic string, data []byte, attributes map[string]string) error
	Close() error
}
