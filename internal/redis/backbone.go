package redis

import (
	"journey-chat/internal/events"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Backbone is the Redis pub/sub implementation of events.Backbone.
type Backbone struct {
	*Publisher
	*Subscriber
}

var _ events.Backbone = (*Backbone)(nil)

func NewBackbone(client *redis.Client, breaker *gobreaker.CircuitBreaker[any], logger *zap.Logger) *Backbone {
	return &Backbone{
		Publisher:  NewPublisher(client, breaker),
		Subscriber: NewSubscriber(client, logger),
	}
}

// Close is a no-op; the client is owned and closed by the caller.
func (b *Backbone) Close() error {
	return nil
}
