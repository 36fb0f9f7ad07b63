package redis

import (
	"context"

	"journey-chat/internal/metrics"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

type Publisher struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[any]
}

func NewPublisher(client *redis.Client, breaker *gobreaker.CircuitBreaker[any]) *Publisher {
	return &Publisher{client: client, breaker: breaker}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.client.Publish(ctx, channel, payload).Err()
	})
	metrics.RecordBackbonePublish(err)
	return err
}
