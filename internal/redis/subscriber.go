package redis

import (
	"context"
	"fmt"

	"journey-chat/internal/events"
	"journey-chat/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Subscriber struct {
	client *redis.Client
	logger *zap.Logger
}

func NewSubscriber(client *redis.Client, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{client: client, logger: logger}
}

// PSubscribe subscribes to pattern and delivers messages to handler on a
// background goroutine until ctx is cancelled. go-redis re-subscribes on
// reconnect, so a Redis restart only loses messages published meanwhile.
func (s *Subscriber) PSubscribe(ctx context.Context, pattern string, handler events.Handler) error {
	sub := s.client.PSubscribe(ctx, pattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("psubscribe %s: %w", pattern, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				metrics.RecordBackboneReceive(nil)
				s.dispatch(handler, msg)
			}
		}
	}()
	return nil
}

func (s *Subscriber) dispatch(handler events.Handler, msg *redis.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("backbone handler panicked",
				zap.String("channel", msg.Channel),
				zap.Any("panic", r),
			)
		}
	}()
	handler(msg.Channel, []byte(msg.Payload))
}
