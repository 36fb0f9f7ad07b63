package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Bus publishes envelopes on a Backbone and decodes what comes back.
// Publish failures are logged and swallowed so that a backbone outage
// degrades to single-instance fan-out.
type Bus struct {
	backbone   Backbone
	resolver   ChannelResolver
	instanceID string
	logger     *zap.Logger
}

func NewBus(backbone Backbone, resolver ChannelResolver, instanceID string, logger *zap.Logger) *Bus {
	if resolver == nil {
		resolver = NewRoomUserChannelResolver()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		backbone:   backbone,
		resolver:   resolver,
		instanceID: instanceID,
		logger:     logger,
	}
}

func (b *Bus) InstanceID() string {
	return b.instanceID
}

// PublishRoom publishes a room-scoped event on channel:room:<roomID>.
func (b *Bus) PublishRoom(ctx context.Context, eventType EventType, roomID string, payload any) {
	b.publish(ctx, eventType, roomID, "", payload)
}

// PublishUser publishes a user-scoped event on channel:user:<userID>.
func (b *Bus) PublishUser(ctx context.Context, eventType EventType, userID string, payload any) {
	b.publish(ctx, eventType, "", userID, payload)
}

func (b *Bus) publish(ctx context.Context, eventType EventType, roomID, userID string, payload any) {
	if b == nil || b.backbone == nil {
		return
	}
	env, err := NewEnvelope(eventType, roomID, userID, b.instanceID, payload)
	if err != nil {
		b.logger.Error("failed to build envelope", zap.String("event", string(eventType)), zap.Error(err))
		return
	}
	channel := b.resolver.ResolveChannel(env)
	if channel == "" {
		b.logger.Warn("no channel for event", zap.String("event", string(eventType)))
		return
	}
	data, err := env.Marshal()
	if err != nil {
		b.logger.Error("failed to marshal envelope", zap.String("event", string(eventType)), zap.Error(err))
		return
	}
	if err := b.backbone.Publish(ctx, channel, data); err != nil {
		b.logger.Warn("backbone publish failed",
			zap.String("channel", channel),
			zap.String("event", string(eventType)),
			zap.Error(err),
		)
	}
}

// Subscribe delivers every decoded envelope published on the room and user
// patterns to handler until ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, handler func(channel string, env Envelope)) error {
	if b.backbone == nil {
		return fmt.Errorf("no backbone configured")
	}
	decode := func(channel string, payload []byte) {
		env, err := UnmarshalEnvelope(payload)
		if err != nil {
			b.logger.Warn("dropping undecodable event", zap.String("channel", channel), zap.Error(err))
			return
		}
		handler(channel, env)
	}
	for _, pattern := range []string{PatternRooms, PatternUsers} {
		if err := b.backbone.PSubscribe(ctx, pattern, decode); err != nil {
			return fmt.Errorf("subscribe %s: %w", pattern, err)
		}
	}
	return nil
}
