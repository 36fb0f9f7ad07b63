package services

import (
	"context"

	"journey-chat/internal/events"
)

// EventPublisher puts chat events on the backbone. Publishing never fails
// from the caller's point of view; *events.Bus logs and drops on error.
type EventPublisher interface {
	PublishRoom(ctx context.Context, eventType events.EventType, roomID string, payload any)
	PublishUser(ctx context.Context, eventType events.EventType, userID string, payload any)
}

type noopPublisher struct{}

func (noopPublisher) PublishRoom(context.Context, events.EventType, string, any) {}
func (noopPublisher) PublishUser(context.Context, events.EventType, string, any) {}
