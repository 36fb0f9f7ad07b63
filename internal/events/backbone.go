package events

import "context"

// Handler receives one published payload.
type Handler func(channel string, payload []byte)

// Backbone is the publish/subscribe transport shared by all instances.
type Backbone interface {
	Publish(ctx context.Context, channel string, payload []byte) error

	// PSubscribe delivers every message on channels matching pattern to
	// handler until ctx is cancelled. It returns once the subscription is
	// active; delivery happens on a background goroutine.
	PSubscribe(ctx context.Context, pattern string, handler Handler) error

	Close() error
}
