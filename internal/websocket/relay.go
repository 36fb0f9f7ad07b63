package websocket

import (
	"context"
	"sync/atomic"
	"time"

	"journey-chat/internal/events"
	"journey-chat/internal/metrics"

	"go.uber.org/zap"
)

// EventSource is what the relay subscribes to. *events.Bus implements it.
type EventSource interface {
	Subscribe(ctx context.Context, handler func(channel string, env events.Envelope)) error
	InstanceID() string
}

// Relay turns backbone events into frames for the clients connected to
// this instance. Every instance runs one.
type Relay struct {
	hub    *Hub
	source EventSource
	logger *zap.Logger

	// relayNewMessages rebroadcasts new_message events published by other
	// instances. Events this instance published are always skipped since
	// the gateway already delivered them locally.
	relayNewMessages bool

	retryMin   time.Duration
	retryMax   time.Duration
	subscribed atomic.Bool
}

const (
	defaultRelayRetryMin = 500 * time.Millisecond
	defaultRelayRetryMax = 30 * time.Second
)

func NewRelay(hub *Hub, source EventSource, relayNewMessages bool, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		hub:              hub,
		source:           source,
		logger:           logger.With(zap.String("component", "relay")),
		relayNewMessages: relayNewMessages,
		retryMin:         defaultRelayRetryMin,
		retryMax:         defaultRelayRetryMax,
	}
}

// Start subscribes to every room and user channel. Delivery stops when ctx
// is cancelled. If the first attempt fails, Start returns its error and keeps
// retrying in the background with exponential backoff until it succeeds or
// ctx is done.
func (r *Relay) Start(ctx context.Context) error {
	err := r.subscribe(ctx)
	if err == nil {
		return nil
	}
	r.logger.Warn("relay subscription failed, retrying in background", zap.Error(err))
	go r.retry(ctx)
	return err
}

// Subscribed reports whether the relay is receiving backbone events.
func (r *Relay) Subscribed() bool {
	return r.subscribed.Load()
}

// subscribe runs each attempt under its own context so a partial subscription
// is torn down before the next attempt.
func (r *Relay) subscribe(ctx context.Context) error {
	attemptCtx, cancel := context.WithCancel(ctx)
	if err := r.source.Subscribe(attemptCtx, r.Handle); err != nil {
		cancel()
		return err
	}
	context.AfterFunc(ctx, cancel)
	r.subscribed.Store(true)
	return nil
}

func (r *Relay) retry(ctx context.Context) {
	delay := r.retryMin
	for attempt := 2; ; attempt++ {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		err := r.subscribe(ctx)
		if err == nil {
			r.logger.Info("relay subscribed", zap.Int("attempt", attempt))
			return
		}
		r.logger.Warn("relay subscription retry failed",
			zap.Int("attempt", attempt),
			zap.Duration("next_in", min(delay*2, r.retryMax)),
			zap.Error(err),
		)
		delay = min(delay*2, r.retryMax)
	}
}

func (r *Relay) Handle(channel string, env events.Envelope) {
	roomID := env.RoomID
	if roomID == "" {
		if prefix, id, ok := events.SplitChannel(channel); ok && prefix == events.ChannelPrefixRoom {
			roomID = id
		}
	}

	switch env.Type {
	case events.EventNewMessage:
		if !r.relayNewMessages || env.Origin == r.source.InstanceID() {
			r.skip(env)
			return
		}
		var payload events.NewMessagePayload
		if err := env.DecodePayload(&payload); err != nil {
			r.drop(env, err)
			return
		}
		r.toRoom(env, roomID, EventNewMessage, payload.Message)

	case events.EventReactionAdded, events.EventReactionRemoved:
		var payload events.ReactionPayload
		if err := env.DecodePayload(&payload); err != nil {
			r.drop(env, err)
			return
		}
		action := "added"
		if env.Type == events.EventReactionRemoved {
			action = "removed"
		}
		r.toRoom(env, roomID, EventReactionUpdated, reactionUpdated{ReactionPayload: payload, Action: action})

	case events.EventMessageEdited:
		r.toRoom(env, roomID, EventMessageUpdated, env.Payload)

	case events.EventMessageDeleted:
		r.toRoom(env, roomID, EventMessageDeleted, env.Payload)

	case events.EventMessagesRead:
		r.toRoom(env, roomID, EventMessagesRead, env.Payload)

	case events.EventNotification:
		if env.UserID == "" {
			r.skip(env)
			return
		}
		frame, err := encodeFrame(EventNotification, env.Payload)
		if err != nil {
			r.drop(env, err)
			return
		}
		r.hub.SendToUser(env.UserID, frame)
		metrics.RecordRelayedEvent(string(env.Type), "delivered")

	default:
		r.skip(env)
	}
}

type reactionUpdated struct {
	events.ReactionPayload
	Action string `json:"action"`
}

func (r *Relay) toRoom(env events.Envelope, roomID string, event ServerEvent, data any) {
	if roomID == "" {
		r.skip(env)
		return
	}
	frame, err := encodeFrame(event, data)
	if err != nil {
		r.drop(env, err)
		return
	}
	r.hub.BroadcastRoom(roomID, frame, nil)
	metrics.RecordRelayedEvent(string(env.Type), "delivered")
}

func (r *Relay) skip(env events.Envelope) {
	metrics.RecordRelayedEvent(string(env.Type), "skipped")
}

func (r *Relay) drop(env events.Envelope, err error) {
	r.logger.Warn("dropping relayed event", zap.String("event", string(env.Type)), zap.Error(err))
	metrics.RecordRelayedEvent(string(env.Type), "dropped")
}
