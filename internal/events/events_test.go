package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveChannel(t *testing.T) {
	r := NewRoomUserChannelResolver()

	assert.Equal(t, "channel:room:journey_j1", r.ResolveChannel(Envelope{Type: EventNewMessage, RoomID: "journey_j1"}))
	assert.Equal(t, "channel:user:u2", r.ResolveChannel(Envelope{Type: EventNotification, RoomID: "qa_j1_u2", UserID: "u2"}))
	assert.Empty(t, r.ResolveChannel(Envelope{Type: EventMessagesRead}))
	assert.Empty(t, r.ResolveChannel(Envelope{Type: EventNotification, RoomID: "qa_j1_u2"}))
}

func TestSplitChannel(t *testing.T) {
	prefix, id, ok := SplitChannel("channel:room:location_12.5_-45.0")
	require.True(t, ok)
	assert.Equal(t, ChannelPrefixRoom, prefix)
	assert.Equal(t, "location_12.5_-45.0", id)

	_, _, ok = SplitChannel("channel:room:")
	assert.False(t, ok)
	_, _, ok = SplitChannel("channel:conversation:x")
	assert.False(t, ok)
}

func TestMatchPattern(t *testing.T) {
	assert.True(t, MatchPattern(PatternRooms, "channel:room:journey_j1"))
	assert.False(t, MatchPattern(PatternRooms, "channel:user:u1"))
	assert.True(t, MatchPattern("channel:user:u1", "channel:user:u1"))
	assert.False(t, MatchPattern("channel:user:u1", "channel:user:u10"))
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `room\*\?\[x\]`, EscapeGlob("room*?[x]"))
	assert.Equal(t, "journey_j1", EscapeGlob("journey_j1"))
}

func TestEnvelopePayload(t *testing.T) {
	id := uuid.New()
	env, err := NewEnvelope(EventMessageDeleted, "journey_j1", "", "node-a", MessageDeletedPayload{MessageID: id, RoomID: "journey_j1"})
	require.NoError(t, err)

	data, err := env.Marshal()
	require.NoError(t, err)
	decoded, err := UnmarshalEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, "node-a", decoded.Origin)

	var payload MessageDeletedPayload
	require.NoError(t, decoded.DecodePayload(&payload))
	assert.Equal(t, id, payload.MessageID)

	_, err = UnmarshalEnvelope([]byte(`{"roomId":"x"}`))
	assert.Error(t, err)
	_, err = UnmarshalEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

type recorded struct {
	channel string
	env     Envelope
}

type recorder struct {
	mu   sync.Mutex
	seen []recorded
}

func (r *recorder) handle(channel string, env Envelope) {
	r.mu.Lock()
	r.seen = append(r.seen, recorded{channel: channel, env: env})
	r.mu.Unlock()
}

func (r *recorder) snapshot() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.seen...)
}

func TestBusOverMemoryBackbone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backbone := NewMemoryBackbone()
	bus := NewBus(backbone, nil, "node-a", nil)
	rec := &recorder{}
	require.NoError(t, bus.Subscribe(ctx, rec.handle))

	bus.PublishRoom(ctx, EventMessagesRead, "journey_j1", MessagesReadPayload{RoomID: "journey_j1", Count: 2})
	bus.PublishUser(ctx, EventNotification, "u2", NotificationPayload{RoomID: "qa_j1_u2"})

	seen := rec.snapshot()
	require.Len(t, seen, 2)
	assert.Equal(t, "channel:room:journey_j1", seen[0].channel)
	assert.Equal(t, EventMessagesRead, seen[0].env.Type)
	assert.Equal(t, "node-a", seen[0].env.Origin)
	assert.Equal(t, "channel:user:u2", seen[1].channel)
	assert.Equal(t, "u2", seen[1].env.UserID)
}

func TestMemoryBackboneUnsubscribesOnCancel(t *testing.T) {
	backbone := NewMemoryBackbone()
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	count := 0
	require.NoError(t, backbone.PSubscribe(ctx, PatternRooms, func(string, []byte) {
		mu.Lock()
		count++
		mu.Unlock()
	}))

	require.NoError(t, backbone.Publish(context.Background(), "channel:room:r1", []byte("{}")))
	cancel()
	require.Eventually(t, func() bool {
		backbone.mu.RLock()
		defer backbone.mu.RUnlock()
		return len(backbone.subs) == 0
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, backbone.Publish(context.Background(), "channel:room:r1", []byte("{}")))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestBusWithoutBackboneIsNoop(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.PublishRoom(context.Background(), EventNewMessage, "journey_j1", NewMessagePayload{})
	})
	assert.Error(t, NewBus(nil, nil, "x", nil).Subscribe(context.Background(), func(string, Envelope) {}))
}
