package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"journey-chat/internal/domain/journey"
	"journey-chat/internal/domain/message"
	"journey-chat/internal/domain/user"
	"journey-chat/internal/events"
	"journey-chat/internal/proxy"
	"journey-chat/internal/repository"
	chat_errors "journey-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	Type    events.EventType
	RoomID  string
	UserID  string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishRoom(_ context.Context, t events.EventType, roomID string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: t, RoomID: roomID, Payload: payload})
}

func (p *recordingPublisher) PublishUser(_ context.Context, t events.EventType, userID string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: t, UserID: userID, Payload: payload})
}

func (p *recordingPublisher) ofType(t events.EventType) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// mapCache is an in-memory Cache that ignores TTLs.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	hits int
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *mapCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for k := range c.data {
		out = append(out, k)
	}
	return out
}

type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errCacheDown }
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errCacheDown
}
func (failingCache) Delete(context.Context, ...string) error     { return errCacheDown }
func (failingCache) DeletePattern(context.Context, string) error { return errCacheDown }

type failingMessageRepository struct {
	repository.MessageRepository
}

func (failingMessageRepository) Create(context.Context, *message.Message) error {
	return errors.New("connection reset")
}

type fixture struct {
	svc       *ChatService
	repo      *repository.MemoryMessageRepository
	publisher *recordingPublisher
}

func newFixture(t *testing.T, opts ...ChatOption) fixture {
	t.Helper()
	repo := repository.NewMemoryMessageRepository()
	users := repository.NewMemoryUserRepository(
		user.PublicProfile{ID: "alice", Username: "alice", DisplayName: "Alice"},
		user.PublicProfile{ID: "bob", Username: "bob", DisplayName: "Bob"},
		user.PublicProfile{ID: "carol", Username: "carol", DisplayName: "Carol"},
	)
	journeys := repository.NewMemoryJourneyRepository(
		journey.Journey{ID: "j1", CreatorID: "alice", Collaborators: []string{"bob"}},
	)
	pub := &recordingPublisher{}
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	opts = append([]ChatOption{
		WithAccessControl(proxy.NewAccessControl(journeys, nil)),
		WithClock(tick),
	}, opts...)
	svc := NewChatService(repo, users, journeys, pub, nil, opts...)
	return fixture{svc: svc, repo: repo, publisher: pub}
}

func (f fixture) send(t *testing.T, sender, roomID, content string) message.Message {
	t.Helper()
	msg, err := f.svc.SaveMessage(context.Background(), SaveMessageInput{
		SenderID: sender,
		RoomID:   roomID,
		Content:  content,
	})
	require.NoError(t, err)
	return msg
}

func TestSaveMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("group planning message", func(t *testing.T) {
		f := newFixture(t)
		msg := f.send(t, "alice", "journey_j1", "Hello")

		assert.NotEqual(t, uuid.Nil, msg.ID)
		assert.Equal(t, message.TypeText, msg.Type)
		assert.Equal(t, message.StatusSent, msg.Status)
		assert.Equal(t, "j1", msg.JourneyID)
		require.NotNil(t, msg.Sender)
		assert.Equal(t, "Alice", msg.Sender.DisplayName)

		stored, err := f.repo.GetByID(ctx, msg.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello", stored.Content)

		published := f.publisher.ofType(events.EventNewMessage)
		require.Len(t, published, 1)
		assert.Equal(t, "journey_j1", published[0].RoomID)
		assert.Empty(t, f.publisher.ofType(events.EventNotification))
	})

	t.Run("location coordinates come from the room id", func(t *testing.T) {
		f := newFixture(t)
		msg, err := f.svc.SaveMessage(ctx, SaveMessageInput{
			SenderID: "carol",
			RoomID:   "location_12.5_-45.0",
			Content:  "nice view",
			Type:     message.TypeLocation,
			Location: &message.Location{Name: "Summit"},
		})
		require.NoError(t, err)
		require.NotNil(t, msg.Location)
		assert.Equal(t, "Summit", msg.Location.Name)
		assert.Equal(t, 12.5, msg.Location.Coordinates.Lat)
		assert.Equal(t, -45.0, msg.Location.Coordinates.Lon)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		cases := []SaveMessageInput{
			{SenderID: "alice", RoomID: "journey_j1", Content: "   "},
			{SenderID: "alice", RoomID: "journey_j1", Content: strings.Repeat("a", 1001)},
			{SenderID: "alice", RoomID: "location_abc", Content: "hi"},
			{SenderID: "alice", RoomID: "journey_j1", Content: "hi", Type: "sticker"},
		}
		for _, in := range cases {
			_, err := f.svc.SaveMessage(ctx, in)
			assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)
		}
		assert.Empty(t, f.publisher.ofType(events.EventNewMessage))

		page, err := f.svc.GetChatHistory(ctx, "journey_j1", 1, 50)
		require.NoError(t, err)
		assert.Zero(t, page.Total)
	})

	t.Run("exactly 1000 characters is accepted", func(t *testing.T) {
		f := newFixture(t)
		f.send(t, "alice", "journey_j1", strings.Repeat("é", 1000))
	})

	t.Run("system messages are not length limited", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SaveMessage(ctx, SaveMessageInput{
			SenderID: "alice",
			RoomID:   "journey_j1",
			Content:  strings.Repeat("a", 1500),
			Type:     message.TypeSystem,
		})
		require.NoError(t, err)
	})

	t.Run("parent must be in the same room", func(t *testing.T) {
		f := newFixture(t)
		parent := f.send(t, "bob", "qa_j1_bob", "Is the hike hard?")
		other := f.send(t, "alice", "journey_j1", "unrelated")

		reply, err := f.svc.SaveMessage(ctx, SaveMessageInput{
			SenderID: "alice", RoomID: "qa_j1_bob", Content: "Not really", ParentMessageID: &parent.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, parent.ID, *reply.ParentMessageID)

		_, err = f.svc.SaveMessage(ctx, SaveMessageInput{
			SenderID: "alice", RoomID: "qa_j1_bob", Content: "x", ParentMessageID: &other.ID,
		})
		assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)

		missing := uuid.New()
		_, err = f.svc.SaveMessage(ctx, SaveMessageInput{
			SenderID: "alice", RoomID: "qa_j1_bob", Content: "x", ParentMessageID: &missing,
		})
		assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)
	})

	t.Run("store failures are wrapped", func(t *testing.T) {
		svc := NewChatService(failingMessageRepository{}, nil, nil, nil, nil)
		_, err := svc.SaveMessage(ctx, SaveMessageInput{SenderID: "alice", RoomID: "journey_j1", Content: "hi"})
		assert.ErrorIs(t, err, chat_errors.ErrStorage)
	})
}

func TestSaveMessageNotifications(t *testing.T) {
	t.Run("direct room notifies the other participant", func(t *testing.T) {
		f := newFixture(t)
		msg := f.send(t, "alice", "direct_alice_bob", "hey")

		notes := f.publisher.ofType(events.EventNotification)
		require.Len(t, notes, 1)
		assert.Equal(t, "bob", notes[0].UserID)
		payload := notes[0].Payload.(events.NotificationPayload)
		assert.Equal(t, msg.ID, payload.MessageID)
		assert.Equal(t, "alice", payload.SenderID)
		assert.Equal(t, "hey", payload.Preview)
	})

	t.Run("asker question notifies the journey creator", func(t *testing.T) {
		f := newFixture(t)
		f.send(t, "carol", "qa_j1_carol", "Room for one more?")

		notes := f.publisher.ofType(events.EventNotification)
		require.Len(t, notes, 1)
		assert.Equal(t, "alice", notes[0].UserID)
	})

	t.Run("creator answer notifies the asker", func(t *testing.T) {
		f := newFixture(t)
		f.send(t, "alice", "qa_j1_carol", "Sure")

		notes := f.publisher.ofType(events.EventNotification)
		require.Len(t, notes, 1)
		assert.Equal(t, "carol", notes[0].UserID)
	})
}

func TestGetChatHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var sent []message.Message
	for _, c := range []string{"one", "two", "three", "four", "five"} {
		sent = append(sent, f.send(t, "alice", "journey_j1", c))
	}

	page, err := f.svc.GetChatHistory(ctx, "journey_j1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.True(t, page.HasMore)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "four", page.Messages[0].Content)
	assert.Equal(t, "five", page.Messages[1].Content)
	require.NotNil(t, page.Messages[0].Sender)
	assert.Equal(t, "alice", page.Messages[0].Sender.Username)

	last, err := f.svc.GetChatHistory(ctx, "journey_j1", 3, 2)
	require.NoError(t, err)
	require.Len(t, last.Messages, 1)
	assert.Equal(t, "one", last.Messages[0].Content)
	assert.False(t, last.HasMore)

	t.Run("defaults and caps", func(t *testing.T) {
		page, err := f.svc.GetChatHistory(ctx, "journey_j1", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, DefaultPageSize, page.PageSize)

		page, err = f.svc.GetChatHistory(ctx, "journey_j1", 1, 1000)
		require.NoError(t, err)
		assert.Equal(t, MaxPageSize, page.PageSize)
	})

	t.Run("page beyond offset range", func(t *testing.T) {
		for _, tc := range []struct{ page, size int }{
			{math.MaxInt/20 + 2, 20},
			{math.MaxInt, MaxPageSize},
			{math.MaxInt/2 + 1, 0},
		} {
			_, err := f.svc.GetChatHistory(ctx, "journey_j1", tc.page, tc.size)
			require.Error(t, err)
			assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)
			assert.NotErrorIs(t, err, chat_errors.ErrStorage)
		}

		largest := math.MaxInt / 20
		page, err := f.svc.GetChatHistory(ctx, "journey_j1", largest, 20)
		require.NoError(t, err)
		assert.Empty(t, page.Messages)
		assert.False(t, page.HasMore)
	})

	t.Run("deleted messages never appear", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteMessage(ctx, sent[4].ID, "alice"))

		page, err := f.svc.GetChatHistory(ctx, "journey_j1", 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.Total)
		require.Len(t, page.Messages, 2)
		assert.Equal(t, "three", page.Messages[0].Content)
		assert.Equal(t, "four", page.Messages[1].Content)

		for p := 1; p <= 2; p++ {
			page, err := f.svc.GetChatHistory(ctx, "journey_j1", p, 2)
			require.NoError(t, err)
			for _, m := range page.Messages {
				assert.False(t, m.IsDeleted)
				assert.NotEqual(t, sent[4].ID, m.ID)
			}
		}
	})
}

func TestEditMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("second edit keeps the first original", func(t *testing.T) {
		f := newFixture(t)
		msg := f.send(t, "alice", "journey_j1", "v1")

		require.NoError(t, f.svc.EditMessage(ctx, msg.ID, "alice", "v2"))
		require.NoError(t, f.svc.EditMessage(ctx, msg.ID, "alice", "v3"))

		stored, err := f.repo.GetByID(ctx, msg.ID)
		require.NoError(t, err)
		assert.Equal(t, "v3", stored.Content)
		assert.Equal(t, "v1", stored.OriginalContent)
		assert.True(t, stored.IsEdited)
		require.NotNil(t, stored.EditedAt)

		edits := f.publisher.ofType(events.EventMessageEdited)
		require.Len(t, edits, 2)
		assert.Equal(t, "v3", edits[1].Payload.(events.MessageEditedPayload).Content)
	})

	t.Run("non-owner is forbidden and content is unchanged", func(t *testing.T) {
		f := newFixture(t)
		msg := f.send(t, "alice", "journey_j1", "original")

		err := f.svc.EditMessage(ctx, msg.ID, "bob", "hijacked")
		assert.ErrorIs(t, err, chat_errors.ErrForbidden)

		page, err := f.svc.GetChatHistory(ctx, "journey_j1", 1, 50)
		require.NoError(t, err)
		require.Len(t, page.Messages, 1)
		assert.Equal(t, "original", page.Messages[0].Content)
		assert.False(t, page.Messages[0].IsEdited)
		assert.Empty(t, f.publisher.ofType(events.EventMessageEdited))
	})

	t.Run("unknown, deleted and invalid", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.svc.EditMessage(ctx, uuid.New(), "alice", "x"), chat_errors.ErrNotFound)

		msg := f.send(t, "alice", "journey_j1", "soon gone")
		assert.ErrorIs(t, f.svc.EditMessage(ctx, msg.ID, "alice", " "), chat_errors.ErrInvalidInput)
		require.NoError(t, f.svc.DeleteMessage(ctx, msg.ID, "alice"))
		assert.ErrorIs(t, f.svc.EditMessage(ctx, msg.ID, "alice", "back"), chat_errors.ErrNotFound)
	})
}

func TestDeleteMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	msg := f.send(t, "alice", "journey_j1", "secret")

	assert.ErrorIs(t, f.svc.DeleteMessage(ctx, msg.ID, "bob"), chat_errors.ErrForbidden)
	require.NoError(t, f.svc.DeleteMessage(ctx, msg.ID, "alice"))

	stored, err := f.repo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
	assert.Equal(t, message.DeletedContent, stored.Content)

	deleted := f.publisher.ofType(events.EventMessageDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, msg.ID, deleted[0].Payload.(events.MessageDeletedPayload).MessageID)

	assert.ErrorIs(t, f.svc.DeleteMessage(ctx, msg.ID, "alice"), chat_errors.ErrNotFound)
}

func TestReactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	msg := f.send(t, "alice", "journey_j1", "summit at dawn?")

	require.NoError(t, f.svc.AddReaction(ctx, msg.ID, "bob", "👍"))
	require.NoError(t, f.svc.AddReaction(ctx, msg.ID, "bob", "🎉"))

	stored, err := f.repo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	require.Len(t, stored.Reactions, 1)
	assert.Equal(t, "bob", stored.Reactions[0].UserID)
	assert.Equal(t, "🎉", stored.Reactions[0].Emoji)

	added := f.publisher.ofType(events.EventReactionAdded)
	require.Len(t, added, 2)
	assert.Len(t, added[1].Payload.(events.ReactionPayload).Reactions, 1)

	t.Run("outsiders cannot react", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.AddReaction(ctx, msg.ID, "carol", "👎"), chat_errors.ErrForbidden)
	})

	t.Run("empty emoji", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.AddReaction(ctx, msg.ID, "bob", ""), chat_errors.ErrInvalidInput)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		require.NoError(t, f.svc.RemoveReaction(ctx, msg.ID, "bob"))
		require.NoError(t, f.svc.RemoveReaction(ctx, msg.ID, "bob"))

		stored, err := f.repo.GetByID(ctx, msg.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Reactions)
		assert.Len(t, f.publisher.ofType(events.EventReactionRemoved), 2)
	})
}

func TestMarkMessagesAsRead(t *testing.T) {
	ctx := context.Background()

	t.Run("repeat call marks nothing", func(t *testing.T) {
		f := newFixture(t)
		m1 := f.send(t, "alice", "journey_j1", "one")
		m2 := f.send(t, "alice", "journey_j1", "two")
		ids := []uuid.UUID{m1.ID, m2.ID}

		n, err := f.svc.MarkMessagesAsRead(ctx, "journey_j1", "bob", ids)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = f.svc.MarkMessagesAsRead(ctx, "journey_j1", "bob", ids)
		require.NoError(t, err)
		assert.Zero(t, n)

		stored, err := f.repo.GetByID(ctx, m1.ID)
		require.NoError(t, err)
		assert.Len(t, stored.ReadBy, 1)
		assert.Equal(t, message.StatusRead, stored.Status)

		reads := f.publisher.ofType(events.EventMessagesRead)
		require.Len(t, reads, 1)
		assert.Equal(t, int64(2), reads[0].Payload.(events.MessagesReadPayload).Count)
	})

	t.Run("empty ids marks everything unread from others", func(t *testing.T) {
		f := newFixture(t)
		f.send(t, "alice", "journey_j1", "from alice")
		f.send(t, "bob", "journey_j1", "from bob")
		gone := f.send(t, "alice", "journey_j1", "deleted")
		require.NoError(t, f.svc.DeleteMessage(ctx, gone.ID, "alice"))

		n, err := f.svc.MarkMessagesAsRead(ctx, "journey_j1", "bob", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.MarkMessagesAsRead(ctx, "journey_j1", "carol", nil)
		assert.ErrorIs(t, err, chat_errors.ErrForbidden)
	})
}

func TestParticipantsAndUserChats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.send(t, "alice", "journey_j1", "hello team")
	f.send(t, "bob", "journey_j1", "hi")
	f.send(t, "alice", "direct_alice_carol", "psst")

	people, err := f.svc.GetParticipants(ctx, "direct_alice_carol")
	require.NoError(t, err)
	var ids []string
	for _, p := range people {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"alice", "carol"}, ids)

	chats, err := f.svc.GetUserChats(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "direct_alice_carol", chats[0].RoomID)
	require.NotNil(t, chats[0].LastMessage.Sender)
	assert.Equal(t, "Alice", chats[0].LastMessage.Sender.DisplayName)
	assert.Equal(t, int64(1), chats[1].UnreadCount)
}

func TestHistoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("reads through and invalidates on write", func(t *testing.T) {
		cache := newMapCache()
		f := newFixture(t, WithHistoryCache(cache, time.Minute))
		msg := f.send(t, "alice", "journey_j1", "first")

		_, err := f.svc.GetChatHistory(ctx, "journey_j1", 1, 50)
		require.NoError(t, err)
		assert.Contains(t, cache.keys(), HistoryCacheKey("journey_j1", 1, 50))

		page, err := f.svc.GetChatHistory(ctx, "journey_j1", 1, 50)
		require.NoError(t, err)
		assert.Equal(t, 1, cache.hits)
		assert.Equal(t, "first", page.Messages[0].Content)

		require.NoError(t, f.svc.EditMessage(ctx, msg.ID, "alice", "edited"))
		assert.NotContains(t, cache.keys(), HistoryCacheKey("journey_j1", 1, 50))

		page, err = f.svc.GetChatHistory(ctx, "journey_j1", 1, 50)
		require.NoError(t, err)
		assert.Equal(t, "edited", page.Messages[0].Content)
	})

	t.Run("unavailable cache falls back to the store", func(t *testing.T) {
		f := newFixture(t, WithHistoryCache(failingCache{}, time.Minute), WithProfileCache(failingCache{}, time.Minute))
		msg := f.send(t, "alice", "journey_j1", "still works")
		require.NoError(t, f.svc.EditMessage(ctx, msg.ID, "alice", "still edits"))

		page, err := f.svc.GetChatHistory(ctx, "journey_j1", 1, 50)
		require.NoError(t, err)
		require.Len(t, page.Messages, 1)
		assert.Equal(t, "still edits", page.Messages[0].Content)
		assert.Equal(t, "Alice", page.Messages[0].Sender.DisplayName)
	})
}

func TestChatServiceOverBus(t *testing.T) {
	backbone := events.NewMemoryBackbone()
	bus := events.NewBus(backbone, nil, "instance-a", nil)

	var mu sync.Mutex
	var got []events.Envelope
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, bus.Subscribe(ctx, func(_ string, env events.Envelope) {
		mu.Lock()
		got = append(got, env)
		mu.Unlock()
	}))

	svc := NewChatService(repository.NewMemoryMessageRepository(), nil, nil, bus, nil)
	_, err := svc.SaveMessage(context.Background(), SaveMessageInput{SenderID: "u1", RoomID: "direct_u1_u2", Content: "yo"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, events.EventNewMessage, got[0].Type)
	assert.Equal(t, "direct_u1_u2", got[0].RoomID)
	assert.Equal(t, "instance-a", got[0].Origin)
	assert.Equal(t, events.EventNotification, got[1].Type)
	assert.Equal(t, "u2", got[1].UserID)
}
