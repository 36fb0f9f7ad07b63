package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"journey-chat/internal/domain/journey"
	"journey-chat/internal/domain/message"
	"journey-chat/internal/domain/user"
	chat_errors "journey-chat/pkg/errors"

	"github.com/google/uuid"
)

type storedMessage struct {
	seq int64
	msg message.Message
}

// MemoryMessageRepository keeps messages in process memory. It backs the
// "memory" storage driver and the service tests.
type MemoryMessageRepository struct {
	mu       sync.RWMutex
	seq      int64
	messages map[uuid.UUID]*storedMessage
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{messages: make(map[uuid.UUID]*storedMessage)}
}

func (r *MemoryMessageRepository) Create(_ context.Context, m *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[m.ID]; ok {
		return fmt.Errorf("%w: duplicate message id", chat_errors.ErrInvalidInput)
	}
	r.seq++
	r.messages[m.ID] = &storedMessage{seq: r.seq, msg: cloneMessage(*m)}
	return nil
}

func (r *MemoryMessageRepository) GetByID(_ context.Context, id uuid.UUID) (message.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sm, ok := r.messages[id]
	if !ok {
		return message.Message{}, chat_errors.ErrNotFound
	}
	return cloneMessage(sm.msg), nil
}

func (r *MemoryMessageRepository) ListByRoom(_ context.Context, roomID string, offset, limit int) ([]message.Message, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	live := r.roomMessages(roomID, func(m *message.Message) bool { return !m.IsDeleted })
	sort.Slice(live, func(i, j int) bool { return newerFirst(live[i], live[j]) })

	total := int64(len(live))
	out := []message.Message{}
	if offset < 0 {
		offset = 0
	}
	for i := offset; i < len(live) && len(out) < limit; i++ {
		out = append(out, cloneMessage(live[i].msg))
	}
	return out, total, nil
}

func (r *MemoryMessageRepository) UpdateContent(_ context.Context, id uuid.UUID, content string, editedAt time.Time) (message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sm, ok := r.messages[id]
	if !ok || sm.msg.IsDeleted {
		return message.Message{}, chat_errors.ErrNotFound
	}
	sm.msg.Edit(content, editedAt)
	return cloneMessage(sm.msg), nil
}

func (r *MemoryMessageRepository) SoftDelete(_ context.Context, id uuid.UUID, deletedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sm, ok := r.messages[id]
	if !ok || sm.msg.IsDeleted {
		return chat_errors.ErrNotFound
	}
	sm.msg.MarkDeleted(deletedAt)
	return nil
}

func (r *MemoryMessageRepository) UpsertReaction(_ context.Context, id uuid.UUID, userID, emoji string, at time.Time) ([]message.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sm, ok := r.messages[id]
	if !ok {
		return nil, chat_errors.ErrNotFound
	}
	sm.msg.SetReaction(userID, emoji, at)
	return cloneReactions(sm.msg.Reactions), nil
}

func (r *MemoryMessageRepository) RemoveReaction(_ context.Context, id uuid.UUID, userID string) ([]message.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sm, ok := r.messages[id]
	if !ok {
		return nil, chat_errors.ErrNotFound
	}
	sm.msg.RemoveReaction(userID)
	return cloneReactions(sm.msg.Reactions), nil
}

func (r *MemoryMessageRepository) MarkRead(_ context.Context, roomID, userID string, ids []uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var targets []*storedMessage
	if len(ids) == 0 {
		targets = r.roomMessages(roomID, func(m *message.Message) bool {
			return !m.IsDeleted && m.SenderID != userID
		})
	} else {
		seen := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			sm, ok := r.messages[id]
			if !ok || seen[id] || sm.msg.RoomID != roomID || sm.msg.IsDeleted {
				continue
			}
			seen[id] = true
			targets = append(targets, sm)
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].seq < targets[j].seq })

	marked := []uuid.UUID{}
	for _, sm := range targets {
		if sm.msg.MarkRead(userID, at) {
			marked = append(marked, sm.msg.ID)
		}
	}
	return marked, nil
}

func (r *MemoryMessageRepository) ListParticipants(_ context.Context, roomID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.roomMessages(roomID, func(*message.Message) bool { return true })
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })

	seen := map[string]bool{}
	out := []string{}
	for _, sm := range all {
		if !seen[sm.msg.SenderID] {
			seen[sm.msg.SenderID] = true
			out = append(out, sm.msg.SenderID)
		}
	}
	return out, nil
}

func (r *MemoryMessageRepository) ListRoomsForUser(_ context.Context, userID string) ([]RoomSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := map[string]bool{}
	for _, sm := range r.messages {
		if sm.msg.SenderID == userID || sm.msg.HasReadBy(userID) {
			rooms[sm.msg.RoomID] = true
		}
	}

	summaries := []RoomSummary{}
	for roomID := range rooms {
		live := r.roomMessages(roomID, func(m *message.Message) bool { return !m.IsDeleted })
		if len(live) == 0 {
			continue
		}
		sort.Slice(live, func(i, j int) bool { return newerFirst(live[i], live[j]) })
		var unread int64
		for _, sm := range live {
			if sm.msg.SenderID != userID && !sm.msg.HasReadBy(userID) {
				unread++
			}
		}
		summaries = append(summaries, RoomSummary{
			RoomID:       roomID,
			RoomCategory: live[0].msg.RoomCategory,
			LastMessage:  cloneMessage(live[0].msg),
			UnreadCount:  unread,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.CreatedAt.After(summaries[j].LastMessage.CreatedAt)
	})
	return summaries, nil
}

// roomMessages must be called with the lock held.
func (r *MemoryMessageRepository) roomMessages(roomID string, keep func(*message.Message) bool) []*storedMessage {
	var out []*storedMessage
	for _, sm := range r.messages {
		if sm.msg.RoomID == roomID && keep(&sm.msg) {
			out = append(out, sm)
		}
	}
	return out
}

func newerFirst(a, b *storedMessage) bool {
	if !a.msg.CreatedAt.Equal(b.msg.CreatedAt) {
		return a.msg.CreatedAt.After(b.msg.CreatedAt)
	}
	return a.seq > b.seq
}

func cloneMessage(m message.Message) message.Message {
	out := m
	out.Attachments = append([]message.Attachment{}, m.Attachments...)
	out.Reactions = cloneReactions(m.Reactions)
	out.ReadBy = append([]message.ReadReceipt{}, m.ReadBy...)
	if m.Location != nil {
		loc := *m.Location
		out.Location = &loc
	}
	if m.Sender != nil {
		sender := *m.Sender
		out.Sender = &sender
	}
	return out
}

func cloneReactions(in []message.Reaction) []message.Reaction {
	return append([]message.Reaction{}, in...)
}

// MemoryUserRepository serves profiles from a fixed set, for tests and the
// memory storage driver.
type MemoryUserRepository struct {
	mu       sync.RWMutex
	profiles map[string]user.PublicProfile
}

func NewMemoryUserRepository(profiles ...user.PublicProfile) *MemoryUserRepository {
	r := &MemoryUserRepository{profiles: make(map[string]user.PublicProfile)}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *MemoryUserRepository) Put(p user.PublicProfile) {
	r.mu.Lock()
	r.profiles[p.ID] = p
	r.mu.Unlock()
}

func (r *MemoryUserRepository) GetPublicProfile(_ context.Context, id string) (user.PublicProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return user.PublicProfile{}, chat_errors.ErrNotFound
	}
	return p, nil
}

func (r *MemoryUserRepository) GetPublicProfiles(_ context.Context, ids []string) (map[string]user.PublicProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]user.PublicProfile, len(ids))
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type MemoryJourneyRepository struct {
	mu       sync.RWMutex
	journeys map[string]journey.Journey
}

func NewMemoryJourneyRepository(journeys ...journey.Journey) *MemoryJourneyRepository {
	r := &MemoryJourneyRepository{journeys: make(map[string]journey.Journey)}
	for _, j := range journeys {
		r.journeys[j.ID] = j
	}
	return r
}

func (r *MemoryJourneyRepository) Put(j journey.Journey) {
	r.mu.Lock()
	r.journeys[j.ID] = j
	r.mu.Unlock()
}

func (r *MemoryJourneyRepository) GetByID(_ context.Context, id string) (journey.Journey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.journeys[id]
	if !ok {
		return journey.Journey{}, chat_errors.ErrNotFound
	}
	return j, nil
}
