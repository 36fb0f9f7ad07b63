package services

import (
	"context"
	"fmt"
	"time"

	"journey-chat/internal/domain/message"
	"journey-chat/internal/events"
	"journey-chat/internal/repository"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const historyKeyPrefix = "chat_history:"

// HistoryPage is one page of a room's history, oldest message first.
type HistoryPage struct {
	Messages []message.Message `json:"messages"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Total    int64             `json:"total"`
	HasMore  bool              `json:"hasMore"`
}

// HistoryReader serves room history. Invalidate drops whatever the reader
// remembers about a room after a write.
type HistoryReader interface {
	History(ctx context.Context, roomID string, page, pageSize int) (HistoryPage, error)
	Invalidate(ctx context.Context, roomID string)
}

// storeHistory reads history straight from the message store.
type storeHistory struct {
	messages    repository.MessageRepository
	profiles    *ProfileResolver
	attachments AttachmentResolver
}

func (h *storeHistory) History(ctx context.Context, roomID string, page, pageSize int) (HistoryPage, error) {
	offset := (page - 1) * pageSize
	msgs, total, err := h.messages.ListByRoom(ctx, roomID, offset, pageSize)
	if err != nil {
		return HistoryPage{}, err
	}

	// newest-first from the store, oldest-first to clients
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	decorate(ctx, msgs, h.profiles, h.attachments)

	return HistoryPage{
		Messages: msgs,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  int64(offset+len(msgs)) < total,
	}, nil
}

func (h *storeHistory) Invalidate(context.Context, string) {}

// CachedHistory is a read-through cache in front of another HistoryReader.
// Cache failures fall back to the inner reader.
type CachedHistory struct {
	inner  HistoryReader
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedHistory(inner HistoryReader, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedHistory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedHistory{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func HistoryCacheKey(roomID string, page, pageSize int) string {
	return fmt.Sprintf("%s%s:%d:%d", historyKeyPrefix, roomID, page, pageSize)
}

func (c *CachedHistory) History(ctx context.Context, roomID string, page, pageSize int) (HistoryPage, error) {
	key := HistoryCacheKey(roomID, page, pageSize)

	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("history cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		var cached HistoryPage
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("discarding undecodable history cache entry", zap.String("key", key))
	}

	hp, err := c.inner.History(ctx, roomID, page, pageSize)
	if err != nil {
		return HistoryPage{}, err
	}
	if data, err := json.Marshal(hp); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("history cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return hp, nil
}

// Invalidate removes every cached page of the room.
func (c *CachedHistory) Invalidate(ctx context.Context, roomID string) {
	pattern := historyKeyPrefix + events.EscapeGlob(roomID) + ":*"
	if err := c.cache.DeletePattern(ctx, pattern); err != nil {
		c.logger.Warn("history cache invalidation failed", zap.String("room_id", roomID), zap.Error(err))
	}
	c.inner.Invalidate(ctx, roomID)
}

// decorate fills sender profiles and attachment URLs in place.
func decorate(ctx context.Context, msgs []message.Message, profiles *ProfileResolver, attachments AttachmentResolver) {
	if len(msgs) == 0 {
		return
	}
	if profiles != nil {
		ids := make([]string, len(msgs))
		for i := range msgs {
			ids[i] = msgs[i].SenderID
		}
		resolved := profiles.Resolve(ctx, ids)
		for i := range msgs {
			prof := resolved[msgs[i].SenderID]
			msgs[i].Sender = &prof
		}
	}
	if attachments != nil {
		for i := range msgs {
			msgs[i].Attachments = attachments.ResolveAttachments(ctx, msgs[i].Attachments)
		}
	}
}
