package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"journey-chat/internal/domain/message"
	"journey-chat/internal/domain/room"
	"journey-chat/internal/domain/user"
	"journey-chat/internal/events"
	"journey-chat/internal/metrics"
	"journey-chat/internal/repository"
	chat_errors "journey-chat/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
	maxEmojiLength  = 32
	previewLength   = 100
)

// RoomAuthorizer is the room access policy as the service sees it.
type RoomAuthorizer interface {
	CanAccessRoom(ctx context.Context, userID, roomID string) bool
}

type SaveMessageInput struct {
	SenderID        string
	RoomID          string
	Content         string
	Type            message.Type
	Attachments     []message.Attachment
	ParentMessageID *uuid.UUID
	Location        *message.Location
}

// ChatService persists chat messages and their mutations and announces each
// change on the backbone.
type ChatService struct {
	messages    repository.MessageRepository
	journeys    repository.JourneyRepository
	profiles    *ProfileResolver
	history     HistoryReader
	access      RoomAuthorizer
	attachments AttachmentResolver
	events      EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

type ChatOption func(*ChatService)

// WithHistoryCache puts a read-through cache in front of history reads.
func WithHistoryCache(cache Cache, ttl time.Duration) ChatOption {
	return func(s *ChatService) {
		if cache != nil {
			s.history = NewCachedHistory(s.history, cache, ttl, s.logger)
		}
	}
}

// WithProfileCache caches sender profiles.
func WithProfileCache(cache Cache, ttl time.Duration) ChatOption {
	return func(s *ChatService) {
		s.profiles.cache = cache
		s.profiles.ttl = ttl
	}
}

func WithAccessControl(access RoomAuthorizer) ChatOption {
	return func(s *ChatService) { s.access = access }
}

func WithAttachmentResolver(r AttachmentResolver) ChatOption {
	return func(s *ChatService) { s.attachments = r }
}

func WithClock(now func() time.Time) ChatOption {
	return func(s *ChatService) { s.now = now }
}

func NewChatService(
	messages repository.MessageRepository,
	users repository.UserRepository,
	journeys repository.JourneyRepository,
	publisher EventPublisher,
	logger *zap.Logger,
	opts ...ChatOption,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	s := &ChatService{
		messages: messages,
		journeys: journeys,
		profiles: NewProfileResolver(users, nil, 0, logger),
		events:   publisher,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.history = &storeHistory{messages: messages, profiles: s.profiles}
	for _, opt := range opts {
		opt(s)
	}
	// the attachment resolver may be set after the history cache wrapped the store
	if sh, ok := innermostHistory(s.history).(*storeHistory); ok {
		sh.attachments = s.attachments
	}
	return s
}

func innermostHistory(h HistoryReader) HistoryReader {
	for {
		c, ok := h.(*CachedHistory)
		if !ok {
			return h
		}
		h = c.inner
	}
}

// Authorize returns ErrForbidden unless userID may use roomID.
func (s *ChatService) Authorize(ctx context.Context, userID, roomID string) error {
	if s.access == nil {
		return nil
	}
	if !s.access.CanAccessRoom(ctx, userID, roomID) {
		return fmt.Errorf("%w: no access to room %s", chat_errors.ErrForbidden, roomID)
	}
	return nil
}

// ValidateContent checks the content rules shared by every send path.
func ValidateContent(content string, kind message.Type) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: message content is required", chat_errors.ErrInvalidInput)
	}
	if kind != message.TypeSystem && utf8.RuneCountInString(content) > message.MaxContentLength {
		return fmt.Errorf("%w: message exceeds %d characters", chat_errors.ErrInvalidInput, message.MaxContentLength)
	}
	return nil
}

func (s *ChatService) SaveMessage(ctx context.Context, in SaveMessageInput) (msg message.Message, err error) {
	defer s.observe("save_message", time.Now(), &err)

	if in.SenderID == "" {
		return message.Message{}, chat_errors.ErrUnauthorized
	}
	ref, err := room.Parse(in.RoomID)
	if err != nil {
		return message.Message{}, fmt.Errorf("%w: %v", chat_errors.ErrInvalidInput, err)
	}
	kind := in.Type
	if kind == "" {
		kind = message.TypeText
	}
	if !kind.Valid() {
		return message.Message{}, fmt.Errorf("%w: unknown message type %q", chat_errors.ErrInvalidInput, kind)
	}
	if err := ValidateContent(in.Content, kind); err != nil {
		return message.Message{}, err
	}
	if in.ParentMessageID != nil {
		parent, err := s.messages.GetByID(ctx, *in.ParentMessageID)
		if err != nil {
			if errors.Is(err, chat_errors.ErrNotFound) {
				return message.Message{}, fmt.Errorf("%w: parent message not found", chat_errors.ErrInvalidInput)
			}
			return message.Message{}, storageError(err)
		}
		if parent.RoomID != in.RoomID {
			return message.Message{}, fmt.Errorf("%w: parent message belongs to another room", chat_errors.ErrInvalidInput)
		}
	}

	now := s.now()
	msg = message.Message{
		ID:              uuid.New(),
		SenderID:        in.SenderID,
		Content:         in.Content,
		Type:            kind,
		RoomID:          in.RoomID,
		RoomCategory:    ref.Category,
		JourneyID:       ref.JourneyID(),
		ParentMessageID: in.ParentMessageID,
		Attachments:     append([]message.Attachment{}, in.Attachments...),
		Status:          message.StatusSent,
		ReadBy:          []message.ReadReceipt{},
		Reactions:       []message.Reaction{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if ref.Category == room.CategoryLocationChat {
		loc := message.Location{Coordinates: ref.Location.Coordinates}
		if in.Location != nil {
			loc.Name = in.Location.Name
		}
		msg.Location = &loc
	}

	if err := s.messages.Create(ctx, &msg); err != nil {
		return message.Message{}, storageError(err)
	}

	sender := s.profiles.ResolveOne(ctx, msg.SenderID)
	msg.Sender = &sender
	if s.attachments != nil {
		msg.Attachments = s.attachments.ResolveAttachments(ctx, msg.Attachments)
	}

	s.events.PublishRoom(ctx, events.EventNewMessage, msg.RoomID, events.NewMessagePayload{Message: msg})
	s.notifyCounterpart(ctx, ref, msg)
	return msg, nil
}

// notifyCounterpart tells the other side of a one-to-one room about a new
// message on their private channel.
func (s *ChatService) notifyCounterpart(ctx context.Context, ref room.Ref, msg message.Message) {
	var recipient string
	switch ref.Category {
	case room.CategoryDirect:
		recipient = ref.Direct.Other(msg.SenderID)
	case room.CategoryQAChat:
		if msg.SenderID != ref.QA.AskerID {
			recipient = ref.QA.AskerID
		} else if s.journeys != nil {
			j, err := s.journeys.GetByID(ctx, ref.QA.JourneyID)
			if err != nil {
				s.logger.Warn("journey lookup for notification failed", zap.String("journey_id", ref.QA.JourneyID), zap.Error(err))
				return
			}
			recipient = j.CreatorID
		}
	default:
		return
	}
	if recipient == "" || recipient == msg.SenderID {
		return
	}
	s.events.PublishUser(ctx, events.EventNotification, recipient, events.NotificationPayload{
		Kind:         string(events.EventNewMessage),
		RoomID:       msg.RoomID,
		RoomCategory: msg.RoomCategory,
		MessageID:    msg.ID,
		From:         msg.Sender,
		SenderID:     msg.SenderID,
		Preview:      preview(msg.Content),
	})
}

func (s *ChatService) GetChatHistory(ctx context.Context, roomID string, page, pageSize int) (hp HistoryPage, err error) {
	defer s.observe("get_chat_history", time.Now(), &err)

	if _, err := room.Parse(roomID); err != nil {
		return HistoryPage{}, fmt.Errorf("%w: %v", chat_errors.ErrInvalidInput, err)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	// the offset (page-1)*pageSize must stay representable
	if page > math.MaxInt/pageSize {
		return HistoryPage{}, fmt.Errorf("%w: page %d out of range", chat_errors.ErrInvalidInput, page)
	}

	hp, err = s.history.History(ctx, roomID, page, pageSize)
	if err != nil {
		return HistoryPage{}, storageError(err)
	}
	return hp, nil
}

func (s *ChatService) EditMessage(ctx context.Context, id uuid.UUID, userID, content string) (err error) {
	defer s.observe("edit_message", time.Now(), &err)

	msg, err := s.ownedMessage(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := ValidateContent(content, msg.Type); err != nil {
		return err
	}

	updated, err := s.messages.UpdateContent(ctx, id, content, s.now())
	if err != nil {
		return storageError(err)
	}

	s.history.Invalidate(ctx, msg.RoomID)
	s.events.PublishRoom(ctx, events.EventMessageEdited, msg.RoomID, events.MessageEditedPayload{
		MessageID: id,
		RoomID:    msg.RoomID,
		Content:   updated.Content,
		EditedAt:  derefTime(updated.EditedAt),
	})
	return nil
}

func (s *ChatService) DeleteMessage(ctx context.Context, id uuid.UUID, userID string) (err error) {
	defer s.observe("delete_message", time.Now(), &err)

	msg, err := s.ownedMessage(ctx, id, userID)
	if err != nil {
		return err
	}

	deletedAt := s.now()
	if err := s.messages.SoftDelete(ctx, id, deletedAt); err != nil {
		return storageError(err)
	}

	s.history.Invalidate(ctx, msg.RoomID)
	s.events.PublishRoom(ctx, events.EventMessageDeleted, msg.RoomID, events.MessageDeletedPayload{
		MessageID: id,
		RoomID:    msg.RoomID,
		DeletedAt: deletedAt,
	})
	return nil
}

func (s *ChatService) AddReaction(ctx context.Context, id uuid.UUID, userID, emoji string) (err error) {
	defer s.observe("add_reaction", time.Now(), &err)

	emoji = strings.TrimSpace(emoji)
	if emoji == "" || len(emoji) > maxEmojiLength {
		return fmt.Errorf("%w: invalid emoji", chat_errors.ErrInvalidInput)
	}
	msg, err := s.reactableMessage(ctx, id, userID)
	if err != nil {
		return err
	}

	reactions, err := s.messages.UpsertReaction(ctx, id, userID, emoji, s.now())
	if err != nil {
		return storageError(err)
	}

	s.history.Invalidate(ctx, msg.RoomID)
	s.events.PublishRoom(ctx, events.EventReactionAdded, msg.RoomID, events.ReactionPayload{
		MessageID: id,
		RoomID:    msg.RoomID,
		UserID:    userID,
		Emoji:     emoji,
		Reactions: reactions,
	})
	return nil
}

func (s *ChatService) RemoveReaction(ctx context.Context, id uuid.UUID, userID string) (err error) {
	defer s.observe("remove_reaction", time.Now(), &err)

	msg, err := s.reactableMessage(ctx, id, userID)
	if err != nil {
		return err
	}

	reactions, err := s.messages.RemoveReaction(ctx, id, userID)
	if err != nil {
		return storageError(err)
	}

	s.history.Invalidate(ctx, msg.RoomID)
	s.events.PublishRoom(ctx, events.EventReactionRemoved, msg.RoomID, events.ReactionPayload{
		MessageID: id,
		RoomID:    msg.RoomID,
		UserID:    userID,
		Reactions: reactions,
	})
	return nil
}

// MarkMessagesAsRead records first reads and returns how many messages were
// newly marked. Empty ids means every unread message in the room.
func (s *ChatService) MarkMessagesAsRead(ctx context.Context, roomID, userID string, ids []uuid.UUID) (count int64, err error) {
	defer s.observe("mark_messages_read", time.Now(), &err)

	if _, err := room.Parse(roomID); err != nil {
		return 0, fmt.Errorf("%w: %v", chat_errors.ErrInvalidInput, err)
	}
	if err := s.Authorize(ctx, userID, roomID); err != nil {
		return 0, err
	}

	readAt := s.now()
	marked, err := s.messages.MarkRead(ctx, roomID, userID, ids, readAt)
	if err != nil {
		return 0, storageError(err)
	}
	count = int64(len(marked))
	if count == 0 {
		return 0, nil
	}

	s.history.Invalidate(ctx, roomID)
	s.events.PublishRoom(ctx, events.EventMessagesRead, roomID, events.MessagesReadPayload{
		RoomID:     roomID,
		UserID:     userID,
		MessageIDs: marked,
		Count:      count,
		ReadAt:     readAt,
	})
	return count, nil
}

// GetParticipants lists everyone who has posted in the room plus the users
// the room id itself names.
func (s *ChatService) GetParticipants(ctx context.Context, roomID string) (out []user.PublicProfile, err error) {
	defer s.observe("get_participants", time.Now(), &err)

	ref, err := room.Parse(roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chat_errors.ErrInvalidInput, err)
	}
	ids, err := s.messages.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, storageError(err)
	}
	switch ref.Category {
	case room.CategoryDirect:
		ids = append(ids, ref.Direct.Participants...)
	case room.CategoryQAChat:
		ids = append(ids, ref.QA.AskerID)
	}

	ids = uniqueStrings(ids)
	profiles := s.profiles.Resolve(ctx, ids)
	out = make([]user.PublicProfile, 0, len(ids))
	for _, id := range ids {
		out = append(out, profiles[id])
	}
	return out, nil
}

// GetUserChats lists the rooms the user has taken part in, most recent first.
func (s *ChatService) GetUserChats(ctx context.Context, userID string) (out []repository.RoomSummary, err error) {
	defer s.observe("get_user_chats", time.Now(), &err)

	out, err = s.messages.ListRoomsForUser(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	last := make([]message.Message, len(out))
	for i := range out {
		last[i] = out[i].LastMessage
	}
	decorate(ctx, last, s.profiles, s.attachments)
	for i := range out {
		out[i].LastMessage = last[i]
	}
	return out, nil
}

func (s *ChatService) ownedMessage(ctx context.Context, id uuid.UUID, userID string) (message.Message, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return message.Message{}, storageError(err)
	}
	if msg.IsDeleted {
		return message.Message{}, chat_errors.ErrNotFound
	}
	if msg.SenderID != userID {
		return message.Message{}, fmt.Errorf("%w: only the sender can change a message", chat_errors.ErrForbidden)
	}
	return msg, nil
}

func (s *ChatService) reactableMessage(ctx context.Context, id uuid.UUID, userID string) (message.Message, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return message.Message{}, storageError(err)
	}
	if msg.IsDeleted {
		return message.Message{}, chat_errors.ErrNotFound
	}
	if err := s.Authorize(ctx, userID, msg.RoomID); err != nil {
		return message.Message{}, err
	}
	return msg, nil
}

func (s *ChatService) observe(operation string, start time.Time, errp *error) {
	err := *errp
	metrics.ObserveChatOperation(operation, start, err)
	if err == nil {
		return
	}
	if errors.Is(err, chat_errors.ErrStorage) {
		s.logger.Error("chat operation failed", zap.String("operation", operation), zap.Error(err))
		return
	}
	s.logger.Debug("chat operation rejected", zap.String("operation", operation), zap.Error(err))
}

// storageError passes caller-visible errors through and wraps everything
// else as a storage failure.
func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, chat_errors.ErrNotFound),
		errors.Is(err, chat_errors.ErrForbidden),
		errors.Is(err, chat_errors.ErrInvalidInput):
		return err
	}
	return fmt.Errorf("%w: %w", chat_errors.ErrStorage, err)
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	return string([]rune(content)[:previewLength]) + "…"
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
