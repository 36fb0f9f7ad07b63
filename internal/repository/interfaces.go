package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"journey-chat/internal/domain/journey"
	"journey-chat/internal/domain/message"
	"journey-chat/internal/domain/room"
	"journey-chat/internal/domain/user"
)

// RoomSummary is one entry of a user's chat list.
type RoomSummary struct {
	RoomID       string          `json:"roomId"`
	RoomCategory room.Category   `json:"roomType"`
	LastMessage  message.Message `json:"lastMessage"`
	UnreadCount  int64           `json:"unreadCount"`
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)

	// ListByRoom returns non-deleted messages newest first, plus the total
	// number of non-deleted messages in the room.
	ListByRoom(ctx context.Context, roomID string, offset, limit int) ([]message.Message, int64, error)

	UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) (message.Message, error)
	SoftDelete(ctx context.Context, id uuid.UUID, deletedAt time.Time) error

	UpsertReaction(ctx context.Context, id uuid.UUID, userID, emoji string, at time.Time) ([]message.Reaction, error)
	RemoveReaction(ctx context.Context, id uuid.UUID, userID string) ([]message.Reaction, error)

	// MarkRead adds read receipts for userID and returns the ids that were
	// newly marked. Empty ids targets every unread message in the room not
	// sent by userID.
	MarkRead(ctx context.Context, roomID, userID string, ids []uuid.UUID, at time.Time) ([]uuid.UUID, error)

	ListParticipants(ctx context.Context, roomID string) ([]string, error)
	ListRoomsForUser(ctx context.Context, userID string) ([]RoomSummary, error)
}

type UserRepository interface {
	GetPublicProfile(ctx context.Context, id string) (user.PublicProfile, error)
	GetPublicProfiles(ctx context.Context, ids []string) (map[string]user.PublicProfile, error)
}

type JourneyRepository interface {
	GetByID(ctx context.Context, id string) (journey.Journey, error)
}
