package events

import (
	"time"

	"journey-chat/internal/domain/message"
	"journey-chat/internal/domain/room"
	"journey-chat/internal/domain/user"

	"github.com/google/uuid"
)

type NewMessagePayload struct {
	Message message.Message `json:"message"`
}

// ReactionPayload carries the full reaction list after the change.
type ReactionPayload struct {
	MessageID uuid.UUID          `json:"messageId"`
	RoomID    string             `json:"roomId"`
	UserID    string             `json:"userId"`
	Emoji     string             `json:"emoji,omitempty"`
	Reactions []message.Reaction `json:"reactions"`
}

type MessageEditedPayload struct {
	MessageID uuid.UUID `json:"messageId"`
	RoomID    string    `json:"roomId"`
	Content   string    `json:"content"`
	EditedAt  time.Time `json:"editedAt"`
}

type MessageDeletedPayload struct {
	MessageID uuid.UUID `json:"messageId"`
	RoomID    string    `json:"roomId"`
	DeletedAt time.Time `json:"deletedAt"`
}

type MessagesReadPayload struct {
	RoomID     string      `json:"roomId"`
	UserID     string      `json:"userId"`
	MessageIDs []uuid.UUID `json:"messageIds"`
	Count      int64       `json:"count"`
	ReadAt     time.Time   `json:"readAt"`
}

// NotificationPayload tells a user about activity in a room they may not
// have joined.
type NotificationPayload struct {
	Kind         string              `json:"type"`
	RoomID       string              `json:"roomId"`
	RoomCategory room.Category       `json:"roomType"`
	MessageID    uuid.UUID           `json:"messageId"`
	From         *user.PublicProfile `json:"from,omitempty"`
	SenderID     string              `json:"senderId"`
	Preview      string              `json:"preview"`
}
