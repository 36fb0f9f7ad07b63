package websocket

import (
	"journey-chat/internal/domain/message"
	"journey-chat/internal/domain/room"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// CommandKind is a client to server event.
type CommandKind string

const (
	CommandJoinRoom         CommandKind = "join_room"
	CommandLeaveRoom        CommandKind = "leave_room"
	CommandSendMessage      CommandKind = "send_message"
	CommandTypingStart      CommandKind = "typing_start"
	CommandTypingStop       CommandKind = "typing_stop"
	CommandAddReaction      CommandKind = "add_reaction"
	CommandRemoveReaction   CommandKind = "remove_reaction"
	CommandEditMessage      CommandKind = "edit_message"
	CommandDeleteMessage    CommandKind = "delete_message"
	CommandMarkMessagesRead CommandKind = "mark_messages_read"
)

// ServerEvent is a server to client event.
type ServerEvent string

const (
	EventChatHistory     ServerEvent = "chat_history"
	EventNewMessage      ServerEvent = "new_message"
	EventUserJoined      ServerEvent = "user_joined"
	EventUserLeft        ServerEvent = "user_left"
	EventUserTyping      ServerEvent = "user_typing"
	EventReactionUpdated ServerEvent = "reaction_updated"
	EventMessageUpdated  ServerEvent = "message_updated"
	EventMessageDeleted  ServerEvent = "message_deleted"
	EventMessagesRead    ServerEvent = "messages_read"
	EventNotification    ServerEvent = "notification"
	EventError           ServerEvent = "error"
)

// Frame is the envelope of every websocket message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encodeFrame(event ServerEvent, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: string(event), Data: raw})
}

type JoinRoomCommand struct {
	RoomID   string        `json:"roomId"`
	RoomType room.Category `json:"roomType"`
}

type LeaveRoomCommand struct {
	RoomID string `json:"roomId"`
}

type SendMessageCommand struct {
	RoomID          string               `json:"roomId"`
	Content         string               `json:"content"`
	MessageType     message.Type         `json:"messageType,omitempty"`
	Attachments     []message.Attachment `json:"attachments,omitempty"`
	ParentMessageID *uuid.UUID           `json:"parentMessageId,omitempty"`
	Location        *message.Location    `json:"location,omitempty"`
}

type TypingCommand struct {
	RoomID string `json:"roomId"`
}

type AddReactionCommand struct {
	MessageID uuid.UUID `json:"messageId"`
	Emoji     string    `json:"emoji"`
}

type RemoveReactionCommand struct {
	MessageID uuid.UUID `json:"messageId"`
}

type EditMessageCommand struct {
	MessageID  uuid.UUID `json:"messageId"`
	NewContent string    `json:"newContent"`
}

type DeleteMessageCommand struct {
	MessageID uuid.UUID `json:"messageId"`
}

type MarkMessagesReadCommand struct {
	RoomID     string      `json:"roomId"`
	MessageIDs []uuid.UUID `json:"messageIds,omitempty"`
}

type ChatHistoryEvent struct {
	RoomID   string            `json:"roomId"`
	Messages []message.Message `json:"messages"`
}

type UserPresenceEvent struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
}

type UserTypingEvent struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type ErrorEvent struct {
	Message string `json:"message"`
	Event   string `json:"event,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}
