package httpdto

import (
	"journey-chat/internal/domain/message"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	RoomID          string               `json:"roomId" binding:"required"`
	Content         string               `json:"content"`
	MessageType     message.Type         `json:"messageType"`
	Attachments     []message.Attachment `json:"attachments"`
	ParentMessageID *uuid.UUID           `json:"parentMessageId"`
	Location        *message.Location    `json:"location"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

type MarkReadRequest struct {
	MessageIDs []uuid.UUID `json:"messageIds"`
}

type MarkReadResponse struct {
	Count int64 `json:"count"`
}
