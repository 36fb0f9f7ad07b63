package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"journey-chat/internal/domain/message"
	"journey-chat/internal/domain/user"
	"journey-chat/internal/repository"
	"journey-chat/internal/services"
	"journey-chat/internal/transport/httpdto"
	chat_errors "journey-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatAPI interface {
	Authorize(ctx context.Context, userID, roomID string) error
	SaveMessage(ctx context.Context, in services.SaveMessageInput) (message.Message, error)
	GetChatHistory(ctx context.Context, roomID string, page, pageSize int) (services.HistoryPage, error)
	EditMessage(ctx context.Context, id uuid.UUID, userID, content string) error
	DeleteMessage(ctx context.Context, id uuid.UUID, userID string) error
	AddReaction(ctx context.Context, id uuid.UUID, userID, emoji string) error
	RemoveReaction(ctx context.Context, id uuid.UUID, userID string) error
	MarkMessagesAsRead(ctx context.Context, roomID, userID string, ids []uuid.UUID) (int64, error)
	GetParticipants(ctx context.Context, roomID string) ([]user.PublicProfile, error)
	GetUserChats(ctx context.Context, userID string) ([]repository.RoomSummary, error)
}

// Broadcaster delivers a message saved over HTTP to the websocket clients of
// this instance.
type Broadcaster interface {
	BroadcastNewMessage(msg message.Message)
}

// ChatHandler is the HTTP surface of the chat service. Errors are attached
// with c.Error and rendered by middleware.ErrorHandler.
type ChatHandler struct {
	chat        ChatAPI
	broadcaster Broadcaster
}

func NewChatHandler(chat ChatAPI, broadcaster Broadcaster) *ChatHandler {
	return &ChatHandler{chat: chat, broadcaster: broadcaster}
}

func (h *ChatHandler) RegisterRoutes(r gin.IRoutes, sendLimiter gin.HandlerFunc) {
	if sendLimiter != nil {
		r.POST("/messages", sendLimiter, h.SendMessage)
	} else {
		r.POST("/messages", h.SendMessage)
	}
	r.PUT("/messages/:id", h.EditMessage)
	r.DELETE("/messages/:id", h.DeleteMessage)
	r.POST("/messages/:id/reactions", h.AddReaction)
	r.DELETE("/messages/:id/reactions", h.RemoveReaction)
	r.POST("/rooms/:roomId/read", h.MarkRead)
	r.GET("/rooms/:roomId/messages", h.History)
	r.GET("/rooms/:roomId/participants", h.Participants)
	r.GET("/rooms", h.MyChats)
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, fmt.Errorf("%w: invalid request body", chat_errors.ErrInvalidInput))
		return
	}
	if req.MessageType == message.TypeSystem {
		abort(c, fmt.Errorf("%w: clients cannot send system messages", chat_errors.ErrInvalidInput))
		return
	}
	if err := services.ValidateContent(req.Content, req.MessageType); err != nil {
		abort(c, err)
		return
	}
	if err := h.chat.Authorize(c.Request.Context(), userID, req.RoomID); err != nil {
		abort(c, err)
		return
	}

	msg, err := h.chat.SaveMessage(c.Request.Context(), services.SaveMessageInput{
		SenderID:        userID,
		RoomID:          req.RoomID,
		Content:         req.Content,
		Type:            req.MessageType,
		Attachments:     req.Attachments,
		ParentMessageID: req.ParentMessageID,
		Location:        req.Location,
	})
	if err != nil {
		abort(c, err)
		return
	}
	if h.broadcaster != nil {
		h.broadcaster.BroadcastNewMessage(msg)
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(msg))
}

func (h *ChatHandler) EditMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := messageID(c)
	if !ok {
		return
	}
	var req httpdto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, fmt.Errorf("%w: content is required", chat_errors.ErrInvalidInput))
		return
	}
	if err := h.chat.EditMessage(c.Request.Context(), id, userID, req.Content); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"messageId": id}))
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := messageID(c)
	if !ok {
		return
	}
	if err := h.chat.DeleteMessage(c.Request.Context(), id, userID); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"messageId": id}))
}

func (h *ChatHandler) AddReaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := messageID(c)
	if !ok {
		return
	}
	var req httpdto.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, fmt.Errorf("%w: emoji is required", chat_errors.ErrInvalidInput))
		return
	}
	if err := h.chat.AddReaction(c.Request.Context(), id, userID, req.Emoji); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"messageId": id}))
}

func (h *ChatHandler) RemoveReaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := messageID(c)
	if !ok {
		return
	}
	if err := h.chat.RemoveReaction(c.Request.Context(), id, userID); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"messageId": id}))
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req httpdto.MarkReadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, fmt.Errorf("%w: invalid messageIds", chat_errors.ErrInvalidInput))
			return
		}
	}
	count, err := h.chat.MarkMessagesAsRead(c.Request.Context(), c.Param("roomId"), userID, req.MessageIDs)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.MarkReadResponse{Count: count}))
}

func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	roomID := c.Param("roomId")
	page, err := parseInt(c.Query("page"))
	if err != nil {
		abort(c, fmt.Errorf("%w: invalid page", chat_errors.ErrInvalidInput))
		return
	}
	pageSize, err := parseInt(c.Query("pageSize"))
	if err != nil {
		abort(c, fmt.Errorf("%w: invalid pageSize", chat_errors.ErrInvalidInput))
		return
	}
	if err := h.chat.Authorize(c.Request.Context(), userID, roomID); err != nil {
		abort(c, err)
		return
	}

	history, err := h.chat.GetChatHistory(c.Request.Context(), roomID, page, pageSize)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(history))
}

func (h *ChatHandler) Participants(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	roomID := c.Param("roomId")
	if err := h.chat.Authorize(c.Request.Context(), userID, roomID); err != nil {
		abort(c, err)
		return
	}
	participants, err := h.chat.GetParticipants(c.Request.Context(), roomID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"participants": participants}))
}

func (h *ChatHandler) MyChats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	chats, err := h.chat.GetUserChats(c.Request.Context(), userID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"rooms": chats}))
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		abort(c, chat_errors.ErrUnauthorized)
	}
	return userID, ok
}

func messageID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abort(c, fmt.Errorf("%w: invalid message id", chat_errors.ErrInvalidInput))
		return uuid.Nil, false
	}
	return id, true
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func parseInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
