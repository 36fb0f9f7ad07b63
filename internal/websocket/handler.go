package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"journey-chat/internal/domain/message"
	"journey-chat/internal/domain/room"
	"journey-chat/internal/metrics"
	"journey-chat/internal/services"
	"journey-chat/internal/transport/httpdto"
	chat_errors "journey-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultHistoryLimit = 20

// ChatBackend is the part of the chat service the gateway drives.
type ChatBackend interface {
	SaveMessage(ctx context.Context, in services.SaveMessageInput) (message.Message, error)
	GetChatHistory(ctx context.Context, roomID string, page, pageSize int) (services.HistoryPage, error)
	EditMessage(ctx context.Context, id uuid.UUID, userID, content string) error
	DeleteMessage(ctx context.Context, id uuid.UUID, userID string) error
	AddReaction(ctx context.Context, id uuid.UUID, userID, emoji string) error
	RemoveReaction(ctx context.Context, id uuid.UUID, userID string) error
	MarkMessagesAsRead(ctx context.Context, roomID, userID string, ids []uuid.UUID) (int64, error)
}

type RoomAccess interface {
	CanAccess(ctx context.Context, userID, roomID string, category room.Category) bool
}

type TokenVerifier interface {
	ParseAccessToken(token string) (services.AccessClaims, error)
}

type Options struct {
	// EventsPerSecond and EventBurst bound inbound events per connection.
	// Zero disables the limit.
	EventsPerSecond float64
	EventBurst      int

	HistoryLimit int
	CheckOrigin  func(r *http.Request) bool
}

// Handler upgrades authenticated requests to websocket connections and runs
// the per-connection command loop.
type Handler struct {
	hub      *Hub
	chat     ChatBackend
	access   RoomAccess
	auth     TokenVerifier
	presence PresenceRegistry
	logger   *WebSocketLogger
	upgrader websocket.Upgrader
	opts     Options
}

func NewHandler(
	hub *Hub,
	chat ChatBackend,
	access RoomAccess,
	auth TokenVerifier,
	presence PresenceRegistry,
	logger *zap.Logger,
	opts Options,
) *Handler {
	if presence == nil {
		presence = NewMemoryPresence()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler{
		hub:      hub,
		chat:     chat,
		access:   access,
		auth:     auth,
		presence: presence,
		logger:   NewWebSocketLogger(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		opts: opts,
	}
}

func (h *Handler) Connect(c *gin.Context) {
	token := extractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("missing token", "UNAUTHORIZED"))
		return
	}
	claims, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("invalid token", "UNAUTHORIZED"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade failed", claims.UserID, "", err)
		return
	}

	client := NewClient(conn, claims.UserID, claims.Username, h.newLimiter())
	h.hub.Register(client)
	if err := h.presence.Register(context.Background(), client.UserID, client.ID); err != nil {
		h.logger.Warn("presence register failed", client.UserID, client.ID, zap.Error(err))
	}
	h.logger.Info("connected", client.UserID, client.ID)

	go client.writePump()
	client.readPump(h.dispatch)

	h.hub.Unregister(client)
	if err := h.presence.Unregister(context.Background(), client.UserID, client.ID); err != nil {
		h.logger.Warn("presence unregister failed", client.UserID, client.ID, zap.Error(err))
	}
	h.logger.Info("disconnected", client.UserID, client.ID)
}

// BroadcastNewMessage delivers a saved message to every local member of its
// room, sender included.
func (h *Handler) BroadcastNewMessage(msg message.Message) {
	frame, err := encodeFrame(EventNewMessage, msg)
	if err != nil {
		h.logger.Error("encode new_message", msg.SenderID, "", err)
		return
	}
	h.hub.BroadcastRoom(msg.RoomID, frame, nil)
}

func (h *Handler) newLimiter() *rate.Limiter {
	if h.opts.EventsPerSecond <= 0 {
		return nil
	}
	burst := h.opts.EventBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(h.opts.EventsPerSecond), burst)
}

func (h *Handler) dispatch(c *Client, data []byte) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Event == "" {
		h.sendError(c, "", "", fmt.Errorf("%w: malformed frame", chat_errors.ErrInvalidInput))
		return
	}
	if !c.limiter.Allow() {
		h.sendError(c, frame.Event, "", chat_errors.ErrRateLimited)
		metrics.RecordWebsocketEvent(frame.Event, chat_errors.ErrRateLimited)
		return
	}

	ctx := context.Background()
	var roomID string
	var err error
	switch kind := CommandKind(frame.Event); kind {
	case CommandJoinRoom:
		roomID, err = h.handleJoinRoom(ctx, c, frame.Data)
	case CommandLeaveRoom:
		roomID, err = h.handleLeaveRoom(c, frame.Data)
	case CommandSendMessage:
		roomID, err = h.handleSendMessage(ctx, c, frame.Data)
	case CommandTypingStart, CommandTypingStop:
		roomID, err = h.handleTyping(c, frame.Data, kind == CommandTypingStart)
	case CommandAddReaction:
		err = h.handleAddReaction(ctx, c, frame.Data)
	case CommandRemoveReaction:
		err = h.handleRemoveReaction(ctx, c, frame.Data)
	case CommandEditMessage:
		err = h.handleEditMessage(ctx, c, frame.Data)
	case CommandDeleteMessage:
		err = h.handleDeleteMessage(ctx, c, frame.Data)
	case CommandMarkMessagesRead:
		roomID, err = h.handleMarkMessagesRead(ctx, c, frame.Data)
	default:
		err = fmt.Errorf("%w: unknown event %q", chat_errors.ErrInvalidInput, frame.Event)
	}

	metrics.RecordWebsocketEvent(frame.Event, err)
	if err != nil {
		h.sendError(c, frame.Event, roomID, err)
	}
}

func (h *Handler) handleJoinRoom(ctx context.Context, c *Client, data []byte) (string, error) {
	var cmd JoinRoomCommand
	if err := decode(data, &cmd); err != nil {
		return "", err
	}
	if cmd.RoomID == "" {
		return "", fmt.Errorf("%w: roomId is required", chat_errors.ErrInvalidInput)
	}
	category := cmd.RoomType
	if category == "" {
		category = room.CategoryOf(cmd.RoomID)
	}
	if !h.access.CanAccess(ctx, c.UserID, cmd.RoomID, category) {
		h.logger.Debug("join denied", c.UserID, c.ID, zap.String("room_id", cmd.RoomID))
		return cmd.RoomID, fmt.Errorf("%w: access to room denied", chat_errors.ErrForbidden)
	}

	h.hub.Join(c, cmd.RoomID)

	history, err := h.chat.GetChatHistory(ctx, cmd.RoomID, 1, h.opts.HistoryLimit)
	if err != nil {
		h.logger.Error("history on join failed", c.UserID, c.ID, err, zap.String("room_id", cmd.RoomID))
		history.Messages = []message.Message{}
	}
	h.send(c, EventChatHistory, ChatHistoryEvent{RoomID: cmd.RoomID, Messages: history.Messages})
	h.broadcast(cmd.RoomID, EventUserJoined, UserPresenceEvent{
		RoomID:   cmd.RoomID,
		UserID:   c.UserID,
		Username: c.Username,
	}, c)
	return cmd.RoomID, nil
}

func (h *Handler) handleLeaveRoom(c *Client, data []byte) (string, error) {
	var cmd LeaveRoomCommand
	if err := decode(data, &cmd); err != nil {
		return "", err
	}
	if h.hub.Leave(c, cmd.RoomID) {
		h.broadcast(cmd.RoomID, EventUserLeft, UserPresenceEvent{
			RoomID:   cmd.RoomID,
			UserID:   c.UserID,
			Username: c.Username,
		}, nil)
	}
	return cmd.RoomID, nil
}

func (h *Handler) handleSendMessage(ctx context.Context, c *Client, data []byte) (string, error) {
	var cmd SendMessageCommand
	if err := decode(data, &cmd); err != nil {
		return "", err
	}
	if cmd.MessageType == message.TypeSystem {
		return cmd.RoomID, fmt.Errorf("%w: clients cannot send system messages", chat_errors.ErrInvalidInput)
	}
	if err := services.ValidateContent(cmd.Content, cmd.MessageType); err != nil {
		return cmd.RoomID, err
	}
	if !h.hub.IsMember(c, cmd.RoomID) {
		return cmd.RoomID, fmt.Errorf("%w: join the room before sending", chat_errors.ErrForbidden)
	}

	msg, err := h.chat.SaveMessage(ctx, services.SaveMessageInput{
		SenderID:        c.UserID,
		RoomID:          cmd.RoomID,
		Content:         cmd.Content,
		Type:            cmd.MessageType,
		Attachments:     cmd.Attachments,
		ParentMessageID: cmd.ParentMessageID,
		Location:        cmd.Location,
	})
	if err != nil {
		return cmd.RoomID, err
	}
	h.BroadcastNewMessage(msg)
	return cmd.RoomID, nil
}

func (h *Handler) handleTyping(c *Client, data []byte, typing bool) (string, error) {
	var cmd TypingCommand
	if err := decode(data, &cmd); err != nil {
		return "", err
	}
	if !h.hub.IsMember(c, cmd.RoomID) {
		return cmd.RoomID, fmt.Errorf("%w: not in room", chat_errors.ErrForbidden)
	}
	h.broadcast(cmd.RoomID, EventUserTyping, UserTypingEvent{
		RoomID:   cmd.RoomID,
		UserID:   c.UserID,
		IsTyping: typing,
	}, c)
	return cmd.RoomID, nil
}

func (h *Handler) handleAddReaction(ctx context.Context, c *Client, data []byte) error {
	var cmd AddReactionCommand
	if err := decode(data, &cmd); err != nil {
		return err
	}
	return h.chat.AddReaction(ctx, cmd.MessageID, c.UserID, cmd.Emoji)
}

func (h *Handler) handleRemoveReaction(ctx context.Context, c *Client, data []byte) error {
	var cmd RemoveReactionCommand
	if err := decode(data, &cmd); err != nil {
		return err
	}
	return h.chat.RemoveReaction(ctx, cmd.MessageID, c.UserID)
}

func (h *Handler) handleEditMessage(ctx context.Context, c *Client, data []byte) error {
	var cmd EditMessageCommand
	if err := decode(data, &cmd); err != nil {
		return err
	}
	return h.chat.EditMessage(ctx, cmd.MessageID, c.UserID, cmd.NewContent)
}

func (h *Handler) handleDeleteMessage(ctx context.Context, c *Client, data []byte) error {
	var cmd DeleteMessageCommand
	if err := decode(data, &cmd); err != nil {
		return err
	}
	return h.chat.DeleteMessage(ctx, cmd.MessageID, c.UserID)
}

func (h *Handler) handleMarkMessagesRead(ctx context.Context, c *Client, data []byte) (string, error) {
	var cmd MarkMessagesReadCommand
	if err := decode(data, &cmd); err != nil {
		return "", err
	}
	_, err := h.chat.MarkMessagesAsRead(ctx, cmd.RoomID, c.UserID, cmd.MessageIDs)
	return cmd.RoomID, err
}

func (h *Handler) send(c *Client, event ServerEvent, data any) {
	frame, err := encodeFrame(event, data)
	if err != nil {
		h.logger.Error("encode frame", c.UserID, c.ID, err, zap.String("frame", string(event)))
		return
	}
	if !c.SendMessage(frame) {
		h.logger.Warn("send queue full", c.UserID, c.ID, zap.String("frame", string(event)))
	}
}

func (h *Handler) broadcast(roomID string, event ServerEvent, data any, except *Client) {
	frame, err := encodeFrame(event, data)
	if err != nil {
		h.logger.Error("encode frame", "", "", err, zap.String("frame", string(event)))
		return
	}
	h.hub.BroadcastRoom(roomID, frame, except)
}

func (h *Handler) sendError(c *Client, event, roomID string, err error) {
	if errors.Is(err, chat_errors.ErrStorage) || chat_errors.HTTPStatus(err) >= 500 {
		h.logger.Error(event, c.UserID, c.ID, err, zap.String("room_id", roomID))
	} else {
		h.logger.Debug(event, c.UserID, c.ID, zap.String("room_id", roomID), zap.Error(err))
	}
	h.send(c, EventError, ErrorEvent{Message: errorText(err), Event: event, RoomID: roomID})
}

// errorText is the message shown to the client. Internal failures are not
// described.
func errorText(err error) string {
	switch {
	case errors.Is(err, chat_errors.ErrInvalidInput),
		errors.Is(err, chat_errors.ErrForbidden):
		return err.Error()
	case errors.Is(err, chat_errors.ErrNotFound):
		return "message not found"
	case errors.Is(err, chat_errors.ErrRateLimited):
		return "too many events, slow down"
	default:
		return "something went wrong, please try again"
	}
}

func decode(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", chat_errors.ErrInvalidInput)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed data", chat_errors.ErrInvalidInput)
	}
	return nil
}

func extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
