package websocket

import (
	"go.uber.org/zap"
)

// WebSocketLogger writes connection-scoped records tagged with the user and
// connection ids.
type WebSocketLogger struct {
	logger *zap.Logger
}

func NewWebSocketLogger(logger *zap.Logger) *WebSocketLogger {
	if logger == nil {
		logger = zap.L()
	}
	return &WebSocketLogger{
		logger: logger.With(zap.String("component", "websocket")),
	}
}

func (l *WebSocketLogger) Info(event string, userID, connID string, fields ...zap.Field) {
	l.logger.Info("websocket_event", l.fields(event, userID, connID, fields)...)
}

func (l *WebSocketLogger) Error(event string, userID, connID string, err error, fields ...zap.Field) {
	l.logger.Error("websocket_error", l.fields(event, userID, connID, append(fields, zap.Error(err)))...)
}

func (l *WebSocketLogger) Warn(event string, userID, connID string, fields ...zap.Field) {
	l.logger.Warn("websocket_warning", l.fields(event, userID, connID, fields)...)
}

func (l *WebSocketLogger) Debug(event string, userID, connID string, fields ...zap.Field) {
	l.logger.Debug("websocket_event", l.fields(event, userID, connID, fields)...)
}

func (l *WebSocketLogger) fields(event, userID, connID string, extra []zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID),
		zap.String("conn_id", connID),
	}, extra...)
}
