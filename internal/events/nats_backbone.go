package events

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSBackbone carries backbone channels over core NATS subjects.
//
// Room and user ids may contain '.', which NATS treats as a token separator,
// so the id part of a channel is base64url encoded into a single token:
//
//	channel:room:journey_j1  ->  channel.room.am91cm5leV9qMQ
type NATSBackbone struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNATSBackbone(url, name string, logger *zap.Logger) (*NATSBackbone, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSBackbone{conn: conn, logger: logger}, nil
}

func (n *NATSBackbone) Publish(_ context.Context, channel string, payload []byte) error {
	subject, err := channelSubject(channel)
	if err != nil {
		return err
	}
	return n.conn.Publish(subject, payload)
}

func (n *NATSBackbone) PSubscribe(ctx context.Context, pattern string, handler Handler) error {
	subject, err := patternSubject(pattern)
	if err != nil {
		return err
	}
	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		channel, err := subjectChannel(msg.Subject)
		if err != nil {
			n.logger.Warn("dropping message on unexpected subject", zap.String("subject", msg.Subject))
			return
		}
		handler(channel, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	// Round trip so the server has registered the interest before returning.
	if err := n.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return err
	}
	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
	return nil
}

func (n *NATSBackbone) Close() error {
	return n.conn.Drain()
}

func channelSubject(channel string) (string, error) {
	prefix, id, ok := SplitChannel(channel)
	if !ok {
		return "", fmt.Errorf("unsupported channel %q", channel)
	}
	return strings.ReplaceAll(prefix, ":", ".") + base64.RawURLEncoding.EncodeToString([]byte(id)), nil
}

func patternSubject(pattern string) (string, error) {
	switch pattern {
	case PatternRooms, PatternUsers:
		return strings.ReplaceAll(pattern, ":", "."), nil
	}
	return channelSubject(pattern)
}

func subjectChannel(subject string) (string, error) {
	idx := strings.LastIndexByte(subject, '.')
	if idx < 0 {
		return "", fmt.Errorf("malformed subject %q", subject)
	}
	id, err := base64.RawURLEncoding.DecodeString(subject[idx+1:])
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(subject[:idx+1], ".", ":") + string(id), nil
}
