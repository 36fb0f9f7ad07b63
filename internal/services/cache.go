package services

import (
	"context"
	"time"

	"journey-chat/internal/domain/message"
)

// Cache is the key/value side of the backbone. Implementations report
// errors, and callers in this package treat every error as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}

// AttachmentResolver turns stored attachment keys into fetchable URLs.
type AttachmentResolver interface {
	ResolveAttachments(ctx context.Context, attachments []message.Attachment) []message.Attachment
}
