package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Redis key prefixes for presence
const (
	presenceKeyPrefix = "presence:user:" // Set of connection ids per user
	presenceOnlineSet = "presence:online"
)

// PresenceStore tracks every open connection of every user across
// instances, so a user with two devices stays online until both leave.
type PresenceStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewPresenceStore(client *goredis.Client, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &PresenceStore{client: client, ttl: ttl}
}

func (p *PresenceStore) Register(ctx context.Context, userID, connID string) error {
	key := presenceKeyPrefix + userID
	pipe := p.client.TxPipeline()
	pipe.SAdd(ctx, key, connID)
	pipe.Expire(ctx, key, p.ttl)
	pipe.SAdd(ctx, presenceOnlineSet, userID)
	_, err := pipe.Exec(ctx)
	return err
}

// Unregister removes one connection. The user leaves the online set once
// their last connection is gone.
func (p *PresenceStore) Unregister(ctx context.Context, userID, connID string) error {
	key := presenceKeyPrefix + userID
	if err := p.client.SRem(ctx, key, connID).Err(); err != nil {
		return err
	}
	remaining, err := p.client.SCard(ctx, key).Result()
	if err != nil {
		return err
	}
	if remaining == 0 {
		return p.client.SRem(ctx, presenceOnlineSet, userID).Err()
	}
	return nil
}

func (p *PresenceStore) Connections(ctx context.Context, userID string) ([]string, error) {
	return p.client.SMembers(ctx, presenceKeyPrefix+userID).Result()
}

func (p *PresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	return p.client.SIsMember(ctx, presenceOnlineSet, userID).Result()
}

func (p *PresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	return p.client.SMembers(ctx, presenceOnlineSet).Result()
}
