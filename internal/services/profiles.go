package services

import (
	"context"
	"time"

	"journey-chat/internal/domain/user"
	"journey-chat/internal/repository"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const profileKeyPrefix = "user_profile:"

// ProfileResolver looks up public profiles for message senders, reading
// through the cache when one is configured.
type ProfileResolver struct {
	users  repository.UserRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewProfileResolver(users repository.UserRepository, cache Cache, ttl time.Duration, logger *zap.Logger) *ProfileResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileResolver{users: users, cache: cache, ttl: ttl, logger: logger}
}

// Resolve returns a profile for every id. Ids that cannot be resolved get a
// profile carrying only the id.
func (p *ProfileResolver) Resolve(ctx context.Context, ids []string) map[string]user.PublicProfile {
	out := make(map[string]user.PublicProfile, len(ids))
	var missing []string
	for _, id := range uniqueStrings(ids) {
		if prof, ok := p.fromCache(ctx, id); ok {
			out[id] = prof
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 && p.users != nil {
		found, err := p.users.GetPublicProfiles(ctx, missing)
		if err != nil {
			p.logger.Warn("profile lookup failed", zap.Int("count", len(missing)), zap.Error(err))
		}
		for id, prof := range found {
			out[id] = prof
			p.toCache(ctx, prof)
		}
	}

	for _, id := range missing {
		if _, ok := out[id]; !ok {
			out[id] = user.PublicProfile{ID: id}
		}
	}
	return out
}

// ResolveOne is Resolve for a single id.
func (p *ProfileResolver) ResolveOne(ctx context.Context, id string) user.PublicProfile {
	return p.Resolve(ctx, []string{id})[id]
}

func (p *ProfileResolver) fromCache(ctx context.Context, id string) (user.PublicProfile, bool) {
	if p.cache == nil {
		return user.PublicProfile{}, false
	}
	data, ok, err := p.cache.Get(ctx, profileKeyPrefix+id)
	if err != nil {
		p.logger.Warn("profile cache read failed", zap.String("user_id", id), zap.Error(err))
		return user.PublicProfile{}, false
	}
	if !ok {
		return user.PublicProfile{}, false
	}
	var prof user.PublicProfile
	if err := json.Unmarshal(data, &prof); err != nil {
		return user.PublicProfile{}, false
	}
	return prof, true
}

func (p *ProfileResolver) toCache(ctx context.Context, prof user.PublicProfile) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(prof)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, profileKeyPrefix+prof.ID, data, p.ttl); err != nil {
		p.logger.Warn("profile cache write failed", zap.String("user_id", prof.ID), zap.Error(err))
	}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
