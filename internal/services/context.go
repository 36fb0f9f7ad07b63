package services

import (
	"context"

	"journey-chat/pkg/logger"
)

type userCtxKey struct{}

type authenticatedUser struct {
	id       string
	username string
}

// WithUser stores the authenticated user on ctx. The id is also exposed
// under logger.UserIdKey so request logs carry it.
func WithUser(ctx context.Context, userID, username string) context.Context {
	ctx = context.WithValue(ctx, userCtxKey{}, authenticatedUser{id: userID, username: username})
	return context.WithValue(ctx, logger.UserIdKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(userCtxKey{}).(authenticatedUser)
	if !ok || u.id == "" {
		return "", false
	}
	return u.id, true
}

func UsernameFromContext(ctx context.Context) string {
	u, _ := ctx.Value(userCtxKey{}).(authenticatedUser)
	return u.username
}
