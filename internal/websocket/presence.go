package websocket

import (
	"context"
	"sync"
)

// PresenceRegistry records which users hold a live connection.
// *redis.PresenceStore is the multi-device, cross-instance implementation.
type PresenceRegistry interface {
	Register(ctx context.Context, userID, connID string) error
	Unregister(ctx context.Context, userID, connID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// MemoryPresence is process-local presence where the latest connection of a
// user replaces any earlier one.
type MemoryPresence struct {
	mu    sync.RWMutex
	conns map[string]string
}

func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{conns: make(map[string]string)}
}

func (p *MemoryPresence) Register(_ context.Context, userID, connID string) error {
	p.mu.Lock()
	p.conns[userID] = connID
	p.mu.Unlock()
	return nil
}

// Unregister only removes the entry when connID is still the current one, so
// an old connection closing does not hide a newer one.
func (p *MemoryPresence) Unregister(_ context.Context, userID, connID string) error {
	p.mu.Lock()
	if p.conns[userID] == connID {
		delete(p.conns, userID)
	}
	p.mu.Unlock()
	return nil
}

func (p *MemoryPresence) IsOnline(_ context.Context, userID string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.conns[userID]
	return ok, nil
}

// Connection returns the current connection id of a user.
func (p *MemoryPresence) Connection(userID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.conns[userID]
	return id, ok
}
