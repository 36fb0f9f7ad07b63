package events

import (
	"context"
	"sync"
)

type memorySubscription struct {
	id      int
	pattern string
	handler Handler
}

// MemoryBackbone is an in-process Backbone for single-instance deployments
// and tests. Handlers run synchronously on the publishing goroutine.
type MemoryBackbone struct {
	mu     sync.RWMutex
	nextID int
	subs   []memorySubscription
	closed bool
}

func NewMemoryBackbone() *MemoryBackbone {
	return &MemoryBackbone{}
}

func (m *MemoryBackbone) Publish(_ context.Context, channel string, payload []byte) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil
	}
	var matched []Handler
	for _, s := range m.subs {
		if MatchPattern(s.pattern, channel) {
			matched = append(matched, s.handler)
		}
	}
	m.mu.RUnlock()

	for _, h := range matched {
		h(channel, append([]byte(nil), payload...))
	}
	return nil
}

func (m *MemoryBackbone) PSubscribe(ctx context.Context, pattern string, handler Handler) error {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, memorySubscription{id: id, pattern: pattern, handler: handler})
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				break
			}
		}
	}()
	return nil
}

func (m *MemoryBackbone) Close() error {
	m.mu.Lock()
	m.closed = true
	m.subs = nil
	m.mu.Unlock()
	return nil
}
