package pending

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	d       Deletion
	expires time.Time
}

// Memory is an in-process Store. Expired entries are dropped lazily.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

// NewMemory creates an in-memory store; ttl <= 0 selects DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

func (m *Memory) Put(_ context.Context, d Deletion) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for tok, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, tok)
		}
	}

	token := newToken()
	m.entries[token] = entry{d: d, expires: now.Add(m.ttl)}
	return token, nil
}

func (m *Memory) Take(_ context.Context, userID int64, token string) (Deletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[token]
	if !ok {
		return Deletion{}, ErrNotFound
	}
	delete(m.entries, token)
	if e.d.UserID != userID || m.now().After(e.expires) {
		return Deletion{}, ErrNotFound
	}
	return e.d, nil
}
