package cache

import (
	"context"
	"sync"
	"time"

	"academic-records/internal/domain/user"
	interfaces "academic-records/internal/interfaces/infrastructure"
)

type memoryEntry struct {
	session   user.Session
	expiresAt time.Time
}

// MemoryCache is the default session cache for a single server process.
type MemoryCache struct {
	entries map[string]memoryEntry
	mutex   sync.RWMutex
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryCache) SetSession(ctx context.Context, session *user.Session, ttl time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.entries[session.Token] = memoryEntry{session: *session, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryCache) GetSession(ctx context.Context, token string) (*user.Session, error) {
	m.mutex.RLock()
	entry, ok := m.entries[token]
	m.mutex.RUnlock()

	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	if !m.now().Before(entry.expiresAt) {
		m.mutex.Lock()
		delete(m.entries, token)
		m.mutex.Unlock()
		return nil, interfaces.ErrCacheMiss
	}

	session := entry.session
	return &session, nil
}

func (m *MemoryCache) DeleteSession(ctx context.Context, token string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.entries, token)
	return nil
}

func (m *MemoryCache) CountSessions(ctx context.Context) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	for token, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, token)
		}
	}
	return len(m.entries), nil
}

func (m *MemoryCache) Health(ctx context.Context) error { return nil }

func (m *MemoryCache) Close() error { return nil }

var _ interfaces.SessionCache = (*MemoryCache)(nil)
