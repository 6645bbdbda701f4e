package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time // zero means persistent
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is the Redis-less SharedCache used in tests and dev runs.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]memoryEntry)}
}

func (m *MemoryCache) Set(_ context.Context, chatID int64, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := memoryEntry{payload: payload}
	if ttl != Persistent {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.data[redisKey(chatID, key)] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Get(_ context.Context, chatID int64, key string, dest any) error {
	m.mu.Lock()
	entry, ok := m.data[redisKey(chatID, key)]
	if ok && entry.expired(time.Now()) {
		delete(m.data, redisKey(chatID, key))
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(entry.payload, dest)
}

func (m *MemoryCache) GetDel(_ context.Context, chatID int64, key string, dest any) error {
	k := redisKey(chatID, key)
	m.mu.Lock()
	entry, ok := m.data[k]
	if ok {
		delete(m.data, k)
	}
	m.mu.Unlock()
	if !ok || entry.expired(time.Now()) {
		return ErrMiss
	}
	return json.Unmarshal(entry.payload, dest)
}

func (m *MemoryCache) Delete(_ context.Context, chatID int64, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key != "" {
		delete(m.data, redisKey(chatID, key))
		return nil
	}
	prefix := redisKey(chatID, "")
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}
