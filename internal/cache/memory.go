package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

type item struct {
	data       []byte
	expiration int64
}

// Memory is an in-process Cache. Values are stored JSON encoded so callers
// always get a private copy.
type Memory struct {
	mu    sync.RWMutex
	items map[string]item
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// NewMemory starts a cache that sweeps expired entries every interval.
func NewMemory(sweepInterval time.Duration) *Memory {
	m := &Memory{
		items: make(map[string]item),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.sweep(sweepInterval)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	it, found := m.items[key]
	m.mu.RUnlock()
	if !found || m.now().UnixNano() > it.expiration {
		return false, nil
	}
	if err := json.Unmarshal(it.data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = item{data: data, expiration: m.now().Add(ttl).UnixNano()}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func (m *Memory) SetNX(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if it, found := m.items[key]; found && now.UnixNano() <= it.expiration {
		return false, nil
	}
	m.items[key] = item{data: []byte(`true`), expiration: now.Add(ttl).UnixNano()}
	return true, nil
}

// Len counts stored entries, expired ones included until the next sweep.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close stops the sweeper.
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *Memory) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UnixNano()
	for key, it := range m.items {
		if now > it.expiration {
			delete(m.items, key)
		}
	}
}
