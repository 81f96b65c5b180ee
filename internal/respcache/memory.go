package respcache

import (
	"context"
	"errors"
	"sync"

	"maploader/internal/resource"
)

const DefaultMaxObjectBytes int64 = 16 * 1024 * 1024

// MemoryStore is a process-local Store. Unlike a TTL cache it never
// evicts on expiry; an expired response is still a valid revalidation
// prior.
type MemoryStore struct {
	mu             sync.RWMutex
	entries        map[string]resource.Response
	maxObjectBytes int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(maxObjectBytes int64) *MemoryStore {
	if maxObjectBytes <= 0 {
		maxObjectBytes = DefaultMaxObjectBytes
	}
	return &MemoryStore{
		entries:        make(map[string]resource.Response),
		maxObjectBytes: maxObjectBytes,
	}
}

func (m *MemoryStore) Get(_ context.Context, url string) (resource.Response, bool, error) {
	if m == nil {
		return resource.Response{}, false, nil
	}
	m.mu.RLock()
	entry, ok := m.entries[url]
	m.mu.RUnlock()
	return entry, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, url string, resp resource.Response) error {
	if m == nil {
		return errors.New("cache store not initialized")
	}
	if m.maxObjectBytes > 0 && int64(len(resp.Data)) > m.maxObjectBytes {
		return errors.New("cache entry exceeds max object bytes")
	}
	m.mu.Lock()
	m.entries[url] = resp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, url string) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	delete(m.entries, url)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
