package blob

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore holds blobs in process memory. It backs local development
// runs that have no bucket configured, and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	contentType string
	data        []byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

func (m *MemoryStore) Put(_ context.Context, contentType string, data []byte) (string, error) {
	id := uuid.NewString()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.blobs[id] = memoryBlob{contentType: contentType, data: cp}
	m.mu.Unlock()
	return id, nil
}

func (m *MemoryStore) SignedURL(_ context.Context, id string, _ time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.blobs[id]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("blob %q not found", id)
	}
	return "memory://" + id, nil
}

// Get returns a stored blob. Only the in-memory store exposes reads by id
// directly; the S3 store serves reads through signed URLs.
func (m *MemoryStore) Get(id string) (contentType string, data []byte, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[id]
	if !ok {
		return "", nil, false
	}
	return b.contentType, b.data, true
}
