// Package archive provides ArchiveStore implementations for durable storage
// of full reply transcripts.
package archive

import (
	"sync"

	"github.com/chatrelay/chatrelay/core"
)

// InMemoryStore is a trivial in-process ArchiveStore implementation useful
// for tests, examples and single-process prototypes. It keeps all transcripts
// in a nested map guarded by an RWMutex. Data is copied on save / retrieval
// to avoid accidental external mutation of internal buffers.
//
// Layout: channelID -> replyID -> transcript bytes
//
// This implementation is intentionally minimal; it does not enforce retention
// limits, size quotas, or eviction. For production, prefer a durable
// implementation (object storage or a database) that survives process
// restarts.
type InMemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string]map[string][]byte // channelID -> replyID -> data
}

// Interface compliance (compile-time assertion)
var _ core.ArchiveStore = (*InMemoryStore)(nil)

// NewInMemoryStore returns an empty in-memory archive store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{transcripts: make(map[string]map[string][]byte)}
}

// Save stores (or overwrites) the transcript bytes for the given channel and
// reply. The input slice is copied before storage.
func (a *InMemoryStore) Save(channelID, replyID string, transcript []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.transcripts[channelID]; !exists {
		a.transcripts[channelID] = make(map[string][]byte)
	}
	cp := make([]byte, len(transcript))
	copy(cp, transcript)
	a.transcripts[channelID][replyID] = cp
	return nil
}

// Get returns a copy of the stored transcript bytes or ErrNotFound.
func (a *InMemoryStore) Get(channelID, replyID string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.transcripts[channelID]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := m[replyID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the reply ids stored for the channel. The slice is a snapshot
// and safe for caller mutation.
func (a *InMemoryStore) List(channelID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.transcripts[channelID]
	if !ok {
		return []string{}, nil
	}
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes the transcript if present or returns ErrNotFound.
func (a *InMemoryStore) Delete(channelID, replyID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.transcripts[channelID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m[replyID]; !ok {
		return ErrNotFound
	}
	delete(m, replyID)
	return nil
}
