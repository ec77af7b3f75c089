package core

import (
	"sync"
	"time"
)

// Session is a per-conversation container tracking an ordered record history
// plus free-form metadata. It is safe for concurrent access.
//
// Contract:
//   - Mutations update the Updated timestamp
//   - GetRecords returns a defensive copy to avoid external mutation
//   - Clone performs deep copies of maps/slices for safe divergence.
type Session struct {
	ID       string            `json:"id"`
	Records  []Record          `json:"records"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
	Metadata map[string]string `json:"metadata"`
	mu       sync.RWMutex
}

// NewSession creates a new session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, Records: []Record{}, Created: now, Updated: now, Metadata: map[string]string{}}
}

// AddRecord appends a record to the history updating the Updated timestamp.
func (s *Session) AddRecord(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, rec)
	s.Updated = time.Now()
}

// GetRecords returns a defensive copy of the full record slice.
func (s *Session) GetRecords() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]Record, len(s.Records))
	copy(records, s.Records)
	return records
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{ID: s.ID, Records: make([]Record, len(s.Records)), Created: s.Created, Updated: s.Updated, Metadata: make(map[string]string, len(s.Metadata))}
	copy(clone.Records, s.Records)
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}

// SessionStore persists sessions and their evolving record history. This is
// the archival boundary for finalized conversational exchanges.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	AppendRecord(sessionID string, rec Record) error
}
