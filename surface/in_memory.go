// Package surface provides messaging surface implementations. The in-memory
// surface backs tests, examples and single-process prototypes; production
// deployments supply an implementation bound to a real chat transport.
package surface

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatrelay/chatrelay/core"
)

// InMemory is a trivial in-process core.Surface implementation. It keeps all
// messages in a map guarded by a mutex and records per-message edit counts
// and every edit payload, which lets tests assert the pipeline's edit
// frequency and length invariants. Messages are copied on retrieval to avoid
// accidental external mutation.
//
// Fault injection: assign EditErr / CreateErr / UploadErr to make the next
// matching call fail with that error (one-shot), mimicking a transport
// failure that the pipeline must propagate.
type InMemory struct {
	mu           sync.Mutex
	messages     map[string]*core.Message
	order        []string
	editCounts   map[string]int
	editPayloads []string

	EditErr   error
	CreateErr error
	UploadErr error
}

// Interface compliance (compile-time assertion)
var _ core.Surface = (*InMemory)(nil)

// NewInMemory returns an empty in-memory surface.
func NewInMemory() *InMemory {
	return &InMemory{
		messages:   make(map[string]*core.Message),
		editCounts: make(map[string]int),
	}
}

// Seed inserts a pre-existing message (e.g. an inbound user message) and
// returns it. Useful for setting up the message a pipeline replies to.
func (s *InMemory) Seed(msg core.Message) core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	cp := msg
	s.messages[msg.ID] = &cp
	s.order = append(s.order, msg.ID)
	return msg
}

// CreateMessage posts a new message as a reply to parentID.
func (s *InMemory) CreateMessage(_ context.Context, parentID, content string) (core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.CreateErr; err != nil {
		s.CreateErr = nil
		return core.Message{}, err
	}
	msg := &core.Message{
		ID:        uuid.NewString(),
		ParentID:  parentID,
		Content:   content,
		FromBot:   true,
		Timestamp: time.Now().UTC(),
	}
	if parent, ok := s.messages[parentID]; ok {
		msg.ChannelID = parent.ChannelID
		msg.ServerID = parent.ServerID
		msg.CategoryID = parent.CategoryID
	}
	s.messages[msg.ID] = msg
	s.order = append(s.order, msg.ID)
	return *msg, nil
}

// EditMessage replaces the full content of an existing message.
func (s *InMemory) EditMessage(_ context.Context, messageID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.EditErr; err != nil {
		s.EditErr = nil
		return err
	}
	msg, ok := s.messages[messageID]
	if !ok {
		return ErrNotFound
	}
	msg.Content = content
	s.editCounts[messageID]++
	s.editPayloads = append(s.editPayloads, content)
	return nil
}

// UploadAttachment attaches a file to an existing message. The data slice is
// copied before storage.
func (s *InMemory) UploadAttachment(_ context.Context, messageID string, data []byte, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.UploadErr; err != nil {
		s.UploadErr = nil
		return err
	}
	msg, ok := s.messages[messageID]
	if !ok {
		return ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	msg.Attachments = append(msg.Attachments, core.Attachment{Filename: filename, Data: cp})
	return nil
}

// GetMessage returns a copy of the stored message or ErrNotFound.
func (s *InMemory) GetMessage(_ context.Context, messageID string) (core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[messageID]
	if !ok {
		return core.Message{}, ErrNotFound
	}
	return *msg, nil
}

// Messages returns copies of all messages in creation order.
func (s *InMemory) Messages() []core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Message, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.messages[id])
	}
	return out
}

// EditCount returns how many edits a message has received.
func (s *InMemory) EditCount(messageID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editCounts[messageID]
}

// EditPayloads returns every edit payload in call order.
func (s *InMemory) EditPayloads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.editPayloads))
	copy(out, s.editPayloads)
	return out
}
