package core

import (
	"time"

	"github.com/google/uuid"
)

// Record is the primary unit persisted to session history: one conversational
// exchange authored by a user or by the responder. After creation it should
// be treated as immutable. MessageIDs carries the surface message chain the
// record was delivered on (more than one entry when the reply paginated).
type Record struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channel_id"`
	Role       string    `json:"role"` // "user" or "assistant"
	Author     string    `json:"author"`
	Content    string    `json:"content"`
	MessageIDs []string  `json:"message_ids,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRecord creates a record with a fresh id and UTC timestamp.
func NewRecord(channelID, role, author, content string) Record {
	return Record{
		ID:        NewID(),
		ChannelID: channelID,
		Role:      role,
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserRecord is a convenience wrapper for a user-authored record.
func NewUserRecord(channelID, author, content string) Record {
	return NewRecord(channelID, "user", author, content)
}

// NewAssistantRecord is a convenience wrapper for a responder-authored record.
func NewAssistantRecord(channelID, author, content string) Record {
	return NewRecord(channelID, "assistant", author, content)
}

// NewID generates a new unique identifier for records and sessions.
func NewID() string { return uuid.NewString() }
