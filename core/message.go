package core

import (
	"context"
	"time"
)

// Attachment is a file attached to a surface message.
type Attachment struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

// Message is one content-bearing unit on the external messaging surface. The
// surface bounds the length of Content by a hard maximum; ChatRelay never
// edits a message beyond that bound. Routing metadata (channel, server,
// category, author flags) is carried so the router can decide whether an
// inbound message deserves a reply without reaching back to the surface.
type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id,omitempty"`
	ServerID    string       `json:"server_id,omitempty"`
	CategoryID  string       `json:"category_id,omitempty"`
	ParentID    string       `json:"parent_id,omitempty"`
	Author      string       `json:"author,omitempty"`
	Content     string       `json:"content"`
	URL         string       `json:"url,omitempty"`
	FromBot     bool         `json:"from_bot,omitempty"`
	DM          bool         `json:"dm,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Link returns the best available reference to the message for embedding in
// another message's content: the surface URL when known, the raw id otherwise.
func (m Message) Link() string {
	if m.URL != "" {
		return m.URL
	}
	return m.ID
}

// Surface is the transport boundary to the external messaging system. All
// calls are awaited sequentially by the delivery pipeline; implementations do
// not need to serialize edits themselves. Errors are propagated to the caller
// unchanged - ChatRelay performs no retries (a visible failure beats silent
// loss of partial output).
type Surface interface {
	// CreateMessage posts a new message as a reply to parentID and returns it.
	CreateMessage(ctx context.Context, parentID, content string) (Message, error)

	// EditMessage replaces the full content of an existing message. The
	// payload always carries the entire content, never a delta.
	EditMessage(ctx context.Context, messageID, content string) error

	// UploadAttachment attaches a file to an existing message.
	UploadAttachment(ctx context.Context, messageID string, data []byte, filename string) error

	// GetMessage fetches a message by id.
	GetMessage(ctx context.Context, messageID string) (Message, error)
}
