package testutil

import (
	"time"

	"github.com/chatrelay/chatrelay/core"
)

// RecordBuilder provides a fluent helper for constructing session records in
// tests, mirroring MessageBuilder.
type RecordBuilder struct {
	rec core.Record
}

// NewRecordBuilder creates a builder defaulting to a user-authored record
// with a fresh id and timestamp.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{rec: core.Record{ID: core.NewID(), Role: "user", Timestamp: time.Now().UTC()}}
}

// Channel sets the channel id (chainable).
func (b *RecordBuilder) Channel(id string) *RecordBuilder { b.rec.ChannelID = id; return b }

// Role sets the record role (chainable).
func (b *RecordBuilder) Role(r string) *RecordBuilder { b.rec.Role = r; return b }

// Author sets the author name (chainable).
func (b *RecordBuilder) Author(a string) *RecordBuilder { b.rec.Author = a; return b }

// Content sets the record content (chainable).
func (b *RecordBuilder) Content(c string) *RecordBuilder { b.rec.Content = c; return b }

// Messages sets the delivered surface message ids (chainable).
func (b *RecordBuilder) Messages(ids ...string) *RecordBuilder { b.rec.MessageIDs = ids; return b }

// Build returns the constructed record.
func (b *RecordBuilder) Build() core.Record { return b.rec }
