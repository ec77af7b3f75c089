package testutil

import (
	"time"

	"github.com/chatrelay/chatrelay/core"
)

// MessageBuilder provides a fluent helper for constructing surface messages
// in tests. Example:
//
//	msg := NewMessageBuilder().Channel("ch-1").Author("alice").Content("hi").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	msg core.Message
}

// NewMessageBuilder creates a builder with a default id and timestamp.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{msg: core.Message{ID: core.NewID(), Timestamp: time.Now().UTC()}}
}

// ID overrides the auto-generated message id (chainable).
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.msg.ID = id; return b }

// Channel sets the channel id (chainable).
func (b *MessageBuilder) Channel(id string) *MessageBuilder { b.msg.ChannelID = id; return b }

// Server sets the server id (chainable).
func (b *MessageBuilder) Server(id string) *MessageBuilder { b.msg.ServerID = id; return b }

// Category sets the category id (chainable).
func (b *MessageBuilder) Category(id string) *MessageBuilder { b.msg.CategoryID = id; return b }

// Author sets the author name (chainable).
func (b *MessageBuilder) Author(a string) *MessageBuilder { b.msg.Author = a; return b }

// Content sets the message content (chainable).
func (b *MessageBuilder) Content(c string) *MessageBuilder { b.msg.Content = c; return b }

// Bot marks the message as bot-authored (chainable).
func (b *MessageBuilder) Bot() *MessageBuilder { b.msg.FromBot = true; return b }

// DM marks the message as coming from a direct-message channel (chainable).
func (b *MessageBuilder) DM() *MessageBuilder { b.msg.DM = true; return b }

// Build returns the constructed message.
func (b *MessageBuilder) Build() core.Message { return b.msg }
