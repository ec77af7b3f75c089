package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chatrelay/chatrelay/internal/testutil"
)

func allowAllPolicy() Policy {
	return Policy{
		SelfID: "relay",
		Servers: []ServerRule{
			{ServerID: "srv-1", AllowedChannelIDs: []string{Wildcard}},
		},
	}
}

func TestPolicy_IgnoresSelf(t *testing.T) {
	p := allowAllPolicy()
	msg := testutil.NewMessageBuilder().Server("srv-1").Channel("ch-1").Author("relay").Content("echo").Build()
	assert.False(t, p.ShouldRespond(msg))
}

func TestPolicy_BotAuthors(t *testing.T) {
	p := allowAllPolicy()
	p.AllowedBotPrefixes = []string{"Transcription of"}

	bot := testutil.NewMessageBuilder().Server("srv-1").Channel("ch-1").Author("otherbot").Bot().Content("beep boop").Build()
	assert.False(t, p.ShouldRespond(bot), "bot messages without an allowed prefix are ignored")

	transcription := testutil.NewMessageBuilder().Server("srv-1").Channel("ch-1").Author("otherbot").Bot().
		Content("Transcription of voice note: hello").Build()
	assert.True(t, p.ShouldRespond(transcription))
}

func TestPolicy_DirectMessages(t *testing.T) {
	p := allowAllPolicy()
	dm := testutil.NewMessageBuilder().Author("alice").DM().Content("hi").Build()
	assert.False(t, p.ShouldRespond(dm))

	p.AllowDirectMessages = true
	assert.True(t, p.ShouldRespond(dm))
}

func TestPolicy_ServerAllowList(t *testing.T) {
	p := Policy{
		Servers: []ServerRule{
			{ServerID: "srv-1", AllowedChannelIDs: []string{"ch-allowed"}},
			{ServerID: "srv-2", AllowedCategoryIDs: []string{"cat-allowed"}},
		},
	}

	tests := []struct {
		name     string
		server   string
		category string
		channel  string
		want     bool
	}{
		{"listed channel", "srv-1", "", "ch-allowed", true},
		{"unlisted channel", "srv-1", "", "ch-other", false},
		{"listed category", "srv-2", "cat-allowed", "ch-any", true},
		{"unlisted category and channel", "srv-2", "cat-other", "ch-any", false},
		{"unlisted server", "srv-3", "", "ch-allowed", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := testutil.NewMessageBuilder().Server(tt.server).Category(tt.category).Channel(tt.channel).
				Author("alice").Content("hi").Build()
			assert.Equal(t, tt.want, p.ShouldRespond(msg))
		})
	}
}

func TestPolicy_CategoryWildcard(t *testing.T) {
	p := Policy{
		Servers: []ServerRule{{ServerID: "srv-1", AllowedCategoryIDs: []string{Wildcard}}},
	}
	msg := testutil.NewMessageBuilder().Server("srv-1").Category("cat-any").Channel("ch-any").Author("alice").Build()
	assert.True(t, p.ShouldRespond(msg))
}

func TestPolicy_EmptyRuleAdmitsNothing(t *testing.T) {
	p := Policy{Servers: []ServerRule{{ServerID: "srv-1"}}}
	msg := testutil.NewMessageBuilder().Server("srv-1").Channel("ch-1").Author("alice").Build()
	assert.False(t, p.ShouldRespond(msg))
}
