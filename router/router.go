// Package router decides whether an inbound surface message deserves a
// relayed response. Rules cover self and other-bot authorship, direct
// messages and per-server channel / category allow lists.
package router

import (
	"strings"

	"github.com/chatrelay/chatrelay/core"
	"github.com/chatrelay/chatrelay/logging"
)

// Wildcard in an allow list admits every category or channel of a server.
const Wildcard = "ALL"

// ServerRule scopes where the relay may respond within one server. Empty
// lists admit nothing; use Wildcard to admit everything.
type ServerRule struct {
	ServerID           string
	AllowedCategoryIDs []string
	AllowedChannelIDs  []string
}

// Policy is the full routing configuration.
type Policy struct {
	// SelfID is the relay's own surface identity; its own messages are
	// always ignored.
	SelfID string

	// AllowDirectMessages admits messages from DM channels.
	AllowDirectMessages bool

	// AllowedBotPrefixes admits messages from other bots when their content
	// starts with one of these prefixes (e.g. a transcription banner).
	// Bot-authored messages are otherwise ignored.
	AllowedBotPrefixes []string

	// Servers lists the servers the relay responds in. Messages from
	// unlisted servers are rejected.
	Servers []ServerRule

	// Logger receives routing decisions at debug level. Defaults to NoOp.
	Logger logging.Logger
}

// ShouldRespond reports whether the relay should produce a response to msg.
func (p Policy) ShouldRespond(msg core.Message) bool {
	logger := p.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	if p.SelfID != "" && msg.Author == p.SelfID {
		return false
	}

	if msg.FromBot && !p.hasAllowedPrefix(msg.Content) {
		logger.Debug("ignoring bot-authored message", "author", msg.Author)
		return false
	}

	if msg.DM {
		return p.AllowDirectMessages
	}

	rule, ok := p.serverRule(msg.ServerID)
	if !ok {
		logger.Warn("message received from server not in the allow list", "server_id", msg.ServerID)
		return false
	}

	if contains(rule.AllowedCategoryIDs, Wildcard) || contains(rule.AllowedCategoryIDs, msg.CategoryID) {
		return true
	}
	if contains(rule.AllowedChannelIDs, Wildcard) {
		return true
	}
	return contains(rule.AllowedChannelIDs, msg.ChannelID)
}

func (p Policy) hasAllowedPrefix(content string) bool {
	for _, prefix := range p.AllowedBotPrefixes {
		if strings.HasPrefix(content, prefix) {
			return true
		}
	}
	return false
}

func (p Policy) serverRule(serverID string) (ServerRule, bool) {
	for _, rule := range p.Servers {
		if rule.ServerID == serverID {
			return rule, true
		}
	}
	return ServerRule{}, false
}

func contains(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
