package chatrelay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrelay/chatrelay/core"
	"github.com/chatrelay/chatrelay/generator"
	"github.com/chatrelay/chatrelay/logging"
	"github.com/chatrelay/chatrelay/responder"
	"github.com/chatrelay/chatrelay/router"
	"github.com/chatrelay/chatrelay/surface"
)

func permissivePolicy() router.Policy {
	return router.Policy{
		Servers: []router.ServerRule{
			{ServerID: "srv-1", AllowedChannelIDs: []string{router.Wildcard}},
		},
	}
}

func fastResponder() func(o *Options) {
	return func(o *Options) {
		o.ResponderOptions = append(o.ResponderOptions, func(ro *responder.Options) {
			ro.BaseDelay = 2 * time.Millisecond
		})
	}
}

func TestChatRelay_RespondEndToEnd(t *testing.T) {
	surf := surface.NewInMemory()
	gen := generator.NewScripted([]string{"Hello, ", "alice!"}, func(o *generator.ScriptedOptions) {
		o.StopMarker = responder.DefaultStopMarker
	})
	relay := New(surf, gen,
		func(o *Options) {
			o.SelfName = "relay"
			o.Policy = permissivePolicy()
		},
		fastResponder(),
	)

	inbound := surf.Seed(core.Message{ChannelID: "ch-1", ServerID: "srv-1", Author: "alice", Content: "hi"})
	messages, err := relay.Respond(context.Background(), inbound)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Hello, alice!", messages[0].Content)
	assert.Equal(t, inbound.ID, messages[0].ParentID)

	// Both sides of the exchange are persisted to the session.
	sess, err := relay.Session("ch-1")
	require.NoError(t, err)
	records := sess.GetRecords()
	require.Len(t, records, 2)
	assert.Equal(t, "user", records[0].Role)
	assert.Equal(t, "hi", records[0].Content)
	assert.Equal(t, "assistant", records[1].Role)
	assert.Equal(t, "Hello, alice!", records[1].Content)
	assert.Equal(t, []string{messages[0].ID}, records[1].MessageIDs)
}

func TestChatRelay_PolicyDeclines(t *testing.T) {
	surf := surface.NewInMemory()
	relay := New(surf, generator.NewScripted([]string{"never"}),
		func(o *Options) { o.Policy = router.Policy{} },
	)

	inbound := surf.Seed(core.Message{ChannelID: "ch-1", ServerID: "srv-unlisted", Author: "alice", Content: "hi"})
	messages, err := relay.Respond(context.Background(), inbound)
	require.NoError(t, err)
	assert.Nil(t, messages)
	assert.Len(t, surf.Messages(), 1, "no reply may be created for a declined message")
}

type failingGenerator struct{ err error }

func (g failingGenerator) Stream(context.Context, core.GenerateRequest) (<-chan string, <-chan error) {
	out := make(chan string)
	errCh := make(chan error, 1)
	close(out)
	errCh <- g.err
	close(errCh)
	return out, errCh
}

func TestChatRelay_GeneratorFailureSurfacesNotice(t *testing.T) {
	surf := surface.NewInMemory()
	relay := New(surf, failingGenerator{err: errors.New("model unavailable")},
		func(o *Options) { o.Policy = permissivePolicy() },
		fastResponder(),
	)

	inbound := surf.Seed(core.Message{ChannelID: "ch-1", ServerID: "srv-1", Author: "alice", Content: "hi"})
	messages, err := relay.Respond(context.Background(), inbound)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Content, "An error occurred while streaming the reply")
}

func TestChatRelay_MessagePrefixApplied(t *testing.T) {
	surf := surface.NewInMemory()
	gen := generator.NewScripted([]string{"pong"})
	relay := New(surf, gen,
		func(o *Options) {
			o.Policy = permissivePolicy()
			o.MessagePrefix = "`local` "
		},
		fastResponder(),
	)

	inbound := surf.Seed(core.Message{ChannelID: "ch-1", ServerID: "srv-1", Author: "alice", Content: "ping"})
	messages, err := relay.Respond(context.Background(), inbound)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "`local` pong", messages[0].Content)
}

// relayMetricsLogger records calls to the optional relay metric helpers.
type relayMetricsLogger struct {
	logging.NoOpLogger
	mu          sync.Mutex
	generations int
	genErrs     []error
	timers      []string
}

func (l *relayMetricsLogger) LogGeneration(provider string, fragments int, dur time.Duration, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generations++
	l.genErrs = append(l.genErrs, err)
}

func (l *relayMetricsLogger) StartTimer(op string) func() {
	l.mu.Lock()
	l.timers = append(l.timers, op)
	l.mu.Unlock()
	return func() {}
}

func TestChatRelay_GenerationMetricsLogged(t *testing.T) {
	surf := surface.NewInMemory()
	ml := &relayMetricsLogger{}
	relay := New(surf, generator.NewScripted([]string{"pong"}),
		func(o *Options) {
			o.Policy = permissivePolicy()
			o.Logger = ml
		},
		fastResponder(),
	)

	inbound := surf.Seed(core.Message{ChannelID: "ch-1", ServerID: "srv-1", Author: "alice", Content: "ping"})
	_, err := relay.Respond(context.Background(), inbound)
	require.NoError(t, err)

	ml.mu.Lock()
	defer ml.mu.Unlock()
	assert.Equal(t, 1, ml.generations)
	require.Len(t, ml.genErrs, 1)
	assert.NoError(t, ml.genErrs[0])
	assert.Equal(t, []string{"respond"}, ml.timers)
}

func TestChatRelay_MemoryFeedsFollowUpRequests(t *testing.T) {
	surf := surface.NewInMemory()

	var captured core.GenerateRequest
	gen := &capturingGenerator{inner: generator.NewScripted([]string{"ok"}), captured: &captured}
	relay := New(surf, gen,
		func(o *Options) {
			o.SelfName = "relay"
			o.Policy = permissivePolicy()
		},
		fastResponder(),
	)

	first := surf.Seed(core.Message{ChannelID: "ch-1", ServerID: "srv-1", Author: "alice", Content: "remember me"})
	_, err := relay.Respond(context.Background(), first)
	require.NoError(t, err)

	second := surf.Seed(core.Message{ChannelID: "ch-1", ServerID: "srv-1", Author: "alice", Content: "follow up"})
	_, err = relay.Respond(context.Background(), second)
	require.NoError(t, err)

	require.Len(t, captured.History, 2, "first exchange must be visible to the second request")
	assert.Equal(t, "remember me", captured.History[0].Content)
	assert.Contains(t, captured.Input, "follow up")
}

type capturingGenerator struct {
	inner    core.Generator
	captured *core.GenerateRequest
}

func (g *capturingGenerator) Stream(ctx context.Context, req core.GenerateRequest) (<-chan string, <-chan error) {
	*g.captured = req
	return g.inner.Stream(ctx, req)
}
