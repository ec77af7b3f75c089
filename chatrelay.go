// Package chatrelay provides a high-level façade relaying messages between a
// chat-style messaging surface and a conversational-response backend. Most
// applications interact with this package by:
//  1. Creating a ChatRelay via New() with a Surface and a Generator
//     (optionally overriding default in-memory services)
//  2. Calling Respond for each inbound surface message
//
// Respond routes the message through the configured policy, assembles the
// generator request from conversation memory, streams the generated
// fragments through the adaptive delivery pipeline (package responder), and
// persists the finalized exchange to the session, memory and archive stores.
// All defaults are safe for local development and testing; production
// deployments typically supply durable store implementations and a
// structured logger.
package chatrelay

import (
	"context"
	"fmt"
	"time"

	"github.com/chatrelay/chatrelay/archive"
	"github.com/chatrelay/chatrelay/core"
	"github.com/chatrelay/chatrelay/logging"
	"github.com/chatrelay/chatrelay/memory"
	"github.com/chatrelay/chatrelay/responder"
	"github.com/chatrelay/chatrelay/router"
	"github.com/chatrelay/chatrelay/session"
)

// Options configures the ChatRelay instance.
type Options struct {
	// Instructions is the static system prompt handed to the generator.
	Instructions string

	// SelfName is the relay's display name; used to strip self-referential
	// echoes from generated text and recorded as the author of replies.
	SelfName string

	// MessagePrefix is prepended to every output message, e.g. a
	// local-instance banner.
	MessagePrefix string

	// Policy decides which inbound messages deserve a response. The zero
	// value responds to nothing outside DMs; set Servers or
	// AllowDirectMessages explicitly.
	Policy router.Policy

	// Stores (defaults to in-memory implementations if not provided)
	SessionStore core.SessionStore
	MemoryStore  core.MemoryStore
	ArchiveStore core.ArchiveStore

	// ResponderOptions tune the delivery pipeline (pacing, length limits,
	// flush threshold) beyond the defaults.
	ResponderOptions []func(o *responder.Options)

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// ChatRelay is the high-level façade aggregating the messaging surface, the
// response generator and the persistence services.
type ChatRelay struct {
	surface   core.Surface
	generator core.Generator
	opts      Options
	logger    logging.Logger
}

// New creates a new ChatRelay. Any unset service is initialized with an
// in-memory implementation.
func New(surface core.Surface, generator core.Generator, optFns ...func(o *Options)) *ChatRelay {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		MemoryStore:  memory.NewInMemoryStore(),
		ArchiveStore: archive.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ChatRelay{surface: surface, generator: generator, opts: opts, logger: opts.Logger}
}

// Respond handles one inbound message end to end and returns the ordered
// chain of output messages created for the reply. A nil slice with a nil
// error means the routing policy declined the message.
//
// Transport and generator errors are propagated; the caller may still have a
// partially delivered message chain when an error is returned.
func (c *ChatRelay) Respond(ctx context.Context, inbound core.Message) ([]core.Message, error) {
	if tl, ok := c.logger.(timerLogger); ok {
		defer tl.StartTimer("respond")()
	}
	if !c.opts.Policy.ShouldRespond(inbound) {
		c.logger.Debug("message not handled by relay", "message_id", inbound.ID)
		return nil, nil
	}

	memCtx, err := c.opts.MemoryStore.Context(inbound.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("load conversation memory: %w", err)
	}

	req := core.GenerateRequest{
		Instructions: c.opts.Instructions,
		Summary:      memCtx.Summary,
		History:      memCtx.Recent,
		Input:        fmt.Sprintf("%s said: \n %s", inbound.Author, inbound.Content),
	}

	resp := responder.New(c.surface, c.responderOptions()...)
	if err := resp.Initialize(ctx, inbound); err != nil {
		return nil, err
	}

	streamErr := c.stream(ctx, resp, req)
	if err := resp.Shutdown(ctx); err != nil {
		return resp.Messages(), err
	}
	messages := resp.Messages()
	if streamErr != nil {
		return messages, streamErr
	}

	if err := c.persist(inbound, messages, resp.Transcript()); err != nil {
		return messages, err
	}
	return messages, nil
}

// stream drains the generator into the delivery pipeline. On a generator
// failure a visible error notice is pushed so the user is never left staring
// at a stale placeholder.
func (c *ChatRelay) stream(ctx context.Context, resp *responder.Responder, req core.GenerateRequest) error {
	start := time.Now()
	fragments, errs := c.generator.Stream(ctx, req)
	count := 0
	for fragments != nil || errs != nil {
		select {
		case fragment, ok := <-fragments:
			if !ok {
				fragments = nil
				continue
			}
			count++
			if err := resp.Push(fragment); err != nil {
				c.logger.Warn("dropping fragment", "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				_ = resp.Push("\n!!!\n> `Oh no! An error occurred while streaming the reply...`")
				c.logger.Error("generation failed", "error", err, "duration", time.Since(start))
				c.logGeneration(count, time.Since(start), err)
				return fmt.Errorf("generate response: %w", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.logger.Debug("generation completed", "fragments", count, "duration", time.Since(start))
	c.logGeneration(count, time.Since(start), nil)
	return nil
}

// Optional logger upgrades matching logging.ChatRelayLogger's domain helpers.
type generationLogger interface {
	LogGeneration(provider string, fragments int, dur time.Duration, err error)
}

type timerLogger interface {
	StartTimer(op string) func()
}

func (c *ChatRelay) logGeneration(fragments int, dur time.Duration, err error) {
	if gl, ok := c.logger.(generationLogger); ok {
		gl.LogGeneration(fmt.Sprintf("%T", c.generator), fragments, dur, err)
	}
}

// persist archives the finalized exchange: both records to the session store
// and conversation memory, plus the full transcript to the archive store.
func (c *ChatRelay) persist(inbound core.Message, messages []core.Message, transcript string) error {
	userRec := core.NewUserRecord(inbound.ChannelID, inbound.Author, inbound.Content)
	userRec.MessageIDs = []string{inbound.ID}

	assistantRec := core.NewAssistantRecord(inbound.ChannelID, c.opts.SelfName, transcript)
	for _, msg := range messages {
		assistantRec.MessageIDs = append(assistantRec.MessageIDs, msg.ID)
	}

	for _, rec := range []core.Record{userRec, assistantRec} {
		if err := c.opts.SessionStore.AppendRecord(inbound.ChannelID, rec); err != nil {
			return fmt.Errorf("append session record: %w", err)
		}
		if err := c.opts.MemoryStore.Append(inbound.ChannelID, rec); err != nil {
			return fmt.Errorf("append memory record: %w", err)
		}
	}

	if len(messages) > 0 {
		if err := c.opts.ArchiveStore.Save(inbound.ChannelID, messages[0].ID, []byte(transcript)); err != nil {
			return fmt.Errorf("archive transcript: %w", err)
		}
	}
	return nil
}

// Session returns the persisted session for a channel.
func (c *ChatRelay) Session(channelID string) (*core.Session, error) {
	return c.opts.SessionStore.Get(channelID)
}

func (c *ChatRelay) responderOptions() []func(o *responder.Options) {
	base := func(o *responder.Options) {
		o.MessagePrefix = c.opts.MessagePrefix
		o.ResponderName = c.opts.SelfName
		o.Logger = c.logger
	}
	return append([]func(o *responder.Options){base}, c.opts.ResponderOptions...)
}
