package responder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/chatrelay/chatrelay/core"
	"github.com/chatrelay/chatrelay/logging"
)

// DefaultStopMarker is the in-band sentinel string signaling end-of-stream.
const DefaultStopMarker = "STOP_STREAMING"

// DefaultSeedContent is the placeholder shown in the first output message
// until the first chunk of generated text arrives.
const DefaultSeedContent = "`response incoming...`"

// Options configures a Responder. All fields have working defaults; override
// them via the functional options passed to New.
type Options struct {
	// MaxMessageLength is the hard per-message content limit imposed by the
	// messaging surface.
	MaxMessageLength int

	// ComfortRatio is the fraction of MaxMessageLength used as the
	// pagination trigger, leaving headroom for continuation-link footers.
	ComfortRatio float64

	// BaseDelay is the base pacing delay between drain cycles. The delay
	// grows geometrically while the queue is idle and resets to BaseDelay
	// on activity.
	BaseDelay time.Duration

	// BackoffFactor is the geometric growth factor applied to the pacing
	// delay on idle cycles.
	BackoffFactor float64

	// FlushThreshold is the fragment count above which an accumulating
	// chunk is flushed to the surface.
	FlushThreshold int

	// StopMarker is the termination marker stripped from visible text.
	StopMarker string

	// MessagePrefix is prepended to every output message's content, e.g. a
	// local-instance banner.
	MessagePrefix string

	// ResponderName, when set, is used to strip a leading "Name:" echo from
	// generated chunks.
	ResponderName string

	// SeedContent is the initial content of the first output message.
	SeedContent string

	// Logger receives structured pipeline diagnostics. Defaults to NoOp.
	Logger logging.Logger
}

// Responder owns one delivery session: the full lifecycle of streaming one
// reply onto the messaging surface, from the first seeded message through
// pagination to the finalizing transcript attachment.
//
// Concurrency contract: a single producer calls Push while a single consumer
// goroutine (started by Initialize) drains the queue and performs all surface
// calls sequentially. Shutdown is idempotent and joins the consumer loop;
// Messages and Transcript are valid once Shutdown has returned.
type Responder struct {
	surface core.Surface
	opts    Options
	logger  logging.Logger

	queue   fragmentQueue
	stopped atomic.Bool

	mu          sync.Mutex
	initialized bool
	sess        *deliverySession
	loopDone    chan struct{}
	loopErr     error
}

// deliverySession is the mutable state of one output run. It is exclusively
// owned by the batching loop goroutine for the session's lifetime; the writer
// and paginator act as its delegates, not independent owners. The current
// open message is an index into the chain rather than a raw reference.
type deliverySession struct {
	messages   []core.Message // ordered chain of opened output messages
	current    int            // index of the open message in messages
	buffer     string         // accumulated content of the open message
	transcript strings.Builder
	dirty      bool // any visible content written since Initialize
}

// New creates a Responder delivering onto the given surface.
func New(surface core.Surface, optFns ...func(o *Options)) *Responder {
	opts := Options{
		MaxMessageLength: 2000,
		ComfortRatio:     0.8,
		BaseDelay:        500 * time.Millisecond,
		BackoffFactor:    1.2,
		FlushThreshold:   20,
		StopMarker:       DefaultStopMarker,
		SeedContent:      DefaultSeedContent,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Responder{surface: surface, opts: opts, logger: opts.Logger}
}

// Initialize opens the first output message as a reply to target and starts
// the batching loop. It must be called exactly once per responder.
//
// The provided context governs the whole delivery session. Cancelling it is
// a hard stop: buffered fragments may be lost and the finalizer may not run.
// The graceful path is the termination marker or Shutdown.
func (r *Responder) Initialize(ctx context.Context, target core.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return ErrAlreadyInitialized
	}
	if err := r.open(ctx, target); err != nil {
		return err
	}
	r.initialized = true
	r.loopDone = make(chan struct{})
	go r.run(ctx)
	return nil
}

// open creates the seeded first message and the delivery session.
func (r *Responder) open(ctx context.Context, target core.Message) error {
	r.logger.Debug("initializing reply to message", "target_id", target.ID)
	msg, err := r.surface.CreateMessage(ctx, target.ID, r.opts.MessagePrefix+r.opts.SeedContent)
	if err != nil {
		return fmt.Errorf("create reply message: %w", err)
	}
	r.sess = &deliverySession{
		messages: []core.Message{msg},
		current:  0,
		buffer:   r.opts.MessagePrefix,
	}
	return nil
}

// Push appends a fragment to the queue. It never blocks and is safe to call
// concurrently with the batching loop. Fragments that are not valid UTF-8
// are rejected before they can enter the transcript.
func (r *Responder) Push(fragment string) error {
	if !utf8.ValidString(fragment) {
		return ErrMalformedFragment
	}
	r.queue.Push(fragment)
	return nil
}

// Shutdown sets the termination flag and waits for the batching loop to
// drain all pending fragments, flush trailing content and run the finalizer.
// It is idempotent; every call returns the first error the loop observed.
func (r *Responder) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	initialized := r.initialized
	r.mu.Unlock()
	if !initialized {
		return ErrNotInitialized
	}
	r.stopped.Store(true)
	select {
	case <-r.loopDone:
		return r.loopErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Messages returns the ordered chain of output messages created during the
// session. Valid once Shutdown has returned.
func (r *Responder) Messages() []core.Message {
	if r.sess == nil {
		return nil
	}
	out := make([]core.Message, len(r.sess.messages))
	copy(out, r.sess.messages)
	return out
}

// Transcript returns the full concatenated text delivered during the
// session, with the termination marker removed. Valid once Shutdown has
// returned.
func (r *Responder) Transcript() string {
	if r.sess == nil {
		return ""
	}
	transcript := r.sess.transcript.String()
	if r.opts.StopMarker != "" {
		transcript = strings.ReplaceAll(transcript, r.opts.StopMarker, "")
	}
	return transcript
}

// run is the batching loop: WAITING -> DRAINING cycles on an adaptive
// schedule, then DONE once the termination flag is set and the queue is
// empty. Geometric backoff while idle avoids hammering the surface with
// empty polls; resetting on activity keeps latency low during bursts.
func (r *Responder) run(ctx context.Context) {
	defer close(r.loopDone)

	delay := r.opts.BaseDelay
	var chunk []string
	for {
		if err := pause(ctx, delay); err != nil {
			r.loopErr = err
			return
		}
		frags := r.queue.DrainAll()
		if len(frags) == 0 {
			delay = time.Duration(float64(delay) * r.opts.BackoffFactor)
			// An idle queue flushes whatever accumulated below the
			// threshold, so the visible message never lags the stream by
			// more than one drain cycle and an in-band marker takes effect
			// without further input.
			if err := r.flush(ctx, chunk); err != nil {
				r.loopErr = err
				return
			}
			chunk = chunk[:0]
			// Second fixed-size wait before the termination check; the
			// two-phase idle wait is part of the pacing contract.
			if err := pause(ctx, r.opts.BaseDelay); err != nil {
				r.loopErr = err
				return
			}
			if r.stopped.Load() && r.queue.Len() == 0 {
				break
			}
			continue
		}
		delay = r.opts.BaseDelay
		chunk = append(chunk, frags...)
		if len(chunk) > r.opts.FlushThreshold {
			if err := r.flush(ctx, chunk); err != nil {
				r.loopErr = err
				return
			}
			chunk = chunk[:0]
		}
	}

	// Trailing flush: no fragment is ever dropped at end-of-stream, even if
	// the accumulated chunk is below the flush threshold.
	if err := r.flush(ctx, chunk); err != nil {
		r.loopErr = err
		return
	}
	r.loopErr = r.finalize(ctx)
	r.logger.Debug("batching loop finished", "messages", len(r.sess.messages))
}

// flush joins one accumulated chunk and hands it to the message writer,
// reporting flush metrics to loggers that track them.
func (r *Responder) flush(ctx context.Context, chunk []string) error {
	if len(chunk) == 0 {
		return nil
	}
	joined := strings.Join(chunk, "")
	start := time.Now()
	if err := r.apply(ctx, joined); err != nil {
		return err
	}
	if fl, ok := r.logger.(flushLogger); ok {
		fl.LogStreamFlush(len(chunk), len(joined), time.Since(start))
	}
	return nil
}

// pause sleeps for d or returns early with the context error.
func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
