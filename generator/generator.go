// Package generator provides core.Generator implementations: a scripted
// generator for tests and examples, plus provider adapters in subpackages.
package generator

import (
	"context"
	"time"

	"github.com/chatrelay/chatrelay/core"
)

// Scripted is a deterministic in-memory Generator useful for tests and
// examples. It replays a fixed fragment sequence, optionally pacing emission
// and appending a termination marker as the final fragment.
type Scripted struct {
	fragments  []string
	delay      time.Duration
	stopMarker string
}

// ScriptedOptions configure a Scripted generator.
type ScriptedOptions struct {
	// Delay paces fragment emission; zero emits as fast as the consumer
	// drains.
	Delay time.Duration

	// StopMarker, when non-empty, is emitted as the final fragment so the
	// pipeline terminates via the in-band marker path instead of channel
	// close.
	StopMarker string
}

// Interface compliance (compile-time assertion)
var _ core.Generator = (*Scripted)(nil)

// NewScripted constructs a Scripted generator replaying the given fragments.
func NewScripted(fragments []string, optFns ...func(o *ScriptedOptions)) *Scripted {
	opts := ScriptedOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scripted{fragments: fragments, delay: opts.Delay, stopMarker: opts.StopMarker}
}

// Stream implements core.Generator.
func (s *Scripted) Stream(ctx context.Context, _ core.GenerateRequest) (<-chan string, <-chan error) {
	out := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		emit := func(fragment string) bool {
			if s.delay > 0 {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return false
				case <-time.After(s.delay):
				}
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return false
			case out <- fragment:
				return true
			}
		}
		for _, fragment := range s.fragments {
			if !emit(fragment) {
				return
			}
		}
		if s.stopMarker != "" {
			emit(s.stopMarker)
		}
	}()
	return out, errCh
}
