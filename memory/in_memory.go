// Package memory provides conversation memory implementations tracking
// per-channel history under a token budget, folding evicted records into a
// rolling summary.
package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chatrelay/chatrelay/core"
)

// Summarizer folds evicted records into the previous rolling summary and
// returns the new summary. Implementations may call out to a model; the
// default is a naive concatenation suitable only for tests and demos.
type Summarizer func(previous string, evicted []core.Record) (string, error)

// Options configure the in-memory conversation memory.
type Options struct {
	// MaxTokens is the approximate token budget for the recent record
	// window. When the estimate exceeds it, oldest records are folded into
	// the summary until the window fits again.
	MaxTokens int

	// Summarizer folds evicted records into the rolling summary.
	Summarizer Summarizer

	// MaxSummaryLength bounds the rolling summary produced by the default
	// summarizer (oldest text is discarded first).
	MaxSummaryLength int
}

// InMemoryStore is a process-local core.MemoryStore holding a summary-buffer
// memory per channel: a bounded window of recent records plus a rolling
// summary of everything evicted from it. Token counts are estimated, not
// tokenizer-exact; the budget is a pacing mechanism, not a hard contract.
//
// Concurrency: protected by RWMutex.
type InMemoryStore struct {
	mu        sync.RWMutex
	opts      Options
	buffers   map[string][]core.Record // channelID -> recent record window
	summaries map[string]string        // channelID -> rolling summary
}

// Interface compliance (compile-time assertion)
var _ core.MemoryStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new in-memory conversation memory.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{
		MaxTokens:        2000,
		MaxSummaryLength: 4000,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	m := &InMemoryStore{
		opts:      opts,
		buffers:   make(map[string][]core.Record),
		summaries: make(map[string]string),
	}
	if m.opts.Summarizer == nil {
		m.opts.Summarizer = m.concatSummarizer
	}
	return m
}

// Append adds a record to the channel's window, evicting and summarizing the
// oldest records while the estimated token count exceeds the budget.
func (m *InMemoryStore) Append(channelID string, rec core.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffers[channelID] = append(m.buffers[channelID], rec)

	var evicted []core.Record
	for len(m.buffers[channelID]) > 1 && m.tokenCountLocked(channelID) > m.opts.MaxTokens {
		evicted = append(evicted, m.buffers[channelID][0])
		m.buffers[channelID] = m.buffers[channelID][1:]
	}
	if len(evicted) == 0 {
		return nil
	}

	summary, err := m.opts.Summarizer(m.summaries[channelID], evicted)
	if err != nil {
		return fmt.Errorf("summarize evicted records: %w", err)
	}
	m.summaries[channelID] = summary
	return nil
}

// Context returns the channel's rolling summary and a copy of its recent
// record window.
func (m *InMemoryStore) Context(channelID string) (core.MemoryContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recent := make([]core.Record, len(m.buffers[channelID]))
	copy(recent, m.buffers[channelID])
	return core.MemoryContext{
		Summary:    m.summaries[channelID],
		Recent:     recent,
		TokenCount: m.tokenCountLocked(channelID),
	}, nil
}

// tokenCountLocked estimates tokens for the window plus summary; caller must
// hold the lock. Uses the common ~4 chars/token heuristic.
func (m *InMemoryStore) tokenCountLocked(channelID string) int {
	total := estimateTokens(m.summaries[channelID])
	for _, rec := range m.buffers[channelID] {
		total += estimateTokens(rec.Content)
	}
	return total
}

func estimateTokens(s string) int { return (len(s) + 3) / 4 }

// concatSummarizer is the default Summarizer: it appends "author: content"
// lines to the previous summary and trims the front when the summary grows
// past MaxSummaryLength.
func (m *InMemoryStore) concatSummarizer(previous string, evicted []core.Record) (string, error) {
	var b strings.Builder
	b.WriteString(previous)
	for _, rec := range evicted {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(rec.Author)
		b.WriteString(": ")
		b.WriteString(rec.Content)
	}
	summary := b.String()
	if limit := m.opts.MaxSummaryLength; limit > 0 && len(summary) > limit {
		summary = summary[len(summary)-limit:]
	}
	return summary, nil
}
