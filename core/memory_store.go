package core

// MemoryContext is the condensed conversational context handed to a
// generator: a rolling summary of evicted history plus the recent record
// window that still fits the token budget.
type MemoryContext struct {
	Summary    string   `json:"summary,omitempty"`
	Recent     []Record `json:"recent,omitempty"`
	TokenCount int      `json:"token_count"`
}

// MemoryStore tracks per-channel conversation memory under a token budget.
// Implementations decide how evicted history is folded into the summary;
// ChatRelay only consumes the resulting MemoryContext.
type MemoryStore interface {
	Append(channelID string, rec Record) error
	Context(channelID string) (MemoryContext, error)
}
