package core

import "context"

// GenerateRequest captures the normalized generator input assembled by the
// relay: static instructions, the rolling conversation summary, the recent
// record window and the text being replied to.
type GenerateRequest struct {
	Instructions string   `json:"instructions,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	History      []Record `json:"history,omitempty"`
	Input        string   `json:"input"`
}

// Generator is the boundary to the conversational-response backend. Stream
// returns a channel of text fragments in generation order plus an error
// channel; both are closed by the implementation when the stream ends. A
// fragment may embed an in-band termination marker - the delivery pipeline
// strips it before display. Closing the fragment channel without a marker is
// the other valid end-of-stream signal.
type Generator interface {
	Stream(ctx context.Context, req GenerateRequest) (<-chan string, <-chan error)
}
