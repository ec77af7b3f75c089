// Package responder implements the adaptive streaming output delivery
// pipeline: it receives an open-ended, asynchronously-arriving sequence of
// text fragments from a response generator and renders them, incrementally
// and in order, onto a messaging surface that imposes a hard per-message
// length limit and a practical rate limit on message edits.
//
// The pipeline batches fragments on an adaptive schedule to minimize edit
// operations, paginates overflow into new linked messages without losing or
// duplicating content, guarantees that every fragment is flushed exactly once
// even when the stream ends via an in-band termination marker, and drains all
// pending state deterministically on shutdown.
//
// Lifecycle: New -> Initialize -> Push (repeatedly) -> Shutdown -> Messages.
// A single producer feeds Push while a single consumer goroutine drains the
// queue; the delivery session state is exclusively owned by that goroutine,
// so no locking is required around it.
package responder
