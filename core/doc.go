// Package core provides the foundational domain types and interfaces used by
// ChatRelay. It defines the core abstractions for:
//
//   - Messages (units of content on the external messaging surface)
//   - Records (immutable persisted conversational exchanges)
//   - Sessions (per-conversation containers with record history)
//   - Pluggable boundaries for the messaging surface, the response generator,
//     conversation memory, session persistence and transcript archival
//
// The package intentionally keeps implementation concerns (concrete surfaces,
// generator adapters, the streaming delivery pipeline) out of scope, exposing
// small interfaces to enable custom backends and extensions.
package core
