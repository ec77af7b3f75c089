// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer ChatRelayLogger with contextual
// helpers (channel, reply, component) and domain specific logging helpers for
// surface calls, stream flushes and generation runs.
package logging
