// Package fanout implements the live-update subscriber registry.
//
// The Registry:
//   - Tracks connected WebSocket subscribers under unique identifiers
//   - Broadcasts domain events best-effort, at most one attempt each
//   - Decouples the broadcaster from slow consumers with a bounded
//     outbound queue and writer goroutine per subscriber
//   - Prunes subscribers whose transport writes fail
//
// The Heartbeat drives periodic liveness pings through the same path,
// since the transport offers no half-open connection detection.
package fanout
