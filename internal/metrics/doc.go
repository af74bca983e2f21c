// Package metrics implements the pipeline telemetry engine.
//
// The Engine:
//   - Tracks four monotonic pipeline counters and three rolling timing windows
//   - Produces immutable point-in-time Snapshots on demand
//   - Gates durable persistence to at most one write per configured interval
//   - Appends snapshots as newline-delimited JSON to an append-only log
//
// Telemetry is best-effort by design: unknown counter or stage names,
// resource-probe failures, and log write failures are logged and absorbed,
// never surfaced to the producer pipeline.
package metrics
