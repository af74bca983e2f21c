// Package server is the thin HTTP ingress for the telemetry core.
//
// Routes:
//   - GET  /ws       upgrade and register a live-update subscriber
//   - POST /events   count a motion event and broadcast it to subscribers
//   - POST /timings  record one inference pass timing
//   - GET  /metrics  current telemetry snapshot as JSON
//   - GET  /healthz  liveness with subscriber count
//
// Handlers stay glue-thin: validation, upgrade, and delegation only.
package server
