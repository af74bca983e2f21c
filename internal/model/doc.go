// Package model defines shared data types for the sentrycam telemetry core.
//
// Conventions:
//   - Timestamps: int64 microseconds since Unix epoch, except wire frame
//     timestamps which are milliseconds (browser-friendly)
//   - IDs: uuid.UUID for events, string for camera identifiers
package model
