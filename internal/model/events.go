package model

import "github.com/google/uuid"

// Wire frame types sent to live-update subscribers.
const (
	FrameTypeEvent = "event"
	FrameTypePing  = "ping"
)

// Envelope is the frame wrapping every message sent to a subscriber.
type Envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"` // ms since epoch, ping frames only
}

// MotionEvent is a domain event produced by the frame pipeline when
// motion crosses the detection threshold and survives suppression.
type MotionEvent struct {
	ID         uuid.UUID `json:"id"`
	CameraID   string    `json:"camera_id"`
	DetectedAt int64     `json:"detected_at"` // µs since epoch
	Label      string    `json:"label"`       // classifier output, e.g. "person"
	Confidence float64   `json:"confidence"`  // 0-1
	Suppressed bool      `json:"suppressed"`
}

// StageTiming reports one inference pass, recorded by the pipeline
// against the metrics engine.
type StageTiming struct {
	Stage    string  `json:"stage"` // "detect" or "classify"
	CameraID string  `json:"camera_id"`
	Millis   float64 `json:"millis"`
}
