package metrics

import (
	"time"

	"github.com/arvelez/sentrycam/internal/stats"
)

// Snapshot is an immutable point-in-time aggregate of engine state plus
// a system resource probe taken at collection time. It is a pure value:
// it holds no reference back to the Engine.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`

	// Pipeline counters
	FramesProcessed  int64 `json:"frames_processed"`
	MotionFrames     int64 `json:"motion_frames"`
	EventsCreated    int64 `json:"events_created"`
	EventsSuppressed int64 `json:"events_suppressed"`

	// MotionHitRate is motion_frames / frames_processed as a 0-100
	// percentage, 0 when no frames have been processed.
	MotionHitRate float64 `json:"motion_hit_rate"`

	// Rolling window summaries (milliseconds)
	DetectTiming   stats.Summary `json:"detect_timing_ms"`
	ClassifyTiming stats.Summary `json:"classify_timing_ms"`
	FrameLatency   stats.Summary `json:"frame_latency_ms"`

	// Resource usage
	CPUPercent    float64 `json:"cpu_percent"`
	CPUAvgPercent float64 `json:"cpu_avg_percent"`
	MemoryRSS     uint64  `json:"memory_rss_bytes"`
	MemoryRSSMB   float64 `json:"memory_rss_mb"`
	MemoryPercent float64 `json:"memory_percent"`

	// UptimePercent is a placeholder: 100 for any positive elapsed time
	// since start, 0 otherwise. It does not track actual downtime.
	UptimePercent float64 `json:"uptime_percent"`

	// OverheadPercent is the self-measured cost of producing this
	// snapshot, relative to the CPU sampling interval, capped at 100.
	OverheadPercent float64 `json:"overhead_percent"`
}
