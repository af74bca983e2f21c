package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arvelez/sentrycam/internal/metrics"
)

// SnapshotStore persists metrics snapshots to the history table. It
// implements metrics.SnapshotSink.
type SnapshotStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewSnapshotStore creates a store writing to metrics_snapshots.
func NewSnapshotStore(db *pgxpool.Pool, logger *slog.Logger) *SnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{db: db, logger: logger}
}

// WriteSnapshot inserts one snapshot row. Duplicate timestamps (e.g. a
// restart replaying the same tick) are dropped on conflict.
func (s *SnapshotStore) WriteSnapshot(ctx context.Context, snap metrics.Snapshot) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO metrics_snapshots (
			ts, version,
			frames_processed, motion_frames, events_created, events_suppressed,
			motion_hit_rate,
			detect_min, detect_max, detect_avg, detect_p95,
			classify_min, classify_max, classify_avg, classify_p95,
			latency_min, latency_max, latency_avg, latency_p95,
			cpu_percent, cpu_avg_percent,
			memory_rss_bytes, memory_percent,
			uptime_percent, overhead_percent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (ts) DO NOTHING
	`,
		snap.Timestamp, snap.Version,
		snap.FramesProcessed, snap.MotionFrames, snap.EventsCreated, snap.EventsSuppressed,
		snap.MotionHitRate,
		snap.DetectTiming.Min, snap.DetectTiming.Max, snap.DetectTiming.Avg, snap.DetectTiming.P95,
		snap.ClassifyTiming.Min, snap.ClassifyTiming.Max, snap.ClassifyTiming.Avg, snap.ClassifyTiming.P95,
		snap.FrameLatency.Min, snap.FrameLatency.Max, snap.FrameLatency.Avg, snap.FrameLatency.P95,
		snap.CPUPercent, snap.CPUAvgPercent,
		snap.MemoryRSS, snap.MemoryPercent,
		snap.UptimePercent, snap.OverheadPercent,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}
