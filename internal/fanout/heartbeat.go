package fanout

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultHeartbeatInterval matches the liveness cadence expected by
// browser clients.
const DefaultHeartbeatInterval = 30 * time.Second

// Heartbeat periodically pings every subscriber so that dead
// connections are detected and pruned. Its lifecycle is independent of
// any single connection; it runs until cancelled at shutdown.
type Heartbeat struct {
	registry *Registry
	interval time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHeartbeat creates the liveness loop. An interval <= 0 falls back
// to DefaultHeartbeatInterval.
func NewHeartbeat(registry *Registry, interval time.Duration, logger *slog.Logger) *Heartbeat {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &Heartbeat{
		registry: registry,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the heartbeat loop.
func (h *Heartbeat) Start(ctx context.Context) error {
	h.ctx, h.cancel = context.WithCancel(ctx)

	h.wg.Add(1)
	go h.run()

	h.logger.Info("heartbeat started", "interval", h.interval)
	return nil
}

// Stop cancels the loop. An in-flight ping round is allowed to finish.
func (h *Heartbeat) Stop(ctx context.Context) error {
	if h.cancel != nil {
		h.cancel()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("heartbeat stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run schedules each sleep only after the previous ping round
// completes, so a slow round never accumulates backlog or overlaps the
// next tick.
func (h *Heartbeat) run() {
	defer h.wg.Done()

	timer := time.NewTimer(h.interval)
	defer timer.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-timer.C:
			h.registry.PingAll()
			timer.Reset(h.interval)
		}
	}
}
