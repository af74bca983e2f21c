package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SnapshotSink receives persisted snapshots beyond the durable log,
// e.g. the optional database history store.
type SnapshotSink interface {
	WriteSnapshot(ctx context.Context, s Snapshot) error
}

// SnapshotSinkFunc is a function adapter for SnapshotSink.
type SnapshotSinkFunc func(context.Context, Snapshot) error

func (f SnapshotSinkFunc) WriteSnapshot(ctx context.Context, s Snapshot) error {
	return f(ctx, s)
}

// DefaultCheckInterval is how often the persister asks the engine
// whether a durable write is due. The engine's persistence gate, not
// this cadence, decides when a snapshot is actually written.
const DefaultCheckInterval = 1 * time.Second

// Persister drives periodic durable snapshot writes. It ticks at a
// short check cadence, and whenever the engine's persistence gate
// opens, collects a snapshot, appends it to the log, and forwards it
// to any extra sinks.
type Persister struct {
	engine        *Engine
	sinks         []SnapshotSink
	checkInterval time.Duration
	logger        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPersister creates a persister for the engine. Extra sinks are
// best-effort: a sink failure is logged and never stops the loop.
func NewPersister(engine *Engine, checkInterval time.Duration, logger *slog.Logger, sinks ...SnapshotSink) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	if checkInterval <= 0 {
		checkInterval = DefaultCheckInterval
	}
	return &Persister{
		engine:        engine,
		sinks:         sinks,
		checkInterval: checkInterval,
		logger:        logger,
	}
}

// Start begins the persistence check loop.
func (p *Persister) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("snapshot persister started",
		"check_interval", p.checkInterval,
	)
	return nil
}

// Stop gracefully shuts down, letting an in-flight persist finish.
func (p *Persister) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("snapshot persister stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Persister) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.persistIfDue()
		}
	}
}

func (p *Persister) persistIfDue() {
	if !p.engine.ShouldPersistNow() {
		return
	}

	s := p.engine.Collect()
	p.engine.AppendSnapshot(s)

	for _, sink := range p.sinks {
		if err := sink.WriteSnapshot(p.ctx, s); err != nil {
			p.logger.Error("snapshot sink write failed", "error", err)
		}
	}
}
