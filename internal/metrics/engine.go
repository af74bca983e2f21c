package metrics

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arvelez/sentrycam/internal/stats"
	"github.com/arvelez/sentrycam/internal/version"
)

const (
	// cpuSampleInterval is the blocking window for the CPU probe and the
	// reference duration for the collection-overhead percentage.
	cpuSampleInterval = 100 * time.Millisecond

	// cpuHistoryCap bounds the rolling CPU-reading history.
	cpuHistoryCap = 100
)

// Config holds engine settings.
type Config struct {
	// PersistInterval is the minimum time between durable snapshot writes.
	PersistInterval time.Duration

	// WindowCapacity sizes the rolling timing windows.
	WindowCapacity int

	// LogDir is the directory for the append-only snapshot log.
	LogDir string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithProbe replaces the system resource probe.
func WithProbe(p Probe) Option {
	return func(e *Engine) { e.probe = p }
}

// WithClock replaces the engine clock. Used by tests to drive the
// persistence gate.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine aggregates pipeline counters and timing samples and produces
// immutable snapshots. One instance per process, owned by the
// composition root and passed to every producer that needs it.
//
// Producer calls (IncrementCounter, RecordTiming, RecordFrameLatency)
// and Collect may run on different goroutines: counters are atomic and
// windows lock internally, so a Collect racing with producers observes
// an eventually-consistent but tear-free view.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	probe  Probe
	now    func() time.Time

	counters [numCounters]atomic.Int64

	stageWindows [numStages]*stats.Window
	latency      *stats.Window

	// mu guards the CPU history, the last known CPU reading, and the
	// persistence gate timestamp.
	mu          sync.Mutex
	cpuHistory  []float64
	lastCPU     float64
	lastPersist time.Time

	startedAt time.Time

	log *SnapshotLog
}

// NewEngine creates the process telemetry engine.
func NewEngine(cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		cfg:    cfg,
		logger: logger,
		probe:  NewSystemProbe(),
		now:    time.Now,
		log:    NewSnapshotLog(cfg.LogDir, logger),
	}
	for _, opt := range opts {
		opt(e)
	}

	for i := range e.stageWindows {
		e.stageWindows[i] = stats.NewWindow(cfg.WindowCapacity)
	}
	e.latency = stats.NewWindow(cfg.WindowCapacity)
	e.cpuHistory = make([]float64, 0, cpuHistoryCap)

	e.startedAt = e.now()
	e.lastPersist = e.startedAt

	return e
}

// IncrementCounter bumps one of the fixed pipeline counters.
func (e *Engine) IncrementCounter(c Counter) {
	if c < 0 || c >= numCounters {
		e.logger.Warn("unknown counter, ignoring", "counter", int(c))
		return
	}
	e.counters[c].Add(1)
}

// IncrementCounterName is the string adapter for legacy callers.
// Unknown names are logged and ignored; producers are never destabilized
// by a metrics call.
func (e *Engine) IncrementCounterName(name string) {
	c, ok := ParseCounter(name)
	if !ok {
		e.logger.Warn("unknown counter name, ignoring", "name", name)
		return
	}
	e.counters[c].Add(1)
}

// RecordTiming appends an inference timing sample for a pipeline stage.
func (e *Engine) RecordTiming(s Stage, millis float64) {
	if s < 0 || s >= numStages {
		e.logger.Warn("unknown stage, ignoring", "stage", int(s))
		return
	}
	e.stageWindows[s].Append(millis)
}

// RecordTimingName is the string adapter for legacy callers.
func (e *Engine) RecordTimingName(name string, millis float64) {
	s, ok := ParseStage(name)
	if !ok {
		e.logger.Warn("unknown stage name, ignoring", "name", name)
		return
	}
	e.stageWindows[s].Append(millis)
}

// RecordFrameLatency appends an end-to-end frame latency sample.
func (e *Engine) RecordFrameLatency(millis float64) {
	e.latency.Append(millis)
}

// Collect assembles a snapshot of current engine state plus a resource
// probe. It never mutates counters and is safe to call concurrently
// with producer calls.
func (e *Engine) Collect() Snapshot {
	began := time.Now()

	s := Snapshot{
		DetectTiming:   e.stageWindows[StageDetect].Summarize(),
		ClassifyTiming: e.stageWindows[StageClassify].Summarize(),
		FrameLatency:   e.latency.Summarize(),
	}

	s.CPUPercent, s.CPUAvgPercent = e.sampleCPU()
	s.MemoryRSS, s.MemoryRSSMB, s.MemoryPercent = e.sampleMemory()

	s.FramesProcessed = e.counters[FramesProcessed].Load()
	s.MotionFrames = e.counters[MotionFrames].Load()
	s.EventsCreated = e.counters[EventsCreated].Load()
	s.EventsSuppressed = e.counters[EventsSuppressed].Load()

	if s.FramesProcessed > 0 {
		s.MotionHitRate = float64(s.MotionFrames) / float64(s.FramesProcessed) * 100
	}

	// Placeholder: no actual downtime tracking. 100 for any positive
	// elapsed time, 0 otherwise.
	if e.now().After(e.startedAt) {
		s.UptimePercent = 100
	}

	s.Timestamp = e.now()
	s.Version = version.Version

	overhead := float64(time.Since(began)) / float64(cpuSampleInterval) * 100
	if overhead > 100 {
		overhead = 100
	}
	s.OverheadPercent = overhead
	if overhead > 1 {
		e.logger.Warn("metrics collection overhead above threshold",
			"overhead_percent", overhead,
		)
	}

	return s
}

// sampleCPU runs the blocking CPU probe and folds the reading into the
// rolling history. Probe failure falls back to the last known reading.
func (e *Engine) sampleCPU() (current, average float64) {
	reading, err := e.probe.CPUPercent(cpuSampleInterval)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.logger.Warn("cpu probe failed, using last known reading",
			"error", err,
			"last", e.lastCPU,
		)
		reading = e.lastCPU
	}
	e.lastCPU = reading

	if len(e.cpuHistory) >= cpuHistoryCap {
		// Shift in place; the backing array allocated at construction
		// is reused for the life of the engine.
		copy(e.cpuHistory, e.cpuHistory[1:])
		e.cpuHistory = e.cpuHistory[:len(e.cpuHistory)-1]
	}
	e.cpuHistory = append(e.cpuHistory, reading)

	var sum float64
	for _, v := range e.cpuHistory {
		sum += v
	}
	return reading, sum / float64(len(e.cpuHistory))
}

// sampleMemory returns current memory usage in three units. Probe
// failure substitutes zeros and logs.
func (e *Engine) sampleMemory() (rssBytes uint64, rssMB, percent float64) {
	m, err := e.probe.Memory()
	if err != nil {
		e.logger.Warn("memory probe failed, reporting zeros", "error", err)
		return 0, 0, 0
	}

	rssMB = float64(m.RSS) / (1024 * 1024)
	if m.Total > 0 {
		percent = float64(m.RSS) / float64(m.Total) * 100
	}
	return m.RSS, rssMB, percent
}

// ShouldPersistNow reports whether a durable snapshot write is due, and
// if so advances the persistence gate. The check-and-set is atomic:
// under concurrent callers exactly one observes true per interval.
// The gate starts at construction time, so the first write happens one
// full interval after startup, not immediately.
func (e *Engine) ShouldPersistNow() bool {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if now.Sub(e.lastPersist) < e.cfg.PersistInterval {
		return false
	}
	e.lastPersist = now
	return true
}

// AppendSnapshot writes one snapshot to the durable log. Write failures
// are logged and absorbed; persistence never blocks the pipeline.
func (e *Engine) AppendSnapshot(s Snapshot) {
	if err := e.log.Append(s); err != nil {
		e.logger.Error("snapshot write failed, dropping snapshot", "error", err)
	}
}

// SnapshotPath returns the durable log file location.
func (e *Engine) SnapshotPath() string {
	return e.log.Path()
}

// Reset zeroes all counters and clears every window and the CPU
// history. For test harnesses and controlled restarts only.
func (e *Engine) Reset() {
	for i := range e.counters {
		e.counters[i].Store(0)
	}
	for _, w := range e.stageWindows {
		w.Reset()
	}
	e.latency.Reset()

	e.mu.Lock()
	e.cpuHistory = e.cpuHistory[:0]
	e.lastCPU = 0
	e.mu.Unlock()
}
