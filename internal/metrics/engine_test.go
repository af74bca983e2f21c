package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arvelez/sentrycam/internal/stats"
)

// fakeProbe returns canned readings without blocking.
type fakeProbe struct {
	cpu     float64
	cpuErr  error
	mem     MemoryStats
	memErr  error
	samples int
}

func (p *fakeProbe) CPUPercent(interval time.Duration) (float64, error) {
	p.samples++
	return p.cpu, p.cpuErr
}

func (p *fakeProbe) Memory() (MemoryStats, error) {
	return p.mem, p.memErr
}

// slowProbe delays each CPU reading, inflating collection time.
type slowProbe struct {
	fakeProbe
	delay time.Duration
}

func (p *slowProbe) CPUPercent(interval time.Duration) (float64, error) {
	time.Sleep(p.delay)
	return p.fakeProbe.CPUPercent(interval)
}

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, interval time.Duration, clock *testClock, probe Probe) *Engine {
	t.Helper()
	if probe == nil {
		probe = &fakeProbe{cpu: 12.5, mem: MemoryStats{RSS: 64 << 20, Total: 8 << 30}}
	}
	cfg := Config{
		PersistInterval: interval,
		WindowCapacity:  1000,
		LogDir:          t.TempDir(),
	}
	return NewEngine(cfg, nil, WithProbe(probe), WithClock(clock.Now))
}

func TestEngine_MotionHitRate(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(t, time.Minute, clock, nil)

	for i := 0; i < 100; i++ {
		e.IncrementCounter(FramesProcessed)
	}
	for i := 0; i < 25; i++ {
		e.IncrementCounter(MotionFrames)
	}

	s := e.Collect()
	if s.MotionHitRate != 25.0 {
		t.Errorf("MotionHitRate = %v, want 25.0", s.MotionHitRate)
	}
}

func TestEngine_MotionHitRateZeroFrames(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(t, time.Minute, clock, nil)

	s := e.Collect()
	if s.MotionHitRate != 0 {
		t.Errorf("MotionHitRate with zero frames = %v, want 0", s.MotionHitRate)
	}
}

func TestEngine_CollectSummaries(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(t, time.Minute, clock, nil)

	for _, v := range []float64{10, 20, 30, 40, 50} {
		e.RecordTiming(StageDetect, v)
	}
	e.RecordTiming(StageClassify, 200)
	e.RecordFrameLatency(75)

	s := e.Collect()

	if s.DetectTiming.Min != 10 || s.DetectTiming.Max != 50 || s.DetectTiming.Avg != 30 {
		t.Errorf("DetectTiming = %+v, want min=10 max=50 avg=30", s.DetectTiming)
	}
	if s.DetectTiming.P95 != 48 {
		t.Errorf("DetectTiming.P95 = %v, want 48", s.DetectTiming.P95)
	}
	if s.ClassifyTiming.Avg != 200 {
		t.Errorf("ClassifyTiming.Avg = %v, want 200", s.ClassifyTiming.Avg)
	}
	if s.FrameLatency.Max != 75 {
		t.Errorf("FrameLatency.Max = %v, want 75", s.FrameLatency.Max)
	}

	// Empty-window contract: no special casing on the caller side.
	e.Reset()
	s = e.Collect()
	if s.DetectTiming != (stats.Summary{}) || s.ClassifyTiming != (stats.Summary{}) {
		t.Errorf("empty windows should summarize to zeros, got %+v", s.DetectTiming)
	}
}

func TestEngine_ShouldPersistNow(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(t, time.Minute, clock, nil)

	// The gate starts at construction: nothing is due until a full
	// interval has elapsed.
	if e.ShouldPersistNow() {
		t.Fatal("fresh engine should not persist before the first interval elapses")
	}

	clock.Advance(time.Minute)
	if !e.ShouldPersistNow() {
		t.Fatal("first call after interval should return true")
	}
	if e.ShouldPersistNow() {
		t.Error("immediate second call should return false")
	}

	clock.Advance(61 * time.Second)
	if !e.ShouldPersistNow() {
		t.Error("call after advancing past interval should return true")
	}
}

func TestEngine_ShouldPersistNowConcurrent(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(t, time.Minute, clock, nil)
	clock.Advance(2 * time.Minute)

	var wg sync.WaitGroup
	results := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- e.ShouldPersistNow()
		}()
	}
	wg.Wait()
	close(results)

	trues := 0
	for r := range results {
		if r {
			trues++
		}
	}
	if trues != 1 {
		t.Errorf("concurrent ShouldPersistNow returned true %d times, want exactly 1", trues)
	}
}

func TestEngine_UnknownNamesAreNoOps(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(t, time.Minute, clock, nil)

	// Must not panic and must not change state.
	e.IncrementCounterName("bogus_counter")
	e.RecordTimingName("bogus_stage", 10)

	s := e.Collect()
	if s.FramesProcessed != 0 || s.MotionFrames != 0 || s.EventsCreated != 0 || s.EventsSuppressed != 0 {
		t.Errorf("unknown counter name mutated counters: %+v", s)
	}
	if s.DetectTiming.Avg != 0 || s.ClassifyTiming.Avg != 0 {
		t.Errorf("unknown stage name mutated windows: %+v", s)
	}
}

func TestEngine_StringAdapters(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(t, time.Minute, clock, nil)

	e.IncrementCounterName("frames_processed")
	e.IncrementCounterName("events_suppressed")
	e.RecordTimingName("detect", 15)
	e.RecordTimingName("classify", 115)

	s := e.Collect()
	if s.FramesProcessed != 1 {
		t.Errorf("FramesProcessed = %d, want 1", s.FramesProcessed)
	}
	if s.EventsSuppressed != 1 {
		t.Errorf("EventsSuppressed = %d, want 1", s.EventsSuppressed)
	}
	if s.DetectTiming.Avg != 15 {
		t.Errorf("DetectTiming.Avg = %v, want 15", s.DetectTiming.Avg)
	}
	if s.ClassifyTiming.Avg != 115 {
		t.Errorf("ClassifyTiming.Avg = %v, want 115", s.ClassifyTiming.Avg)
	}
}

func TestEngine_ProbeFailureFallback(t *testing.T) {
	clock := newTestClock()
	probe := &fakeProbe{cpu: 40}
	e := newTestEngine(t, time.Minute, clock, probe)

	// Healthy probe establishes a last-known reading.
	s := e.Collect()
	if s.CPUPercent != 40 {
		t.Fatalf("CPUPercent = %v, want 40", s.CPUPercent)
	}

	// Failing probe must not crash Collect and falls back.
	probe.cpuErr = errors.New("proc unavailable")
	probe.memErr = errors.New("proc unavailable")
	s = e.Collect()
	if s.CPUPercent != 40 {
		t.Errorf("CPUPercent after probe failure = %v, want last known 40", s.CPUPercent)
	}
	if s.MemoryRSS != 0 || s.MemoryPercent != 0 {
		t.Errorf("memory after probe failure = %+v, want zeros", s)
	}
}

func TestEngine_CPUHistoryAverage(t *testing.T) {
	clock := newTestClock()
	probe := &fakeProbe{cpu: 10}
	e := newTestEngine(t, time.Minute, clock, probe)

	e.Collect()
	probe.cpu = 30
	s := e.Collect()

	if s.CPUPercent != 30 {
		t.Errorf("CPUPercent = %v, want 30", s.CPUPercent)
	}
	if s.CPUAvgPercent != 20 {
		t.Errorf("CPUAvgPercent = %v, want 20 (avg of 10 and 30)", s.CPUAvgPercent)
	}
}

func TestEngine_CPUHistoryEviction(t *testing.T) {
	clock := newTestClock()
	probe := &fakeProbe{cpu: 80}
	e := newTestEngine(t, time.Minute, clock, probe)

	// Ten high readings, then enough low readings to fill the history.
	for i := 0; i < 10; i++ {
		e.Collect()
	}
	probe.cpu = 20
	var s Snapshot
	for i := 0; i < 99; i++ {
		s = e.Collect()
	}

	// 109 collects so far: one high reading still inside the window.
	if want := (80 + 99*20) / 100.0; s.CPUAvgPercent != want {
		t.Errorf("CPUAvgPercent at 109 samples = %v, want %v", s.CPUAvgPercent, want)
	}

	// One more collect evicts the last high reading.
	s = e.Collect()
	if s.CPUAvgPercent != 20 {
		t.Errorf("CPUAvgPercent after eviction = %v, want 20", s.CPUAvgPercent)
	}
	if s.CPUPercent != 20 {
		t.Errorf("CPUPercent = %v, want 20", s.CPUPercent)
	}
}

func TestEngine_CollectOverhead(t *testing.T) {
	clock := newTestClock()

	t.Run("fast collection stays below warn threshold", func(t *testing.T) {
		e := newTestEngine(t, time.Minute, clock, nil)

		s := e.Collect()
		if s.OverheadPercent < 0 || s.OverheadPercent >= 1 {
			t.Errorf("OverheadPercent = %v, want in [0, 1) for an instant probe", s.OverheadPercent)
		}
	})

	t.Run("slow collection is capped at 100", func(t *testing.T) {
		probe := &slowProbe{
			fakeProbe: fakeProbe{cpu: 10, mem: MemoryStats{RSS: 64 << 20, Total: 8 << 30}},
			delay:     150 * time.Millisecond,
		}
		e := newTestEngine(t, time.Minute, clock, probe)

		s := e.Collect()
		if s.OverheadPercent != 100 {
			t.Errorf("OverheadPercent = %v, want capped at 100", s.OverheadPercent)
		}
	})
}

func TestEngine_UptimePlaceholder(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(t, time.Minute, clock, nil)

	// No elapsed time yet.
	if s := e.Collect(); s.UptimePercent != 0 {
		t.Errorf("UptimePercent at start = %v, want 0", s.UptimePercent)
	}

	clock.Advance(time.Second)
	if s := e.Collect(); s.UptimePercent != 100 {
		t.Errorf("UptimePercent after elapsed time = %v, want 100", s.UptimePercent)
	}
}

func TestEngine_Reset(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(t, time.Minute, clock, nil)

	e.IncrementCounter(FramesProcessed)
	e.IncrementCounter(MotionFrames)
	e.RecordTiming(StageDetect, 10)
	e.RecordTiming(StageClassify, 20)
	e.RecordFrameLatency(30)
	e.Collect() // populates CPU history

	e.Reset()

	s := e.Collect()
	if s.FramesProcessed != 0 || s.MotionFrames != 0 {
		t.Errorf("counters after Reset = %+v, want zeros", s)
	}
	if s.DetectTiming.Avg != 0 || s.ClassifyTiming.Avg != 0 || s.FrameLatency.Avg != 0 {
		t.Errorf("windows after Reset = %+v, want zeros", s)
	}

	// Behaves as a fresh instance afterwards.
	e.IncrementCounter(FramesProcessed)
	if got := e.Collect().FramesProcessed; got != 1 {
		t.Errorf("FramesProcessed after Reset+increment = %d, want 1", got)
	}
}

func TestEngine_CollectConcurrentWithProducers(t *testing.T) {
	clock := newTestClock()
	e := newTestEngine(t, time.Minute, clock, nil)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				e.IncrementCounter(FramesProcessed)
				e.RecordTiming(StageDetect, 5)
				e.RecordFrameLatency(8)
			}
		}
	}()

	for i := 0; i < 50; i++ {
		_ = e.Collect()
	}
	close(stop)
	wg.Wait()
}

func TestParseCounter(t *testing.T) {
	tests := []struct {
		name string
		want Counter
		ok   bool
	}{
		{"frames_processed", FramesProcessed, true},
		{"motion_frames", MotionFrames, true},
		{"events_created", EventsCreated, true},
		{"events_suppressed", EventsSuppressed, true},
		{"frames", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCounter(tt.name)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("ParseCounter(%q) = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}
