package stats

import (
	"sort"
	"sync"
)

// DefaultCapacity is the window size used by the metrics engine.
const DefaultCapacity = 1000

// Summary holds derived statistics over a window's current contents.
type Summary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P95 float64 `json:"p95"`
}

// Window is a fixed-capacity FIFO buffer of the most recent samples.
// Appending beyond capacity evicts the oldest sample. Safe for
// concurrent use.
type Window struct {
	mu       sync.Mutex
	samples  []float64
	head     int // index of the oldest sample once full
	capacity int
	full     bool
}

// NewWindow creates an empty window. A capacity < 1 falls back to
// DefaultCapacity.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Window{
		samples:  make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Append adds one sample, evicting the oldest when the window is full.
func (w *Window) Append(v float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.full {
		w.samples = append(w.samples, v)
		if len(w.samples) == w.capacity {
			w.full = true
		}
		return
	}

	// Ring overwrite: head points at the oldest sample.
	w.samples[w.head] = v
	w.head = (w.head + 1) % w.capacity
}

// Len returns the number of samples currently held.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.samples)
}

// Values returns the samples in insertion order (oldest first).
func (w *Window) Values() []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.valuesLocked()
}

func (w *Window) valuesLocked() []float64 {
	out := make([]float64, len(w.samples))
	if !w.full {
		copy(out, w.samples)
		return out
	}
	n := copy(out, w.samples[w.head:])
	copy(out[n:], w.samples[:w.head])
	return out
}

// Reset clears the window.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples = w.samples[:0]
	w.head = 0
	w.full = false
}

// Summarize computes min/max/avg/p95 over the current contents.
// An empty window yields the zero Summary, never an error.
func (w *Window) Summarize() Summary {
	w.mu.Lock()
	values := w.valuesLocked()
	w.mu.Unlock()

	if len(values) == 0 {
		return Summary{}
	}

	sort.Float64s(values)

	var sum float64
	for _, v := range values {
		sum += v
	}

	return Summary{
		Min: values[0],
		Max: values[len(values)-1],
		Avg: sum / float64(len(values)),
		P95: percentile(values, 95),
	}
}

// percentile returns the pth percentile of sorted ascending values
// using linear interpolation between adjacent ranks. The interpolation
// method is load-bearing: reported p95 values change silently if it
// does, so it is pinned by tests.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
