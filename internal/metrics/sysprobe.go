package metrics

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
)

// MemoryStats holds a point-in-time memory reading.
type MemoryStats struct {
	RSS   uint64 // resident set size of this process, bytes
	Total uint64 // total system memory, bytes
}

// Probe samples system resource usage. Injectable so tests can avoid
// the blocking CPU sample.
type Probe interface {
	// CPUPercent blocks for the given interval and returns overall CPU
	// utilization as a 0-100 percentage.
	CPUPercent(interval time.Duration) (float64, error)

	// Memory returns current memory usage for this process and the host.
	Memory() (MemoryStats, error)
}

// sysProbe reads CPU and memory via gopsutil.
type sysProbe struct {
	proc *process.Process
}

// NewSystemProbe returns a Probe backed by the host OS.
func NewSystemProbe() Probe {
	// Process lookup failure leaves proc nil; Memory then reports only
	// host totals and the caller logs the degraded reading.
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &sysProbe{proc: proc}
}

func (p *sysProbe) CPUPercent(interval time.Duration) (float64, error) {
	percents, err := cpu.Percent(interval, false)
	if err != nil {
		return 0, fmt.Errorf("sample cpu: %w", err)
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("sample cpu: empty result")
	}
	return percents[0], nil
}

func (p *sysProbe) Memory() (MemoryStats, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemoryStats{}, fmt.Errorf("read virtual memory: %w", err)
	}

	var rss uint64
	if p.proc != nil {
		info, err := p.proc.MemoryInfo()
		if err != nil {
			return MemoryStats{Total: vm.Total}, fmt.Errorf("read process memory: %w", err)
		}
		rss = info.RSS
	}

	return MemoryStats{RSS: rss, Total: vm.Total}, nil
}
