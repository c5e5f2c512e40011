package cycle

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ItemStats is one playlist entry's bookkeeping in the final report.
type ItemStats struct {
	ID       string
	Displays int
	Failures int
}

// Report summarizes a cycling session: playlist activity plus process
// and host memory figures for spotting leaks across long runs.
type Report struct {
	Uptime     time.Duration
	State      State
	Items      []ItemStats
	Displays   int
	Failures   int
	LiveURLs   int
	ProcessRSS uint64 // bytes, 0 if unavailable
	SystemUsed float64 // percent, 0 if unavailable
}

// Report collects the session statistics. Safe to call at any point,
// including after Dispose.
func (m *Machine) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := Report{
		State:    m.state,
		LiveURLs: m.urls.Live(),
	}
	if !m.startedAt.IsZero() {
		r.Uptime = time.Since(m.startedAt)
	}
	for i := range m.session.items {
		id := m.session.items[i].ID
		meta := m.session.Meta(id)
		r.Items = append(r.Items, ItemStats{ID: id, Displays: meta.DisplayCount, Failures: meta.Failures})
		r.Displays += meta.DisplayCount
		r.Failures += meta.Failures
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := proc.MemoryInfo(); err == nil {
			r.ProcessRSS = mi.RSS
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		r.SystemUsed = vm.UsedPercent
	}
	return r
}

// String renders the report in the log-friendly form printed when
// show_stats is enabled.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[*] Session report: uptime %s, state %s\n", r.Uptime.Round(time.Second), r.State)
	fmt.Fprintf(&b, "[*] Displays: %d, failures: %d, live object URLs: %d\n", r.Displays, r.Failures, r.LiveURLs)
	for _, it := range r.Items {
		fmt.Fprintf(&b, "    - %s: %d shown, %d failed\n", it.ID, it.Displays, it.Failures)
	}
	if r.ProcessRSS > 0 {
		fmt.Fprintf(&b, "[*] Process RSS: %.1f MB, system memory used: %.1f%%\n",
			float64(r.ProcessRSS)/(1024*1024), r.SystemUsed)
	}
	return b.String()
}
