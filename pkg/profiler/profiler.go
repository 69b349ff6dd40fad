// Package profiler collects latency samples for named operations such as
// training and per-message classification.
package profiler

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Profiler records durations per operation. Safe for concurrent use.
type Profiler struct {
	mu    sync.Mutex
	times map[string][]time.Duration
}

// New creates an empty profiler
func New() *Profiler {
	return &Profiler{times: make(map[string][]time.Duration)}
}

// Timer measures one run of an operation
type Timer struct {
	profiler *Profiler
	name     string
	start    time.Time
}

// Start begins timing name
func (p *Profiler) Start(name string) *Timer {
	return &Timer{profiler: p, name: name, start: time.Now()}
}

// Stop records the elapsed time and returns it
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	t.profiler.Record(t.name, d)
	return d
}

// Record adds a sample for name. A nil profiler discards it.
func (p *Profiler) Record(name string, d time.Duration) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.times[name] = append(p.times[name], d)
	p.mu.Unlock()
}

// Stats summarises the samples of one operation
type Stats struct {
	Name    string        `json:"name"`
	Count   int           `json:"count"`
	Total   time.Duration `json:"total"`
	Average time.Duration `json:"average"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
	P50     time.Duration `json:"p50"`
	P95     time.Duration `json:"p95"`
}

// GetStats returns statistics for name. Count is 0 when nothing was recorded.
func (p *Profiler) GetStats(name string) Stats {
	p.mu.Lock()
	sorted := append([]time.Duration(nil), p.times[name]...)
	p.mu.Unlock()

	stats := Stats{Name: name, Count: len(sorted)}
	if len(sorted) == 0 {
		return stats
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, d := range sorted {
		stats.Total += d
	}
	stats.Average = stats.Total / time.Duration(len(sorted))
	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	stats.P50 = percentile(sorted, 0.50)
	stats.P95 = percentile(sorted, 0.95)
	return stats
}

// percentile uses the nearest-rank method on sorted samples
func percentile(sorted []time.Duration, q float64) time.Duration {
	idx := int(float64(len(sorted))*q+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// All returns statistics for every operation, sorted by name
func (p *Profiler) All() []Stats {
	p.mu.Lock()
	names := make([]string, 0, len(p.times))
	for name := range p.times {
		names = append(names, name)
	}
	p.mu.Unlock()

	sort.Strings(names)
	stats := make([]Stats, 0, len(names))
	for _, name := range names {
		stats = append(stats, p.GetStats(name))
	}
	return stats
}

// PrintReport writes a timing table to w
func (p *Profiler) PrintReport(w io.Writer) {
	stats := p.All()
	if len(stats) == 0 {
		fmt.Fprintln(w, "No timing data available")
		return
	}

	fmt.Fprintf(w, "⏱️  Timing Report\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "%-12s %6s %10s %10s %10s %10s\n", "Operation", "Count", "Avg", "P50", "P95", "Max")
	for _, s := range stats {
		fmt.Fprintf(w, "%-12s %6d %10s %10s %10s %10s\n",
			s.Name, s.Count,
			formatDuration(s.Average), formatDuration(s.P50),
			formatDuration(s.P95), formatDuration(s.Max))
	}
}

// Log emits one info event per operation
func (p *Profiler) Log(log zerolog.Logger) {
	for _, s := range p.All() {
		log.Info().
			Str("operation", s.Name).
			Int("count", s.Count).
			Dur("avg", s.Average).
			Dur("p95", s.P95).
			Dur("max", s.Max).
			Msg("timing")
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}
