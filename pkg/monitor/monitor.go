// Package monitor tracks recent operation durations over a fixed-size
// rolling window. It is constructed explicitly and injected into the engine
// rather than shared as a process-wide global, so independent engines and
// tests never observe each other's timings.
package monitor

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultWindow is the number of samples retained when no window size is
// given.
const DefaultWindow = 20

// Monitor records operation durations and answers their running average
// over the most recent window. Safe for concurrent use.
type Monitor struct {
	mu      sync.Mutex
	window  int
	samples []time.Duration
	total   atomic.Int64
	zero    atomic.Int64
}

// New returns a monitor keeping up to window samples. A non-positive window
// falls back to DefaultWindow.
func New(window int) *Monitor {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Monitor{
		window:  window,
		samples: make([]time.Duration, 0, window),
	}
}

// Record appends one measurement, dropping the oldest once the window is
// full.
func (m *Monitor) Record(d time.Duration) {
	m.total.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, d)
	if len(m.samples) > m.window {
		m.samples = m.samples[1:]
	}
}

// Average returns the mean duration over the current window, zero when
// nothing has been recorded yet.
func (m *Monitor) Average() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.samples) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range m.samples {
		sum += d
	}
	return sum / time.Duration(len(m.samples))
}

// Percentile returns the pct-th percentile duration over the current
// window, zero when nothing has been recorded yet.
func (m *Monitor) Percentile(pct int) time.Duration {
	m.mu.Lock()
	sorted := make([]time.Duration, len(m.samples))
	copy(sorted, m.samples)
	m.mu.Unlock()

	if len(sorted) == 0 {
		return 0
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// RecordZero counts a search that produced no results.
func (m *Monitor) RecordZero() {
	m.zero.Add(1)
}

// ZeroResults returns how many recorded searches produced no results.
func (m *Monitor) ZeroResults() int64 {
	return m.zero.Load()
}

// Count returns the number of measurements recorded since construction,
// including ones already dropped from the window.
func (m *Monitor) Count() int64 {
	return m.total.Load()
}

// Len returns the number of samples currently held in the window.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples)
}
