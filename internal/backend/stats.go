package backend

import (
	"slices"
	"sync"
	"time"
)

// LatencySnapshot aggregates the grading service calls of the last window.
type LatencySnapshot struct {
	Calls    int     `json:"calls"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
}

type call struct {
	at     time.Time
	ms     int64
	failed bool
}

// LatencyStats keeps a rolling window of call latencies.
type LatencyStats struct {
	mu     sync.Mutex
	calls  []call
	window time.Duration
	now    func() time.Time
}

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window, now: time.Now}
}

// Record adds a successful call.
func (s *LatencyStats) Record(ms int64) { s.add(ms, false) }

// RecordFailure adds a call that ended in an error.
func (s *LatencyStats) RecordFailure(ms int64) { s.add(ms, true) }

func (s *LatencyStats) add(ms int64, failed bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	s.calls = append(s.calls, call{at: now, ms: max(ms, 0), failed: failed})
}

// Snapshot returns the aggregate over the current window.
func (s *LatencyStats) Snapshot() LatencySnapshot {
	if s == nil {
		return LatencySnapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	if len(s.calls) == 0 {
		return LatencySnapshot{}
	}

	snap := LatencySnapshot{Calls: len(s.calls)}
	values := make([]int64, len(s.calls))
	var sum int64
	for i, c := range s.calls {
		values[i] = c.ms
		sum += c.ms
		if c.failed {
			snap.Failures++
		}
	}
	slices.Sort(values)

	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	return snap
}

// pruneLocked drops calls older than the window. Calls are appended in
// time order, so the expired ones form a prefix.
func (s *LatencyStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.calls) && s.calls[i].at.Before(cutoff) {
		i++
	}
	s.calls = s.calls[i:]
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 1 {
		return float64(sorted[0])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
