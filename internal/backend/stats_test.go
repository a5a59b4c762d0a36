package backend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatencyStats_Snapshot(t *testing.T) {
	s := NewLatencyStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		s.Record(ms)
	}
	s.RecordFailure(600)

	snap := s.Snapshot()
	assert.Equal(t, 6, snap.Calls)
	assert.Equal(t, 1, snap.Failures)
	assert.Equal(t, int64(100), snap.MinMs)
	assert.Equal(t, int64(600), snap.MaxMs)
	assert.InDelta(t, 350, snap.AvgMs, 0.001)
	assert.InDelta(t, 350, snap.P50Ms, 0.001)
	assert.InDelta(t, 575, snap.P95Ms, 0.001)
}

func TestLatencyStats_PrunesExpiredCalls(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewLatencyStats(time.Minute)
	s.now = func() time.Time { return now }

	s.Record(100)
	now = now.Add(30 * time.Second)
	s.RecordFailure(300)
	now = now.Add(45 * time.Second)

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Calls)
	assert.Equal(t, 1, snap.Failures)
	assert.Equal(t, int64(300), snap.MinMs)

	now = now.Add(time.Minute)
	assert.Equal(t, LatencySnapshot{}, s.Snapshot())
}

func TestLatencyStats_ClampsNegativeAndNil(t *testing.T) {
	s := NewLatencyStats(0)
	s.Record(-5)
	assert.Equal(t, int64(0), s.Snapshot().MaxMs)

	var none *LatencyStats
	none.Record(10)
	assert.Equal(t, LatencySnapshot{}, none.Snapshot())
}
