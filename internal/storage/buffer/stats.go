package buffer

import "sync/atomic"

// Stats counts buffer manager activity
type Stats struct {
	requests      atomic.Int64
	hits          atomic.Int64
	misses        atomic.Int64
	pageReads     atomic.Int64
	pageWrites    atomic.Int64
	evictions     atomic.Int64
	clockAdvances atomic.Int64
	exhaustions   atomic.Int64
}

// StatsSnapshot is a copy of the counters at one instant
type StatsSnapshot struct {
	Requests      int64
	Hits          int64
	Misses        int64
	PageReads     int64
	PageWrites    int64
	Evictions     int64
	ClockAdvances int64
	Exhaustions   int64
}

func (s *Stats) recordRequest(hit bool) {
	s.requests.Add(1)
	if hit {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Requests:      s.requests.Load(),
		Hits:          s.hits.Load(),
		Misses:        s.misses.Load(),
		PageReads:     s.pageReads.Load(),
		PageWrites:    s.pageWrites.Load(),
		Evictions:     s.evictions.Load(),
		ClockAdvances: s.clockAdvances.Load(),
		Exhaustions:   s.exhaustions.Load(),
	}
}

// HitRatio returns hits over requests, 0 when idle
func (s StatsSnapshot) HitRatio() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Requests)
}
