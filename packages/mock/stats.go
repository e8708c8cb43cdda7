package mock

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Stats summarizes the requests a Server has handled.
type Stats struct {
	Requests  int64
	Unmatched int64
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
	Max       time.Duration
}

// latency tracks handling time in microseconds, 1us to 60s.
type latency struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	requests  int64
	unmatched int64
}

func newLatency() *latency {
	return &latency{
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}
}

func (l *latency) record(d time.Duration, matched bool) {
	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > 60_000_000 {
		us = 60_000_000
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.histogram.RecordValue(us)
	l.requests++
	if !matched {
		l.unmatched++
	}
}

func (l *latency) snapshot() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.requests == 0 {
		return Stats{}
	}
	return Stats{
		Requests:  l.requests,
		Unmatched: l.unmatched,
		P50:       time.Duration(l.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:       time.Duration(l.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:       time.Duration(l.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Max:       time.Duration(l.histogram.Max()) * time.Microsecond,
	}
}
