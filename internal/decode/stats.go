package decode

import (
	"fmt"
	"sync"
	"time"

	"sensorchop.dev/internal/logutil"
)

// Stats tracks decode outcomes with thread-safe operations. The frame loop
// feeds it one Result per row; the API and the periodic log ticker read it.
type Stats struct {
	mu        sync.Mutex
	rows      int64
	channels  int64
	outcomes  map[Outcome]int64
	truncated int64
	skipped   int64
	lastReset time.Time
}

// StatsSnapshot is a point-in-time copy of the counters, shaped for the API.
type StatsSnapshot struct {
	Rows           int64            `json:"rows"`
	Channels       int64            `json:"channels"`
	Outcomes       map[string]int64 `json:"outcomes"`
	TruncatedNodes int64            `json:"truncated_nodes"`
	SkippedSamples int64            `json:"skipped_samples"`
	Since          time.Time        `json:"since"`
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{
		outcomes:  make(map[Outcome]int64),
		lastReset: time.Now(),
	}
}

// AddResult records the outcome of one decoded row.
func (s *Stats) AddResult(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows++
	s.channels += int64(r.Channels.Len())
	s.outcomes[r.Outcome]++
	s.truncated += int64(r.TruncatedNodes)
	s.skipped += int64(r.SkippedSamples)
}

// Snapshot returns a copy of the current counters without resetting them.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcomes := make(map[string]int64, len(s.outcomes))
	for o, n := range s.outcomes {
		outcomes[o.String()] = n
	}
	return StatsSnapshot{
		Rows:           s.rows,
		Channels:       s.channels,
		Outcomes:       outcomes,
		TruncatedNodes: s.truncated,
		SkippedSamples: s.skipped,
		Since:          s.lastReset,
	}
}

// GetAndReset returns the row and channel counts since the last reset along
// with the elapsed duration, then zeroes the counters.
func (s *Stats) GetAndReset() (rows, channels, dropped int64, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	duration = now.Sub(s.lastReset)
	rows = s.rows
	channels = s.channels
	dropped = s.outcomes[OutcomeShortRow] + s.outcomes[OutcomeEmptyDevice] + s.outcomes[OutcomeBadBatch]

	s.rows = 0
	s.channels = 0
	s.truncated = 0
	s.skipped = 0
	s.outcomes = make(map[Outcome]int64)
	s.lastReset = now

	return
}

// LogStats logs a one-line per-second summary and resets the counters.
// Nothing is logged when no rows arrived in the interval.
func (s *Stats) LogStats() {
	rows, channels, dropped, duration := s.GetAndReset()
	if rows == 0 {
		return
	}
	rowsPerSec := float64(rows) / duration.Seconds()
	channelsPerSec := float64(channels) / duration.Seconds()

	msg := fmt.Sprintf("Decode stats (/sec): %.1f rows, %.1f channels", rowsPerSec, channelsPerSec)
	if dropped > 0 {
		msg += fmt.Sprintf(", %d dropped", dropped)
	}
	logutil.Logf("%s", msg)
}
