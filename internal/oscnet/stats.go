package oscnet

import (
	"fmt"
	"sync"
	"time"

	"sensorchop.dev/internal/logutil"
)

// RowStats tracks datagram statistics with thread-safe operations.
type RowStats struct {
	mu             sync.Mutex
	datagramCount  int64
	byteCount      int64
	rowCount       int64
	malformedCount int64
	droppedCount   int64
	lastReset      time.Time
}

// NewRowStats creates a new RowStats instance.
func NewRowStats() *RowStats {
	return &RowStats{lastReset: time.Now()}
}

// AddDatagram increments datagram count and byte count.
func (rs *RowStats) AddDatagram(bytes int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.datagramCount++
	rs.byteCount += int64(bytes)
}

// AddRows increments the accepted row count.
func (rs *RowStats) AddRows(count int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.rowCount += int64(count)
}

// AddMalformed increments the malformed message count.
func (rs *RowStats) AddMalformed() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.malformedCount++
}

// AddDropped increments the count of rows rejected by a full sink.
func (rs *RowStats) AddDropped() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.droppedCount++
}

// GetAndReset returns current stats and resets counters.
func (rs *RowStats) GetAndReset() (datagrams, bytes, rows, malformed, dropped int64, duration time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	now := time.Now()
	duration = now.Sub(rs.lastReset)
	datagrams = rs.datagramCount
	bytes = rs.byteCount
	rows = rs.rowCount
	malformed = rs.malformedCount
	dropped = rs.droppedCount

	rs.datagramCount = 0
	rs.byteCount = 0
	rs.rowCount = 0
	rs.malformedCount = 0
	rs.droppedCount = 0
	rs.lastReset = now

	return
}

// LogStats logs formatted statistics for the interval since the last reset.
func (rs *RowStats) LogStats() {
	datagrams, bytes, rows, malformed, dropped, duration := rs.GetAndReset()
	if datagrams == 0 && malformed == 0 {
		return
	}
	datagramsPerSec := float64(datagrams) / duration.Seconds()
	kbPerSec := float64(bytes) / duration.Seconds() / 1024
	rowsPerSec := float64(rows) / duration.Seconds()

	msg := fmt.Sprintf("OSC stats (/sec): %.1f KB, %.1f datagrams, %.1f rows",
		kbPerSec, datagramsPerSec, rowsPerSec)
	if malformed > 0 {
		msg += fmt.Sprintf(", %d malformed", malformed)
	}
	if dropped > 0 {
		msg += fmt.Sprintf(", %d dropped on full buffer", dropped)
	}
	logutil.Logf("%s", msg)
}
