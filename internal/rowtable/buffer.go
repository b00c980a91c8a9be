package rowtable

import "sync"

// DefaultBufferLimit bounds pending rows between frames. At typical headband
// rates (a few hundred rows per second) this is several seconds of backlog.
const DefaultBufferLimit = 4096

// RowBuffer accumulates rows from concurrent sources until the frame loop
// drains them. The buffer is the only synchronization point between sources
// and the cook path: Take hands the pending slice to the single-threaded
// frame loop and starts a fresh one.
type RowBuffer struct {
	mu      sync.Mutex
	rows    []Row
	limit   int
	dropped int64
}

// NewRowBuffer creates a buffer holding at most limit pending rows. A limit
// of zero or less selects DefaultBufferLimit.
func NewRowBuffer(limit int) *RowBuffer {
	if limit <= 0 {
		limit = DefaultBufferLimit
	}
	return &RowBuffer{limit: limit}
}

// Append adds a row to the pending set. When the buffer is full the incoming
// row is discarded and counted, so a stalled frame loop cannot grow memory
// without bound. Returns false if the row was discarded.
func (b *RowBuffer) Append(row Row) bool {
	if row == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.rows) >= b.limit {
		b.dropped++
		return false
	}
	b.rows = append(b.rows, row)
	return true
}

// Take returns all pending rows in arrival order and resets the buffer.
func (b *RowBuffer) Take() []Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	rows := b.rows
	b.rows = nil
	return rows
}

// Len returns the number of pending rows.
func (b *RowBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rows)
}

// Dropped returns the total number of rows discarded due to a full buffer.
func (b *RowBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
