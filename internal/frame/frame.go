// Package frame ties the per-frame pipeline together: drain pending rows,
// decode each in arrival order, merge into device state, and rewrite the
// output in full. One Cook call is one frame; calls never overlap.
package frame

import (
	"context"
	"time"

	"sensorchop.dev/internal/decode"
	"sensorchop.dev/internal/logutil"
	"sensorchop.dev/internal/rowtable"
	"sensorchop.dev/internal/state"
	"sensorchop.dev/internal/timeutil"
)

// Output is the frame's write contract. Every frame the output is cleared,
// its sample count pinned to one, and every known channel rewritten, so the
// consumer never sees a partial frame or a stale channel set mid-update.
type Output interface {
	// BeginFrame clears existing channels and sets the sample count.
	BeginFrame(sampleCount int)
	// SetChannel assigns one value to a named channel.
	SetChannel(name string, value float64)
	// EndFrame marks the frame complete.
	EndFrame()
}

// Cooker runs the decode and merge pipeline for one frame at a time.
type Cooker struct {
	state *state.DeviceState
	stats *decode.Stats
}

// NewCooker creates a Cooker over the given state and stats. Both are owned
// by the caller: state persists across frames, stats feed the API and the
// periodic log summary.
func NewCooker(st *state.DeviceState, stats *decode.Stats) *Cooker {
	return &Cooker{state: st, stats: stats}
}

// Cook processes one frame: every row decodes in order, merged results fold
// into device state, then the full state writes to out. Rows that decode to
// nothing are counted and skipped. When rows is empty the current state is
// still written, so the output always reflects the last known values.
func (c *Cooker) Cook(rows []rowtable.Row, out Output) {
	for _, row := range rows {
		result := decode.DecodeRow(row)
		if c.stats != nil {
			c.stats.AddResult(result)
		}
		if !result.Dropped() {
			c.state.Apply(result.Device, result.Channels)
		}
	}

	samples := c.state.Snapshot()
	out.BeginFrame(1)
	for _, s := range samples {
		out.SetChannel(s.Name, s.Value)
	}
	out.EndFrame()
}

// State returns the device state the cooker merges into.
func (c *Cooker) State() *state.DeviceState {
	return c.state
}

// Loop runs Cook on a fixed cadence until the context is cancelled, draining
// the row buffer each tick. The clock is injected so tests can drive frames
// without real time.
func (c *Cooker) Loop(ctx context.Context, clock timeutil.Clock, interval time.Duration, buffer *rowtable.RowBuffer, out Output) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logutil.Logf("frame loop stopping: %v", ctx.Err())
			return
		case <-ticker.C():
			c.Cook(buffer.Take(), out)
		}
	}
}
