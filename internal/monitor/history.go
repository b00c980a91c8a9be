// Package monitor keeps bounded per-channel history of the bridge's output
// frames and serves charts and summary statistics over HTTP. It observes
// completed frames only; it never touches the cook path.
package monitor

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"sensorchop.dev/internal/state"
)

// DefaultHistorySize is the per-channel ring capacity. At 30 frames per
// second this holds twenty seconds of history.
const DefaultHistorySize = 600

// ring is a fixed-capacity circular buffer of float64 values.
type ring struct {
	values []float64
	next   int
	full   bool
}

func newRing(capacity int) *ring {
	return &ring{values: make([]float64, capacity)}
}

func (r *ring) append(v float64) {
	r.values[r.next] = v
	r.next++
	if r.next == len(r.values) {
		r.next = 0
		r.full = true
	}
}

// ordered returns the ring contents oldest to newest.
func (r *ring) ordered() []float64 {
	if !r.full {
		out := make([]float64, r.next)
		copy(out, r.values[:r.next])
		return out
	}
	out := make([]float64, 0, len(r.values))
	out = append(out, r.values[r.next:]...)
	out = append(out, r.values[:r.next]...)
	return out
}

// ChannelSummary holds summary statistics over one channel's ring.
type ChannelSummary struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Last   float64 `json:"last"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ChannelHistory records recent values per channel. Channels appear in
// first-seen order and are never removed; a channel that stops updating
// keeps its last ring contents.
type ChannelHistory struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	rings    map[string]*ring
}

// NewChannelHistory creates a history with the given per-channel capacity.
// A capacity of zero or less selects DefaultHistorySize.
func NewChannelHistory(capacity int) *ChannelHistory {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &ChannelHistory{
		capacity: capacity,
		rings:    make(map[string]*ring),
	}
}

// ObserveFrame appends one frame's samples to their channel rings. Intended
// to be registered as a frame output observer.
func (h *ChannelHistory) ObserveFrame(samples []state.Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range samples {
		r, ok := h.rings[s.Name]
		if !ok {
			r = newRing(h.capacity)
			h.rings[s.Name] = r
			h.order = append(h.order, s.Name)
		}
		r.append(s.Value)
	}
}

// Channels returns the known channel names in first-seen order.
func (h *ChannelHistory) Channels() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// Values returns one channel's history oldest to newest, nil if unknown.
func (h *ChannelHistory) Values(name string) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rings[name]
	if !ok {
		return nil
	}
	return r.ordered()
}

// Summaries computes summary statistics for every channel.
func (h *ChannelHistory) Summaries() []ChannelSummary {
	h.mu.RLock()
	names := make([]string, len(h.order))
	copy(names, h.order)
	h.mu.RUnlock()

	summaries := make([]ChannelSummary, 0, len(names))
	for _, name := range names {
		values := h.Values(name)
		if len(values) == 0 {
			continue
		}
		summaries = append(summaries, summarize(name, values))
	}
	return summaries
}

func summarize(name string, values []float64) ChannelSummary {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	stddev := 0.0
	if len(values) > 1 {
		stddev = stat.StdDev(values, nil)
	}
	return ChannelSummary{
		Name:   name,
		Count:  len(values),
		Last:   values[len(values)-1],
		Mean:   stat.Mean(values, nil),
		StdDev: stddev,
		Min:    min,
		Max:    max,
	}
}
