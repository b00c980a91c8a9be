package frame

import (
	"sync"

	"sensorchop.dev/internal/state"
)

// MapOutput is an in-memory Output holding the latest completed frame. The
// API, monitor and forwarder read the snapshot; a frame in progress is never
// visible to readers because the pending samples only publish on EndFrame.
type MapOutput struct {
	mu          sync.RWMutex
	pending     []state.Sample
	current     []state.Sample
	sampleCount int
	frames      int64
	observers   []func([]state.Sample)
}

// NewMapOutput creates an empty MapOutput.
func NewMapOutput() *MapOutput {
	return &MapOutput{}
}

// BeginFrame starts a new frame, discarding any uncommitted samples.
func (o *MapOutput) BeginFrame(sampleCount int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = o.pending[:0]
	o.sampleCount = sampleCount
}

// SetChannel appends one channel to the frame in progress.
func (o *MapOutput) SetChannel(name string, value float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, state.Sample{Name: name, Value: value})
}

// EndFrame publishes the frame in progress and notifies observers.
func (o *MapOutput) EndFrame() {
	o.mu.Lock()
	o.current = append(o.current[:0], o.pending...)
	o.frames++
	snapshot := append([]state.Sample(nil), o.current...)
	observers := o.observers
	o.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

// Snapshot returns a copy of the latest completed frame.
func (o *MapOutput) Snapshot() []state.Sample {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]state.Sample(nil), o.current...)
}

// Frames returns the number of completed frames.
func (o *MapOutput) Frames() int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.frames
}

// Observe registers a callback invoked with each completed frame's samples.
// Observers run on the frame loop goroutine and must not block.
func (o *MapOutput) Observe(fn func([]state.Sample)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}
