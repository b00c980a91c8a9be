// Package state holds the persistent per-device channel state. Values merge
// in frame by frame and survive silent frames: a device that stops sending
// keeps emitting its last known values rather than flickering to zero.
// State is owned by whoever runs the frame loop and passed in explicitly; it
// lives for the process and is only cleared by an operator reset.
package state

import (
	"sync"

	"sensorchop.dev/internal/decode"
)

// Sample is one named output value in a frame snapshot.
type Sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DeviceInfo summarises one known device for the API.
type DeviceInfo struct {
	ID       string   `json:"id"`
	Channels int      `json:"channels"`
	Suffixes []string `json:"suffixes"`
}

// DeviceState maps normalised device ids to their merged channel maps.
// Devices and suffixes keep insertion order so output channel order is
// stable across frames. Safe for concurrent use: the frame loop writes, the
// API and monitor read.
type DeviceState struct {
	mu      sync.RWMutex
	order   []string
	devices map[string]*decode.ChannelMap
}

// New creates an empty DeviceState.
func New() *DeviceState {
	return &DeviceState{devices: make(map[string]*decode.ChannelMap)}
}

// Apply merges channels into a device's state. Matching suffixes are
// overwritten; suffixes absent from channels keep their previous value.
// Empty channel maps register nothing, so a device never appears in the
// output without at least one channel.
func (s *DeviceState) Apply(device string, channels *decode.ChannelMap) {
	if device == "" || channels.Len() == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.devices[device]
	if !ok {
		existing = decode.NewChannelMap()
		s.devices[device] = existing
		s.order = append(s.order, device)
	}
	existing.Merge(channels)
}

// Snapshot returns the full output frame: every device crossed with its
// suffixes, in insertion order, named {device}_{suffix}.
func (s *DeviceState) Snapshot() []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var samples []Sample
	for _, device := range s.order {
		s.devices[device].Each(func(suffix string, value float64) {
			samples = append(samples, Sample{Name: device + "_" + suffix, Value: value})
		})
	}
	return samples
}

// Devices lists the known devices in insertion order.
func (s *DeviceState) Devices() []DeviceInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]DeviceInfo, 0, len(s.order))
	for _, device := range s.order {
		channels := s.devices[device]
		infos = append(infos, DeviceInfo{
			ID:       device,
			Channels: channels.Len(),
			Suffixes: channels.Names(),
		})
	}
	return infos
}

// Len returns the number of known devices.
func (s *DeviceState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Reset discards all device state. The next frames rebuild it from whatever
// the devices send.
func (s *DeviceState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.devices = make(map[string]*decode.ChannelMap)
}
