package decode

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ChannelMap is an insertion-ordered mapping of channel suffix to value.
// Order matters: downstream consumers key charts and output slots off the
// order channels first appeared, so iteration must be deterministic
// run-to-run rather than map-random.
type ChannelMap struct {
	names  []string
	values map[string]float64
}

// NewChannelMap creates an empty ChannelMap.
func NewChannelMap() *ChannelMap {
	return &ChannelMap{values: make(map[string]float64)}
}

// Set assigns a value to a channel, appending the name on first assignment.
func (m *ChannelMap) Set(name string, value float64) {
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = value
}

// Get returns the value for a channel and whether it is present.
func (m *ChannelMap) Get(name string) (float64, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Len returns the number of channels.
func (m *ChannelMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Names returns the channel names in insertion order.
func (m *ChannelMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Each calls fn for every channel in insertion order.
func (m *ChannelMap) Each(fn func(name string, value float64)) {
	if m == nil {
		return
	}
	for _, name := range m.names {
		fn(name, m.values[name])
	}
}

// Merge folds other into m, later values overwriting earlier ones key by
// key. Names new to m are appended in other's order.
func (m *ChannelMap) Merge(other *ChannelMap) {
	if other == nil {
		return
	}
	other.Each(m.Set)
}

// MarshalJSON encodes the map as a JSON object preserving insertion order.
func (m *ChannelMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(m.values[name], 'g', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
