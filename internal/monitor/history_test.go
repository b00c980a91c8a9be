package monitor

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sensorchop.dev/internal/state"
)

func frame(pairs ...interface{}) []state.Sample {
	var samples []state.Sample
	for i := 0; i < len(pairs); i += 2 {
		samples = append(samples, state.Sample{Name: pairs[i].(string), Value: pairs[i+1].(float64)})
	}
	return samples
}

func TestChannelHistoryRecordsInOrder(t *testing.T) {
	h := NewChannelHistory(4)
	h.ObserveFrame(frame("b", 1.0, "a", 2.0))
	h.ObserveFrame(frame("a", 3.0))

	if diff := cmp.Diff([]string{"b", "a"}, h.Channels()); diff != "" {
		t.Errorf("channels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1.0}, h.Values("b")); diff != "" {
		t.Errorf("b values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2.0, 3.0}, h.Values("a")); diff != "" {
		t.Errorf("a values mismatch (-want +got):\n%s", diff)
	}
	if got := h.Values("missing"); got != nil {
		t.Errorf("Values(missing) = %v, want nil", got)
	}
}

func TestChannelHistoryWraparound(t *testing.T) {
	h := NewChannelHistory(3)
	for i := 1; i <= 5; i++ {
		h.ObserveFrame(frame("x", float64(i)))
	}

	// Capacity 3, five appends: only the last three survive, oldest first.
	if diff := cmp.Diff([]float64{3.0, 4.0, 5.0}, h.Values("x")); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestSummaries(t *testing.T) {
	h := NewChannelHistory(8)
	for _, v := range []float64{1, 2, 3, 4} {
		h.ObserveFrame(frame("x", v))
	}
	h.ObserveFrame(frame("single", 7.0))

	summaries := h.Summaries()
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}

	x := summaries[0]
	if x.Name != "x" || x.Count != 4 || x.Last != 4 || x.Min != 1 || x.Max != 4 {
		t.Errorf("x summary = %+v", x)
	}
	if x.Mean != 2.5 {
		t.Errorf("x mean = %v, want 2.5", x.Mean)
	}
	// Sample standard deviation of 1..4.
	if want := math.Sqrt(5.0 / 3.0); math.Abs(x.StdDev-want) > 1e-12 {
		t.Errorf("x stddev = %v, want %v", x.StdDev, want)
	}

	single := summaries[1]
	if single.Count != 1 || single.StdDev != 0 || single.Mean != 7 {
		t.Errorf("single summary = %+v", single)
	}
}

func TestRingOrderedBeforeFull(t *testing.T) {
	r := newRing(4)
	r.append(1)
	r.append(2)
	if diff := cmp.Diff([]float64{1, 2}, r.ordered()); diff != "" {
		t.Errorf("ordered mismatch (-want +got):\n%s", diff)
	}
}

func TestRingOrderedExactlyFull(t *testing.T) {
	r := newRing(2)
	r.append(1)
	r.append(2)
	if diff := cmp.Diff([]float64{1, 2}, r.ordered()); diff != "" {
		t.Errorf("ordered mismatch (-want +got):\n%s", diff)
	}
	r.append(3)
	if diff := cmp.Diff([]float64{2, 3}, r.ordered()); diff != "" {
		t.Errorf("ordered after wrap mismatch (-want +got):\n%s", diff)
	}
}
