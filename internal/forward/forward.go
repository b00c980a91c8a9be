// Package forward pushes completed frames to a downstream visual host over
// HTTP. Forwarding is strictly best-effort: a slow or absent downstream must
// never hold up the frame loop, so at most one request is in flight and
// frames arriving while it runs are skipped, not queued.
package forward

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"sensorchop.dev/internal/httputil"
	"sensorchop.dev/internal/logutil"
	"sensorchop.dev/internal/state"
)

// Forwarder POSTs frame snapshots as JSON to a configured URL.
type Forwarder struct {
	client   httputil.HTTPClient
	url      string
	inflight atomic.Bool

	mu      sync.Mutex
	sent    int64
	failed  int64
	skipped int64
	lastErr string
}

// StatsSnapshot reports forwarding counters for the API.
type StatsSnapshot struct {
	Sent      int64  `json:"sent"`
	Failed    int64  `json:"failed"`
	Skipped   int64  `json:"skipped"`
	LastError string `json:"last_error,omitempty"`
}

// New creates a Forwarder for the given URL. A nil client selects a standard
// HTTP client with a short timeout.
func New(client httputil.HTTPClient, url string) *Forwarder {
	if client == nil {
		client = httputil.NewStandardClient(&http.Client{Timeout: 2 * time.Second})
	}
	return &Forwarder{client: client, url: url}
}

// framePayload is the wire shape of one forwarded frame.
type framePayload struct {
	SampleCount int            `json:"sample_count"`
	Channels    []state.Sample `json:"channels"`
}

// Push forwards one frame's samples. When a previous push is still in
// flight the frame is skipped and counted; the downstream catches up on the
// next frame. Safe to register directly as a frame output observer.
func (f *Forwarder) Push(samples []state.Sample) {
	if f.url == "" {
		return
	}
	if !f.inflight.CompareAndSwap(false, true) {
		f.mu.Lock()
		f.skipped++
		f.mu.Unlock()
		return
	}

	body, err := json.Marshal(framePayload{SampleCount: 1, Channels: samples})
	if err != nil {
		f.inflight.Store(false)
		f.recordFailure(fmt.Sprintf("marshal frame: %v", err))
		return
	}

	go func() {
		defer f.inflight.Store(false)

		resp, err := f.client.Post(f.url, "application/json", bytes.NewReader(body))
		if err != nil {
			f.recordFailure(err.Error())
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 300 {
			f.recordFailure(fmt.Sprintf("downstream returned %d", resp.StatusCode))
			return
		}

		f.mu.Lock()
		f.sent++
		f.lastErr = ""
		f.mu.Unlock()
	}()
}

// recordFailure counts a failed push, logging only on state change so a dead
// downstream does not flood the log every frame.
func (f *Forwarder) recordFailure(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed++
	if f.lastErr != msg {
		logutil.Logf("frame forward failed: %s", msg)
	}
	f.lastErr = msg
}

// Stats returns a snapshot of the forwarding counters.
func (f *Forwarder) Stats() StatsSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return StatsSnapshot{
		Sent:      f.sent,
		Failed:    f.failed,
		Skipped:   f.skipped,
		LastError: f.lastErr,
	}
}
