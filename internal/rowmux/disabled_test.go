package rowmux

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDisabledMuxSubscribeAndInject(t *testing.T) {
	d := NewDisabledMux()
	_, ch := d.Subscribe()

	received := make(chan string, 1)
	go func() {
		received <- <-ch
	}()
	time.Sleep(10 * time.Millisecond)

	d.Inject("#osc\ta\tb\tc")

	select {
	case line := <-received:
		if line != "#osc\ta\tb\tc" {
			t.Errorf("line = %q", line)
		}
	case <-time.After(time.Second):
		t.Fatal("injected line not delivered")
	}
}

func TestDisabledMuxSendCommandIsNoop(t *testing.T) {
	d := NewDisabledMux()
	if err := d.SendCommand("STREAM ON"); err != nil {
		t.Errorf("SendCommand: %v", err)
	}
	if err := d.Initialize(); err != nil {
		t.Errorf("Initialize: %v", err)
	}
}

func TestDisabledMuxCloseClosesSubscribers(t *testing.T) {
	d := NewDisabledMux()
	_, ch := d.Subscribe()

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel should be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}

	// Subscribing after close returns an already-closed channel.
	_, late := d.Subscribe()
	select {
	case _, ok := <-late:
		if ok {
			t.Error("post-close channel should be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("post-close channel not closed")
	}

	// Second close is a no-op.
	if err := d.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestDisabledMuxMonitorWaitsForCancel(t *testing.T) {
	d := NewDisabledMux()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- d.Monitor(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Monitor returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Monitor did not return on cancel")
	}
}

func TestDisabledMuxAdminRoutes(t *testing.T) {
	d := NewDisabledMux()
	mux := http.NewServeMux()
	d.AttachAdminRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/debug/bridge-disabled", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "row bridge disabled" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
