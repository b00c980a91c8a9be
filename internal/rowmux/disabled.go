package rowmux

import (
	"context"
	"net/http"
	"sync"
)

// DisabledMux is a no-op Mux implementation used when no serial bridge is
// attached (UDP-only deployments, --disable-serial). It allows the server
// and admin routes to run without a real device while still tracking
// subscribers so their channels close deterministically on Unsubscribe() or
// Close(), letting readers unblock predictably during shutdown.
type DisabledMux struct {
	mu          sync.Mutex
	subscribers map[string]chan string
	closing     bool
}

func NewDisabledMux() *DisabledMux {
	return &DisabledMux{
		subscribers: make(map[string]chan string),
	}
}

func (d *DisabledMux) Subscribe() (string, chan string) {
	id := randomID()
	ch := make(chan string)

	d.mu.Lock()
	if d.closing {
		// If already closing, return a closed channel so callers don't block.
		close(ch)
		d.mu.Unlock()
		return id, ch
	}
	d.subscribers[id] = ch
	d.mu.Unlock()
	return id, ch
}

func (d *DisabledMux) Unsubscribe(id string) {
	d.mu.Lock()
	if ch, ok := d.subscribers[id]; ok {
		close(ch)
		delete(d.subscribers, id)
	}
	d.mu.Unlock()
}

func (d *DisabledMux) SendCommand(string) error { return nil }

// Inject still delivers to subscribers so bench tests work without a bridge.
func (d *DisabledMux) Inject(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ch := range d.subscribers {
		select {
		case ch <- line:
		default:
		}
	}
}

func (d *DisabledMux) Monitor(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }

func (d *DisabledMux) Close() error {
	d.mu.Lock()
	if d.closing {
		d.mu.Unlock()
		return nil
	}
	d.closing = true
	// Close all subscriber channels
	for id, ch := range d.subscribers {
		close(ch)
		delete(d.subscribers, id)
	}
	d.mu.Unlock()
	return nil
}

func (d *DisabledMux) Initialize() error { return nil }

func (d *DisabledMux) AttachAdminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/bridge-disabled", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("row bridge disabled"))
	})
}
