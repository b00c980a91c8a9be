// Package rowmux provides an abstraction over a serial-attached row bridge
// with the ability for multiple clients to subscribe to row lines from the
// bridge and send commands to the single bridge device.
package rowmux

import (
	"bufio"
	"bytes"
	"context"
	crand "crypto/rand"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"tailscale.com/tsweb"
)

var ErrWriteFailed = fmt.Errorf("failed to write to row bridge")

//go:embed templates/*
var adminTemplateFS embed.FS

var sendCommandTemplate = template.Must(template.ParseFS(adminTemplateFS, "templates/send-command.html.tmpl"))

// Mux is a generic row bridge multiplexer that allows multiple clients to
// subscribe to row lines from a single bridge port.
type Mux[T RowPorter] struct {
	port         T
	subscribers  map[string]chan string
	subscriberMu sync.Mutex
	commandMu    sync.Mutex
	closing      bool
	closingMu    sync.Mutex
}

// MuxInterface defines the interface for the Mux type.
type MuxInterface interface {
	// Subscribe creates a new channel for receiving row lines from the
	// bridge. The channel ID identifies the channel when unsubscribing.
	Subscribe() (string, chan string)
	// Unsubscribe removes a channel from the list of subscribers.
	Unsubscribe(string)
	// SendCommand writes the provided command to the bridge port.
	SendCommand(string) error
	// Monitor reads lines from the bridge port and fans them out to
	// subscribers.
	Monitor(context.Context) error
	// Inject delivers a line to subscribers as if the bridge had sent it.
	Inject(string)
	// Close closes all subscribed channels and closes the bridge port.
	Close() error

	Initialize() error

	// AttachAdminRoutes attaches admin debugging endpoints to the given HTTP
	// mux served at /debug/. These routes are accessible only over
	// localhost/via Tailscale and are not publicly accessible.
	AttachAdminRoutes(*http.ServeMux)
}

// NewMux creates a Mux instance backed by the given bridge port.
func NewMux[T RowPorter](port T) *Mux[T] {
	return &Mux[T]{
		port:         port,
		subscribers:  make(map[string]chan string),
		subscriberMu: sync.Mutex{},
		commandMu:    sync.Mutex{},
	}
}

// randomID generates a random channel ID (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

func (m *Mux[T]) Subscribe() (string, chan string) {
	id := randomID()
	ch := make(chan string)
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	m.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber from the mux.
func (m *Mux[T]) Unsubscribe(id string) {
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	if ch, ok := m.subscribers[id]; ok {
		close(ch)
		delete(m.subscribers, id)
	}
}

// Initialize syncs the clock to the bridge and switches it to tab-separated
// row output so lines parse downstream.
func (m *Mux[T]) Initialize() error {
	command := fmt.Sprintf("T=%d", time.Now().Unix())
	if err := m.SendCommand(command); err != nil {
		return fmt.Errorf("failed to synchronize clock: %w", err)
	}

	for _, command := range []string{
		"FMT TSV",   // tab-separated row output
		"STREAM ON", // start forwarding received OSC rows
	} {
		if err := m.SendCommand(command); err != nil {
			return fmt.Errorf("failed to send start command %q: %w", command, err)
		}
	}

	return nil
}

// SendCommand sends a command to the bridge port.
func (m *Mux[T]) SendCommand(command string) error {
	m.commandMu.Lock()
	defer m.commandMu.Unlock()
	if !bytes.HasSuffix([]byte(command), []byte("\n")) {
		command += "\n" // ensure command ends with a newline
	}
	n, err := m.port.Write([]byte(command))
	if err != nil {
		return err
	}
	if n != len(command) {
		return ErrWriteFailed
	}
	return nil
}

// Inject hands a line to subscribers exactly as if the bridge had produced
// it. Used by the admin inject endpoint and by bench tests.
func (m *Mux[T]) Inject(line string) {
	m.deliver(line)
}

func (m *Mux[T]) deliver(line string) {
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- line:
		default:
			// if the channel is full/blocking skip so as not to block the fan-out
		}
	}
}

// Monitor monitors the bridge port for row lines and sends them to
// subscribers.
func (m *Mux[T]) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(m.port)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	// start a goroutine to read from the port & send any lines that are
	// scanned to lineChan, and any errors to scanErrChan.
	//
	// the blocking scan.Scan will not interfere with our outer loop awaiting
	// lines & context cancellation.
	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-scanErrChan:
			return err

		case line, ok := <-lineChan:
			// if the channel is closed, we're done reading from the port
			if !ok {
				if err := scan.Err(); err != nil {
					return err
				}
				return nil
			}
			// Check if we're closing
			m.closingMu.Lock()
			if m.closing {
				m.closingMu.Unlock()
				return nil
			}
			m.closingMu.Unlock()

			m.deliver(line)
		}
	}
}

func (m *Mux[T]) Close() error {
	m.closingMu.Lock()
	m.closing = true
	m.closingMu.Unlock()

	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	for id, ch := range m.subscribers {
		close(ch)
		delete(m.subscribers, id)
	}
	return m.port.Close()
}

func (m *Mux[T]) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	// Basic command / live tail monitor interface using the below API endpoints.
	debug.HandleFunc("send-command", "send a command to the row bridge", func(w http.ResponseWriter, r *http.Request) {
		buf := bytes.NewBuffer(nil)
		if err := sendCommandTemplate.Execute(buf, nil); err != nil {
			http.Error(w, "Failed to render template", http.StatusInternalServerError)
			return
		}
		io.Copy(w, buf)
	})

	// API endpoint to write a command to the bridge port
	debug.HandleSilentFunc("send-command-api", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		command := strings.TrimSpace(r.FormValue("command"))
		if command == "" {
			http.Error(w, "Missing command", http.StatusBadRequest)
			return
		}
		if err := m.SendCommand(command); err != nil {
			http.Error(w, "Failed to write command", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, fmt.Sprintf("Wrote command %q to row bridge", command))
	})

	// API endpoint to inject a row line as if received from the bridge.
	// Useful for bench tests against a deployment without live devices.
	debug.HandleSilentFunc("inject", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		line := r.FormValue("line")
		if strings.TrimSpace(line) == "" {
			http.Error(w, "Missing line", http.StatusBadRequest)
			return
		}
		m.Inject(line)
		io.WriteString(w, "Injected line")
	})

	// API endpoint to issue Server-Side Events (SSE) in response to lines
	// coming from the bridge.
	debug.HandleSilentFunc("tail", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no") // Disable buffering for nginx

		id, c := m.Subscribe()
		defer m.Unsubscribe(id)

		// Send initial ping to establish connection
		w.Write([]byte(": ping\n\n"))
		w.(http.Flusher).Flush()

		for {
			select {
			case payload, ok := <-c:
				if !ok {
					// Channel closed, exit gracefully
					return
				}
				_, err := w.Write([]byte(fmt.Sprintf("data: %s\n\n", payload)))
				if err != nil {
					return
				}
				w.(http.Flusher).Flush()
			case <-r.Context().Done():
				return
			}
		}
	})

	debug.HandleSilentFunc("tail.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		// serve tail.js from adminTemplateFS
		f, err := adminTemplateFS.Open("templates/tail.js")
		if err != nil {
			http.Error(w, "Failed to open tail.js", http.StatusInternalServerError)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})
}
