package rowmux

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"
)

// MockRowPort implements RowPorter for dev mode and testing. Reads come from
// a pipe fed by a replay goroutine; writes (commands) are collected and
// otherwise ignored.
type MockRowPort struct {
	io.Reader

	mu       sync.Mutex
	commands bytes.Buffer
	closed   bool
	closer   io.Closer
}

func (m *MockRowPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errors.New("row port closed")
	}
	return m.commands.Write(p)
}

func (m *MockRowPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.closer.Close()
}

// Commands returns everything written to the mock port.
func (m *MockRowPort) Commands() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commands.String()
}

// NewMockMux creates a Mux backed by a mock port that replays the given row
// lines on a cycle at the given interval. Used by dev mode to exercise the
// full pipeline from a fixtures file without hardware.
func NewMockMux(lines []string, interval time.Duration) *Mux[*MockRowPort] {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	r, w := io.Pipe()

	mockPort := &MockRowPort{
		Reader: r,
		closer: r,
	}

	go func() {
		defer w.Close()
		if len(lines) == 0 {
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		i := 0
		for range ticker.C {
			if _, err := w.Write([]byte(lines[i] + "\n")); err != nil {
				return
			}
			i = (i + 1) % len(lines)
		}
	}()

	return NewMux(mockPort)
}

// TestableRowPort implements RowPorter with configurable behaviour for
// testing. It provides fine-grained control over reads, writes, errors, and
// latency.
type TestableRowPort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures data written to the port
	WriteBuffer *bytes.Buffer

	// ReadLatency adds a delay to each Read call
	ReadLatency time.Duration

	// WriteLatency adds a delay to each Write call
	WriteLatency time.Duration

	// ReadError is returned by the next Read call if set
	ReadError error

	// WriteError is returned by the next Write call if set
	WriteError error

	// CloseError is returned by Close if set
	CloseError error

	// Closed indicates whether Close was called
	Closed bool

	// ReadCalls records the number of Read calls
	ReadCalls int

	// WriteCalls records the number of Write calls
	WriteCalls int

	// ReadTimeout is the current read timeout
	ReadTimeout time.Duration

	// BlockReads causes Read to block until data is added or Close is called
	BlockReads bool

	// readCond is used to signal blocked readers
	readCond *sync.Cond
}

// NewTestableRowPort creates a new TestableRowPort for testing.
func NewTestableRowPort() *TestableRowPort {
	trp := &TestableRowPort{
		ReadBuffer:  bytes.NewBuffer(nil),
		WriteBuffer: bytes.NewBuffer(nil),
	}
	trp.readCond = sync.NewCond(&trp.mu)
	return trp
}

// Read reads from the read buffer, optionally simulating latency and errors.
func (t *TestableRowPort) Read(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadCalls++

	if t.Closed {
		return 0, errors.New("row port closed")
	}

	if t.ReadError != nil {
		err := t.ReadError
		t.ReadError = nil
		return 0, err
	}

	if t.ReadLatency > 0 {
		t.mu.Unlock()
		time.Sleep(t.ReadLatency)
		t.mu.Lock()
	}

	// If blocking reads are enabled and buffer is empty, wait for data
	if t.BlockReads && t.ReadBuffer.Len() == 0 {
		for !t.Closed && t.ReadBuffer.Len() == 0 {
			t.readCond.Wait()
		}
		if t.Closed {
			return 0, errors.New("row port closed")
		}
	}

	return t.ReadBuffer.Read(p)
}

// Write writes to the write buffer, optionally simulating latency and errors.
func (t *TestableRowPort) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.WriteCalls++

	if t.Closed {
		return 0, errors.New("row port closed")
	}

	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}

	if t.WriteLatency > 0 {
		t.mu.Unlock()
		time.Sleep(t.WriteLatency)
		t.mu.Lock()
	}

	return t.WriteBuffer.Write(p)
}

// Close marks the port as closed.
func (t *TestableRowPort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Closed = true
	t.readCond.Broadcast() // Wake up any blocked readers

	return t.CloseError
}

// SetReadTimeout implements TimeoutRowPorter.
func (t *TestableRowPort) SetReadTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadTimeout = timeout
	return nil
}

// AddReadData adds data to be returned by subsequent Read calls.
func (t *TestableRowPort) AddReadData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadBuffer.Write(data)
	t.readCond.Signal() // Wake up a blocked reader
}

// GetWrittenData returns all data written to the port.
func (t *TestableRowPort) GetWrittenData() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.WriteBuffer.Bytes()
}

// Reset clears all buffers and resets state.
func (t *TestableRowPort) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadBuffer.Reset()
	t.WriteBuffer.Reset()
	t.ReadCalls = 0
	t.WriteCalls = 0
	t.Closed = false
	t.ReadError = nil
	t.WriteError = nil
	t.CloseError = nil
	t.ReadLatency = 0
	t.WriteLatency = 0
}

// MockPortFactory implements PortFactory for testing.
type MockPortFactory struct {
	mu sync.Mutex

	// Port is the port to return from Open
	Port RowPorter

	// Error is returned by Open if set
	Error error

	// OpenCalls records all Open calls
	OpenCalls []MockOpenCall
}

// MockOpenCall records details of an Open call.
type MockOpenCall struct {
	Path string
	Opts PortOptions
}

// NewMockPortFactory creates a new MockPortFactory.
func NewMockPortFactory(port RowPorter) *MockPortFactory {
	return &MockPortFactory{Port: port}
}

// Open returns the configured port or error.
func (f *MockPortFactory) Open(path string, opts PortOptions) (RowPorter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.OpenCalls = append(f.OpenCalls, MockOpenCall{
		Path: path,
		Opts: opts,
	})

	if f.Error != nil {
		return nil, f.Error
	}

	return f.Port, nil
}

// LastCall returns the most recent Open call, or nil if none.
func (f *MockPortFactory) LastCall() *MockOpenCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.OpenCalls) == 0 {
		return nil
	}
	return &f.OpenCalls[len(f.OpenCalls)-1]
}

// Reset clears all recorded calls.
func (f *MockPortFactory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.OpenCalls = nil
	f.Error = nil
}
