package rowmux

import (
	"io"
	"time"
)

// RowPorter defines the minimal interface needed for a bridge port.
// This abstraction enables unit testing without real serial hardware.
type RowPorter interface {
	io.ReadWriter
	io.Closer
}

// PortFactory defines an interface for creating bridge ports.
// This abstraction enables dependency injection of port creation.
type PortFactory interface {
	// Open opens a bridge port at the specified path with the given options.
	Open(path string, opts PortOptions) (RowPorter, error)
}

// PortOpener is a function type for opening bridge ports.
// This allows for easier testing by replacing the opener function.
type PortOpener func(path string, opts PortOptions) (RowPorter, error)

// TimeoutRowPorter extends RowPorter with timeout capabilities.
// This is an optional interface that ports may implement.
type TimeoutRowPorter interface {
	RowPorter
	// SetReadTimeout sets the read timeout for the port.
	SetReadTimeout(timeout time.Duration) error
}
