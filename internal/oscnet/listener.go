// Package oscnet receives OSC datagrams over UDP and converts them to rows.
// Phone and headband bridge apps send one OSC message per sensor packet with
// the device id and JSON payload as string arguments; the listener turns
// each message into a row and appends it to the frame loop's row buffer.
package oscnet

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/hypebeast/go-osc/osc"

	"sensorchop.dev/internal/logutil"
	"sensorchop.dev/internal/rowtable"
)

// RowSink receives rows as they arrive. Append reports whether the row was
// accepted; a full sink drops rows rather than blocking the receive loop.
type RowSink interface {
	Append(rowtable.Row) bool
}

// RowStatsInterface provides datagram statistics management.
type RowStatsInterface interface {
	AddDatagram(bytes int)
	AddRows(count int)
	AddMalformed()
	AddDropped()
	LogStats()
}

// noopStats is a RowStatsInterface implementation that does nothing. It is
// used as a safe default when no stats collector is provided.
type noopStats struct{}

func (n *noopStats) AddDatagram(bytes int) {}
func (n *noopStats) AddRows(count int)     {}
func (n *noopStats) AddMalformed()         {}
func (n *noopStats) AddDropped()           {}
func (n *noopStats) LogStats()             {}

// UDPListenerConfig contains configuration options for the UDP listener.
type UDPListenerConfig struct {
	Address     string
	RcvBuf      int
	LogInterval time.Duration
	Stats       RowStatsInterface
	Sink        RowSink
}

// UDPListener receives OSC datagrams and feeds decoded rows to a sink.
type UDPListener struct {
	address     string
	rcvBuf      int
	logInterval time.Duration
	conn        *net.UDPConn
	stats       RowStatsInterface
	sink        RowSink
}

// NewUDPListener creates a listener with the provided configuration.
func NewUDPListener(config UDPListenerConfig) *UDPListener {
	stats := config.Stats
	if stats == nil {
		stats = &noopStats{}
	}
	logInterval := config.LogInterval
	if logInterval == 0 {
		logInterval = time.Minute
	}
	return &UDPListener{
		address:     config.Address,
		rcvBuf:      config.RcvBuf,
		logInterval: logInterval,
		stats:       stats,
		sink:        config.Sink,
	}
}

// Start begins listening for datagrams and blocks until the context is
// cancelled or the socket fails.
func (l *UDPListener) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", l.address)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP address: %w", err)
	}
	l.conn = conn
	defer conn.Close()

	if l.rcvBuf > 0 {
		if err := conn.SetReadBuffer(l.rcvBuf); err != nil {
			logutil.Logf("Warning: failed to set UDP receive buffer size to %d: %v", l.rcvBuf, err)
		}
	}

	logutil.Logf("OSC listener started on %s", l.address)

	go l.startStatsLogging(ctx)

	// OSC sensor messages are small; 8k leaves headroom for large bundles.
	buffer := make([]byte, 8192)

	for {
		select {
		case <-ctx.Done():
			logutil.Logf("OSC listener stopping due to context cancellation")
			return ctx.Err()
		default:
			// Read deadline allows checking context cancellation.
			conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))

			n, _, err := conn.ReadFromUDP(buffer)
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					continue
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logutil.Logf("UDP read error: %v", err)
				continue
			}
			l.handleDatagram(buffer[:n])
		}
	}
}

// startStatsLogging periodically logs datagram statistics. An initial report
// fires shortly after startup so the first interval is not silent.
func (l *UDPListener) startStatsLogging(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
		l.stats.LogStats()
	}

	ticker := time.NewTicker(l.logInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.stats.LogStats()
		}
	}
}

// handleDatagram parses one datagram and appends its rows to the sink.
// Unparseable datagrams and messages without the expected arguments are
// counted and skipped, never fatal.
func (l *UDPListener) handleDatagram(datagram []byte) {
	l.stats.AddDatagram(len(datagram))

	packet, err := osc.ParsePacket(string(datagram))
	if err != nil {
		l.stats.AddMalformed()
		return
	}

	rows, malformed := RowsFromPacket(packet)
	for i := 0; i < malformed; i++ {
		l.stats.AddMalformed()
	}
	accepted := 0
	for _, row := range rows {
		if l.sink != nil && l.sink.Append(row) {
			accepted++
		} else {
			l.stats.AddDropped()
		}
	}
	l.stats.AddRows(accepted)
}

// Close closes the UDP listener and releases resources.
func (l *UDPListener) Close() error {
	if l.conn != nil {
		return l.conn.Close()
	}
	return nil
}

// RowsFromPacket converts an OSC packet to rows, descending into bundles in
// order. Returns the rows plus a count of messages missing the expected
// device and payload string arguments.
func RowsFromPacket(packet osc.Packet) ([]rowtable.Row, int) {
	var rows []rowtable.Row
	malformed := 0

	var walk func(p osc.Packet)
	walk = func(p osc.Packet) {
		switch v := p.(type) {
		case *osc.Message:
			if row, ok := rowFromMessage(v); ok {
				rows = append(rows, row)
			} else {
				malformed++
			}
		case *osc.Bundle:
			for _, msg := range v.Messages {
				walk(msg)
			}
			for _, bundle := range v.Bundles {
				walk(bundle)
			}
		}
	}
	walk(packet)

	return rows, malformed
}

// rowFromMessage builds a row from one OSC message. The first two string
// arguments are the device id and payload; messages with fewer string
// arguments are malformed.
func rowFromMessage(msg *osc.Message) (rowtable.Row, bool) {
	var args []string
	for _, arg := range msg.Arguments {
		if s, ok := arg.(string); ok {
			args = append(args, s)
			if len(args) == 2 {
				break
			}
		}
	}
	if len(args) < 2 {
		return nil, false
	}
	return rowtable.Row{"#osc", msg.Address, args[0], args[1]}, true
}
