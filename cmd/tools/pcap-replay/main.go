// Command pcap-replay reads a PCAP capture of OSC traffic, extracts the
// sensor rows, and either re-emits them as fixture lines for dev-mode replay
// or runs them through the decode pipeline and prints per-device channel
// summaries. Requires building with -tags=pcap.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"sensorchop.dev/internal/decode"
	"sensorchop.dev/internal/frame"
	"sensorchop.dev/internal/oscnet"
	"sensorchop.dev/internal/rowtable"
	"sensorchop.dev/internal/state"
)

var (
	file = flag.String("file", "", "PCAP file to read")
	port = flag.Int("port", 9000, "UDP port carrying OSC traffic")
	emit = flag.Bool("emit", false, "Emit fixture row lines to stdout instead of a summary")
)

// collector buffers every replayed row in arrival order.
type collector struct {
	rows []rowtable.Row
}

func (c *collector) Append(row rowtable.Row) bool {
	c.rows = append(c.rows, row)
	return true
}

func main() {
	flag.Parse()

	if *file == "" {
		log.Fatal("missing -file")
	}

	sink := &collector{}
	stats := oscnet.NewRowStats()
	if err := oscnet.ReadPCAPFile(context.Background(), *file, *port, sink, stats); err != nil {
		log.Fatalf("failed to read PCAP: %v", err)
	}
	stats.LogStats()

	if *emit {
		for _, row := range sink.rows {
			fmt.Fprintln(os.Stdout, strings.Join(row, "\t"))
		}
		return
	}

	// Run the full capture through the pipeline as one frame and summarise.
	deviceState := state.New()
	decodeStats := decode.NewStats()
	output := frame.NewMapOutput()
	frame.NewCooker(deviceState, decodeStats).Cook(sink.rows, output)

	snapshot := decodeStats.Snapshot()
	fmt.Printf("rows: %d  channels produced: %d\n", snapshot.Rows, snapshot.Channels)
	for outcome, count := range snapshot.Outcomes {
		fmt.Printf("  %s: %d\n", outcome, count)
	}

	for _, device := range deviceState.Devices() {
		fmt.Printf("device %s (%d channels):\n", device.ID, device.Channels)
		for _, suffix := range device.Suffixes {
			fmt.Printf("  %s\n", suffix)
		}
	}
}
