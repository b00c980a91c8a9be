//go:build pcap
// +build pcap

package oscnet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/hypebeast/go-osc/osc"

	"sensorchop.dev/internal/logutil"
)

// ReadPCAPFile replays OSC rows from a PCAP capture into the sink. Only UDP
// packets on the given port are considered. This function is only available
// when building with the 'pcap' build tag.
func ReadPCAPFile(ctx context.Context, pcapFile string, udpPort int, sink RowSink, stats RowStatsInterface) error {
	if stats == nil {
		stats = &noopStats{}
	}

	handle, err := pcap.OpenOffline(pcapFile)
	if err != nil {
		return fmt.Errorf("failed to open PCAP file %s: %w", pcapFile, err)
	}
	defer handle.Close()

	filterStr := fmt.Sprintf("udp port %d", udpPort)
	if err := handle.SetBPFFilter(filterStr); err != nil {
		return fmt.Errorf("failed to set BPF filter %q: %w", filterStr, err)
	}
	logutil.Logf("PCAP BPF filter set: %s", filterStr)

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	packetCount := 0
	rowCount := 0
	startTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			logutil.Logf("PCAP reader stopping due to context cancellation (processed %d packets)", packetCount)
			return ctx.Err()
		case packet := <-packetSource.Packets():
			if packet == nil {
				elapsed := time.Since(startTime)
				logutil.Logf("PCAP file reading complete: %d packets, %d rows in %v", packetCount, rowCount, elapsed)
				return nil
			}

			packetCount++

			udpLayer := packet.Layer(layers.LayerTypeUDP)
			if udpLayer == nil {
				continue
			}
			udp, ok := udpLayer.(*layers.UDP)
			if !ok || len(udp.Payload) == 0 {
				continue
			}

			stats.AddDatagram(len(udp.Payload))

			oscPacket, err := osc.ParsePacket(string(udp.Payload))
			if err != nil {
				stats.AddMalformed()
				continue
			}

			rows, malformed := RowsFromPacket(oscPacket)
			for i := 0; i < malformed; i++ {
				stats.AddMalformed()
			}
			for _, row := range rows {
				if sink != nil && sink.Append(row) {
					rowCount++
				} else {
					stats.AddDropped()
				}
			}
			stats.AddRows(len(rows))
		}
	}
}
