// Command bridge is the sensorchop daemon: it receives OSC rows from
// wearable and phone bridge apps over UDP (or a serial-attached row bridge,
// or a fixtures file in dev mode), decodes the JSON sensor payloads into
// flat channels, merges them into persistent per-device state, and rewrites
// the full channel frame on a fixed cadence for the API, monitor and
// optional downstream forwarder.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"sensorchop.dev/internal/api"
	"sensorchop.dev/internal/config"
	"sensorchop.dev/internal/decode"
	"sensorchop.dev/internal/forward"
	"sensorchop.dev/internal/frame"
	"sensorchop.dev/internal/httputil"
	"sensorchop.dev/internal/monitor"
	"sensorchop.dev/internal/oscnet"
	"sensorchop.dev/internal/rowmux"
	"sensorchop.dev/internal/rowtable"
	"sensorchop.dev/internal/state"
	"sensorchop.dev/internal/timeutil"
	"sensorchop.dev/internal/version"
)

var (
	configPath    = flag.String("config", "", "Path to JSON config file")
	devMode       = flag.Bool("dev", false, "Run in dev mode (replay fixtures instead of opening sources)")
	fixtures      = flag.String("fixtures", "fixtures.txt", "Fixtures file of row lines for dev mode")
	listen        = flag.String("listen", "", "HTTP listen address (overrides config)")
	oscListen     = flag.String("osc-listen", "", "UDP listen address for OSC rows (overrides config)")
	disableOSC    = flag.Bool("disable-osc", false, "Disable the UDP OSC row source")
	serialPort    = flag.String("serial-port", "", "Serial port of the row bridge (overrides config)")
	disableSerial = flag.Bool("disable-serial", false, "Disable the serial row bridge")
	fps           = flag.Float64("fps", 0, "Output frame rate (overrides config)")
	forwardURL    = flag.String("forward", "", "Downstream URL to POST frames to (overrides config)")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		log.Printf("sensorchop bridge %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	cfg := config.EmptyBridgeConfig()
	if *configPath != "" {
		loaded, err := config.LoadBridgeConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	listenAddr := firstNonEmpty(*listen, cfg.GetListen())
	oscAddr := firstNonEmpty(*oscListen, cfg.GetOSCListen())
	serialPath := firstNonEmpty(*serialPort, cfg.GetSerialPort())
	frameRate := cfg.GetFPS()
	if *fps > 0 {
		frameRate = *fps
	}
	frameInterval := time.Duration(float64(time.Second) / frameRate)
	downstream := firstNonEmpty(*forwardURL, cfg.GetForwardURL())

	// Pipeline objects. State is created once here and owned by the frame
	// loop for the life of the process; only /api/state/reset clears it.
	buffer := rowtable.NewRowBuffer(cfg.GetBufferLimit())
	deviceState := state.New()
	decodeStats := decode.NewStats()
	output := frame.NewMapOutput()
	cooker := frame.NewCooker(deviceState, decodeStats)

	history := monitor.NewChannelHistory(cfg.GetHistorySize())
	output.Observe(history.ObserveFrame)

	if downstream != "" {
		client := httputil.NewStandardClient(&http.Client{Timeout: cfg.GetForwardTimeout()})
		forwarder := forward.New(client, downstream)
		output.Observe(forwarder.Push)
		log.Printf("forwarding frames to %s", downstream)
	}

	// Row bridge: real serial port, fixtures replay in dev mode, or the
	// no-op mux when disabled.
	var bridgeMux rowmux.MuxInterface
	switch {
	case *devMode:
		data, err := os.ReadFile(*fixtures)
		if err != nil {
			log.Fatalf("failed to open fixtures file: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		bridgeMux = rowmux.NewMockMux(lines, frameInterval/4)
		log.Printf("dev mode: replaying %d fixture lines from %s", len(lines), *fixtures)
	case *disableSerial || serialPath == "":
		bridgeMux = rowmux.NewDisabledMux()
	default:
		opts := rowmux.PortOptions{
			BaudRate: cfg.GetSerialBaudRate(),
			DataBits: cfg.GetSerialDataBits(),
			StopBits: cfg.GetSerialStopBits(),
			Parity:   cfg.GetSerialParity(),
		}
		realMux, err := rowmux.NewRealMux(serialPath, opts)
		if err != nil {
			log.Fatalf("failed to open row bridge port: %v", err)
		}
		bridgeMux = realMux
		if err := bridgeMux.Initialize(); err != nil {
			log.Fatalf("failed to initialize row bridge: %v", err)
		}
		log.Printf("row bridge attached on %s", serialPath)
	}
	defer bridgeMux.Close()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the monitor routine to manage IO on the bridge port
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bridgeMux.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("failed to monitor row bridge: %v", err)
		}
		log.Print("bridge monitor routine terminated")
	}()

	// subscribe to bridge lines and feed row lines into the buffer
	wg.Add(1)
	go func() {
		defer wg.Done()
		id, c := bridgeMux.Subscribe()
		defer bridgeMux.Unsubscribe(id)
		for {
			select {
			case line, ok := <-c:
				if !ok {
					return
				}
				if rowmux.ClassifyLine(line) != rowmux.LineTypeRow {
					continue
				}
				buffer.Append(rowtable.ParseLine(line))
			case <-ctx.Done():
				log.Print("bridge subscribe routine terminated")
				return
			}
		}
	}()

	// UDP OSC row source
	if !*disableOSC && !*devMode {
		listener := oscnet.NewUDPListener(oscnet.UDPListenerConfig{
			Address:     oscAddr,
			RcvBuf:      cfg.GetOSCRcvBuf(),
			LogInterval: cfg.GetLogInterval(),
			Stats:       oscnet.NewRowStats(),
			Sink:        buffer,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := listener.Start(ctx); err != nil && err != context.Canceled {
				log.Printf("OSC listener failed: %v", err)
			}
		}()
	}

	// frame loop
	wg.Add(1)
	go func() {
		defer wg.Done()
		cooker.Loop(ctx, timeutil.RealClock{}, frameInterval, buffer, output)
	}()

	// periodic decode stats summary
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.GetLogInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				decodeStats.LogStats()
			}
		}
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := api.NewServer(deviceState, decodeStats, output, buffer).ServeMux()
		monitor.NewMonitor(history).AttachRoutes(mux)
		bridgeMux.AttachAdminRoutes(mux)

		server := &http.Server{
			Addr:    listenAddr,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			log.Printf("HTTP server listening on %s", listenAddr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
