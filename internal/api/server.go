package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"sensorchop.dev/internal/decode"
	"sensorchop.dev/internal/frame"
	"sensorchop.dev/internal/httputil"
	"sensorchop.dev/internal/rowtable"
	"sensorchop.dev/internal/state"
	"sensorchop.dev/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server exposes the bridge's channel state over HTTP. It reads the same
// state and output objects the frame loop writes; it never mutates state
// except through the explicit reset endpoint.
type Server struct {
	state  *state.DeviceState
	stats  *decode.Stats
	output *frame.MapOutput
	buffer *rowtable.RowBuffer
}

// NewServer creates an API server over the given pipeline objects.
func NewServer(st *state.DeviceState, stats *decode.Stats, output *frame.MapOutput, buffer *rowtable.RowBuffer) *Server {
	return &Server{
		state:  st,
		stats:  stats,
		output: output,
		buffer: buffer,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/channels", s.showChannels)
	mux.HandleFunc("/api/devices", s.showDevices)
	mux.HandleFunc("/api/stats", s.showStats)
	mux.HandleFunc("/api/state/reset", s.resetState)
	mux.HandleFunc("/api/decode", s.decodeRow)
	mux.HandleFunc("/api/version", s.showVersion)
	return mux
}

func (s *Server) showChannels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	samples := s.output.Snapshot()
	httputil.WriteJSONOK(w, map[string]interface{}{
		"frame":    s.output.Frames(),
		"channels": samples,
	})
}

func (s *Server) showDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.state.Devices())
}

func (s *Server) showStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	resp := map[string]interface{}{
		"decode": s.stats.Snapshot(),
		"frames": s.output.Frames(),
	}
	if s.buffer != nil {
		resp["buffer"] = map[string]interface{}{
			"pending": s.buffer.Len(),
			"dropped": s.buffer.Dropped(),
		}
	}
	httputil.WriteJSONOK(w, resp)
}

func (s *Server) resetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	devices := s.state.Len()
	s.state.Reset()
	log.Printf("device state reset (%d devices cleared)", devices)
	httputil.WriteJSONOK(w, map[string]interface{}{"cleared_devices": devices})
}

// decodeRequest is the POST body for /api/decode: either a device/payload
// pair or a raw tab-separated row line.
type decodeRequest struct {
	Device  string `json:"device,omitempty"`
	Payload string `json:"payload,omitempty"`
	Line    string `json:"line,omitempty"`
}

// decodeResponse shapes a decode.Result for JSON.
type decodeResponse struct {
	Device         string             `json:"device"`
	Kind           string             `json:"kind"`
	Outcome        string             `json:"outcome"`
	Channels       *decode.ChannelMap `json:"channels"`
	TruncatedNodes int                `json:"truncated_nodes,omitempty"`
	SkippedSamples int                `json:"skipped_samples,omitempty"`
}

// decodeRow decodes a single row without touching device state. Intended as
// a bench and debugging aid: POST a payload, see exactly which channels it
// would produce.
func (s *Server) decodeRow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req decodeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}

	var result decode.Result
	switch {
	case req.Line != "":
		result = decode.DecodeRow(rowtable.ParseLine(req.Line))
	case req.Payload != "":
		device := rowtable.NormalizeDeviceID(req.Device)
		if device == "" {
			httputil.BadRequest(w, "missing or empty device")
			return
		}
		result = decode.DecodePayload(device, req.Payload)
	default:
		httputil.BadRequest(w, "body must carry either line or device+payload")
		return
	}

	httputil.WriteJSONOK(w, decodeResponse{
		Device:         result.Device,
		Kind:           result.Kind.String(),
		Outcome:        result.Outcome.String(),
		Channels:       result.Channels,
		TruncatedNodes: result.TruncatedNodes,
		SkippedSamples: result.SkippedSamples,
	})
}

func (s *Server) showVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}
