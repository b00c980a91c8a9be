package monitor

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"sensorchop.dev/internal/httputil"
)

// maxChartChannels caps how many channels one chart page renders; the live
// page becomes unreadable well before the payload becomes a problem.
const maxChartChannels = 12

// Monitor serves chart and summary endpoints over a ChannelHistory.
type Monitor struct {
	history *ChannelHistory
}

// NewMonitor creates a Monitor over the given history.
func NewMonitor(history *ChannelHistory) *Monitor {
	return &Monitor{history: history}
}

// History returns the underlying channel history.
func (m *Monitor) History() *ChannelHistory {
	return m.history
}

// AttachRoutes mounts the monitor endpoints on the given mux.
func (m *Monitor) AttachRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/monitor/summary", m.handleSummary)
	mux.HandleFunc("/monitor/charts", m.handleCharts)
	mux.HandleFunc("/monitor/plot.png", m.handlePlotPNG)
}

// handleSummary returns per-channel summary statistics as JSON.
func (m *Monitor) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, m.history.Summaries())
}

// selectChannels resolves the channels query parameter (comma separated)
// against the known channels, defaulting to the first maxChartChannels.
func (m *Monitor) selectChannels(r *http.Request) []string {
	known := m.history.Channels()
	param := r.URL.Query().Get("channels")
	if param == "" {
		if len(known) > maxChartChannels {
			return known[:maxChartChannels]
		}
		return known
	}

	knownSet := make(map[string]bool, len(known))
	for _, name := range known {
		knownSet[name] = true
	}
	var selected []string
	for _, name := range strings.Split(param, ",") {
		name = strings.TrimSpace(name)
		if knownSet[name] && len(selected) < maxChartChannels {
			selected = append(selected, name)
		}
	}
	return selected
}

// handleCharts renders a live line chart page (HTML) of selected channels
// using go-echarts. This is a debugging endpoint (no auth) to eyeball
// channel behaviour without a downstream visual host attached.
// Query params:
//   - channels (optional; comma separated, defaults to the first few)
func (m *Monitor) handleCharts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	selected := m.selectChannels(r)
	if len(selected) == 0 {
		httputil.NotFound(w, "no channels recorded yet")
		return
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Channel History", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Channel History", Subtitle: fmt.Sprintf("channels=%d", len(selected))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value"}),
	)

	longest := 0
	series := make(map[string][]float64, len(selected))
	for _, name := range selected {
		values := m.history.Values(name)
		series[name] = values
		if len(values) > longest {
			longest = len(values)
		}
	}

	xAxis := make([]string, longest)
	for i := range xAxis {
		xAxis[i] = strconv.Itoa(i)
	}
	line.SetXAxis(xAxis)

	for _, name := range selected {
		values := series[name]
		data := make([]opts.LineData, 0, longest)
		// Right-align shorter rings so recent values line up across channels.
		for i := 0; i < longest-len(values); i++ {
			data = append(data, opts.LineData{Value: nil})
		}
		for _, v := range values {
			data = append(data, opts.LineData{Value: v})
		}
		line.AddSeries(name, data)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(w); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
	}
}
