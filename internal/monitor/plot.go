package monitor

import (
	"fmt"
	"net/http"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"sensorchop.dev/internal/httputil"
	"sensorchop.dev/internal/security"
)

// handlePlotPNG renders one channel's recent history as a PNG snapshot.
// Query params:
//   - channel (required)
func (m *Monitor) handlePlotPNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	channel := r.URL.Query().Get("channel")
	if channel == "" {
		httputil.BadRequest(w, "missing channel parameter")
		return
	}

	values := m.history.Values(channel)
	if len(values) == 0 {
		httputil.NotFound(w, fmt.Sprintf("no history for channel %q", channel))
		return
	}

	p := plot.New()
	p.Title.Text = channel
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "value"

	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to build plot: %v", err))
		return
	}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Add(plotter.NewGrid())

	writer, err := p.WriterTo(10*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render plot: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=%s.png", security.SanitizeFilename(channel)))
	if _, err := writer.WriteTo(w); err != nil {
		// Headers already sent; nothing useful left to report to the client.
		return
	}
}
