package monitor

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sensorchop.dev/internal/testutil"
)

func newTestMonitor(t *testing.T) (*Monitor, *http.ServeMux) {
	t.Helper()
	h := NewChannelHistory(16)
	for i := 0; i < 4; i++ {
		h.ObserveFrame(frame("muse_eeg_tp9", float64(i), "polar_bpm", 60.0+float64(i)))
	}
	m := NewMonitor(h)
	mux := http.NewServeMux()
	m.AttachRoutes(mux)
	return m, mux
}

func TestHandleSummary(t *testing.T) {
	_, mux := newTestMonitor(t)

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/monitor/summary"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var summaries []ChannelSummary
	testutil.AssertNoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}
	if summaries[0].Name != "muse_eeg_tp9" || summaries[0].Count != 4 {
		t.Errorf("first summary = %+v", summaries[0])
	}

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodPost, "/monitor/summary"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestHandleCharts(t *testing.T) {
	_, mux := newTestMonitor(t)

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/monitor/charts"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "muse_eeg_tp9") || !strings.Contains(body, "polar_bpm") {
		t.Error("chart page missing channel series")
	}
}

func TestHandleChartsChannelFilter(t *testing.T) {
	_, mux := newTestMonitor(t)

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet,
		"/monitor/charts?channels="+url.QueryEscape("polar_bpm, nosuch")))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	body := rec.Body.String()
	if !strings.Contains(body, "polar_bpm") {
		t.Error("selected channel missing from chart")
	}
	if strings.Contains(body, "muse_eeg_tp9") {
		t.Error("unselected channel present in chart")
	}
}

func TestHandleChartsEmptyHistory(t *testing.T) {
	m := NewMonitor(NewChannelHistory(8))
	mux := http.NewServeMux()
	m.AttachRoutes(mux)

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/monitor/charts"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestSelectChannelsCapsAtLimit(t *testing.T) {
	h := NewChannelHistory(4)
	for i := 0; i < maxChartChannels+5; i++ {
		h.ObserveFrame(frame("ch_"+string(rune('a'+i)), 1.0))
	}
	m := NewMonitor(h)

	req := testutil.NewTestRequest(http.MethodGet, "/monitor/charts")
	selected := m.selectChannels(req)
	if len(selected) != maxChartChannels {
		t.Errorf("selected = %d channels, want %d", len(selected), maxChartChannels)
	}
	if diff := cmp.Diff(h.Channels()[:maxChartChannels], selected); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlePlotPNG(t *testing.T) {
	_, mux := newTestMonitor(t)

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/monitor/plot.png?channel=polar_bpm"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	// PNG magic bytes.
	if body := rec.Body.Bytes(); len(body) < 8 || string(body[1:4]) != "PNG" {
		t.Error("response is not a PNG image")
	}
}

func TestHandlePlotPNGErrors(t *testing.T) {
	m := NewMonitor(NewChannelHistory(8))
	mux := http.NewServeMux()
	m.AttachRoutes(mux)

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/monitor/plot.png"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)

	rec = testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/monitor/plot.png?channel=nosuch"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}
