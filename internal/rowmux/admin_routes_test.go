package rowmux

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

// localHostRequest creates an httptest request that appears to come from
// localhost, which satisfies tsweb's debug access check.
func localHostRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.RemoteAddr = "127.0.0.1:12345"
	return req
}

func formRequest(path string, form url.Values) *http.Request {
	req := localHostRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAdminSendCommandAPI(t *testing.T) {
	port := NewTestableRowPort()
	mux := NewMux(port)
	httpMux := http.NewServeMux()
	mux.AttachAdminRoutes(httpMux)

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid command",
			req:        formRequest("/debug/send-command-api", url.Values{"command": {"STREAM ON"}}),
			wantStatus: http.StatusOK,
			wantBody:   "STREAM ON",
		},
		{
			name:       "empty command",
			req:        formRequest("/debug/send-command-api", url.Values{"command": {"   "}}),
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing command",
		},
		{
			name:       "missing parameter",
			req:        formRequest("/debug/send-command-api", url.Values{}),
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing command",
		},
		{
			name:       "GET not allowed",
			req:        localHostRequest(http.MethodGet, "/debug/send-command-api", nil),
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   "Method not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			httpMux.ServeHTTP(w, tt.req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d. Body: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", w.Body.String(), tt.wantBody)
			}
		})
	}

	if got := string(port.GetWrittenData()); got != "STREAM ON\n" {
		t.Errorf("port received %q, want %q", got, "STREAM ON\n")
	}
}

func TestAdminInject(t *testing.T) {
	mux := NewMux(NewTestableRowPort())
	httpMux := http.NewServeMux()
	mux.AttachAdminRoutes(httpMux)

	_, ch := mux.Subscribe()
	received := make(chan string, 1)
	go func() {
		received <- <-ch
	}()
	time.Sleep(10 * time.Millisecond)

	w := httptest.NewRecorder()
	httpMux.ServeHTTP(w, formRequest("/debug/inject", url.Values{"line": {"#osc\ta\tdev\t1"}}))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. Body: %s", w.Code, w.Body.String())
	}

	select {
	case line := <-received:
		if line != "#osc\ta\tdev\t1" {
			t.Errorf("line = %q", line)
		}
	case <-time.After(time.Second):
		t.Fatal("injected line not delivered")
	}

	// Empty line is rejected.
	w = httptest.NewRecorder()
	httpMux.ServeHTTP(w, formRequest("/debug/inject", url.Values{"line": {"  "}}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAdminSendCommandPage(t *testing.T) {
	mux := NewMux(NewTestableRowPort())
	httpMux := http.NewServeMux()
	mux.AttachAdminRoutes(httpMux)

	w := httptest.NewRecorder()
	httpMux.ServeHTTP(w, localHostRequest(http.MethodGet, "/debug/send-command", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "command-form") {
		t.Error("page does not contain the command form")
	}
	if !strings.Contains(w.Body.String(), "tail.js") {
		t.Error("page does not load the tail script")
	}
}

func TestAdminTailJS(t *testing.T) {
	mux := NewMux(NewTestableRowPort())
	httpMux := http.NewServeMux()
	mux.AttachAdminRoutes(httpMux)

	w := httptest.NewRecorder()
	httpMux.ServeHTTP(w, localHostRequest(http.MethodGet, "/debug/tail.js", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/javascript" {
		t.Errorf("Content-Type = %q", got)
	}
	if !strings.Contains(w.Body.String(), "EventSource") {
		t.Error("tail.js does not create an EventSource")
	}
}
