package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"media-resizer/internal/metrics"
	"media-resizer/internal/resizer"
	"media-resizer/internal/startup"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func serve(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	s := New("127.0.0.1:0")

	rr := serve(t, s, http.MethodGet, "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" || resp.Version != startup.Version {
		t.Errorf("response = %+v", resp)
	}
	if resp.Running {
		t.Error("Running = true before any run")
	}
}

func TestProgressLifecycle(t *testing.T) {
	s := New("127.0.0.1:0")

	s.RunStarted("/photos")
	s.UpdateProgress(resizer.Progress{FilesDone: 1, FilesTotal: 4, OriginalBytes: 4 << 20, NewBytes: 1 << 20})

	var state RunState
	rr := serve(t, s, http.MethodGet, "/progress")
	if err := json.NewDecoder(rr.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !state.Running || state.Folder != "/photos" || state.StartedAt == nil {
		t.Errorf("state = %+v", state)
	}
	if state.Fraction != 0.25 {
		t.Errorf("Fraction = %v, want 0.25", state.Fraction)
	}
	if state.SavedMB != 3 {
		t.Errorf("SavedMB = %v, want 3", state.SavedMB)
	}

	s.RunFinished()
	state = s.State()
	if state.Running || state.FinishedAt == nil {
		t.Errorf("after RunFinished state = %+v", state)
	}
	if state.Progress.FilesDone != 1 {
		t.Error("progress should survive RunFinished")
	}

	s.RunStarted("/other")
	if got := s.State(); got.Progress.FilesDone != 0 || got.FinishedAt != nil {
		t.Errorf("RunStarted did not reset state: %+v", got)
	}
}

func TestVersion(t *testing.T) {
	s := New("127.0.0.1:0")

	var info startup.BuildInfo
	rr := serve(t, s, http.MethodGet, "/version")
	if err := json.NewDecoder(rr.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info != startup.GetBuildInfo() {
		t.Errorf("version = %+v, want %+v", info, startup.GetBuildInfo())
	}
}

func TestMetricsRoute(t *testing.T) {
	s := New("127.0.0.1:0")
	metrics.InitializeMetrics()

	rr := serve(t, s, http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "media_resizer_runs_total") {
		t.Error("metrics output missing media_resizer_runs_total")
	}
}

func TestRoutingErrors(t *testing.T) {
	s := New("127.0.0.1:0")

	if rr := serve(t, s, http.MethodGet, "/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rr.Code)
	}
	if rr := serve(t, s, http.MethodPost, "/progress"); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /progress status = %d, want 405", rr.Code)
	}
}

func TestInstrumentCountsRoutes(t *testing.T) {
	s := New("127.0.0.1:0")
	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/version", "200")
	before := testutil.ToFloat64(counter)

	serve(t, s, http.MethodGet, "/version")
	serve(t, s, http.MethodGet, "/version")

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("request counter delta = %v, want 2", got)
	}
}

func TestStartAndShutdown(t *testing.T) {
	s := New("127.0.0.1:0")
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	addr := s.Addr()
	if strings.HasSuffix(addr, ":0") {
		t.Fatalf("Addr() = %q, want bound port", addr)
	}

	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/progress", "/progress"},
		{"a\nb\rc", "a b c"},
		{"\x1b[31mred", "[31mred"},
		{"nul\x00byte", "nulbyte"},
		{"tab\tkept", "tab\tkept"},
	}
	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.5:51234"
	if got := clientIP(req); got != "10.0.0.5" {
		t.Errorf("clientIP() = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Errorf("clientIP() with XFF = %q", got)
	}
}
