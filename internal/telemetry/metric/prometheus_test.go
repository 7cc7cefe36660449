package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func expectLines(t *testing.T, body string, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if !strings.Contains(body, line) {
			t.Errorf("expected %s", line)
		}
	}
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("registry field is nil")
	}
	if r.ConnectionsActive == nil || r.CommandsTotal == nil || r.CommandDuration == nil {
		t.Error("metrics not initialized")
	}
	if r.Registerer() == nil {
		t.Error("Registerer() returned nil")
	}
}

func TestGlobal(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() should return the same instance")
	}
}

func TestHandler_RuntimeMetrics(t *testing.T) {
	body := scrape(t, Handler())
	expectLines(t, body, "go_goroutines", "process_")
}

func TestConnectionMetrics(t *testing.T) {
	r := NewRegistry()

	r.ConnectionOpened()
	r.ConnectionOpened()
	r.ConnectionClosed()
	r.RecordRejected("max_connections")

	expectLines(t, scrape(t, r.Handler()),
		"respkv_connections_active 1",
		"respkv_connections_total 2",
		`respkv_connections_rejected_total{reason="max_connections"} 1`,
	)
}

func TestProtocolMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordFrameIn()
	r.RecordFrameIn()
	r.RecordFrameOut()
	r.IncProtocolError()

	expectLines(t, scrape(t, r.Handler()),
		`respkv_frames_total{direction="in"} 2`,
		`respkv_frames_total{direction="out"} 1`,
		"respkv_protocol_errors_total 1",
	)
}

func TestCommandMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordCommand("get", ResultOK, 0.0001)
	r.RecordCommand("get", ResultNil, 0.0002)
	r.RecordCommand("get", ResultOK, 0.0001)
	r.RecordCommand("set", ResultError, 0.00001)

	expectLines(t, scrape(t, r.Handler()),
		`respkv_commands_total{command="get",result="ok"} 2`,
		`respkv_commands_total{command="get",result="nil"} 1`,
		`respkv_commands_total{command="set",result="error"} 1`,
		`respkv_command_duration_seconds_count{command="get"} 3`,
		"respkv_command_duration_seconds_bucket",
	)
}

func TestCollector(t *testing.T) {
	r := NewRegistry()
	n := 3
	if err := r.Registerer().Register(NewCollector("memory", func() int { return n })); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	expectLines(t, scrape(t, r.Handler()), `respkv_store_keys{engine="memory"} 3`)

	n = 5
	expectLines(t, scrape(t, r.Handler()), `respkv_store_keys{engine="memory"} 5`)
}

func TestNewServer(t *testing.T) {
	r := NewRegistry()
	r.ConnectionOpened()
	srv := NewServer("127.0.0.1:0", r)

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	expectLines(t, string(body), "respkv_connections_total 1")

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.ConnectionOpened()
				r.RecordFrameIn()
				r.RecordCommand("get", ResultOK, 0.001)
				r.ConnectionClosed()
			}
		}()
	}
	wg.Wait()

	expectLines(t, scrape(t, r.Handler()),
		"respkv_connections_active 0",
		`respkv_commands_total{command="get",result="ok"} 1000`,
	)
}
