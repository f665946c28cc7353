package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/section"
	"github.com/alexiusacademia/gobeam/internal/session"
	"github.com/alexiusacademia/gobeam/internal/storage"
)

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	dir := t.TempDir()
	opts := Options{
		ConfigPath: filepath.Join(dir, "beam_config.json"),
		Rate:       1000,
		Burst:      1000,
	}
	if withStore {
		store, err := storage.Open(filepath.Join(dir, "presets.db"))
		if err != nil {
			t.Fatalf("storage.Open() failed: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		opts.Store = store
	}
	return New(beam.Default(), opts)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s, "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetAnalysis(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s, "GET", "/api/analysis", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var res beam.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.R1 != 500 || res.R2 != 500 {
		t.Errorf("reactions = %g, %g, want 500, 500", res.R1, res.R2)
	}
	if len(res.Samples) != beam.DefaultSamples {
		t.Errorf("got %d samples, want %d", len(res.Samples), beam.DefaultSamples)
	}
	if res.Method != beam.ClosedForm {
		t.Errorf("Method = %s, want closed-form", res.Method)
	}
}

func TestAnalysisQueryParameters(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, "GET", "/api/analysis?method=integration&samples=101", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var res beam.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Method != beam.Integration || len(res.Samples) != 101 {
		t.Errorf("method = %s, samples = %d", res.Method, len(res.Samples))
	}

	for _, q := range []string{"method=guess", "samples=1", "samples=abc"} {
		if rec := do(t, s, "GET", "/api/analysis?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	s := newTestServer(t, false)

	rec := httptest.NewRecorder()
	s.writeJSON(rec, http.StatusOK, map[string]float64{"deflection": math.NaN()})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %q is not JSON: %v", rec.Body, err)
	}
	if body.Error == "" {
		t.Error("error body has no message")
	}

	rec = httptest.NewRecorder()
	s.writeJSON(rec, http.StatusCreated, map[string]float64{"deflection": 1.5})
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), "1.5") {
		t.Errorf("got %d %q", rec.Code, rec.Body)
	}
}

func TestPostAnalysisStatusMapping(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"length":8,"load_position":2,"load":500,"material":"wood","section":"circular"}`, http.StatusOK},
		{"position outside span", `{"length":8,"load_position":9,"load":500,"material":"wood","section":"circular"}`, http.StatusBadRequest},
		{"unknown material", `{"length":8,"load_position":2,"load":500,"material":"granite","section":"circular"}`, http.StatusBadRequest},
		{"unknown section", `{"length":8,"load_position":2,"load":500,"material":"wood","section":"star"}`, http.StatusBadRequest},
		{"malformed", `{"length":`, http.StatusBadRequest},
		{"unknown field", `{"span":8}`, http.StatusBadRequest},
		{"span out of range", `{"length":1e160,"load_position":5e159,"load":1000,"material":"steel","section":"rectangular"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, "POST", "/api/analysis", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}

	if got := s.Config(); got != beam.Default() {
		t.Errorf("POST /api/analysis changed the state: %+v", got)
	}
}

func TestPutConfig(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, "PUT", "/api/config", `{"length":6,"load_position":1.5,"load":800,"material":"Acero","section":"I"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	want := beam.Configuration{Length: 6, LoadPosition: 1.5, Load: 800, Material: "steel", Section: section.IBeam}
	if got := s.Config(); got != want {
		t.Errorf("Config() = %+v, want %+v", got, want)
	}

	rec = do(t, s, "PUT", "/api/config", `{"length":-1,"load_position":0,"load":800,"material":"steel","section":"rectangular"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid config: status = %d, want 400", rec.Code)
	}
	if got := s.Config(); got != want {
		t.Errorf("invalid PUT changed the state: %+v", got)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, "POST", "/api/config/load", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("load: status = %d: %s", rec.Code, rec.Body)
	}
	var loaded loadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &loaded); err != nil {
		t.Fatal(err)
	}
	if !loaded.Defaults {
		t.Error("expected defaults when the file does not exist")
	}

	do(t, s, "PUT", "/api/config", `{"length":12,"load_position":4,"load":300,"material":"aluminum","section":"circular"}`)
	if rec := do(t, s, "POST", "/api/config/save", ""); rec.Code != http.StatusOK {
		t.Fatalf("save: status = %d: %s", rec.Code, rec.Body)
	}
	do(t, s, "PUT", "/api/config", `{"length":10,"load_position":5,"load":1000,"material":"steel","section":"rectangular"}`)

	rec = do(t, s, "POST", "/api/config/load", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.Defaults || loaded.Config.Length != 12 || loaded.Config.Material != "aluminum" {
		t.Errorf("loaded = %+v", loaded)
	}
	if s.Config().Length != 12 {
		t.Errorf("state not replaced by loaded configuration")
	}
}

func TestEvents(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, "POST", "/api/events", `[{"type":"press_load"},{"type":"move","value":8.5},{"type":"release"}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var st session.State
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Config.LoadPosition != 8.5 || st.DraggingLoad {
		t.Errorf("state = %+v", st)
	}

	rec = do(t, s, "POST", "/api/events", `{"type":"select_section","text":"circle"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if s.Config().Section != section.Circular {
		t.Errorf("Section = %s, want circular", s.Config().Section)
	}

	if rec := do(t, s, "POST", "/api/events", `{"type":"teleport"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown event: status = %d, want 400", rec.Code)
	}
}

func TestCatalogs(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, "GET", "/api/sections", "")
	var sections []sectionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &sections); err != nil {
		t.Fatal(err)
	}
	if len(sections) != 3 || sections[0].Name != "rectangular" || !scalar.EqualWithinRel(sections[0].Inertia, 4.5e-4, 1e-12) {
		t.Errorf("sections = %+v", sections)
	}

	rec = do(t, s, "GET", "/api/materials", "")
	if !strings.Contains(rec.Body.String(), `"steel"`) {
		t.Errorf("materials = %s", rec.Body)
	}
}

func TestDocuments(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		path        string
		contentType string
		prefix      []byte
	}{
		{"/api/diagram.png", "image/png", []byte("\x89PNG")},
		{"/api/diagram.svg", "image/svg+xml", nil},
		{"/api/report.pdf", "application/pdf", []byte("%PDF")},
		{"/api/samples.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []byte("PK")},
	}
	for _, tt := range tests {
		rec := do(t, s, "GET", tt.path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", tt.path, rec.Code)
			continue
		}
		if got := rec.Header().Get("Content-Type"); got != tt.contentType {
			t.Errorf("%s: Content-Type = %q", tt.path, got)
		}
		if tt.prefix != nil && !bytes.HasPrefix(rec.Body.Bytes(), tt.prefix) {
			t.Errorf("%s: body does not start with %q", tt.path, tt.prefix)
		}
	}
}

func TestPresets(t *testing.T) {
	s := newTestServer(t, true)

	if rec := do(t, s, "PUT", "/api/presets/long", `{"length":18,"load_position":9,"load":5000,"material":"concrete","section":"i-beam"}`); rec.Code != http.StatusOK {
		t.Fatalf("put: status = %d: %s", rec.Code, rec.Body)
	}
	if rec := do(t, s, "PUT", "/api/presets/current", ""); rec.Code != http.StatusOK {
		t.Fatalf("put current: status = %d: %s", rec.Code, rec.Body)
	}

	rec := do(t, s, "GET", "/api/presets", "")
	var list []storage.Preset
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "current" || list[1].Name != "long" {
		t.Fatalf("presets = %+v", list)
	}

	if rec := do(t, s, "POST", "/api/presets/long/apply", ""); rec.Code != http.StatusOK {
		t.Fatalf("apply: status = %d: %s", rec.Code, rec.Body)
	}
	if got := s.Config(); got.Length != 18 || got.Section != section.IBeam {
		t.Errorf("apply did not replace the state: %+v", got)
	}

	if rec := do(t, s, "DELETE", "/api/presets/long", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", rec.Code)
	}
	if rec := do(t, s, "GET", "/api/presets/long", ""); rec.Code != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, "PUT", "/api/presets/bad", `{"length":0,"load_position":0,"load":1,"material":"steel","section":"circular"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("put invalid: status = %d, want 400", rec.Code)
	}

	rec = do(t, s, "PUT", "/api/presets/alias", `{"length":6,"load_position":2,"load":800,"material":"ACERO","section":"circular"}`)
	var p storage.Preset
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("put alias: %v: %s", err, rec.Body)
	}
	if p.Config.Material != "steel" {
		t.Errorf("put alias echoed material %q, want steel", p.Config.Material)
	}
	if rec := do(t, s, "POST", "/api/presets/alias/apply", ""); rec.Code != http.StatusOK {
		t.Fatalf("apply alias: status = %d: %s", rec.Code, rec.Body)
	}
	if got := s.Config().Material; got != "steel" {
		t.Errorf("applied material = %q, want steel", got)
	}
}

func TestPresetsDisabledWithoutStore(t *testing.T) {
	s := newTestServer(t, false)
	if rec := do(t, s, "GET", "/api/presets", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	s := New(beam.Default(), Options{Rate: 0.001, Burst: 2})

	for i := 0; i < 2; i++ {
		if rec := do(t, s, "GET", "/api/health", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	if rec := do(t, s, "GET", "/api/health", ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}

	req := httptest.NewRequest("GET", "/api/health", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}
}

func TestRateLimiterEvictsIdle(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	l.Idle = time.Minute
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	first := l.getLimiter("192.0.2.1")
	if !first.Allow() {
		t.Fatal("first request should pass")
	}
	for i := 2; i <= 5; i++ {
		l.getLimiter(fmt.Sprintf("192.0.2.%d", i))
	}
	if got := l.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}

	clock = clock.Add(30 * time.Second)
	if l.getLimiter("192.0.2.1") != first {
		t.Error("active client lost its bucket")
	}

	clock = clock.Add(45 * time.Second)
	l.getLimiter("203.0.113.9")
	if got := l.Len(); got != 2 {
		t.Errorf("Len() after idle sweep = %d, want 2", got)
	}
	if l.getLimiter("192.0.2.1") != first {
		t.Error("client seen within the idle window was evicted")
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	s := newTestServer(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, addr) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/api/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v", err)
		}
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}
