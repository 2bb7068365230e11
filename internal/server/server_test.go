package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/enesgrahovac/book-quest/internal/config"
	"github.com/enesgrahovac/book-quest/internal/coursestore"
	"github.com/enesgrahovac/book-quest/internal/home"
	"github.com/enesgrahovac/book-quest/internal/llmcall"
	"github.com/enesgrahovac/book-quest/internal/prompts"
	"github.com/enesgrahovac/book-quest/internal/prompts/catalog"
	"github.com/enesgrahovac/book-quest/internal/providers"
	"github.com/enesgrahovac/book-quest/internal/server/endpoints"
	"github.com/enesgrahovac/book-quest/internal/structured"
	"github.com/enesgrahovac/book-quest/internal/svcctx"
	"github.com/enesgrahovac/book-quest/internal/testutil"
)

// testEnv is a server backed by a temporary home directory.
type testEnv struct {
	svc *svcctx.Services
	url string
}

func newTestEnv(t *testing.T, gen structured.Client) *testEnv {
	t.Helper()
	logger := testutil.Logger(t)

	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	if err := config.WriteDefault(h.ConfigPath()); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	cm, err := config.NewManager(h.ConfigPath())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	resolver := prompts.NewResolver(prompts.NewStore(h.PromptsPath(), logger), logger)
	catalog.RegisterAll(resolver)

	svc := &svcctx.Services{
		Registry:        providers.NewRegistry(),
		ConfigManager:   cm,
		Logger:          logger,
		Home:            h,
		LLMCallStore:    llmcall.NewStore(h.LLMCallsPath(), logger),
		Prompts:         resolver,
		Generator:       gen,
		Courses:         coursestore.New(h.CoursesPath(), logger),
		DefaultProvider: func() string { return "openrouter" },
	}
	WireAnalysis(svc, cm.Get().Analysis)

	srv, err := New(Config{Services: svc, Logger: logger})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{svc: svc, url: ts.URL}
}

// do sends a request with an optional JSON body and decodes a JSON response
// into out when out is non-nil. It returns the status code.
func (e *testEnv) do(t *testing.T, method, path string, body, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.url+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t, &testutil.FakeGenerator{Unavailable: true})

	var health endpoints.HealthResponse
	if code := env.do(t, "GET", "/health", nil, &health); code != http.StatusOK {
		t.Fatalf("health status = %d", code)
	}
	if health.Status != "ok" {
		t.Errorf("health.Status = %q", health.Status)
	}

	var status endpoints.StatusResponse
	if code := env.do(t, "GET", "/status", nil, &status); code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if status.Server != "running" {
		t.Errorf("Server = %q", status.Server)
	}
	if status.Providers.Available {
		t.Error("expected generation to be unavailable")
	}
	if status.Providers.Default != "openrouter" {
		t.Errorf("Default = %q", status.Providers.Default)
	}
	if status.Home != env.svc.Home.Path() {
		t.Errorf("Home = %q", status.Home)
	}
}

func TestServer_RequireInit(t *testing.T) {
	srv, err := New(Config{Logger: testutil.Logger(t)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/prompts")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("prompts status = %d, want 503", resp.StatusCode)
	}
}

func TestServer_InvalidPort(t *testing.T) {
	if _, err := New(Config{Port: "not-a-port"}); err == nil {
		t.Error("expected error for invalid port")
	}
}

func TestServer_Lifecycle(t *testing.T) {
	port, err := testutil.FindFreePort()
	if err != nil {
		t.Fatalf("FindFreePort() error = %v", err)
	}
	srv, err := New(Config{Host: "127.0.0.1", Port: port, Logger: testutil.Logger(t)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if srv.Addr() != "127.0.0.1:"+port {
		t.Errorf("Addr() = %q", srv.Addr())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	if err := testutil.WaitForServer("http://"+srv.Addr(), 10*time.Second); err != nil {
		t.Fatalf("server did not start: %v", err)
	}
	if !srv.IsRunning() {
		t.Error("IsRunning() = false while serving")
	}
	if err := srv.Start(ctx); err == nil {
		t.Error("expected error starting a running server")
	}

	cancel()
	if err := testutil.WaitForShutdown(done, 10*time.Second); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestNewServices(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	h, err := home.New(filepath.Join(t.TempDir(), "home"))
	if err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.WriteDefault(cfgPath); err != nil {
		t.Fatal(err)
	}
	cm, err := config.NewManager(cfgPath)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	svc, err := NewServices(ServicesConfig{Home: h, ConfigManager: cm, Logger: testutil.Logger(t)})
	if err != nil {
		t.Fatalf("NewServices() error = %v", err)
	}
	defer svc.Close()

	if !h.Exists() {
		t.Error("expected home directory to be created")
	}
	if svc.Pipeline == nil || svc.Planner == nil || svc.Reconciler == nil || svc.Courses == nil {
		t.Errorf("services not wired: %+v", svc.Services)
	}
	if svc.Generator.Available() {
		t.Error("expected generation to be unavailable without API keys")
	}
	if len(svc.Prompts.List()) == 0 {
		t.Error("expected registered prompts")
	}
	if got := svc.DefaultProvider(); got != "openrouter" {
		t.Errorf("DefaultProvider() = %q", got)
	}

	if _, err := NewServices(ServicesConfig{ConfigManager: cm}); err == nil {
		t.Error("expected error without home")
	}
	if _, err := NewServices(ServicesConfig{Home: h}); err == nil {
		t.Error("expected error without config manager")
	}
}
