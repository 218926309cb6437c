package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eleven-am/transcribe-relay/internal/provider"
	"github.com/eleven-am/transcribe-relay/internal/relay"
)

func setupTestDeps(t *testing.T) (*gorm.DB, *redis.Client, *miniredis.Miniredis) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return db, client, mr
}

func allCredentials() provider.Credentials {
	return provider.Credentials{
		DeepgramAPIKey:   "dg",
		AssemblyAIAPIKey: "aai",
		SonioxAPIKey:     "sx",
	}
}

func readiness(t *testing.T, h *Handler) (int, HealthResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := h.Readiness(c); err != nil {
		t.Fatalf("Readiness() error = %v", err)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, resp
}

func TestLiveness(t *testing.T) {
	h := NewHandler(nil, nil, nil, provider.Credentials{}, "test")
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := h.Liveness(c); err != nil {
		t.Fatalf("Liveness() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_Healthy(t *testing.T) {
	db, client, _ := setupTestDeps(t)
	h := NewHandler(db, client, relay.NewRegistry(), allCredentials(), "1.2.3")
	h.IncrementRequests()

	code, resp := readiness(t, h)
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if resp.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s (%+v)", resp.Status, resp.Components)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("unexpected version %q", resp.Version)
	}
	if len(resp.Providers) != 3 {
		t.Errorf("expected 3 providers, got %v", resp.Providers)
	}
	if resp.Stats.Requests.TotalRequests != 1 {
		t.Errorf("expected 1 request, got %d", resp.Stats.Requests.TotalRequests)
	}
}

func TestReadiness_RedisDown(t *testing.T) {
	db, client, mr := setupTestDeps(t)
	mr.Close()
	h := NewHandler(db, client, nil, allCredentials(), "test")

	code, resp := readiness(t, h)
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if resp.Components["redis"].Status != StatusUnhealthy {
		t.Errorf("expected redis unhealthy, got %+v", resp.Components["redis"])
	}
}

func TestReadiness_PartialProviders(t *testing.T) {
	db, client, _ := setupTestDeps(t)
	h := NewHandler(db, client, nil, provider.Credentials{DeepgramAPIKey: "dg"}, "test")

	code, resp := readiness(t, h)
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if resp.Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", resp.Status)
	}
	if len(resp.Providers) != 1 || resp.Providers[0] != "deepgram" {
		t.Errorf("unexpected providers %v", resp.Providers)
	}
}

func TestSessions(t *testing.T) {
	registry := relay.NewRegistry()
	adapter, err := provider.New(provider.Deepgram, allCredentials(), provider.Options{})
	if err != nil {
		t.Fatalf("provider.New() error = %v", err)
	}
	clientURL, _ := url.Parse("/v1/listen?provider=deepgram")
	conn := relay.NewConnection(adapter, clientURL, relay.Config{ID: "conn_1"})
	registry.Add(conn, "acme")

	h := NewHandler(nil, nil, registry, allCredentials(), "test")
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/sessions", nil), rec)

	if err := h.Sessions(c); err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}

	var resp SessionsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 1 {
		t.Fatalf("expected 1 session, got %d", resp.Total)
	}
	s := resp.Sessions[0]
	if s.ID != "conn_1" || s.Provider != "deepgram" || s.OwnerID != "acme" || s.Ready {
		t.Errorf("unexpected session %+v", s)
	}
}

func TestComputeOverallStatus(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]ComponentStatus
		want       Status
	}{
		{"all healthy", map[string]ComponentStatus{"database": {Status: StatusHealthy}, "redis": {Status: StatusHealthy}}, StatusHealthy},
		{"critical down", map[string]ComponentStatus{"database": {Status: StatusUnhealthy}, "redis": {Status: StatusHealthy}}, StatusUnhealthy},
		{"degraded", map[string]ComponentStatus{"database": {Status: StatusDegraded}, "redis": {Status: StatusHealthy}}, StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeOverallStatus(tt.components); got != tt.want {
				t.Errorf("computeOverallStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}
