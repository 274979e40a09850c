package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/assetledger/internal/infrastructure/config"
)

func loadConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()

	t.Setenv("STORAGE", config.StorageMemory)
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func TestNewApp_MemoryWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadConfig(t, map[string]string{
		"REDIS_URL":      "redis://" + mr.Addr(),
		"OUTBOX_ENABLED": "false",
	})

	a, err := newApp(t.Context(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer a.close()

	if a.publisher != nil {
		t.Fatal("publisher must be disabled when OUTBOX_ENABLED=false")
	}

	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"redis":"ok"`) {
		t.Fatalf("unexpected readiness %d %s", resp.StatusCode, body)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/depreciation/batches", strings.NewReader(`{"organisation_id":"org-1","period":"2024-03"}`))
	req.Header.Set("Idempotency-Key", "batch-1")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST batch: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if len(mr.Keys()) == 0 {
		t.Fatal("expected the idempotency key to be stored in redis")
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "assetledger_http_requests_total") {
		t.Fatalf("expected request metrics to be exported")
	}
}

func TestNewApp_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := loadConfig(t, map[string]string{"REDIS_URL": "redis://" + addr})

	if _, err := newApp(t.Context(), cfg, zerolog.Nop(), prometheus.NewRegistry()); err == nil {
		t.Fatal("expected an error when redis is unreachable")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := loadConfig(t, map[string]string{
		"HTTP_PORT":       "0",
		"OUTBOX_INTERVAL": "10ms",
	})

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, cfg, zerolog.Nop(), prometheus.NewRegistry())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}
