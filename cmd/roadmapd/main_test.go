package main

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"roadmap/internal/api"
	"roadmap/internal/logging"
	"roadmap/internal/testsupport"
)

func TestStartDaemonServesHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := startDaemon(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("startDaemon: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	resp, err := http.Get("http://" + d.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var health api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Backend != "sqlite" || health.Status != "ok" {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestStartDaemonRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := startDaemon(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("first startDaemon: %v", err)
	}
	t.Cleanup(func() { first.Close() })

	if second, err := startDaemon(context.Background(), cfg, logging.NewNop()); err == nil {
		second.Close()
		t.Fatal("expected second instance to fail on the lock")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(testsupport.BaseDir(testsupport.NewConfig(t)), "bad.toml")
	testsupport.WriteFile(t, path, []byte("[logging]\nlevel = \"loud\"\n"))
	if err := run(context.Background(), path); err == nil {
		t.Fatal("expected config error")
	}
}
