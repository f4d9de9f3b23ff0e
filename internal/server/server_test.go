package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"roadmap/internal/api"
	"roadmap/internal/catalog"
	"roadmap/internal/logging"
	"roadmap/internal/remote"
	"roadmap/internal/server"
	"roadmap/internal/testsupport"
	"roadmap/internal/tracker"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	srv := server.New(cfg, store, logging.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, cfg.Paths.FilesDir
}

func do(t *testing.T, method, url, token, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestRoutesRequireBearerToken(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := do(t, http.MethodGet, ts.URL+"/roadmap/modules", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, ts.URL+"/roadmap/modules", "wrong", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong token, got %d", resp.StatusCode)
	}
	resp, body := do(t, http.MethodGet, ts.URL+"/roadmap/modules", "test-token", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) != `{"modules":[]}` {
		t.Fatalf("expected empty array, got %s", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	const token = "test-token"

	resp, body := do(t, http.MethodPost, ts.URL+"/roadmap/modules-bulk", token,
		`{"modules":[{"id":"m1","status":"completed","extra":true},{"id":"m2","status":"not-started"}]}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("bulk: expected 204, got %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodPost, ts.URL+"/roadmap/modules/m2", token, `{"id":"m2","status":"spec-ready","executionOrder":1}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("upsert: expected 204, got %d %s", resp.StatusCode, body)
	}

	_, body = do(t, http.MethodGet, ts.URL+"/roadmap/modules", token, "")
	var envelope api.RawEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Modules) != 2 {
		t.Fatalf("expected 2 records, got %d", len(envelope.Modules))
	}
	if !strings.Contains(string(envelope.Modules[0]), `"extra":true`) {
		t.Fatalf("expected record stored verbatim, got %s", envelope.Modules[0])
	}
	patch, ok := api.ToPatch(envelope.Modules[1])
	if !ok || *patch.Status != catalog.StatusSpecReady || *patch.ExecutionOrder != 1 {
		t.Fatalf("unexpected upserted record %s", envelope.Modules[1])
	}

	resp, body = do(t, http.MethodDelete, ts.URL+"/roadmap/modules/reset", token, "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"removed":2`) {
		t.Fatalf("reset: got %d %s", resp.StatusCode, body)
	}
	_, body = do(t, http.MethodGet, ts.URL+"/roadmap/modules", token, "")
	if strings.TrimSpace(string(body)) != `{"modules":[]}` {
		t.Fatalf("expected empty snapshot after reset, got %s", body)
	}
}

func TestBadRequests(t *testing.T) {
	ts, _ := newTestServer(t)
	const token = "test-token"
	cases := []struct {
		name, method, path, body string
	}{
		{"bulk not json", http.MethodPost, "/roadmap/modules-bulk", `nope`},
		{"bulk record without id", http.MethodPost, "/roadmap/modules-bulk", `{"modules":[{"status":"completed"}]}`},
		{"upsert id mismatch", http.MethodPost, "/roadmap/modules/m1", `{"id":"m2"}`},
		{"upsert array", http.MethodPost, "/roadmap/modules/m1", `[1]`},
		{"files traversal", http.MethodGet, "/roadmap/files/..", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, tc.method, ts.URL+tc.path, token, tc.body)
			if resp.StatusCode != http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
				t.Fatalf("expected client error, got %d %s", resp.StatusCode, body)
			}
			if !strings.Contains(string(body), `"error"`) {
				t.Fatalf("expected error envelope, got %s", body)
			}
		})
	}
}

func TestFilesListing(t *testing.T) {
	ts, filesDir := newTestServer(t)
	dir := filepath.Join(filesDir, "checkout", "designs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "flow.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	client := remote.New(ts.URL, "test-token")
	listing, err := client.Files(context.Background(), "checkout")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(listing.Files["designs"]) != 1 || listing.Files["designs"][0].Name != "flow.png" {
		t.Fatalf("unexpected listing %+v", listing)
	}
	if listing.Files["specs"] == nil || listing.Files["evidence"] == nil {
		t.Fatal("expected every category present")
	}
}

func TestHealthAndMetricsAreOpen(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, http.MethodPost, ts.URL+"/roadmap/modules-bulk", "test-token", `{"modules":[{"id":"m1"}]}`)

	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"records":1`) {
		t.Fatalf("health: got %d %s", resp.StatusCode, body)
	}
	resp, body = do(t, http.MethodGet, ts.URL+"/metrics", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: got %d", resp.StatusCode)
	}
	for _, want := range []string{"roadmapd_bulk_writes_total 1", "roadmapd_snapshot_records 1", `route="/roadmap/modules-bulk"`} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestTrackerRoundTripThroughServer(t *testing.T) {
	ts, _ := newTestServer(t)
	client := remote.New(ts.URL, "test-token")
	cat := testsupport.SampleCatalog()
	man := testsupport.SampleManifest()
	ctx := context.Background()

	first := tracker.New(cat, man, client, logging.NewNop())
	if res := first.Load(ctx); !res.RemoteEmpty {
		t.Fatal("expected empty snapshot on first load")
	}
	if err := first.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if _, err := first.SetNotes(ctx, "checkout", "payment provider chosen"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	if err := first.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	second := tracker.New(cat, man, client, logging.NewNop())
	res := second.Load(ctx)
	if res.MustResync {
		t.Fatalf("expected snapshot in sync, drift=%+v", res.Drift)
	}
	checkout, _ := second.Module("checkout")
	if checkout.Notes != "payment provider chosen" {
		t.Fatalf("notes not persisted, got %q", checkout.Notes)
	}
	if err := second.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}
