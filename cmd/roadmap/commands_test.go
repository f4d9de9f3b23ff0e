package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"roadmap/internal/testsupport"
)

func decodeJSON(t *testing.T, data string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(data), v); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
}

func moduleStatuses(t *testing.T, env *cliTestEnv) map[string]string {
	t.Helper()
	stdout, _, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var view statusView
	decodeJSON(t, stdout, &view)
	out := make(map[string]string, len(view.Modules))
	for _, m := range view.Modules {
		out[m.ID] = m.Status
	}
	return out
}

func TestStatusWritesDerivedSnapshotToEmptyStore(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var view statusView
	decodeJSON(t, stdout, &view)
	if view.Offline {
		t.Fatal("expected online status")
	}
	if view.Progress.Modules != 14 || len(view.Modules) != 14 {
		t.Fatalf("expected 14 modules, got %d/%d", view.Progress.Modules, len(view.Modules))
	}

	statuses := map[string]string{}
	for _, m := range view.Modules {
		statuses[m.ID] = m.Status
	}
	for id, want := range map[string]string{
		"auth-accounts":   "ui-only",
		"product-catalog": "completed",
		"blog":            "completed",
		"audit-log":       "ui-only",
		"checkout":        "spec-ready",
	} {
		if statuses[id] != want {
			t.Fatalf("%s: expected %s, got %s", id, want, statuses[id])
		}
	}

	count, err := env.store.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 14 {
		t.Fatalf("expected derived snapshot written, store has %d records", count)
	}
}

func TestStatusTableAndCategoryFilter(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, stdout, "== Progress ==")
	requireContains(t, stdout, "checkout")
	requireContains(t, stdout, "ui-only (built)")

	stdout, _, err = runCLI(t, []string{"status", "--json", "--category", "commerce"}, env.configPath)
	if err != nil {
		t.Fatalf("status --category: %v", err)
	}
	var view statusView
	decodeJSON(t, stdout, &view)
	if len(view.Modules) != 3 {
		t.Fatalf("expected 3 commerce modules, got %d", len(view.Modules))
	}

	if _, _, err := runCLI(t, []string{"status", "--category", "gardening"}, env.configPath); err == nil {
		t.Fatal("expected unknown category error")
	}
}

func TestSetStatusPersistsAcrossInvocations(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"set", "subscriptions", "spec-ready"}, env.configPath)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	requireContains(t, stdout, "subscriptions is now spec-ready")
	requireContains(t, stdout, "Queued at position 4")

	statuses := moduleStatuses(t, env)
	if statuses["subscriptions"] != "spec-ready" {
		t.Fatalf("expected persisted spec-ready, got %s", statuses["subscriptions"])
	}
}

func TestSetRejectsBuiltModulesAndBadStatuses(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"set", "blog", "not-started"}, env.configPath)
	if err == nil {
		t.Fatal("expected derived module to be rejected")
	}
	requireContains(t, err.Error(), "build manifest")

	_, _, err = runCLI(t, []string{"set", "checkout", "done"}, env.configPath)
	if err == nil {
		t.Fatal("expected invalid status error")
	}
	requireContains(t, err.Error(), "progress-50")

	if _, _, err := runCLI(t, []string{"set", "nope", "completed"}, env.configPath); err == nil {
		t.Fatal("expected unknown module error")
	}
}

func TestNotesRoundTrip(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"notes", "checkout", "waiting", "on", "<payments>"}, env.configPath); err != nil {
		t.Fatalf("notes: %v", err)
	}
	stdout, _, err := runCLI(t, []string{"show", "checkout", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var view showView
	decodeJSON(t, stdout, &view)
	if view.Module.Notes != "waiting on <payments>" {
		t.Fatalf("unexpected notes %q", view.Module.Notes)
	}
	if view.Derived {
		t.Fatal("checkout is not built")
	}
	if view.Attachments == nil || len(view.Attachments.Files) != 3 {
		t.Fatalf("expected attachment listing with three categories, got %+v", view.Attachments)
	}
}

func TestShowRendersSubItemsAndAttachments(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.FilesDir, "auth-accounts", "specs", "login.md"), []byte("# login"))

	stdout, _, err := runCLI(t, []string{"show", "auth-accounts"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, stdout, "Accounts & sign-in (auth-accounts)")
	requireContains(t, stdout, "derived from build manifest")
	requireContains(t, stdout, "Single sign-on")
	requireContains(t, stdout, "login.md")

	if _, _, err := runCLI(t, []string{"show", "missing"}, env.configPath); err == nil {
		t.Fatal("expected unknown module error")
	}
}

func TestQueueListAndMove(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"queue", "move", "checkout", "up"}, env.configPath)
	if err != nil {
		t.Fatalf("queue move: %v", err)
	}
	requireContains(t, stdout, "Moved checkout up to position 1")

	stdout, _, err = runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	checkout := strings.Index(stdout, "checkout")
	notifications := strings.Index(stdout, "notifications")
	if checkout < 0 || notifications < 0 || checkout > notifications {
		t.Fatalf("expected checkout before notifications:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, []string{"queue", "move", "checkout", "up"}, env.configPath)
	if err != nil {
		t.Fatalf("queue move at top: %v", err)
	}
	requireContains(t, stdout, "already at the top")

	if _, _, err := runCLI(t, []string{"queue", "move", "blog", "up"}, env.configPath); err == nil {
		t.Fatal("expected error moving a module that is not queued")
	}
	if _, _, err := runCLI(t, []string{"queue", "move", "checkout", "left"}, env.configPath); err == nil {
		t.Fatal("expected direction error")
	}
}

func TestMutationWithUnreachableStoreReportsUnsavedChanges(t *testing.T) {
	env := setupCLITestEnv(t)
	dead := httptest.NewServer(nil)
	dead.Close()
	env.cfg.Remote.BaseURL = dead.URL
	writeTestConfig(t, env.configPath, env.cfg)

	_, stderr, err := runCLI(t, []string{"notes", "checkout", "offline edit"}, env.configPath)
	if err == nil {
		t.Fatal("expected unsaved changes error")
	}
	requireContains(t, err.Error(), "unsaved changes")

	stdout, stderr, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("read commands should still work offline: %v", err)
	}
	requireContains(t, stderr, "unavailable")
	var view statusView
	decodeJSON(t, stdout, &view)
	if !view.Offline {
		t.Fatal("expected offline flag")
	}
}

func TestAuditReportsCoverage(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"audit", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	var view auditView
	decodeJSON(t, stdout, &view)
	if view.Summary.Catalog != 14 || view.Summary.Covered != 4 || view.Summary.Missing != 10 {
		t.Fatalf("unexpected summary %+v", view.Summary)
	}
	if view.Summary.Orphans != 0 || view.Summary.Placeholders != 2 {
		t.Fatalf("unexpected orphans/placeholders %+v", view.Summary)
	}

	stdout, _, err = runCLI(t, []string{"audit"}, env.configPath)
	if err != nil {
		t.Fatalf("audit table: %v", err)
	}
	requireContains(t, stdout, "14 catalog ids: 4 covered, 10 missing, 0 orphans, 2 placeholders")
	requireContains(t, stdout, "shop/products")
}

func TestCheckFlagsAuthoringDefects(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check on sample files: %v", err)
	}
	requireContains(t, stdout, "14 modules, 7 manifest entries")

	testsupport.WriteCatalog(t, env.cfg.Paths.CatalogPath, `modules:
  - id: a
    name: A
    category: core
    status: spec-ready
    priority: high
    executionOrder: 2
  - id: a
    name: A again
    category: core
    priority: high
`)
	testsupport.WriteManifest(t, env.cfg.Paths.ManifestPath, `entries:
  - section: x
    view: y
    covers: [ghost]
    genuine: true
`)
	stdout, _, err = runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail")
	}
	requireContains(t, stdout, "Catalog")
	requireContains(t, stdout, "x/y covers unknown id ghost")
}

func TestDriftAndSync(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"drift", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("drift: %v", err)
	}
	var view driftView
	decodeJSON(t, stdout, &view)
	if !view.RemoteEmpty || !view.MustResync {
		t.Fatalf("expected empty remote needing resync, got %+v", view)
	}
	if count, _ := env.store.Count(context.Background()); count != 0 {
		t.Fatalf("drift must not write, store has %d records", count)
	}

	stdout, _, err = runCLI(t, []string{"sync"}, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, stdout, "14 written")

	stdout, _, err = runCLI(t, []string{"drift"}, env.configPath)
	if err != nil {
		t.Fatalf("drift after sync: %v", err)
	}
	requireContains(t, stdout, "in sync")
}

func TestResetRequiresForceAndRederives(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"set", "roles", "progress-50"}, env.configPath); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, _, err := runCLI(t, []string{"reset"}, env.configPath); err == nil {
		t.Fatal("expected reset without --force to fail")
	}

	stdout, _, err := runCLI(t, []string{"reset", "--force"}, env.configPath)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	requireContains(t, stdout, "Removed 14 remote records")

	if got := moduleStatuses(t, env)["roles"]; got != "not-started" {
		t.Fatalf("expected roles back to catalog status, got %s", got)
	}
}

func TestInitWritesSampleFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	stdout, _, err := runCLI(t, []string{"init"}, configPath)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	requireContains(t, stdout, "Wrote sample catalog")
	requireContains(t, stdout, "Wrote sample manifest")
	if _, err := os.Stat(cfg.Paths.CatalogPath); err != nil {
		t.Fatalf("catalog not written: %v", err)
	}

	stdout, _, err = runCLI(t, []string{"init"}, configPath)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	requireContains(t, stdout, "Kept existing catalog")
}

func TestMissingCatalogSuggestsInit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	_, _, err := runCLI(t, []string{"audit"}, configPath)
	if err == nil {
		t.Fatal("expected missing catalog error")
	}
	requireContains(t, err.Error(), "roadmap init")
}
