package testsupport

import (
	"context"
	"testing"

	"roadmap/internal/config"
	"roadmap/internal/snapshotstore"
)

// MustOpenStore opens the configured snapshot store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) snapshotstore.Store {
	t.Helper()

	store, err := snapshotstore.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("snapshotstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
