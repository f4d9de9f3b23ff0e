package snapshotstore_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"roadmap/internal/snapshotstore"
	"roadmap/internal/testsupport"
)

func TestSQLiteStoreContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roadmap.db")
	store, err := snapshotstore.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.Equal(t, "sqlite", store.Backend())
	require.Equal(t, path, store.Path())
	exerciseStore(t, store)
}

func TestOpenUsesConfiguredDataDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	require.NoError(t, store.Upsert(context.Background(), record("m1", "completed")))
	require.FileExists(t, cfg.DatabasePath())
}

func TestSQLiteSnapshotSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "roadmap.db")

	store, err := snapshotstore.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.ReplaceAll(ctx, []snapshotstore.Record{record("a", "completed")}))
	require.NoError(t, store.Close())

	reopened, err := snapshotstore.OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	records, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "completed", statusOf(t, records[0]))
}

func TestSQLiteRejectsSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "roadmap.db")

	store, err := snapshotstore.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE schema_version SET version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = snapshotstore.OpenSQLite(ctx, path)
	require.Error(t, err)
	require.True(t, errors.Is(err, snapshotstore.ErrSchemaMismatch))
}
