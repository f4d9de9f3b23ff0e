package snapshotstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"roadmap/internal/snapshotstore"
)

func record(id, status string) snapshotstore.Record {
	data, _ := json.Marshal(map[string]string{"id": id, "status": status})
	return snapshotstore.Record{ID: id, Data: data}
}

func statusOf(t *testing.T, rec snapshotstore.Record) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Data, &payload))
	return payload["status"]
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store snapshotstore.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, records, "empty snapshot must list as an empty slice")
	require.Empty(t, records)

	require.NoError(t, store.ReplaceAll(ctx, []snapshotstore.Record{
		record("b", "completed"),
		record("a", "not-started"),
		record("b", "ui-only"),
	}))
	records, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "a", records[0].ID)
	require.Equal(t, "b", records[1].ID)
	require.Equal(t, "ui-only", statusOf(t, records[1]), "last duplicate wins")

	require.NoError(t, store.Upsert(ctx, record("a", "spec-ready")))
	require.NoError(t, store.Upsert(ctx, record("c", "progress-50")))
	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	records, err = store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "spec-ready", statusOf(t, records[0]))

	require.NoError(t, store.ReplaceAll(ctx, []snapshotstore.Record{record("z", "completed")}))
	records, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1, "bulk write replaces, never merges")
	require.Equal(t, "z", records[0].ID)

	removed, err := store.Reset(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
	count, err = store.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	err = store.Upsert(ctx, snapshotstore.Record{ID: "", Data: []byte(`{}`)})
	require.True(t, errors.Is(err, snapshotstore.ErrInvalidRecord))
	err = store.ReplaceAll(ctx, []snapshotstore.Record{{ID: "x", Data: []byte(`[1,2]`)}})
	require.True(t, errors.Is(err, snapshotstore.ErrInvalidRecord))
}
