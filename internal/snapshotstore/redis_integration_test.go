//go:build integration

package snapshotstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"roadmap/internal/snapshotstore"
)

func TestRedisStoreContract(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := snapshotstore.OpenRedis(ctx, url, "roadmap:test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.Equal(t, "redis", store.Backend())
	exerciseStore(t, store)
}
