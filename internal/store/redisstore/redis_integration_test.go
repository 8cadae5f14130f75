//go:build integration

package redisstore_test

import (
	"context"
	"testing"

	"pharmapos/internal/infra"
	"pharmapos/internal/store"
	"pharmapos/internal/store/redisstore"
	"pharmapos/internal/store/storetest"

	"github.com/stretchr/testify/require"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestConformance_Redis(t *testing.T) {
	ctx := context.Background()
	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	storetest.Run(t, func(t *testing.T) store.Backend {
		rdb, err := infra.NewRedis(url)
		require.NoError(t, err)
		require.NoError(t, rdb.FlushDB(ctx).Err())
		return redisstore.New(rdb, "it")
	})
}
