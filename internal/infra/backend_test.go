package infra

import (
	"path/filepath"
	"testing"

	"pharmapos/internal/config"
	"pharmapos/internal/store/memstore"
	"pharmapos/internal/store/redisstore"
	"pharmapos/internal/store/sqlstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	cases := []struct {
		name string
		cfg  config.Config
		want any
	}{
		{"memory", config.Config{StoreDriver: config.DriverMemory}, &memstore.Store{}},
		{"sqlite", config.Config{StoreDriver: config.DriverSQLite, DatabaseURL: filepath.Join(t.TempDir(), "p.db")}, &sqlstore.Store{}},
		{"redis", config.Config{StoreDriver: config.DriverRedis, RedisURL: "redis://" + mr.Addr() + "/0", RedisKeyPrefix: "t"}, &redisstore.Store{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := NewBackend(&tc.cfg)
			require.NoError(t, err)
			assert.IsType(t, tc.want, b)
			assert.NoError(t, b.Close())
		})
	}

	_, err := NewBackend(&config.Config{StoreDriver: "mongo"})
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")

	_, err = NewBackend(&config.Config{StoreDriver: config.DriverRedis, RedisURL: "::bad"})
	assert.Error(t, err)
}
