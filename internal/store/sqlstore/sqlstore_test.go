package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"pharmapos/internal/infra"
	"pharmapos/internal/schema"
	"pharmapos/internal/store"
	"pharmapos/internal/store/sqlstore"
	"pharmapos/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) store.Backend {
	t.Helper()
	db, err := infra.NewDatabase("sqlite", filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	return sqlstore.New(db)
}

func TestConformance_SQLite(t *testing.T) {
	storetest.Run(t, newSQLite)
}

func TestOpen_ReindexesWhenIndexAdded(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	db, err := infra.NewDatabase("sqlite", path)
	require.NoError(t, err)
	first := sqlstore.New(db)
	plain := schema.Collection{Name: "things"}
	require.NoError(t, first.Open(ctx, []schema.Collection{plain}))
	require.NoError(t, first.Update(ctx, "things", func(tx store.Txn) error {
		return tx.Put(store.Record{"id": "t1", "color": "red"})
	}))
	require.NoError(t, first.Close())

	db, err = infra.NewDatabase("sqlite", path)
	require.NoError(t, err)
	second := sqlstore.New(db)
	t.Cleanup(func() { _ = second.Close() })
	indexed := schema.Collection{Name: "things", Indexes: []string{"color"}}
	require.NoError(t, second.Open(ctx, []schema.Collection{indexed}))

	key, _ := store.IndexKey("red")
	require.NoError(t, second.View(ctx, "things", func(tx store.Txn) error {
		recs, err := tx.GetAllByIndex("color", key)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "t1", recs[0].ID())
		return nil
	}))
}
