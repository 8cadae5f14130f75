// Package storetest is a conformance suite every store.Backend must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharmapos/internal/schema"
	"pharmapos/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, unopened backend with no data.
type Factory func(t *testing.T) store.Backend

var items = schema.Collection{Name: "items", Indexes: []string{"owner", "qty"}}

// Run exercises the backend contract and then the engine on top of it.
func Run(t *testing.T, newBackend Factory) {
	t.Run("Backend", func(t *testing.T) { runBackend(t, newBackend) })
	t.Run("Engine", func(t *testing.T) { runEngine(t, newBackend) })
}

func open(t *testing.T, newBackend Factory) store.Backend {
	t.Helper()
	b := newBackend(t)
	require.NoError(t, b.Open(context.Background(), []schema.Collection{items}))
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func seed(t *testing.T, b store.Backend, recs ...store.Record) {
	t.Helper()
	err := b.Update(context.Background(), items.Name, func(tx store.Txn) error {
		for _, r := range recs {
			if err := tx.Put(r); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func ids(recs []store.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID()
	}
	return out
}

func runBackend(t *testing.T, newBackend Factory) {
	ctx := context.Background()

	t.Run("AddThenGet", func(t *testing.T) {
		b := open(t, newBackend)
		require.NoError(t, b.Update(ctx, items.Name, func(tx store.Txn) error {
			return tx.Add(store.Record{"id": "a", "owner": "u1", "qty": 3, "label": "x"})
		}))
		require.NoError(t, b.View(ctx, items.Name, func(tx store.Txn) error {
			rec, ok, err := tx.Get("a")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "u1", rec["owner"])
			assert.True(t, store.Equal(rec["qty"], 3))
			assert.Equal(t, "x", rec["label"])

			_, ok, err = tx.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)
			return nil
		}))
	})

	t.Run("AddDuplicateIsConstraintError", func(t *testing.T) {
		b := open(t, newBackend)
		seed(t, b, store.Record{"id": "a", "owner": "u1"})
		err := b.Update(ctx, items.Name, func(tx store.Txn) error {
			return tx.Add(store.Record{"id": "a", "owner": "u2"})
		})
		assert.True(t, errors.Is(err, store.ErrConstraint))
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		b := open(t, newBackend)
		seed(t, b, store.Record{"id": "a", "owner": "u1", "qty": 1})
		seed(t, b, store.Record{"id": "a", "owner": "u2"})
		require.NoError(t, b.View(ctx, items.Name, func(tx store.Txn) error {
			rec, ok, err := tx.Get("a")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "u2", rec["owner"])
			_, hasQty := rec["qty"]
			assert.False(t, hasQty, "put replaces the whole record")
			return nil
		}))
	})

	t.Run("GetAllOrderedByKey", func(t *testing.T) {
		b := open(t, newBackend)
		seed(t, b,
			store.Record{"id": "c"},
			store.Record{"id": "a"},
			store.Record{"id": "b"},
		)
		require.NoError(t, b.View(ctx, items.Name, func(tx store.Txn) error {
			all, err := tx.GetAll()
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, ids(all))
			return nil
		}))
	})

	t.Run("IndexFollowsWrites", func(t *testing.T) {
		b := open(t, newBackend)
		seed(t, b,
			store.Record{"id": "a", "owner": "u1", "qty": 5},
			store.Record{"id": "b", "owner": "u2", "qty": 5},
			store.Record{"id": "c", "owner": "u1", "qty": 7},
		)
		seed(t, b, store.Record{"id": "c", "owner": "u2", "qty": 7})
		require.NoError(t, b.Update(ctx, items.Name, func(tx store.Txn) error {
			return tx.Delete("b")
		}))

		key := func(v any) string {
			k, ok := store.IndexKey(v)
			require.True(t, ok)
			return k
		}
		require.NoError(t, b.View(ctx, items.Name, func(tx store.Txn) error {
			u1, err := tx.GetAllByIndex("owner", key("u1"))
			require.NoError(t, err)
			assert.Equal(t, []string{"a"}, ids(u1))

			u2, err := tx.GetAllByIndex("owner", key("u2"))
			require.NoError(t, err)
			assert.Equal(t, []string{"c"}, ids(u2))

			five, err := tx.GetAllByIndex("qty", key(5))
			require.NoError(t, err)
			assert.Equal(t, []string{"a"}, ids(five))
			return nil
		}))
	})

	t.Run("FailedUpdateRollsBack", func(t *testing.T) {
		b := open(t, newBackend)
		seed(t, b, store.Record{"id": "a", "owner": "u1"})
		boom := errors.New("boom")
		err := b.Update(ctx, items.Name, func(tx store.Txn) error {
			if err := tx.Put(store.Record{"id": "b", "owner": "u1"}); err != nil {
				return err
			}
			if err := tx.Delete("a"); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.NoError(t, b.View(ctx, items.Name, func(tx store.Txn) error {
			all, err := tx.GetAll()
			require.NoError(t, err)
			assert.Equal(t, []string{"a"}, ids(all))
			return nil
		}))
	})

	t.Run("ReadsSeeOwnWrites", func(t *testing.T) {
		b := open(t, newBackend)
		seed(t, b, store.Record{"id": "a", "owner": "u1"})
		require.NoError(t, b.Update(ctx, items.Name, func(tx store.Txn) error {
			require.NoError(t, tx.Put(store.Record{"id": "b", "owner": "u1"}))
			require.NoError(t, tx.Delete("a"))

			_, ok, err := tx.Get("a")
			require.NoError(t, err)
			assert.False(t, ok)

			k, _ := store.IndexKey("u1")
			byOwner, err := tx.GetAllByIndex("owner", k)
			require.NoError(t, err)
			assert.Equal(t, []string{"b"}, ids(byOwner))
			return nil
		}))
	})

	t.Run("ViewIsReadOnly", func(t *testing.T) {
		b := open(t, newBackend)
		err := b.View(ctx, items.Name, func(tx store.Txn) error {
			return tx.Put(store.Record{"id": "a"})
		})
		assert.ErrorIs(t, err, store.ErrReadOnly)
	})

	t.Run("UnknownCollection", func(t *testing.T) {
		b := open(t, newBackend)
		err := b.View(ctx, "nope", func(store.Txn) error { return nil })
		assert.ErrorIs(t, err, store.ErrUnknownCollection)
	})

	t.Run("Ping", func(t *testing.T) {
		b := open(t, newBackend)
		assert.NoError(t, b.Ping(ctx))
	})
}

func runEngine(t *testing.T, newBackend Factory) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	newEngine := func(t *testing.T) *store.Engine {
		t.Helper()
		e := store.NewEngine(newBackend(t), schema.Default(), store.WithClock(func() time.Time { return clock }))
		require.NoError(t, e.Open(ctx))
		t.Cleanup(func() { _ = e.Close() })
		return e
	}

	t.Run("InsertIsIdempotentUpsert", func(t *testing.T) {
		e := newEngine(t)
		rec := store.Record{"id": "p1", "user_id": "u1", "name": "Zinc", "stock_quantity": 5}
		_, err := e.Insert(ctx, schema.Products, rec)
		require.NoError(t, err)
		_, err = e.Insert(ctx, schema.Products, rec)
		require.NoError(t, err)

		rows, err := e.Select(ctx, schema.Products, store.Where("id", "p1"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Zinc", rows[0]["name"])
	})

	t.Run("InsertFillsDefaults", func(t *testing.T) {
		e := newEngine(t)
		out, err := e.Insert(ctx, schema.Customers, store.Record{"user_id": "u1", "name": "Ali"})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Regexp(t, `^customers_\d+_[0-9a-f]{9}$`, out[0].ID())
		assert.Equal(t, "2025-03-14T09:30:00.000Z", out[0]["created_at"])
		assert.Equal(t, "2025-03-14T09:30:00.000Z", out[0]["updated_at"])
	})

	t.Run("FilterConjunction", func(t *testing.T) {
		e := newEngine(t)
		_, err := e.Insert(ctx, schema.Products,
			store.Record{"id": "a", "user_id": "u1", "name": "A", "stock_quantity": 5},
			store.Record{"id": "b", "user_id": "u1", "name": "B", "stock_quantity": 0},
			store.Record{"id": "c", "user_id": "u1", "name": "C", "stock_quantity": 20},
			store.Record{"id": "d", "user_id": "u2", "name": "D", "stock_quantity": 9},
		)
		require.NoError(t, err)

		f := store.Where("user_id", "u1")
		f.Gt = map[string]any{"stock_quantity": 0}
		rows, err := e.Select(ctx, schema.Products, f)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, ids(rows))

		n, err := e.Count(ctx, schema.Products, f)
		require.NoError(t, err)
		assert.Equal(t, len(rows), n)
	})

	t.Run("OrderAndLimit", func(t *testing.T) {
		e := newEngine(t)
		_, err := e.Insert(ctx, schema.Products,
			store.Record{"id": "1", "user_id": "u1", "name": "Zinc"},
			store.Record{"id": "2", "user_id": "u1", "name": "Amoxicillin"},
			store.Record{"id": "3", "user_id": "u1", "name": "Metformin"},
		)
		require.NoError(t, err)

		f := store.Where("user_id", "u1")
		f.OrderBy = &store.Order{Column: "name", Ascending: true}
		rows, err := e.Select(ctx, schema.Products, f)
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "3", "1"}, ids(rows))

		f.Limit = 2
		rows, err = e.Select(ctx, schema.Products, f)
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "3"}, ids(rows))
	})

	t.Run("UpdateMergesAndStamps", func(t *testing.T) {
		e := newEngine(t)
		_, err := e.Insert(ctx, schema.Customers, store.Record{
			"id": "c1", "user_id": "u1", "name": "Ali", "outstanding_balance": 100,
			"created_at": "2024-01-01T00:00:00.000Z", "updated_at": "2024-01-01T00:00:00.000Z",
		})
		require.NoError(t, err)

		n, err := e.Update(ctx, schema.Customers, store.Record{"outstanding_balance": 40, "id": "hijack"}, store.Where("id", "c1"))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		rows, err := e.Select(ctx, schema.Customers, store.Where("id", "c1"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, store.Equal(rows[0]["outstanding_balance"], 40))
		assert.Equal(t, "Ali", rows[0]["name"])
		assert.Equal(t, "2024-01-01T00:00:00.000Z", rows[0]["created_at"])
		assert.Equal(t, "2025-03-14T09:30:00.000Z", rows[0]["updated_at"])

		n, err = e.Update(ctx, schema.Customers, store.Record{"name": "x"}, store.Where("id", "missing"))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("IndexedSelectMatchesScan", func(t *testing.T) {
		e := newEngine(t)
		_, err := e.Insert(ctx, schema.SaleItems,
			store.Record{"id": "i1", "sale_id": "s1", "product_id": "p1", "quantity": 1},
			store.Record{"id": "i2", "sale_id": "s2", "product_id": "p1", "quantity": 2},
			store.Record{"id": "i3", "sale_id": "s1", "product_id": "p2", "quantity": 3},
		)
		require.NoError(t, err)

		rows, err := e.Select(ctx, schema.SaleItems, store.Where("sale_id", "s1", "product_id", "p2"))
		require.NoError(t, err)
		assert.Equal(t, []string{"i3"}, ids(rows))

		// quantity is not indexed
		rows, err = e.Select(ctx, schema.SaleItems, store.Where("quantity", 2))
		require.NoError(t, err)
		assert.Equal(t, []string{"i2"}, ids(rows))
	})

	t.Run("DeleteAndCascade", func(t *testing.T) {
		e := newEngine(t)
		_, err := e.Insert(ctx, schema.Customers, store.Record{"id": "c1", "user_id": "u1", "name": "Ali"})
		require.NoError(t, err)
		_, err = e.Insert(ctx, schema.Sales,
			store.Record{"id": "s1", "user_id": "u1", "customer_id": "c1"},
			store.Record{"id": "s2", "user_id": "u1"},
		)
		require.NoError(t, err)
		_, err = e.Insert(ctx, schema.SaleItems,
			store.Record{"id": "i1", "sale_id": "s1"},
			store.Record{"id": "i2", "sale_id": "s2"},
		)
		require.NoError(t, err)
		_, err = e.Insert(ctx, schema.PaymentHistory, store.Record{"id": "h1", "customer_id": "c1", "user_id": "u1"})
		require.NoError(t, err)

		n, err := e.DeleteCascade(ctx, schema.Customers, store.Where("id", "c1"))
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		left, err := e.Select(ctx, schema.SaleItems, store.Filters{})
		require.NoError(t, err)
		assert.Equal(t, []string{"i2"}, ids(left))
		sales, err := e.Select(ctx, schema.Sales, store.Filters{})
		require.NoError(t, err)
		assert.Equal(t, []string{"s2"}, ids(sales))

		n, err = e.Delete(ctx, schema.Sales, store.Where("id", "s2"))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		left, err = e.Select(ctx, schema.SaleItems, store.Filters{})
		require.NoError(t, err)
		assert.Equal(t, []string{"i2"}, ids(left), "plain delete leaves dependents")
	})
}
