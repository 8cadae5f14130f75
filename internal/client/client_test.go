package client_test

import (
	"context"
	"testing"

	"pharmapos/internal/client"
	"pharmapos/internal/query"
	"pharmapos/internal/schema"
	"pharmapos/internal/store"
	"pharmapos/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *client.Client {
	t.Helper()
	e := store.NewEngine(memstore.New(), schema.Default())
	require.NoError(t, e.Open(context.Background()))
	t.Cleanup(func() { _ = e.Close() })
	return client.New(e)
}

func TestFrom_FreshBuilderPerCall(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	first := c.From(schema.Customers).Insert(store.Record{"user_id": "u1", "name": "Ali"}).Execute(ctx)
	require.NoError(t, first.Err())

	second := c.From(schema.Customers).Select("*").Eq("user_id", "u1").Execute(ctx)
	require.NoError(t, second.Err())
	assert.Len(t, second.Data, 1)
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	for _, name := range []string{"Ali", "Sara", "Omar"} {
		require.NoError(t, c.From(schema.Customers).Insert(store.Record{"user_id": "u1", "name": name}).Execute(ctx).Err())
	}
	require.NoError(t, c.From(schema.Customers).Insert(store.Record{"user_id": "u2", "name": "Zed"}).Execute(ctx).Err())

	got := c.Count(schema.Customers).Select("*", client.CountOptions{Count: "exact", Head: true}).Eq("user_id", "u1").Execute(ctx)
	require.Nil(t, got.Error)
	assert.Equal(t, 3, got.Count)

	sel := c.From(schema.Customers).Select("*").Eq("user_id", "u1").Execute(ctx)
	assert.Equal(t, len(sel.Data), got.Count)

	none := c.Count(schema.Customers).Eq("user_id", "nobody").Execute(ctx)
	require.Nil(t, none.Error)
	assert.Zero(t, none.Count)
}

func TestFunctionsInvoke_IsUnavailable(t *testing.T) {
	c := newClient(t)
	resp := c.Functions().Invoke(context.Background(), "ai-assistant", map[string]any{"prompt": "dosage?"})
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, client.LocalModeError, resp.Error.Name)
	assert.Contains(t, resp.Error.Message, "not available in local mode")
	assert.False(t, query.IsNotFound(resp.Error))
}

func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	require.NoError(t, c.From(schema.Customers).Insert(store.Record{"id": "c1", "user_id": "u1", "name": "Ali"}).Execute(ctx).Err())
	require.NoError(t, c.From(schema.PaymentHistory).Insert(store.Record{"customer_id": "c1", "user_id": "u1", "amount": 10}).Execute(ctx).Err())

	n, err := c.DeleteCascade(ctx, schema.Customers, store.Where("id", "c1"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left := c.Count(schema.PaymentHistory).Eq("customer_id", "c1").Execute(ctx)
	assert.Zero(t, left.Count)
}
