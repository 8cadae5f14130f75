package query_test

import (
	"context"
	"errors"
	"testing"

	"pharmapos/internal/query"
	"pharmapos/internal/schema"
	"pharmapos/internal/store"
	"pharmapos/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *store.Engine {
	t.Helper()
	e := store.NewEngine(memstore.New(), schema.Default())
	require.NoError(t, e.Open(context.Background()))
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func seedProducts(t *testing.T, e *store.Engine) {
	t.Helper()
	_, err := e.Insert(context.Background(), schema.Products,
		store.Record{"id": "p1", "user_id": "u1", "name": "Zinc", "stock_quantity": 5, "price": 3},
		store.Record{"id": "p2", "user_id": "u1", "name": "Amoxicillin", "stock_quantity": 0, "price": 12},
		store.Record{"id": "p3", "user_id": "u1", "name": "Metformin", "stock_quantity": 20, "price": 7},
		store.Record{"id": "p4", "user_id": "u2", "name": "Ibuprofen", "stock_quantity": 8, "price": 4},
	)
	require.NoError(t, err)
}

func from(e *store.Engine, table string) *query.Builder { return query.New(e, table) }

func names(rows []store.Record) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["name"]
	}
	return out
}

// ── Select ───────────────────────────────────────────────────────────────────

func TestSelect_FiltersOrderLimit(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	seedProducts(t, e)

	resp := from(e, schema.Products).Select("*").Eq("user_id", "u1").Gt("stock_quantity", 0).Execute(ctx)
	require.Nil(t, resp.Error)
	assert.ElementsMatch(t, []any{"Zinc", "Metformin"}, names(resp.Data))

	resp = from(e, schema.Products).Select("*").Eq("user_id", "u1").Order("name").Execute(ctx)
	require.NoError(t, resp.Err())
	assert.Equal(t, []any{"Amoxicillin", "Metformin", "Zinc"}, names(resp.Data))

	resp = from(e, schema.Products).Select("*").Order("price", query.Ascending(false)).Limit(2).Execute(ctx)
	require.NoError(t, resp.Err())
	assert.Equal(t, []any{"Amoxicillin", "Metformin"}, names(resp.Data))
}

func TestSelect_EmptyIsNotAnError(t *testing.T) {
	e := newEngine(t)
	resp := from(e, schema.Products).Select("*").Eq("user_id", "nobody").Execute(context.Background())
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}

func TestSelect_Projection(t *testing.T) {
	e := newEngine(t)
	seedProducts(t, e)
	resp := from(e, schema.Products).Select("id, name, missing_col").Eq("id", "p1").Execute(context.Background())
	require.NoError(t, resp.Err())
	require.Len(t, resp.Data, 1)
	assert.Equal(t, store.Record{"id": "p1", "name": "Zinc"}, resp.Data[0])
}

func TestSelect_InRunsBeforeLimit(t *testing.T) {
	e := newEngine(t)
	seedProducts(t, e)
	resp := from(e, schema.Products).Select("*").
		In("id", []any{"p3", "p4", "p1"}).
		Order("name").
		Limit(2).
		Execute(context.Background())
	require.NoError(t, resp.Err())
	assert.Equal(t, []any{"Ibuprofen", "Metformin"}, names(resp.Data))
}

func TestSelect_CountAndHead(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	seedProducts(t, e)

	resp := from(e, schema.Products).Select("*", query.WithCount(query.CountExact), query.Head()).Eq("user_id", "u1").Execute(ctx)
	require.NoError(t, resp.Err())
	require.NotNil(t, resp.Count)
	assert.Equal(t, 3, *resp.Count)
	assert.Nil(t, resp.Data)

	rows, err := e.Select(ctx, schema.Products, store.Where("user_id", "u1"))
	require.NoError(t, err)
	assert.Equal(t, len(rows), *resp.Count)

	resp = from(e, schema.Products).Select("*", query.WithCount(query.CountExact)).Limit(1).Execute(ctx)
	require.NoError(t, resp.Err())
	assert.Equal(t, 4, *resp.Count, "count ignores limit")
	assert.Len(t, resp.Data, 1)
}

func TestSingle(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	seedProducts(t, e)

	got := from(e, schema.Products).Select("*").Eq("id", "missing").Single().Execute(ctx)
	assert.Nil(t, got.Data)
	require.NotNil(t, got.Error)
	assert.Equal(t, query.CodeNotFound, got.Error.Code)
	assert.True(t, query.IsNotFound(got.Err()))

	got = from(e, schema.Products).Select("*").Eq("user_id", "u1").Order("name").Single().Execute(ctx)
	require.NoError(t, got.Err())
	assert.Equal(t, "Amoxicillin", got.Data["name"], "many rows resolve to the first")
}

func TestBuilderIsSingleUse(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	b := from(e, schema.Products).Select("*")
	require.Nil(t, b.Execute(ctx).Error)

	again := b.Execute(ctx)
	require.NotNil(t, again.Error)
	assert.Contains(t, again.Error.Message, "already executed")
}

func TestAsync(t *testing.T) {
	e := newEngine(t)
	seedProducts(t, e)
	resp := <-from(e, schema.Products).Select("*").Eq("id", "p2").Async(context.Background())
	require.NoError(t, resp.Err())
	assert.Equal(t, []any{"Amoxicillin"}, names(resp.Data))

	single := <-from(e, schema.Products).Select("*").Eq("id", "p2").Single().Async(context.Background())
	require.NoError(t, single.Err())
	assert.Equal(t, "p2", single.Data.ID())
}

// ── Mutations ────────────────────────────────────────────────────────────────

func TestInsert_DataOnlyWithSelect(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	resp := from(e, schema.Customers).Insert(store.Record{"user_id": "u1", "name": "Ali"}).Execute(ctx)
	require.NoError(t, resp.Err())
	assert.Nil(t, resp.Data)

	single := from(e, schema.Customers).Insert(store.Record{"user_id": "u1", "name": "Sara"}).Select("*").Single().Execute(ctx)
	require.NoError(t, single.Err())
	assert.NotEmpty(t, single.Data.ID())
	assert.NotEmpty(t, single.Data["created_at"])
	assert.Equal(t, "Sara", single.Data["name"])

	n, err := e.Count(ctx, schema.Customers, store.Where("user_id", "u1"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInsert_Batch(t *testing.T) {
	e := newEngine(t)
	resp := from(e, schema.SaleItems).Insert(
		store.Record{"sale_id": "s1", "product_id": "p1", "quantity": 1},
		store.Record{"sale_id": "s1", "product_id": "p2", "quantity": 2},
	).Select("id, sale_id").Execute(context.Background())
	require.NoError(t, resp.Err())
	require.Len(t, resp.Data, 2)
	for _, r := range resp.Data {
		assert.Len(t, r, 2)
		assert.Equal(t, "s1", r["sale_id"])
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	seedProducts(t, e)

	resp := from(e, schema.Products).Update(store.Record{"stock_quantity": 97}).Eq("id", "p1").Execute(ctx)
	require.NoError(t, resp.Err())
	assert.Nil(t, resp.Data)

	single := from(e, schema.Products).Update(store.Record{"price": 9}).Eq("id", "p1").Select("*").Single().Execute(ctx)
	require.NoError(t, single.Err())
	assert.True(t, store.Equal(single.Data["stock_quantity"], 97))
	assert.True(t, store.Equal(single.Data["price"], 9))

	miss := from(e, schema.Products).Update(store.Record{"price": 1}).Eq("id", "nope").Select("*").Single().Execute(ctx)
	assert.True(t, query.IsNotFound(miss.Err()))
}

func TestDelete_InFilter(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	seedProducts(t, e)

	resp := from(e, schema.Products).Delete().In("id", []any{"p1", "p3", "gone"}).Select("id").Execute(ctx)
	require.NoError(t, resp.Err())
	assert.Equal(t, []store.Record{{"id": "p1"}, {"id": "p3"}}, resp.Data)

	left, err := e.Select(ctx, schema.Products, store.Filters{})
	require.NoError(t, err)
	assert.Len(t, left, 2)
}

func TestDelete_ScopedByEquality(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	seedProducts(t, e)

	resp := from(e, schema.Products).Delete().Eq("user_id", "u2").Execute(ctx)
	require.NoError(t, resp.Err())
	assert.Nil(t, resp.Data)

	n, err := e.Count(ctx, schema.Products, store.Where("user_id", "u2"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDelete_TwoInFiltersIsRejected(t *testing.T) {
	e := newEngine(t)
	seedProducts(t, e)
	resp := from(e, schema.Products).Delete().In("id", []any{"p1"}).In("user_id", []any{"u1"}).Execute(context.Background())
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "unsupported filter combination")

	n, err := e.Count(context.Background(), schema.Products, store.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

// ── Errors ───────────────────────────────────────────────────────────────────

type brokenEngine struct{ err error }

func (b brokenEngine) Select(context.Context, string, store.Filters) ([]store.Record, error) {
	return nil, b.err
}
func (b brokenEngine) Insert(context.Context, string, ...store.Record) ([]store.Record, error) {
	return nil, b.err
}
func (b brokenEngine) Update(context.Context, string, store.Record, store.Filters) (int, error) {
	return 0, b.err
}
func (b brokenEngine) Delete(context.Context, string, store.Filters) (int, error) {
	return 0, b.err
}

func TestEngineErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("QuotaExceededError: the quota has been exceeded")
	eng := brokenEngine{err: cause}

	cases := map[string]func() query.Response{
		"select": func() query.Response { return query.New(eng, "products").Select("*").Execute(ctx) },
		"insert": func() query.Response {
			return query.New(eng, "products").Insert(store.Record{"name": "x"}).Execute(ctx)
		},
		"update": func() query.Response {
			return query.New(eng, "products").Update(store.Record{"name": "x"}).Eq("id", "1").Execute(ctx)
		},
		"delete": func() query.Response { return query.New(eng, "products").Delete().Eq("id", "1").Execute(ctx) },
	}
	for name, run := range cases {
		t.Run(name, func(t *testing.T) {
			resp := run()
			require.NotNil(t, resp.Error)
			assert.Equal(t, cause.Error(), resp.Error.Message)
			assert.Empty(t, resp.Error.Code)
			assert.ErrorIs(t, resp.Err(), cause)
		})
	}

	single := query.New(eng, "products").Select("*").Single().Execute(ctx)
	assert.False(t, query.IsNotFound(single.Err()))
	assert.ErrorIs(t, single.Err(), cause)
}
