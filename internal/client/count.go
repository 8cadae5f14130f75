package client

import (
	"context"

	"pharmapos/internal/query"
)

// CountOptions mirrors the hosted client's {count, head} select options.
type CountOptions struct {
	Count string
	Head  bool
}

// CountResponse carries only the count; there is never row data.
type CountResponse struct {
	Count int          `json:"count"`
	Error *query.Error `json:"error"`
}

// CountQuery is a head-only exact count.
type CountQuery struct {
	b *query.Builder
}

// Count starts an exact count on table.
func (c *Client) Count(table string) *CountQuery {
	return &CountQuery{b: c.From(table)}
}

// Select accepts the hosted client's arguments. Only exact counting
// exists locally, so any Count mode counts exactly and Head is implied.
func (q *CountQuery) Select(fields string, _ CountOptions) *CountQuery {
	q.b.Select(fields, query.WithCount(query.CountExact), query.Head())
	return q
}

func (q *CountQuery) Eq(column string, value any) *CountQuery {
	q.b.Eq(column, value)
	return q
}

func (q *CountQuery) Gt(column string, value any) *CountQuery {
	q.b.Gt(column, value)
	return q
}

func (q *CountQuery) Gte(column string, value any) *CountQuery {
	q.b.Gte(column, value)
	return q
}

func (q *CountQuery) Lt(column string, value any) *CountQuery {
	q.b.Lt(column, value)
	return q
}

func (q *CountQuery) Lte(column string, value any) *CountQuery {
	q.b.Lte(column, value)
	return q
}

func (q *CountQuery) In(column string, values []any) *CountQuery {
	q.b.In(column, values)
	return q
}

func (q *CountQuery) Execute(ctx context.Context) CountResponse {
	q.b.Select("*", query.WithCount(query.CountExact), query.Head())
	resp := q.b.Execute(ctx)
	if resp.Error != nil {
		return CountResponse{Error: resp.Error}
	}
	return CountResponse{Count: *resp.Count}
}
