package query

import (
	"context"

	"pharmapos/internal/store"
)

// SingleResponse is the envelope of a one-row query. Data is nil exactly
// when Error is set.
type SingleResponse struct {
	Data  store.Record `json:"data"`
	Error *Error       `json:"error"`
}

// Err returns Error as a plain error, nil when a row was found.
func (r SingleResponse) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// SingleQuery resolves a builder to its first row. Zero rows is the
// CodeNotFound error; more than one row is not an error.
type SingleQuery struct {
	b *Builder
}

func (q *SingleQuery) Execute(ctx context.Context) SingleResponse {
	resp := q.b.Execute(ctx)
	if resp.Error != nil {
		return SingleResponse{Error: resp.Error}
	}
	if len(resp.Data) == 0 {
		return SingleResponse{Error: notFound()}
	}
	return SingleResponse{Data: resp.Data[0]}
}

// Async runs Execute on its own goroutine.
func (q *SingleQuery) Async(ctx context.Context) <-chan SingleResponse {
	ch := make(chan SingleResponse, 1)
	go func() { ch <- q.Execute(ctx) }()
	return ch
}
