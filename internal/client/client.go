// Package client is the entry point business code talks to: From(table)
// hands out query builders, Count runs head-only exact counts and
// Functions stands in for remote procedures that only exist on a hosted
// backend.
package client

import (
	"context"

	"pharmapos/internal/query"
	"pharmapos/internal/store"

	"github.com/rs/zerolog/log"
)

// LocalModeError is the error name Functions().Invoke reports.
const LocalModeError = "LocalModeError"

const localModeMessage = "AI functions are not available in local mode. Please set up Supabase for AI features."

// Client binds builders to one engine.
type Client struct {
	engine *store.Engine
}

// New returns a client over an opened engine.
func New(engine *store.Engine) *Client {
	return &Client{engine: engine}
}

// From returns a fresh builder on table.
func (c *Client) From(table string) *query.Builder {
	return query.New(c.engine, table)
}

// DeleteCascade removes the rows matching f and their registered
// dependents. Hosted clients have no such call; it exists for local
// callers that want integrity without hand-ordered deletes.
func (c *Client) DeleteCascade(ctx context.Context, table string, f store.Filters) (int, error) {
	return c.engine.DeleteCascade(ctx, table, f)
}

// Ping reports whether the store answers.
func (c *Client) Ping(ctx context.Context) error { return c.engine.Ping(ctx) }

// Functions returns the remote procedure surface.
func (c *Client) Functions() Functions { return Functions{} }

// FunctionResponse mirrors the hosted client's invoke result.
type FunctionResponse struct {
	Data  any          `json:"data"`
	Error *query.Error `json:"error"`
}

// Functions always reports remote procedures as unavailable.
type Functions struct{}

// Invoke never runs anything; it resolves with a LocalModeError envelope.
func (Functions) Invoke(ctx context.Context, name string, _ any) FunctionResponse {
	log.Warn().Str("function", name).Msg("remote function invoked in local mode")
	return FunctionResponse{Error: query.NewError(LocalModeError, localModeMessage)}
}
