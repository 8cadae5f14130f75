// Package query is a fluent query builder over the storage engine. A Builder
// accumulates filters, ordering, limit and at most one mutation; Execute
// runs it once and returns a {Data, Count, Error} envelope instead of a Go
// error, so call sites written against a hosted database client port over
// unchanged.
package query

import (
	"context"
	"strings"

	"pharmapos/internal/store"
)

// Engine is the storage surface the builder runs against.
type Engine interface {
	Select(ctx context.Context, table string, f store.Filters) ([]store.Record, error)
	Insert(ctx context.Context, table string, records ...store.Record) ([]store.Record, error)
	Update(ctx context.Context, table string, patch store.Record, f store.Filters) (int, error)
	Delete(ctx context.Context, table string, f store.Filters) (int, error)
}

// Op is the operation a builder will run.
type Op int

const (
	OpSelect Op = iota
	OpInsert
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "select"
	}
}

// CountMode selects how Response.Count is filled.
type CountMode string

// CountExact counts every matching row, ignoring Limit.
const CountExact CountMode = "exact"

type selectOptions struct {
	count CountMode
	head  bool
}

// SelectOption tunes Select.
type SelectOption func(*selectOptions)

// WithCount fills Response.Count.
func WithCount(mode CountMode) SelectOption {
	return func(o *selectOptions) { o.count = mode }
}

// Head suppresses row data; use it with WithCount for pure counts.
func Head() SelectOption {
	return func(o *selectOptions) { o.head = true }
}

// OrderOption tunes Order.
type OrderOption func(*store.Order)

// Ascending sets the sort direction. Order is ascending by default.
func Ascending(asc bool) OrderOption {
	return func(o *store.Order) { o.Ascending = asc }
}

type inFilter struct {
	column string
	values []any
}

// Response is the envelope every terminal resolves to. Data is nil for
// mutations without Select and when Head was requested; a select that
// matches nothing yields an empty, non-nil Data.
type Response struct {
	Data  []store.Record `json:"data"`
	Count *int           `json:"count,omitempty"`
	Error *Error         `json:"error"`
}

// Err returns Error as a plain error, nil when the query succeeded.
func (r Response) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// Builder is single use: a second Execute returns an error envelope.
type Builder struct {
	engine Engine
	table  string

	op      Op
	filters store.Filters
	ins     []inFilter

	fields    []string
	returning bool
	count     CountMode
	head      bool

	values []store.Record
	patch  store.Record

	consumed bool
}

// New returns a select-all builder for table.
func New(engine Engine, table string) *Builder {
	return &Builder{engine: engine, table: table}
}

// Select sets the projection. On a mutation it also asks for the affected
// rows back. fields is "*", empty, or a comma separated column list.
func (b *Builder) Select(fields string, opts ...SelectOption) *Builder {
	b.fields = parseFields(fields)
	if b.op != OpSelect {
		b.returning = true
	}
	var o selectOptions
	for _, opt := range opts {
		opt(&o)
	}
	b.count, b.head = o.count, o.head
	return b
}

// Insert turns the builder into an upsert of records.
func (b *Builder) Insert(records ...store.Record) *Builder {
	b.op = OpInsert
	b.values = append(b.values, records...)
	return b
}

// Update turns the builder into a shallow merge of patch onto every
// matching row.
func (b *Builder) Update(patch store.Record) *Builder {
	b.op = OpUpdate
	b.patch = patch
	return b
}

// Delete turns the builder into a delete of every matching row.
func (b *Builder) Delete() *Builder {
	b.op = OpDelete
	return b
}

func (b *Builder) Eq(column string, value any) *Builder {
	b.filters.Eq = set(b.filters.Eq, column, value)
	return b
}

func (b *Builder) Gt(column string, value any) *Builder {
	b.filters.Gt = set(b.filters.Gt, column, value)
	return b
}

func (b *Builder) Gte(column string, value any) *Builder {
	b.filters.Gte = set(b.filters.Gte, column, value)
	return b
}

func (b *Builder) Lt(column string, value any) *Builder {
	b.filters.Lt = set(b.filters.Lt, column, value)
	return b
}

func (b *Builder) Lte(column string, value any) *Builder {
	b.filters.Lte = set(b.filters.Lte, column, value)
	return b
}

// In keeps rows whose column equals one of values. It is evaluated after
// the engine fetch and before Limit. A second In on the same column
// replaces the first.
func (b *Builder) In(column string, values []any) *Builder {
	vals := append([]any(nil), values...)
	for i := range b.ins {
		if b.ins[i].column == column {
			b.ins[i].values = vals
			return b
		}
	}
	b.ins = append(b.ins, inFilter{column: column, values: vals})
	return b
}

// Order sorts by column, ascending unless Ascending(false) is passed. The
// last call wins.
func (b *Builder) Order(column string, opts ...OrderOption) *Builder {
	o := store.Order{Column: column, Ascending: true}
	for _, opt := range opts {
		opt(&o)
	}
	b.filters.OrderBy = &o
	return b
}

// Limit caps the number of rows returned. n <= 0 removes the cap.
func (b *Builder) Limit(n int) *Builder {
	if n < 0 {
		n = 0
	}
	b.filters.Limit = n
	return b
}

// Single narrows the result to one row.
func (b *Builder) Single() *SingleQuery {
	if b.op != OpSelect {
		b.returning = true
	}
	return &SingleQuery{b: b}
}

// Async runs Execute on its own goroutine.
func (b *Builder) Async(ctx context.Context) <-chan Response {
	ch := make(chan Response, 1)
	go func() { ch <- b.Execute(ctx) }()
	return ch
}

// Execute runs the accumulated query. Failures are reported in the
// envelope, never as a panic or a Go error.
func (b *Builder) Execute(ctx context.Context) Response {
	if b.consumed {
		return Response{Error: &Error{Message: msgConsumed}}
	}
	b.consumed = true

	switch b.op {
	case OpInsert:
		return b.execInsert(ctx)
	case OpUpdate:
		return b.execUpdate(ctx)
	case OpDelete:
		return b.execDelete(ctx)
	default:
		return b.execSelect(ctx)
	}
}

func (b *Builder) execSelect(ctx context.Context) Response {
	rows, total, err := b.fetch(ctx, b.filters)
	if err != nil {
		return Response{Error: wrap(err)}
	}
	resp := Response{}
	if b.count != "" {
		resp.Count = &total
	}
	if !b.head {
		resp.Data = b.project(rows)
	}
	return resp
}

// fetch selects through the engine, then applies the in filters and the
// limit. total is the row count before the limit.
func (b *Builder) fetch(ctx context.Context, f store.Filters) ([]store.Record, int, error) {
	limit := f.Limit
	deferLimit := len(b.ins) > 0 || b.count != ""
	if deferLimit {
		f = f.Clone()
		f.Limit = 0
	}
	rows, err := b.engine.Select(ctx, b.table, f)
	if err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []store.Record{}
	}
	rows = b.applyIn(rows)
	total := len(rows)
	if deferLimit && limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, total, nil
}

func (b *Builder) applyIn(rows []store.Record) []store.Record {
	if len(b.ins) == 0 {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if b.matchIn(r) {
			out = append(out, r)
		}
	}
	return out
}

func (b *Builder) matchIn(r store.Record) bool {
	for _, in := range b.ins {
		found := false
		for _, v := range in.values {
			if store.Equal(r[in.column], v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (b *Builder) execInsert(ctx context.Context) Response {
	if len(b.values) == 0 {
		if b.returning {
			return Response{Data: []store.Record{}}
		}
		return Response{}
	}
	rows, err := b.engine.Insert(ctx, b.table, b.values...)
	if err != nil {
		return Response{Error: wrap(err)}
	}
	if !b.returning {
		return Response{}
	}
	return Response{Data: b.project(rows)}
}

func (b *Builder) execUpdate(ctx context.Context) Response {
	scopes, qerr := b.scopes()
	if qerr != nil {
		return Response{Error: qerr}
	}
	for _, f := range scopes {
		if _, err := b.engine.Update(ctx, b.table, b.patch, f); err != nil {
			return Response{Error: wrap(err)}
		}
	}
	if !b.returning {
		return Response{}
	}
	rows, err := b.collect(ctx, scopes)
	if err != nil {
		return Response{Error: wrap(err)}
	}
	return Response{Data: b.project(rows)}
}

func (b *Builder) execDelete(ctx context.Context) Response {
	scopes, qerr := b.scopes()
	if qerr != nil {
		return Response{Error: qerr}
	}
	var gone []store.Record
	if b.returning {
		var err error
		if gone, err = b.collect(ctx, scopes); err != nil {
			return Response{Error: wrap(err)}
		}
	}
	for _, f := range scopes {
		if _, err := b.engine.Delete(ctx, b.table, f); err != nil {
			return Response{Error: wrap(err)}
		}
	}
	if !b.returning {
		return Response{}
	}
	return Response{Data: b.project(gone)}
}

// scopes expands the filters of a mutation into engine filter sets: the
// filters as they are, or one set per value of a single In filter.
// Ordering and limit only shape returned rows.
func (b *Builder) scopes() ([]store.Filters, *Error) {
	base := b.filters.Clone()
	base.OrderBy, base.Limit = nil, 0
	switch len(b.ins) {
	case 0:
		return []store.Filters{base}, nil
	case 1:
		in := b.ins[0]
		out := make([]store.Filters, 0, len(in.values))
		for _, v := range in.values {
			f := base.Clone()
			f.Eq = set(f.Eq, in.column, v)
			out = append(out, f)
		}
		return out, nil
	default:
		return nil, &Error{Message: msgMultipleIns}
	}
}

// collect re-reads the rows of every scope, de-duplicated and shaped by
// the builder's ordering and limit.
func (b *Builder) collect(ctx context.Context, scopes []store.Filters) ([]store.Record, error) {
	seen := make(map[string]struct{})
	var rows []store.Record
	for _, f := range scopes {
		got, err := b.engine.Select(ctx, b.table, f)
		if err != nil {
			return nil, err
		}
		for _, r := range got {
			if _, dup := seen[r.ID()]; dup {
				continue
			}
			seen[r.ID()] = struct{}{}
			rows = append(rows, r)
		}
	}
	shape := store.Filters{OrderBy: b.filters.OrderBy, Limit: b.filters.Limit}
	if shape.OrderBy == nil && len(scopes) > 1 {
		store.SortByID(rows)
	}
	return shape.Apply(rows), nil
}

func (b *Builder) project(rows []store.Record) []store.Record {
	if b.fields == nil {
		return rows
	}
	out := make([]store.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Pick(b.fields)
	}
	return out
}

// parseFields returns nil for "all columns". Embedded resource selections
// such as "items(*)" are not supported locally and are dropped.
func parseFields(fields string) []string {
	var out []string
	for _, f := range strings.Split(fields, ",") {
		f = strings.TrimSpace(f)
		switch {
		case f == "":
			continue
		case f == "*":
			return nil
		case strings.ContainsAny(f, "()"):
			continue
		}
		out = append(out, f)
	}
	return out
}

func set(m map[string]any, k string, v any) map[string]any {
	if m == nil {
		m = make(map[string]any)
	}
	m[k] = v
	return m
}
