// Package store is the storage engine: generic select, insert, update,
// delete and count over named collections of schemaless records, on top of
// a pluggable object-store Backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"pharmapos/internal/schema"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TimestampLayout is how the engine stamps created_at / updated_at. Fixed
// width, so stamps sort chronologically as strings.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// maxCascadeDepth bounds DeleteCascade against cyclic relations.
const maxCascadeDepth = 8

// NewID builds a primary key of the form {prefix}_{unix-millis}_{suffix}.
func NewID(prefix string, now time.Time) string {
	return sequencedID(prefix, now, 0)
}

// idSeqSpan is how many ids one millisecond can order: four base-36 digits.
const idSeqSpan = 36 * 36 * 36 * 36

// sequencedID leads the 9-char suffix with seq as four base-36 digits, so
// ids minted within one millisecond sort in the order they were minted.
func sequencedID(prefix string, now time.Time, seq uint64) string {
	digits := strconv.FormatUint(seq%idSeqSpan, 36)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
	return fmt.Sprintf("%s_%d_%s%s%s", prefix, now.UnixMilli(), strings.Repeat("0", 4-len(digits)), digits, random)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for timestamps and ids.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces NewID.
func WithIDGenerator(gen func(table string, now time.Time) string) Option {
	return func(e *Engine) { e.newID = gen }
}

// Engine executes generic CRUD against a Backend. Each call runs in its
// own single-collection transaction; calls on different collections are
// never atomic together.
type Engine struct {
	backend  Backend
	registry *schema.Registry
	now      func() time.Time
	newID    func(table string, now time.Time) string

	mu     sync.RWMutex
	opened bool

	idMu       sync.Mutex
	lastMillis int64
	seq        uint64
}

// NewEngine wires an engine to a backend. Call Open before use.
func NewEngine(backend Backend, registry *schema.Registry, opts ...Option) *Engine {
	e := &Engine{
		backend:  backend,
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open creates the registry's collections and indexes on the backend.
func (e *Engine) Open(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.opened {
		return nil
	}
	if err := e.backend.Open(ctx, e.registry.Collections()); err != nil {
		return fmt.Errorf("store: open: %w", err)
	}
	e.opened = true
	log.Info().Strs("collections", e.registry.Names()).Msg("store: opened")
	return nil
}

// Close releases the backend. The engine cannot be reopened.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.opened {
		return nil
	}
	e.opened = false
	log.Info().Msg("store: closing")
	return e.backend.Close()
}

// Ping checks backend connectivity.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.backend.Ping(ctx)
}

// Registry returns the collection registry.
func (e *Engine) Registry() *schema.Registry { return e.registry }

func (e *Engine) ready() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.opened {
		return ErrNotOpen
	}
	return nil
}

func (e *Engine) collection(table string) (schema.Collection, error) {
	if err := e.ready(); err != nil {
		return schema.Collection{}, err
	}
	col, ok := e.registry.Lookup(table)
	if !ok {
		return schema.Collection{}, fmt.Errorf("%w: %q", ErrUnknownCollection, table)
	}
	return col, nil
}

func (e *Engine) timestamp() string {
	return e.now().UTC().Format(TimestampLayout)
}

// Select returns the records of table matching f, ordered and limited as f
// asks. No match yields an empty, non-nil slice.
func (e *Engine) Select(ctx context.Context, table string, f Filters) ([]Record, error) {
	col, err := e.collection(table)
	if err != nil {
		return nil, err
	}
	var rows []Record
	err = e.backend.View(ctx, table, func(tx Txn) error {
		rows, err = scan(tx, col, f)
		return err
	})
	if err != nil {
		log.Debug().Err(err).Str("table", table).Msg("store: select failed")
		return nil, err
	}
	return f.Apply(rows), nil
}

// Insert creates or overwrites each record in one transaction. Missing ids
// and timestamps are filled in; the filled records are returned.
func (e *Engine) Insert(ctx context.Context, table string, records ...Record) ([]Record, error) {
	if _, err := e.collection(table); err != nil {
		return nil, err
	}
	now := e.now()
	stamp := now.UTC().Format(TimestampLayout)
	out := make([]Record, len(records))
	for i, r := range records {
		rec := r.Clone()
		if isAbsent(rec["id"]) {
			rec["id"] = e.mintID(table, now)
		} else if rec.ID() == "" {
			id, err := stringID(rec["id"])
			if err != nil {
				return nil, fmt.Errorf("store: insert %s: %w", table, err)
			}
			rec["id"] = id
		}
		if isAbsent(rec["created_at"]) {
			rec["created_at"] = stamp
		}
		if isAbsent(rec["updated_at"]) {
			rec["updated_at"] = stamp
		}
		out[i] = rec
	}

	err := e.backend.Update(ctx, table, func(tx Txn) error {
		for _, rec := range out {
			if err := upsert(tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("table", table).Int("records", len(out)).Msg("store: insert failed")
		return nil, err
	}
	return out, nil
}

// mintID numbers ids within a millisecond so a batch keeps its order.
func (e *Engine) mintID(table string, now time.Time) string {
	if e.newID != nil {
		return e.newID(table, now)
	}
	e.idMu.Lock()
	ms := now.UnixMilli()
	if ms == e.lastMillis {
		e.seq++
	} else {
		e.lastMillis, e.seq = ms, 0
	}
	seq := e.seq
	e.idMu.Unlock()
	return sequencedID(table, now, seq)
}

// stringID accepts numeric ids by their decimal text; keys are always strings.
func stringID(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return "", fmt.Errorf("unsupported id type %T", v)
	}
}

func upsert(tx Txn, rec Record) error {
	_, exists, err := tx.Get(rec.ID())
	if err != nil {
		return err
	}
	if exists {
		return tx.Put(rec)
	}
	if err := tx.Add(rec); err != nil {
		if errors.Is(err, ErrConstraint) {
			return tx.Put(rec)
		}
		return err
	}
	return nil
}

// Update shallow-merges patch into every record matching f and stamps
// updated_at. The primary key is never changed. It returns how many records
// were written; zero matches is not an error.
func (e *Engine) Update(ctx context.Context, table string, patch Record, f Filters) (int, error) {
	col, err := e.collection(table)
	if err != nil {
		return 0, err
	}
	stamp := e.timestamp()
	n := 0
	err = e.backend.Update(ctx, table, func(tx Txn) error {
		rows, err := scan(tx, col, f)
		if err != nil {
			return err
		}
		for _, row := range f.Apply(rows) {
			merged := row.Clone()
			for k, v := range patch {
				if k == schema.PrimaryKey {
					continue
				}
				merged[k] = v
			}
			merged["updated_at"] = stamp
			if err := tx.Put(merged); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("table", table).Msg("store: update failed")
		return 0, err
	}
	return n, nil
}

// Delete removes every record matching f. Zero matches is not an error.
func (e *Engine) Delete(ctx context.Context, table string, f Filters) (int, error) {
	col, err := e.collection(table)
	if err != nil {
		return 0, err
	}
	n := 0
	err = e.backend.Update(ctx, table, func(tx Txn) error {
		rows, err := scan(tx, col, f)
		if err != nil {
			return err
		}
		for _, row := range f.Apply(rows) {
			if err := tx.Delete(row.ID()); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("table", table).Msg("store: delete failed")
		return 0, err
	}
	return n, nil
}

// Count returns the number of records Select would return.
func (e *Engine) Count(ctx context.Context, table string, f Filters) (int, error) {
	rows, err := e.Select(ctx, table, f)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// DeleteCascade deletes the records matching f together with their
// dependents declared as registry relations, children first. Every
// collection is its own transaction: a failure stops the walk and leaves
// already-deleted dependents deleted.
func (e *Engine) DeleteCascade(ctx context.Context, table string, f Filters) (int, error) {
	return e.deleteCascade(ctx, table, f, 0)
}

func (e *Engine) deleteCascade(ctx context.Context, table string, f Filters, depth int) (int, error) {
	if depth > maxCascadeDepth {
		return 0, fmt.Errorf("store: cascade from %q exceeds depth %d", table, maxCascadeDepth)
	}
	col, err := e.collection(table)
	if err != nil {
		return 0, err
	}
	total := 0
	if len(col.Relations) > 0 {
		parents, err := e.Select(ctx, table, f)
		if err != nil {
			return 0, err
		}
		for _, rel := range col.Relations {
			for _, p := range parents {
				n, err := e.deleteCascade(ctx, rel.Child, Where(rel.Column, p.ID()), depth+1)
				if err != nil {
					return total, fmt.Errorf("store: cascade %s.%s: %w", rel.Child, rel.Column, err)
				}
				total += n
			}
		}
	}
	n, err := e.Delete(ctx, table, f)
	return total + n, err
}

// scan loads the candidate rows for f, through a secondary index when one
// of the equality columns has one. Callers still run f over the result.
func scan(tx Txn, col schema.Collection, f Filters) ([]Record, error) {
	if column, key, ok := pickIndex(col, f.Eq); ok {
		return tx.GetAllByIndex(column, key)
	}
	return tx.GetAll()
}

func pickIndex(col schema.Collection, eq map[string]any) (string, string, bool) {
	if len(eq) == 0 {
		return "", "", false
	}
	columns := make([]string, 0, len(eq))
	for c := range eq {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	for _, c := range columns {
		if c == schema.PrimaryKey || !col.HasIndex(c) {
			continue
		}
		if key, ok := IndexKey(eq[c]); ok {
			return c, key, true
		}
	}
	return "", "", false
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
