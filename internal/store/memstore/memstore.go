// Package memstore is an in-process store.Backend. Data lives for the life
// of the process; it backs unit tests and STORE_DRIVER=memory.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"pharmapos/internal/schema"
	"pharmapos/internal/store"
)

type table struct {
	indexes []string
	rows    map[string]store.Record
	// index column -> index key -> ids
	byIndex map[string]map[string]map[string]struct{}
}

func newTable(indexes []string) *table {
	t := &table{
		indexes: append([]string(nil), indexes...),
		rows:    make(map[string]store.Record),
		byIndex: make(map[string]map[string]map[string]struct{}, len(indexes)),
	}
	for _, idx := range indexes {
		t.byIndex[idx] = make(map[string]map[string]struct{})
	}
	return t
}

func (t *table) put(rec store.Record) {
	t.remove(rec.ID())
	t.rows[rec.ID()] = rec
	for col, key := range store.IndexKeys(rec, t.indexes) {
		ids, ok := t.byIndex[col][key]
		if !ok {
			ids = make(map[string]struct{})
			t.byIndex[col][key] = ids
		}
		ids[rec.ID()] = struct{}{}
	}
}

func (t *table) remove(id string) {
	old, ok := t.rows[id]
	if !ok {
		return
	}
	for col, key := range store.IndexKeys(old, t.indexes) {
		ids := t.byIndex[col][key]
		delete(ids, id)
		if len(ids) == 0 {
			delete(t.byIndex[col], key)
		}
	}
	delete(t.rows, id)
}

// Store is a map-backed object store guarded by one RWMutex. Update
// transactions are serialised and staged, so a failing fn leaves no trace.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
	closed bool
}

// New returns an empty store.
func New() *Store {
	return &Store{tables: make(map[string]*table)}
}

func (s *Store) Open(_ context.Context, collections []schema.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = false
	for _, c := range collections {
		if _, ok := s.tables[c.Name]; !ok {
			s.tables[c.Name] = newTable(c.Indexes)
		}
	}
	return nil
}

func (s *Store) View(ctx context.Context, collection string, fn func(tx store.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.table(collection)
	if err != nil {
		return err
	}
	return fn(&txn{base: t, readOnly: true})
}

func (s *Store) Update(ctx context.Context, collection string, fn func(tx store.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.table(collection)
	if err != nil {
		return err
	}
	tx := &txn{base: t, pending: make(map[string]store.Record)}
	if err := fn(tx); err != nil {
		return err
	}
	for id, rec := range tx.pending {
		if rec == nil {
			t.remove(id)
			continue
		}
		t.put(rec)
	}
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrNotOpen
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) table(name string) (*table, error) {
	if s.closed {
		return nil, store.ErrNotOpen
	}
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownCollection, name)
	}
	return t, nil
}

// txn overlays pending writes on the committed table. A nil entry in
// pending marks a delete.
type txn struct {
	base     *table
	pending  map[string]store.Record
	readOnly bool
}

func (tx *txn) lookup(id string) (store.Record, bool) {
	if rec, staged := tx.pending[id]; staged {
		return rec, rec != nil
	}
	rec, ok := tx.base.rows[id]
	return rec, ok
}

func (tx *txn) Get(id string) (store.Record, bool, error) {
	rec, ok := tx.lookup(id)
	if !ok {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

func (tx *txn) GetAll() ([]store.Record, error) {
	ids := make(map[string]struct{}, len(tx.base.rows)+len(tx.pending))
	for id := range tx.base.rows {
		ids[id] = struct{}{}
	}
	for id := range tx.pending {
		ids[id] = struct{}{}
	}
	return tx.collect(ids), nil
}

func (tx *txn) GetAllByIndex(index, key string) ([]store.Record, error) {
	idx, ok := tx.base.byIndex[index]
	if !ok {
		return nil, fmt.Errorf("memstore: no index %q", index)
	}
	ids := make(map[string]struct{})
	for id := range idx[key] {
		ids[id] = struct{}{}
	}
	// staged rows may have moved into or out of this key
	for id := range tx.pending {
		ids[id] = struct{}{}
	}
	out := tx.collect(ids)
	filtered := out[:0]
	for _, rec := range out {
		if k, ok := store.IndexKey(rec[index]); ok && k == key {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

func (tx *txn) collect(ids map[string]struct{}) []store.Record {
	out := make([]store.Record, 0, len(ids))
	for id := range ids {
		if rec, ok := tx.lookup(id); ok {
			out = append(out, rec.Clone())
		}
	}
	store.SortByID(out)
	return out
}

func (tx *txn) Add(rec store.Record) error {
	if tx.readOnly {
		return store.ErrReadOnly
	}
	if _, exists := tx.lookup(rec.ID()); exists {
		return fmt.Errorf("%w: %s", store.ErrConstraint, rec.ID())
	}
	tx.pending[rec.ID()] = rec.Clone()
	return nil
}

func (tx *txn) Put(rec store.Record) error {
	if tx.readOnly {
		return store.ErrReadOnly
	}
	if rec.ID() == "" {
		return fmt.Errorf("memstore: record without id")
	}
	tx.pending[rec.ID()] = rec.Clone()
	return nil
}

func (tx *txn) Delete(id string) error {
	if tx.readOnly {
		return store.ErrReadOnly
	}
	tx.pending[id] = nil
	return nil
}

var _ store.Backend = (*Store)(nil)
