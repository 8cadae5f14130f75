// Package redisstore keeps object-store collections in Redis. A collection
// is one hash (id -> JSON body); each index entry is a set of ids under
// {prefix}:{collection}:idx:{column}:{key}. Writes of one transaction are
// staged in memory and flushed with a single MULTI/EXEC.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pharmapos/internal/schema"
	"pharmapos/internal/store"

	"github.com/redis/go-redis/v9"
)

// Store is a store.Backend over a go-redis client.
type Store struct {
	rdb    *redis.Client
	prefix string

	// serialises Update within this process; Redis has no row locks and
	// nothing here WATCHes, so writers in other processes can interleave
	writeMu sync.Mutex

	mu      sync.RWMutex
	indexes map[string][]string
}

// New wraps a connected client. Keys are namespaced under prefix.
func New(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "pharmacy"
	}
	return &Store{rdb: rdb, prefix: prefix, indexes: make(map[string][]string)}
}

func (s *Store) docsKey(collection string) string {
	return fmt.Sprintf("%s:%s:docs", s.prefix, collection)
}

func (s *Store) indexKey(collection, column, key string) string {
	return fmt.Sprintf("%s:%s:idx:%s:%s", s.prefix, collection, column, key)
}

// Open records the collections; Redis needs no DDL.
func (s *Store) Open(ctx context.Context, collections []schema.Collection) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redisstore: ping: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range collections {
		s.indexes[c.Name] = append([]string(nil), c.Indexes...)
	}
	return nil
}

func (s *Store) View(ctx context.Context, collection string, fn func(tx store.Txn) error) error {
	tx, err := s.begin(ctx, collection, true)
	if err != nil {
		return err
	}
	return fn(tx)
}

func (s *Store) Update(ctx context.Context, collection string, fn func(tx store.Txn) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.begin(ctx, collection, false)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

func (s *Store) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) begin(ctx context.Context, collection string, readOnly bool) (*txn, error) {
	s.mu.RLock()
	indexes, ok := s.indexes[collection]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownCollection, collection)
	}
	return &txn{
		ctx:        ctx,
		s:          s,
		collection: collection,
		indexes:    indexes,
		readOnly:   readOnly,
		pending:    make(map[string]store.Record),
		committed:  make(map[string]store.Record),
	}, nil
}

type txn struct {
	ctx        context.Context
	s          *Store
	collection string
	indexes    []string
	readOnly   bool

	// pending holds staged writes; nil marks a delete
	pending map[string]store.Record
	// committed caches the stored version of every staged id, for index cleanup
	committed map[string]store.Record
}

func (tx *txn) fetch(id string) (store.Record, bool, error) {
	body, err := tx.s.rdb.HGet(tx.ctx, tx.s.docsKey(tx.collection), id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rec, err := store.DecodeRecord([]byte(body))
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (tx *txn) Get(id string) (store.Record, bool, error) {
	if rec, staged := tx.pending[id]; staged {
		if rec == nil {
			return nil, false, nil
		}
		return rec.Clone(), true, nil
	}
	return tx.fetch(id)
}

func (tx *txn) GetAll() ([]store.Record, error) {
	bodies, err := tx.s.rdb.HGetAll(tx.ctx, tx.s.docsKey(tx.collection)).Result()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]store.Record, len(bodies))
	for id, body := range bodies {
		rec, err := store.DecodeRecord([]byte(body))
		if err != nil {
			return nil, err
		}
		byID[id] = rec
	}
	return tx.overlay(byID, func(store.Record) bool { return true }), nil
}

func (tx *txn) GetAllByIndex(index, key string) ([]store.Record, error) {
	if !tx.hasIndex(index) {
		return nil, fmt.Errorf("redisstore: no index %q on %s", index, tx.collection)
	}
	ids, err := tx.s.rdb.SMembers(tx.ctx, tx.s.indexKey(tx.collection, index, key)).Result()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]store.Record, len(ids))
	if len(ids) > 0 {
		bodies, err := tx.s.rdb.HMGet(tx.ctx, tx.s.docsKey(tx.collection), ids...).Result()
		if err != nil {
			return nil, err
		}
		for i, v := range bodies {
			body, ok := v.(string)
			if !ok {
				// index entry outlived its document
				continue
			}
			rec, err := store.DecodeRecord([]byte(body))
			if err != nil {
				return nil, err
			}
			byID[ids[i]] = rec
		}
	}
	return tx.overlay(byID, func(rec store.Record) bool {
		k, ok := store.IndexKey(rec[index])
		return ok && k == key
	}), nil
}

// overlay applies staged writes to a committed snapshot and returns the
// records keep accepts, ordered by id.
func (tx *txn) overlay(byID map[string]store.Record, keep func(store.Record) bool) []store.Record {
	for id, rec := range tx.pending {
		if rec == nil {
			delete(byID, id)
			continue
		}
		byID[id] = rec.Clone()
	}
	out := make([]store.Record, 0, len(byID))
	for _, rec := range byID {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	store.SortByID(out)
	return out
}

func (tx *txn) stage(id string, rec store.Record) error {
	if _, seen := tx.committed[id]; !seen {
		if _, staged := tx.pending[id]; !staged {
			old, _, err := tx.fetch(id)
			if err != nil {
				return err
			}
			tx.committed[id] = old
		}
	}
	tx.pending[id] = rec
	return nil
}

func (tx *txn) Add(rec store.Record) error {
	if tx.readOnly {
		return store.ErrReadOnly
	}
	_, exists, err := tx.Get(rec.ID())
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", store.ErrConstraint, rec.ID())
	}
	return tx.stage(rec.ID(), rec.Clone())
}

func (tx *txn) Put(rec store.Record) error {
	if tx.readOnly {
		return store.ErrReadOnly
	}
	if rec.ID() == "" {
		return errors.New("redisstore: record without id")
	}
	return tx.stage(rec.ID(), rec.Clone())
}

func (tx *txn) Delete(id string) error {
	if tx.readOnly {
		return store.ErrReadOnly
	}
	return tx.stage(id, nil)
}

func (tx *txn) commit() error {
	if len(tx.pending) == 0 {
		return nil
	}
	docs := tx.s.docsKey(tx.collection)
	_, err := tx.s.rdb.TxPipelined(tx.ctx, func(pipe redis.Pipeliner) error {
		for id, rec := range tx.pending {
			if old := tx.committed[id]; old != nil {
				for col, key := range store.IndexKeys(old, tx.indexes) {
					pipe.SRem(tx.ctx, tx.s.indexKey(tx.collection, col, key), id)
				}
			}
			if rec == nil {
				pipe.HDel(tx.ctx, docs, id)
				continue
			}
			body, err := store.EncodeRecord(rec)
			if err != nil {
				return err
			}
			pipe.HSet(tx.ctx, docs, id, body)
			for col, key := range store.IndexKeys(rec, tx.indexes) {
				pipe.SAdd(tx.ctx, tx.s.indexKey(tx.collection, col, key), id)
			}
		}
		return nil
	})
	return err
}

func (tx *txn) hasIndex(index string) bool {
	for _, idx := range tx.indexes {
		if idx == index {
			return true
		}
	}
	return false
}

var _ store.Backend = (*Store)(nil)
