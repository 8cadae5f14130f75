// Package sqlstore keeps object-store collections in a SQL database through
// GORM. Every record is one row of the documents table holding its JSON
// body; secondary indexes are rows of document_indexes.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pharmapos/internal/schema"
	"pharmapos/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type document struct {
	Collection string `gorm:"primaryKey;size:64"`
	ID         string `gorm:"primaryKey;size:191"`
	Body       string `gorm:"type:text;not null"`
}

func (document) TableName() string { return "documents" }

type indexEntry struct {
	Collection string `gorm:"primaryKey;size:64;index:idx_document_indexes_doc,priority:1"`
	ColumnName string `gorm:"primaryKey;size:64"`
	IndexKey   string `gorm:"primaryKey;size:191"`
	DocID      string `gorm:"primaryKey;size:191;index:idx_document_indexes_doc,priority:2"`
}

func (indexEntry) TableName() string { return "document_indexes" }

// Store is a store.Backend over a *gorm.DB (postgres or sqlite).
type Store struct {
	db *gorm.DB

	mu      sync.RWMutex
	indexes map[string][]string
}

// New wraps an open GORM connection. Close closes it.
func New(db *gorm.DB) *Store {
	return &Store{db: db, indexes: make(map[string][]string)}
}

// Open migrates the two tables and records each collection's indexes.
// Existing documents are reindexed when an index is added later.
func (s *Store) Open(ctx context.Context, collections []schema.Collection) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&document{}, &indexEntry{}); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range collections {
		s.indexes[c.Name] = append([]string(nil), c.Indexes...)
	}
	for _, c := range collections {
		if err := s.reindex(db, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) reindex(db *gorm.DB, c schema.Collection) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var stale int64
		if err := tx.Model(&indexEntry{}).
			Where("collection = ? AND column_name NOT IN ?", c.Name, append([]string{""}, c.Indexes...)).
			Count(&stale).Error; err != nil {
			return err
		}
		var docs, indexed int64
		if err := tx.Model(&document{}).Where("collection = ?", c.Name).Count(&docs).Error; err != nil {
			return err
		}
		if err := tx.Model(&indexEntry{}).Where("collection = ?", c.Name).
			Distinct("doc_id").Count(&indexed).Error; err != nil {
			return err
		}
		if stale == 0 && (len(c.Indexes) == 0 || docs == indexed) {
			return nil
		}

		var rows []document
		if err := tx.Where("collection = ?", c.Name).Find(&rows).Error; err != nil {
			return err
		}
		if err := tx.Where("collection = ?", c.Name).Delete(&indexEntry{}).Error; err != nil {
			return err
		}
		t := &txn{db: tx, collection: c.Name, indexes: c.Indexes}
		for _, d := range rows {
			rec, err := store.DecodeRecord([]byte(d.Body))
			if err != nil {
				return err
			}
			if err := t.writeIndexes(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) View(ctx context.Context, collection string, fn func(tx store.Txn) error) error {
	indexes, err := s.lookup(collection)
	if err != nil {
		return err
	}
	return fn(&txn{db: s.db.WithContext(ctx), collection: collection, indexes: indexes, readOnly: true})
}

func (s *Store) Update(ctx context.Context, collection string, fn func(tx store.Txn) error) error {
	indexes, err := s.lookup(collection)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txn{db: tx, collection: collection, indexes: indexes})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) lookup(collection string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	indexes, ok := s.indexes[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownCollection, collection)
	}
	return indexes, nil
}

type txn struct {
	db         *gorm.DB
	collection string
	indexes    []string
	readOnly   bool
}

func decodeAll(docs []document) ([]store.Record, error) {
	out := make([]store.Record, 0, len(docs))
	for _, d := range docs {
		rec, err := store.DecodeRecord([]byte(d.Body))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (tx *txn) Get(id string) (store.Record, bool, error) {
	var docs []document
	err := tx.db.Where("collection = ? AND id = ?", tx.collection, id).Limit(1).Find(&docs).Error
	if err != nil {
		return nil, false, err
	}
	if len(docs) == 0 {
		return nil, false, nil
	}
	rec, err := store.DecodeRecord([]byte(docs[0].Body))
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (tx *txn) GetAll() ([]store.Record, error) {
	var docs []document
	if err := tx.db.Where("collection = ?", tx.collection).Order("id").Find(&docs).Error; err != nil {
		return nil, err
	}
	return decodeAll(docs)
}

func (tx *txn) GetAllByIndex(index, key string) ([]store.Record, error) {
	if !tx.hasIndex(index) {
		return nil, fmt.Errorf("sqlstore: no index %q on %s", index, tx.collection)
	}
	var docs []document
	err := tx.db.Model(&document{}).
		Joins("JOIN document_indexes di ON di.collection = documents.collection AND di.doc_id = documents.id").
		Where("documents.collection = ? AND di.column_name = ? AND di.index_key = ?", tx.collection, index, key).
		Order("documents.id").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return decodeAll(docs)
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
	return tx.write(rec)
}

func (tx *txn) Put(rec store.Record) error {
	if tx.readOnly {
		return store.ErrReadOnly
	}
	return tx.write(rec)
}

func (tx *txn) write(rec store.Record) error {
	if rec.ID() == "" {
		return errors.New("sqlstore: record without id")
	}
	body, err := store.EncodeRecord(rec)
	if err != nil {
		return err
	}
	doc := document{Collection: tx.collection, ID: rec.ID(), Body: string(body)}
	err = tx.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"body"}),
	}).Create(&doc).Error
	if err != nil {
		return err
	}
	if err := tx.dropIndexes(rec.ID()); err != nil {
		return err
	}
	return tx.writeIndexes(rec)
}

func (tx *txn) writeIndexes(rec store.Record) error {
	keys := store.IndexKeys(rec, tx.indexes)
	if len(keys) == 0 {
		return nil
	}
	entries := make([]indexEntry, 0, len(keys))
	for col, key := range keys {
		entries = append(entries, indexEntry{Collection: tx.collection, ColumnName: col, IndexKey: key, DocID: rec.ID()})
	}
	return tx.db.Create(&entries).Error
}

func (tx *txn) dropIndexes(id string) error {
	return tx.db.Where("collection = ? AND doc_id = ?", tx.collection, id).Delete(&indexEntry{}).Error
}

func (tx *txn) Delete(id string) error {
	if tx.readOnly {
		return store.ErrReadOnly
	}
	if err := tx.dropIndexes(id); err != nil {
		return err
	}
	return tx.db.Where("collection = ? AND id = ?", tx.collection, id).Delete(&document{}).Error
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
