package store

import (
	"context"
	"errors"

	"pharmapos/internal/schema"
)

var (
	// ErrConstraint is returned by Txn.Add when the primary key already exists.
	ErrConstraint = errors.New("store: key already exists in the object store")
	// ErrUnknownCollection is returned for collections absent from the registry.
	ErrUnknownCollection = errors.New("store: unknown collection")
	// ErrNotOpen is returned when an operation runs before Open or after Close.
	ErrNotOpen = errors.New("store: database not open")
	// ErrReadOnly is returned by writes inside a View transaction.
	ErrReadOnly = errors.New("store: transaction is read-only")
)

// Backend is an object-store database: named collections of records keyed by
// "id", each with optional secondary indexes. Every transaction is scoped to
// exactly one collection.
type Backend interface {
	// Open creates missing collections and indexes.
	Open(ctx context.Context, collections []schema.Collection) error
	// View runs fn in a read-only transaction.
	View(ctx context.Context, collection string, fn func(tx Txn) error) error
	// Update runs fn in a read-write transaction. Writes become visible
	// only if fn returns nil; they are applied together.
	Update(ctx context.Context, collection string, fn func(tx Txn) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Txn is a transaction on a single collection. Reads observe the
// transaction's own pending writes.
type Txn interface {
	// Get returns the record with the given id, or ok=false.
	Get(id string) (rec Record, ok bool, err error)
	// GetAll returns every record ordered by primary key.
	GetAll() ([]Record, error)
	// GetAllByIndex returns the records whose indexed column equals key
	// (see IndexKey), ordered by primary key.
	GetAllByIndex(index, key string) ([]Record, error)
	// Add creates rec and fails with ErrConstraint if its id exists.
	Add(rec Record) error
	// Put creates or overwrites rec.
	Put(rec Record) error
	// Delete removes the record with the given id. Missing ids are ignored.
	Delete(id string) error
}
