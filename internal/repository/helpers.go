package repository

import (
	"errors"

	"pharmapos/internal/model"
	"pharmapos/internal/query"
)

// ErrNotFound is returned when a lookup by key or unique column misses.
var ErrNotFound = errors.New("record not found")

var queryDesc = query.Ascending(false)

func one[T any](resp query.SingleResponse) (*T, error) {
	if resp.Error != nil {
		if query.IsNotFound(resp.Error) {
			return nil, ErrNotFound
		}
		return nil, resp.Error
	}
	return model.FromRecord[T](resp.Data)
}

func many[T any](resp query.Response) ([]T, error) {
	if resp.Error != nil {
		return nil, resp.Error
	}
	return model.FromRecords[T](resp.Data)
}
