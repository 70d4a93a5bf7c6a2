// Package store persists record collections as whole JSON blobs in a
// key/value Storage. Reads fail soft (empty collection), writes fail loud.
package store

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned by Storage.Get when the key has never been written.
	ErrKeyNotFound = errors.New("storage key not found")

	// ErrQuotaExceeded is returned when an encoded collection is larger than
	// the configured quota. Nothing is written.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Storage is the key/value capability a Collection is built on.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
