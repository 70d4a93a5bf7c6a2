package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/model"
)

// MutateFunc computes the next state of a collection from the current one.
// It must not modify current. When changed is false or err is non-nil
// nothing is written.
type MutateFunc func(current []model.Record) (next []model.Record, changed bool, err error)

// Collection is one record type persisted as a JSON array under one key.
// Every mutation reads the whole array, transforms it, and rewrites it.
type Collection struct {
	storage Storage
	key     string
	quota   int
	log     zerolog.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewCollection binds a storage key. quota caps the encoded size in bytes;
// zero or negative disables the cap.
func NewCollection(storage Storage, key string, quota int, log zerolog.Logger) *Collection {
	return &Collection{
		storage: storage,
		key:     key,
		quota:   quota,
		log:     log.With().Str("component", "collection").Str("key", key).Logger(),
	}
}

// Key returns the storage key this collection owns.
func (c *Collection) Key() string {
	return c.key
}

// Load returns the stored records. A missing key, a storage error or an
// undecodable value all yield an empty collection.
func (c *Collection) Load(ctx context.Context) []model.Record {
	data, err := c.storage.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			c.log.Warn().Err(err).Msg("Storage read failed, using empty collection")
		}
		return []model.Record{}
	}

	records, err := decode(data)
	if err != nil {
		c.log.Warn().Err(err).Int("bytes", len(data)).Msg("Stored collection is corrupt, using empty collection")
		return []model.Record{}
	}
	return records
}

// Mutate runs fn against the current state and persists its result.
// The returned slice is decoded from the exact bytes written, so it always
// matches what a later Load returns.
func (c *Collection) Mutate(ctx context.Context, fn MutateFunc) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.Load(ctx)

	next, changed, err := fn(current)
	if err != nil {
		return nil, err
	}
	if !changed {
		return current, nil
	}

	data, err := encode(next)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.key, err)
	}
	if c.quota > 0 && len(data) > c.quota {
		c.log.Error().
			Int("bytes", len(data)).
			Int("quota", c.quota).
			Msg("Write rejected, quota exceeded")
		return nil, fmt.Errorf("write %s (%d bytes, quota %d): %w", c.key, len(data), c.quota, ErrQuotaExceeded)
	}

	if err := c.storage.Put(ctx, c.key, data); err != nil {
		c.log.Error().Err(err).Msg("Storage write failed")
		return nil, fmt.Errorf("write %s: %w", c.key, err)
	}

	persisted, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode written %s: %w", c.key, err)
	}

	c.log.Debug().Int("records", len(persisted)).Int("bytes", len(data)).Msg("Collection written")
	return persisted, nil
}

func encode(records []model.Record) ([]byte, error) {
	if records == nil {
		records = []model.Record{}
	}
	return json.Marshal(records)
}

func decode(data []byte) ([]model.Record, error) {
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}
