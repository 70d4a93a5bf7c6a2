package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/config"
	"github.com/stemsi/lms-admin-mock/internal/store"
)

// Backend is the storage selected by STORAGE_BACKEND plus the connection
// behind it, if any.
type Backend struct {
	Storage store.Storage
	// Redis is set only for the redis backend. The change relay uses it.
	Redis *redis.Client
	Pool  *pgxpool.Pool
}

// Open connects the configured storage backend.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory, "":
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return &Backend{Storage: store.NewMemoryStorage()}, nil

	case config.StorageRedis:
		rdb, err := NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &Backend{Storage: store.NewRedisStorage(rdb), Redis: rdb}, nil

	case config.StoragePostgres:
		pool, err := NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &Backend{Storage: store.NewPostgresStorage(pool), Pool: pool}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Close releases the backend's connection.
func (b *Backend) Close() {
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	if b.Pool != nil {
		b.Pool.Close()
	}
}
