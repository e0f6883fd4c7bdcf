package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nhle/widgetfeed/internal/model"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// KV is a persistent string key-value store shared by the widget and the
// main application. Concurrent writers are tolerated; the last write wins.
type KV interface {
	// Get returns the value stored at key, or an error wrapping ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// SetMany writes all entries atomically: either every key is updated
	// or none is.
	SetMany(ctx context.Context, entries map[string]string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Store is a KV that owns an underlying connection.
type Store interface {
	KV
	io.Closer
}

// Set writes a single key.
func Set(ctx context.Context, kv KV, key, value string) error {
	return kv.SetMany(ctx, map[string]string{key: value})
}

// Open creates the store selected by cfg.Backend. For SQLite, an empty
// cfg.Path is resolved against dataDir.
func Open(cfg model.StoreConfig, dataDir string) (Store, error) {
	switch cfg.Backend {
	case "", model.BackendSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultDBPath(dataDir)
		}
		return NewSQLiteStore(path)
	case model.BackendRedis:
		return NewRedisStore(RedisOptions{
			Addr:   cfg.RedisAddr,
			DB:     cfg.RedisDB,
			Prefix: cfg.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
