// Package cache is an optional read-through cache for expensive report
// queries. Callers must tolerate a nil or always-missing store: the cache is
// an optimization, never a correctness dependency.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get for an absent or expired entry.
var ErrMiss = errors.New("cache miss")

// Store is the cache contract. Backends are swappable (file or redis).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Remember returns the cached value for key, or calls producer, stores the
// result for ttl, and returns it. Store failures degrade to a plain producer
// call; they are never surfaced.
func Remember[T any](ctx context.Context, store Store, key string, ttl time.Duration, producer func() (T, error)) (T, error) {
	if store != nil {
		if raw, err := store.Get(ctx, key); err == nil {
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			// Undecodable entry: drop it and fall through to the producer.
			_ = store.Delete(ctx, key)
		}
	}

	value, err := producer()
	if err != nil {
		return value, err
	}

	if store != nil {
		if raw, err := json.Marshal(value); err == nil {
			_ = store.Set(ctx, key, raw, ttl)
		}
	}
	return value, nil
}

// QueryKey derives a cache key from a logical database name, a query and its
// parameters.
func QueryKey(database, query string, params ...any) string {
	sum := md5.Sum([]byte(database + query + fmt.Sprint(params...)))
	return "query_" + hex.EncodeToString(sum[:])
}
