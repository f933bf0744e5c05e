// Package cache implements a read-through cache over a key-value store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/princinho/storefront/logger"
	"github.com/princinho/storefront/models"
)

// ErrMiss is returned by Store.Get when the key holds nothing.
var ErrMiss = errors.New("cache: miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisStore is a Store backed by plain GET, SET EX and DEL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Source tells where Aside.Get found its data.
type Source string

const (
	SourceCache Source = "cache"
	SourceDB    Source = "db"
)

// Aside caches the result of a list query under a single key.
type Aside[T any] struct {
	store Store
	key   string
	ttl   time.Duration
	log   *logger.Logger
}

func NewAside[T any](store Store, key string, ttl time.Duration, log *logger.Logger) *Aside[T] {
	return &Aside[T]{
		store: store,
		key:   key,
		ttl:   ttl,
		log:   log.With("component", "cache", "key", key),
	}
}

// Get returns the cached list or, on a miss, the loader's result. An empty
// result is reported as models.ErrNotFound and not cached. Failures of the
// store itself never fail the call.
func (a *Aside[T]) Get(ctx context.Context, load func(context.Context) ([]T, error)) ([]T, Source, error) {
	raw, err := a.store.Get(ctx, a.key)
	switch {
	case err == nil:
		var items []T
		jerr := json.Unmarshal(raw, &items)
		if jerr == nil {
			return items, SourceCache, nil
		}
		a.log.Warn("discarding undecodable cache entry", "error", jerr)
	case !errors.Is(err, ErrMiss):
		a.log.Warn("cache read failed, falling back to loader", "error", err)
	}

	items, err := load(ctx)
	if err != nil {
		return nil, SourceDB, err
	}
	if len(items) == 0 {
		return nil, SourceDB, models.ErrNotFound
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		a.log.Error("failed to encode cache entry", "error", err)
		return items, SourceDB, nil
	}
	if err := a.store.Set(ctx, a.key, encoded, a.ttl); err != nil {
		a.log.Error("failed to populate cache", "error", err)
	}
	return items, SourceDB, nil
}

// Invalidate drops the cached entry so the next Get reloads it.
func (a *Aside[T]) Invalidate(ctx context.Context) error {
	if err := a.store.Del(ctx, a.key); err != nil {
		return fmt.Errorf("cache: invalidate %s: %w", a.key, err)
	}
	return nil
}
