package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princinho/storefront/logger"
	"github.com/princinho/storefront/models"
)

type item struct {
	Name string `json:"name"`
}

func newTestAside(t *testing.T) (*Aside[item], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewAside[item](NewRedisStore(client), "items", 10*time.Minute, logger.Nop()), mr
}

func countingLoader(calls *int, items ...item) func(context.Context) ([]item, error) {
	return func(context.Context) ([]item, error) {
		*calls++
		return items, nil
	}
}

func TestAside_MissThenHit(t *testing.T) {
	ctx := context.Background()
	a, mr := newTestAside(t)
	calls := 0
	load := countingLoader(&calls, item{Name: "a"}, item{Name: "b"})

	got, src, err := a.Get(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, SourceDB, src)
	assert.Len(t, got, 2)
	assert.Equal(t, 10*time.Minute, mr.TTL("items"))

	got, src, err = a.Get(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, src)
	assert.Equal(t, []item{{Name: "a"}, {Name: "b"}}, got)
	assert.Equal(t, 1, calls)
}

func TestAside_EmptyResultIsNotCached(t *testing.T) {
	ctx := context.Background()
	a, mr := newTestAside(t)
	calls := 0

	_, _, err := a.Get(ctx, countingLoader(&calls))
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.False(t, mr.Exists("items"))

	_, _, err = a.Get(ctx, countingLoader(&calls))
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 2, calls)
}

func TestAside_LoaderErrorIsReturned(t *testing.T) {
	a, _ := newTestAside(t)
	boom := errors.New("db down")

	_, _, err := a.Get(context.Background(), func(context.Context) ([]item, error) { return nil, boom })

	assert.ErrorIs(t, err, boom)
}

func TestAside_InvalidateForcesReload(t *testing.T) {
	ctx := context.Background()
	a, mr := newTestAside(t)
	calls := 0
	load := countingLoader(&calls, item{Name: "a"})

	_, _, err := a.Get(ctx, load)
	require.NoError(t, err)

	require.NoError(t, a.Invalidate(ctx))
	assert.False(t, mr.Exists("items"))

	_, src, err := a.Get(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, SourceDB, src)
	assert.Equal(t, 2, calls)
}

func TestAside_UndecodableEntryFallsBackToLoader(t *testing.T) {
	ctx := context.Background()
	a, mr := newTestAside(t)
	require.NoError(t, mr.Set("items", "{not json"))
	calls := 0

	got, src, err := a.Get(ctx, countingLoader(&calls, item{Name: "a"}))

	require.NoError(t, err)
	assert.Equal(t, SourceDB, src)
	assert.Equal(t, []item{{Name: "a"}}, got)
	raw, err := mr.Get("items")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"a"}]`, raw)
}

type downStore struct{}

func (downStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (downStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (downStore) Del(context.Context, string) error {
	return errors.New("connection refused")
}

func TestAside_StoreDownStillServesFromLoader(t *testing.T) {
	ctx := context.Background()
	a := NewAside[item](downStore{}, "items", time.Minute, logger.Nop())
	calls := 0

	got, src, err := a.Get(ctx, countingLoader(&calls, item{Name: "a"}))

	require.NoError(t, err)
	assert.Equal(t, SourceDB, src)
	assert.Len(t, got, 1)
	assert.Error(t, a.Invalidate(ctx))
}
