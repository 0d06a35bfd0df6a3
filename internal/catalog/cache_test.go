package catalog

import (
	"context"
	"testing"
	"time"

	"bloom-shop/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSource struct {
	Source
	lists int
}

func (c *countingSource) List(ctx context.Context) ([]domain.Product, error) {
	c.lists++
	return c.Source.List(ctx)
}

func setupCache(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedSourceServesFromRedis(t *testing.T) {
	_, client := setupCache(t)
	inner := &countingSource{Source: NewMemorySource(testCatalog)}
	src := NewCachedSource(inner, client, time.Minute, zap.NewNop())
	ctx := context.Background()

	first, err := src.List(ctx)
	require.NoError(t, err)
	second, err := src.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.lists)
	assert.Equal(t, ids(first), ids(second))
	assert.True(t, second[2].Price.Equal(testCatalog[2].Price))

	p, found, err := src.Get(ctx, 4)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Meadow", p.Name)
}

func TestCachedSourceExpires(t *testing.T) {
	mr, client := setupCache(t)
	inner := &countingSource{Source: NewMemorySource(testCatalog)}
	src := NewCachedSource(inner, client, time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := src.List(ctx)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = src.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.lists)
}

func TestCachedSourceInvalidate(t *testing.T) {
	_, client := setupCache(t)
	inner := &countingSource{Source: NewMemorySource(testCatalog)}
	src := NewCachedSource(inner, client, time.Minute, zap.NewNop())
	ctx := context.Background()

	_, _ = src.List(ctx)
	require.NoError(t, src.Invalidate(ctx))
	_, _ = src.List(ctx)

	assert.Equal(t, 2, inner.lists)
}

func TestCachedSourceFallsThroughWhenRedisIsDown(t *testing.T) {
	mr, client := setupCache(t)
	mr.Close()
	inner := &countingSource{Source: NewMemorySource(testCatalog)}
	src := NewCachedSource(inner, client, time.Minute, zap.NewNop())

	products, err := src.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, products, len(testCatalog))

	_, found, err := src.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	_, client := setupCache(t)
	src := NewCachedSource(failingSource{err: ErrSourceUnavailable}, client, time.Minute, zap.NewNop())

	_, err := src.List(context.Background())

	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, int64(0), client.Exists(context.Background(), productListKey).Val())
}
