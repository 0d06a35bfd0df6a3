package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bloom-shop/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const productListKey = "catalog:products"

// CachedSource keeps the product list of another source in Redis for a fixed
// TTL. Any Redis failure falls through to the wrapped source.
type CachedSource struct {
	next   Source
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource wraps next with a Redis cache
func NewCachedSource(next Source, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// List serves the cached product list, refilling it from the wrapped source on a miss
func (s *CachedSource) List(ctx context.Context) ([]domain.Product, error) {
	if products, ok := s.cached(ctx); ok {
		return products, nil
	}

	products, err := s.next.List(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(products); err == nil {
		if err := s.client.Set(ctx, productListKey, raw, s.ttl).Err(); err != nil {
			s.logger.Warn("Failed to cache product list", zap.Error(err))
		}
	}
	return products, nil
}

// Get scans the cached list before asking the wrapped source
func (s *CachedSource) Get(ctx context.Context, id int64) (domain.Product, bool, error) {
	if products, ok := s.cached(ctx); ok {
		for _, p := range products {
			if p.ID == id {
				return p, true, nil
			}
		}
	}
	return s.next.Get(ctx, id)
}

// Invalidate drops the cached list
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.client.Del(ctx, productListKey).Err()
}

func (s *CachedSource) cached(ctx context.Context) ([]domain.Product, bool) {
	raw, err := s.client.Get(ctx, productListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Product cache unavailable", zap.Error(err))
		}
		return nil, false
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		s.logger.Warn("Discarding corrupt product cache entry", zap.Error(err))
		return nil, false
	}
	return products, true
}
