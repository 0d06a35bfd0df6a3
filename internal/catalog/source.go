package catalog

import (
	"context"
	"errors"

	"bloom-shop/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSourceUnavailable = errors.New("product source unavailable")
)

// Source supplies the full product list and single product lookups.
// List returns products in the catalog's natural order. Get reports false
// when no product has the given id.
type Source interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, bool, error)
}
