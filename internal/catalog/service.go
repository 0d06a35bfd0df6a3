package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"bloom-shop/internal/domain"
	"bloom-shop/internal/notify"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// FeaturedCount is the number of products shown as featured
	FeaturedCount = 6

	loadFailedMessage = "Failed to load products"
)

// Service answers product queries over a Source
type Service struct {
	source   Source
	logger   *zap.Logger
	fallback domain.PriceRange
}

// Option configures a Service
type Option func(*Service)

// WithFallbackPriceRange sets the range reported when no prices are known
func WithFallbackPriceRange(lo, hi decimal.Decimal) Option {
	return func(s *Service) {
		s.fallback = domain.PriceRange{Min: lo, Max: hi}
	}
}

// NewService creates a catalog service. The default fallback price range is
// 0 to 100.
func NewService(source Source, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		source: source,
		logger: logger,
		fallback: domain.PriceRange{
			Min: decimal.Zero,
			Max: decimal.NewFromInt(100),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll returns every product in natural order
func (s *Service) GetAll(ctx context.Context) []domain.Product {
	products, _ := s.list(ctx, "get_all")
	return products
}

// GetByID looks a product up by its textual id. Only the leading integer of
// id is considered, so "12abc" resolves to 12 and "abc" to nothing.
func (s *Service) GetByID(ctx context.Context, id string) (domain.Product, error) {
	n, ok := parseLeadingInt(id)
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return s.GetByIDInt(ctx, n)
}

// GetByIDInt looks a product up by its numeric id
func (s *Service) GetByIDInt(ctx context.Context, id int64) (domain.Product, error) {
	p, found, err := s.source.Get(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get product", zap.Int64("product_id", id), zap.Error(err))
		if !errors.Is(err, ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		return domain.Product{}, err
	}
	if !found {
		return domain.Product{}, ErrProductNotFound
	}
	return p.Clone(), nil
}

// GetByCategory returns the products whose category equals category exactly
func (s *Service) GetByCategory(ctx context.Context, category string) []domain.Product {
	products, _ := s.list(ctx, "get_by_category")
	return keep(products, func(p domain.Product) bool { return p.Category == category })
}

// GetFeatured returns the first FeaturedCount products
func (s *Service) GetFeatured(ctx context.Context) []domain.Product {
	products, _ := s.list(ctx, "get_featured")
	if len(products) > FeaturedCount {
		products = products[:FeaturedCount]
	}
	return products
}

// Search returns products whose name, description or category contains
// query, ignoring case. An empty query matches everything.
func (s *Service) Search(ctx context.Context, query string) []domain.Product {
	products, _ := s.list(ctx, "search")
	needle := strings.ToLower(query)
	return keep(products, func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle)
	})
}

// Filter returns the products matching every active predicate of f
func (s *Service) Filter(ctx context.Context, f Filter) []domain.Product {
	products, _ := s.list(ctx, "filter")
	return keep(products, f.Matches)
}

// Categories returns the distinct categories in order of first appearance
func (s *Service) Categories(ctx context.Context) []string {
	products, _ := s.list(ctx, "categories")
	seen := make(map[string]struct{}, len(products))
	categories := []string{}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// PriceRange returns the lowest and highest price in the catalog, or the
// fallback range when the catalog is empty or cannot be read
func (s *Service) PriceRange(ctx context.Context) domain.PriceRange {
	products, err := s.list(ctx, "price_range")
	if err != nil || len(products) == 0 {
		return s.fallback
	}

	r := domain.PriceRange{Min: products[0].Price, Max: products[0].Price}
	for _, p := range products[1:] {
		if p.Price.LessThan(r.Min) {
			r.Min = p.Price
		}
		if p.Price.GreaterThan(r.Max) {
			r.Max = p.Price
		}
	}
	return r
}

// list loads the catalog. On failure it logs, tells the shopper and returns
// an empty list alongside the error.
func (s *Service) list(ctx context.Context, op string) ([]domain.Product, error) {
	products, err := s.source.List(ctx)
	if err != nil {
		s.logger.Error("Failed to load products", zap.String("operation", op), zap.Error(err))
		notify.FromContext(ctx).Notify(notify.Error(loadFailedMessage))
		return []domain.Product{}, err
	}
	return domain.CloneAll(products), nil
}

func keep(products []domain.Product, pred func(domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// parseLeadingInt reads an optionally signed run of digits after leading
// whitespace and ignores anything that follows
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
