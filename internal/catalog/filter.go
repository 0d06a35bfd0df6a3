package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"bloom-shop/internal/domain"

	"github.com/shopspring/decimal"
)

// AllCategories is the category value that disables category filtering
const AllCategories = "all"

// Filter is a conjunction of optional predicates. Nil or empty fields do not
// constrain the result.
type Filter struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  bool
}

// Matches reports whether p satisfies every active predicate
func (f Filter) Matches(p domain.Product) bool {
	if f.Category != "" && f.Category != AllCategories && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.InStock && !p.InStock {
		return false
	}
	return true
}

// ParseFilter reads category, minPrice, maxPrice and inStock from query
// values. Malformed values drop their predicate instead of failing.
func ParseFilter(q url.Values) Filter {
	f := Filter{Category: strings.TrimSpace(q.Get("category"))}

	if v, err := decimal.NewFromString(strings.TrimSpace(q.Get("minPrice"))); err == nil {
		f.MinPrice = &v
	}
	if v, err := decimal.NewFromString(strings.TrimSpace(q.Get("maxPrice"))); err == nil {
		f.MaxPrice = &v
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(q.Get("inStock"))); err == nil {
		f.InStock = v
	}
	return f
}

// IsZero reports whether the filter constrains nothing
func (f Filter) IsZero() bool {
	return (f.Category == "" || f.Category == AllCategories) &&
		f.MinPrice == nil && f.MaxPrice == nil && !f.InStock
}
