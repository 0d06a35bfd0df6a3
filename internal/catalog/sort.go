package catalog

import (
	"sort"

	"bloom-shop/internal/domain"
)

// SortKey names an ordering for product listings
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByPriceLow  SortKey = "price-low"
	SortByPriceHigh SortKey = "price-high"
)

// SortProducts returns a sorted copy of products. Equal keys keep their
// relative order. An unknown key returns the copy unsorted.
func SortProducts(products []domain.Product, key SortKey) []domain.Product {
	out := domain.CloneAll(products)

	var less func(a, b domain.Product) bool
	switch key {
	case SortByName:
		less = func(a, b domain.Product) bool { return a.Name < b.Name }
	case SortByPriceLow:
		less = func(a, b domain.Product) bool { return a.Price.LessThan(b.Price) }
	case SortByPriceHigh:
		less = func(a, b domain.Product) bool { return a.Price.GreaterThan(b.Price) }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
