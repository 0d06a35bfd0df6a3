package domain

import (
	"github.com/shopspring/decimal"
)

// Product represents a purchasable item in the flower catalog
type Product struct {
	ID               int64           `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Category         string          `json:"category" db:"category"`
	Price            decimal.Decimal `json:"price" db:"price"`
	Description      string          `json:"description" db:"description"`
	Images           []string        `json:"images" db:"images"`
	InStock          bool            `json:"inStock" db:"in_stock"`
	CareInstructions string          `json:"careInstructions" db:"care_instructions"`
}

// PrimaryImage returns the first image reference or an empty string
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Clone returns a deep copy so callers can never alias a source's slices
func (p Product) Clone() Product {
	if p.Images != nil {
		images := make([]string, len(p.Images))
		copy(images, p.Images)
		p.Images = images
	}
	return p
}

// CloneAll deep-copies a product list
func CloneAll(products []Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}

// PriceRange is the inclusive span of prices across a catalog
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}
