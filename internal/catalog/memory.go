package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"bloom-shop/internal/domain"
)

//go:embed data/products.json
var datasetFS embed.FS

// MemorySource serves a fixed product list held in memory
type MemorySource struct {
	mu       sync.RWMutex
	products []domain.Product
	byID     map[int64]int
}

// NewMemorySource creates a source over products, kept in the given order
func NewMemorySource(products []domain.Product) *MemorySource {
	s := &MemorySource{
		products: domain.CloneAll(products),
		byID:     make(map[int64]int, len(products)),
	}
	for i, p := range s.products {
		if _, dup := s.byID[p.ID]; !dup {
			s.byID[p.ID] = i
		}
	}
	return s
}

// LoadMemorySource reads a JSON product array from path. An empty path loads
// the dataset bundled with the binary.
func LoadMemorySource(path string) (*MemorySource, error) {
	products, err := LoadDataset(path)
	if err != nil {
		return nil, err
	}
	return NewMemorySource(products), nil
}

// LoadDataset decodes the product dataset at path, or the bundled one when
// path is empty
func LoadDataset(path string) ([]domain.Product, error) {
	var (
		raw []byte
		err error
	)
	if path == "" {
		raw, err = datasetFS.ReadFile("data/products.json")
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product dataset: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("failed to decode product dataset: %w", err)
	}
	return products, nil
}

// List returns a copy of every product in dataset order
func (s *MemorySource) List(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneAll(s.products), nil
}

// Get returns a copy of the product with id
func (s *MemorySource) Get(ctx context.Context, id int64) (domain.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false, nil
	}
	return s.products[i].Clone(), true, nil
}
