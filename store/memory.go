package store

import (
	"context"
	"sync"
	"time"

	"github.com/floracart/scraper/models"
)

// MemoryStore is an in-memory ProductStore. It backs tests and local
// development; real deployments use the SQLite store.
type MemoryStore struct {
	mu       sync.Mutex
	products []*models.Product
	nextID   int
}

// NewMemoryStore returns an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// GetAll returns a copy of the product list in insertion order.
func (s *MemoryStore) GetAll(_ context.Context) ([]*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Product, len(s.products))
	for i, p := range s.products {
		clone := *p
		out[i] = &clone
	}
	return out, nil
}

// GetByID returns the product with the given id, or nil.
func (s *MemoryStore) GetByID(_ context.Context, id int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

// GetBySlug returns the product with the given slug, or nil.
func (s *MemoryStore) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

// Create assigns an id and timestamps and stores the product.
func (s *MemoryStore) Create(_ context.Context, p *models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := *p
	stored.ID = s.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.nextID++
	s.products = append(s.products, &stored)

	clone := stored
	return &clone, nil
}

// Update applies the patch to the product with the given id and returns the
// updated product, or nil when the id is unknown.
func (s *MemoryStore) Update(_ context.Context, id int, patch ProductPatch) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.ID != id {
			continue
		}
		if patch.Image != nil {
			p.Image = *patch.Image
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Stock != nil {
			p.Stock = *patch.Stock
		}
		p.UpdatedAt = time.Now()
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

// MemoryCategories is a fixed in-memory CategoryStore.
type MemoryCategories struct {
	categories []*models.Category
}

// NewMemoryCategories builds a category store from the given categories.
func NewMemoryCategories(categories ...*models.Category) *MemoryCategories {
	return &MemoryCategories{categories: categories}
}

// GetAll returns all categories.
func (s *MemoryCategories) GetAll(_ context.Context) ([]*models.Category, error) {
	out := make([]*models.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

// GetByID returns the category with the given id, or nil.
func (s *MemoryCategories) GetByID(_ context.Context, id int) (*models.Category, error) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}
