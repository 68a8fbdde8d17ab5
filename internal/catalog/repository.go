package catalog

import (
	"context"
	"sync"
)

// Repository defines read access to the dish catalog.
type Repository interface {
	ListAll(ctx context.Context) ([]Dish, error)
}

// InMemoryRepository serves a fixed catalog from memory, used in tests and
// when no database is configured.
type InMemoryRepository struct {
	mu     sync.RWMutex
	dishes []Dish
}

// NewInMemoryRepository creates an in-memory catalog seeded with the given dishes.
func NewInMemoryRepository(dishes ...Dish) *InMemoryRepository {
	return &InMemoryRepository{dishes: dishes}
}

// ListAll returns a copy of the full catalog.
func (r *InMemoryRepository) ListAll(ctx context.Context) ([]Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Dish, len(r.dishes))
	copy(out, r.dishes)
	return out, nil
}
