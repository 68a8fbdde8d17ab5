package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/providoor/whatsapp-bot/internal/catalog"
)

// ErrNotFound is returned when a user has no orders yet.
var ErrNotFound = errors.New("orders: not found")

// Repository defines the interface for order storage.
type Repository interface {
	// Create stores a new order for the user with one line per dish.
	Create(ctx context.Context, userID uuid.UUID, status string, dishes []catalog.Dish) (*Order, error)
	// LatestByUser returns the user's most recent order by order time, or
	// ErrNotFound when the user has none.
	LatestByUser(ctx context.Context, userID uuid.UUID) (*Order, error)
	// Lines returns the order's line items with dish details.
	Lines(ctx context.Context, orderID uuid.UUID) ([]Line, error)
}

// InMemoryRepository stores orders in memory, used in tests and when no
// database is configured.
type InMemoryRepository struct {
	mu     sync.Mutex
	orders []*Order
	lines  map[uuid.UUID][]Line
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{lines: make(map[uuid.UUID][]Line)}
}

// Create stores the order and its lines.
func (r *InMemoryRepository) Create(ctx context.Context, userID uuid.UUID, status string, dishes []catalog.Dish) (*Order, error) {
	order := &Order{
		ID:        uuid.New(),
		UserID:    userID,
		OrderTime: time.Now().UTC(),
		Status:    status,
	}

	lines := make([]Line, 0, len(dishes))
	for _, dish := range dishes {
		lines = append(lines, Line{
			DishID:      dish.ID,
			Name:        dish.Name,
			Description: dish.Description,
			Price:       dish.Price,
			Course:      dish.Course,
			ChefName:    dish.ChefName,
			Dietaries:   dish.Dietaries,
		})
	}

	r.mu.Lock()
	r.orders = append(r.orders, order)
	r.lines[order.ID] = lines
	r.mu.Unlock()

	copied := *order
	return &copied, nil
}

// LatestByUser scans for the most recent order by order time.
func (r *InMemoryRepository) LatestByUser(ctx context.Context, userID uuid.UUID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *Order
	for _, order := range r.orders {
		if order.UserID != userID {
			continue
		}
		if latest == nil || order.OrderTime.After(latest.OrderTime) {
			latest = order
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

// Lines returns the stored line items for an order.
func (r *InMemoryRepository) Lines(ctx context.Context, orderID uuid.UUID) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.lines[orderID]
	out := make([]Line, len(lines))
	copy(out, lines)
	return out, nil
}
