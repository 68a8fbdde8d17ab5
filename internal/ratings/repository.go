package ratings

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateRating is returned when a rating already exists for the
// (user, order) pair. Callers treat it as a recoverable no-op, never a crash.
var ErrDuplicateRating = errors.New("ratings: rating already exists for this order")

// Repository defines the interface for rating storage.
type Repository interface {
	// Create inserts a new rating. A second rating for the same (user, order)
	// pair fails with ErrDuplicateRating.
	Create(ctx context.Context, userID, orderID uuid.UUID, value int, feedback string) (*Rating, error)
	// ListByUser returns the user's ratings joined with order time and status.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]UserRating, error)
}

type memoryKey struct {
	userID  uuid.UUID
	orderID uuid.UUID
}

// OrderInfo resolves the order fields the ratings report needs. The in-memory
// repository uses it in place of the SQL join.
type OrderInfo func(orderID uuid.UUID) (orderTime time.Time, status string)

// InMemoryRepository stores ratings in memory, used in tests and when no
// database is configured.
type InMemoryRepository struct {
	mu        sync.Mutex
	ratings   map[memoryKey]*Rating
	orderInfo OrderInfo
}

// NewInMemoryRepository creates a new in-memory repository. orderInfo may be
// nil when report joins are not needed.
func NewInMemoryRepository(orderInfo OrderInfo) *InMemoryRepository {
	return &InMemoryRepository{
		ratings:   make(map[memoryKey]*Rating),
		orderInfo: orderInfo,
	}
}

// Create inserts a rating, enforcing the one-per-(user, order) invariant.
func (r *InMemoryRepository) Create(ctx context.Context, userID, orderID uuid.UUID, value int, feedback string) (*Rating, error) {
	key := memoryKey{userID: userID, orderID: orderID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ratings[key]; exists {
		return nil, ErrDuplicateRating
	}

	rating := &Rating{
		ID:        uuid.New(),
		UserID:    userID,
		OrderID:   orderID,
		Rating:    value,
		Feedback:  feedback,
		CreatedAt: time.Now().UTC(),
	}
	r.ratings[key] = rating
	copied := *rating
	return &copied, nil
}

// ListByUser returns the user's ratings.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]UserRating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []UserRating
	for _, rating := range r.ratings {
		if rating.UserID != userID {
			continue
		}
		ur := UserRating{
			ID:        rating.ID,
			UserID:    rating.UserID,
			OrderID:   rating.OrderID,
			Rating:    rating.Rating,
			Feedback:  rating.Feedback,
			CreatedAt: rating.CreatedAt,
		}
		if r.orderInfo != nil {
			ur.OrderTime, ur.OrderStatus = r.orderInfo(rating.OrderID)
		}
		out = append(out, ur)
	}
	return out, nil
}
