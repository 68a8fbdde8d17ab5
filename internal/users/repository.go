package users

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrMissingNumber is returned when a lookup is attempted without an address.
var ErrMissingNumber = errors.New("users: whatsapp number required")

// Repository defines the interface for user storage.
type Repository interface {
	// GetOrCreate resolves a user by WhatsApp address, creating it when absent.
	// The boolean reports whether a new row was created. The operation must be
	// atomic: concurrent deliveries for the same address never produce
	// duplicate users.
	GetOrCreate(ctx context.Context, whatsappNumber string) (*User, bool, error)
}

// InMemoryRepository is an in-memory implementation of Repository, used in
// tests and when no database is configured.
type InMemoryRepository struct {
	mu    sync.Mutex
	users map[string]*User
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*User)}
}

// GetOrCreate resolves or creates a user under a single lock.
func (r *InMemoryRepository) GetOrCreate(ctx context.Context, whatsappNumber string) (*User, bool, error) {
	if whatsappNumber == "" {
		return nil, false, ErrMissingNumber
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[whatsappNumber]; ok {
		copied := *user
		return &copied, false, nil
	}

	user := &User{
		ID:             uuid.New(),
		WhatsAppNumber: whatsappNumber,
		CreatedAt:      time.Now().UTC(),
	}
	r.users[whatsappNumber] = user
	copied := *user
	return &copied, true, nil
}
