package orders

import (
	"time"

	"github.com/google/uuid"
)

// Known order status labels. The column is open text, provider-side values
// outside this set are preserved as-is.
const (
	StatusDelivered = "delivered"
	StatusPending   = "pending"
)

// Order is one order placed by a user.
type Order struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	OrderTime time.Time `json:"order_time"`
	Status    string    `json:"status"`
}

// Line is one dish attached to an order, denormalized with the dish details
// needed for presentation. Presence implies a single unit; there is no
// quantity field.
type Line struct {
	DishID      uuid.UUID `json:"dish_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Course      string    `json:"course"`
	ChefName    string    `json:"chef_name"`
	Dietaries   string    `json:"dietaries"`
}
