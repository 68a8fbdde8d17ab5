package ratings

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a user's feedback about one order. At most one rating exists per
// (user, order) pair, enforced by a database uniqueness constraint.
type Rating struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	OrderID   uuid.UUID `json:"order_id"`
	Rating    int       `json:"rating"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRating is a rating joined with the order fields shown in the ratings
// report.
type UserRating struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	OrderID     uuid.UUID `json:"order_id"`
	Rating      int       `json:"rating"`
	Feedback    string    `json:"feedback"`
	CreatedAt   time.Time `json:"created_at"`
	OrderTime   time.Time `json:"order_time"`
	OrderStatus string    `json:"order_status"`
}
