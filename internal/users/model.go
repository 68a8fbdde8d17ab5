package users

import (
	"time"

	"github.com/google/uuid"
)

// User is a messaging identity known to the bot. The WhatsApp address is the
// identity key; name and email are optional profile fields.
type User struct {
	ID             uuid.UUID `json:"id"`
	WhatsAppNumber string    `json:"whatsapp_number"`
	DisplayName    string    `json:"display_name,omitempty"`
	Email          string    `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
