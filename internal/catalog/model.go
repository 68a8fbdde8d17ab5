package catalog

import "github.com/google/uuid"

// Dish is a menu catalog entry. The catalog is seeded externally and read-only
// from the bot's perspective.
type Dish struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Course      string    `json:"course"`
	ChefName    string    `json:"chef_name"`
	Dietaries   string    `json:"dietaries"`
}
