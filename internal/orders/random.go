package orders

import (
	"fmt"
	"math/rand"

	"github.com/providoor/whatsapp-bot/internal/catalog"
)

// PickRandomDishes selects count distinct dishes uniformly at random from the
// catalog, without replacement.
//
// This backs the mock order intake: there is no real menu-selection flow
// upstream yet, so synthesized orders get a fixed number of random dishes.
func PickRandomDishes(dishes []catalog.Dish, count int) ([]catalog.Dish, error) {
	if count < 0 {
		return nil, fmt.Errorf("orders: dish count must be non-negative, got %d", count)
	}
	if len(dishes) < count {
		return nil, fmt.Errorf("orders: catalog has %d dishes, need %d", len(dishes), count)
	}

	shuffled := make([]catalog.Dish, len(dishes))
	copy(shuffled, dishes)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:count], nil
}
