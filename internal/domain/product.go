package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product belongs to the catalog. The cart reads its price; order placement
// decrements its inventory, which never goes negative.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	CreatedAt   time.Time       `json:"created_at"`
}
