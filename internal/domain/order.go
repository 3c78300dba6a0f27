package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

// Orders are created in a single fixed state; later lifecycle (shipping,
// delivery) is outside this system.
const (
	OrderStatusCreated OrderStatus = "CREATED"
)

// OrderLine is an immutable snapshot of a product, quantity and unit price at
// order time. It never changes, regardless of later catalog updates.
type OrderLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type Order struct {
	ID          uuid.UUID       `json:"id"`
	UserID      int64           `json:"user_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []OrderLine     `json:"lines"`
	CreatedAt   time.Time       `json:"created_at"`
}
