package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TDila/smart-cart/internal/pricing"
)

// Cart is the whole aggregate for one user's in-progress cart. It is loaded
// and persisted as a unit; TotalAmount is derived from Lines and recomputed
// on every load and mutation, the stored value is never authoritative.
type Cart struct {
	ID          uuid.UUID       `json:"id"`
	UserID      int64           `json:"user_id"`
	Lines       []CartLine      `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CartLine is one product entry in a cart. UnitPrice is the snapshot taken
// when the line was last added or updated, not the live catalog price.
type CartLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	AddedAt     time.Time       `json:"added_at"`
}

// LineTotal returns quantity times the snapshot unit price.
func (l CartLine) LineTotal() decimal.Decimal {
	return pricing.LineTotal(l.UnitPrice, l.Quantity)
}

// NewCart creates an empty cart for the user. Carts exist lazily: one is
// created on the first add and deleted when an order is placed.
func NewCart(userID int64) *Cart {
	now := time.Now()
	return &Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Lines:     nil,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Line returns the line for productID, if any.
func (c *Cart) Line(productID int64) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// UpsertLine merges quantity into an existing line for the product, refreshing
// its unit-price snapshot, or appends a new line. A product is never present
// on more than one line.
func (c *Cart) UpsertLine(productID int64, productName string, quantity int, unitPrice decimal.Decimal) {
	now := time.Now()
	if line, ok := c.Line(productID); ok {
		line.Quantity += quantity
		line.UnitPrice = unitPrice
		line.ProductName = productName
		line.AddedAt = now
	} else {
		c.Lines = append(c.Lines, CartLine{
			ProductID:   productID,
			ProductName: productName,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			AddedAt:     now,
		})
	}
	c.UpdatedAt = now
	c.RecalculateTotal()
}

// SetLineQuantity replaces the quantity of an existing line and refreshes its
// unit-price snapshot. Returns false if no line exists for the product.
func (c *Cart) SetLineQuantity(productID int64, quantity int, unitPrice decimal.Decimal) bool {
	line, ok := c.Line(productID)
	if !ok {
		return false
	}
	line.Quantity = quantity
	line.UnitPrice = unitPrice
	line.AddedAt = time.Now()
	c.UpdatedAt = time.Now()
	c.RecalculateTotal()
	return true
}

// RemoveLine deletes the line for the product. Returns false if absent.
func (c *Cart) RemoveLine(productID int64) bool {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.UpdatedAt = time.Now()
			c.RecalculateTotal()
			return true
		}
	}
	return false
}

// RecalculateTotal recomputes TotalAmount from the lines.
func (c *Cart) RecalculateTotal() {
	totals := make([]decimal.Decimal, len(c.Lines))
	for i, line := range c.Lines {
		totals[i] = line.LineTotal()
	}
	c.TotalAmount = pricing.Sum(totals)
}
