package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TDila/smart-cart/internal/domain"
	"github.com/TDila/smart-cart/internal/pricing"
)

// AssembleOrder turns cart lines into immutable order lines. Quantities and
// unit prices are copied from the cart's snapshots, never re-read from the
// live catalog: the order reflects the prices the user saw when the cart was
// last touched.
func AssembleOrder(userID int64, cart *domain.Cart) *domain.Order {
	lines := make([]domain.OrderLine, len(cart.Lines))
	totals := make([]decimal.Decimal, len(cart.Lines))
	for i, cl := range cart.Lines {
		lines[i] = domain.OrderLine{
			ProductID:   cl.ProductID,
			ProductName: cl.ProductName,
			Quantity:    cl.Quantity,
			UnitPrice:   cl.UnitPrice,
		}
		totals[i] = pricing.LineTotal(cl.UnitPrice, cl.Quantity)
	}

	return &domain.Order{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      domain.OrderStatusCreated,
		TotalAmount: pricing.Sum(totals),
		Lines:       lines,
		CreatedAt:   time.Now(),
	}
}
