package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/TDila/smart-cart/internal/cache"
	"github.com/TDila/smart-cart/internal/domain"
	"github.com/TDila/smart-cart/internal/repository"
)

// EventTypeOrderPlaced is written to the outbox in the placement transaction
// and drained to Kafka by the publisher.
const EventTypeOrderPlaced = "order_placed"

// OrderService coordinates order placement and serves order reads. It is the
// only component allowed to decide between rollback and surfacing an error.
type OrderService struct {
	runner repository.TxRunner
	orders repository.OrderRepository
	cache  cache.CartCache
}

func NewOrderService(runner repository.TxRunner, orders repository.OrderRepository, cartCache cache.CartCache) *OrderService {
	return &OrderService{
		runner: runner,
		orders: orders,
		cache:  cartCache,
	}
}

// PlaceOrder converts the user's cart into an immutable order. The whole
// transition runs in one database transaction: cart lock, per-line inventory
// reservation, order insert, outbox event and cart retirement commit or roll
// back together. A failed reservation therefore never leaves a partial
// inventory decrement, and nobody ever observes the order next to a still
// populated source cart.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64) (*domain.Order, error) {
	var placed *domain.Order

	p := newPlacement()
	err := s.runner.RunPlacement(ctx, func(tx repository.PlacementTx) error {
		cart, err := tx.LockCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(cart.Lines) == 0 {
			return ErrEmptyCart
		}

		if err := p.advance(stateReserving); err != nil {
			return err
		}
		for _, line := range cart.Lines {
			if err := tx.ReserveInventory(ctx, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("product %d: %w", line.ProductID, err)
			}
		}

		if err := p.advance(stateAssembling); err != nil {
			return err
		}
		order := AssembleOrder(userID, cart)

		if err := p.advance(statePersisting); err != nil {
			return err
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		event, err := newOrderPlacedEvent(order)
		if err != nil {
			return err
		}
		if err := tx.CreateOutboxEvent(ctx, event); err != nil {
			return err
		}

		// cart retirement is part of the same transaction; the placement
		// contract spans reservation through retirement
		if err := tx.DeleteCart(ctx, userID); err != nil {
			return err
		}

		placed = order
		return nil
	})
	if err != nil {
		p.state = stateFailed
		return nil, err
	}
	p.state = stateCommitted

	// post-commit cleanup only; a failure here never compensates the order
	s.invalidateCartCache(userID)

	log.Printf("order %s placed for user %d, total %s", placed.ID, userID, placed.TotalAmount)
	return placed, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orders.GetOrderByID(ctx, orderID)
}

func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.orders.ListOrdersByUserID(ctx, userID)
}

func (s *OrderService) invalidateCartCache(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cart cache invalidate error: %v", err)
	}
}

type orderPlacedPayload struct {
	OrderID     string             `json:"order_id"`
	UserID      int64              `json:"user_id"`
	Status      domain.OrderStatus `json:"status"`
	TotalAmount string             `json:"total_amount"`
	Lines       []domain.OrderLine `json:"lines"`
	PlacedAt    time.Time          `json:"placed_at"`
}

func newOrderPlacedEvent(order *domain.Order) (*repository.OutboxEvent, error) {
	payload, err := json.Marshal(orderPlacedPayload{
		OrderID:     order.ID.String(),
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount.String(),
		Lines:       order.Lines,
		PlacedAt:    order.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order placed payload: %w", err)
	}

	return &repository.OutboxEvent{
		ID:        uuid.New(),
		EventType: EventTypeOrderPlaced,
		Payload:   payload,
		CreatedAt: time.Now(),
	}, nil
}
