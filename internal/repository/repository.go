package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/TDila/smart-cart/internal/domain"
)

var (
	ErrCartNotFound          = errors.New("cart not found")
	ErrCartLocked            = errors.New("cart is locked by another operation")
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// ProductRepository provides catalog reads. Inventory writes only happen
// through PlacementTx.ReserveInventory.
type ProductRepository interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
}

// CartRepository persists carts as whole aggregates: the lines collection is
// replaced on every upsert.
type CartRepository interface {
	GetCart(ctx context.Context, userID int64) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID int64) error
}

type OrderRepository interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error)
}

// OutboxEvent is a pending integration event written in the same transaction
// as the state change it describes.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// OutboxRepository is consumed by the poller that drains events to Kafka.
type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id uuid.UUID) error
}

// PlacementTx exposes the operations available inside one order-placement
// transaction. Every method reads or writes through the same database
// transaction; an error from the callback rolls all of them back.
type PlacementTx interface {
	// LockCart loads the user's cart under an exclusive row lock.
	// Returns ErrCartNotFound when no cart exists and ErrCartLocked when a
	// concurrent placement already holds the lock.
	LockCart(ctx context.Context, userID int64) (*domain.Cart, error)

	// ReserveInventory is a single atomic check-and-decrement of the
	// product's available stock. Returns ErrInsufficientInventory without
	// changing anything when stock is too low.
	ReserveInventory(ctx context.Context, productID int64, quantity int) error

	CreateOrder(ctx context.Context, order *domain.Order) error
	CreateOutboxEvent(ctx context.Context, event *OutboxEvent) error
	DeleteCart(ctx context.Context, userID int64) error
}

// TxRunner runs an order placement inside a single transaction.
type TxRunner interface {
	RunPlacement(ctx context.Context, fn func(tx PlacementTx) error) error
}
