package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TDila/smart-cart/internal/cache"
	"github.com/TDila/smart-cart/internal/domain"
	"github.com/TDila/smart-cart/internal/repository"
)

// --- fakes ---

type fakeCartRepo struct {
	cart *domain.Cart
}

func (f *fakeCartRepo) GetCart(context.Context, int64) (*domain.Cart, error) {
	if f.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	return f.cart, nil
}

func (f *fakeCartRepo) UpsertCart(_ context.Context, c *domain.Cart) error {
	f.cart = c
	return nil
}

func (f *fakeCartRepo) DeleteCart(context.Context, int64) error {
	if f.cart == nil {
		return repository.ErrCartNotFound
	}
	f.cart = nil
	return nil
}

type fakeProductRepo struct {
	products map[int64]*domain.Product
	err      error
}

func (f *fakeProductRepo) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) GetAllProducts(context.Context) ([]*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	all := make([]*domain.Product, 0, len(f.products))
	for _, p := range f.products {
		all = append(all, p)
	}
	return all, nil
}

type noopCache struct{}

func (noopCache) Get(context.Context, int64) (*domain.Cart, error) { return nil, cache.ErrCacheMiss }
func (noopCache) Set(context.Context, int64, *domain.Cart) error   { return nil }
func (noopCache) Delete(context.Context, int64) error              { return nil }

type fakeOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
}

func (f *fakeOrderRepo) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) ListOrdersByUserID(_ context.Context, userID int64) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

// fakeRunner runs the placement against a canned cart and inventory map.
type fakeRunner struct {
	cart      *domain.Cart
	inventory map[int64]int
	orders    *fakeOrderRepo
	lockErr   error
}

func (f *fakeRunner) RunPlacement(_ context.Context, fn func(tx repository.PlacementTx) error) error {
	return fn(f)
}

func (f *fakeRunner) LockCart(context.Context, int64) (*domain.Cart, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	if f.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	return f.cart, nil
}

func (f *fakeRunner) ReserveInventory(_ context.Context, productID int64, quantity int) error {
	if f.inventory[productID] < quantity {
		return repository.ErrInsufficientInventory
	}
	f.inventory[productID] -= quantity
	return nil
}

func (f *fakeRunner) CreateOrder(_ context.Context, order *domain.Order) error {
	if f.orders.orders == nil {
		f.orders.orders = map[uuid.UUID]*domain.Order{}
	}
	f.orders.orders[order.ID] = order
	return nil
}

func (f *fakeRunner) CreateOutboxEvent(context.Context, *repository.OutboxEvent) error { return nil }

func (f *fakeRunner) DeleteCart(context.Context, int64) error {
	f.cart = nil
	return nil
}

// --- helpers ---

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func withUser(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), "user_id", int64(1))
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
