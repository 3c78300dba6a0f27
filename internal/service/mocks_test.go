package service

import (
	"context"
	"sync"

	"github.com/TDila/smart-cart/internal/cache"
	"github.com/TDila/smart-cart/internal/domain"
	"github.com/TDila/smart-cart/internal/repository"
)

type mockCartRepo struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCartRepo) GetCart(context.Context, int64) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	clone := *m.cart
	clone.Lines = append([]domain.CartLine(nil), m.cart.Lines...)
	return &clone, nil
}

func (m *mockCartRepo) UpsertCart(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.cart = c
	return nil
}

func (m *mockCartRepo) DeleteCart(context.Context, int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return repository.ErrCartNotFound
	}
	m.cart = nil
	return nil
}

func (m *mockCartRepo) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

type mockProductRepo struct {
	m        sync.RWMutex
	products map[int64]*domain.Product
}

func (m *mockProductRepo) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockProductRepo) GetAllProducts(context.Context) ([]*domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	all := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		clone := *p
		all = append(all, &clone)
	}
	return all, nil
}

func (m *mockProductRepo) setPrice(id int64, price string) {
	m.m.Lock()
	defer m.m.Unlock()
	m.products[id].Price = mustDecimal(price)
}

type mockCache struct {
	m       sync.RWMutex
	cart    *domain.Cart
	err     error
	deletes int
}

func (m *mockCache) Get(context.Context, int64) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ int64, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	m.deletes++
	return m.err
}

func (m *mockCache) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}
