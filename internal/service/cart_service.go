package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/TDila/smart-cart/internal/cache"
	"github.com/TDila/smart-cart/internal/domain"
	"github.com/TDila/smart-cart/internal/repository"
)

// CartService owns all cart mutations: merge-on-add, quantity updates with
// refreshed price snapshots, removals and the cached read path. It never
// touches inventory; that belongs to order placement.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	cache    cache.CartCache
	sfg      singleflight.Group // prevents cache stampede
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, cartCache cache.CartCache) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		cache:    cartCache,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	// Use singleflight so concurrent cache misses for the same user collapse
	// into one repository read.
	v, err, _ := s.sfg.Do(fmt.Sprint(userID), func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			cart.RecalculateTotal()
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.carts.GetCart(ctx, userID)
		if errGet != nil {
			return nil, errGet
		}

		// the stored total is never trusted
		cart.RecalculateTotal()

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.Set(setCtx, userID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem merges quantity into an existing line for the product (refreshing
// its price snapshot) or appends a new line at the product's current price.
// The cart is created lazily on the first add.
func (s *CartService) AddItem(ctx context.Context, userID int64, productID int64, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		cart = domain.NewCart(userID)
	} else if err != nil {
		return nil, err
	}

	cart.UpsertLine(product.ID, product.Name, quantity, product.Price)

	if err := s.carts.UpsertCart(ctx, cart); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return cart, nil
}

// SetQuantity replaces the quantity of an existing line and refreshes its
// unit-price snapshot to the product's current price.
func (s *CartService) SetQuantity(ctx context.Context, userID int64, productID int64, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.SetLineQuantity(product.ID, quantity, product.Price) {
		return nil, ErrItemNotFound
	}

	if err := s.carts.UpsertCart(ctx, cart); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID int64, productID int64) error {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	if !cart.RemoveLine(productID) {
		return ErrItemNotFound
	}

	if err := s.carts.UpsertCart(ctx, cart); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// ClearCart deletes the cart record entirely; a fresh cart is created on the
// next add.
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	if err := s.carts.DeleteCart(ctx, userID); err != nil {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) invalidateCache(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
