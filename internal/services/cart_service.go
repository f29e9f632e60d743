package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/cart"
	"storefront/internal/repositories"
)

// CartService keeps a server-side cart per user, priced from the catalog.
type CartService struct {
	storage  cart.Storage
	products repositories.ProductRepository
}

// NewCartService creates a new CartService over the given storage.
func NewCartService(storage cart.Storage, products repositories.ProductRepository) *CartService {
	return &CartService{storage: storage, products: products}
}

func cartKey(userID string) string {
	return "user:" + userID
}

// Get loads the user's cart.
func (s *CartService) Get(ctx context.Context, userID string) (*cart.Store, error) {
	return cart.NewStore(ctx, s.storage, cartKey(userID))
}

// AddItem adds qty units of a catalog product to the user's cart.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) (*cart.Store, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
		}
		return nil, err
	}

	store, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	item := cart.Item{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Image:    product.Image,
		Category: product.Category,
	}
	if err := store.Add(ctx, item, qty); err != nil {
		return nil, err
	}
	return store, nil
}

// SetQuantity replaces the quantity of a line in the user's cart.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, qty int) (*cart.Store, error) {
	store, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := store.SetQuantity(ctx, productID, qty); err != nil {
		return nil, err
	}
	return store, nil
}

// RemoveItem drops a line from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*cart.Store, error) {
	store, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := store.Remove(ctx, productID); err != nil {
		return nil, err
	}
	return store, nil
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	store, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	return store.Clear(ctx)
}
