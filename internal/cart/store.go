// Package cart implements the shopping cart: a list of line items persisted through an
// injected Storage after every mutation.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/pricing"
)

const (
	// DefaultKey is the storage key carts are kept under when no per-user key applies.
	DefaultKey = "cartItems"
	// MaxQuantity is the largest quantity a single line may hold.
	MaxQuantity = 99
)

var (
	ErrInvalidItem     = errors.New("cart item must have an id")
	ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", MaxQuantity)
	ErrItemNotFound    = errors.New("item not in cart")
)

// Store is a cart bound to one storage key.
type Store struct {
	storage Storage
	key     string
	items   []Item
	mu      sync.Mutex
}

// NewStore loads the cart stored under key, starting empty when nothing is stored yet.
func NewStore(ctx context.Context, storage Storage, key string) (*Store, error) {
	s := &Store{
		storage: storage,
		key:     key,
	}

	data, err := storage.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if err := json.Unmarshal(data, &s.items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return s, nil
}

// Add merges qty of item into the line with the same id, or appends a new line.
// A qty below 1 adds a single unit. Merged quantities are capped at MaxQuantity.
func (s *Store) Add(ctx context.Context, item Item, qty int) error {
	if item.ID == "" {
		return ErrInvalidItem
	}
	if qty < 1 {
		qty = 1
	}

	return s.mutate(ctx, func(items []Item) ([]Item, error) {
		for i := range items {
			if items[i].ID == item.ID {
				items[i].Quantity = min(items[i].Quantity+qty, MaxQuantity)
				return items, nil
			}
		}
		item.Quantity = min(qty, MaxQuantity)
		return append(items, item), nil
	})
}

// Remove drops the line with the given id. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, func(items []Item) ([]Item, error) {
		kept := items[:0]
		for _, it := range items {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		return kept, nil
	})
}

// SetQuantity replaces the quantity of an existing line.
func (s *Store) SetQuantity(ctx context.Context, id string, qty int) error {
	if qty < 1 || qty > MaxQuantity {
		return ErrInvalidQuantity
	}

	return s.mutate(ctx, func(items []Item) ([]Item, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity = qty
				return items, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, func([]Item) ([]Item, error) {
		return []Item{}, nil
	})
}

// Items returns a copy of the current lines.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Item(nil), s.items...)
}

// Count is the total number of units across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Summary derives subtotal, tax, shipping and total from the current lines.
func (s *Store) Summary() pricing.Summary {
	return pricing.Summarize(s.Items())
}

// mutate applies fn to a copy of the lines and persists the result.
// The in-memory cart only changes once the storage write succeeded.
func (s *Store) mutate(ctx context.Context, fn func([]Item) ([]Item, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(append([]Item(nil), s.items...))
	if err != nil {
		return err
	}
	if next == nil {
		next = []Item{}
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	s.items = next
	return nil
}
