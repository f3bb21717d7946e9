package cart

import (
	"context"

	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// Cart returns the consumer-facing view of the store.
func (s *Store) Cart() types.Cart {
	return api{s}
}

// api adapts Store to the types.Cart consumer interface.
type api struct {
	s *Store
}

func (a api) Products() []types.Product { return a.s.Items() }

func (a api) AddToCart(ctx context.Context, item types.ProductInput) error {
	return a.s.AddItem(ctx, item)
}

func (a api) Increment(ctx context.Context, id string) error {
	return a.s.IncrementItem(ctx, id)
}

func (a api) Decrement(ctx context.Context, id string) error {
	return a.s.DecrementItem(ctx, id)
}

func (a api) Subscribe(listener types.Listener) func() {
	return a.s.Subscribe(listener)
}
