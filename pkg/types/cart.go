package types

import (
	"context"
	"errors"
)

// DefaultStorageKey is the key the cart blob is persisted under.
const DefaultStorageKey = "@GoMarketplace:products"

// Listener receives a snapshot of the cart after each successful change.
type Listener func(products []Product)

// Cart is the consumer-facing cart API handed to UI components.
type Cart interface {
	// Products returns a snapshot of the current line items.
	Products() []Product

	// AddToCart adds one unit of the product, creating the line item
	// when the product is not yet in the cart.
	AddToCart(ctx context.Context, item ProductInput) error

	// Increment adds one unit to the line item with the given ID.
	// Unknown IDs leave the cart unchanged.
	Increment(ctx context.Context, id string) error

	// Decrement removes one unit from the line item with the given ID and
	// drops the line item when its quantity reaches zero. Unknown IDs
	// leave the cart unchanged.
	Decrement(ctx context.Context, id string) error

	// Subscribe registers a listener and returns a function that removes it.
	Subscribe(listener Listener) (unsubscribe func())
}

// Cart errors.
var (
	ErrParse              = errors.New("malformed cart data")
	ErrCartContextMissing = errors.New("cart must be used within a cart provider")
)
