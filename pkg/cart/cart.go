// Package cart provides the public API for the cart store.
// This package exposes the constructor and the provider scope while keeping
// the store implementation internal.
//
// Example:
//
//	backend, err := storage.Attach(cfg)
//	if err != nil { ... }
//	defer backend.Detach()
//
//	c, err := cart.Open(ctx, backend, cfg, log)
//	ctx = cart.NewContext(ctx, c)
package cart

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	store "github.com/mesh-intelligence/gomarket/internal/cart"
	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// Open creates a cart persisting to storage and loads the previously
// persisted line items. The storage key and clear-on-load behavior come from
// config. An unreadable persisted cart is logged and replaced by an empty
// one; only storage failures are returned.
func Open(ctx context.Context, storage types.Storage, config types.Config, log logrus.FieldLogger) (types.Cart, error) {
	s := store.New(storage, store.FromConfig(config), store.WithLogger(log))
	if err := s.Initialize(ctx); err != nil {
		if !errors.Is(err, types.ErrParse) {
			return nil, err
		}
		if log != nil {
			log.WithError(err).Warn("starting with an empty cart")
		}
	}
	return s.Cart(), nil
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying c. Consumers below this point
// retrieve it with FromContext.
func NewContext(ctx context.Context, c types.Cart) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the cart installed by NewContext.
// Returns ErrCartContextMissing when ctx carries no cart.
func FromContext(ctx context.Context) (types.Cart, error) {
	c, ok := ctx.Value(contextKey{}).(types.Cart)
	if !ok || c == nil {
		return nil, types.ErrCartContextMissing
	}
	return c, nil
}

// MustFromContext is like FromContext but panics when ctx carries no cart.
func MustFromContext(ctx context.Context) types.Cart {
	c, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return c
}
