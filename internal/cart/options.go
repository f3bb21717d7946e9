package cart

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key the cart blob is persisted under.
// An empty key keeps types.DefaultStorageKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger. A nil logger keeps the default, which
// discards output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClearOnLoad makes Initialize clear the storage after the cart has been
// read. The cart is only durable again once the next mutation writes it back,
// so a session that loads without mutating loses the persisted cart.
func WithClearOnLoad(clear bool) Option {
	return func(s *Store) {
		s.clearOnLoad = clear
	}
}

// FromConfig applies the cart-related fields of config.
func FromConfig(config types.Config) Option {
	return func(s *Store) {
		WithKey(config.StorageKey)(s)
		WithClearOnLoad(config.ClearOnLoad)(s)
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
