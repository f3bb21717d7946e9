// Package cart implements the cart store: the in-memory collection of line
// items, the mutations on it, and its persistence through a types.Storage.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// Store owns the cart line items and keeps them consistent with one
// serialized blob in storage. Every mutation, including a no-op on an
// unknown ID, replaces the blob with the full collection. Mutations are
// serialized: the compute, install, and persist steps of one mutation run
// before the next mutation reads the collection, and listeners receive the
// resulting snapshots one at a time in the same order.
type Store struct {
	mu          sync.RWMutex
	storage     types.Storage
	key         string
	clearOnLoad bool
	log         logrus.FieldLogger
	items       []types.Product
	seq         uint64 // last notification assigned; guarded by mu

	deliverMu   sync.Mutex
	deliverCond *sync.Cond
	delivered   uint64 // last notification delivered; guarded by deliverMu

	subMu     sync.Mutex
	nextSub   int
	listeners map[int]types.Listener
}

// New creates a Store persisting to storage. The Store starts empty; call
// Initialize to load a previously persisted cart.
func New(storage types.Storage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		key:       types.DefaultStorageKey,
		log:       discardLogger(),
		listeners: make(map[int]types.Listener),
	}
	s.deliverCond = sync.NewCond(&s.deliverMu)
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("key", s.key)
	return s
}

// Key returns the storage key the cart is persisted under.
func (s *Store) Key() string {
	return s.key
}

// Initialize replaces the in-memory cart with the persisted one.
// Line items with a quantity of zero or less, an empty ID, or a negative
// price are dropped, as are repeated IDs after the first.
//
// A missing blob yields an empty cart. A malformed blob also yields an empty
// cart, and the returned error wraps types.ErrParse; callers are expected to
// log it and carry on. A storage failure leaves the cart untouched and
// returns an error wrapping types.ErrStorageIO.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	blob, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("load cart: %w", storageErr(err))
	}

	var items []types.Product
	var parseErr error
	if ok {
		items, parseErr = decodeItems(blob)
		if parseErr != nil {
			s.log.WithError(parseErr).Warn("discarding unreadable cart")
			items = nil
		}
	}
	items = s.sanitize(items)
	s.items = items
	snapshot := cloneItems(items)

	if s.clearOnLoad {
		if err := s.storage.Clear(ctx); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("clear after load: %w", storageErr(err))
		}
		s.log.Warn("storage cleared after load; cart survives only if mutated this session")
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	s.log.WithField("items", len(snapshot)).Debug("cart loaded")
	s.notify(seq, snapshot)

	if parseErr != nil {
		return fmt.Errorf("load cart: %w", parseErr)
	}
	return nil
}

// AddItem adds one unit of item. A new line item starts at quantity 1 and an
// existing one is incremented; either way the line item moves to the front.
func (s *Store) AddItem(ctx context.Context, item types.ProductInput) error {
	if err := item.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, "add", item.ID, func(items []types.Product) []types.Product {
		return addItem(items, item)
	})
}

// IncrementItem adds one unit to the line item with the given ID.
// An unknown ID leaves the cart unchanged; the cart is persisted regardless.
func (s *Store) IncrementItem(ctx context.Context, id string) error {
	return s.mutate(ctx, "increment", id, func(items []types.Product) []types.Product {
		return adjustQuantity(items, id, 1)
	})
}

// DecrementItem removes one unit from the line item with the given ID and
// removes the line item when its quantity reaches zero. An unknown ID leaves
// the cart unchanged; the cart is persisted regardless.
func (s *Store) DecrementItem(ctx context.Context, id string) error {
	return s.mutate(ctx, "decrement", id, func(items []types.Product) []types.Product {
		return adjustQuantity(items, id, -1)
	})
}

// Items returns a snapshot of the line items. The caller owns the slice.
func (s *Store) Items() []types.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Len returns the number of line items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Quantity returns the quantity held for id, or 0 when id is not in the cart.
func (s *Store) Quantity(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.items, id); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// Subscribe registers listener to receive a snapshot after every load and
// every mutation that was persisted. Snapshots are delivered one at a time
// in mutation order, so the last one delivered matches Items once mutations
// stop. A listener may read the store but must not mutate it synchronously.
// The returned function removes the listener and is safe to call more than
// once.
func (s *Store) Subscribe(listener types.Listener) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = listener
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.listeners, id)
			s.subMu.Unlock()
		})
	}
}

// mutate applies fn to the current collection, installs the result, and
// persists it. The installed state is kept when persistence fails.
func (s *Store) mutate(ctx context.Context, op, id string, fn func([]types.Product) []types.Product) error {
	log := s.log.WithFields(logrus.Fields{"op": op, "id": id})

	s.mu.Lock()
	next := fn(s.items)
	s.items = next
	snapshot := cloneItems(next)
	err := s.persist(ctx, next)
	var seq uint64
	if err == nil {
		s.seq++
		seq = s.seq
	}
	s.mu.Unlock()

	if err != nil {
		log.WithError(err).Error("cart not persisted")
		return fmt.Errorf("%s %q: %w", op, id, err)
	}
	log.WithField("items", len(snapshot)).Debug("cart persisted")
	s.notify(seq, snapshot)
	return nil
}

// persist writes the full collection. The caller must hold s.mu.
func (s *Store) persist(ctx context.Context, items []types.Product) error {
	blob, err := encodeItems(items)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, s.key, blob); err != nil {
		return storageErr(err)
	}
	return nil
}

// notify delivers snapshot once every earlier notification has been
// delivered.
func (s *Store) notify(seq uint64, snapshot []types.Product) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	for s.delivered != seq-1 {
		s.deliverCond.Wait()
	}
	defer func() {
		s.delivered = seq
		s.deliverCond.Broadcast()
	}()

	s.subMu.Lock()
	listeners := make([]types.Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.subMu.Unlock()

	for _, l := range listeners {
		l(cloneItems(snapshot))
	}
}

// sanitize drops line items that cannot be held in the cart.
func (s *Store) sanitize(items []types.Product) []types.Product {
	out := make([]types.Product, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, p := range items {
		switch {
		case p.Quantity <= 0:
			continue
		case p.ID == "" || p.Price < 0:
			s.log.WithField("id", p.ID).Warn("dropping invalid line item")
			continue
		case seen[p.ID]:
			s.log.WithField("id", p.ID).Warn("dropping duplicate line item")
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// storageErr marks err as a storage failure unless it already is one.
func storageErr(err error) error {
	if errors.Is(err, types.ErrStorageIO) {
		return err
	}
	return fmt.Errorf("%w: %w", types.ErrStorageIO, err)
}

// addItem returns a new collection with item at the front, holding one more
// unit than before.
func addItem(items []types.Product, item types.ProductInput) []types.Product {
	quantity := 1
	if i := indexOf(items, item.ID); i >= 0 {
		quantity = items[i].Quantity + 1
	}
	out := make([]types.Product, 0, len(items)+1)
	out = append(out, item.WithQuantity(quantity))
	for _, p := range items {
		if p.ID != item.ID {
			out = append(out, p)
		}
	}
	return out
}

// adjustQuantity returns a new collection with delta added to the quantity
// of id. Line items that reach zero are removed. Positions are preserved.
func adjustQuantity(items []types.Product, id string, delta int) []types.Product {
	out := make([]types.Product, 0, len(items))
	for _, p := range items {
		if p.ID == id {
			p.Quantity += delta
			if p.Quantity <= 0 {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func indexOf(items []types.Product, id string) int {
	for i, p := range items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []types.Product) []types.Product {
	out := make([]types.Product, len(items))
	copy(out, items)
	return out
}
