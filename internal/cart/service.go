package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

const persistTimeout = 2 * time.Second

var ErrIdentityPinned = errors.New("cart is bound to its session identity")

// Service is the cart facade for one active identity. Mutations never fail:
// persistence errors are logged and the in-memory cart stays authoritative.
type Service struct {
	mu        sync.Mutex
	kv        storage.KeyValueStore
	namespace string
	identity  domain.Identity
	store     *Store
	logger    *slog.Logger
	pinned    bool
}

// NewService returns a facade bound to identity with its persisted cart
// already loaded.
func NewService(ctx context.Context, kv storage.KeyValueStore, namespace string, identity domain.Identity, logger *slog.Logger) *Service {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		kv:        kv,
		namespace: namespace,
		identity:  identity,
		logger:    logger,
	}
	s.store = NewStore(s.persist)
	s.store.Dispatch(ctx, Load(s.read(ctx, identity)))
	return s
}

func (s *Service) Identity() domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// SwitchIdentity swaps the visible cart for the one persisted under id. The
// in-memory lines are dropped first without writing, so the previous
// identity's items are neither shown nor copied to the new key. Only a
// standalone facade can switch; carts handed out by Sessions are keyed by
// their identity and return ErrIdentityPinned.
func (s *Service) SwitchIdentity(ctx context.Context, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.identity {
		return nil
	}
	if s.pinned {
		return ErrIdentityPinned
	}
	s.store.Dispatch(ctx, Load(nil))
	s.identity = id
	s.store.Dispatch(ctx, Load(s.read(ctx, id)))
	s.logger.Debug("cart identity switched", "identity", id.Key())
	return nil
}

func (s *Service) Items() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Lines()
}

func (s *Service) Add(ctx context.Context, p domain.Product, quantity int) {
	s.dispatch(ctx, Add(p, quantity))
}

func (s *Service) Remove(ctx context.Context, productID int64) {
	s.dispatch(ctx, Remove(productID))
}

func (s *Service) SetQuantity(ctx context.Context, productID int64, quantity int) {
	s.dispatch(ctx, SetQuantity(productID, quantity))
}

func (s *Service) Clear(ctx context.Context) {
	s.dispatch(ctx, Clear())
}

// Settle takes an ordered snapshot out of the cart in one step.
func (s *Service) Settle(ctx context.Context, ordered []domain.CartLine) {
	s.dispatch(ctx, Settle(ordered))
}

// Dispatch is the single mutation entry point; the named methods wrap it.
func (s *Service) Dispatch(ctx context.Context, a Action) {
	s.dispatch(ctx, a)
}

func (s *Service) TotalItems() int {
	total := 0
	for _, l := range s.Items() {
		total += l.Quantity
	}
	return total
}

func (s *Service) TotalPrice() float64 {
	return pricing.Subtotal(s.Items()).InexactFloat64()
}

func (s *Service) dispatch(ctx context.Context, a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Dispatch(ctx, a)
}

// read loads the lines persisted for id. Missing, unreadable or corrupt data
// all yield an empty cart.
func (s *Service) read(ctx context.Context, id domain.Identity) []domain.CartLine {
	key := Key(s.namespace, id)
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("cart load failed, starting empty", "key", key, "error", err)
		return nil
	}
	lines, err := Decode(raw)
	if err != nil {
		s.logger.Warn("corrupt cart data, starting empty", "key", key, "error", err)
		return nil
	}
	return lines
}

// persist runs under s.mu via Store.Dispatch.
func (s *Service) persist(ctx context.Context, lines []domain.CartLine) {
	key := Key(s.namespace, s.identity)
	raw, err := Encode(lines)
	if err != nil {
		s.logger.Error("cart encode failed", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := s.kv.Set(ctx, key, raw); err != nil {
		s.logger.Error("cart persist failed", "key", key, "error", err)
	}
}
