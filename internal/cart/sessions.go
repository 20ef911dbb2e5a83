package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"golang.org/x/sync/singleflight"
)

// Sessions hands out one Service per identity so concurrent requests of the
// same customer mutate a single in-memory cart. Entries are never evicted.
type Sessions struct {
	kv        storage.KeyValueStore
	namespace string
	logger    *slog.Logger

	mu    sync.RWMutex
	carts map[string]*Service
	sfg   singleflight.Group // Prevents duplicate loads for the same identity
}

func NewSessions(kv storage.KeyValueStore, namespace string, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{
		kv:        kv,
		namespace: namespace,
		logger:    logger,
		carts:     make(map[string]*Service),
	}
}

func (m *Sessions) For(ctx context.Context, id domain.Identity) *Service {
	key := id.Key()

	m.mu.RLock()
	svc, ok := m.carts[key]
	m.mu.RUnlock()
	if ok {
		return svc
	}

	v, _, _ := m.sfg.Do(key, func() (interface{}, error) {
		m.mu.RLock()
		existing, ok := m.carts[key]
		m.mu.RUnlock()
		if ok {
			return existing, nil
		}

		created := NewService(context.WithoutCancel(ctx), m.kv, m.namespace, id, m.logger)
		created.pinned = true

		m.mu.Lock()
		m.carts[key] = created
		m.mu.Unlock()
		return created, nil
	})

	return v.(*Service)
}

// Len is the number of carts held in memory.
func (m *Sessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.carts)
}
