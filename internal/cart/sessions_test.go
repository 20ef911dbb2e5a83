package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_OneServicePerIdentity(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(storage.NewMemoryStore(), DefaultNamespace, discard)

	a1 := sessions.For(ctx, domain.NewIdentity("a"))
	a2 := sessions.For(ctx, domain.NewIdentity("a"))
	b := sessions.For(ctx, domain.NewIdentity("b"))
	g := sessions.For(ctx, domain.Guest)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, domain.Guest, g.Identity())
	assert.Equal(t, 3, sessions.Len())
}

func TestSessions_LoadsPersistedCart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	seed := NewService(ctx, kv, DefaultNamespace, domain.NewIdentity("a"), discard)
	seed.Add(ctx, product(5, 40), 4)

	sessions := NewSessions(kv, DefaultNamespace, discard)
	svc := sessions.For(ctx, domain.NewIdentity("a"))
	require.Len(t, svc.Items(), 1)
	assert.Equal(t, 4, svc.TotalItems())
}

func TestSessions_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(storage.NewMemoryStore(), DefaultNamespace, discard)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sessions.For(ctx, domain.NewIdentity("shared")).Add(ctx, product(1, 10), 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sessions.Len())
	assert.Equal(t, 50, sessions.For(ctx, domain.NewIdentity("shared")).TotalItems())
}

func TestSessions_CartsAreBoundToTheirIdentity(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(storage.NewMemoryStore(), DefaultNamespace, discard)
	alice := domain.NewIdentity("alice")

	svc := sessions.For(ctx, alice)
	svc.Add(ctx, product(1, 280), 1)

	assert.NoError(t, svc.SwitchIdentity(ctx, alice))
	assert.ErrorIs(t, svc.SwitchIdentity(ctx, domain.NewIdentity("bob")), ErrIdentityPinned)
	assert.Equal(t, alice, svc.Identity())
	assert.Len(t, svc.Items(), 1)
	assert.Empty(t, sessions.For(ctx, domain.NewIdentity("bob")).Items())
}
