package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret-0123456789abcdef"

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type catalogMock struct {
	products map[int64]*domain.Product
	err      error
}

func (c *catalogMock) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (c *catalogMock) ListProducts(_ context.Context, activeOnly bool) ([]*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []*domain.Product
	for id := int64(1); id <= int64(len(c.products)); id++ {
		p := c.products[id]
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type ordersMock struct {
	mu        sync.Mutex
	created   []*domain.OrderRequest
	byID      map[int64]*domain.Order
	createErr error
}

func (o *ordersMock) CreateOrder(_ context.Context, req *domain.OrderRequest) (*domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.createErr != nil {
		return nil, o.createErr
	}
	o.created = append(o.created, req)
	order := &domain.Order{ID: int64(len(o.created)), OrderRequest: *req, CreatedAt: time.Now()}
	o.byID[order.ID] = order
	return order, nil
}

func (o *ordersMock) GetOrderByID(_ context.Context, id int64) (*domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	order, ok := o.byID[id]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	return order, nil
}

func (o *ordersMock) ListOrders(_ context.Context) ([]*domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	list := []*domain.Order{}
	for id := int64(len(o.created)); id >= 1; id-- {
		list = append(list, o.byID[id])
	}
	return list, nil
}

func (o *ordersMock) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, orders.ErrInvalidStatus
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	order, ok := o.byID[id]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	order.Status = status
	return order, nil
}

func ptr(v float64) *float64 { return &v }

func testCatalog() *catalogMock {
	return &catalogMock{products: map[int64]*domain.Product{
		1: {ID: 1, NameAr: "طاجين", NameEn: "Tagine", NameFr: "Tajine", Price: 300, IsActive: true},
		2: {ID: 2, NameAr: "مزهرية", NameEn: "Vase", NameFr: "Vase", Price: 280, IsActive: true},
		3: {ID: 3, NameAr: "طبق", NameEn: "Plate", NameFr: "Assiette", Price: 150, SalePrice: ptr(120), IsActive: true},
		4: {ID: 4, NameAr: "زبدية", NameEn: "Bowl", NameFr: "Bol", Price: 60, IsActive: false},
	}}
}

type testEnv struct {
	handler  http.Handler
	kv       *storage.MemoryStore
	sessions *cart.Sessions
	catalog  *catalogMock
	orders   *ordersMock
	metrics  *metrics.ServerMetrics
	guest    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		kv:      storage.NewMemoryStore(),
		catalog: testCatalog(),
		orders:  &ordersMock{byID: map[int64]*domain.Order{}},
		metrics: metrics.NewServerMetrics("test"),
		guest:   uuid.NewString(),
	}
	verifier, err := auth.NewVerifier(testSecret)
	require.NoError(t, err)
	env.sessions = cart.NewSessions(env.kv, cart.DefaultNamespace, discardLogger)
	env.handler = NewRouter(RouterDeps{
		Logger:         discardLogger,
		Verifier:       verifier,
		Metrics:        env.metrics,
		Sessions:       env.sessions,
		Products:       env.catalog,
		Checkout:       checkout.NewService(env.orders, nil, discardLogger),
		Orders:         env.orders,
		RequestTimeout: 5 * time.Second,
	})
	return env
}

func token(t *testing.T, sub string, role auth.Role) string {
	t.Helper()
	return tokenSignedWith(t, []byte(testSecret), sub, role)
}

func tokenSignedWith(t *testing.T, key []byte, sub string, role auth.Role) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		AppMetadata: map[string]any{"role": string(role)},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

// do sends a request through the router. An empty bearer means the env's
// guest session.
func (e *testEnv) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	return e.send(t, method, path, body, bearer, e.guest)
}

// doGuest sends an anonymous request under the given guest session.
func (e *testEnv) doGuest(t *testing.T, session, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.send(t, method, path, body, "", session)
}

func (e *testEnv) guestKey() string {
	return cart.Key(cart.DefaultNamespace, domain.NewGuestIdentity(e.guest))
}

func (e *testEnv) send(t *testing.T, method, path string, body any, bearer, session string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else if session != "" {
		req.Header.Set(GuestSessionHeader, session)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

var errBackendDown = errors.New("backend down")
