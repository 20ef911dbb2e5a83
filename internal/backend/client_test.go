package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", APIKey: "anon-key", MaxFailures: 2, OpenTimeout: time.Minute}, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateOrder_PostsRepresentation(t *testing.T) {
	var got domain.OrderRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/orders", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, objectMediaType, r.Header.Get("Accept"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		writeJSON(w, http.StatusCreated, domain.Order{ID: 17, OrderRequest: got, CreatedAt: time.Now()})
	})

	req := &domain.OrderRequest{
		CustomerName: "Amina",
		Items:        []domain.OrderItem{{ProductID: 1, Quantity: 2, Price: 300, Name: "Tagine"}},
		TotalAmount:  630,
	}
	order, err := client.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(17), order.ID)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	assert.Empty(t, req.Status, "caller's request is not modified")
	assert.Equal(t, req.Items, order.Items)
}

func TestCreateOrder_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom", "code": "XX000"})
	})

	_, err := client.CreateOrder(context.Background(), &domain.OrderRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
	assert.Equal(t, "XX000", apiErr.Code)
}

func TestGetOrderByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.5", r.URL.Query().Get("id"))
		writeJSON(w, http.StatusOK, domain.Order{ID: 5})
	})

	order, err := client.GetOrderByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), order.ID)
}

func TestGetOrderByID_NoRowsIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotAcceptable, map[string]string{"code": "PGRST116", "message": "JSON object requested, multiple (or no) rows returned"})
	})

	_, err := client.GetOrderByID(context.Background(), 5)
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}

func TestListOrders_NewestFirst(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(w, http.StatusOK, []domain.Order{{ID: 2}, {ID: 1}})
	})

	list, err := client.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
}

func TestUpdateOrderStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"status": "shipped"}, body)

		writeJSON(w, http.StatusOK, domain.Order{ID: 3, OrderRequest: domain.OrderRequest{Status: domain.OrderStatusShipped}})
	})

	order, err := client.UpdateOrderStatus(context.Background(), 3, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
}

func TestUpdateOrderStatus_InvalidSkipsBackend(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.UpdateOrderStatus(context.Background(), 3, "lost")
	assert.ErrorIs(t, err, orders.ErrInvalidStatus)
	assert.Zero(t, calls.Load())
}

func TestProducts(t *testing.T) {
	sale := 120.0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "eq.3":
			writeJSON(w, http.StatusOK, domain.Product{ID: 3, NameEn: "Plate", Price: 150, SalePrice: &sale})
		case "eq.404":
			writeJSON(w, http.StatusNotAcceptable, map[string]string{"code": "PGRST116"})
		default:
			assert.Equal(t, "eq.true", r.URL.Query().Get("is_active"))
			writeJSON(w, http.StatusOK, []domain.Product{{ID: 1}, {ID: 3}})
		}
	})

	p, err := client.GetProduct(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 120.0, p.EffectivePrice())

	_, err = client.GetProduct(context.Background(), 404)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	list, err := client.ListProducts(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestBreaker_OpensOnServerErrorsOnly(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusBadRequest)
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, int(status.Load()), map[string]string{"message": "nope"})
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.ListOrders(ctx)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, client.breaker.State(), "4xx does not trip")

	status.Store(http.StatusServiceUnavailable)
	for i := 0; i < 2; i++ {
		_, _ = client.ListOrders(ctx)
	}
	assert.Equal(t, gobreaker.StateOpen, client.breaker.State())

	before := calls.Load()
	_, err := client.ListOrders(ctx)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, before, calls.Load(), "open breaker short-circuits")
}

func TestAPIError_PlainTextBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down\n"))
	})

	_, err := client.ListProducts(context.Background(), false)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.Contains(t, err.Error(), "502")
}
