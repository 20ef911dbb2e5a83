package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "customer_name", "customer_phone", "customer_email", "customer_address", "customer_city",
	"notes", "items", "total_amount", "status", "created_at", "updated_at"}

func setupMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepositoryWithDB(db), mock
}

func itemsJSON(t *testing.T, items []domain.OrderItem) []byte {
	data, err := json.Marshal(items)
	require.NoError(t, err)
	return data
}

func sampleRequest() *domain.OrderRequest {
	return &domain.OrderRequest{
		CustomerName:    "Amina",
		CustomerPhone:   "0600000000",
		CustomerAddress: "12 Derb",
		CustomerCity:    "Safi",
		Items:           []domain.OrderItem{{ProductID: 1, Quantity: 2, Price: 300, Name: "Tagine"}},
		TotalAmount:     600,
		Status:          domain.OrderStatusPending,
	}
}

func TestCreateOrder(t *testing.T) {
	repo, mock := setupMock(t)
	req := sampleRequest()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("Amina", "0600000000", nil, "12 Derb", "Safi", nil, itemsJSON(t, req.Items), 600.0, domain.OrderStatusPending).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			int64(41), "Amina", "0600000000", nil, "12 Derb", "Safi", nil, itemsJSON(t, req.Items), 600.0, "pending", now, now))

	order, err := repo.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(41), order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Empty(t, order.CustomerEmail)
	assert.Equal(t, req.Items, order.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_DefaultsToPending(t *testing.T) {
	repo, mock := setupMock(t)
	req := sampleRequest()
	req.Status = ""
	req.CustomerEmail = "amina@example.ma"
	now := time.Now()

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "amina@example.ma", sqlmock.AnyArg(), sqlmock.AnyArg(), nil,
			sqlmock.AnyArg(), sqlmock.AnyArg(), domain.OrderStatusPending).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			int64(1), "Amina", "0600000000", "amina@example.ma", "12 Derb", "Safi", nil, []byte("[]"), 600.0, "pending", now, now))

	order, err := repo.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "amina@example.ma", order.CustomerEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_DatabaseError(t *testing.T) {
	repo, mock := setupMock(t)
	mock.ExpectQuery("INSERT INTO orders").WillReturnError(errors.New("connection refused"))

	_, err := repo.CreateOrder(context.Background(), sampleRequest())
	require.ErrorContains(t, err, "insert order")
	require.ErrorContains(t, err, "connection refused")
}

func TestGetOrderByID_NotFound(t *testing.T) {
	repo, mock := setupMock(t)
	mock.ExpectQuery("FROM orders WHERE id").WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetOrderByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrders(t *testing.T) {
	repo, mock := setupMock(t)
	now := time.Now()
	rows := sqlmock.NewRows(columns).
		AddRow(int64(2), "B", "2", nil, "a", "Fes", "ring twice", []byte("[]"), 530.0, "shipped", now, now).
		AddRow(int64(1), "A", "1", nil, "a", "Safi", nil, []byte("[]"), 880.0, "pending", now.Add(-time.Hour), now)
	mock.ExpectQuery("ORDER BY created_at DESC").WillReturnRows(rows)

	list, err := repo.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, "ring twice", list[0].Notes)
	assert.Equal(t, domain.OrderStatusShipped, list[0].Status)
}

func TestListOrders_EmptyIsNotNil(t *testing.T) {
	repo, mock := setupMock(t)
	mock.ExpectQuery("FROM orders").WillReturnRows(sqlmock.NewRows(columns))

	list, err := repo.ListOrders(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestUpdateOrderStatus(t *testing.T) {
	repo, mock := setupMock(t)
	now := time.Now()
	mock.ExpectQuery("UPDATE orders SET status").
		WithArgs(domain.OrderStatusShipped, int64(3)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			int64(3), "A", "1", nil, "a", "Safi", nil, []byte("[]"), 880.0, "shipped", now, now))

	order, err := repo.UpdateOrderStatus(context.Background(), 3, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
}

func TestUpdateOrderStatus_Invalid(t *testing.T) {
	repo, mock := setupMock(t)

	_, err := repo.UpdateOrderStatus(context.Background(), 3, "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query issued")
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	repo, mock := setupMock(t)
	mock.ExpectQuery("UPDATE orders SET status").WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateOrderStatus(context.Background(), 3, domain.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestNewRepository_PingFailure(t *testing.T) {
	repo, err := NewRepository(&Credentials{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "storefront",
		Password: "storefront",
		DBName:   "storefront",
	})
	assert.ErrorContains(t, err, "failed to ping database")
	assert.Nil(t, repo)
}
