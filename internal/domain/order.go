package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// DeliveryForm is what the customer types at checkout.
type DeliveryForm struct {
	Name    string `json:"customer_name"`
	Phone   string `json:"customer_phone"`
	Email   string `json:"customer_email,omitempty"`
	Address string `json:"customer_address"`
	City    string `json:"customer_city"`
	Notes   string `json:"notes,omitempty"`
}

type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
}

// OrderRequest is the record posted to the order service.
type OrderRequest struct {
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerEmail   string      `json:"customer_email,omitempty"`
	CustomerAddress string      `json:"customer_address"`
	CustomerCity    string      `json:"customer_city"`
	Notes           string      `json:"notes,omitempty"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
	Status          OrderStatus `json:"status,omitempty"`
}

// Order is a created order as acknowledged by the order service.
type Order struct {
	ID int64 `json:"id"`
	OrderRequest
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
