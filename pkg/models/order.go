package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// OrderStatuses lists every accepted status value.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled}
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next.
// Staying in the same status is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable is false once an order has left the warehouse.
func (s OrderStatus) Cancellable() bool {
	return s != OrderStatusShipped && s != OrderStatusDelivered
}

type Order struct {
	ID           int64           `json:"id"`
	CustomerID   int64           `json:"customer_id"`
	OrderDate    time.Time       `json:"order_date"`
	Status       OrderStatus     `json:"status"`
	DeliveryDate *time.Time      `json:"delivery_date"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	Items        []OrderItem     `json:"items,omitempty"`
}

// OrderItem is a line item. Price is the product price at the moment the
// order was placed and is never re-read from the product afterwards.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal is quantity times the snapshot price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderTracking struct {
	ID           int64       `json:"id"`
	OrderDate    time.Time   `json:"order_date"`
	Status       OrderStatus `json:"status"`
	DeliveryDate *time.Time  `json:"delivery_date"`
}

func (o *Order) Tracking() OrderTracking {
	return OrderTracking{
		ID:           o.ID,
		OrderDate:    o.OrderDate,
		Status:       o.Status,
		DeliveryDate: o.DeliveryDate,
	}
}

// Summary drops the line items, matching what per-customer listings return.
func (o Order) Summary() Order {
	o.Items = nil
	return o
}
