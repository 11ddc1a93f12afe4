package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderEventType string

const (
	OrderEventPlaced        OrderEventType = "order_placed"
	OrderEventStatusChanged OrderEventType = "order_status_changed"
	OrderEventCancelled     OrderEventType = "order_cancelled"
	OrderEventDeleted       OrderEventType = "order_deleted"
)

// OrderEvent is published after an order mutation has been committed.
type OrderEvent struct {
	EventID    string          `json:"event_id"`
	Type       OrderEventType  `json:"type"`
	OrderID    int64           `json:"order_id"`
	CustomerID int64           `json:"customer_id"`
	Status     OrderStatus     `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	EventTime  time.Time       `json:"event_time"`
}
