package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/jogardn/storefront/internal/schema"
	"github.com/jogardn/storefront/internal/store"
	"github.com/jogardn/storefront/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var msgTotalTooLarge = "Order total must be less than or equal to " + schema.MaxOrderTotal.StringFixed(2) + "."

// PlaceOrder creates an order for the customer. All product rows are locked
// up front in ascending id order, so concurrent orders naming the same
// products in different orders cannot deadlock. Line items are then
// processed in request order: stock is checked and decremented and the
// current price copied into the line item. Any failure rolls the whole order
// back, including stock already decremented for earlier items.
func (s *Service) PlaceOrder(ctx context.Context, in schema.PlaceOrderInput) (*models.Order, error) {
	var order *models.Order
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		if _, err := q.GetCustomer(ctx, in.CustomerID); err != nil {
			return notFound("customer", in.CustomerID, err)
		}

		o := &models.Order{
			CustomerID: in.CustomerID,
			OrderDate:  s.now().UTC().Truncate(time.Microsecond),
			Status:     models.OrderStatusPending,
			TotalPrice: decimal.Zero,
		}

		if err := lockProducts(ctx, q, lineProductIDs(in.Items)); err != nil {
			return err
		}

		for _, line := range in.Items {
			p, err := q.GetProductForUpdate(ctx, line.ProductID)
			if err != nil {
				return notFound("product", line.ProductID, err)
			}
			if line.Quantity > p.Stock {
				return &InsufficientStockError{ProductID: p.ID, Requested: line.Quantity, Available: p.Stock}
			}

			item := models.OrderItem{ProductID: p.ID, Quantity: line.Quantity, Price: p.Price}
			o.Items = append(o.Items, item)
			o.TotalPrice = o.TotalPrice.Add(item.Subtotal())

			if err := q.UpdateProductStock(ctx, p.ID, p.Stock-line.Quantity); err != nil {
				return err
			}
		}

		if o.TotalPrice.GreaterThan(schema.MaxOrderTotal) {
			return schema.FieldError("items", msgTotalTooLarge)
		}

		if err := q.CreateOrder(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"total_price": order.TotalPrice.StringFixed(2),
		"items_count": len(order.Items),
	}).Info("Order placed")

	s.publish(ctx, models.OrderEventPlaced, order)
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		orders, err = q.ListOrders(ctx)
		return err
	})
	return orders, err
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o *models.Order
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		o, err = q.GetOrder(ctx, id)
		return notFound("order", id, err)
	})
	return o, err
}

func (s *Service) TrackOrder(ctx context.Context, id int64) (*models.OrderTracking, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	tracking := o.Tracking()
	return &tracking, nil
}

// UpdateOrder applies a status and/or delivery date change. Status changes
// must follow Pending -> Shipped -> Delivered, with Pending -> Cancelled as
// the only other move. Cancelling this way restocks like CancelOrder does.
func (s *Service) UpdateOrder(ctx context.Context, id int64, in schema.OrderUpdateInput) (*models.Order, error) {
	var (
		o          *models.Order
		prevStatus models.OrderStatus
	)
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		if o, err = q.GetOrder(ctx, id); err != nil {
			return notFound("order", id, err)
		}
		prevStatus = o.Status

		if in.Status != nil && *in.Status != o.Status {
			if !o.Status.CanTransitionTo(*in.Status) {
				return &TransitionError{From: o.Status, To: *in.Status}
			}
			if *in.Status == models.OrderStatusCancelled {
				if err := restock(ctx, q, o); err != nil {
					return err
				}
			}
			o.Status = *in.Status
		}
		if in.DeliveryDateSet {
			o.DeliveryDate = in.DeliveryDate
		}

		return q.UpdateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	if o.Status != prevStatus {
		s.logger.WithFields(logrus.Fields{
			"order_id":   o.ID,
			"from_state": prevStatus,
			"to_state":   o.Status,
		}).Info("Order status changed")

		eventType := models.OrderEventStatusChanged
		if o.Status == models.OrderStatusCancelled {
			eventType = models.OrderEventCancelled
		}
		s.publish(ctx, eventType, o)
	}
	return o, nil
}

// CancelOrder cancels an order that has not shipped yet and returns its items
// to stock. Cancelling an already cancelled order is a no-op.
func (s *Service) CancelOrder(ctx context.Context, id int64) (*models.Order, error) {
	var (
		o       *models.Order
		changed bool
	)
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		if o, err = q.GetOrder(ctx, id); err != nil {
			return notFound("order", id, err)
		}
		if !o.Status.Cancellable() {
			return ErrNotCancellable
		}
		if o.Status == models.OrderStatusCancelled {
			return nil
		}

		if err := restock(ctx, q, o); err != nil {
			return err
		}
		o.Status = models.OrderStatusCancelled
		changed = true
		return q.UpdateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.WithField("order_id", o.ID).Info("Order cancelled")
		s.publish(ctx, models.OrderEventCancelled, o)
	}
	return o, nil
}

// DeleteOrder removes an order and its line items. A pending order still
// holds its stock, so that stock is returned first.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	var o *models.Order
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		if o, err = q.GetOrder(ctx, id); err != nil {
			return notFound("order", id, err)
		}
		if o.Status == models.OrderStatusPending {
			if err := restock(ctx, q, o); err != nil {
				return err
			}
		}
		return q.DeleteOrder(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.WithField("order_id", id).Info("Order deleted")
	s.publish(ctx, models.OrderEventDeleted, o)
	return nil
}

func restock(ctx context.Context, q store.Queries, o *models.Order) error {
	quantities := make(map[int64]int)
	for _, item := range o.Items {
		quantities[item.ProductID] += item.Quantity
	}

	for _, id := range sortedIDs(quantities) {
		p, err := q.GetProductForUpdate(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := q.UpdateProductStock(ctx, p.ID, p.Stock+quantities[id]); err != nil {
			return err
		}
	}
	return nil
}

func lineProductIDs(items []schema.LineItemInput) map[int64]int {
	ids := make(map[int64]int, len(items))
	for _, line := range items {
		ids[line.ProductID] += line.Quantity
	}
	return ids
}

// lockProducts takes the row locks in ascending id order. Missing products
// are skipped here and reported by the caller in request order.
func lockProducts(ctx context.Context, q store.Queries, ids map[int64]int) error {
	for _, id := range sortedIDs(ids) {
		if _, err := q.GetProductForUpdate(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return nil
}

func sortedIDs(m map[int64]int) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
