package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jogardn/storefront/pkg/models"
)

const orderColumns = `id, customer_id, order_date, status, delivery_date, total_price`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (models.Order, error) {
	var (
		o        models.Order
		status   string
		delivery sql.NullTime
	)
	if err := row.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &status, &delivery, &o.TotalPrice); err != nil {
		return o, err
	}
	o.Status = models.OrderStatus(status)
	if delivery.Valid {
		t := delivery.Time
		o.DeliveryDate = &t
	}
	return o, nil
}

func (s *queries) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
}

func (s *queries) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	return s.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY id`, customerID)
}

func (s *queries) listOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *queries) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(s.q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *queries) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}

	err := s.q.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, order_date, status, delivery_date, total_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		o.CustomerID, o.OrderDate, string(o.Status), nullTime(o.DeliveryDate), o.TotalPrice,
	).Scan(&o.ID)
	if err != nil {
		return mapError(err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err := s.q.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			item.OrderID, item.ProductID, item.Quantity, item.Price,
		).Scan(&item.ID)
		if err != nil {
			return mapError(err)
		}
	}

	return nil
}

func (s *queries) UpdateOrder(ctx context.Context, o *models.Order) error {
	return expectOne(s.q.ExecContext(ctx,
		`UPDATE orders SET status = $1, delivery_date = $2 WHERE id = $3`,
		string(o.Status), nullTime(o.DeliveryDate), o.ID))
}

func (s *queries) DeleteOrder(ctx context.Context, id int64) error {
	return expectOne(s.q.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id))
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
