package postgres

import (
	"context"

	"github.com/jogardn/storefront/pkg/models"
)

func (s *queries) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, email, phone FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *queries) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var c models.Customer
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, email, phone FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (s *queries) CreateCustomer(ctx context.Context, c *models.Customer) error {
	err := s.q.QueryRowContext(ctx,
		`INSERT INTO customers (name, email, phone) VALUES ($1, $2, $3) RETURNING id`,
		c.Name, c.Email, c.Phone,
	).Scan(&c.ID)
	return mapError(err)
}

func (s *queries) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	return expectOne(s.q.ExecContext(ctx,
		`UPDATE customers SET name = $1, email = $2, phone = $3 WHERE id = $4`,
		c.Name, c.Email, c.Phone, c.ID))
}

func (s *queries) DeleteCustomer(ctx context.Context, id int64) error {
	return expectOne(s.q.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id))
}
