package postgres

import (
	"context"

	"github.com/jogardn/storefront/pkg/models"
)

func (s *queries) GetAccount(ctx context.Context, id int64) (*models.CustomerAccount, error) {
	var (
		a models.CustomerAccount
		c models.CustomerSnapshot
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT a.id, a.username, a.password_hash, a.customer_id, c.name, c.email, c.phone
		FROM customer_accounts a
		JOIN customers c ON c.id = a.customer_id
		WHERE a.id = $1`, id,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CustomerID, &c.Name, &c.Email, &c.Phone)
	if err != nil {
		return nil, mapError(err)
	}
	a.Customer = &c
	return &a, nil
}

func (s *queries) CreateAccount(ctx context.Context, a *models.CustomerAccount) error {
	err := s.q.QueryRowContext(ctx,
		`INSERT INTO customer_accounts (username, password_hash, customer_id) VALUES ($1, $2, $3) RETURNING id`,
		a.Username, a.PasswordHash, a.CustomerID,
	).Scan(&a.ID)
	return mapError(err)
}

func (s *queries) UpdateAccount(ctx context.Context, a *models.CustomerAccount) error {
	return expectOne(s.q.ExecContext(ctx,
		`UPDATE customer_accounts SET username = $1, password_hash = $2 WHERE id = $3`,
		a.Username, a.PasswordHash, a.ID))
}

func (s *queries) DeleteAccount(ctx context.Context, id int64) error {
	return expectOne(s.q.ExecContext(ctx, `DELETE FROM customer_accounts WHERE id = $1`, id))
}
