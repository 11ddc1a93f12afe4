package postgres

import (
	"context"

	"github.com/jogardn/storefront/pkg/models"
)

const productColumns = `id, name, price, stock`

func (s *queries) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *queries) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.getProduct(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (s *queries) GetProductForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	return s.getProduct(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (s *queries) getProduct(ctx context.Context, query string, id int64) (*models.Product, error) {
	var p models.Product
	if err := s.q.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (s *queries) CreateProduct(ctx context.Context, p *models.Product) error {
	err := s.q.QueryRowContext(ctx,
		`INSERT INTO products (name, price, stock) VALUES ($1, $2, $3) RETURNING id`,
		p.Name, p.Price, p.Stock,
	).Scan(&p.ID)
	return mapError(err)
}

func (s *queries) UpdateProduct(ctx context.Context, p *models.Product) error {
	return expectOne(s.q.ExecContext(ctx,
		`UPDATE products SET name = $1, price = $2, stock = $3 WHERE id = $4`,
		p.Name, p.Price, p.Stock, p.ID))
}

func (s *queries) UpdateProductStock(ctx context.Context, id int64, stock int) error {
	return expectOne(s.q.ExecContext(ctx, `UPDATE products SET stock = $1 WHERE id = $2`, stock, id))
}

func (s *queries) DeleteProduct(ctx context.Context, id int64) error {
	return expectOne(s.q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id))
}
