package service

import (
	"context"

	"github.com/jogardn/storefront/internal/schema"
	"github.com/jogardn/storefront/internal/store"
	"github.com/jogardn/storefront/pkg/models"
)

// Prices are stored with two decimal places.
const priceScale = 2

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		products, err = q.ListProducts(ctx)
		return err
	})
	return products, err
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p *models.Product
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		p, err = q.GetProduct(ctx, id)
		return notFound("product", id, err)
	})
	return p, err
}

func (s *Service) CreateProduct(ctx context.Context, in schema.ProductInput) (*models.Product, error) {
	p := &models.Product{Name: in.Name, Price: in.Price.Round(priceScale), Stock: in.Stock}
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		return q.CreateProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("product_id", p.ID).Info("Product created")
	return p, nil
}

// UpdateProduct replaces every field. Orders already placed keep the price
// they were placed at.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in schema.ProductInput) (*models.Product, error) {
	var p *models.Product
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		if p, err = q.GetProductForUpdate(ctx, id); err != nil {
			return notFound("product", id, err)
		}
		p.Name, p.Price, p.Stock = in.Name, in.Price.Round(priceScale), in.Stock
		return q.UpdateProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(q store.Queries) error {
		if _, err := q.GetProduct(ctx, id); err != nil {
			return notFound("product", id, err)
		}
		return q.DeleteProduct(ctx, id)
	})
}
