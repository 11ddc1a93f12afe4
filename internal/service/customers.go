package service

import (
	"context"

	"github.com/jogardn/storefront/internal/schema"
	"github.com/jogardn/storefront/internal/store"
	"github.com/jogardn/storefront/pkg/models"
)

func (s *Service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		customers, err = q.ListCustomers(ctx)
		return err
	})
	return customers, err
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var c *models.Customer
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		c, err = q.GetCustomer(ctx, id)
		return notFound("customer", id, err)
	})
	return c, err
}

func (s *Service) CreateCustomer(ctx context.Context, in schema.CustomerInput) (*models.Customer, error) {
	c := &models.Customer{Name: in.Name, Email: in.Email, Phone: in.Phone}
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		return q.CreateCustomer(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("customer_id", c.ID).Info("Customer created")
	return c, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, in schema.CustomerInput) (*models.Customer, error) {
	var c *models.Customer
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		if c, err = q.GetCustomer(ctx, id); err != nil {
			return notFound("customer", id, err)
		}
		c.Name, c.Email, c.Phone = in.Name, in.Email, in.Phone
		return q.UpdateCustomer(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		if _, err := q.GetCustomer(ctx, id); err != nil {
			return notFound("customer", id, err)
		}
		return q.DeleteCustomer(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.WithField("customer_id", id).Info("Customer deleted")
	return nil
}

// ListCustomerOrders returns the customer's orders without line items.
func (s *Service) ListCustomerOrders(ctx context.Context, customerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		if _, err := q.GetCustomer(ctx, customerID); err != nil {
			return notFound("customer", customerID, err)
		}
		var err error
		orders, err = q.ListOrdersByCustomer(ctx, customerID)
		return err
	})
	return orders, err
}
