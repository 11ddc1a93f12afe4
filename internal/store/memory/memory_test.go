package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jogardn/storefront/internal/store"
	"github.com/jogardn/storefront/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) (customer models.Customer, product models.Product) {
	t.Helper()
	ctx := context.Background()
	err := s.WithTx(ctx, func(q store.Queries) error {
		customer = models.Customer{Name: "Ada", Email: "ada@example.com", Phone: "555"}
		if err := q.CreateCustomer(ctx, &customer); err != nil {
			return err
		}
		product = models.Product{Name: "Widget", Price: decimal.NewFromInt(3), Stock: 10}
		return q.CreateProduct(ctx, &product)
	})
	require.NoError(t, err)
	return customer, product
}

func TestFailedTransactionLeavesNoTrace(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, product := seed(t, s)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(q store.Queries) error {
		if err := q.UpdateProductStock(ctx, product.ID, 1); err != nil {
			return err
		}
		extra := models.Customer{Name: "Bob"}
		if err := q.CreateCustomer(ctx, &extra); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = s.WithTx(ctx, func(q store.Queries) error {
		p, err := q.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, p.Stock)

		customers, err := q.ListCustomers(ctx)
		require.NoError(t, err)
		assert.Len(t, customers, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	customer, product := seed(t, s)

	var orderID int64
	require.NoError(t, s.WithTx(ctx, func(q store.Queries) error {
		o := &models.Order{
			CustomerID: customer.ID,
			Status:     models.OrderStatusPending,
			Items:      []models.OrderItem{{ProductID: product.ID, Quantity: 1, Price: product.Price}},
		}
		if err := q.CreateOrder(ctx, o); err != nil {
			return err
		}
		orderID = o.ID
		o.Items[0].Quantity = 99
		return nil
	}))

	require.NoError(t, s.WithTx(ctx, func(q store.Queries) error {
		o, err := q.GetOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, 1, o.Items[0].Quantity)
		assert.Equal(t, orderID, o.Items[0].OrderID)
		assert.False(t, o.OrderDate.IsZero())
		return nil
	}))
}

func TestAccountUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()
	customer, _ := seed(t, s)

	err := s.WithTx(ctx, func(q store.Queries) error {
		first := &models.CustomerAccount{Username: "ada", PasswordHash: "h", CustomerID: customer.ID}
		require.NoError(t, q.CreateAccount(ctx, first))

		second := &models.CustomerAccount{Username: "ada", PasswordHash: "h", CustomerID: customer.ID}
		assert.ErrorIs(t, q.CreateAccount(ctx, second), store.ErrUsernameTaken)

		third := &models.CustomerAccount{Username: "ada2", PasswordHash: "h", CustomerID: customer.ID}
		assert.ErrorIs(t, q.CreateAccount(ctx, third), store.ErrAccountExists)

		orphan := &models.CustomerAccount{Username: "ghost", PasswordHash: "h", CustomerID: 999}
		assert.ErrorIs(t, q.CreateAccount(ctx, orphan), store.ErrInUse)

		got, err := q.GetAccount(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Customer)
		assert.Equal(t, "Ada", got.Customer.Name)
		return nil
	})
	require.NoError(t, err)
}

func TestForeignKeyRules(t *testing.T) {
	s := New()
	ctx := context.Background()
	customer, product := seed(t, s)

	require.NoError(t, s.WithTx(ctx, func(q store.Queries) error {
		a := &models.CustomerAccount{Username: "ada", PasswordHash: "h", CustomerID: customer.ID}
		require.NoError(t, q.CreateAccount(ctx, a))

		o := &models.Order{
			CustomerID: customer.ID,
			Status:     models.OrderStatusPending,
			Items:      []models.OrderItem{{ProductID: product.ID, Quantity: 1, Price: product.Price}},
		}
		require.NoError(t, q.CreateOrder(ctx, o))

		assert.ErrorIs(t, q.DeleteProduct(ctx, product.ID), store.ErrInUse)
		assert.ErrorIs(t, q.DeleteCustomer(ctx, customer.ID), store.ErrInUse)

		require.NoError(t, q.DeleteOrder(ctx, o.ID))
		require.NoError(t, q.DeleteProduct(ctx, product.ID))
		require.NoError(t, q.DeleteCustomer(ctx, customer.ID))

		_, err := q.GetAccount(ctx, a.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		return nil
	}))
}

func TestNegativeStockRejected(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, product := seed(t, s)

	err := s.WithTx(ctx, func(q store.Queries) error {
		return q.UpdateProductStock(ctx, product.ID, -1)
	})
	assert.Error(t, err)
}

func TestStockAboveIntegerColumnRejected(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, product := seed(t, s)

	err := s.WithTx(ctx, func(q store.Queries) error {
		return q.UpdateProductStock(ctx, product.ID, math.MaxInt32+1)
	})
	assert.ErrorIs(t, err, store.ErrOutOfRange)
}

func TestMissingRecords(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.WithTx(ctx, func(q store.Queries) error {
		_, err := q.GetCustomer(ctx, 1)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, q.DeleteProduct(ctx, 1), store.ErrNotFound)
		assert.ErrorIs(t, q.UpdateOrder(ctx, &models.Order{ID: 1}), store.ErrNotFound)
		assert.ErrorIs(t, q.DeleteAccount(ctx, 1), store.ErrNotFound)
		return nil
	}))
}

func TestCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithTx(ctx, func(store.Queries) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}
