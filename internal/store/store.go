// Package store defines the persistence contract for the storefront. All
// access goes through WithTx so every request runs in one explicit
// transaction that is committed on success and rolled back otherwise.
package store

import (
	"context"
	"errors"

	"github.com/jogardn/storefront/pkg/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrAccountExists = errors.New("customer already has an account")
	ErrInUse         = errors.New("record is referenced by other records")
	ErrOutOfRange    = errors.New("value out of range for column")
)

type Store interface {
	// WithTx runs fn inside a transaction. If fn returns an error nothing it
	// did is persisted.
	WithTx(ctx context.Context, fn func(q Queries) error) error
	Ping(ctx context.Context) error
	Close() error
}

type Queries interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	CreateCustomer(ctx context.Context, c *models.Customer) error
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error

	GetAccount(ctx context.Context, id int64) (*models.CustomerAccount, error)
	CreateAccount(ctx context.Context, a *models.CustomerAccount) error
	UpdateAccount(ctx context.Context, a *models.CustomerAccount) error
	DeleteAccount(ctx context.Context, id int64) error

	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	// GetProductForUpdate reads a product and locks its row until the
	// transaction ends, so concurrent stock checks serialize.
	GetProductForUpdate(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	UpdateProductStock(ctx context.Context, id int64, stock int) error
	DeleteProduct(ctx context.Context, id int64) error

	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64) ([]models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	// CreateOrder inserts the order and its items, filling in their ids.
	CreateOrder(ctx context.Context, o *models.Order) error
	UpdateOrder(ctx context.Context, o *models.Order) error
	DeleteOrder(ctx context.Context, id int64) error
}
