package service

import (
	"errors"
	"fmt"

	"github.com/jogardn/storefront/internal/store"
	"github.com/jogardn/storefront/pkg/models"
)

var ErrNotCancellable = errors.New("cannot cancel shipped or delivered orders")

// NotFoundError names the missing record. It matches store.ErrNotFound with
// errors.Is.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return store.ErrNotFound
}

// notFound wraps err as a NotFoundError when it is store.ErrNotFound and
// passes anything else through.
func notFound(resource string, id int64, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return err
}

type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for product ID %d", e.ProductID)
}

type TransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}
