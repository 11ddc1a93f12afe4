package service

import (
	"context"
	"errors"

	"github.com/jogardn/storefront/internal/schema"
	"github.com/jogardn/storefront/internal/store"
	"github.com/jogardn/storefront/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgUsernameTaken   = "Username already exists."
	msgAccountExists   = "Customer already has an account."
	msgPasswordTooLong = "Longer than maximum length 72."
)

// hashPassword is called before the transaction starts so the slow hash does
// not hold any locks.
func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", schema.FieldError("password", msgPasswordTooLong)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func accountConflict(err error) error {
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		return schema.FieldError("username", msgUsernameTaken)
	case errors.Is(err, store.ErrAccountExists):
		return schema.FieldError("customer_id", msgAccountExists)
	}
	return err
}

func (s *Service) CreateAccount(ctx context.Context, in schema.AccountCreateInput) (*models.CustomerAccount, error) {
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	a := &models.CustomerAccount{Username: in.Username, PasswordHash: hash, CustomerID: in.CustomerID}
	err = s.store.WithTx(ctx, func(q store.Queries) error {
		c, err := q.GetCustomer(ctx, in.CustomerID)
		if err != nil {
			return notFound("customer", in.CustomerID, err)
		}
		if err := q.CreateAccount(ctx, a); err != nil {
			return accountConflict(err)
		}
		a.Customer = c.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("account_id", a.ID).Info("Customer account created")
	return a, nil
}

func (s *Service) GetAccount(ctx context.Context, id int64) (*models.CustomerAccount, error) {
	var a *models.CustomerAccount
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		a, err = q.GetAccount(ctx, id)
		return notFound("customer account", id, err)
	})
	return a, err
}

// UpdateAccount changes only the supplied fields. The password is re-hashed
// only when a new one is given.
func (s *Service) UpdateAccount(ctx context.Context, id int64, in schema.AccountUpdateInput) (*models.CustomerAccount, error) {
	var newHash string
	if in.Password != nil {
		var err error
		if newHash, err = s.hashPassword(*in.Password); err != nil {
			return nil, err
		}
	}

	var a *models.CustomerAccount
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		if a, err = q.GetAccount(ctx, id); err != nil {
			return notFound("customer account", id, err)
		}
		if in.Username != nil {
			a.Username = *in.Username
		}
		if newHash != "" {
			a.PasswordHash = newHash
		}
		return accountConflict(q.UpdateAccount(ctx, a))
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(q store.Queries) error {
		if _, err := q.GetAccount(ctx, id); err != nil {
			return notFound("customer account", id, err)
		}
		return q.DeleteAccount(ctx, id)
	})
}

// CheckPassword reports whether password matches the account's stored hash.
func CheckPassword(a *models.CustomerAccount, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
