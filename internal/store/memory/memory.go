// Package memory is an in-process store.Store. Transactions are serialized and
// work on a copy of the data that replaces the live copy only on success, so
// a failed transaction leaves nothing behind. It follows the same foreign key
// rules as the PostgreSQL schema.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jogardn/storefront/internal/store"
	"github.com/jogardn/storefront/pkg/models"
)

type Store struct {
	mu    sync.Mutex
	state *state
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: newState()}
}

func (s *Store) WithTx(ctx context.Context, fn func(q store.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	draft := s.state.clone()
	if err := fn(draft); err != nil {
		return err
	}
	s.state = draft
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

type state struct {
	customers map[int64]models.Customer
	accounts  map[int64]models.CustomerAccount
	products  map[int64]models.Product
	orders    map[int64]models.Order

	lastCustomerID int64
	lastAccountID  int64
	lastProductID  int64
	lastOrderID    int64
	lastItemID     int64
}

func newState() *state {
	return &state{
		customers: make(map[int64]models.Customer),
		accounts:  make(map[int64]models.CustomerAccount),
		products:  make(map[int64]models.Product),
		orders:    make(map[int64]models.Order),
	}
}

func (st *state) clone() *state {
	c := *st
	c.customers = make(map[int64]models.Customer, len(st.customers))
	for id, v := range st.customers {
		c.customers[id] = v
	}
	c.accounts = make(map[int64]models.CustomerAccount, len(st.accounts))
	for id, v := range st.accounts {
		c.accounts[id] = v
	}
	c.products = make(map[int64]models.Product, len(st.products))
	for id, v := range st.products {
		c.products[id] = v
	}
	c.orders = make(map[int64]models.Order, len(st.orders))
	for id, v := range st.orders {
		c.orders[id] = copyOrder(v)
	}
	return &c
}

func copyOrder(o models.Order) models.Order {
	if o.Items != nil {
		o.Items = append([]models.OrderItem(nil), o.Items...)
	}
	if o.DeliveryDate != nil {
		t := *o.DeliveryDate
		o.DeliveryDate = &t
	}
	return o
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func inUse(format string, args ...any) error {
	return fmt.Errorf("%w: %s", store.ErrInUse, fmt.Sprintf(format, args...))
}

// Customers

func (st *state) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	customers := make([]models.Customer, 0, len(st.customers))
	for _, id := range sortedIDs(st.customers) {
		customers = append(customers, st.customers[id])
	}
	return customers, nil
}

func (st *state) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	c, ok := st.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (st *state) CreateCustomer(ctx context.Context, c *models.Customer) error {
	st.lastCustomerID++
	c.ID = st.lastCustomerID
	st.customers[c.ID] = *c
	return nil
}

func (st *state) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	if _, ok := st.customers[c.ID]; !ok {
		return store.ErrNotFound
	}
	st.customers[c.ID] = *c
	return nil
}

func (st *state) DeleteCustomer(ctx context.Context, id int64) error {
	if _, ok := st.customers[id]; !ok {
		return store.ErrNotFound
	}
	for _, o := range st.orders {
		if o.CustomerID == id {
			return inUse("customer %d is referenced by order %d", id, o.ID)
		}
	}
	for accountID, a := range st.accounts {
		if a.CustomerID == id {
			delete(st.accounts, accountID)
		}
	}
	delete(st.customers, id)
	return nil
}

// Accounts

func (st *state) GetAccount(ctx context.Context, id int64) (*models.CustomerAccount, error) {
	a, ok := st.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if c, ok := st.customers[a.CustomerID]; ok {
		a.Customer = c.Snapshot()
	}
	return &a, nil
}

func (st *state) CreateAccount(ctx context.Context, a *models.CustomerAccount) error {
	if _, ok := st.customers[a.CustomerID]; !ok {
		return inUse("customer %d does not exist", a.CustomerID)
	}
	for _, existing := range st.accounts {
		if existing.Username == a.Username {
			return store.ErrUsernameTaken
		}
		if existing.CustomerID == a.CustomerID {
			return store.ErrAccountExists
		}
	}

	st.lastAccountID++
	a.ID = st.lastAccountID
	stored := *a
	stored.Customer = nil
	st.accounts[a.ID] = stored
	return nil
}

func (st *state) UpdateAccount(ctx context.Context, a *models.CustomerAccount) error {
	existing, ok := st.accounts[a.ID]
	if !ok {
		return store.ErrNotFound
	}
	for id, other := range st.accounts {
		if id != a.ID && other.Username == a.Username {
			return store.ErrUsernameTaken
		}
	}
	existing.Username = a.Username
	existing.PasswordHash = a.PasswordHash
	st.accounts[a.ID] = existing
	return nil
}

func (st *state) DeleteAccount(ctx context.Context, id int64) error {
	if _, ok := st.accounts[id]; !ok {
		return store.ErrNotFound
	}
	delete(st.accounts, id)
	return nil
}

// Products

func (st *state) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0, len(st.products))
	for _, id := range sortedIDs(st.products) {
		products = append(products, st.products[id])
	}
	return products, nil
}

func (st *state) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := st.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

// GetProductForUpdate needs no row lock here: WithTx already holds the store
// lock for the whole transaction.
func (st *state) GetProductForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	return st.GetProduct(ctx, id)
}

func (st *state) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.Stock < 0 {
		return fmt.Errorf("product stock cannot be negative")
	}
	st.lastProductID++
	p.ID = st.lastProductID
	st.products[p.ID] = *p
	return nil
}

func (st *state) UpdateProduct(ctx context.Context, p *models.Product) error {
	if _, ok := st.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	if p.Stock < 0 {
		return fmt.Errorf("product stock cannot be negative")
	}
	st.products[p.ID] = *p
	return nil
}

func (st *state) UpdateProductStock(ctx context.Context, id int64, stock int) error {
	p, ok := st.products[id]
	if !ok {
		return store.ErrNotFound
	}
	if stock < 0 {
		return fmt.Errorf("product %d stock cannot be negative", id)
	}
	if stock > math.MaxInt32 {
		return fmt.Errorf("%w: product %d stock %d", store.ErrOutOfRange, id, stock)
	}
	p.Stock = stock
	st.products[id] = p
	return nil
}

func (st *state) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := st.products[id]; !ok {
		return store.ErrNotFound
	}
	for _, o := range st.orders {
		for _, item := range o.Items {
			if item.ProductID == id {
				return inUse("product %d is referenced by order %d", id, o.ID)
			}
		}
	}
	delete(st.products, id)
	return nil
}

// Orders

func (st *state) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(st.orders))
	for _, id := range sortedIDs(st.orders) {
		orders = append(orders, st.orders[id].Summary())
	}
	return orders, nil
}

func (st *state) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	orders := []models.Order{}
	for _, id := range sortedIDs(st.orders) {
		if o := st.orders[id]; o.CustomerID == customerID {
			orders = append(orders, o.Summary())
		}
	}
	return orders, nil
}

func (st *state) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, ok := st.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o = copyOrder(o)
	return &o, nil
}

func (st *state) CreateOrder(ctx context.Context, o *models.Order) error {
	if _, ok := st.customers[o.CustomerID]; !ok {
		return inUse("customer %d does not exist", o.CustomerID)
	}
	for _, item := range o.Items {
		if _, ok := st.products[item.ProductID]; !ok {
			return inUse("product %d does not exist", item.ProductID)
		}
	}

	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	st.lastOrderID++
	o.ID = st.lastOrderID
	for i := range o.Items {
		st.lastItemID++
		o.Items[i].ID = st.lastItemID
		o.Items[i].OrderID = o.ID
	}
	st.orders[o.ID] = copyOrder(*o)
	return nil
}

func (st *state) UpdateOrder(ctx context.Context, o *models.Order) error {
	existing, ok := st.orders[o.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Status = o.Status
	existing.DeliveryDate = o.DeliveryDate
	st.orders[o.ID] = copyOrder(existing)
	return nil
}

func (st *state) DeleteOrder(ctx context.Context, id int64) error {
	if _, ok := st.orders[id]; !ok {
		return store.ErrNotFound
	}
	delete(st.orders, id)
	return nil
}
