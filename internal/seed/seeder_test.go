package seed

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jogardn/storefront/internal/api"
	"github.com/jogardn/storefront/internal/client"
	"github.com/jogardn/storefront/internal/service"
	"github.com/jogardn/storefront/internal/store/memory"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const catalogJSON = `{
	"customers": [
		{"name": "Ada", "email": "ada@example.com", "phone": "555-0100"},
		{"name": "", "email": "nobody@example.com", "phone": "555-0101"}
	],
	"products": [
		{"name": "Pen", "price": 1.50, "stock": 100},
		{"name": "Notebook", "price": 4.25, "stock": 20},
		{"name": "Lamp", "price": 19.99, "stock": 3}
	]
}`

func newTestClient(t *testing.T) *client.Client {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := service.New(memory.New(), nil, logger, service.Config{BcryptCost: bcrypt.MinCost})
	server := httptest.NewServer(api.NewHandler(svc, logger).Router())
	t.Cleanup(server.Close)
	return client.New(server.URL, logger)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestReadCatalog(t *testing.T) {
	catalog, err := ReadCatalog(strings.NewReader(catalogJSON))
	require.NoError(t, err)
	assert.Len(t, catalog.Customers, 2)
	require.Len(t, catalog.Products, 3)
	assert.Equal(t, "19.99", catalog.Products[2].Price.StringFixed(2))

	_, err = ReadCatalog(strings.NewReader(`{"products": 7}`))
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	c := newTestClient(t)
	catalog, err := ReadCatalog(strings.NewReader(catalogJSON))
	require.NoError(t, err)

	seeder := NewSeeder(c, quietLogger(), Config{Concurrency: 3, SkipExisting: true})
	result, err := seeder.Seed(context.Background(), catalog)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 4, result.Created)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "customer", result.Errors[0].Kind)

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)

	result, err = seeder.Seed(context.Background(), &Catalog{Products: catalog.Products})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Skipped)
	assert.Zero(t, result.Created)
}

func TestSeedDryRun(t *testing.T) {
	c := newTestClient(t)
	catalog, err := ReadCatalog(strings.NewReader(catalogJSON))
	require.NoError(t, err)

	result, err := NewSeeder(c, quietLogger(), Config{DryRun: true}).Seed(context.Background(), catalog)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 5, result.Created)

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSeedSkipsDuplicateNamesWithinCatalog(t *testing.T) {
	c := newTestClient(t)
	catalog, err := ReadCatalog(strings.NewReader(`{"products": [
		{"name": "Pen", "price": 1.50, "stock": 100},
		{"name": "Pen", "price": 2.00, "stock": 5},
		{"name": "Lamp", "price": 19.99, "stock": 3}
	]}`))
	require.NoError(t, err)

	result, err := NewSeeder(c, quietLogger(), Config{Concurrency: 2, SkipExisting: true}).Seed(context.Background(), catalog)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		if p.Name == "Pen" {
			assert.Equal(t, 100, p.Stock, "first catalog entry wins")
		}
	}
}
