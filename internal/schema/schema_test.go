package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jogardn/storefront/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr.Fields
}

func TestLoadCustomer(t *testing.T) {
	in, err := LoadCustomer([]byte(`{"name":"Ada","email":"ada@example.com","phone":"555-0100"}`))
	require.NoError(t, err)
	assert.Equal(t, CustomerInput{Name: "Ada", Email: "ada@example.com", Phone: "555-0100"}, in)
}

func TestLoadCustomerRejectsEmptyAndMissing(t *testing.T) {
	_, err := LoadCustomer([]byte(`{"name":"","email":42}`))
	fields := fieldErrors(t, err)

	assert.Equal(t, []string{MsgEmptyString}, fields["name"])
	assert.Equal(t, []string{MsgNotString}, fields["email"])
	assert.Equal(t, []string{MsgRequired}, fields["phone"])
}

func TestLoadCustomerLengthLimits(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		value  string
		errors []string
	}{
		{"phone at limit", "phone", strings.Repeat("5", 15), nil},
		{"phone too long", "phone", strings.Repeat("5", 16), []string{MsgTooLong(15)}},
		{"name at limit", "name", strings.Repeat("a", 255), nil},
		{"name too long", "name", strings.Repeat("a", 256), []string{MsgTooLong(255)}},
		{"multibyte name counts characters", "name", strings.Repeat("é", 255), nil},
		{"email too long", "email", strings.Repeat("e", 316) + "@x.io", []string{MsgTooLong(320)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]string{"name": "Ada", "email": "ada@example.com", "phone": "555-0100"}
			body[tt.field] = tt.value
			data, err := json.Marshal(body)
			require.NoError(t, err)

			_, err = LoadCustomer(data)
			if tt.errors == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, map[string][]string{tt.field: tt.errors}, fieldErrors(t, err))
		})
	}
}

func TestLoadAccountUsernameLimit(t *testing.T) {
	long := strings.Repeat("u", 256)

	_, err := LoadAccountCreate([]byte(`{"username":"` + long + `","password":"pw","customer_id":1}`))
	assert.Equal(t, []string{MsgTooLong(255)}, fieldErrors(t, err)["username"])

	_, err = LoadAccountUpdate([]byte(`{"username":"` + long + `"}`))
	assert.Equal(t, []string{MsgTooLong(255)}, fieldErrors(t, err)["username"])
}

func TestLoadRejectsNonObjectBody(t *testing.T) {
	for _, body := range []string{``, `[]`, `"text"`, `null`, `{broken`} {
		t.Run(body, func(t *testing.T) {
			_, err := LoadCustomer([]byte(body))
			assert.Equal(t, []string{MsgNotObject}, fieldErrors(t, err)[SchemaField])
		})
	}
}

func TestLoadProduct(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errors map[string][]string
	}{
		{
			name: "valid",
			body: `{"name":"Widget","price":3.5,"stock":10}`,
		},
		{
			name: "price as string",
			body: `{"name":"Widget","price":"3.50","stock":"10"}`,
		},
		{
			name:   "negative values",
			body:   `{"name":"Widget","price":-1,"stock":-2}`,
			errors: map[string][]string{"price": {MsgNegative}, "stock": {MsgNegative}},
		},
		{
			name:   "fractional stock",
			body:   `{"name":"Widget","price":1,"stock":2.5}`,
			errors: map[string][]string{"stock": {MsgNotInteger}},
		},
		{
			name:   "empty name and bad price",
			body:   `{"name":"","price":"abc","stock":1}`,
			errors: map[string][]string{"name": {MsgEmptyString}, "price": {MsgNotNumber}},
		},
		{
			name:   "all missing",
			body:   `{}`,
			errors: map[string][]string{"name": {MsgRequired}, "price": {MsgRequired}, "stock": {MsgRequired}},
		},
		{
			name: "price and stock above column range",
			body: `{"name":"Widget","price":123456789012.5,"stock":3000000000}`,
			errors: map[string][]string{
				"price": {MsgTooLarge("9999999999.99")},
				"stock": {MsgTooLarge("2147483647")},
			},
		},
		{
			name:   "price rounding up past the maximum",
			body:   `{"name":"Widget","price":9999999999.995,"stock":1}`,
			errors: map[string][]string{"price": {MsgTooLarge("9999999999.99")}},
		},
		{
			name:   "name too long",
			body:   `{"name":"` + strings.Repeat("w", 256) + `","price":1,"stock":1}`,
			errors: map[string][]string{"name": {MsgTooLong(255)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := LoadProduct([]byte(tt.body))
			if tt.errors == nil {
				require.NoError(t, err)
				assert.Equal(t, "Widget", in.Name)
				assert.True(t, in.Price.Equal(decimal.RequireFromString("3.5")), "price %s", in.Price)
				assert.Equal(t, 10, in.Stock)
				return
			}
			assert.Equal(t, tt.errors, fieldErrors(t, err))
		})
	}
}

func TestLoadProductAcceptsUpperBounds(t *testing.T) {
	in, err := LoadProduct([]byte(`{"name":"` + strings.Repeat("w", 255) + `","price":9999999999.99,"stock":2147483647}`))
	require.NoError(t, err)
	assert.True(t, in.Price.Equal(MaxPrice))
	assert.Equal(t, MaxStock, in.Stock)
}

func TestLoadProductAcceptsZero(t *testing.T) {
	in, err := LoadProduct([]byte(`{"name":"Free sample","price":0,"stock":0}`))
	require.NoError(t, err)
	assert.True(t, in.Price.IsZero())
	assert.Equal(t, 0, in.Stock)
}

func TestLoadAccountCreate(t *testing.T) {
	in, err := LoadAccountCreate([]byte(`{"username":"ada","password":"s3cret","customer_id":7}`))
	require.NoError(t, err)
	assert.Equal(t, AccountCreateInput{Username: "ada", Password: "s3cret", CustomerID: 7}, in)

	_, err = LoadAccountCreate([]byte(`{"username":"ada"}`))
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "customer_id")
	assert.NotContains(t, fields, "username")
}

func TestLoadAccountUpdateIsPartial(t *testing.T) {
	in, err := LoadAccountUpdate([]byte(`{"password":"new-pass"}`))
	require.NoError(t, err)
	assert.Nil(t, in.Username)
	require.NotNil(t, in.Password)
	assert.Equal(t, "new-pass", *in.Password)

	_, err = LoadAccountUpdate([]byte(`{"username":""}`))
	assert.Equal(t, []string{MsgEmptyString}, fieldErrors(t, err)["username"])
}

func TestLoadPlaceOrder(t *testing.T) {
	in, err := LoadPlaceOrder([]byte(`{"customer_id":1,"items":[{"product_id":2,"quantity":3},{"product_id":4,"quantity":1}]}`))
	require.NoError(t, err)
	assert.Equal(t, PlaceOrderInput{
		CustomerID: 1,
		Items:      []LineItemInput{{ProductID: 2, Quantity: 3}, {ProductID: 4, Quantity: 1}},
	}, in)
}

func TestLoadPlaceOrderErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errors map[string][]string
	}{
		{
			name:   "missing everything",
			body:   `{}`,
			errors: map[string][]string{"customer_id": {MsgRequired}, "items": {MsgRequired}},
		},
		{
			name:   "empty items",
			body:   `{"customer_id":1,"items":[]}`,
			errors: map[string][]string{"items": {MsgEmptyList}},
		},
		{
			name:   "items not a list",
			body:   `{"customer_id":1,"items":{"product_id":1}}`,
			errors: map[string][]string{"items": {MsgNotList}},
		},
		{
			name: "bad line items",
			body: `{"customer_id":1,"items":[{"product_id":1,"quantity":0},{"quantity":2},5]}`,
			errors: map[string][]string{
				"items.0.quantity":   {MsgNotPositive},
				"items.1.product_id": {MsgRequired},
				"items.2":            {MsgNotObject},
			},
		},
		{
			name:   "quantity above column range",
			body:   `{"customer_id":1,"items":[{"product_id":1,"quantity":2147483648}]}`,
			errors: map[string][]string{"items.0.quantity": {MsgTooLarge("2147483647")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPlaceOrder([]byte(tt.body))
			assert.Equal(t, tt.errors, fieldErrors(t, err))
		})
	}
}

func TestLoadOrderUpdate(t *testing.T) {
	in, err := LoadOrderUpdate([]byte(`{"status":"Shipped","delivery_date":"2024-03-01"}`))
	require.NoError(t, err)
	require.NotNil(t, in.Status)
	assert.Equal(t, models.OrderStatusShipped, *in.Status)
	assert.True(t, in.DeliveryDateSet)
	require.NotNil(t, in.DeliveryDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *in.DeliveryDate)

	in, err = LoadOrderUpdate([]byte(`{"delivery_date":null}`))
	require.NoError(t, err)
	assert.Nil(t, in.Status)
	assert.True(t, in.DeliveryDateSet)
	assert.Nil(t, in.DeliveryDate)

	in, err = LoadOrderUpdate([]byte(`{}`))
	require.NoError(t, err)
	assert.False(t, in.DeliveryDateSet)
}

func TestLoadOrderUpdateErrors(t *testing.T) {
	_, err := LoadOrderUpdate([]byte(`{"status":"Lost","delivery_date":"next tuesday"}`))
	fields := fieldErrors(t, err)
	assert.Equal(t, []string{MsgInvalidStatus}, fields["status"])
	assert.Equal(t, []string{MsgNotDatetime}, fields["delivery_date"])
}

func TestValidationErrorMessage(t *testing.T) {
	v := NewValidationError()
	assert.NoError(t, v.err())

	v.Add("stock", MsgNegative)
	v.Add("name", MsgRequired)
	assert.Equal(t, "validation failed: name: "+MsgRequired+"; stock: "+MsgNegative, v.Error())
}
