// Package schema turns raw request bodies into validated inputs. Every loader
// reports all offending fields at once through a *ValidationError.
package schema

import (
	"math"
	"strconv"
	"time"

	"github.com/jogardn/storefront/pkg/models"
	"github.com/shopspring/decimal"
)

// Upper bounds matching the column types of the relational schema.
const (
	MaxNameLength     = 255
	MaxEmailLength    = 320
	MaxPhoneLength    = 15
	MaxUsernameLength = 255
	MaxStock          = math.MaxInt32
	MaxQuantity       = math.MaxInt32
)

var (
	// MaxPrice fits NUMERIC(12,2).
	MaxPrice = decimal.RequireFromString("9999999999.99")
	// MaxOrderTotal fits NUMERIC(14,2).
	MaxOrderTotal = decimal.RequireFromString("999999999999.99")
)

type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

type AccountCreateInput struct {
	Username   string
	Password   string
	CustomerID int64
}

// AccountUpdateInput carries only the fields present in the request.
type AccountUpdateInput struct {
	Username *string
	Password *string
}

type ProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

type LineItemInput struct {
	ProductID int64
	Quantity  int
}

type PlaceOrderInput struct {
	CustomerID int64
	Items      []LineItemInput
}

// OrderUpdateInput distinguishes an absent delivery_date from an explicit
// null, which clears the stored date.
type OrderUpdateInput struct {
	Status          *models.OrderStatus
	DeliveryDate    *time.Time
	DeliveryDateSet bool
}

func LoadCustomer(data []byte) (CustomerInput, error) {
	errs := NewValidationError()
	obj, ok := parseObject(data, "", errs)
	if !ok {
		return CustomerInput{}, errs
	}

	in := CustomerInput{
		Name:  obj.requiredString("name"),
		Email: obj.requiredString("email"),
		Phone: obj.requiredString("phone"),
	}
	obj.maxLength("name", in.Name, MaxNameLength)
	obj.maxLength("email", in.Email, MaxEmailLength)
	obj.maxLength("phone", in.Phone, MaxPhoneLength)
	return in, errs.err()
}

func LoadAccountCreate(data []byte) (AccountCreateInput, error) {
	errs := NewValidationError()
	obj, ok := parseObject(data, "", errs)
	if !ok {
		return AccountCreateInput{}, errs
	}

	in := AccountCreateInput{
		Username:   obj.requiredString("username"),
		Password:   obj.requiredString("password"),
		CustomerID: obj.requiredInt("customer_id"),
	}
	obj.maxLength("username", in.Username, MaxUsernameLength)
	return in, errs.err()
}

func LoadAccountUpdate(data []byte) (AccountUpdateInput, error) {
	errs := NewValidationError()
	obj, ok := parseObject(data, "", errs)
	if !ok {
		return AccountUpdateInput{}, errs
	}

	in := AccountUpdateInput{
		Username: obj.optionalString("username"),
		Password: obj.optionalString("password"),
	}
	if in.Username != nil {
		obj.maxLength("username", *in.Username, MaxUsernameLength)
	}
	return in, errs.err()
}

func LoadProduct(data []byte) (ProductInput, error) {
	errs := NewValidationError()
	obj, ok := parseObject(data, "", errs)
	if !ok {
		return ProductInput{}, errs
	}

	in := ProductInput{Name: obj.requiredString("name")}
	obj.maxLength("name", in.Name, MaxNameLength)

	in.Price = obj.requiredDecimal("price")
	if !obj.failed("price") {
		switch {
		case in.Price.IsNegative():
			obj.fail("price", MsgNegative)
		case in.Price.Round(2).GreaterThan(MaxPrice):
			obj.fail("price", MsgTooLarge(MaxPrice.StringFixed(2)))
		}
	}

	stock := obj.requiredInt("stock")
	if !obj.failed("stock") {
		switch {
		case stock < 0:
			obj.fail("stock", MsgNegative)
		case stock > MaxStock:
			obj.fail("stock", MsgTooLarge(strconv.Itoa(MaxStock)))
		}
	}
	in.Stock = int(stock)

	return in, errs.err()
}

func LoadPlaceOrder(data []byte) (PlaceOrderInput, error) {
	errs := NewValidationError()
	obj, ok := parseObject(data, "", errs)
	if !ok {
		return PlaceOrderInput{}, errs
	}

	in := PlaceOrderInput{CustomerID: obj.requiredInt("customer_id")}

	for i, raw := range obj.requiredList("items") {
		item, ok := parseObject(raw, "items."+strconv.Itoa(i)+".", errs)
		if !ok {
			continue
		}
		productID := item.requiredInt("product_id")
		quantity := item.requiredInt("quantity")
		if !item.failed("quantity") {
			switch {
			case quantity < 1:
				item.fail("quantity", MsgNotPositive)
			case quantity > MaxQuantity:
				item.fail("quantity", MsgTooLarge(strconv.Itoa(MaxQuantity)))
			}
		}
		in.Items = append(in.Items, LineItemInput{ProductID: productID, Quantity: int(quantity)})
	}

	return in, errs.err()
}

func LoadOrderUpdate(data []byte) (OrderUpdateInput, error) {
	errs := NewValidationError()
	obj, ok := parseObject(data, "", errs)
	if !ok {
		return OrderUpdateInput{}, errs
	}

	var in OrderUpdateInput
	if raw, ok := obj.lookup("status"); ok {
		s := obj.nonEmptyString("status", raw)
		status := models.OrderStatus(s)
		if _, failed := errs.Fields["status"]; !failed {
			if status.Valid() {
				in.Status = &status
			} else {
				obj.fail("status", MsgInvalidStatus)
			}
		}
	}

	if obj.present("delivery_date") {
		in.DeliveryDateSet = true
		in.DeliveryDate = obj.optionalTime("delivery_date")
	}

	return in, errs.err()
}
