package schema

import (
	"fmt"
	"sort"
	"strings"
)

const (
	MsgRequired      = "Missing data for required field."
	MsgNotString     = "Not a valid string."
	MsgNotInteger    = "Not a valid integer."
	MsgNotNumber     = "Not a valid number."
	MsgNotList       = "Not a valid list."
	MsgNotObject     = "Invalid input type."
	MsgEmptyString   = "Shorter than minimum length 1."
	MsgEmptyList     = "Shorter than minimum length 1."
	MsgNegative      = "Must be greater than or equal to 0."
	MsgNotPositive   = "Must be greater than or equal to 1."
	MsgNotDatetime   = "Not a valid datetime."
	MsgInvalidStatus = "Must be one of: Pending, Shipped, Delivered, Cancelled."
)

// MsgTooLong and MsgTooLarge word upper bounds the same way as the fixed
// messages above.
func MsgTooLong(max int) string {
	return fmt.Sprintf("Longer than maximum length %d.", max)
}

func MsgTooLarge(max string) string {
	return fmt.Sprintf("Must be less than or equal to %s.", max)
}

// SchemaField collects errors that do not belong to a single field, such as
// a body that is not a JSON object.
const SchemaField = "_schema"

// ValidationError maps field names to the rules they broke. Nested fields
// use dotted paths, e.g. "items.1.quantity".
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// FieldError is a shorthand for a ValidationError with a single message.
func FieldError(field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	return v
}

func (v *ValidationError) Add(field, message string) {
	v.Fields[field] = append(v.Fields[field], message)
}

func (v *ValidationError) Empty() bool {
	return len(v.Fields) == 0
}

func (v *ValidationError) Error() string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(v.Fields[name], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// err returns v as an error, or nil when no field failed. Returning a typed
// nil pointer through the error interface would be non-nil, hence the helper.
func (v *ValidationError) err() error {
	if v.Empty() {
		return nil
	}
	return v
}
