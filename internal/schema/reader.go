package schema

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// object reads one JSON object field by field, recording failures into errs
// instead of stopping at the first one.
type object struct {
	fields map[string]json.RawMessage
	prefix string
	errs   *ValidationError
}

func parseObject(data []byte, prefix string, errs *ValidationError) (*object, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		name := strings.TrimSuffix(prefix, ".")
		if name == "" {
			name = SchemaField
		}
		errs.Add(name, MsgNotObject)
		return nil, false
	}
	return &object{fields: fields, prefix: prefix, errs: errs}, true
}

func (o *object) fail(name, message string) {
	o.errs.Add(o.prefix+name, message)
}

func (o *object) failed(name string) bool {
	_, ok := o.errs.Fields[o.prefix+name]
	return ok
}

// maxLength counts characters, not bytes, as VARCHAR(n) does.
func (o *object) maxLength(name, s string, max int) {
	if !o.failed(name) && utf8.RuneCountInString(s) > max {
		o.fail(name, MsgTooLong(max))
	}
}

// lookup returns the raw value of a field; null counts as absent.
func (o *object) lookup(name string) (json.RawMessage, bool) {
	raw, ok := o.fields[name]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

// present reports whether the key exists at all, including an explicit null.
func (o *object) present(name string) bool {
	_, ok := o.fields[name]
	return ok
}

func (o *object) requiredString(name string) string {
	raw, ok := o.lookup(name)
	if !ok {
		o.fail(name, MsgRequired)
		return ""
	}
	return o.nonEmptyString(name, raw)
}

func (o *object) optionalString(name string) *string {
	raw, ok := o.lookup(name)
	if !ok {
		return nil
	}
	s := o.nonEmptyString(name, raw)
	return &s
}

func (o *object) nonEmptyString(name string, raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		o.fail(name, MsgNotString)
		return ""
	}
	if strings.TrimSpace(s) == "" {
		o.fail(name, MsgEmptyString)
	}
	return s
}

func (o *object) requiredInt(name string) int64 {
	raw, ok := o.lookup(name)
	if !ok {
		o.fail(name, MsgRequired)
		return 0
	}
	n, err := parseInt(raw)
	if err != nil {
		o.fail(name, MsgNotInteger)
		return 0
	}
	return n
}

func (o *object) requiredDecimal(name string) decimal.Decimal {
	raw, ok := o.lookup(name)
	if !ok {
		o.fail(name, MsgRequired)
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		o.fail(name, MsgNotNumber)
		return decimal.Zero
	}
	return d
}

func (o *object) requiredList(name string) []json.RawMessage {
	raw, ok := o.lookup(name)
	if !ok {
		o.fail(name, MsgRequired)
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		o.fail(name, MsgNotList)
		return nil
	}
	if len(list) == 0 {
		o.fail(name, MsgEmptyList)
	}
	return list
}

func (o *object) optionalTime(name string) *time.Time {
	raw, ok := o.lookup(name)
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		o.fail(name, MsgNotDatetime)
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	o.fail(name, MsgNotDatetime)
	return nil
}

// parseInt accepts JSON integers and integer strings, rejecting fractions.
func parseInt(raw json.RawMessage) (int64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return strconv.ParseInt(n.String(), 10, 64)
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
