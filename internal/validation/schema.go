// Package validation checks inbound JSON payloads against the user schema
// before anything is handed to the service layer.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"user-service/internal/model"
)

type kind int

const (
	kindString kind = iota
	kindNumber
	kindInteger
	kindBool
	kindObject
	kindList
)

func (k kind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindNumber:
		return "number"
	case kindInteger:
		return "integer"
	case kindBool:
		return "boolean"
	case kindObject:
		return "object"
	default:
		return "array"
	}
}

// field describes one member of an object schema
type field struct {
	name     string
	kind     kind
	optional bool
	email    bool
	fields   []field // members when kind is kindObject
	elem     *field  // element schema when kind is kindList

	// custom messages; defaults are used when empty
	requiredMsg string
	typeMsg     string
}

var nameSchema = []field{
	{name: "firstName", kind: kindString},
	{name: "lastName", kind: kindString},
}

var addressSchema = []field{
	{name: "street", kind: kindString},
	{name: "city", kind: kindString},
	{name: "country", kind: kindString},
}

var orderSchema = []field{
	{name: "productName", kind: kindString},
	{name: "price", kind: kindNumber},
	{name: "quantity", kind: kindInteger},
}

var userSchema = []field{
	{name: "userId", kind: kindInteger},
	{name: "username", kind: kindString},
	{name: "password", kind: kindString},
	{name: "fullName", kind: kindObject, fields: nameSchema},
	{name: "age", kind: kindInteger},
	{name: "email", kind: kindString, email: true},
	{
		name:        "isActive",
		kind:        kindBool,
		requiredMsg: "isActive is required",
		typeMsg:     "isActive must be a boolean",
	},
	{name: "hobbies", kind: kindList, elem: &field{kind: kindString}},
	{name: "address", kind: kindObject, fields: addressSchema},
	{name: "orders", kind: kindList, optional: true, elem: &field{kind: kindObject, fields: orderSchema}},
}

var formats = validator.New()

// largest integer a JSON number carries without loss
const maxSafeInteger = 1<<53 - 1

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func typeOf(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	default:
		if r.IsArray() {
			return "array"
		}
		return "object"
	}
}

// checkObject validates the members of obj and appends every violation to issues
func checkObject(obj gjson.Result, fields []field, prefix string, issues *[]model.Issue) {
	for _, f := range fields {
		checkValue(obj.Get(f.name), f, joinPath(prefix, f.name), issues)
	}
}

func checkValue(r gjson.Result, f field, path string, issues *[]model.Issue) {
	if !r.Exists() {
		if f.optional {
			return
		}
		msg := f.requiredMsg
		if msg == "" {
			msg = "Required"
		}
		*issues = append(*issues, model.Issue{Path: path, Message: msg})
		return
	}

	if !matchesKind(r, f.kind) {
		msg := f.typeMsg
		if msg == "" {
			msg = fmt.Sprintf("Expected %s, received %s", f.kind, typeOf(r))
			if f.kind == kindInteger && r.Type == gjson.Number {
				msg = "Expected integer, received float"
				if r.Num == math.Trunc(r.Num) {
					msg = "Number out of range"
				}
			}
		}
		*issues = append(*issues, model.Issue{Path: path, Message: msg})
		return
	}

	switch f.kind {
	case kindString:
		if f.email {
			if err := formats.Var(strings.TrimSpace(r.String()), "email"); err != nil {
				*issues = append(*issues, model.Issue{Path: path, Message: "Invalid email"})
			}
		}
	case kindObject:
		checkObject(r, f.fields, path, issues)
	case kindList:
		for i, item := range r.Array() {
			checkValue(item, *f.elem, fmt.Sprintf("%s[%d]", path, i), issues)
		}
	}
}

func matchesKind(r gjson.Result, k kind) bool {
	switch k {
	case kindString:
		return r.Type == gjson.String
	case kindNumber:
		return r.Type == gjson.Number
	case kindInteger:
		return r.Type == gjson.Number && r.Num == math.Trunc(r.Num) && math.Abs(r.Num) <= maxSafeInteger
	case kindBool:
		return r.Type == gjson.True || r.Type == gjson.False
	case kindObject:
		return r.IsObject()
	case kindList:
		return r.IsArray()
	}
	return false
}

// parseDocument checks raw is a JSON object and returns its parsed form
func parseDocument(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &model.ValidationError{
			Issues: []model.Issue{{Path: "", Message: "Malformed JSON body"}},
		}
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return gjson.Result{}, &model.ValidationError{
			Issues: []model.Issue{{Path: "", Message: fmt.Sprintf("Expected object, received %s", typeOf(doc))}},
		}
	}
	return doc, nil
}

func str(r gjson.Result) string {
	return strings.TrimSpace(r.String())
}

func nameFrom(r gjson.Result) model.Name {
	return model.Name{
		FirstName: str(r.Get("firstName")),
		LastName:  str(r.Get("lastName")),
	}
}

func addressFrom(r gjson.Result) model.Address {
	return model.Address{
		Street:  str(r.Get("street")),
		City:    str(r.Get("city")),
		Country: str(r.Get("country")),
	}
}

func orderFrom(r gjson.Result) model.Order {
	return model.Order{
		ProductName: str(r.Get("productName")),
		Price:       r.Get("price").Float(),
		Quantity:    int(r.Get("quantity").Int()),
	}
}

func stringsFrom(r gjson.Result) []string {
	items := r.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

func ordersFrom(r gjson.Result) []model.Order {
	items := r.Array()
	if len(items) == 0 {
		return nil
	}
	out := make([]model.Order, 0, len(items))
	for _, item := range items {
		out = append(out, orderFrom(item))
	}
	return out
}
