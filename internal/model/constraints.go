package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var constraints = newConstraintValidator()

func newConstraintValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names so messages match the payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(fld.Name[:1]) + fld.Name[1:]
		}
		return name
	})
	return v
}

// CheckUser enforces the write-time field constraints of a full user document
func CheckUser(u User) error {
	return toConstraintError(constraints.Struct(u))
}

// CheckPatch enforces the write-time constraints on the fields a patch sets
func CheckPatch(p UserPatch) error {
	return toConstraintError(constraints.Struct(p))
}

// CheckOrder enforces the constraints of a single order line
func CheckOrder(o Order) error {
	return toConstraintError(constraints.Struct(o))
}

func toConstraintError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("constraint check: %w", err)
	}

	// only the first violation is reported
	fe := fieldErrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	value := fe.Value()
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Pointer && !rv.IsNil() {
		value = rv.Elem().Interface()
	}

	ce := &ConstraintError{Field: field, Rule: fe.Tag(), Value: value}
	switch fe.Tag() {
	case "required":
		ce.Value = nil
		ce.Message = fmt.Sprintf("%s is required.", field)
	case "alpha":
		ce.Message = fmt.Sprintf("%v is not in valid format", value)
	case "email":
		ce.Message = fmt.Sprintf("%v is not an email address.", value)
	case "gte":
		ce.Message = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		ce.Message = fmt.Sprintf("%s failed the %s constraint", field, fe.Tag())
	}
	return ce
}
