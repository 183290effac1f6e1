// Package validator plugs go-playground/validator into echo.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// FieldError is one failed rule, reported with the JSON field name.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationErrors is returned by Validate when any rule fails.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		if fe.Param != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field, fe.Rule, fe.Param))

			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Rule))
	}

	return strings.Join(parts, "; ")
}

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New builds a validator that reports json tag names and understands
// decimal amounts through the "dgte0" rule.
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}

		return name
	})

	_ = v.RegisterValidation("dgte0", func(fl validator.FieldLevel) bool {
		switch amount := fl.Field().Interface().(type) {
		case decimal.Decimal:
			return !amount.IsNegative()
		case *decimal.Decimal:
			return amount == nil || !amount.IsNegative()
		default:
			return false
		}
	})

	return &CustomValidator{validate: v}
}

// Validate runs the struct rules and flattens failures into ValidationErrors.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.WithStack(err)
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{
			Field: fieldPath(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}

	return out
}

// fieldPath drops the root struct name: "Req.shippingAddress.city" -> "shippingAddress.city".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}
