// Package validation configures the struct validator shared by the HTTP handlers and the
// checkout flow.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

var (
	phonePattern = regexp.MustCompile(`^\d{10,}$`)
	zipPattern   = regexp.MustCompile(`^\d{5,}$`)
)

// New returns a validator with the store's custom tags registered:
//
//	phone    - at least 10 digits
//	zipcode  - at least 5 digits
//	notblank - not empty and not only whitespace
//
// decimal.Decimal fields are compared as float64 so numeric tags such as gt=0 apply to them.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	// These registrations use built-in signatures and cannot fail.
	_ = v.RegisterValidation("phone", matches(phonePattern))
	_ = v.RegisterValidation("zipcode", matches(zipPattern))
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func matches(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

// Errors converts a validation failure into a field -> message map.
// Non-validation errors are reported under the "_" key.
func Errors(err error) map[string]string {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorMessages["_"] = err.Error()
		return errorMessages
	}
	for _, e := range validationErrors {
		errorMessages[e.Field()] = message(e)
	}
	return errorMessages
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Phone number must contain at least 10 digits"
	case "zipcode":
		return "ZIP code must contain at least 5 digits"
	}
	return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
}
