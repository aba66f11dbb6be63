package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator adapts go-playground/validator to echo.Validator
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator reports fields by their JSON names
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Validate implements echo.Validator
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// validationErrors converts a validator failure into per-field messages.
// It returns nil for other errors.
func validationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field is required"
	case "email":
		return "Must be a valid email address"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	default:
		return "Invalid value"
	}
}
