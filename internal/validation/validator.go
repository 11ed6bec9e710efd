// Package validation checks request payloads with validator/v10, reading the
// same `binding` tags gin uses, and turns failures into VALIDATION errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator reading `binding` tags and reporting JSON field names.
func New() *Validator {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(jsonName)
	return &Validator{v: v}
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return FromError(err)
	}
	return nil
}

// FromError converts validator failures (including the ones gin returns from
// ShouldBind) into a VALIDATION error with per-field details. Other errors,
// such as malformed JSON, become a plain VALIDATION error.
func FromError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid request body")
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[fieldName(e)] = friendlyMessage(e)
	}
	return domainerrors.Validation("validation failed").WithDetails(fieldErrors)
}

// fieldName prefers the JSON name. gin's own validator reports Go field
// names, so fall back to a lower-camel version of those.
func fieldName(e validator.FieldError) string {
	name := e.Field()
	if name == e.StructField() && name != "" {
		return strings.ToLower(name[:1]) + name[1:]
	}
	return name
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
