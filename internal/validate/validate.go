// Package validate turns struct-tag validation failures into field-level
// apperr.Validation errors keyed by JSON field name.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return val
}

// Struct validates s. Extra holds field errors found by hand (for values the
// tags cannot express) and is merged into the result.
func Struct(s any, extra map[string]string) error {
	fields := map[string]string{}
	for k, msg := range extra {
		fields[k] = msg
	}
	err := v.Struct(s)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = message(fe)
		}
	} else if err != nil {
		return apperr.Internal("validate payload", err)
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "gt", "gte", "min":
		return "Ensure this value is at least " + fe.Param() + "."
	case "lte":
		return "Ensure this value is less than or equal to " + fe.Param() + "."
	case "max":
		return "Ensure this value has at most " + fe.Param() + "."
	default:
		return "Invalid value."
	}
}
