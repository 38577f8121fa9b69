package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type selectionQuery struct {
	Category string `query:"category" validate:"required,max=200"`
	Brand    string `query:"brand" validate:"required,max=300"`
}

type brandsQuery struct {
	Category string `query:"category" validate:"required,max=200"`
}

type brandSearchQuery struct {
	Category string `query:"category" validate:"required,max=200"`
	Text     string `query:"q" validate:"max=100"`
	Limit    int    `query:"limit" validate:"gte=0,lte=100"`
}

type pageQuery struct {
	Category string `query:"category" validate:"max=200"`
	Brand    string `query:"brand" validate:"max=300"`
}

// validationError maps query parameter names to messages.
type validationError struct {
	Fields map[string]string
}

func (e *validationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+" "+v)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// queryValidator wraps go-playground/validator, reporting fields by their
// query parameter names.
type queryValidator struct {
	v *validator.Validate
}

func newQueryValidator() *queryValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("query"); name != "" {
			return name
		}
		return fld.Name
	})
	return &queryValidator{v: v}
}

func (q *queryValidator) validate(s any) error {
	err := q.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, e := range fieldErrs {
		fields[e.Field()] = friendlyMessage(e)
	}
	return &validationError{Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must be at most " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
