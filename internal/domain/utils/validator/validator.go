package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/campusevents/backend/internal/domain/common/errorz"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// labels maps form field names to the names used in messages.
var labels = map[string]string{
	"title":       "Title",
	"description": "Description",
	"location":    "Location",
	"start_time":  "Start time",
	"end_time":    "End time",
	"link":        "Link",
	"content":     "Content",
}

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v by its struct tags and returns the first violation as a
// *errorz.ValidationError.
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return &errorz.ValidationError{Message: "Invalid form data"}
	}
	return fieldError(fieldErrors[0])
}

func fieldError(fe validator.FieldError) *errorz.ValidationError {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	var message string
	switch fe.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", label)
	case "max":
		message = fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "url", "http_url":
		message = "Invalid URL"
	default:
		message = fmt.Sprintf("%s is invalid", label)
	}

	return &errorz.ValidationError{Field: fe.Field(), Message: message}
}
