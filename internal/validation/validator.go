// Package validation checks inbound request values before any handler logic
// runs. Bodies are validated with go-playground/validator struct tags; query
// strings and path segments go through the typed parsers in params.go.
//
// Error messages use the JSON field name so clients can map them back to
// what they sent.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Tag aliases over the built-in datetime validator.
const (
	isoDateTag   = "datetime=2006-01-02"
	clockTimeTag = "datetime=15:04|datetime=15:04:05"
)

// GetValidator returns the shared validator instance, configured once with
// JSON field naming and the tag aliases:
//   - isodate: a real calendar date as YYYY-MM-DD
//   - clocktime: HH:MM or HH:MM:SS on a 24-hour clock
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		validate.RegisterAlias("isodate", isoDateTag)
		validate.RegisterAlias("clocktime", clockTimeTag)
	})

	return validate
}

// ValidateStruct validates s against its struct tags.
// It returns nil or a *RequestValidationError.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errorf("body", "invalid", "%v", err)
	}

	out := &RequestValidationError{errors: make([]ValidationError, len(fieldErrs))}
	for i, fe := range fieldErrs {
		out.errors[i] = ValidationError{
			field:   fieldPath(fe),
			tag:     fe.Tag(),
			param:   fe.Param(),
			message: translateError(fe),
		}
	}
	return out
}

// fieldPath turns "CreateSubmission.sightings[0].group_name" into
// "sightings[0].group_name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// errorMessageTemplates maps validation tags to message templates taking the field name.
var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"uuid":      "%s must be a valid UUID",
	"uuid4":     "%s must be a valid UUID",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
	"isodate":   "%s must be a date in YYYY-MM-DD format",
	"clocktime": "%s must be a time in HH:MM or HH:MM:SS format",
	"datetime":  "%s must be a valid date/time in RFC3339 format",
	"url":       "%s must be a valid URL",
	"dive":      "%s contains an invalid element",
}

// errorMessageWithParam maps validation tags to templates that include the tag parameter.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translateError(fe validator.FieldError) string {
	field := fieldPath(fe)

	if tmpl, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
