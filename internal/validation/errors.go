package validation

import (
	"fmt"
	"strings"
)

// ValidationError is a single rejected field.
type ValidationError struct { //nolint:revive // validation.ValidationError reads better at call sites than validation.Error
	field   string
	tag     string
	param   string
	message string
}

// Field returns the JSON path of the rejected value.
func (e ValidationError) Field() string { return e.field }

// Tag returns the rule that failed.
func (e ValidationError) Tag() string { return e.tag }

// Param returns the rule parameter, e.g. "100" for max=100.
func (e ValidationError) Param() string { return e.param }

// Error returns the human-readable message.
func (e ValidationError) Error() string { return e.message }

// RequestValidationError collects every rejected field of one request.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the individual field errors.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Fields returns the names of the rejected fields in order.
func (ve *RequestValidationError) Fields() []string {
	out := make([]string, len(ve.errors))
	for i, e := range ve.errors {
		out[i] = e.field
	}
	return out
}

// Error joins the field messages with "; ".
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.errors))
	for i, e := range ve.errors {
		msgs[i] = e.message
	}
	return strings.Join(msgs, "; ")
}

// Errorf builds a single-field RequestValidationError.
func Errorf(field, tag, format string, args ...any) *RequestValidationError {
	return &RequestValidationError{errors: []ValidationError{{
		field:   field,
		tag:     tag,
		message: fmt.Sprintf(format, args...),
	}}}
}
