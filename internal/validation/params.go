package validation

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/wildtrace/wildtrace-api/internal/query"
)

// ListParams are the paging and sorting parameters common to every listing.
type ListParams struct {
	Page   query.Page
	SortBy string
	Order  string
}

// ParseListParams reads page, limit, sortBy and order.
//
// page and limit must be integers >= 1; limit is capped at query.MaxLimit.
// sortBy and order are passed through untouched and resolved against the
// resource's allow-list later, so unknown values fall back to defaults.
func ParseListParams(values url.Values) (ListParams, error) {
	page, err := positiveInt(values, "page", query.DefaultPage)
	if err != nil {
		return ListParams{}, err
	}
	limit, err := positiveInt(values, "limit", query.DefaultLimit)
	if err != nil {
		return ListParams{}, err
	}
	return ListParams{
		Page:   query.NewPage(page, limit),
		SortBy: strings.TrimSpace(values.Get("sortBy")),
		Order:  strings.TrimSpace(values.Get("order")),
	}, nil
}

func positiveInt(values url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, Errorf(name, "number", "%s must be an integer", name)
	}
	if n < 1 {
		return 0, Errorf(name, "min", "%s must be at least 1", name)
	}
	return n, nil
}

// OptionalInt parses an integer query parameter, returning nil when absent.
func OptionalInt(values url.Values, name string) (*int64, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, Errorf(name, "number", "%s must be an integer", name)
	}
	return &n, nil
}

// OptionalBool parses a "true"/"false" query parameter, returning nil when absent.
func OptionalBool(values url.Values, name string) (*bool, error) {
	switch strings.TrimSpace(values.Get(name)) {
	case "":
		return nil, nil
	case "true":
		b := true
		return &b, nil
	case "false":
		b := false
		return &b, nil
	default:
		return nil, Errorf(name, "oneof", "%s must be one of: true, false", name)
	}
}

// OptionalTime parses an RFC 3339 date-time query parameter, returning nil
// when absent. The result is normalised to UTC.
func OptionalTime(values url.Values, name string) (*time.Time, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, Errorf(name, "datetime", "%s must be a valid date/time in RFC3339 format", name)
	}
	t = t.UTC()
	return &t, nil
}

// OptionalString returns the trimmed value of a query parameter, or nil.
func OptionalString(values url.Values, name string) *string {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// PathID parses a positive integer path segment.
func PathID(raw, name string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, Errorf(name, "number", "%s must be a positive integer", name)
	}
	return n, nil
}

// PathUUID checks that a path segment is a UUID and returns its canonical form.
func PathUUID(raw, name string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", Errorf(name, "uuid", "%s must be a valid UUID", name)
	}
	return id.String(), nil
}

// RequiredPath rejects an empty path segment.
func RequiredPath(raw, name string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", Errorf(name, "required", "%s is required", name)
	}
	return raw, nil
}

// DecodeJSON decodes a JSON request body into dst and validates it.
// Malformed JSON, an empty body and trailing data are reported as
// validation errors on the "body" field.
func DecodeJSON(r io.Reader, dst any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return Errorf("body", "readable", "request body could not be read: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Errorf("body", "required", "request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return Errorf(typeErr.Field, "type", "%s must be of type %s", typeErr.Field, typeErr.Type.String())
		}
		return Errorf("body", "json", "invalid JSON body")
	}
	if dec.More() {
		return Errorf("body", "json", "invalid JSON body")
	}

	return ValidateStruct(dst)
}
