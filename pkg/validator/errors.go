package validator

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownSchema is returned when validating against a schema that was never registered.
	ErrUnknownSchema = errors.New("validator: unknown schema")

	// ErrSchemaMismatch is returned when the value type differs from the registered sample.
	ErrSchemaMismatch = errors.New("validator: value does not match schema type")

	// ErrInvalidSchema is returned when registering a schema without a name or with a non-struct sample.
	ErrInvalidSchema = errors.New("validator: invalid schema")
)

// ValidationError describes a single failed field.
type ValidationError struct {
	TranslationValues map[string]any `json:"-"`
	Field             string         `json:"field"`
	Message           string         `json:"message"`
	TranslationKey    string         `json:"key"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is a list of field failures returned by Schemas.Validate.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Get returns all messages recorded for the given field.
func (v ValidationErrors) Get(field string) []string {
	var msgs []string
	for _, e := range v {
		if e.Field == field {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Has reports whether the field has at least one failure.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Translate rewrites messages in place using fn.
// Entries without a translation key keep their message. A nil fn is a no-op.
func (v ValidationErrors) Translate(fn func(key string, values map[string]any) string) {
	if fn == nil {
		return
	}
	for i := range v {
		if v[i].TranslationKey == "" {
			continue
		}
		v[i].Message = fn(v[i].TranslationKey, v[i].TranslationValues)
	}
}

// IsValidationError reports whether err is or wraps ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors returns the ValidationErrors wrapped in err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
