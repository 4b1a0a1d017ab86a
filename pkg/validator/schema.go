package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// Schemas is a registry of named struct schemas.
// It is safe for concurrent use.
type Schemas struct {
	validate *playground.Validate
	types    map[string]reflect.Type
	mu       sync.RWMutex
}

// NewSchemas creates an empty registry with the mail-specific tags installed.
func NewSchemas() *Schemas {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)

	for tag, fn := range map[string]playground.Func{
		"mailaddr":  func(fl playground.FieldLevel) bool { return IsEmail(fl.Field().String()) },
		"mailaddrs": isEmailList,
		"smtpurl":   func(fl playground.FieldLevel) bool { return IsSMTPURL(fl.Field().String()) },
		"port":      func(fl playground.FieldLevel) bool { return IsPort(fl.Field().Interface()) },
	} {
		// Only fails on empty tag names or nil funcs.
		_ = v.RegisterValidation(tag, fn)
	}

	return &Schemas{
		validate: v,
		types:    make(map[string]reflect.Type),
	}
}

// Register records sample's struct type under name, replacing any previous entry.
// Pointer samples are dereferenced.
func (s *Schemas) Register(name string, sample any) error {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name == "" || t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %q", ErrInvalidSchema, name)
	}

	s.mu.Lock()
	s.types[name] = t
	s.mu.Unlock()
	return nil
}

// Validate checks v against the schema registered under name.
// Field failures are returned as ValidationErrors.
func (s *Schemas) Validate(name string, v any) error {
	s.mu.RLock()
	want, ok := s.types[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}

	got := reflect.TypeOf(v)
	for got != nil && got.Kind() == reflect.Pointer {
		got = got.Elem()
	}
	if got != want {
		return fmt.Errorf("%w: %q expects %s, got %v", ErrSchemaMismatch, name, want, got)
	}

	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	return convert(fieldErrs)
}

func isEmailList(fl playground.FieldLevel) bool {
	addrs, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, a := range addrs {
		if !IsEmail(a) {
			return false
		}
	}
	return true
}

func convert(fieldErrs playground.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		values := map[string]any{"field": field}
		if p := fe.Param(); p != "" {
			values["param"] = p
		}
		out = append(out, ValidationError{
			Field:             field,
			Message:           message(fe.Tag(), fe.Param()),
			TranslationKey:    "validation." + fe.Tag(),
			TranslationValues: values,
		})
	}
	return out
}

func message(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + strings.ToLower(param) + " is empty"
	case "mailaddr", "email":
		return "must be a valid email address"
	case "mailaddrs":
		return "must contain only valid email addresses"
	case "smtpurl":
		return "must be a valid smtp:// or smtps:// URL"
	case "port":
		return "must be a port number between 0 and 65535"
	case "min":
		return "must be at least " + param
	case "max":
		return "must not exceed " + param
	case "oneof":
		return "must be one of: " + param
	case "url":
		return "must be a valid URL"
	default:
		return "failed on the " + tag + " rule"
	}
}

// fieldName prefers the json tag so errors match the wire names.
func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}
