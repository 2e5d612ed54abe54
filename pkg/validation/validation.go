package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	dErrors "vertical/pkg/domain-errors"
)

// Message is the envelope message rendered for every payload validation failure.
const Message = "Input payload validation failed"

// SchemaField keys violations that apply to the payload as a whole.
const SchemaField = "_schema"

// PhoneNumberFormat is the only accepted phone number shape.
var PhoneNumberFormat = regexp.MustCompile(`7\d{10}`)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return snakeCase(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return fullMatch(PhoneNumberFormat, fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func fullMatch(re *regexp.Regexp, value string) bool {
	loc := re.FindStringIndex(value)
	return loc != nil && loc[0] == 0 && loc[1] == len(value)
}

// Error maps payload fields to human-readable violations.
type Error struct {
	Fields map[string][]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return strings.Join(parts, "; ")
}

// FieldErrors exposes the violation map to the response envelope.
func (e *Error) FieldErrors() map[string][]string {
	return e.Fields
}

// Add records one violation for field.
func (e *Error) Add(field, violation string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], violation)
}

// NewFieldError builds a validation domain error with a single violation.
func NewFieldError(field, violation string) error {
	e := &Error{}
	e.Add(field, violation)
	return wrap(e)
}

func wrap(e *Error) error {
	return &dErrors.Error{Code: dErrors.CodeValidation, Message: Message, Err: e}
}

// Validate validates a struct using the default validator and returns a domain error
// carrying a per-field violation map.
func Validate(req any) error {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return InvalidInputType()
	}
	out := &Error{}
	for _, fe := range validationErrs {
		out.Add(fe.Field(), violation(fe))
	}
	return wrap(out)
}

// snakeCase names untagged struct fields the way clients spell them:
// BirthDate -> birth_date, HTTPStatus -> http_status.
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func violation(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return "Missing data for required field."
	case "phone":
		return fmt.Sprintf("Phone number doesn't match expected pattern: %s.", PhoneNumberFormat.String())
	case "notblank":
		return "Field may not be blank."
	case "min":
		return fmt.Sprintf("Shorter than minimum length %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Longer than maximum length %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

// FromDecodeError converts a JSON decoding failure into field violations.
// A type mismatch on a named field is reported against that field; anything
// else (e.g. an array where an object was expected) is a schema violation.
func FromDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return NewFieldError(typeErr.Field, "Not a valid "+kindName(typeErr.Type)+".")
	}
	return InvalidInputType()
}

// InvalidInputType reports a payload that is not an object at all.
func InvalidInputType() error {
	return NewFieldError(SchemaField, "Invalid input type.")
}

func kindName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map, reflect.Struct:
		return "mapping"
	default:
		return "value"
	}
}
