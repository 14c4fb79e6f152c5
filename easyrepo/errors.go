package easyrepo

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound     = errors.New("item not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotObject is returned by DecodeError when the whole payload has the
	// wrong JSON type (an array, a string, a number) instead of an object.
	ErrNotObject = fmt.Errorf("%w: payload is not an object", ErrInvalidInput)
)

// ValidationError describes the first rule an item violated.
// Message is meant to be shown to the client as-is.
type ValidationError struct {
	Field   string
	Tag     string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrInvalidInput) match every validation failure.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func fromFieldError(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	var msg string

	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf(`"%s" is required`, field)
	case "min":
		if fe.Kind() == reflect.String {
			msg = fmt.Sprintf(`"%s" length must be at least %s characters long`, field, fe.Param())
		} else {
			msg = fmt.Sprintf(`"%s" must be greater than or equal to %s`, field, fe.Param())
		}
	case "max":
		if fe.Kind() == reflect.String {
			msg = fmt.Sprintf(`"%s" length must be less than or equal to %s characters long`, field, fe.Param())
		} else {
			msg = fmt.Sprintf(`"%s" must be less than or equal to %s`, field, fe.Param())
		}
	default:
		msg = fmt.Sprintf(`"%s" failed on the '%s' rule`, field, fe.Tag())
	}

	return &ValidationError{Field: field, Tag: fe.Tag(), Message: msg}
}

// DecodeError converts a JSON type mismatch on a field into a ValidationError
// and a mismatch on the payload itself into ErrNotObject. Other errors are
// returned unchanged.
func DecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return err
	}

	field := typeErr.Field
	if field == "" {
		return ErrNotObject
	}

	expected := "a " + typeErr.Type.Kind().String()
	switch typeErr.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		expected = "a number"
	case reflect.Bool:
		expected = "a boolean"
	case reflect.String:
		expected = "a string"
	}

	return &ValidationError{
		Field:   field,
		Tag:     "type",
		Message: fmt.Sprintf(`"%s" must be %s`, field, expected),
	}
}
