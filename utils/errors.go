package utils

import (
	"reflect"

	"github.com/pkg/errors"
)

// NewConfigValidationError wraps err with the path of the config entry that failed.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

// NewConfigValidationFieldRequiredError is used when a required config field is missing.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return NewConfigValidationError(path, errors.Errorf("%q is required", field))
}

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError(expected, actual interface{}) error {
	return errors.Errorf("expected %s but got %s", typeName(expected), typeName(actual))
}

// NewOutOfRangeError is used when a config value lies outside [lo, hi].
func NewOutOfRangeError(field string, value, lo, hi int64) error {
	return errors.Errorf("%q is %d, must be within [%d, %d]", field, value, lo, hi)
}

func typeName(v interface{}) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<unknown (nil interface)>"
	}
	// A nil pointer to an interface names the interface itself.
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		return t.Elem().String()
	}
	return t.String()
}
