package cohort

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a configured field name is not part of
	// a record set's columns.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidDate is returned when a value cannot be read as YYYYMMDD.
	ErrInvalidDate = errors.New("invalid date")
)

// SchemaError names the record set and field that failed the schema check.
type SchemaError struct {
	Set   string
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("record set %q: field %q: %v", e.Set, e.Field, ErrMissingField)
}

func (e *SchemaError) Unwrap() error { return ErrMissingField }

// DateError carries the offending value and the underlying parse error, if any.
type DateError struct {
	Value string
	Err   error
}

func (e *DateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v %q: %v", ErrInvalidDate, e.Value, e.Err)
	}
	return fmt.Sprintf("%v %q", ErrInvalidDate, e.Value)
}

func (e *DateError) Is(target error) bool { return target == ErrInvalidDate }

func (e *DateError) Unwrap() error { return e.Err }
