package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSchema is returned when a schema name is not registered.
var ErrUnknownSchema = errors.New("unknown schema")

// ErrorKind classifies a field error.
type ErrorKind string

const (
	// MissingField: a required field is absent from the input.
	MissingField ErrorKind = "missing_field"
	// TypeMismatch: a present value cannot be read as the declared type.
	TypeMismatch ErrorKind = "type_mismatch"
	// RangeViolation: a typed value falls outside its declared bounds.
	RangeViolation ErrorKind = "range_violation"
)

// FieldError describes one defect of one field.
type FieldError struct {
	Field   string    `json:"field"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Message)
}

// ValidationErrors is the complete list of field errors of one validation.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, ", ")
}

// Has reports whether the list holds an error of the given kind for field.
func (e ValidationErrors) Has(field string, kind ErrorKind) bool {
	for _, fe := range e {
		if fe.Field == field && fe.Kind == kind {
			return true
		}
	}
	return false
}

// AsValidationErrors unwraps err into its field errors.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
