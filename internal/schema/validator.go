package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks raw field maps against the schemas of a registry.
// It holds no per-call state and is safe for concurrent use.
type Validator struct {
	registry *Registry
	check    *validator.Validate
}

// NewValidator returns a validator over reg.
func NewValidator(reg *Registry) *Validator {
	return &Validator{
		registry: reg,
		check:    validator.New(),
	}
}

// Registry returns the registry the validator reads.
func (v *Validator) Registry() *Registry { return v.registry }

var std = NewValidator(Default())

// Validate checks raw against the named schema of the default registry.
func Validate(schemaName string, raw map[string]any) (Record, error) {
	return std.Validate(schemaName, raw)
}

// Validate checks raw against the named schema.
//
// On success the returned record carries every declared field, with
// defaults substituted for absent optional fields. Otherwise the error is a
// ValidationErrors listing every defect found; input fields the schema does
// not declare are ignored.
func (v *Validator) Validate(schemaName string, raw map[string]any) (Record, error) {
	s, ok := v.registry.Lookup(schemaName)
	if !ok {
		return Record{}, fmt.Errorf("validate %q: %w", schemaName, ErrUnknownSchema)
	}
	return v.ValidateSchema(s, raw)
}

// ValidateSchema checks raw against s.
func (v *Validator) ValidateSchema(s *Schema, raw map[string]any) (Record, error) {
	rec := Record{
		schema: s.Name,
		names:  make([]string, 0, len(s.Fields)),
		values: make(map[string]any, len(s.Fields)),
	}
	var errs ValidationErrors

	for _, f := range s.Fields {
		in := Absent()
		if val, ok := raw[f.Name]; ok {
			in = Present(val)
		}

		val, fe := v.resolve(f, in)
		if fe != nil {
			errs = append(errs, *fe)
			continue
		}
		rec.names = append(rec.names, f.Name)
		rec.values[f.Name] = val
	}

	if len(errs) > 0 {
		return Record{}, errs
	}
	return rec, nil
}

// resolve turns one input value into the field's validated value.
func (v *Validator) resolve(f Field, in Value) (any, *FieldError) {
	raw, present := in.Get()
	if !present {
		if f.Required {
			return nil, &FieldError{Field: f.Name, Kind: MissingField, Message: "field required"}
		}
		return in.OrDefault(f.Default), nil
	}

	if raw == nil {
		if f.Nullable {
			return nil, nil
		}
		return nil, &FieldError{
			Field:   f.Name,
			Kind:    TypeMismatch,
			Message: fmt.Sprintf("expected %s, got null", f.Type),
		}
	}

	val, ok := coerce(f.Type, raw)
	if !ok {
		return nil, &FieldError{
			Field:   f.Name,
			Kind:    TypeMismatch,
			Message: fmt.Sprintf("expected %s, got %s", f.Type, describe(raw)),
		}
	}

	if f.Constraint != nil {
		if msg := v.checkConstraint(f.Constraint, val); msg != "" {
			return nil, &FieldError{Field: f.Name, Kind: RangeViolation, Message: msg}
		}
	}
	return val, nil
}

// checkConstraint returns a message describing how val breaks c, or "".
func (v *Validator) checkConstraint(c *Constraint, val any) string {
	var n float64
	switch x := val.(type) {
	case int64:
		n = float64(x)
	case float64:
		n = x
	case string:
		if len(c.Enum) > 0 && !slices.Contains(c.Enum, x) {
			return fmt.Sprintf("must be one of [%s]", strings.Join(c.Enum, ", "))
		}
		return ""
	default:
		return ""
	}

	tag := boundsTag(c)
	if tag == "" {
		return ""
	}
	if err := v.check.Var(n, tag); err != nil {
		return boundsMessage(c)
	}
	return ""
}

func boundsTag(c *Constraint) string {
	var parts []string
	if c.Min != nil {
		parts = append(parts, "gte="+formatBound(*c.Min))
	}
	if c.Max != nil {
		parts = append(parts, "lte="+formatBound(*c.Max))
	}
	return strings.Join(parts, ",")
}

func boundsMessage(c *Constraint) string {
	switch {
	case c.Min != nil && c.Max != nil:
		return fmt.Sprintf("must be between %s and %s", formatBound(*c.Min), formatBound(*c.Max))
	case c.Min != nil:
		return "must be greater than or equal to " + formatBound(*c.Min)
	default:
		return "must be less than or equal to " + formatBound(*c.Max)
	}
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// describe names the JSON-ish type of a raw value for error messages.
func describe(raw any) string {
	switch raw.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float32, float64, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", raw)
}
