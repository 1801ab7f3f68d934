// Package schema holds the record schemas of the application and the
// validator that checks raw request payloads against them.
//
// A Schema is a fixed, ordered list of field descriptors. Schemas are
// registered once at start-up in a Registry and are read-only afterwards,
// so a single Registry (and a single Validator) can be shared by every
// request goroutine without locking.
package schema

import (
	"fmt"
	"strings"
)

// FieldType is the semantic type of a field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeFloat   FieldType = "float"
	TypeBoolean FieldType = "boolean"
)

// Constraint restricts a field's value beyond its basic type.
//
// Min and Max are inclusive; a nil bound is unbounded on that side.
// Enum lists the allowed values of a string field.
type Constraint struct {
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Enum []string `json:"enum,omitempty"`
}

// Field describes one field of a schema.
//
// Optional fields carry a Default that is substituted when the field is
// absent from the input. Nullable fields accept an explicit null, and their
// default is nil.
type Field struct {
	Name        string      `json:"name"`
	Type        FieldType   `json:"type"`
	Required    bool        `json:"required"`
	Nullable    bool        `json:"nullable"`
	Default     any         `json:"default"`
	Constraint  *Constraint `json:"constraint,omitempty"`
	Description string      `json:"description,omitempty"`
}

// Schema is a named, immutable set of field declarations.
type Schema struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Collection returns the storage collection name of the schema.
func (s *Schema) Collection() string {
	return CollectionName(s.Name)
}

// Field returns the descriptor of the named field.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// CollectionName derives the collection a schema is stored in: the schema
// name lower-cased ("User" is stored in "user").
func CollectionName(schemaName string) string {
	return strings.ToLower(schemaName)
}

// Registry maps schema names to their definitions.
type Registry struct {
	order        []string
	byName       map[string]*Schema
	byCollection map[string]*Schema
}

// NewRegistry builds a registry from the given schemas. It rejects empty or
// duplicate schema names, duplicate field names and unknown field types.
func NewRegistry(schemas ...Schema) (*Registry, error) {
	r := &Registry{
		byName:       make(map[string]*Schema, len(schemas)),
		byCollection: make(map[string]*Schema, len(schemas)),
	}

	for i := range schemas {
		s := schemas[i]
		if s.Name == "" {
			return nil, fmt.Errorf("schema.NewRegistry: schema %d has no name", i)
		}
		if _, dup := r.byCollection[CollectionName(s.Name)]; dup {
			return nil, fmt.Errorf("schema.NewRegistry: duplicate schema %q", s.Name)
		}

		seen := make(map[string]struct{}, len(s.Fields))
		for _, f := range s.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("schema.NewRegistry: %s: field with empty name", s.Name)
			}
			if _, dup := seen[f.Name]; dup {
				return nil, fmt.Errorf("schema.NewRegistry: %s: duplicate field %q", s.Name, f.Name)
			}
			seen[f.Name] = struct{}{}

			switch f.Type {
			case TypeString, TypeInteger, TypeFloat, TypeBoolean:
			default:
				return nil, fmt.Errorf("schema.NewRegistry: %s.%s: unknown type %q", s.Name, f.Name, f.Type)
			}
		}

		// copy the field slice so later edits by the caller cannot leak in
		s.Fields = append([]Field(nil), s.Fields...)
		r.order = append(r.order, s.Name)
		r.byName[s.Name] = &s
		r.byCollection[CollectionName(s.Name)] = &s
	}

	return r, nil
}

// MustRegistry is like NewRegistry but panics on error. It is meant for
// package-level schema tables.
func MustRegistry(schemas ...Schema) *Registry {
	r, err := NewRegistry(schemas...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the schema with the given name.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// ByCollection returns the schema stored in the given collection.
func (r *Registry) ByCollection(collection string) (*Schema, bool) {
	s, ok := r.byCollection[strings.ToLower(collection)]
	return s, ok
}

// Names lists the registered schema names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Schemas lists the registered schemas in registration order.
func (r *Registry) Schemas() []*Schema {
	out := make([]*Schema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
