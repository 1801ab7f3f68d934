package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a field value as found in a raw input: either present (possibly
// an explicit null) or absent.
type Value struct {
	v       any
	present bool
}

// Present wraps a value that was supplied by the caller.
func Present(v any) Value { return Value{v: v, present: true} }

// Absent is the value of a field the caller did not supply.
func Absent() Value { return Value{} }

// Get returns the wrapped value and whether it was supplied.
func (v Value) Get() (any, bool) { return v.v, v.present }

// OrDefault resolves an absent value to def.
func (v Value) OrDefault(def any) any {
	if v.present {
		return v.v
	}
	return def
}

// Record is a validated instance of a schema. Every declared field is set,
// in declaration order. Values are string, int64, float64, bool or nil.
type Record struct {
	schema string
	names  []string
	values map[string]any
}

// Schema returns the name of the schema the record was validated against.
func (r Record) Schema() string { return r.schema }

// Collection returns the collection the record is stored in.
func (r Record) Collection() string { return CollectionName(r.schema) }

// Fields returns the field names in declaration order.
func (r Record) Fields() []string { return append([]string(nil), r.names...) }

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Len returns the number of fields of the record.
func (r Record) Len() int { return len(r.names) }

// MarshalJSON encodes the record as a JSON object whose keys follow the
// schema's declaration order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, fmt.Errorf("Record.MarshalJSON: key %q: %w", name, err)
		}
		val, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, fmt.Errorf("Record.MarshalJSON: field %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
