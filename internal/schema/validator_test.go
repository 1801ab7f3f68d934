package schema

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput(schemaName string) map[string]any {
	switch schemaName {
	case UserSchema:
		return map[string]any{
			"name": "Asha", "email": "a@x.com", "address": "12 MG Road",
			"age": 31, "is_active": false,
		}
	case ProductSchema:
		return map[string]any{
			"title": "Mop", "description": "Microfibre mop", "price": 349.5,
			"category": "Cleaning", "in_stock": true,
		}
	case ServiceSchema:
		return map[string]any{
			"name": "Deep Cleaning", "description": "Whole home", "price_inr": 2999,
			"unit": "per BHK", "category": "Cleaning", "popular": true,
		}
	case BookingSchema:
		return map[string]any{
			"customer_name": "Ravi", "phone": "+919800000000", "email": "r@x.com",
			"address": "4 Park St", "city": "Kolkata", "pincode": "700016",
			"service_id": "svc-1", "service_name": "Deep Cleaning",
			"preferred_date": "2026-11-02", "preferred_time": "Morning",
			"notes": "ring twice", "source": "app",
		}
	}
	return nil
}

func without(in map[string]any, field string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if k != field {
			out[k] = v
		}
	}
	return out
}

func TestValidate_FullyPopulated(t *testing.T) {
	for _, s := range Default().Schemas() {
		t.Run(s.Name, func(t *testing.T) {
			rec, err := Validate(s.Name, validInput(s.Name))
			require.NoError(t, err)
			require.Equal(t, s.Name, rec.Schema())
			require.Equal(t, len(s.Fields), rec.Len())

			for i, f := range s.Fields {
				require.Equal(t, f.Name, rec.Fields()[i])
				_, ok := rec.Get(f.Name)
				require.True(t, ok, "field %s missing from record", f.Name)
			}
		})
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	for _, s := range Default().Schemas() {
		for _, f := range s.Fields {
			if !f.Required {
				continue
			}
			t.Run(s.Name+"/"+f.Name, func(t *testing.T) {
				rec, err := Validate(s.Name, without(validInput(s.Name), f.Name))
				require.Error(t, err)
				require.Zero(t, rec.Len())

				ve, ok := AsValidationErrors(err)
				require.True(t, ok)
				require.Len(t, ve, 1)
				require.Equal(t, FieldError{Field: f.Name, Kind: MissingField, Message: "field required"}, ve[0])
			})
		}
	}
}

func TestValidate_OptionalDefaults(t *testing.T) {
	for _, s := range Default().Schemas() {
		for _, f := range s.Fields {
			if f.Required {
				continue
			}
			t.Run(s.Name+"/"+f.Name, func(t *testing.T) {
				rec, err := Validate(s.Name, without(validInput(s.Name), f.Name))
				require.NoError(t, err)

				got, ok := rec.Get(f.Name)
				require.True(t, ok)
				require.Equal(t, f.Default, got)
			})
		}
	}
}

func TestValidate_DeclaredDefaults(t *testing.T) {
	cases := []struct {
		schema string
		field  string
		want   any
	}{
		{UserSchema, "age", nil},
		{UserSchema, "is_active", true},
		{ProductSchema, "description", nil},
		{ProductSchema, "in_stock", true},
		{ServiceSchema, "popular", false},
		{BookingSchema, "email", nil},
		{BookingSchema, "service_id", nil},
		{BookingSchema, "notes", nil},
		{BookingSchema, "source", "web"},
	}
	for _, tc := range cases {
		rec, err := Validate(tc.schema, without(validInput(tc.schema), tc.field))
		require.NoError(t, err)
		got, _ := rec.Get(tc.field)
		require.Equal(t, tc.want, got, "%s.%s", tc.schema, tc.field)
	}
}

func TestValidate_UserAgeBounds(t *testing.T) {
	cases := []struct {
		age     any
		wantErr bool
	}{
		{0, false},
		{120, false},
		{-1, true},
		{121, true},
	}
	for _, tc := range cases {
		in := validInput(UserSchema)
		in["age"] = tc.age

		rec, err := Validate(UserSchema, in)
		if !tc.wantErr {
			require.NoError(t, err, "age=%v", tc.age)
			got, _ := rec.Get("age")
			require.Equal(t, int64(tc.age.(int)), got)
			continue
		}
		ve, ok := AsValidationErrors(err)
		require.True(t, ok, "age=%v", tc.age)
		require.True(t, ve.Has("age", RangeViolation), "age=%v: %v", tc.age, ve)
		require.Equal(t, "must be between 0 and 120", ve[0].Message)
	}
}

func TestValidate_ProductPrice(t *testing.T) {
	in := validInput(ProductSchema)
	in["price"] = 0
	rec, err := Validate(ProductSchema, in)
	require.NoError(t, err)
	got, _ := rec.Get("price")
	require.Equal(t, float64(0), got)

	in["price"] = -0.01
	_, err = Validate(ProductSchema, in)
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	require.True(t, ve.Has("price", RangeViolation))
}

func TestValidate_ServicePriceNegative(t *testing.T) {
	in := validInput(ServiceSchema)
	in["price_inr"] = -5
	_, err := Validate(ServiceSchema, in)
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	require.True(t, ve.Has("price_inr", RangeViolation))
}

func TestValidate_UnknownFieldIgnored(t *testing.T) {
	in := validInput(UserSchema)
	in["nickname"] = "A"

	rec, err := Validate(UserSchema, in)
	require.NoError(t, err)
	_, ok := rec.Get("nickname")
	require.False(t, ok)
	require.Equal(t, 5, rec.Len())
}

func TestValidate_EndToEndUser(t *testing.T) {
	rec, err := Validate(UserSchema, map[string]any{
		"name": "Asha", "email": "a@x.com", "address": "12 MG Road",
	})
	require.NoError(t, err)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"name":"Asha","email":"a@x.com","address":"12 MG Road","age":null,"is_active":true}`,
		string(out))
	require.Equal(t,
		`{"name":"Asha","email":"a@x.com","address":"12 MG Road","age":null,"is_active":true}`,
		string(out), "keys follow declaration order")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	_, err := Validate(UserSchema, map[string]any{
		"email":     42,
		"age":       200,
		"is_active": "maybe",
	})
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	require.Len(t, ve, 5)
	require.True(t, ve.Has("name", MissingField))
	require.True(t, ve.Has("email", TypeMismatch))
	require.True(t, ve.Has("address", MissingField))
	require.True(t, ve.Has("age", RangeViolation))
	require.True(t, ve.Has("is_active", TypeMismatch))
}

func TestValidate_Coercion(t *testing.T) {
	cases := []struct {
		name   string
		schema string
		field  string
		in     any
		want   any
		wantOK bool
	}{
		{"int from json number", UserSchema, "age", json.Number("42"), int64(42), true},
		{"int from integral float", UserSchema, "age", 42.0, int64(42), true},
		{"int from fractional float", UserSchema, "age", 42.5, nil, false},
		{"int from numeric string", UserSchema, "age", " 42 ", int64(42), true},
		{"int from word", UserSchema, "age", "forty", nil, false},
		{"int from bool", UserSchema, "age", true, nil, false},
		{"float from int", ProductSchema, "price", 10, float64(10), true},
		{"float from json number", ProductSchema, "price", json.Number("9.99"), 9.99, true},
		{"float from string", ProductSchema, "price", "12.5", 12.5, true},
		{"float from bool", ProductSchema, "price", false, nil, false},
		{"float from inf string", ProductSchema, "price", "inf", nil, false},
		{"float from NaN string", ProductSchema, "price", "NaN", nil, false},
		{"float from negative infinity string", ProductSchema, "price", "-Infinity", nil, false},
		{"float from NaN value", ProductSchema, "price", math.NaN(), nil, false},
		{"float from infinite value", ProductSchema, "price", math.Inf(1), nil, false},
		{"int from infinite value", UserSchema, "age", math.Inf(-1), nil, false},
		{"bool from string yes", UserSchema, "is_active", "YES", true, true},
		{"bool from string off", UserSchema, "is_active", "off", false, true},
		{"bool from one", UserSchema, "is_active", 1, true, true},
		{"bool from two", UserSchema, "is_active", 2, nil, false},
		{"string from number", UserSchema, "name", 7, nil, false},
		{"string from array", UserSchema, "name", []any{"a"}, nil, false},
		{"null into nullable", UserSchema, "age", nil, nil, true},
		{"null into defaulted bool", UserSchema, "is_active", nil, nil, false},
		{"null into required string", UserSchema, "name", nil, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput(tc.schema)
			in[tc.field] = tc.in

			rec, err := Validate(tc.schema, in)
			if !tc.wantOK {
				ve, ok := AsValidationErrors(err)
				require.True(t, ok)
				require.True(t, ve.Has(tc.field, TypeMismatch), "%v", ve)
				return
			}
			require.NoError(t, err)
			got, _ := rec.Get(tc.field)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	_, err := Validate("Invoice", map[string]any{})
	require.True(t, errors.Is(err, ErrUnknownSchema))
	_, isFieldErr := AsValidationErrors(err)
	require.False(t, isFieldErr)
}

func TestValidate_NilInput(t *testing.T) {
	_, err := Validate(ServiceSchema, nil)
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	require.Len(t, ve, 5)
}

func TestValidate_Enum(t *testing.T) {
	reg := MustRegistry(Schema{
		Name: "Slot",
		Fields: []Field{
			{Name: "period", Type: TypeString, Required: true,
				Constraint: &Constraint{Enum: []string{"Morning", "Evening"}}},
		},
	})
	v := NewValidator(reg)

	_, err := v.Validate("Slot", map[string]any{"period": "Morning"})
	require.NoError(t, err)

	_, err = v.Validate("Slot", map[string]any{"period": "Night"})
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	require.True(t, ve.Has("period", RangeViolation))
}

func TestValidate_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(age int) {
			defer wg.Done()
			in := validInput(UserSchema)
			in["age"] = age
			_, err := Validate(UserSchema, in)
			if age <= 120 {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		}(i * 5)
	}
	wg.Wait()
}
