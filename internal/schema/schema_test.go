package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Default(t *testing.T) {
	reg := Default()
	require.Equal(t, []string{"User", "Product", "Service", "Booking"}, reg.Names())

	for _, name := range reg.Names() {
		s, ok := reg.Lookup(name)
		require.True(t, ok)
		require.Equal(t, name, s.Name)

		byColl, ok := reg.ByCollection(CollectionName(name))
		require.True(t, ok)
		require.Same(t, s, byColl)
	}

	_, ok := reg.Lookup("user")
	require.False(t, ok, "lookup by schema name is exact")
	_, ok = reg.ByCollection("BOOKING")
	require.True(t, ok)
}

func TestCollectionName(t *testing.T) {
	require.Equal(t, "user", CollectionName("User"))
	require.Equal(t, "blogpost", CollectionName("BlogPost"))
	require.Equal(t, "service", Service.Collection())
}

func TestNewRegistry_Rejects(t *testing.T) {
	cases := map[string][]Schema{
		"empty name":      {{Name: ""}},
		"duplicate":       {{Name: "A"}, {Name: "a"}},
		"duplicate field": {{Name: "A", Fields: []Field{{Name: "x", Type: TypeString}, {Name: "x", Type: TypeString}}}},
		"empty field":     {{Name: "A", Fields: []Field{{Type: TypeString}}}},
		"unknown type":    {{Name: "A", Fields: []Field{{Name: "x", Type: "date"}}}},
	}
	for name, schemas := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(schemas...)
			require.Error(t, err)
		})
	}
}

func TestSchema_Field(t *testing.T) {
	f, ok := User.Field("age")
	require.True(t, ok)
	require.Equal(t, TypeInteger, f.Type)
	require.True(t, f.Nullable)
	require.Equal(t, 120.0, *f.Constraint.Max)

	_, ok = User.Field("phone")
	require.False(t, ok)
}
