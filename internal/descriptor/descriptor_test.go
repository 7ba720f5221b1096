package descriptor

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string `column:"NAME"`
}

type order struct {
	ID int64 `column:"ID"`
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		query  string
		target reflect.Type
	}{
		{name: "empty name", op: " ", query: "SELECT 1", target: reflect.TypeOf(person{})},
		{name: "empty query", op: "people", query: "  ", target: reflect.TypeOf(person{})},
		{name: "nil target", op: "people", query: "SELECT 1", target: nil},
		{name: "non struct target", op: "people", query: "SELECT 1", target: reflect.TypeOf("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.op, tt.query, tt.target)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestForKeepsQueryVerbatim(t *testing.T) {
	q := "  SELECT NAME FROM PEOPLE WHERE NAME = 'x'  "
	d, err := For[person]("people", q)
	require.NoError(t, err)
	assert.Equal(t, "people", d.Name())
	assert.Equal(t, q, d.Query())
	assert.Equal(t, reflect.TypeOf(person{}), d.Target())
	require.NotNil(t, d.Table())
	assert.Len(t, d.Table().Bindings(), 1)
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(
		MustFor[person]("people", "SELECT NAME FROM PEOPLE"),
		MustFor[order]("orders", "SELECT ID FROM ORDERS"),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"orders", "people"}, reg.Names())

	d, ok := reg.Lookup("orders")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(order{}), d.Target())

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)

	names := reg.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"orders", "people"}, reg.Names())
}

func TestRegistryRejectsDuplicatesAndZero(t *testing.T) {
	_, err := NewRegistry(
		MustFor[person]("people", "SELECT 1"),
		MustFor[order]("people", "SELECT 2"),
	)
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = NewRegistry(Descriptor{})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRegistryConcurrentReads(t *testing.T) {
	reg, err := NewRegistry(MustFor[person]("people", "SELECT 1"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := reg.Lookup("people"); !ok {
					t.Error("lookup failed")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestFromDeclarations(t *testing.T) {
	cat := NewCatalog()
	require.NoError(t, RegisterType[person](cat, "person"))
	require.NoError(t, RegisterType[*order](cat, "order"))
	require.NoError(t, RegisterType[person](cat, "person"))
	assert.ErrorIs(t, RegisterType[order](cat, "person"), ErrDuplicate)

	reg, err := FromDeclarations([]Declaration{
		{Name: "people", Query: "SELECT NAME FROM PEOPLE", Target: "person"},
		{Name: "orders", Query: "SELECT ID FROM ORDERS", Target: " order "},
	}, cat)
	require.NoError(t, err)

	d, ok := reg.Lookup("orders")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(&order{}), d.Target())

	_, err = FromDeclarations([]Declaration{{Name: "x", Query: "SELECT 1", Target: "nope"}}, cat)
	assert.ErrorIs(t, err, ErrUnknownType)
}
