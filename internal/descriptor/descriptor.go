package descriptor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"querymap/internal/mapping"
)

var (
	ErrInvalid     = errors.New("descriptor invalid")
	ErrDuplicate   = errors.New("descriptor already registered")
	ErrUnknownType = errors.New("target type not in catalog")
)

// Descriptor pairs an operation with the query it runs and the type each
// result record becomes. The query is opaque and passed on verbatim.
type Descriptor struct {
	name   string
	query  string
	target reflect.Type
	table  *mapping.Table
}

func New(name, query string, target reflect.Type) (Descriptor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Descriptor{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if strings.TrimSpace(query) == "" {
		return Descriptor{}, fmt.Errorf("%w: %s: query is required", ErrInvalid, name)
	}
	tbl, err := mapping.TableFor(target)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %s: %w", ErrInvalid, name, err)
	}
	return Descriptor{name: name, query: query, target: target, table: tbl}, nil
}

// For declares a descriptor whose target type is T.
func For[T any](name, query string) (Descriptor, error) {
	return New(name, query, reflect.TypeOf((*T)(nil)).Elem())
}

func MustFor[T any](name, query string) Descriptor {
	d, err := For[T](name, query)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Descriptor) Name() string { return d.name }
func (d Descriptor) Query() string { return d.query }
func (d Descriptor) Target() reflect.Type { return d.target }
func (d Descriptor) Table() *mapping.Table { return d.table }
func (d Descriptor) IsZero() bool { return d.table == nil }

func (d Descriptor) String() string {
	if d.target == nil {
		return d.name
	}
	return d.name + " -> " + d.target.String()
}
