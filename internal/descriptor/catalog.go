package descriptor

import (
	"fmt"
	"reflect"
	"strings"
)

// Catalog names the target types that declarations loaded from
// configuration may refer to.
type Catalog struct {
	types map[string]reflect.Type
}

func NewCatalog() *Catalog {
	return &Catalog{types: make(map[string]reflect.Type)}
}

func (c *Catalog) Register(name string, t reflect.Type) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: type name is required", ErrInvalid)
	}
	if t == nil {
		return fmt.Errorf("%w: %s: nil type", ErrInvalid, name)
	}
	if prev, ok := c.types[name]; ok && prev != t {
		return fmt.Errorf("%w: type %s already bound to %s", ErrDuplicate, name, prev)
	}
	c.types[name] = t
	return nil
}

func RegisterType[T any](c *Catalog, name string) error {
	return c.Register(name, reflect.TypeOf((*T)(nil)).Elem())
}

func (c *Catalog) Resolve(name string) (reflect.Type, bool) {
	t, ok := c.types[strings.TrimSpace(name)]
	return t, ok
}

// Declaration is the configuration-file form of a descriptor.
type Declaration struct {
	Name   string `yaml:"name"`
	Query  string `yaml:"query"`
	Target string `yaml:"target"`
}

// FromDeclarations resolves each declaration's target against c and builds
// the registry.
func FromDeclarations(decls []Declaration, c *Catalog) (*Registry, error) {
	ds := make([]Descriptor, 0, len(decls))
	for _, decl := range decls {
		t, ok := c.Resolve(decl.Target)
		if !ok {
			return nil, fmt.Errorf("%w: %q (operation %s)", ErrUnknownType, decl.Target, decl.Name)
		}
		d, err := New(decl.Name, decl.Query, t)
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return NewRegistry(ds...)
}
