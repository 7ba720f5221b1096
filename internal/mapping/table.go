package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// TagName is the struct tag that binds a field to a record key.
const TagName = "column"

// Constructor is implemented by target types that need more than a zero value
// before fields are assigned. It is called on a pointer to the new instance.
type Constructor interface {
	Construct() error
}

type Binding struct {
	Key   string
	Field string
	Index int
	Type  reflect.Type

	exported bool
}

// Table is the resolved set of bindings of one target type. It is immutable
// once compiled and safe for concurrent use.
type Table struct {
	target   reflect.Type
	elem     reflect.Type
	bindings []Binding
	byKey    map[string][]int
}

var tables sync.Map // reflect.Type -> *Table

// Compile builds the binding table of t. t must be a struct or a pointer to a
// struct. Fields without a column tag, or tagged "-", are left out.
func Compile(t reflect.Type) (*Table, error) {
	if t == nil {
		return nil, constructionError(nil, errors.New("nil target type"))
	}
	elem := t
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return nil, constructionError(t, fmt.Errorf("%s is not a struct type", t))
	}

	tbl := &Table{
		target: t,
		elem:   elem,
		byKey:  make(map[string][]int),
	}
	for i := 0; i < elem.NumField(); i++ {
		f := elem.Field(i)
		key, ok := f.Tag.Lookup(TagName)
		if !ok || key == "" || key == "-" || f.Name == "_" {
			continue
		}
		b := Binding{
			Key:      NormalizeKey(key),
			Field:    f.Name,
			Index:    i,
			Type:     f.Type,
			exported: f.IsExported(),
		}
		tbl.byKey[b.Key] = append(tbl.byKey[b.Key], len(tbl.bindings))
		tbl.bindings = append(tbl.bindings, b)
	}
	return tbl, nil
}

// TableFor returns the cached table of t, compiling it on first use.
func TableFor(t reflect.Type) (*Table, error) {
	if t == nil {
		return Compile(nil)
	}
	if v, ok := tables.Load(t); ok {
		return v.(*Table), nil
	}
	tbl, err := Compile(t)
	if err != nil {
		return nil, err
	}
	v, _ := tables.LoadOrStore(t, tbl)
	return v.(*Table), nil
}

func (t *Table) Target() reflect.Type { return t.target }

func (t *Table) Bindings() []Binding {
	out := make([]Binding, len(t.bindings))
	copy(out, t.bindings)
	return out
}

// Map builds a new instance of the table's target type from rec. Keys with
// no binding are dropped; a key bound by several fields sets all of them.
func (t *Table) Map(rec Record) (any, error) {
	ptr := reflect.New(t.elem)
	if err := t.construct(ptr); err != nil {
		return nil, err
	}

	v := ptr.Elem()
	for _, key := range rec.sortedKeys() {
		idx, ok := t.byKey[NormalizeKey(key)]
		if !ok {
			continue
		}
		for _, i := range idx {
			if err := t.assign(v, t.bindings[i], key, rec[key]); err != nil {
				return nil, err
			}
		}
	}

	if t.target.Kind() == reflect.Pointer {
		return ptr.Interface(), nil
	}
	return v.Interface(), nil
}

// Extract reads the bound fields of v back into a record keyed by binding
// key. v must be of the table's target type or its struct/pointer
// counterpart. When several fields share a key the last declared one wins.
func (t *Table) Extract(v any) (Record, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("mapping: extract from nil into table of %s", t.target)
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("mapping: extract from nil %s", rv.Type())
		}
		rv = rv.Elem()
	}
	if rv.Type() != t.elem {
		return nil, fmt.Errorf("mapping: extract %s from table of %s", rv.Type(), t.target)
	}
	if !rv.CanAddr() {
		cp := reflect.New(t.elem).Elem()
		cp.Set(rv)
		rv = cp
	}

	rec := make(Record, len(t.bindings))
	for _, b := range t.bindings {
		rec[b.Key] = field(rv, b).Interface()
	}
	return rec, nil
}

func (t *Table) construct(ptr reflect.Value) (err error) {
	c, ok := ptr.Interface().(Constructor)
	if !ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = constructionError(t.target, fmt.Errorf("panic: %v", r))
		}
	}()
	if cErr := c.Construct(); cErr != nil {
		return constructionError(t.target, cErr)
	}
	return nil
}

func (t *Table) assign(v reflect.Value, b Binding, key string, value any) error {
	f := field(v, b)
	if value == nil {
		f.SetZero()
		return nil
	}
	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(b.Type) {
		return &MappingError{
			Kind:  ErrTypeMismatch,
			Type:  t.target,
			Field: b.Field,
			Key:   key,
			Row:   -1,
			Err:   fmt.Errorf("cannot assign %s to %s", rv.Type(), b.Type),
		}
	}
	f.Set(rv)
	return nil
}

// field returns a settable view of the bound field, unexported or not.
// v must be addressable.
func field(v reflect.Value, b Binding) reflect.Value {
	f := v.Field(b.Index)
	if b.exported {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}
