package descriptor

import (
	"fmt"
	"sort"
)

// Registry maps operation names to descriptors. It is filled once by
// NewRegistry and never changes afterwards, so concurrent lookups need no
// locking.
type Registry struct {
	byName map[string]Descriptor
	names  []string
}

func NewRegistry(ds ...Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]Descriptor, len(ds))}
	for _, d := range ds {
		if d.IsZero() {
			return nil, fmt.Errorf("%w: zero descriptor", ErrInvalid)
		}
		if _, ok := r.byName[d.name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, d.name)
		}
		r.byName[d.name] = d
		r.names = append(r.names, d.name)
	}
	sort.Strings(r.names)
	return r, nil
}

func (r *Registry) Lookup(name string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	d, ok := r.byName[name]
	return d, ok
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byName)
}
