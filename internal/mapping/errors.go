package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrConstruction = errors.New("mapping: construction failed")
	ErrTypeMismatch = errors.New("mapping: type mismatch")
)

// MappingError reports why one record could not be turned into an instance.
// Kind is ErrConstruction or ErrTypeMismatch.
type MappingError struct {
	Kind  error
	Type  reflect.Type
	Field string
	Key   string
	Row   int
	Err   error
}

func (e *MappingError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Row >= 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Type != nil {
		fmt.Fprintf(&b, ": %s", e.Type)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ".%s", e.Field)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " (key %q)", e.Key)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MappingError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// AtRow returns a copy of err with its row index set when err is a
// *MappingError. Other errors are returned unchanged.
func AtRow(err error, row int) error {
	var mErr *MappingError
	if !errors.As(err, &mErr) {
		return err
	}
	cp := *mErr
	cp.Row = row
	return &cp
}

func constructionError(t reflect.Type, err error) *MappingError {
	return &MappingError{Kind: ErrConstruction, Type: t, Row: -1, Err: err}
}
