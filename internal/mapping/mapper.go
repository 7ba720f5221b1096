package mapping

import "reflect"

// Map converts rec into a new instance of t using t's cached binding table.
func Map(rec Record, t reflect.Type) (any, error) {
	tbl, err := TableFor(t)
	if err != nil {
		return nil, err
	}
	return tbl.Map(rec)
}

func Into[T any](rec Record) (T, error) {
	var zero T
	out, err := Map(rec, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// MapAll maps every record in order. The first failure aborts the whole
// batch and no instances are returned.
func MapAll(tbl *Table, recs []Record) ([]any, error) {
	out := make([]any, 0, len(recs))
	for i, rec := range recs {
		v, err := tbl.Map(rec)
		if err != nil {
			return nil, AtRow(err, i)
		}
		out = append(out, v)
	}
	return out, nil
}
