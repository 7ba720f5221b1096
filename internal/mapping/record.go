package mapping

import (
	"sort"
	"strings"
)

// Record is one row of a query result. Keys are matched case-insensitively.
type Record map[string]any

// NormalizeKey is the form both record keys and binding keys are compared in.
func NormalizeKey(key string) string {
	return strings.ToUpper(key)
}

// sortedKeys fixes the order entries are applied in, so two keys that
// normalize to the same binding resolve the same way on every call.
func (r Record) sortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
