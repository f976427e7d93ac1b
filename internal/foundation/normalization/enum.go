// Package normalization maps loosely written configuration values onto typed
// enum values.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Enum normalizes raw strings (case-insensitive, surrounding space ignored)
// into values of T.
type Enum[T comparable] struct {
	name   string
	values map[string]T
}

// NewEnum creates an Enum named name (used in error messages) accepting the
// keys of values. Several keys may map to the same value.
func NewEnum[T comparable](name string, values map[string]T) *Enum[T] {
	normalized := make(map[string]T, len(values))
	for k, v := range values {
		normalized[clean(k)] = v
	}
	return &Enum[T]{name: name, values: normalized}
}

// Parse returns the value for raw or an error naming the accepted keys.
func (e *Enum[T]) Parse(raw string) (T, error) {
	if v, ok := e.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%s: unknown value %q (valid: %s)", e.name, raw, strings.Join(e.Keys(), ", "))
}

// Keys returns the accepted non-empty keys in sorted order.
func (e *Enum[T]) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
