package domain

import (
	"bytes"
	"encoding/json"
)

// Related holds a joined row that the store may return either as a single
// object or as a list, depending on how the join was expressed. Callers
// never branch on the shape: All and First normalize it.
type Related[T any] struct {
	one  *T
	many []T
}

// One wraps a single related row.
func One[T any](v T) Related[T] {
	return Related[T]{one: &v}
}

// Many wraps a list of related rows.
func Many[T any](vs []T) Related[T] {
	return Related[T]{many: vs}
}

// All returns the related rows as a slice, never nil.
func (r Related[T]) All() []T {
	if r.one != nil {
		return []T{*r.one}
	}
	if r.many == nil {
		return []T{}
	}
	return r.many
}

// First returns the first related row, if any.
func (r Related[T]) First() (T, bool) {
	if r.one != nil {
		return *r.one, true
	}
	if len(r.many) > 0 {
		return r.many[0], true
	}
	var zero T
	return zero, false
}

// UnmarshalJSON accepts an object, an array of objects or null.
func (r *Related[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = Related[T]{}
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '[':
		return json.Unmarshal(data, &r.many)
	default:
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.one = &v
		return nil
	}
}

// MarshalJSON always renders the normalized list.
func (r Related[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.All())
}
