package model

import (
	"bytes"
	"encoding/json"
)

// Optional tracks whether a field was supplied in a partial update and
// whether it was supplied as an explicit null.
//
// The zero value means "not supplied".
type Optional[T any] struct {
	value T
	set   bool
	null  bool
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Null returns an Optional that was explicitly cleared
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsSet reports whether the field was supplied at all (including null)
func (o Optional[T]) IsSet() bool { return o.set }

// IsNull reports whether the field was supplied as an explicit null
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// Get returns the value and whether a non-null value is present
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set && !o.null
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
