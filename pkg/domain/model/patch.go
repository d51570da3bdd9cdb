package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// Patch describes a partial update of a single field. The zero value leaves the
// field untouched, Set assigns a value and Null clears an optional field.
type Patch[T any] struct {
	present bool
	null    bool
	value   T
}

// Set returns a patch assigning v
func Set[T any](v T) Patch[T] {
	return Patch[T]{present: true, value: v}
}

// Null returns a patch clearing the field
func Null[T any]() Patch[T] {
	return Patch[T]{present: true, null: true}
}

// SetPtr returns Set(*v) for non-nil v and Null otherwise
func SetPtr[T any](v *T) Patch[T] {
	if v == nil {
		return Null[T]()
	}
	return Set(*v)
}

// IsPresent reports whether the patch changes the field at all
func (p Patch[T]) IsPresent() bool {
	return p.present
}

// IsNull reports whether the patch clears the field
func (p Patch[T]) IsNull() bool {
	return p.present && p.null
}

// Value returns the assigned value. ok is false for untouched and null patches.
func (p Patch[T]) Value() (v T, ok bool) {
	if !p.present || p.null {
		return v, false
	}
	return p.value, true
}

// Apply writes the patch into a non-optional field. Null resets it to the zero value.
func (p Patch[T]) Apply(dst *T) {
	if !p.present {
		return
	}
	if p.null {
		var zero T
		*dst = zero
		return
	}
	*dst = p.value
}

// ApplyPtr writes the patch into an optional field
func (p Patch[T]) ApplyPtr(dst **T) {
	if !p.present {
		return
	}
	if p.null {
		*dst = nil
		return
	}
	v := p.value
	*dst = &v
}

// UnmarshalJSON decodes JSON null as Null and any other value as Set. A field
// missing from the document stays untouched.
func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Null[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return goerr.Wrap(err, "failed to decode patch value")
	}
	*p = Set(v)
	return nil
}
