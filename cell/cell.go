// Package cell implements the two-sided value wrappers that every resource
// field in teleform is built from: a value either known before any platform
// call (Local) or known only once a platform call has produced it (Remote).
//
// The equality rules here are deliberately asymmetric from Go's native
// comparison. A Remote value compares equal to any other Remote value of the
// same type as long as at least one side is Unknown. This is what lets a
// freshly declared resource, whose outputs have not been materialized yet,
// compare as unchanged against a stored record that already knows them.
package cell

import "encoding/json"

// Local wraps a field value that the caller supplies at declaration time and
// that never comes from the platform.
type Local[T comparable] struct {
	Value T
}

// NewLocal constructs a Local cell.
func NewLocal[T comparable](v T) Local[T] {
	return Local[T]{Value: v}
}

// Equal compares two Local cells by plain value equality.
func (l Local[T]) Equal(other Local[T]) bool {
	return l.Value == other.Value
}

// Remote wraps a field value produced by the platform. It is Unknown until a
// create/read/update call fills it in.
type Remote[T comparable] struct {
	known bool
	value T
}

// Unknown constructs a Remote cell with no known value yet.
func Unknown[T comparable]() Remote[T] {
	return Remote[T]{}
}

// Known constructs a Remote cell carrying a materialized value.
func Known[T comparable](v T) Remote[T] {
	return Remote[T]{known: true, value: v}
}

// IsKnown reports whether the cell carries a materialized value.
func (r Remote[T]) IsKnown() bool {
	return r.known
}

// Get returns the materialized value and whether it was known.
func (r Remote[T]) Get() (T, bool) {
	return r.value, r.known
}

// MustGet returns the materialized value, panicking if it is Unknown. Callers
// that have already checked IsKnown, or that are inside a capability method
// after create/update has run, may use this for brevity.
func (r Remote[T]) MustGet() T {
	if !r.known {
		panic("cell: MustGet called on an Unknown Remote value")
	}
	return r.value
}

// Equal implements the asymmetric Remote equality rule from spec §3: two
// Remote values are equal if either side is Unknown, or both sides are Known
// and carry equal values.
func (r Remote[T]) Equal(other Remote[T]) bool {
	if !r.known || !other.known {
		return true
	}
	return r.value == other.value
}

// Composite implements §4.1's field-wise merge rule for Remote cells: a
// declared Unknown defers to a stored Known value; a declared Known value
// always wins; otherwise the result stays Unknown.
func (r Remote[T]) Composite(stored Remote[T]) Remote[T] {
	if r.known {
		return r
	}
	if stored.known {
		return stored
	}
	return Remote[T]{}
}

// remoteJSON is the wire shape for a Remote cell: {"known": bool, "value": T}.
// Marshaling an Unknown cell omits "value" entirely so a round trip never
// invents a zero value that looks materialized.
type remoteJSON[T any] struct {
	Known bool `json:"known"`
	Value *T   `json:"value,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r Remote[T]) MarshalJSON() ([]byte, error) {
	if !r.known {
		return json.Marshal(remoteJSON[T]{Known: false})
	}
	v := r.value
	return json.Marshal(remoteJSON[T]{Known: true, Value: &v})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Remote[T]) UnmarshalJSON(data []byte) error {
	var wire remoteJSON[T]
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if !wire.Known || wire.Value == nil {
		*r = Remote[T]{}
		return nil
	}
	*r = Remote[T]{known: true, value: *wire.Value}
	return nil
}

// LocalComposite implements §4.1's rule for Local fields: declaration always
// wins, the stored value is purely historical.
func LocalComposite[T comparable](declared, _ Local[T]) Local[T] {
	return declared
}
