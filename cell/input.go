package cell

import "fmt"

// Input represents a field whose value is either known directly at
// declaration time or deferred to another resource's Remote output (spec §3:
// "a pair (resource_key, field_selector) whose resolution is deferred until
// B has been created/read within the current apply").
//
// Exactly one of Direct or RefTo is set for any Input that has been given a
// value; the zero Input is neither: Value reports it as absent and MustValue
// panics on it.
type Input[T any] struct {
	Direct *T
	RefTo  *Ref
}

// Of constructs an Input carrying a value known at declaration time.
func Of[T any](v T) Input[T] {
	return Input[T]{Direct: &v}
}

// FromRef constructs an Input deferred to another resource's output field.
func FromRef[T any](resourceKey, selector string) Input[T] {
	r := NewRef(resourceKey, selector)
	return Input[T]{RefTo: &r}
}

// RefTarget reports the remote reference this Input is deferred to, if any.
// It satisfies the applier's resolvable contract without the applier needing
// to know T.
func (i Input[T]) RefTarget() (Ref, bool) {
	if i.RefTo == nil {
		return Ref{}, false
	}
	return *i.RefTo, true
}

// Value returns the direct value and whether one is present.
func (i Input[T]) Value() (T, bool) {
	if i.Direct == nil {
		var zero T
		return zero, false
	}
	return *i.Direct, true
}

// MustValue returns the direct value, panicking if none is present. Intended
// for use inside Create/Update after the applier has resolved every Input,
// at which point every field it passes to a capability method is guaranteed
// to carry a Direct value.
func (i Input[T]) MustValue() T {
	v, ok := i.Value()
	if !ok {
		panic("cell: MustValue called on an unresolved Input")
	}
	return v
}

// ResolveFrom replaces a deferred Input with a concrete value once the
// resource it references has produced one (spec §4.5 step 1). v must be
// assignable to T; this is always true in practice because the resource
// author chooses T to match the type of the field being referenced.
func (i *Input[T]) ResolveFrom(v any) error {
	tv, ok := v.(T)
	if !ok {
		var zero T
		return fmt.Errorf("cell: cannot resolve input: expected %T, got %T", zero, v)
	}
	i.Direct = &tv
	i.RefTo = nil
	return nil
}
