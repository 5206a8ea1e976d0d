// Package depwalk implements the dependency-extraction blanket derivation
// described in spec §4.6: given an arbitrary resource value, walk it and
// collect every resource_key reachable through a remote reference, however
// deeply it is nested inside structs, slices, or maps.
//
// Rather than hand-write a reflection walker per resource type (or even one
// that has to special-case every container kind itself), this builds on
// github.com/mitchellh/reflectwalk, which already knows how to descend
// through the composite kinds Go values can take and only needs to be told
// what to do when it reaches a struct field.
package depwalk

import (
	"reflect"

	"github.com/mitchellh/reflectwalk"

	"github.com/schell/teleform/cell"
)

// Referencer is implemented by cell.Ref (and may be implemented by a
// caller-defined type that wraps it) to mark a value as a remote reference
// whose RemoteKey should be collected during dependency extraction.
type Referencer interface {
	RemoteKey() string
}

var refererType = reflect.TypeOf((*Referencer)(nil)).Elem()

// Dependencies walks value and returns the resource_key of every remote
// reference reachable from it. Local and Remote cell payloads are opaque to
// the walk: it only ever recognizes cell.Ref (or another Referencer) values,
// per spec §4.6 ("Ignore Local and Remote payloads"). Duplicates are not
// removed; downstream consumers tolerate them (spec §4.6).
func Dependencies(value any) []string {
	w := &collector{}
	// reflectwalk panics on a nil interface; a nil declared value simply has
	// no dependencies.
	if value == nil {
		return nil
	}
	if err := reflectwalk.Walk(value, w); err != nil {
		// The only way the walk itself returns an error is a bug in one of
		// our own hooks below, none of which ever return non-nil; treat it
		// as "no dependencies found" defensively rather than panicking from
		// deep inside caller code.
		return w.keys
	}
	return w.keys
}

type collector struct {
	keys []string
}

// Struct is called by reflectwalk whenever it encounters a struct, before
// visiting its fields. We only care about the fields, so this is a no-op,
// but the method must exist for collector to satisfy StructWalker.
func (c *collector) Struct(reflect.Value) error {
	return nil
}

// StructField is called once per exported field of every struct reflectwalk
// descends into. If the field's value implements Referencer, record its key
// and let reflectwalk continue descending into the field's own fields
// (harmless: cell.Ref's fields are plain strings).
func (c *collector) StructField(_ reflect.StructField, v reflect.Value) error {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return nil
	}
	if v.Type().Implements(refererType) {
		ref := v.Interface().(Referencer)
		c.keys = append(c.keys, ref.RemoteKey())
		return nil
	}
	if v.CanAddr() && v.Addr().Type().Implements(refererType) {
		ref := v.Addr().Interface().(Referencer)
		c.keys = append(c.keys, ref.RemoteKey())
	}
	return nil
}

// Slice and Map are called by reflectwalk before it visits a slice's
// elements or a map's entries; only the per-element hooks below matter.
func (c *collector) Slice(reflect.Value) error { return nil }
func (c *collector) Map(reflect.Value) error   { return nil }

// SliceElem and MapElem record slice elements and map values that are
// themselves remote references, which StructField never sees.
func (c *collector) SliceElem(_ int, v reflect.Value) error {
	return c.StructField(reflect.StructField{}, v)
}

func (c *collector) MapElem(_, _, v reflect.Value) error {
	return c.StructField(reflect.StructField{}, v)
}

var _ Referencer = cell.Ref{}
