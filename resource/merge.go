package resource

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/copystructure"
)

// Merge implements the composite merge rule of spec §4.1 as a single
// blanket derivation rather than requiring every resource type to hand-write
// its own field-by-field merge: it deep-copies declared (so the caller's
// original value is never mutated — see DESIGN.md on mitchellh/copystructure)
// and then walks its exported fields in parallel with stored's. Any field
// whose type exposes a `Composite(T) T` method (every cell.Remote[T] does)
// is replaced by calling that method against the corresponding stored
// field; every other field is left exactly as declared, which is precisely
// the "Local fields: composite = d" rule.
//
// declared and stored must point at values of the same concrete struct
// type; this is guaranteed by the planner, which only merges a declared and
// stored entry that share a resource_key and therefore, by invariant, a
// type_tag.
func Merge(declared, stored any) (any, error) {
	copied, err := copystructure.Copy(declared)
	if err != nil {
		return nil, fmt.Errorf("resource: copying declared value: %w", err)
	}

	dv := reflect.ValueOf(copied)
	sv := reflect.ValueOf(stored)
	for dv.Kind() == reflect.Ptr {
		if dv.IsNil() {
			return copied, nil
		}
		dv = dv.Elem()
	}
	for sv.Kind() == reflect.Ptr {
		if sv.IsNil() {
			return copied, nil
		}
		sv = sv.Elem()
	}
	if dv.Kind() != reflect.Struct || sv.Kind() != reflect.Struct {
		return copied, nil
	}

	mergeStructFields(dv, sv)
	return copied, nil
}

func mergeStructFields(dv, sv reflect.Value) {
	t := dv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		df := dv.Field(i)
		sf := sv.Field(i)
		if !df.CanSet() {
			continue
		}

		if method := df.Addr().MethodByName("Composite"); method.IsValid() {
			mt := method.Type()
			if mt.NumIn() == 1 && mt.In(0) == field.Type && mt.NumOut() == 1 && mt.Out(0) == field.Type {
				result := method.Call([]reflect.Value{sf})
				df.Set(result[0])
				continue
			}
		}

		if field.Type.Kind() == reflect.Struct {
			mergeStructFields(df, sf)
		}
	}
}
