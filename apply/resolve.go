package apply

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/copystructure"

	"github.com/schell/teleform/cell"
	"github.com/schell/teleform/resource"
	"github.com/schell/teleform/tferr"
)

// resolvable is implemented by *cell.Input[T] for every T: it lets resolve
// walk a resource value without knowing the concrete type parameter of any
// particular field.
type resolvable interface {
	RefTarget() (cell.Ref, bool)
	ResolveFrom(v any) error
}

var resolvableType = reflect.TypeOf((*resolvable)(nil)).Elem()

// lookup returns the currently-known value of resourceKey's selector field,
// and whether it was known.
type lookup[P any] func(resourceKey, selector string) (any, bool, error)

// resolve implements spec §4.5 step 1: it deep-copies declaredValue (so the
// original, still-Unknown declaration handed to the planner is never
// mutated — see DESIGN.md on mitchellh/copystructure, the same concern
// package resource.Merge addresses) and then walks its fields, substituting
// every cell.Input whose RefTo names another resource for that resource's
// currently-known output.
func resolve[P any](key string, declaredValue resource.Capability[P], find lookup[P]) (resource.Capability[P], error) {
	copied, err := copystructure.Copy(declaredValue)
	if err != nil {
		return nil, fmt.Errorf("apply: copying declared value for %q: %w", key, err)
	}

	v := reflect.ValueOf(copied)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return copied.(resource.Capability[P]), nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return copied.(resource.Capability[P]), nil
	}

	if err := resolveStruct(key, v, find); err != nil {
		return nil, err
	}
	return copied.(resource.Capability[P]), nil
}

func resolveStruct[P any](key string, v reflect.Value, find lookup[P]) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		fv := v.Field(i)
		if !fv.CanAddr() {
			continue
		}

		if fv.Addr().Type().Implements(resolvableType) {
			rv := fv.Addr().Interface().(resolvable)
			ref, isRef := rv.RefTarget()
			if !isRef {
				continue
			}
			value, known, err := find(ref.ResourceKey, ref.Selector)
			if err != nil {
				return err
			}
			if !known {
				return &tferr.UnresolvedDependencyError{Key: ref.ResourceKey, Field: ref.Selector}
			}
			if err := rv.ResolveFrom(value); err != nil {
				return fmt.Errorf("apply: resolving %s.%s for %q: %w", ref.ResourceKey, ref.Selector, key, err)
			}
			continue
		}

		switch fv.Kind() {
		case reflect.Struct:
			if err := resolveStruct[P](key, fv, find); err != nil {
				return err
			}
		case reflect.Slice, reflect.Array:
			for j := 0; j < fv.Len(); j++ {
				elem := fv.Index(j)
				if elem.Kind() == reflect.Struct && elem.CanAddr() {
					if err := resolveStruct[P](key, elem, find); err != nil {
						return err
					}
				}
			}
		case reflect.Map:
			if fv.IsNil() {
				continue
			}
			iter := fv.MapRange()
			for iter.Next() {
				if err := resolveMapValue[P](key, fv, iter.Key(), iter.Value(), find); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// resolveMapValue resolves a single map entry, mirroring depwalk's descent
// into mappings (spec §4.6). Map values are never addressable, so the entry
// is copied into an addressable scratch value, resolved there, and written
// back with SetMapIndex.
func resolveMapValue[P any](key string, m, mk, mv reflect.Value, find lookup[P]) error {
	tmp := reflect.New(mv.Type()).Elem()
	tmp.Set(mv)

	switch {
	case tmp.Addr().Type().Implements(resolvableType):
		rv := tmp.Addr().Interface().(resolvable)
		ref, isRef := rv.RefTarget()
		if isRef {
			value, known, err := find(ref.ResourceKey, ref.Selector)
			if err != nil {
				return err
			}
			if !known {
				return &tferr.UnresolvedDependencyError{Key: ref.ResourceKey, Field: ref.Selector}
			}
			if err := rv.ResolveFrom(value); err != nil {
				return fmt.Errorf("apply: resolving %s.%s for %q: %w", ref.ResourceKey, ref.Selector, key, err)
			}
		}
	case tmp.Kind() == reflect.Struct:
		if err := resolveStruct[P](key, tmp, find); err != nil {
			return err
		}
	}

	m.SetMapIndex(mk, tmp)
	return nil
}
