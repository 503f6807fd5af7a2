package deep

import (
	"reflect"
	"strings"
)

// Merge deep-merges a patch into a copy of base and returns the copy.
// Nested maps and structs merge key by key; slices and arrays are replaced
// wholesale, never element-wise. Keys with no matching field are ignored.
func Merge[T any](base T, patch map[string]any) T {
	out := Clone(base)
	rv := reflect.ValueOf(&out).Elem()
	mergeValue(rv, patch, false)
	return out
}

// MergeShallow assigns top-level patch keys into a copy of base without
// descending into nested containers.
func MergeShallow[T any](base T, patch map[string]any) T {
	out := Clone(base)
	rv := reflect.ValueOf(&out).Elem()
	mergeValue(rv, patch, true)
	return out
}

func mergeValue(dst reflect.Value, patch map[string]any, shallow bool) {
	switch dst.Kind() {
	case reflect.Pointer:
		if dst.IsNil() {
			if !dst.CanSet() {
				return
			}
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		mergeValue(dst.Elem(), patch, shallow)
	case reflect.Interface:
		if dst.IsNil() {
			if dst.CanSet() {
				dst.Set(reflect.ValueOf(Clone(patch)))
			}
			return
		}
		inner := reflect.New(dst.Elem().Type()).Elem()
		inner.Set(cloneValue(dst.Elem()))
		mergeValue(inner, patch, shallow)
		if dst.CanSet() {
			dst.Set(inner)
		}
	case reflect.Map:
		if dst.Type().Key().Kind() != reflect.String {
			return
		}
		if dst.IsNil() && dst.CanSet() {
			dst.Set(reflect.MakeMap(dst.Type()))
		}
		for k, pv := range patch {
			kv := reflect.ValueOf(k).Convert(dst.Type().Key())
			dst.SetMapIndex(kv, mergedEntry(dst.MapIndex(kv), pv, dst.Type().Elem(), shallow))
		}
	case reflect.Struct:
		for k, pv := range patch {
			f := fieldByName(dst, k)
			if !f.IsValid() || !f.CanSet() {
				continue
			}
			sub, isMap := pv.(map[string]any)
			if isMap && !shallow && isBranchValue(f) {
				mergeValue(f, sub, false)
			} else {
				assign(f, pv)
			}
		}
	}
}

// mergedEntry computes the new value for one map key.
func mergedEntry(cur reflect.Value, pv any, elem reflect.Type, shallow bool) reflect.Value {
	sub, isMap := pv.(map[string]any)
	if isMap && !shallow && cur.IsValid() && isBranchValue(cur) {
		out := reflect.New(cur.Type()).Elem()
		out.Set(cloneValue(cur))
		mergeValue(out, sub, false)
		return out
	}
	if pv == nil {
		return reflect.Zero(elem)
	}
	nv := reflect.ValueOf(Clone(pv))
	if nv.Type().AssignableTo(elem) {
		return nv
	}
	if nv.Type().ConvertibleTo(elem) {
		return nv.Convert(elem)
	}
	return reflect.Zero(elem)
}

func assign(dst reflect.Value, pv any) {
	if pv == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return
	}
	nv := reflect.ValueOf(Clone(pv))
	switch {
	case nv.Type().AssignableTo(dst.Type()):
		dst.Set(nv)
	case nv.Type().ConvertibleTo(dst.Type()):
		dst.Set(nv.Convert(dst.Type()))
	}
}

// fieldByName finds an exported struct field by exact, then case-insensitive,
// name match.
func fieldByName(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		return v.FieldByName(name)
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, name) {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

// isBranchValue reports whether v (after unwrapping pointers and interfaces)
// is a mergeable container, i.e. a struct or a string-keyed map. Slices and
// arrays are not branches; patches replace them as whole values.
func isBranchValue(v reflect.Value) bool {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return true
	case reflect.Map:
		return v.Type().Key().Kind() == reflect.String
	default:
		return false
	}
}
