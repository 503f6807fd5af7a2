// Package deep implements the value-level plumbing under the store: deep
// copies for defensive snapshots, patch merging for partial updates, and
// dot-path traversal for the hooks accessor tree. Everything works through
// reflection so the same code serves struct states and map states.
package deep

import "reflect"

// Clone returns a deep copy of v. Maps, slices, pointers and exported struct
// fields are copied recursively. Unexported struct fields travel with the
// enclosing struct assignment and stay shared with the original.
func Clone[T any](v T) T {
	rv := reflect.ValueOf(&v).Elem()
	return cloneValue(rv).Interface().(T)
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Invalid:
		return v
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(cloneValue(v.Elem()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneValue(v.Elem()))
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(cloneValue(iter.Key()), cloneValue(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		// shallow copy first so unexported fields survive
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			f := out.Field(i)
			if f.CanSet() {
				f.Set(cloneValue(v.Field(i)))
			}
		}
		return out
	default:
		return v
	}
}

// Equal reports structural equality of two values.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
