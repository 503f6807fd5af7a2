package deep

import (
	"reflect"
	"sort"
	"strings"
)

// Get resolves a dot-path against v. It descends through string-keyed maps,
// exported struct fields, pointers and interfaces. Arrays and slices are
// opaque: a path may end at one but never descend into it. The second result
// is false when any segment along the path is absent.
func Get(v any, path string) (any, bool) {
	cur := reflect.ValueOf(v)
	if path == "" {
		if !cur.IsValid() {
			return nil, false
		}
		return cur.Interface(), true
	}
	for _, seg := range strings.Split(path, ".") {
		cur = unwrap(cur)
		if !cur.IsValid() {
			return nil, false
		}
		switch cur.Kind() {
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			cur = cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !cur.IsValid() {
				return nil, false
			}
		case reflect.Struct:
			cur = fieldByName(cur, seg)
			if !cur.IsValid() {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	cur = unwrap(cur)
	if !cur.IsValid() {
		return nil, true
	}
	return cur.Interface(), true
}

// IsBranch reports whether v is a plain non-array object, i.e. something the
// hooks tree may descend into.
func IsBranch(v any) bool {
	return isBranchValue(reflect.ValueOf(v))
}

// Keys lists the child segments of a branch value in sorted order: exported
// struct field names or string map keys. Non-branches yield nil.
func Keys(v any) []string {
	rv := unwrap(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil
	}
	var keys []string
	switch rv.Kind() {
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).IsExported() {
				keys = append(keys, t.Field(i).Name)
			}
		}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		iter := rv.MapRange()
		for iter.Next() {
			keys = append(keys, iter.Key().String())
		}
	default:
		return nil
	}
	sort.Strings(keys)
	return keys
}

func unwrap(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
