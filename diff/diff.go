// Package diff computes structural differences between two state snapshots.
// The result is an ordered list of path-addressed change records that the
// store reuses for its no-op fast path, logging and persistence middleware.
package diff

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

type Kind byte

const (
	KindEdit    Kind = 'E' // value changed at Path
	KindNew     Kind = 'N' // key added at Path
	KindDeleted Kind = 'D' // key removed at Path
	KindArray   Kind = 'A' // element added/removed at Path[Index], see Item
)

func (k Kind) String() string {
	switch k {
	case KindEdit:
		return "edit"
	case KindNew:
		return "new"
	case KindDeleted:
		return "deleted"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%c)", byte(k))
	}
}

// Record is one structural change between two snapshots. Edits within the
// common length of two arrays come out as KindEdit with the index as a path
// segment; length changes come out as KindArray with a nested Item record.
type Record struct {
	Kind  Kind
	Path  string
	Old   any
	New   any
	Index int     // KindArray only
	Item  *Record // KindArray only
}

// Diff returns the ordered change records turning a into b, or nil when the
// two values are structurally equal.
func Diff(a, b any) []Record {
	var out []Record
	walk("", reflect.ValueOf(a), reflect.ValueOf(b), &out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func walk(path string, a, b reflect.Value, out *[]Record) {
	a, b = indirect(a), indirect(b)
	av, bv := a.IsValid(), b.IsValid()
	switch {
	case !av && !bv:
		return
	case !av:
		*out = append(*out, Record{Kind: KindNew, Path: path, New: b.Interface()})
		return
	case !bv:
		*out = append(*out, Record{Kind: KindDeleted, Path: path, Old: a.Interface()})
		return
	}
	if a.Type() != b.Type() {
		*out = append(*out, Record{Kind: KindEdit, Path: path, Old: a.Interface(), New: b.Interface()})
		return
	}
	switch a.Kind() {
	case reflect.Struct:
		t := a.Type()
		// opaque structs like time.Time hide their state in unexported
		// fields; compare them whole instead of descending past it
		if !hasExportedFields(t) {
			leafCompare(path, a, b, out)
			return
		}
		before := len(*out)
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			walk(join(path, t.Field(i).Name), a.Field(i), b.Field(i), out)
		}
		// a change hiding only in unexported fields still counts as an edit
		if len(*out) == before {
			leafCompare(path, a, b, out)
		}
	case reflect.Map:
		if a.Type().Key().Kind() != reflect.String {
			leafCompare(path, a, b, out)
			return
		}
		for _, k := range sortedKeys(a) {
			kv := reflect.ValueOf(k).Convert(a.Type().Key())
			walk(join(path, k), a.MapIndex(kv), b.MapIndex(kv), out)
		}
		for _, k := range sortedKeys(b) {
			kv := reflect.ValueOf(k).Convert(b.Type().Key())
			if !a.MapIndex(kv).IsValid() {
				walk(join(path, k), reflect.Value{}, b.MapIndex(kv), out)
			}
		}
	case reflect.Slice, reflect.Array:
		n := a.Len()
		if b.Len() < n {
			n = b.Len()
		}
		for i := 0; i < n; i++ {
			walk(join(path, strconv.Itoa(i)), a.Index(i), b.Index(i), out)
		}
		for i := n; i < b.Len(); i++ {
			*out = append(*out, Record{
				Kind: KindArray, Path: path, Index: i,
				Item: &Record{Kind: KindNew, Path: path, New: b.Index(i).Interface()},
			})
		}
		for i := n; i < a.Len(); i++ {
			*out = append(*out, Record{
				Kind: KindArray, Path: path, Index: i,
				Item: &Record{Kind: KindDeleted, Path: path, Old: a.Index(i).Interface()},
			})
		}
	default:
		leafCompare(path, a, b, out)
	}
}

func hasExportedFields(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

func leafCompare(path string, a, b reflect.Value, out *[]Record) {
	if !reflect.DeepEqual(a.Interface(), b.Interface()) {
		*out = append(*out, Record{Kind: KindEdit, Path: path, Old: a.Interface(), New: b.Interface()})
	}
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func join(path, seg string) string {
	if path == "" {
		return seg
	}
	return path + "." + seg
}

func sortedKeys(m reflect.Value) []string {
	keys := make([]string, 0, m.Len())
	iter := m.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	sort.Strings(keys)
	return keys
}
