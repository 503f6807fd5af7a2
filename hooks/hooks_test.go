package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotstate/dotstate/deep"
)

// fakeSource is a hand-rolled store stand-in: a mutable snapshot plus
// manually fired change notifications.
type fakeSource struct {
	state map[string]any
	subs  []func()
}

func (f *fakeSource) Get(path string) (any, bool) {
	return deep.Get(f.state, path)
}

func (f *fakeSource) Subscribe(fn func()) func() {
	i := len(f.subs)
	f.subs = append(f.subs, fn)
	return func() { f.subs[i] = func() {} }
}

func (f *fakeSource) commit(next map[string]any) {
	f.state = next
	for _, fn := range f.subs {
		fn()
	}
}

func newFake() *fakeSource {
	return &fakeSource{state: map[string]any{
		"counter": map[string]any{"count": 1, "step": 2},
		"name":    "demo",
		"tags":    []any{"a", "b"},
	}}
}

func TestLeafGetAndName(t *testing.T) {
	tree := NewTree(newFake())
	leaf := tree.Use("counter.count")
	assert.Equal(t, "UseCount", leaf.Name())
	assert.Equal(t, 1, leaf.Get())

	assert.Equal(t, "demo", tree.Use("name").Get())
	// absent segment resolves to nil, not an error
	assert.Nil(t, tree.Use("counter.missing.deep").Get())
}

func TestLeafCachedByPath(t *testing.T) {
	tree := NewTree(newFake())
	assert.Same(t, tree.Use("counter.count"), tree.Use("counter.count"))
}

func TestNodesAreLazyAndArraysOpaque(t *testing.T) {
	src := newFake()
	tree := NewTree(src)

	counter := tree.Root().Child("counter")
	assert.NotNil(t, counter)
	assert.Equal(t, "counter", counter.Path())

	// primitives and arrays never become nested groups
	assert.Nil(t, tree.Root().Child("name"))
	assert.Nil(t, tree.Root().Child("tags"))

	// the array itself is readable as a leaf value
	assert.Equal(t, []any{"a", "b"}, tree.Use("tags").Get())

	leaves := tree.Root().Leaves()
	names := []string{}
	for _, l := range leaves {
		names = append(names, l.Name())
	}
	assert.Equal(t, []string{"UseName", "UseTags"}, names)
}

func TestWatchFiresOnPathChange(t *testing.T) {
	src := newFake()
	tree := NewTree(src)

	var got []any
	tree.Watch("counter.count", func(v any) { got = append(got, v) })

	src.commit(map[string]any{
		"counter": map[string]any{"count": 2, "step": 2},
		"name":    "demo",
	})
	assert.Equal(t, []any{2}, got)
}

func TestWatchIgnoresSiblingChange(t *testing.T) {
	src := newFake()
	tree := NewTree(src)

	fired := 0
	tree.Watch("counter.count", func(any) { fired++ })

	// only the sibling path changes; count stays 1
	src.commit(map[string]any{
		"counter": map[string]any{"count": 1, "step": 99},
		"name":    "other",
	})
	assert.Equal(t, 0, fired)

	src.commit(map[string]any{
		"counter": map[string]any{"count": 7, "step": 99},
	})
	assert.Equal(t, 1, fired)
}

func TestWatchAbsentPath(t *testing.T) {
	src := newFake()
	tree := NewTree(src)

	var got []any
	tree.Watch("session.user", func(v any) { got = append(got, v) })

	src.commit(map[string]any{"session": map[string]any{"user": "ada"}})
	assert.Equal(t, []any{"ada"}, got)
}
