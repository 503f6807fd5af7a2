package deep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type profile struct {
	City string
	Tags []string
}

type person struct {
	Name    string
	Age     int
	Profile profile
	Extra   map[string]any
}

func TestCloneIsDetached(t *testing.T) {
	orig := person{
		Name:    "ada",
		Age:     36,
		Profile: profile{City: "london", Tags: []string{"math"}},
		Extra:   map[string]any{"level": 3},
	}
	cp := Clone(orig)
	assert.Equal(t, orig, cp)

	cp.Profile.Tags[0] = "code"
	cp.Extra["level"] = 9
	assert.Equal(t, "math", orig.Profile.Tags[0])
	assert.Equal(t, 3, orig.Extra["level"])
}

func TestCloneMapState(t *testing.T) {
	orig := map[string]any{
		"counter": map[string]any{"count": 1},
		"tags":    []any{"a", "b"},
	}
	cp := Clone(orig)
	cp["counter"].(map[string]any)["count"] = 2
	cp["tags"].([]any)[0] = "z"
	assert.Equal(t, 1, orig["counter"].(map[string]any)["count"])
	assert.Equal(t, "a", orig["tags"].([]any)[0])
}

func TestMergeNested(t *testing.T) {
	base := person{Name: "ada", Age: 36, Profile: profile{City: "london", Tags: []string{"math"}}}
	out := Merge(base, map[string]any{
		"age":     37,
		"profile": map[string]any{"city": "cambridge"},
	})
	assert.Equal(t, 37, out.Age)
	assert.Equal(t, "cambridge", out.Profile.City)
	// untouched siblings survive the merge
	assert.Equal(t, "ada", out.Name)
	assert.Equal(t, []string{"math"}, out.Profile.Tags)
	// base untouched
	assert.Equal(t, 36, base.Age)
}

func TestMergeReplacesArraysWholesale(t *testing.T) {
	base := person{Profile: profile{Tags: []string{"a", "b", "c"}}}
	out := Merge(base, map[string]any{
		"profile": map[string]any{"tags": []string{"z"}},
	})
	assert.Equal(t, []string{"z"}, out.Profile.Tags)
}

func TestMergeMapState(t *testing.T) {
	base := map[string]any{
		"counter": map[string]any{"count": 1, "step": 2},
		"name":    "s",
	}
	out := Merge(base, map[string]any{"counter": map[string]any{"count": 5}})
	assert.Equal(t, 5, out["counter"].(map[string]any)["count"])
	assert.Equal(t, 2, out["counter"].(map[string]any)["step"])
	assert.Equal(t, "s", out["name"])
}

func TestMergeShallow(t *testing.T) {
	base := map[string]any{"counter": map[string]any{"count": 1, "step": 2}}
	out := MergeShallow(base, map[string]any{"counter": map[string]any{"count": 5}})
	// whole subtree replaced, step is gone
	assert.Equal(t, map[string]any{"count": 5}, out["counter"])
}

func TestGet(t *testing.T) {
	state := person{
		Name:    "ada",
		Profile: profile{City: "london", Tags: []string{"math"}},
		Extra:   map[string]any{"nested": map[string]any{"deep": true}},
	}
	v, ok := Get(state, "Profile.City")
	assert.True(t, ok)
	assert.Equal(t, "london", v)

	v, ok = Get(state, "Extra.nested.deep")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = Get(state, "Profile.Zip")
	assert.False(t, ok)

	// arrays are leaves, not traversable
	_, ok = Get(state, "Profile.Tags.0")
	assert.False(t, ok)
	v, ok = Get(state, "Profile.Tags")
	assert.True(t, ok)
	assert.Equal(t, []string{"math"}, v)
}

func TestGetSkipsUnexportedFields(t *testing.T) {
	type hidden struct {
		Name string
		step int
	}
	state := hidden{Name: "ada", step: 2}

	// a path naming an unexported field is absent, never a panic
	_, ok := Get(state, "step")
	assert.False(t, ok)
	_, ok = Get(state, "Step")
	assert.False(t, ok)

	v, ok := Get(state, "name")
	assert.True(t, ok)
	assert.Equal(t, "ada", v)
}

func TestMergeSkipsUnexportedFields(t *testing.T) {
	type hidden struct {
		Name string
		step int
	}
	got := Merge(hidden{Name: "ada", step: 2}, map[string]any{"step": 9, "name": "eva"})
	assert.Equal(t, "eva", got.Name)
	assert.Equal(t, 2, got.step)
}

func TestIsBranchAndKeys(t *testing.T) {
	assert.True(t, IsBranch(profile{}))
	assert.True(t, IsBranch(map[string]any{}))
	assert.False(t, IsBranch([]string{"a"}))
	assert.False(t, IsBranch(42))

	assert.Equal(t, []string{"City", "Tags"}, Keys(profile{}))
	assert.Equal(t, []string{"a", "b"}, Keys(map[string]any{"b": 1, "a": 2}))
	assert.Nil(t, Keys([]int{1}))
}
