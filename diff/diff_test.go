package diff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type inner struct {
	City string
}

type outer struct {
	Name    string
	Age     int
	Profile inner
	Tags    []string
}

func TestDiffEqual(t *testing.T) {
	a := outer{Name: "ada", Age: 36, Profile: inner{City: "london"}, Tags: []string{"x"}}
	b := outer{Name: "ada", Age: 36, Profile: inner{City: "london"}, Tags: []string{"x"}}
	assert.Nil(t, Diff(a, b))
}

func TestDiffSingleNestedEdit(t *testing.T) {
	a := outer{Name: "ada", Profile: inner{City: "london"}}
	b := outer{Name: "ada", Profile: inner{City: "cambridge"}}
	recs := Diff(a, b)
	assert.Len(t, recs, 1)
	assert.Equal(t, KindEdit, recs[0].Kind)
	assert.Equal(t, "Profile.City", recs[0].Path)
	assert.Equal(t, "london", recs[0].Old)
	assert.Equal(t, "cambridge", recs[0].New)
}

func TestDiffMapNewAndDeleted(t *testing.T) {
	a := map[string]any{"keep": 1, "drop": 2}
	b := map[string]any{"keep": 1, "add": 3}
	recs := Diff(a, b)
	assert.Len(t, recs, 2)

	byPath := map[string]Record{}
	for _, r := range recs {
		byPath[r.Path] = r
	}
	assert.Equal(t, KindDeleted, byPath["drop"].Kind)
	assert.Equal(t, 2, byPath["drop"].Old)
	assert.Equal(t, KindNew, byPath["add"].Kind)
	assert.Equal(t, 3, byPath["add"].New)
}

func TestDiffArrayEditWithinCommonLength(t *testing.T) {
	a := outer{Tags: []string{"a", "b"}}
	b := outer{Tags: []string{"a", "z"}}
	recs := Diff(a, b)
	assert.Len(t, recs, 1)
	assert.Equal(t, KindEdit, recs[0].Kind)
	assert.Equal(t, "Tags.1", recs[0].Path)
}

func TestDiffArrayGrowAndShrink(t *testing.T) {
	recs := Diff(outer{Tags: []string{"a"}}, outer{Tags: []string{"a", "b", "c"}})
	assert.Len(t, recs, 2)
	assert.Equal(t, KindArray, recs[0].Kind)
	assert.Equal(t, "Tags", recs[0].Path)
	assert.Equal(t, 1, recs[0].Index)
	assert.Equal(t, KindNew, recs[0].Item.Kind)
	assert.Equal(t, "b", recs[0].Item.New)
	assert.Equal(t, 2, recs[1].Index)

	recs = Diff(outer{Tags: []string{"a", "b"}}, outer{Tags: []string{"a"}})
	assert.Len(t, recs, 1)
	assert.Equal(t, KindArray, recs[0].Kind)
	assert.Equal(t, 1, recs[0].Index)
	assert.Equal(t, KindDeleted, recs[0].Item.Kind)
	assert.Equal(t, "b", recs[0].Item.Old)
}

func TestDiffDeepMapState(t *testing.T) {
	a := map[string]any{"counter": map[string]any{"count": 1}}
	b := map[string]any{"counter": map[string]any{"count": 2}}
	recs := Diff(a, b)
	assert.Len(t, recs, 1)
	assert.Equal(t, "counter.count", recs[0].Path)
	assert.Equal(t, 1, recs[0].Old)
	assert.Equal(t, 2, recs[0].New)
}

func TestDiffNilAndTypeChange(t *testing.T) {
	recs := Diff(map[string]any{"v": 1}, map[string]any{"v": "one"})
	assert.Len(t, recs, 1)
	assert.Equal(t, KindEdit, recs[0].Kind)

	recs = Diff(map[string]any{"v": nil}, map[string]any{"v": 1})
	assert.Len(t, recs, 1)
	assert.Equal(t, KindNew, recs[0].Kind)
	assert.Equal(t, "v", recs[0].Path)
}

func TestDiffOpaqueStructField(t *testing.T) {
	type session struct {
		User     string
		LastSeen time.Time
	}
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	recs := Diff(session{User: "ada", LastSeen: t1}, session{User: "ada", LastSeen: t2})
	assert.Len(t, recs, 1)
	assert.Equal(t, KindEdit, recs[0].Kind)
	assert.Equal(t, "LastSeen", recs[0].Path)
	assert.Equal(t, t1, recs[0].Old)
	assert.Equal(t, t2, recs[0].New)

	assert.Nil(t, Diff(session{LastSeen: t1}, session{LastSeen: t1}))
}

func TestDiffUnexportedOnlyChange(t *testing.T) {
	type tagged struct {
		Name string
		rev  int
	}
	recs := Diff(tagged{Name: "a", rev: 1}, tagged{Name: "a", rev: 2})
	assert.Len(t, recs, 1)
	assert.Equal(t, KindEdit, recs[0].Kind)
	assert.Equal(t, "", recs[0].Path)

	assert.Nil(t, Diff(tagged{Name: "a", rev: 1}, tagged{Name: "a", rev: 1}))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "edit", KindEdit.String())
	assert.Equal(t, "new", KindNew.String())
	assert.Equal(t, "deleted", KindDeleted.String())
	assert.Equal(t, "array", KindArray.String())
}
