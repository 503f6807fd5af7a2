package dotstate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotstate/dotstate/diff"
)

func TestRenderRecord(t *testing.T) {
	edit := renderRecord(diff.Record{Kind: diff.KindEdit, Path: "Profile.City", Old: "london", New: "paris"})
	assert.Contains(t, edit, "Profile.City")
	assert.Contains(t, edit, "london")
	assert.Contains(t, edit, "paris")

	added := renderRecord(diff.Record{Kind: diff.KindNew, Path: "Theme", New: "dark"})
	assert.Contains(t, added, "dark")

	arr := renderRecord(diff.Record{
		Kind:  diff.KindArray,
		Path:  "Tags",
		Index: 2,
		Item:  &diff.Record{Kind: diff.KindNew, New: "c"},
	})
	assert.Contains(t, arr, "Tags[2]")
	assert.Contains(t, arr, "+c")
}
