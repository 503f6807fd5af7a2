package devtools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	name  string
	state any
}

func (f *fakeStore) Name() string  { return f.name }
func (f *fakeStore) Snapshot() any { return f.state }

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry(nil)
	counter := &fakeStore{name: "counter", state: 1}
	r.Register(counter)

	got, err := r.Lookup("counter")
	assert.NoError(t, err)
	assert.Same(t, counter, got)
	assert.Equal(t, 1, r.Len())
}

func TestDuplicateRegistrationKeepsFirst(t *testing.T) {
	r := NewRegistry(nil)
	first := &fakeStore{name: "counter", state: "first"}
	second := &fakeStore{name: "counter", state: "second"}
	r.Register(first)
	r.Register(second)

	got, err := r.Lookup("counter")
	assert.NoError(t, err)
	assert.Same(t, first, got)
}

func TestLookupSuggestsNearestName(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeStore{name: "counter"})
	r.Register(&fakeStore{name: "session"})

	_, err := r.Lookup("countr")
	assert.ErrorContains(t, err, `did you mean "counter"`)

	_, err = r.Lookup("zzzzzzzzzz")
	assert.ErrorContains(t, err, "unknown store")
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestDeregister(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeStore{name: "counter"})
	r.Deregister("counter")
	_, err := r.Lookup("counter")
	assert.Error(t, err)
	assert.Equal(t, 0, r.Len())
}
