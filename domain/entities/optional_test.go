package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptional(t *testing.T) {
	some := Some(42)
	v, ok := some.Get()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.True(t, some.IsPresent())
	assert.Equal(t, 42, some.OrElse(7))
	assert.Equal(t, 42, some.MustGet())

	none := None[int]()
	_, ok = none.Get()
	assert.False(t, ok)
	assert.False(t, none.IsPresent())
	assert.Equal(t, 7, none.OrElse(7))
	assert.Panics(t, func() { none.MustGet() })
}
