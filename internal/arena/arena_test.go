package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/csl-lang/csl/internal/arena"
)

func TestPointers(t *testing.T) {
	var a arena.Arena[int]

	p1 := a.New(5)
	assert.Equal(t, 5, *p1.In(&a))

	for i := range 16 {
		a.New(i + 5)
	}
	assert.Equal(t, "[5 5 6 7 8 9 10 11 12 13 14 15 16 17 18 19|20]", a.String())
	assert.Equal(t, 5, *p1.In(&a))

	for i := range 32 {
		a.New(i + 21)
	}
	assert.Equal(t, 5, *p1.In(&a))
}

func TestNilPointer(t *testing.T) {
	var p arena.Pointer[int]
	assert.True(t, p.Nil())

	var a arena.Arena[int]
	p2 := a.New(1)
	assert.False(t, p2.Nil())
}

func TestUntyped(t *testing.T) {
	assert.True(t, arena.Nil().Nil())
}
