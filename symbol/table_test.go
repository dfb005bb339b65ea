package symbol_test

import (
	"testing"

	"github.com/hyperlisp/lumen/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternIsStable(t *testing.T) {
	table := symbol.NewTable()
	a := table.Intern("hello")
	b := table.Intern("hello")
	assert.Equal(t, a, b)

	c := table.Intern("world")
	assert.NotEqual(t, a, c)
}

func TestPeekDoesNotIntern(t *testing.T) {
	table := symbol.NewTable()
	_, ok := table.Peek("nope")
	assert.False(t, ok)

	id := table.Intern("nope")
	got, ok := table.Peek("nope")
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestNameRoundTrip(t *testing.T) {
	table := symbol.NewTable()
	id := table.Intern("swap!")
	name, ok := table.Name(id)
	require.True(t, ok)
	assert.Equal(t, "swap!", name)

	_, ok = table.Name(symbol.ID(9999))
	assert.False(t, ok)
}

func TestLen(t *testing.T) {
	table := symbol.NewTable()
	assert.Equal(t, 0, table.Len())
	table.Intern("a")
	table.Intern("b")
	table.Intern("a")
	assert.Equal(t, 2, table.Len())
}
