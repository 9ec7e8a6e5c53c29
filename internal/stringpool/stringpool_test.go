package stringpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternDedup(t *testing.T) {
	p := New()

	a := p.Intern("java.base")
	b := p.Intern("java.logging")
	c := p.Intern("java.base")

	require.Equal(t, a, c, "re-interning the same string must return the same offset")
	require.NotEqual(t, a, b)
	require.Equal(t, uint32(0), p.Intern(""), "empty string is always offset 0")
}

func TestRoundTrip(t *testing.T) {
	p := New()
	off := p.Intern("module-info.class")

	got, ok := StringAt(p.Bytes(), off)
	require.True(t, ok)
	require.Equal(t, "module-info.class", got)
}

func TestStringAtMalformed(t *testing.T) {
	_, ok := StringAt([]byte{'a', 'b'}, 0) // no NUL terminator
	require.False(t, ok)

	_, ok = StringAt([]byte{'a', 'b'}, 10) // out of range
	require.False(t, ok)
}

func TestOrderPreservesInsertion(t *testing.T) {
	p := New()
	p.Intern("b")
	p.Intern("a")
	p.Intern("b")

	require.Equal(t, []string{"b", "a"}, p.Order())
}
