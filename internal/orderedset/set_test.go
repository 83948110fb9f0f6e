package orderedset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/zonemanifest/internal/orderedset"
)

func TestSet_KeepsFirstInsertionOrder(t *testing.T) {
	s := orderedset.New[string]()
	assert.True(t, s.Add("b"))
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("b"))
	assert.True(t, s.Add("c"))
	assert.Equal(t, []string{"b", "a", "c"}, s.Values())
	assert.Equal(t, 3, s.Len())
}

func TestSet_ValuesReturnsCopy(t *testing.T) {
	s := orderedset.New("x", "y")
	vals := s.Values()
	vals[0] = "mutated"
	assert.Equal(t, []string{"x", "y"}, s.Values())
}

func TestSet_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := rapid.SliceOf(rapid.StringMatching(`[a-c]{0,2}`)).Draw(rt, "input")
		s := orderedset.New(input...)

		vals := s.Values()
		seen := make(map[string]bool)
		for _, v := range vals {
			assert.False(rt, seen[v], "duplicate %q in %v", v, vals)
			seen[v] = true
		}
		for _, v := range input {
			assert.True(rt, seen[v], "%q missing from %v", v, vals)
		}

		// Values must appear in the order of their first occurrence in input.
		var want []string
		firsts := make(map[string]bool)
		for _, v := range input {
			if !firsts[v] {
				firsts[v] = true
				want = append(want, v)
			}
		}
		assert.Equal(rt, len(want), s.Len())
		if len(want) > 0 {
			assert.Equal(rt, want, vals)
		}
	})
}
