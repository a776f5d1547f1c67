package worker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapKeepsOrder(t *testing.T) {
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}
	out := Map(in, func(v int) int { return v * v })
	require.Len(t, out, len(in))
	for i, v := range out {
		require.Equal(t, i*i, v)
	}
}

func TestMapSurvivesPanics(t *testing.T) {
	out := Map([]string{"a", "", "c"}, func(s string) string {
		if s == "" {
			panic("empty")
		}
		return s + s
	})
	require.Equal(t, []string{"aa", "", "cc"}, out)

	// The workers must still be alive after a panic.
	require.Equal(t, []int{2}, Map([]int{1}, func(v int) int { return v * 2 }))
}
