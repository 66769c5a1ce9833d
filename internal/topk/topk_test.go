package topk

import (
	"cmp"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id    int
	score int
}

func byScore(a, b item) int { return cmp.Compare(a.score, b.score) }

func TestSelect_Basic(t *testing.T) {
	t.Parallel()

	in := []int{5, 1, 9, 3, 7, 2}
	got := Select(in, 3, cmp.Compare[int])

	assert.Equal(t, []int{5, 7, 9}, got)
	assert.Equal(t, []int{5, 1, 9, 3, 7, 2}, in, "input must not be modified")
}

func TestSelect_SmallList(t *testing.T) {
	t.Parallel()

	in := []int{3, 1, 2}
	got := Select(in, 5, cmp.Compare[int])

	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, []int{3, 1, 2}, in)

	got[0] = 99
	assert.Equal(t, []int{3, 1, 2}, in, "result does not alias input")
}

func TestSelect_EdgeSizes(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Select([]int{1, 2, 3}, 0, cmp.Compare[int]))
	assert.Empty(t, Select([]int{1, 2, 3}, -1, cmp.Compare[int]))
	assert.Empty(t, Select([]int(nil), 3, cmp.Compare[int]))
	assert.NotNil(t, Select([]int(nil), 3, cmp.Compare[int]))
	assert.Equal(t, []int{1, 2, 3}, Select([]int{2, 3, 1}, 3, cmp.Compare[int]))
}

func TestSelect_TiesKeepEarlierElements(t *testing.T) {
	t.Parallel()

	in := []item{{1, 5}, {2, 5}, {3, 5}, {4, 5}}
	got := Select(in, 2, byScore)

	require.Len(t, got, 2)
	ids := []int{got[0].id, got[1].id}
	assert.ElementsMatch(t, []int{1, 2}, ids)
}

// TestSelect_Properties checks, over random inputs, that the selection has
// the right size, is drawn from the input, is sorted, and that no excluded
// element outranks the selected minimum.
func TestSelect_Properties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		size := rng.Intn(40)
		n := rng.Intn(12)
		in := make([]item, size)
		for i := range in {
			in[i] = item{id: i, score: rng.Intn(20)}
		}
		snapshot := slices.Clone(in)

		got := Select(in, n, byScore)

		require.Equal(t, snapshot, in)
		require.Len(t, got, min(n, size))
		require.True(t, slices.IsSortedFunc(got, byScore))

		picked := map[int]bool{}
		for _, g := range got {
			require.Equal(t, in[g.id], g, "result element comes from the input")
			require.False(t, picked[g.id], "no element is selected twice")
			picked[g.id] = true
		}
		if len(got) == 0 {
			continue
		}
		floor := got[0]
		for _, e := range in {
			if !picked[e.id] {
				require.LessOrEqual(t, byScore(e, floor), 0, "excluded %v outranks selected minimum %v", e, floor)
			}
		}
	}
}
