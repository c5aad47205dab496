package cube

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gistkit/gist"
)

func mustParse(t *testing.T, s string) *Cube {
	t.Helper()
	c, err := Parse(s)
	require.NoError(t, err, "parsing %q", s)
	return c
}

func TestParseAndString(t *testing.T) {
	tests := []struct {
		in   string
		out  string
		dim  int
		isPt bool
	}{
		{"1,2,3", "(1, 2, 3)", 3, true},
		{"(1,2,3)", "(1, 2, 3)", 3, true},
		{"(0,0),(1,1)", "(0, 0),(1, 1)", 2, false},
		{" ( 0 , 0 ) , ( 1 , 1 ) ", "(0, 0),(1, 1)", 2, false},
		{"(5,5),(5,5)", "(5, 5)", 2, true},
		{"(-1.5e2)", "(-150)", 1, true},
	}
	for _, tt := range tests {
		c := mustParse(t, tt.in)
		assert.Equal(t, tt.out, c.String(), "input %q", tt.in)
		assert.Equal(t, tt.dim, c.Dim())
		assert.Equal(t, tt.isPt, c.IsPoint())
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "(", "(1,", "(1),(2,3)", "(1,2)x", "one,two", "(1,2),3"} {
		_, err := Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestContains(t *testing.T) {
	a := mustParse(t, "(0,0,0),(1,1,1)")
	assert.True(t, a.Contains(mustParse(t, "(0.5,0.5,0.5)")))

	// Extra dim of the operand must be zero.
	b := mustParse(t, "(0,0),(1,1)")
	assert.False(t, b.Contains(mustParse(t, "(0.5,0.5,0.5)")))
	assert.True(t, b.Contains(mustParse(t, "(0.5,0.5,0)")))

	// Zero-dimensional box is contained in everything.
	zero := &Cube{}
	assert.True(t, a.Contains(zero))
	assert.True(t, zero.Contains(zero))

	// Unordered corners normalize.
	c := mustParse(t, "(1,1),(0,0)")
	assert.True(t, c.Contains(mustParse(t, "(0.3,0.3)")))
}

func TestOverlap(t *testing.T) {
	a := mustParse(t, "(0,0),(2,2)")
	assert.True(t, a.Overlaps(mustParse(t, "(1,1),(3,3)")))
	assert.False(t, a.Overlaps(mustParse(t, "(3,3),(4,4)")))

	// Excess dims of the larger box must bracket 0.
	assert.True(t, a.Overlaps(mustParse(t, "(1)")))
	low := mustParse(t, "(1,5),(2,6)")
	assert.False(t, low.Overlaps(mustParse(t, "(1)")))

	assert.True(t, a.Overlaps(a))
}

func TestUnionInter(t *testing.T) {
	a := mustParse(t, "(0,0),(1,1)")
	b := mustParse(t, "(2,2),(3,3)")

	u := a.Union(b)
	assert.Equal(t, "(0, 0),(3, 3)", u.String())
	assert.True(t, u.Contains(a))
	assert.True(t, u.Contains(b))

	// Intersection of disjoint boxes is the deliberate degenerate box.
	in := a.Inter(b)
	assert.Equal(t, "(2, 2),(1, 1)", in.String())

	// Overlapping case.
	in2 := mustParse(t, "(0,0),(2,2)").Inter(mustParse(t, "(1,1),(3,3)"))
	assert.Equal(t, "(1, 1),(2, 2)", in2.String())

	// Union collapsing to a point sets the point flag.
	p := mustParse(t, "(1,1)").Union(mustParse(t, "(1,1)"))
	assert.True(t, p.IsPoint())

	// Dimension mixing unions against [0,0].
	m := mustParse(t, "(1,1)").Union(mustParse(t, "(2,2,2)"))
	assert.Equal(t, "(1, 1, 0),(2, 2, 2)", m.String())
}

func TestCmpTotalOrder(t *testing.T) {
	cubes := []*Cube{
		mustParse(t, "(0,0),(1,1)"),
		mustParse(t, "(0,0),(1,2)"),
		mustParse(t, "(0)"),
		mustParse(t, "(0,0)"),
		mustParse(t, "(-1,0),(1,1)"),
	}
	for _, a := range cubes {
		for _, b := range cubes {
			assert.Equal(t, a.Cmp(b), -b.Cmp(a), "antisymmetry %s vs %s", a, b)
			assert.Equal(t, a.Cmp(b) == 0, a.Same(b))
		}
	}
	// Dimension count is the last tie-breaker; (0) sorts before (0,0) only
	// by dim since excess axes read as zero.
	assert.Equal(t, -1, mustParse(t, "(0)").Cmp(mustParse(t, "(0,0)")))

	// NaN sorts above any number.
	nan := &Cube{dim: 1, point: true, coords: []float64{math.NaN()}}
	assert.Equal(t, 1, nan.Cmp(mustParse(t, "(1e300)")))
	assert.Equal(t, 0, nan.Cmp(nan))
}

func TestDistances(t *testing.T) {
	a := mustParse(t, "(0,0),(1,1)")
	b := mustParse(t, "(4,5),(5,6)")
	assert.InDelta(t, 5.0, a.Distance(b), 1e-9) // gaps 3,4
	assert.InDelta(t, 7.0, a.DistanceTaxicab(b), 1e-9)
	assert.InDelta(t, 4.0, a.DistanceChebyshev(b), 1e-9)
	assert.InDelta(t, 0.0, a.Distance(mustParse(t, "(0.5,0.5)")), 1e-9)
	assert.InDelta(t, math.Sqrt2, a.Diameter(), 1e-9)
}

func TestKNNCoord(t *testing.T) {
	c := mustParse(t, "(1,2),(3,4)")
	v, err := c.KNNCoord(1, false)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = c.KNNCoord(3, false)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	// Internal pages always project the lower bound for admissibility.
	v, err = c.KNNCoord(3, true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = c.KNNCoord(5, false)
	require.Error(t, err)
	_, err = c.KNNCoord(0, false)
	require.Error(t, err)
}

func TestEnlargeSubset(t *testing.T) {
	c := mustParse(t, "(0,0),(2,2)")
	e := c.EnlargeBy(1, 3)
	assert.Equal(t, "(-1, -1, -1),(3, 3, 1)", e.String())

	// Shrinking collapses to midpoints rather than inverting.
	s := c.EnlargeBy(-2, 0)
	assert.Equal(t, "(1, 1)", s.String())

	sub, err := c.Subset([]int{2, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, "(0, 0, 0),(2, 2, 2)", sub.String())

	_, err = c.Subset([]int{3})
	require.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, s := range []string{"(1,2,3)", "(0,0),(1,1)", "(-1.5),(2.5)"} {
		c := mustParse(t, s)
		d, err := Decode(c.Encode())
		require.NoError(t, err)
		assert.True(t, c.Same(d))
		assert.Equal(t, c.IsPoint(), d.IsPoint())
	}
	_, err := Decode([]byte{1, 2})
	require.Error(t, err)
}

func TestDimLimit(t *testing.T) {
	coords := make([]float64, MaxDim+1)
	_, err := NewPoint(coords)
	require.Error(t, err)

	_, err = NewPoint(coords[:MaxDim])
	require.NoError(t, err)
}

func TestGistPickSplitOutlier(t *testing.T) {
	// Five 2-D boxes, one far outlier: PickSplit must pick the outlier as a
	// seed, which makes it first in its side's emitted order.
	boxes := []string{
		"(0,0),(1,1)",
		"(0.5,0.5),(1.5,1.5)",
		"(1,0),(2,1)",
		"(10,10),(11,11)",
		"(0,1),(1,2)",
	}
	keys := make([]gist.Key, len(boxes))
	for i, s := range boxes {
		keys[i] = Key{Cube: mustParse(t, s)}
	}
	res, err := gist.PickSplit(context.Background(), keys)
	require.NoError(t, err)

	outlier := 3
	if res.Left[0] == outlier {
		assert.Len(t, res.Left, 1)
	} else {
		require.Equal(t, outlier, res.Right[0], "outlier must be a seed")
		assert.Len(t, res.Right, 1)
	}
}

func TestConsistent(t *testing.T) {
	key := mustParse(t, "(0,0),(10,10)")
	q := mustParse(t, "(1,1),(2,2)")

	match, recheck, err := Consistent(key, q, gist.Contains, true)
	require.NoError(t, err)
	assert.True(t, match)
	assert.False(t, recheck)

	// Internal page over-approximates ContainedBy with overlap.
	match, _, err = Consistent(key, q, gist.ContainedBy, false)
	require.NoError(t, err)
	assert.True(t, match)

	match, _, err = Consistent(key, q, gist.ContainedBy, true)
	require.NoError(t, err)
	assert.False(t, match)

	_, _, err = Consistent(key, q, gist.Strategy(42), true)
	require.Error(t, err)
}

func TestUnionContainsProperty(t *testing.T) {
	pairs := [][2]string{
		{"(0,0),(1,1)", "(5,5),(6,6)"},
		{"(0)", "(0,0),(2,2)"},
		{"(-3,-3),(-1,-1)", "(1,2)"},
	}
	for _, p := range pairs {
		x, y := mustParse(t, p[0]), mustParse(t, p[1])
		u := x.Union(y)
		assert.True(t, u.Contains(x), "union(%s,%s) ⊇ %s", x, y, x)
		assert.True(t, u.Contains(y), "union(%s,%s) ⊇ %s", x, y, y)
	}
}
