package seg

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gistkit/gist"
)

func mustParse(t *testing.T, s string) *Seg {
	t.Helper()
	sg, err := Parse(s)
	require.NoError(t, err, "parsing %q", s)
	return sg
}

func TestParseForms(t *testing.T) {
	tests := []struct {
		in       string
		lo, hi   float32
		loext    byte
		out      string
	}{
		{"6.25", 6.25, 6.25, ExtNone, "6.25"},
		{"~6.3", 6.3, 6.3, ExtAprx, "~6.3"},
		{"<6.3", 6.3, 6.3, ExtLess, "<6.3"},
		{">6.3", 6.3, 6.3, ExtGrtr, ">6.3"},
		{"5(+-)0.3", 4.7, 5.3, ExtNone, "4.7 .. 5.3"},
		{"6.25 .. 6.50", 6.25, 6.5, ExtNone, "6.25 .. 6.50"},
		{"~4.7 .. 5.3", 4.7, 5.3, ExtAprx, "~4.7 .. 5.3"},
		{"2..3", 2, 3, ExtNone, "2 .. 3"},
	}
	for _, tt := range tests {
		sg := mustParse(t, tt.in)
		assert.InDelta(t, tt.lo, sg.Lower, 1e-5, "lower of %q", tt.in)
		assert.InDelta(t, tt.hi, sg.Upper, 1e-5, "upper of %q", tt.in)
		assert.Equal(t, tt.loext, sg.LowerExt, "lower ext of %q", tt.in)
		assert.Equal(t, tt.out, sg.String(), "output of %q", tt.in)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "..", "5 ..", "abc", "7 .. 5", "5(+-)~1"} {
		_, err := Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestSigDigits(t *testing.T) {
	assert.Equal(t, uint8(1), sigDigits("5"))
	assert.Equal(t, uint8(2), sigDigits("5.0"))
	assert.Equal(t, uint8(3), sigDigits("6.25"))
	assert.Equal(t, uint8(2), sigDigits("0.0030"))
	assert.Equal(t, uint8(3), sigDigits("-1.50e3"))
}

func TestPredicates(t *testing.T) {
	a := mustParse(t, "1 .. 10")
	b := mustParse(t, "2 .. 3")
	c := mustParse(t, "11 .. 12")

	assert.True(t, a.Contains(b))
	assert.False(t, b.Contains(a))
	assert.True(t, b.ContainedBy(a))
	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
	assert.True(t, a.Left(c))
	assert.True(t, c.Right(a))
	assert.True(t, a.OverLeft(c))
	assert.True(t, c.OverRight(a))
}

func TestUnionInter(t *testing.T) {
	a := mustParse(t, "1 .. 3")
	b := mustParse(t, "2 .. 5")
	u := a.Union(b)
	assert.Equal(t, float32(1), u.Lower)
	assert.Equal(t, float32(5), u.Upper)

	in := a.Inter(b)
	require.NotNil(t, in)
	assert.Equal(t, float32(2), in.Lower)
	assert.Equal(t, float32(3), in.Upper)

	assert.Nil(t, a.Inter(mustParse(t, "7 .. 9")))
}

// Golden ordering tests locking down the ~ vs exact tie-breaks.
func TestCmpGolden(t *testing.T) {
	approx := mustParse(t, "~5")
	exact := mustParse(t, "5")

	// Lower bound: the approximate form sorts first.
	assert.Equal(t, -1, approx.Cmp(exact))
	assert.Equal(t, 1, exact.Cmp(approx))
	assert.Equal(t, 0, approx.Cmp(mustParse(t, "~5")))

	// More significant digits sort first on equal values.
	assert.Equal(t, -1, mustParse(t, "5.00").Cmp(mustParse(t, "5")))

	// Upper bound tie-break is inverted: "1 .. ~5" after "1 .. 5".
	aHi := &Seg{Lower: 1, Upper: 5, LowerSig: 1, UpperSig: 1, UpperExt: ExtAprx}
	eHi := &Seg{Lower: 1, Upper: 5, LowerSig: 1, UpperSig: 1}
	assert.Equal(t, 1, aHi.Cmp(eHi))
}

func TestCmpTotalOrder(t *testing.T) {
	segs := []*Seg{
		mustParse(t, "1 .. 2"),
		mustParse(t, "~1 .. 2"),
		mustParse(t, "1 .. 3"),
		mustParse(t, "0.5"),
		mustParse(t, "<7"),
		mustParse(t, "5(+-)1"),
	}
	for _, a := range segs {
		for _, b := range segs {
			assert.Equal(t, a.Cmp(b), -b.Cmp(a), "antisymmetry %s / %s", a, b)
			assert.Equal(t, a.Cmp(b) == 0, a.Same(b))
		}
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].Cmp(segs[j]) < 0 })
	for i := 1; i < len(segs); i++ {
		assert.LessOrEqual(t, segs[i-1].Cmp(segs[i]), 0)
	}
}

func TestGistConsistent(t *testing.T) {
	key := mustParse(t, "1 .. 10")
	q := mustParse(t, "4 .. 5")

	match, recheck, err := Consistent(key, q, gist.Contains, true)
	require.NoError(t, err)
	assert.True(t, match)
	assert.False(t, recheck)

	// Internal ContainedBy relaxes to overlap.
	match, _, err = Consistent(key, q, gist.ContainedBy, false)
	require.NoError(t, err)
	assert.True(t, match)

	match, _, err = Consistent(key, q, gist.Left, true)
	require.NoError(t, err)
	assert.False(t, match)

	_, _, err = Consistent(key, q, gist.Strategy(99), true)
	require.Error(t, err)
}

func TestGistKeyProperties(t *testing.T) {
	a := Key{Seg: mustParse(t, "0 .. 1")}
	b := Key{Seg: mustParse(t, "5 .. 6")}

	u := a.Union(b).(Key)
	assert.True(t, u.Seg.Contains(a.Seg))
	assert.True(t, u.Seg.Contains(b.Seg))
	assert.InDelta(t, 6.0, u.Size(), 1e-6)
	assert.InDelta(t, 6.0, a.Waste(b), 1e-6)
	assert.InDelta(t, 1.0, a.Waste(Key{Seg: mustParse(t, "0.5 .. 1.5")}), 1e-6)
	assert.InDelta(t, float64(gist.Penalty(a, b)), 5.0, 1e-6)
}
