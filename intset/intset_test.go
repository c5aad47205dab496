package intset

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gistkit/gist"
)

func TestSortUniq(t *testing.T) {
	assert.Equal(t, []int32{1, 2, 3}, SortUniq([]int32{3, 1, 2, 1, 3}))
	assert.Equal(t, []int32{-5, 0, 7}, SortUniq([]int32{7, -5, 0}))
	assert.Nil(t, SortUniq(nil))
}

func TestSetOps(t *testing.T) {
	a := []int32{1, 3, 5, 7}
	b := []int32{3, 4, 5}

	assert.Equal(t, []int32{1, 3, 4, 5, 7}, Union(a, b))
	assert.Equal(t, []int32{3, 5}, Inter(a, b))
	assert.True(t, Overlap(a, b))
	assert.False(t, Overlap(a, []int32{2, 4, 6}))
	assert.True(t, Contains(a, []int32{3, 7}))
	assert.False(t, Contains(a, []int32{3, 4}))
	assert.True(t, Contains(a, nil))
	assert.True(t, ContainsOne(a, 5))
	assert.False(t, ContainsOne(a, 6))
}

func TestSetOpsBitmapPath(t *testing.T) {
	var a, b []int32
	for i := int32(-400); i < 400; i++ {
		if i%2 == 0 {
			a = append(a, i)
		}
		if i%3 == 0 {
			b = append(b, i)
		}
	}
	u := Union(a, b)
	in := Inter(a, b)
	// Cross-check against the merge loops on small chunks.
	assert.Equal(t, len(a)+len(b)-len(in), len(u))
	for _, v := range in {
		assert.Zero(t, v%6)
	}
	for i := 1; i < len(u); i++ {
		assert.Less(t, u[i-1], u[i], "union stays sorted across negatives")
	}
}

func TestSubarray(t *testing.T) {
	a := []int32{1, 2, 3, 4, 5}
	assert.Equal(t, []int32{2, 3}, Subarray(a, 2, 2))
	assert.Equal(t, []int32{3, 4, 5}, Subarray(a, 3, 0))
	assert.Equal(t, []int32{1, 2, 3}, Subarray(a, 1, -2))
	assert.Equal(t, []int32{5}, Subarray(a, -1, 1))
	assert.Empty(t, Subarray(a, 9, 3))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 0.5, Similarity([]int32{1, 2, 3}, []int32{2, 3, 4}), 1e-9)
	assert.InDelta(t, 1.0, Similarity(nil, nil), 1e-9)
	assert.InDelta(t, 0.0, Similarity([]int32{1}, []int32{2}), 1e-9)
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("1 & (2 | 3)")
	require.NoError(t, err)
	assert.Equal(t, "1&(2|3)", q.String())
	assert.Equal(t, []int32{1, 2, 3}, q.Values())

	q, err = ParseQuery("!5 & -1")
	require.NoError(t, err)
	assert.Equal(t, "!5&-1", q.String())

	for _, in := range []string{"", "1 &", "(1", "1 | | 2", "99999999999", "&2"} {
		_, err := ParseQuery(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	for _, in := range []string{"1", "!1", "1&2|3", "(1|2)&(3|4)", "!(1&2)", "1&!2&3"} {
		q, err := ParseQuery(in)
		require.NoError(t, err, in)
		q2, err := ParseQuery(q.String())
		require.NoError(t, err, q.String())
		assert.Equal(t, q.Items, q2.Items, "reparse of %q", in)
	}
}

func TestQueryMatchArray(t *testing.T) {
	set := []int32{1, 3, 5}
	tests := []struct {
		q    string
		want bool
	}{
		{"1", true},
		{"2", false},
		{"1 & 3", true},
		{"1 & 2", false},
		{"1 & (2 | 5)", true},
		{"!2", true},
		{"!1", false},
		{"!2 & !4", true},
		{"!(1 & 3)", false},
	}
	for _, tt := range tests {
		q, err := ParseQuery(tt.q)
		require.NoError(t, err, tt.q)
		got, err := q.MatchArray(set)
		require.NoError(t, err, tt.q)
		assert.Equal(t, tt.want, got, "query %q", tt.q)
	}
}

func TestQueryMatchSignatureAdmissible(t *testing.T) {
	set := []int32{10, 20, 30}
	c := NewCompressor()
	sign := c.signKey(set).Signature()

	// Any query true on the array must stay true on the signature.
	for _, in := range []string{"10", "10 & 20", "10 | 99", "!99 & 30", "!10 | 20"} {
		q, err := ParseQuery(in)
		require.NoError(t, err)
		exact, err := q.MatchArray(set)
		require.NoError(t, err)
		if !exact {
			continue
		}
		lossy, err := q.MatchSignature(sign)
		require.NoError(t, err)
		assert.True(t, lossy, "query %q", in)
	}
}

func TestRangeCompression(t *testing.T) {
	c := NewCompressor(func(o *CompressorOptions) { o.NumRanges = 2 })

	key, err := c.Compress([]int32{1, 2, 3, 10, 11})
	require.NoError(t, err)
	rk, ok := key.(*RangeKey)
	require.True(t, ok)
	assert.True(t, rk.Exact)
	assert.Equal(t, []Range{{1, 3}, {10, 11}}, rk.Ranges)

	// Three runs into two ranges: the narrowest gap (3..5) closes first.
	key, err = c.Compress([]int32{1, 2, 5, 6, 100})
	require.NoError(t, err)
	rk = key.(*RangeKey)
	assert.False(t, rk.Exact)
	assert.Equal(t, []Range{{1, 6}, {100, 100}}, rk.Ranges)
}

func TestSparseFallsBackToSignature(t *testing.T) {
	var warned bool
	logger := slog.New(slog.NewTextHandler(warnRecorder{&warned}, nil))
	c := NewCompressor(func(o *CompressorOptions) {
		o.NumRanges = 1
		o.Logger = logger
	})

	vals := make([]int32, 0, 64)
	for i := int32(0); i < 64; i++ {
		vals = append(vals, i*100)
	}
	key, err := c.Compress(vals)
	require.NoError(t, err)
	lk, ok := key.(*gist.LossyKey)
	require.True(t, ok, "sparse set should use the signature form")
	assert.True(t, warned, "fallback must emit a notice")

	match, recheck, err := SignConsistent(lk, []int32{300}, gist.Overlap)
	require.NoError(t, err)
	assert.True(t, match)
	assert.True(t, recheck)
}

type warnRecorder struct{ hit *bool }

func (w warnRecorder) Write(p []byte) (int, error) {
	*w.hit = true
	return len(p), nil
}

func TestRangeKeyPredicates(t *testing.T) {
	k := &RangeKey{Ranges: []Range{{1, 3}, {10, 12}}, Exact: true}

	assert.True(t, k.ContainsValue(2))
	assert.True(t, k.ContainsValue(10))
	assert.False(t, k.ContainsValue(5))
	assert.True(t, k.ContainsAll([]int32{1, 11}))
	assert.False(t, k.ContainsAll([]int32{1, 5}))
	assert.True(t, k.OverlapsAny([]int32{5, 12}))
	assert.False(t, k.OverlapsAny([]int32{0, 4, 9, 13}))
	assert.InDelta(t, 6.0, k.Size(), 1e-9)
}

func TestRangeKeyUnionWaste(t *testing.T) {
	a := &RangeKey{Ranges: []Range{{1, 3}}, Exact: true}
	b := &RangeKey{Ranges: []Range{{2, 5}}, Exact: true}
	c := &RangeKey{Ranges: []Range{{4, 5}}, Exact: true}

	u := a.Union(b).(*RangeKey)
	assert.Equal(t, []Range{{1, 5}}, u.Ranges)
	assert.False(t, u.Exact)

	// Adjacent runs coalesce.
	u = a.Union(c).(*RangeKey)
	assert.Equal(t, []Range{{1, 5}}, u.Ranges)

	assert.InDelta(t, 3.0, a.Waste(b), 1e-9) // union 5, inter 2
	assert.InDelta(t, 0.0, a.Waste(a), 1e-9)
}

func TestRangeKeyConsistent(t *testing.T) {
	exact := &RangeKey{Ranges: []Range{{1, 3}}, Exact: true}
	lossy := &RangeKey{Ranges: []Range{{1, 10}}, Exact: false}

	match, recheck, err := exact.Consistent([]int32{2}, gist.Overlap, true)
	require.NoError(t, err)
	assert.True(t, match)
	assert.False(t, recheck)

	match, recheck, err = exact.Consistent([]int32{1, 2, 3, 4}, gist.ContainedBy, true)
	require.NoError(t, err)
	assert.True(t, match)
	assert.False(t, recheck)

	match, _, err = exact.Consistent([]int32{1, 3}, gist.ContainedBy, true)
	require.NoError(t, err)
	assert.False(t, match, "2 is covered but absent from the query")

	match, recheck, err = lossy.Consistent([]int32{4, 20}, gist.Contains, true)
	require.NoError(t, err)
	assert.False(t, match)
	assert.True(t, recheck)

	match, recheck, err = exact.Consistent([]int32{1, 2, 3}, gist.Same, true)
	require.NoError(t, err)
	assert.True(t, match)
	assert.False(t, recheck)

	_, _, err = exact.Consistent([]int32{1}, gist.Strategy(42), true)
	require.Error(t, err)
}

func TestQueryConsistent(t *testing.T) {
	q, err := ParseQuery("2 & !5")
	require.NoError(t, err)

	exact := &RangeKey{Ranges: []Range{{1, 3}}, Exact: true}
	match, recheck, err := QueryConsistent(exact, q)
	require.NoError(t, err)
	assert.True(t, match)
	assert.False(t, recheck)

	// Lossy ranges cover 5, but NOT is not evaluated on lossy keys, so the
	// key still matches and demands a recheck.
	lossy := &RangeKey{Ranges: []Range{{1, 10}}, Exact: false}
	match, recheck, err = QueryConsistent(lossy, q)
	require.NoError(t, err)
	assert.True(t, match)
	assert.True(t, recheck)
}
