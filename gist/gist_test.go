package gist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gistkit/internal/sigbits"
)

// interval is a minimal 1-D test key.
type interval struct{ lo, hi float64 }

func (iv interval) Union(other Key) Key {
	o := other.(interval)
	u := iv
	if o.lo < u.lo {
		u.lo = o.lo
	}
	if o.hi > u.hi {
		u.hi = o.hi
	}
	return u
}

func (iv interval) Size() float64 { return iv.hi - iv.lo }

func (iv interval) Same(other Key) bool {
	o := other.(interval)
	return iv == o
}

func (iv interval) Waste(other Key) float64 {
	o := other.(interval)
	u := iv.Union(o).Size()
	lo, hi := iv.lo, iv.hi
	if o.lo > lo {
		lo = o.lo
	}
	if o.hi < hi {
		hi = o.hi
	}
	inter := hi - lo
	if inter < 0 {
		inter = 0
	}
	return u - inter
}

func TestPenalty(t *testing.T) {
	a := interval{0, 2}
	b := interval{3, 4}
	assert.InDelta(t, 2.0, Penalty(a, b), 1e-9)
	assert.InDelta(t, 0.0, Penalty(a, interval{0.5, 1}), 1e-9)
}

func TestUnionAll(t *testing.T) {
	ctx := context.Background()
	u, err := UnionAll(ctx, []Key{interval{0, 1}, interval{5, 6}, interval{-2, 0}})
	require.NoError(t, err)
	assert.Equal(t, interval{-2, 6}, u)

	_, err = UnionAll(ctx, nil)
	require.Error(t, err)
}

func TestPickSplitOutlierSeed(t *testing.T) {
	// Four clustered intervals and one outlier: the outlier must be a seed
	// and end up alone-ish on its side.
	keys := []Key{
		interval{0, 1},
		interval{0.5, 1.5},
		interval{10, 11},
		interval{0.2, 0.9},
		interval{1, 2},
	}
	res, err := PickSplit(context.Background(), keys)
	require.NoError(t, err)

	require.NotEmpty(t, res.Left)
	require.NotEmpty(t, res.Right)

	outlierSide := res.Left
	otherSide := res.Right
	if res.Right[0] == 2 {
		outlierSide, otherSide = res.Right, res.Left
	}
	// The outlier is the seed of its side: first in the emitted order.
	assert.Equal(t, 2, outlierSide[0])
	assert.Len(t, outlierSide, 1)
	assert.Len(t, otherSide, 4)
}

func TestPickSplitPreservesSetAndOrder(t *testing.T) {
	keys := []Key{
		interval{0, 1}, interval{100, 101}, interval{0.1, 0.8},
		interval{99, 100}, interval{0.5, 2}, interval{101, 103},
	}
	res, err := PickSplit(context.Background(), keys)
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, i := range append(append([]int{}, res.Left...), res.Right...) {
		assert.False(t, seen[i], "entry %d assigned twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, len(keys))

	// union(left) ∪ union(right) must equal union(all).
	all, err := UnionAll(context.Background(), keys)
	require.NoError(t, err)
	assert.True(t, res.LeftKey.Union(res.RightKey).Same(all))

	// Input order among the non-seed entries.
	for _, side := range [][]int{res.Left, res.Right} {
		rest := side[1:]
		for i := 1; i < len(rest); i++ {
			assert.Less(t, rest[i-1], rest[i])
		}
	}
}

func TestPickSplitBalancesTies(t *testing.T) {
	// Identical keys: every union is the same and every enlargement is
	// zero, so only the balance term decides sides. The split must come
	// out even instead of piling onto one page.
	keys := make([]Key, 10)
	for i := range keys {
		keys[i] = interval{3, 7}
	}
	res, err := PickSplit(context.Background(), keys)
	require.NoError(t, err)

	diff := len(res.Left) - len(res.Right)
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, 1, "tied entries split %d/%d", len(res.Left), len(res.Right))
}

func TestPickSplitTooFew(t *testing.T) {
	_, err := PickSplit(context.Background(), []Key{interval{0, 1}})
	require.Error(t, err)
}

func TestLossyKeyUnionSaturation(t *testing.T) {
	s1 := sigbits.New(2)
	s1.SetBit(1)
	k1 := NewSignKey(s1)

	s2 := sigbits.New(2)
	for i := uint32(0); i < 16; i++ {
		if i != 1 {
			s2.SetBit(i)
		}
	}
	k2 := NewSignKey(s2)

	u := k1.Union(k2).(*LossyKey)
	assert.True(t, u.AllTrue(), "saturated union must collapse to ALLISTRUE")
	assert.Equal(t, float64(16), u.Size())
}

func TestLossyKeyArrayToSign(t *testing.T) {
	k := NewArrayKey([]int32{1, 5, 9}, 8)
	sign := k.Signature()
	for _, v := range []int32{1, 5, 9} {
		assert.True(t, sign.TestHash(sigbits.HashInt32(v)))
	}
	assert.True(t, k.ContainsHash(5))
	assert.False(t, k.ContainsHash(6))
}

func TestLossyKeyAdmissibility(t *testing.T) {
	// If a leaf matches, every ancestor signature union must match too.
	leaf := sigbits.New(16)
	leaf.SetHash(sigbits.HashString("fat"))
	leafKey := NewSignKey(leaf)

	sibling := sigbits.New(16)
	sibling.SetHash(sigbits.HashString("cat"))
	parent := leafKey.Union(NewSignKey(sibling)).(*LossyKey)

	q := sigbits.New(16)
	q.SetHash(sigbits.HashString("fat"))
	assert.True(t, leafKey.ContainsSign(q))
	assert.True(t, parent.ContainsSign(q))
}

func TestLossyKeyEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		key  *LossyKey
	}{
		{"array", NewArrayKey([]int32{-3, 0, 7}, 4)},
		{"alltrue", &LossyKey{Flags: FlagAllTrue, SigLen: 4}},
	}
	sign := sigbits.New(4)
	sign.SetBit(11)
	tests = append(tests, struct {
		name string
		key  *LossyKey
	}{"sign", NewSignKey(sign)})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := tt.key.Encode()
			dec, err := DecodeLossyKey(enc, 4)
			require.NoError(t, err)
			assert.True(t, tt.key.Same(dec))
		})
	}

	_, err := DecodeLossyKey([]byte{1}, 4)
	require.Error(t, err)
}
