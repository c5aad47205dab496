package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMostCommon(t *testing.T) {
	c := NewCollector(func(o *CollectorOptions) { o.Target = 10 })
	// 41 appears in every array, 7 in half, 99 once.
	for i := 0; i < 100; i++ {
		arr := []int32{41, int32(1000 + i)}
		if i%2 == 0 {
			arr = append(arr, 7)
		}
		if i == 50 {
			arr = append(arr, 99)
		}
		c.Add(arr)
	}
	require.Equal(t, 100, c.Arrays())

	mce := c.MostCommon()
	require.NotEmpty(t, mce)
	// Sorted by element value.
	for i := 1; i < len(mce); i++ {
		assert.Less(t, mce[i-1].Value, mce[i].Value)
	}

	byVal := make(map[int32]ElemFreq)
	for _, e := range mce {
		byVal[e.Value] = e
	}
	require.Contains(t, byVal, int32(41))
	assert.Equal(t, 100, byVal[41].Freq)
	assert.InDelta(t, 1.0, byVal[41].Fraction, 1e-9)
	require.Contains(t, byVal, int32(7))
	assert.Equal(t, 50, byVal[7].Freq)
}

func TestWithinArrayDuplicatesCountOnce(t *testing.T) {
	c := NewCollector()
	c.Add([]int32{5, 5, 5, 6})
	c.Add([]int32{5})

	mce := c.MostCommon()
	byVal := make(map[int32]ElemFreq)
	for _, e := range mce {
		byVal[e.Value] = e
	}
	require.Contains(t, byVal, int32(5))
	assert.Equal(t, 2, byVal[5].Freq, "duplicates inside one array are a single occurrence")
}

func TestMostCommonRespectsTarget(t *testing.T) {
	c := NewCollector(func(o *CollectorOptions) { o.Target = 2 })
	for i := 0; i < 50; i++ {
		c.Add([]int32{1, 2, 3})
	}
	for i := 0; i < 30; i++ {
		c.Add([]int32{3})
	}
	mce := c.MostCommon()
	require.Len(t, mce, 2)
	// 3 is the most frequent and survives the cut; output stays sorted
	// by value.
	assert.Equal(t, int32(3), mce[len(mce)-1].Value)
	assert.Equal(t, 80, mce[len(mce)-1].Freq)
}

func TestPruneDropsRareElements(t *testing.T) {
	c := NewCollector(func(o *CollectorOptions) { o.Target = 1 })
	// Bucket width is 1/0.007 = 142; push enough distinct singletons
	// through to trigger pruning several times.
	for i := 0; i < 2000; i++ {
		c.Add([]int32{77, int32(10000 + i)})
	}
	mce := c.MostCommon()
	require.Len(t, mce, 1)
	assert.Equal(t, int32(77), mce[0].Value)
	assert.Equal(t, 2000, mce[0].Freq)
}

func TestEmptyCollector(t *testing.T) {
	c := NewCollector()
	assert.Nil(t, c.MostCommon())
	h, err := c.DistinctHistogram(5)
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestDistinctHistogram(t *testing.T) {
	c := NewCollector()
	for i := 1; i <= 100; i++ {
		arr := make([]int32, i)
		for j := range arr {
			arr[j] = int32(j)
		}
		c.Add(arr)
	}

	h, err := c.DistinctHistogram(5)
	require.NoError(t, err)
	require.Len(t, h, 5)
	assert.Equal(t, 1, h[0], "first boundary is the minimum")
	assert.Equal(t, 100, h[4], "last boundary is the maximum")
	for i := 1; i < len(h); i++ {
		assert.LessOrEqual(t, h[i-1], h[i])
	}

	_, err = c.DistinctHistogram(1)
	assert.Error(t, err)
}

func TestDistinctHistogramFewArrays(t *testing.T) {
	c := NewCollector()
	c.Add([]int32{1})
	c.Add([]int32{1, 2, 3})

	h, err := c.DistinctHistogram(10)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, h)
}
