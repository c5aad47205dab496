// Package stats implements the statistics collectors the host's analyzer
// runs over integer-array columns: the most-common-elements list via
// lossy counting, and a distinct-element-count histogram.
package stats

import (
	"sort"

	"github.com/hupe1980/gistkit/errcode"
)

// DefaultTarget is the most-common-elements target used when the host
// supplies none.
const DefaultTarget = 100

// ElemFreq is one retained element with its absolute count and its
// fraction of the processed arrays.
type ElemFreq struct {
	Value    int32
	Freq     int
	Fraction float64
}

type trackedElem struct {
	freq  int
	delta int
	// lastContainer dedupes occurrences within one array.
	lastContainer int
}

// CollectorOptions configure a Collector.
type CollectorOptions struct {
	// Target is the number of most-common elements to produce.
	Target int
}

// Collector runs the lossy-counting sketch over a stream of arrays. Each
// array counts once per distinct element; frequencies are per-array, not
// per-occurrence.
type Collector struct {
	target      int
	bucketWidth int

	tracked  map[int32]*trackedElem
	bucketNo int
	// elemNo counts distinct (array, element) pairs fed to the sketch.
	elemNo int
	// arrayNo is the current container id.
	arrayNo int

	distinctCounts []int
}

// NewCollector sizes the sketch for the given target. The bucket width
// w = target/0.007 bounds the frequency estimation error.
func NewCollector(optFns ...func(o *CollectorOptions)) *Collector {
	opts := CollectorOptions{Target: DefaultTarget}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Target < 1 {
		opts.Target = DefaultTarget
	}
	return &Collector{
		target:      opts.Target,
		bucketWidth: int(float64(opts.Target) / 0.007),
		tracked:     make(map[int32]*trackedElem),
		bucketNo:    1,
	}
}

// Add feeds one array into the sketch. Duplicate elements within the
// array count once.
func (c *Collector) Add(arr []int32) {
	c.arrayNo++
	distinct := 0
	for _, v := range arr {
		e, ok := c.tracked[v]
		if ok && e.lastContainer == c.arrayNo {
			continue
		}
		distinct++
		c.elemNo++
		if ok {
			e.freq++
			e.lastContainer = c.arrayNo
		} else {
			c.tracked[v] = &trackedElem{
				freq:          1,
				delta:         c.bucketNo - 1,
				lastContainer: c.arrayNo,
			}
		}
		if c.elemNo%c.bucketWidth == 0 {
			c.prune()
			c.bucketNo++
		}
	}
	c.distinctCounts = append(c.distinctCounts, distinct)
}

// prune drops elements whose upper-bound count no longer exceeds the
// bucket number.
func (c *Collector) prune() {
	for v, e := range c.tracked {
		if e.freq+e.delta <= c.bucketNo {
			delete(c.tracked, v)
		}
	}
}

// Arrays returns the number of arrays processed.
func (c *Collector) Arrays() int { return c.arrayNo }

// MostCommon returns at most target elements whose count clears the
// cutoff 9·N/w, sorted by element value. Fractions are relative to the
// number of arrays processed.
func (c *Collector) MostCommon() []ElemFreq {
	if c.arrayNo == 0 {
		return nil
	}
	cutoff := 9 * c.elemNo / c.bucketWidth

	out := make([]ElemFreq, 0, len(c.tracked))
	for v, e := range c.tracked {
		if e.freq <= cutoff {
			continue
		}
		out = append(out, ElemFreq{
			Value:    v,
			Freq:     e.freq,
			Fraction: float64(e.freq) / float64(c.arrayNo),
		})
	}
	if len(out) > c.target {
		// Keep the most frequent, then restore element order.
		sort.Slice(out, func(i, j int) bool { return out[i].Freq > out[j].Freq })
		out = out[:c.target]
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// DistinctHistogram quantizes the per-array distinct-element counts into
// numHist boundary values: minimum, maximum, and evenly spaced quantiles
// between them.
func (c *Collector) DistinctHistogram(numHist int) ([]int, error) {
	if numHist < 2 {
		return nil, errcode.Newf(errcode.CodeLimitExceeded, "histogram needs at least 2 boundaries, got %d", numHist)
	}
	if len(c.distinctCounts) == 0 {
		return nil, nil
	}

	counts := make([]int, len(c.distinctCounts))
	copy(counts, c.distinctCounts)
	sort.Ints(counts)

	if numHist > len(counts) {
		numHist = len(counts)
	}
	if numHist < 2 {
		return []int{counts[0]}, nil
	}

	// A run-length cursor over the sorted counts picks each boundary
	// without materializing per-quantile copies.
	out := make([]int, numHist)
	for i := 0; i < numHist; i++ {
		pos := i * (len(counts) - 1) / (numHist - 1)
		out[i] = counts[pos]
	}
	return out, nil
}
