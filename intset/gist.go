package intset

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/hupe1980/gistkit/errcode"
	"github.com/hupe1980/gistkit/gist"
	"github.com/hupe1980/gistkit/internal/sigbits"
)

// Index keys for int sets come in two forms. Dense sets compress into a
// run-length list of [Start, End] ranges, at most NumRanges of them; when
// that would smear the set over too many gaps the compressor falls back to
// a bit signature and says so with a notice.

// DefaultNumRanges bounds the run-length form.
const DefaultNumRanges = 100

// sparseFactor: a set whose natural run count exceeds sparseFactor times
// NumRanges is not worth range-compressing.
const sparseFactor = 8

// Range is a closed interval of int32 values.
type Range struct {
	Start, End int32
}

func (r Range) span() int64 { return int64(r.End) - int64(r.Start) + 1 }

// RangeKey is the run-length key form. Exact means no gaps were merged, so
// the ranges describe the set precisely and scans need no recheck.
type RangeKey struct {
	Ranges []Range
	Exact  bool
}

var _ gist.Key = &RangeKey{}

// rangesFromSorted collapses a sorted unique set into maximal runs.
func rangesFromSorted(a []int32) []Range {
	if len(a) == 0 {
		return nil
	}
	out := []Range{{Start: a[0], End: a[0]}}
	for _, v := range a[1:] {
		last := &out[len(out)-1]
		if int64(v) == int64(last.End)+1 {
			last.End = v
			continue
		}
		out = append(out, Range{Start: v, End: v})
	}
	return out
}

// mergeTo reduces the run list to at most n entries by closing the
// narrowest gaps first.
func mergeTo(ranges []Range, n int) []Range {
	for len(ranges) > n {
		best, gap := 1, int64(0)
		for i := 1; i < len(ranges); i++ {
			g := int64(ranges[i].Start) - int64(ranges[i-1].End)
			if i == 1 || g < gap {
				best, gap = i, g
			}
		}
		ranges[best-1].End = ranges[best].End
		ranges = append(ranges[:best], ranges[best+1:]...)
	}
	return ranges
}

// CompressorOptions configure how int-set keys are built.
type CompressorOptions struct {
	// NumRanges caps the run-length form.
	NumRanges int
	// SigLen is the signature length in bytes used for the fallback form.
	SigLen int
	// Logger receives the sparse-set notice.
	Logger *slog.Logger
}

// Compressor builds index keys from int sets.
type Compressor struct {
	opts CompressorOptions
}

// NewCompressor creates a key compressor.
func NewCompressor(optFns ...func(o *CompressorOptions)) *Compressor {
	opts := CompressorOptions{
		NumRanges: DefaultNumRanges,
		SigLen:    sigbits.DefaultLen,
		Logger:    slog.Default(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Compressor{opts: opts}
}

// Compress turns a sorted unique set into its key. Dense sets become a
// RangeKey; sparse sets become a signature LossyKey, announced by a Warn
// notice naming the alternative.
func (c *Compressor) Compress(a []int32) (gist.Key, error) {
	if c.opts.NumRanges < 1 {
		return nil, errcode.Newf(errcode.CodeInternal, "num_ranges must be positive, got %d", c.opts.NumRanges)
	}
	runs := rangesFromSorted(a)
	if len(runs) > sparseFactor*c.opts.NumRanges {
		c.opts.Logger.Warn("int set is too sparse for range compression, falling back to a signature key",
			slog.Int("elements", len(a)),
			slog.Int("runs", len(runs)),
			slog.Int("num_ranges", c.opts.NumRanges),
		)
		return c.signKey(a), nil
	}
	exact := len(runs) <= c.opts.NumRanges
	return &RangeKey{Ranges: mergeTo(runs, c.opts.NumRanges), Exact: exact}, nil
}

func (c *Compressor) signKey(a []int32) *gist.LossyKey {
	sign := make(sigbits.Signature, c.opts.SigLen)
	for _, v := range a {
		sign.SetHash(sigbits.HashInt32(v))
	}
	return gist.NewSignKey(sign)
}

// ContainsValue reports whether v falls inside any range.
func (k *RangeKey) ContainsValue(v int32) bool {
	i := sort.Search(len(k.Ranges), func(i int) bool { return k.Ranges[i].End >= v })
	return i < len(k.Ranges) && k.Ranges[i].Start <= v
}

// ContainsAll reports whether every element of a sorted set falls inside
// the ranges.
func (k *RangeKey) ContainsAll(a []int32) bool {
	i := 0
	for _, v := range a {
		for i < len(k.Ranges) && k.Ranges[i].End < v {
			i++
		}
		if i >= len(k.Ranges) || k.Ranges[i].Start > v {
			return false
		}
	}
	return true
}

// OverlapsAny reports whether any element of a sorted set falls inside the
// ranges.
func (k *RangeKey) OverlapsAny(a []int32) bool {
	i := 0
	for _, v := range a {
		for i < len(k.Ranges) && k.Ranges[i].End < v {
			i++
		}
		if i < len(k.Ranges) && k.Ranges[i].Start <= v {
			return true
		}
	}
	return false
}

// unionRanges merges two run lists into one sorted, coalesced list.
func unionRanges(a, b []Range) []Range {
	all := make([]Range, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	sort.Slice(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].End < all[j].End
	})
	out := all[:0]
	for _, r := range all {
		if len(out) > 0 && int64(r.Start) <= int64(out[len(out)-1].End)+1 {
			if r.End > out[len(out)-1].End {
				out[len(out)-1].End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func interSpan(a, b []Range) int64 {
	var n int64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		lo, hi := a[i].Start, a[i].End
		if b[j].Start > lo {
			lo = b[j].Start
		}
		if b[j].End < hi {
			hi = b[j].End
		}
		if lo <= hi {
			n += int64(hi) - int64(lo) + 1
		}
		if a[i].End < b[j].End {
			i++
		} else {
			j++
		}
	}
	return n
}

// Union implements gist.Key. The union of an exact key with anything is no
// longer exact.
func (k *RangeKey) Union(other gist.Key) gist.Key {
	o := other.(*RangeKey)
	return &RangeKey{Ranges: unionRanges(k.Ranges, o.Ranges), Exact: false}
}

// Size implements gist.Key with the covered-value count.
func (k *RangeKey) Size() float64 {
	var n int64
	for _, r := range k.Ranges {
		n += r.span()
	}
	return float64(n)
}

// Same implements gist.Key.
func (k *RangeKey) Same(other gist.Key) bool {
	o := other.(*RangeKey)
	if len(k.Ranges) != len(o.Ranges) {
		return false
	}
	for i, r := range k.Ranges {
		if r != o.Ranges[i] {
			return false
		}
	}
	return true
}

// Waste implements gist.Key: covered(union) - covered(inter).
func (k *RangeKey) Waste(other gist.Key) float64 {
	o := other.(*RangeKey)
	u := unionRanges(k.Ranges, o.Ranges)
	var un int64
	for _, r := range u {
		un += r.span()
	}
	return float64(un - interSpan(k.Ranges, o.Ranges))
}

func (k *RangeKey) String() string {
	s := "ranges"
	for _, r := range k.Ranges {
		if r.Start == r.End {
			s += fmt.Sprintf(" %d", r.Start)
		} else {
			s += fmt.Sprintf(" %d-%d", r.Start, r.End)
		}
	}
	return s
}

// Consistent answers an index-scan predicate for a range key against a
// query set. Lossy (gap-merged or internal) keys can only over-approximate,
// so Contains, ContainedBy and Same degrade to overlap-style checks with
// recheck set.
func (k *RangeKey) Consistent(query []int32, strategy gist.Strategy, leaf bool) (match, recheck bool, err error) {
	exact := leaf && k.Exact
	switch strategy {
	case gist.Overlap:
		return k.OverlapsAny(query), !exact, nil
	case gist.Contains:
		return k.ContainsAll(query), !exact, nil
	case gist.ContainedBy:
		if exact {
			// Precise ranges: every covered value must be in the query.
			for _, r := range k.Ranges {
				for v := int64(r.Start); v <= int64(r.End); v++ {
					if !ContainsOne(query, int32(v)) {
						return false, false, nil
					}
				}
			}
			return true, false, nil
		}
		// An over-approximated key can still hold a contained set.
		return true, true, nil
	case gist.Same:
		if exact {
			q := &RangeKey{Ranges: rangesFromSorted(query), Exact: true}
			return k.Same(q), false, nil
		}
		return k.ContainsAll(query), true, nil
	}
	return false, false, errcode.Newf(errcode.CodeInternal, "unknown int-set strategy %d", strategy)
}

// SignConsistent answers an index-scan predicate for a signature key. All
// answers are lossy.
func SignConsistent(key *gist.LossyKey, query []int32, strategy gist.Strategy) (match, recheck bool, err error) {
	if key.Flags&gist.FlagAllTrue != 0 {
		return true, true, nil
	}
	switch strategy {
	case gist.Overlap, gist.ContainedBy:
		for _, v := range query {
			if key.ContainsHash(int32(sigbits.HashInt32(v))) {
				return true, true, nil
			}
		}
		return len(query) == 0, true, nil
	case gist.Contains, gist.Same:
		for _, v := range query {
			if !key.ContainsHash(int32(sigbits.HashInt32(v))) {
				return false, true, nil
			}
		}
		return true, true, nil
	}
	return false, false, errcode.Newf(errcode.CodeInternal, "unknown int-set strategy %d", strategy)
}

// QueryConsistent evaluates a query_int against a key during an index scan.
// Range keys resolve membership through the ranges; signature keys go
// through the lossy bit test with NOT relaxed.
func QueryConsistent(key gist.Key, q *Query) (match, recheck bool, err error) {
	switch k := key.(type) {
	case *RangeKey:
		calcnot := k.Exact
		m, err := q.Execute(func(v int32) bool { return k.ContainsValue(v) }, calcnot)
		return m, !k.Exact, err
	case *gist.LossyKey:
		if k.Flags&gist.FlagAllTrue != 0 {
			return true, true, nil
		}
		m, err := q.Execute(func(v int32) bool { return k.ContainsHash(int32(sigbits.HashInt32(v))) }, false)
		return m, true, err
	}
	return false, false, errcode.Newf(errcode.CodeInternal, "unsupported key type %T", key)
}
