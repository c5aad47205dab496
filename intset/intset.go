// Package intset implements operations on sorted int32 sets: the array
// operators (union, intersection, containment, overlap), the query_int
// boolean query language, and the two GiST key forms — run-length
// compressed ranges for dense sets and bit signatures for everything else.
//
// All inner operations expect their inputs sorted and de-duplicated;
// SortUniq is the canonicalization entry point. Large inputs are routed
// through roaring bitmaps.
package intset

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// bitmapThreshold is the input size above which set operations go through
// roaring bitmaps instead of the merge loops.
const bitmapThreshold = 256

// orderKey maps int32 to uint32 preserving order, so negative members keep
// their relative position inside a roaring bitmap.
func orderKey(v int32) uint32 { return uint32(v) ^ 0x80000000 }

func fromOrderKey(u uint32) int32 { return int32(u ^ 0x80000000) }

func toBitmap(a []int32) *roaring.Bitmap {
	bm := roaring.New()
	for _, v := range a {
		bm.Add(orderKey(v))
	}
	return bm
}

func fromBitmap(bm *roaring.Bitmap) []int32 {
	out := make([]int32, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, fromOrderKey(it.Next()))
	}
	return out
}

// SortUniq sorts a copy of a and removes duplicates.
func SortUniq(a []int32) []int32 {
	if len(a) == 0 {
		return nil
	}
	out := slices.Clone(a)
	slices.Sort(out)
	return uniqSorted(out)
}

func uniqSorted(a []int32) []int32 {
	if len(a) <= 1 {
		return a
	}
	last := 0
	for i := 1; i < len(a); i++ {
		if a[i] != a[last] {
			last++
			a[last] = a[i]
		}
	}
	return a[:last+1]
}

// Union returns the sorted union of two sorted sets.
func Union(a, b []int32) []int32 {
	if len(a)+len(b) > 2*bitmapThreshold {
		bm := toBitmap(a)
		bm.Or(toBitmap(b))
		return fromBitmap(bm)
	}
	out := make([]int32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Inter returns the sorted intersection of two sorted sets.
func Inter(a, b []int32) []int32 {
	if len(a)+len(b) > 2*bitmapThreshold {
		bm := toBitmap(a)
		bm.And(toBitmap(b))
		return fromBitmap(bm)
	}
	var out []int32
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// Contains reports a ⊇ b for sorted sets.
func Contains(a, b []int32) bool {
	i := 0
	for _, v := range b {
		for i < len(a) && a[i] < v {
			i++
		}
		if i >= len(a) || a[i] != v {
			return false
		}
	}
	return true
}

// Overlap reports whether two sorted sets share an element.
func Overlap(a, b []int32) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			return true
		}
	}
	return false
}

// ContainsOne reports membership of v in a sorted set.
func ContainsOne(a []int32, v int32) bool {
	lo, hi := 0, len(a)
	for lo < hi {
		mid := (lo + hi) / 2
		if a[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(a) && a[lo] == v
}

// Icount returns the number of occurrences of v in a (0 or 1 for canonical
// sets, possibly more for raw arrays).
func Icount(a []int32, v int32) int {
	n := 0
	for _, x := range a {
		if x == v {
			n++
		}
	}
	return n
}

// Subarray returns the slice of a starting at 1-based position start with
// the given length; length 0 means "to the end", negative length trims from
// the end. Out-of-range requests clamp to the available elements.
func Subarray(a []int32, start, length int) []int32 {
	if start < 0 {
		start = len(a) + start + 1
	}
	if start < 1 {
		start = 1
	}
	from := start - 1
	if from > len(a) {
		from = len(a)
	}
	to := len(a)
	if length > 0 {
		to = from + length
	} else if length < 0 {
		to = len(a) + length
	}
	if to > len(a) {
		to = len(a)
	}
	if to < from {
		to = from
	}
	out := make([]int32, to-from)
	copy(out, a[from:to])
	return out
}

// Similarity returns |a ∩ b| / |a ∪ b| for sorted sets; 1 for two empty
// sets.
func Similarity(a, b []int32) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	in := len(Inter(a, b))
	un := len(a) + len(b) - in
	if un == 0 {
		return 1
	}
	return float64(in) / float64(un)
}
