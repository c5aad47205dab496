// Package gist implements the generic GiST opclass engine: Penalty, Union
// and the Guttman quadratic PickSplit over an abstract key type. The host's
// tree machinery (page splits, locking, WAL) calls into these routines with
// detoasted per-tuple keys; the engine is stateless across calls.
package gist

import (
	"context"
	"sort"

	"github.com/hupe1980/gistkit/errcode"
	"github.com/hupe1980/gistkit/internal/interrupt"
)

// Strategy identifies a Consistent predicate. The numbering follows the
// classic R-tree strategy numbers, which every opclass in this module
// shares.
type Strategy int

const (
	Left Strategy = iota + 1
	OverLeft
	Overlap
	OverRight
	Right
	Same
	Contains
	ContainedBy
)

func (s Strategy) String() string {
	switch s {
	case Left:
		return "left"
	case OverLeft:
		return "overleft"
	case Overlap:
		return "overlap"
	case OverRight:
		return "overright"
	case Right:
		return "right"
	case Same:
		return "same"
	case Contains:
		return "contains"
	case ContainedBy:
		return "containedby"
	}
	return "unknown"
}

// Key is a GiST index key: a box, an interval, a sorted set or a bit
// signature. Keys are immutable values; Union returns a fresh key.
type Key interface {
	// Union returns the smallest key of the same kind covering both
	// receiver and other.
	Union(other Key) Key
	// Size is the penalty measure: volume for boxes, cardinality for sets,
	// Hamming-to-empty for signatures.
	Size() float64
	// Same reports key equality.
	Same(other Key) bool
	// Waste is the seed-selection measure for PickSplit:
	// size(union)-size(inter) for geometric keys, Hamming distance for
	// signatures.
	Waste(other Key) float64
}

// Penalty is the cost of inserting add under orig:
// size(union(orig, add)) - size(orig).
func Penalty(orig, add Key) float64 {
	return orig.Union(add).Size() - orig.Size()
}

// UnionAll folds a page's entry vector into one covering key.
func UnionAll(ctx context.Context, keys []Key) (Key, error) {
	if len(keys) == 0 {
		return nil, errcode.Newf(errcode.CodeInternal, "gist union of empty entry vector")
	}
	out := keys[0]
	for i, k := range keys[1:] {
		if err := interrupt.Check(ctx, i); err != nil {
			return nil, err
		}
		out = out.Union(k)
	}
	return out, nil
}

// SplitResult describes a page split. Left and Right hold the indexes of the
// input entries on each side; the seed entry is first on its side and the
// remaining entries keep their input order, which the host's page-merge
// phase relies on.
type SplitResult struct {
	Left, Right       []int
	LeftKey, RightKey Key
}

// wishFactor weighs the balance term when deciding split sides on near-equal
// enlargement.
const wishFactor = 0.05

// wishF discourages highly unbalanced splits. Negative when the left side
// already holds more entries.
func wishF(nLeft, nRight int, w float64) float64 {
	d := nLeft - nRight
	return -float64(d*d*d) * w
}

// PickSplit distributes the entries of an overflowing page onto two pages
// using Guttman's quadratic algorithm:
//
//  1. seed the sides with the pair maximizing Waste;
//  2. order the remaining entries by |enlargement(L) - enlargement(R)|
//     descending, so the most constrained entries are placed first;
//  3. assign each entry to the side whose key it enlarges less, with wishF
//     breaking near-ties toward the smaller side.
//
// Both sides are always nonempty for len(keys) >= 2.
func PickSplit(ctx context.Context, keys []Key) (SplitResult, error) {
	if len(keys) < 2 {
		return SplitResult{}, errcode.Newf(errcode.CodeInternal, "gist picksplit needs at least two entries, got %d", len(keys))
	}

	seedL, seedR := 0, 1
	worst := keys[0].Waste(keys[1])
	n := 0
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if err := interrupt.Check(ctx, n); err != nil {
				return SplitResult{}, err
			}
			n++
			if w := keys[i].Waste(keys[j]); w > worst {
				worst = w
				seedL, seedR = i, j
			}
		}
	}

	leftKey, rightKey := keys[seedL], keys[seedR]
	left := []int{seedL}
	right := []int{seedR}

	type pending struct {
		idx      int
		priority float64
	}
	rest := make([]pending, 0, len(keys)-2)
	for i := range keys {
		if i == seedL || i == seedR {
			continue
		}
		d := Penalty(leftKey, keys[i]) - Penalty(rightKey, keys[i])
		if d < 0 {
			d = -d
		}
		rest = append(rest, pending{idx: i, priority: d})
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].priority > rest[j].priority })

	for i, p := range rest {
		if err := interrupt.Check(ctx, i); err != nil {
			return SplitResult{}, err
		}
		// Enlargements were computed against the seed keys; refresh against
		// the current side keys so late assignments see the grown unions.
		dl := Penalty(leftKey, keys[p.idx])
		dr := Penalty(rightKey, keys[p.idx])
		if dl < dr+wishF(len(left), len(right), wishFactor) {
			leftKey = leftKey.Union(keys[p.idx])
			left = append(left, p.idx)
		} else {
			rightKey = rightKey.Union(keys[p.idx])
			right = append(right, p.idx)
		}
	}

	// Seed first, input order among the rest.
	sort.Ints(left[1:])
	sort.Ints(right[1:])

	return SplitResult{Left: left, Right: right, LeftKey: leftKey, RightKey: rightKey}, nil
}
