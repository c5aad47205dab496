package seg

import (
	"github.com/hupe1980/gistkit/errcode"
	"github.com/hupe1980/gistkit/gist"
)

// Key adapts a Seg to the generic GiST engine.
type Key struct{ Seg *Seg }

var _ gist.Key = Key{}

// Union implements gist.Key.
func (k Key) Union(other gist.Key) gist.Key {
	return Key{Seg: k.Seg.Union(other.(Key).Seg)}
}

// Size implements gist.Key with the interval length.
func (k Key) Size() float64 { return float64(k.Seg.Size()) }

// Same implements gist.Key.
func (k Key) Same(other gist.Key) bool { return k.Seg.Same(other.(Key).Seg) }

// Waste implements gist.Key: size(union) - size(inter).
func (k Key) Waste(other gist.Key) float64 {
	o := other.(Key)
	w := float64(k.Seg.Union(o.Seg).Size())
	if in := k.Seg.Inter(o.Seg); in != nil {
		w -= float64(in.Size())
	}
	return w
}

// Consistent answers an index-scan predicate. Internal pages see the union
// of a subtree, so ordering predicates are relaxed to their "over" variants
// and containment to overlap; leaf answers are exact.
func Consistent(key, query *Seg, strategy gist.Strategy, leaf bool) (match, recheck bool, err error) {
	if leaf {
		switch strategy {
		case gist.Left:
			return key.Left(query), false, nil
		case gist.OverLeft:
			return key.OverLeft(query), false, nil
		case gist.Overlap:
			return key.Overlaps(query), false, nil
		case gist.OverRight:
			return key.OverRight(query), false, nil
		case gist.Right:
			return key.Right(query), false, nil
		case gist.Same:
			return key.Same(query), false, nil
		case gist.Contains:
			return key.Contains(query), false, nil
		case gist.ContainedBy:
			return query.Contains(key), false, nil
		}
		return false, false, errcode.Newf(errcode.CodeInternal, "unknown seg strategy %d", strategy)
	}
	switch strategy {
	case gist.Left:
		return !key.OverRight(query), false, nil
	case gist.OverLeft:
		return !key.Right(query), false, nil
	case gist.Overlap, gist.ContainedBy:
		return key.Overlaps(query), false, nil
	case gist.OverRight:
		return !key.Left(query), false, nil
	case gist.Right:
		return !key.OverLeft(query), false, nil
	case gist.Same, gist.Contains:
		return key.Contains(query), false, nil
	}
	return false, false, errcode.Newf(errcode.CodeInternal, "unknown seg strategy %d", strategy)
}
