package cube

import (
	"github.com/hupe1980/gistkit/errcode"
	"github.com/hupe1980/gistkit/gist"
)

// Key adapts a Cube to the generic GiST engine. Cube keys are exact, so
// leaf-level Consistent never requests a recheck.
type Key struct{ Cube *Cube }

var _ gist.Key = Key{}

// Union implements gist.Key.
func (k Key) Union(other gist.Key) gist.Key {
	return Key{Cube: k.Cube.Union(other.(Key).Cube)}
}

// Size implements gist.Key with the box volume.
func (k Key) Size() float64 { return k.Cube.Size() }

// Same implements gist.Key.
func (k Key) Same(other gist.Key) bool { return k.Cube.Same(other.(Key).Cube) }

// interVolume is the clamped intersection volume; disjoint boxes contribute
// zero rather than the degenerate Inter result.
func interVolume(a, b *Cube) float64 {
	d := a.Dim()
	if b.Dim() > d {
		d = b.Dim()
	}
	if d == 0 {
		return 0
	}
	v := 1.0
	for i := 0; i < d; i++ {
		lo := a.Min(i)
		if b.Min(i) > lo {
			lo = b.Min(i)
		}
		hi := a.Max(i)
		if b.Max(i) < hi {
			hi = b.Max(i)
		}
		if hi <= lo {
			return 0
		}
		v *= hi - lo
	}
	return v
}

// Waste implements gist.Key: size(union) - size(inter).
func (k Key) Waste(other gist.Key) float64 {
	o := other.(Key)
	return k.Cube.Union(o.Cube).Size() - interVolume(k.Cube, o.Cube)
}

// Consistent answers an index-scan predicate for the given strategy. At
// internal pages the key covers a whole subtree, so the predicate is
// over-approximated; leaf answers are exact (recheck is always false).
func Consistent(key, query *Cube, strategy gist.Strategy, leaf bool) (match, recheck bool, err error) {
	if !leaf {
		switch strategy {
		case gist.Overlap, gist.ContainedBy:
			return key.Overlaps(query), false, nil
		case gist.Same, gist.Contains:
			return key.Contains(query), false, nil
		default:
			return false, false, errcode.Newf(errcode.CodeInternal, "unknown cube strategy %d", strategy)
		}
	}
	switch strategy {
	case gist.Overlap:
		return key.Overlaps(query), false, nil
	case gist.Same:
		return key.Same(query), false, nil
	case gist.Contains:
		return key.Contains(query), false, nil
	case gist.ContainedBy:
		return query.Contains(key), false, nil
	default:
		return false, false, errcode.Newf(errcode.CodeInternal, "unknown cube strategy %d", strategy)
	}
}
