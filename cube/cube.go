// Package cube implements the NDBOX type: an N-dimensional box (or point)
// with float64 coordinates, its algebra, and its GiST opclass support.
//
// Coordinates are not required to be ordered per axis; every predicate
// normalizes through per-axis min/max, and equality is defined after that
// normalization. A box whose corners coincide is stored as a point: the
// header's point flag is set and only one corner is kept.
package cube

import (
	"math"

	"github.com/hupe1980/gistkit/errcode"
)

// MaxDim is the hard dimension limit. Exceeding it is a limit_exceeded
// error, never a silent truncation.
const MaxDim = 100

// Cube is an N-dimensional box. The zero value is the zero-dimensional box,
// which is contained in everything.
type Cube struct {
	dim   int
	point bool
	// coords holds dim values for a point, else dim lower-left followed by
	// dim upper-right values.
	coords []float64
}

// New builds a box from lower-left and upper-right corners. The corners need
// not be ordered per axis. Collapsing corners produce a point.
func New(ll, ur []float64) (*Cube, error) {
	if len(ll) != len(ur) {
		return nil, errcode.Newf(errcode.CodeArrayElement, "corner dimensions differ: %d vs %d", len(ll), len(ur))
	}
	if len(ll) > MaxDim {
		return nil, dimError(len(ll))
	}
	point := true
	for i := range ll {
		if ll[i] != ur[i] {
			point = false
			break
		}
	}
	if point {
		coords := make([]float64, len(ll))
		copy(coords, ll)
		return &Cube{dim: len(ll), point: true, coords: coords}, nil
	}
	coords := make([]float64, 2*len(ll))
	copy(coords, ll)
	copy(coords[len(ll):], ur)
	return &Cube{dim: len(ll), coords: coords}, nil
}

// NewPoint builds a point cube.
func NewPoint(coords []float64) (*Cube, error) {
	if len(coords) > MaxDim {
		return nil, dimError(len(coords))
	}
	c := make([]float64, len(coords))
	copy(c, coords)
	return &Cube{dim: len(coords), point: true, coords: c}, nil
}

func dimError(d int) error {
	return errcode.Newf(errcode.CodeLimitExceeded, "cube dimension %d exceeds maximum %d", d, MaxDim).
		WithHint("reduce the number of dimensions")
}

// Dim returns the dimension count.
func (c *Cube) Dim() int { return c.dim }

// IsPoint reports whether the cube is stored as a point.
func (c *Cube) IsPoint() bool { return c.point }

// LL returns the raw lower-left coordinate of axis i.
func (c *Cube) LL(i int) float64 { return c.coords[i] }

// UR returns the raw upper-right coordinate of axis i.
func (c *Cube) UR(i int) float64 {
	if c.point {
		return c.coords[i]
	}
	return c.coords[c.dim+i]
}

// Min returns the normalized lower bound of axis i; axes beyond the
// dimension count read as 0.
func (c *Cube) Min(i int) float64 {
	if i >= c.dim {
		return 0
	}
	return math.Min(c.LL(i), c.UR(i))
}

// Max returns the normalized upper bound of axis i; axes beyond the
// dimension count read as 0.
func (c *Cube) Max(i int) float64 {
	if i >= c.dim {
		return 0
	}
	return math.Max(c.LL(i), c.UR(i))
}

// Size returns the volume: the product of the normalized axis extents.
// Points and the zero-dimensional box have volume 0.
func (c *Cube) Size() float64 {
	if c.dim == 0 || c.point {
		return 0
	}
	v := 1.0
	for i := 0; i < c.dim; i++ {
		v *= c.Max(i) - c.Min(i)
	}
	return v
}

// Contains reports whether c contains b. Axes present only in b must carry
// zero endpoints; excess axes of c are ignored. The zero-dimensional box is
// contained in everything.
func (c *Cube) Contains(b *Cube) bool {
	for i := c.dim; i < b.dim; i++ {
		if b.LL(i) != 0 || b.UR(i) != 0 {
			return false
		}
	}
	common := min(c.dim, b.dim)
	for i := 0; i < common; i++ {
		if !(c.Min(i) <= b.Min(i) && c.Max(i) >= b.Max(i)) {
			return false
		}
	}
	return true
}

// ContainedBy reports whether b contains c.
func (c *Cube) ContainedBy(b *Cube) bool { return b.Contains(c) }

// Overlaps reports whether c and b share any region. Excess axes of the
// higher-dimensional operand must bracket 0.
func (c *Cube) Overlaps(b *Cube) bool {
	a := c
	if a.dim > b.dim {
		a, b = b, a
	}
	// a is the lower-dimensional box now.
	for i := 0; i < a.dim; i++ {
		if a.Min(i) > b.Max(i) || a.Max(i) < b.Min(i) {
			return false
		}
	}
	for i := a.dim; i < b.dim; i++ {
		if b.Min(i) > 0 || b.Max(i) < 0 {
			return false
		}
	}
	return true
}

// Union returns the smallest box covering both c and b. Excess axes of the
// higher-dimensional operand union with [0,0].
func (c *Cube) Union(b *Cube) *Cube {
	d := max(c.dim, b.dim)
	ll := make([]float64, d)
	ur := make([]float64, d)
	for i := 0; i < d; i++ {
		lo, hi := c.Min(i), c.Max(i)
		ll[i] = math.Min(lo, b.Min(i))
		ur[i] = math.Max(hi, b.Max(i))
	}
	out, _ := New(ll, ur)
	return out
}

// Inter returns the per-axis intersection [max(min), min(max)], with excess
// axes intersected against [0,0]. For disjoint inputs the result is the
// computed degenerate box with inverted bounds; this oddity is deliberate
// and kept for compatibility.
func (c *Cube) Inter(b *Cube) *Cube {
	d := max(c.dim, b.dim)
	ll := make([]float64, d)
	ur := make([]float64, d)
	for i := 0; i < d; i++ {
		ll[i] = math.Max(c.Min(i), b.Min(i))
		ur[i] = math.Min(c.Max(i), b.Max(i))
	}
	out, _ := New(ll, ur)
	return out
}

// cmpFloat orders float64 with NaN larger than any number, so that Cmp stays
// a total order on non-finite inputs.
func cmpFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Cmp yields a total order: normalized lower bounds lexicographically, then
// normalized upper bounds, then dimension count; excess axes read as 0.
func (c *Cube) Cmp(b *Cube) int {
	d := max(c.dim, b.dim)
	for i := 0; i < d; i++ {
		if r := cmpFloat(c.Min(i), b.Min(i)); r != 0 {
			return r
		}
	}
	for i := 0; i < d; i++ {
		if r := cmpFloat(c.Max(i), b.Max(i)); r != 0 {
			return r
		}
	}
	switch {
	case c.dim < b.dim:
		return -1
	case c.dim > b.dim:
		return 1
	}
	return 0
}

// Same reports equality after normalization; consistent with Cmp == 0.
func (c *Cube) Same(b *Cube) bool { return c.Cmp(b) == 0 }

// axisGap is the distance between the normalized axis intervals, 0 when
// they overlap.
func axisGap(a, b *Cube, i int) float64 {
	switch {
	case a.Max(i) < b.Min(i):
		return b.Min(i) - a.Max(i)
	case b.Max(i) < a.Min(i):
		return a.Min(i) - b.Max(i)
	}
	return 0
}

// Distance returns the Euclidean distance between the boxes, 0 when they
// overlap.
func (c *Cube) Distance(b *Cube) float64 {
	d := max(c.dim, b.dim)
	sum := 0.0
	for i := 0; i < d; i++ {
		g := axisGap(c, b, i)
		sum += g * g
	}
	return math.Sqrt(sum)
}

// DistanceTaxicab returns the L1 distance between the boxes.
func (c *Cube) DistanceTaxicab(b *Cube) float64 {
	d := max(c.dim, b.dim)
	sum := 0.0
	for i := 0; i < d; i++ {
		sum += axisGap(c, b, i)
	}
	return sum
}

// DistanceChebyshev returns the L∞ distance between the boxes.
func (c *Cube) DistanceChebyshev(b *Cube) float64 {
	d := max(c.dim, b.dim)
	m := 0.0
	for i := 0; i < d; i++ {
		if g := axisGap(c, b, i); g > m {
			m = g
		}
	}
	return m
}

// Diameter returns the length of the box diagonal.
func (c *Cube) Diameter() float64 {
	sum := 0.0
	for i := 0; i < c.dim; i++ {
		e := c.Max(i) - c.Min(i)
		sum += e * e
	}
	return math.Sqrt(sum)
}

// KNNCoord projects the cube onto coordinate coord for KNN ordering.
// Coordinates are 1-based: 1..dim address the lower bounds, dim+1..2*dim the
// upper bounds. On internal pages the traversal needs an admissible bound,
// so internal projections always return the lower bound of the axis.
func (c *Cube) KNNCoord(coord int, internal bool) (float64, error) {
	if coord < 1 || coord > 2*c.dim {
		return 0, errcode.Newf(errcode.CodeArrayElement, "cube index %d is out of bounds", coord)
	}
	axis := (coord - 1) % c.dim
	lower := coord <= c.dim
	if lower || internal {
		return c.Min(axis), nil
	}
	return c.Max(axis), nil
}

// EnlargeBy grows (or, for negative r, shrinks) the cube by radius r and
// extends it to at least n dimensions; new axes span [-r, r]. Shrinking
// never inverts an axis: it collapses to the midpoint instead.
func (c *Cube) EnlargeBy(r float64, n int) *Cube {
	if n > MaxDim {
		n = MaxDim
	}
	d := max(c.dim, n)
	ll := make([]float64, d)
	ur := make([]float64, d)
	for i := 0; i < d; i++ {
		if i < c.dim {
			ll[i] = c.Min(i) - r
			ur[i] = c.Max(i) + r
		} else {
			ll[i] = -r
			ur[i] = r
		}
		if ll[i] > ur[i] {
			mid := (ll[i] + ur[i]) / 2
			ll[i], ur[i] = mid, mid
		}
	}
	out, _ := New(ll, ur)
	return out
}

// Subset projects the cube onto the given 1-based axis list; repeated and
// reordered axes are allowed. An out-of-range axis is an error.
func (c *Cube) Subset(axes []int) (*Cube, error) {
	if len(axes) > MaxDim {
		return nil, dimError(len(axes))
	}
	ll := make([]float64, len(axes))
	ur := make([]float64, len(axes))
	for i, a := range axes {
		if a < 1 || a > c.dim {
			return nil, errcode.Newf(errcode.CodeArrayElement, "cube index %d is out of bounds", a)
		}
		ll[i] = c.LL(a - 1)
		ur[i] = c.UR(a - 1)
	}
	return New(ll, ur)
}
