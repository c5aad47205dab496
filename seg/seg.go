// Package seg implements the SEG type: a one-dimensional float32 interval
// whose endpoints carry significant-digit counts and an optional extension
// marking them as open ("<", ">") or approximate ("~"). SEG was designed for
// laboratory measurements, where "6.25 .. 6.50" and "~6.3" are different
// statements about the same range.
package seg

// Ext values for the endpoint extension bytes. ExtNone is an exact endpoint.
const (
	ExtNone  byte = 0
	ExtLower byte = '-' // unknown endpoint
	ExtLess  byte = '<'
	ExtGrtr  byte = '>'
	ExtAprx  byte = '~'
)

// Seg is a closed interval with Lower <= Upper.
type Seg struct {
	Lower, Upper     float32
	LowerSig, UpperSig uint8 // significant digits of each bound
	LowerExt, UpperExt byte
}

// extRank orders endpoint extensions for Cmp. A blurrier bound sorts as
// smaller on the lower end.
func extRank(e byte) int {
	switch e {
	case ExtLower:
		return 0
	case ExtLess:
		return 1
	case ExtAprx:
		return 2
	case ExtNone:
		return 3
	case ExtGrtr:
		return 4
	}
	return 5
}

func cmpF32(a, b float32) int {
	switch {
	case a != a && b != b: // both NaN
		return 0
	case a != a:
		return 1
	case b != b:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Cmp yields the total order: (lower, lower-ext rank, inverted lower sigd,
// upper, inverted upper-ext rank, inverted upper sigd). On the lower bound
// "~5" sorts before "5"; on the upper bound after it — the approximate form
// is the blurrier one on both ends.
func (a *Seg) Cmp(b *Seg) int {
	if r := cmpF32(a.Lower, b.Lower); r != 0 {
		return r
	}
	if r := cmpInt(extRank(a.LowerExt), extRank(b.LowerExt)); r != 0 {
		return r
	}
	if r := cmpInt(int(b.LowerSig), int(a.LowerSig)); r != 0 {
		return r
	}
	if r := cmpF32(a.Upper, b.Upper); r != 0 {
		return r
	}
	if r := cmpInt(extRank(b.UpperExt), extRank(a.UpperExt)); r != 0 {
		return r
	}
	return cmpInt(int(b.UpperSig), int(a.UpperSig))
}

// Same reports Cmp equality.
func (a *Seg) Same(b *Seg) bool { return a.Cmp(b) == 0 }

// Contains reports a ⊇ b on the numeric bounds.
func (a *Seg) Contains(b *Seg) bool {
	return a.Lower <= b.Lower && a.Upper >= b.Upper
}

// ContainedBy reports b ⊇ a.
func (a *Seg) ContainedBy(b *Seg) bool { return b.Contains(a) }

// Overlaps reports whether the intervals share any point.
func (a *Seg) Overlaps(b *Seg) bool {
	return a.Lower <= b.Upper && a.Upper >= b.Lower
}

// Left reports strictly-left-of.
func (a *Seg) Left(b *Seg) bool { return a.Upper < b.Lower }

// Right reports strictly-right-of.
func (a *Seg) Right(b *Seg) bool { return a.Lower > b.Upper }

// OverLeft reports "does not extend to the right of".
func (a *Seg) OverLeft(b *Seg) bool { return a.Upper <= b.Upper }

// OverRight reports "does not extend to the left of".
func (a *Seg) OverRight(b *Seg) bool { return a.Lower >= b.Lower }

// Union returns the covering interval, inheriting the metadata of whichever
// input supplies each bound.
func (a *Seg) Union(b *Seg) *Seg {
	out := &Seg{}
	if a.Lower <= b.Lower {
		out.Lower, out.LowerSig, out.LowerExt = a.Lower, a.LowerSig, a.LowerExt
	} else {
		out.Lower, out.LowerSig, out.LowerExt = b.Lower, b.LowerSig, b.LowerExt
	}
	if a.Upper >= b.Upper {
		out.Upper, out.UpperSig, out.UpperExt = a.Upper, a.UpperSig, a.UpperExt
	} else {
		out.Upper, out.UpperSig, out.UpperExt = b.Upper, b.UpperSig, b.UpperExt
	}
	return out
}

// Inter returns the overlap, or nil for disjoint inputs.
func (a *Seg) Inter(b *Seg) *Seg {
	if !a.Overlaps(b) {
		return nil
	}
	out := &Seg{}
	if a.Lower >= b.Lower {
		out.Lower, out.LowerSig, out.LowerExt = a.Lower, a.LowerSig, a.LowerExt
	} else {
		out.Lower, out.LowerSig, out.LowerExt = b.Lower, b.LowerSig, b.LowerExt
	}
	if a.Upper <= b.Upper {
		out.Upper, out.UpperSig, out.UpperExt = a.Upper, a.UpperSig, a.UpperExt
	} else {
		out.Upper, out.UpperSig, out.UpperExt = b.Upper, b.UpperSig, b.UpperExt
	}
	return out
}

// Size returns the interval length.
func (a *Seg) Size() float32 { return a.Upper - a.Lower }
