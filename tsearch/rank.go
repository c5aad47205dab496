package tsearch

import (
	"math"
	"sort"
	"strings"
)

// defaultRankWeights maps position weights D, C, B, A to their scoring
// multipliers.
var defaultRankWeights = [4]float32{0.1, 0.2, 0.4, 1.0}

// Rank normalization bitmask. Each set bit divides the raw score by a
// document-derived quantity.
const (
	// RankNormLogLength divides by 1 + log2 of the document length.
	RankNormLogLength = 0x01
	// RankNormLength divides by the document length.
	RankNormLength = 0x02
	// RankNormExtDist divides by the mean harmonic distance between
	// covers; cover-density ranking only.
	RankNormExtDist = 0x04
	// RankNormUniq divides by the number of unique lexemes.
	RankNormUniq = 0x08
	// RankNormLogUniq divides by 1 + log2 of the number of unique
	// lexemes.
	RankNormLogUniq = 0x10
	// RankNormRDivRPlus1 divides the rank by itself plus one.
	RankNormRDivRPlus1 = 0x20
)

// cntLen counts lexeme occurrences: positions where present, one per
// stripped entry otherwise.
func cntLen(v *TSVector) int {
	ret := 0
	for _, e := range v.Entries {
		if n := len(e.Positions); n > 0 {
			ret += n
		} else {
			ret++
		}
	}
	return ret
}

// queryLeaves returns the value leaves sorted by lexeme and deduplicated.
func queryLeaves(q *TSQuery) []*Item {
	var leaves []*Item
	q.ForEachVal(func(it *Item) {
		leaves = append(leaves, it)
	})
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].Value < leaves[j].Value
	})
	uniq := 0
	for j := 1; j < len(leaves); j++ {
		if leaves[j].Value != leaves[uniq].Value {
			uniq++
			leaves[uniq] = leaves[j]
		}
	}
	if len(leaves) > 0 {
		leaves = leaves[:uniq+1]
	}
	return leaves
}

// leafMatches appends the position lists of every vector entry the leaf
// matches, regardless of weight.
func leafMatches(it *Item, v *TSVector, matches [][]WordPos) [][]WordPos {
	if it.Prefix {
		v.LookupPrefix(it.Value, func(e *Entry) bool {
			matches = append(matches, e.Positions)
			return true
		})
		return matches
	}
	if e := v.Lookup(it.Value); e != nil {
		matches = append(matches, e.Positions)
	}
	return matches
}

// Rank scores a vector against a query. weights overrides the per-class
// multipliers for D, C, B, A when non-nil; method is the normalization
// bitmask.
func Rank(weights []float32, v *TSVector, q *TSQuery, method int) float32 {
	w := defaultRankWeights
	if weights != nil {
		copy(w[:], weights)
	}
	if v.Length() == 0 || len(q.Items) == 0 {
		return 0
	}
	var res float32
	if q.Items[0].Type == QueryOpr && q.Items[0].Op == OpAnd {
		res = rankAnd(w, v, q)
	} else {
		res = rankOr(w, v, q)
	}
	if res < 0 {
		res = 1e-20
	}
	if method&RankNormLogLength > 0 {
		res /= float32(math.Log2(float64(cntLen(v) + 1)))
	}
	if method&RankNormLength > 0 {
		if l := cntLen(v); l > 0 {
			res /= float32(l)
		}
	}
	if method&RankNormUniq > 0 {
		res /= float32(v.Length())
	}
	if method&RankNormLogUniq > 0 {
		res /= float32(math.Log2(float64(v.Length() + 1)))
	}
	if method&RankNormRDivRPlus1 > 0 {
		res /= res + 1
	}
	return res
}

// rankOr sums a per-lexeme occurrence series: each match position adds
// weight/i² for its rank i in the position list, capped by the series
// limit pi²/6, averaged over the query leaves.
func rankOr(weights [4]float32, v *TSVector, q *TSQuery) float32 {
	leaves := queryLeaves(q)
	var matches [][]WordPos
	var res float32
	for _, leaf := range leaves {
		matches = leafMatches(leaf, v, matches[:0])
		if len(matches) == 0 {
			continue
		}
		resj := float32(0)
		wjm := float32(-1)
		jm := 0
		for _, positions := range matches {
			for j, pos := range positions {
				weight := weights[pos.Weight()]
				resj += weight / float32((j+1)*(j+1))
				if weight > wjm {
					wjm = weight
					jm = j
				}
			}
		}
		res += (wjm + resj - wjm/float32((jm+1)*(jm+1))) / 1.64493406685
	}
	if len(leaves) > 0 {
		res /= float32(len(leaves))
	}
	return res
}

// rankAnd scores lexeme co-occurrence: every cross-leaf position pair
// contributes sqrt(wi·wj·wordDistance) folded as a complement product.
func rankAnd(weights [4]float32, v *TSVector, q *TSQuery) float32 {
	leaves := queryLeaves(q)
	if len(leaves) < 2 {
		return rankOr(weights, v, q)
	}
	pos := make([][]WordPos, len(leaves))
	res := float32(-1)
	var matches [][]WordPos
	for i := range leaves {
		matches = leafMatches(leaves[i], v, matches[:0])
		for _, positions := range matches {
			pos[i] = positions
			for k := 0; k < i; k++ {
				for _, pi := range pos[i] {
					for _, pk := range pos[k] {
						dist := pi.Pos() - pk.Pos()
						if dist < 0 {
							dist = -dist
						}
						if dist == 0 {
							continue
						}
						curw := float32(math.Sqrt(float64(weights[pi.Weight()] * weights[pk.Weight()] * wordDistance(dist))))
						if res < 0 {
							res = curw
						} else {
							res = 1.0 - (1.0-res)*(1.0-curw)
						}
					}
				}
			}
		}
	}
	return res
}

// wordDistance weights a collocation by the gap between the two
// positions.
func wordDistance(dist int) float32 {
	if dist > 100 {
		return 1e-30
	}
	return float32(1.0 / (1.005 + 0.05*math.Exp(float64(float32(dist)/1.5-2))))
}

// docItem is one (query leaf, position) pair of the document
// representation covers are computed over.
type docItem struct {
	item   *Item
	pos    int
	weight Weight
}

// buildDoc flattens the vector into the positions that satisfy some query
// leaf, sorted by position. Stripped entries contribute nothing.
func buildDoc(v *TSVector, q *TSQuery) []docItem {
	var doc []docItem
	for i := range q.Items {
		it := &q.Items[i]
		if it.Type != QueryVal {
			continue
		}
		appendEntry := func(e *Entry) {
			for _, p := range e.Positions {
				if it.Weights != 0 && p.Weight().Mask()&it.Weights == 0 {
					continue
				}
				doc = append(doc, docItem{item: it, pos: p.Pos(), weight: p.Weight()})
			}
		}
		if it.Prefix {
			v.LookupPrefix(it.Value, func(e *Entry) bool {
				appendEntry(e)
				return true
			})
		} else if e := v.Lookup(it.Value); e != nil {
			appendEntry(e)
		}
	}
	sort.Slice(doc, func(i, j int) bool { return doc[i].pos < doc[j].pos })
	return doc
}

// coverer enumerates the minimal query-satisfying position intervals of a
// document, non-overlapping and in increasing order.
type coverer struct {
	doc    []docItem
	q      *TSQuery
	cursor int
}

func newCoverer(v *TSVector, q *TSQuery) *coverer {
	return &coverer{doc: buildDoc(v, q), q: q}
}

// next yields the next cover [p, q] in position terms. The scan first
// extends forward from the cursor until the seen leaves satisfy the query,
// then walks back from that point to find the latest possible start.
func (c *coverer) next() (p, q int, ok bool) {
	for c.cursor < len(c.doc) {
		seen := make(map[*Item]bool)
		chk := func(it *Item) bool { return seen[it] }

		end := -1
		for i := c.cursor; i < len(c.doc); i++ {
			seen[c.doc[i].item] = true
			if c.q.Execute(false, chk) {
				end = i
				break
			}
		}
		if end < 0 {
			return 0, 0, false
		}

		seen = make(map[*Item]bool)
		start := end
		for i := end; i >= c.cursor; i-- {
			seen[c.doc[i].item] = true
			if c.q.Execute(false, chk) {
				start = i
				break
			}
		}

		p, q = c.doc[start].pos, c.doc[end].pos
		if p <= q {
			c.cursor = end + 1
			return p, q, true
		}
		c.cursor++
	}
	return 0, 0, false
}

// RankCD is the cover-density ranking: each cover of width w contributes
// min(1, k/w), normalized by the same menu as Rank.
func RankCD(k int, v *TSVector, q *TSQuery, method int) float32 {
	if v.Length() == 0 || len(q.Items) == 0 {
		return 0
	}
	var res float32
	cov := newCoverer(v, q)
	nExtent := 0
	prevStart := 0
	var sumDist float64
	for {
		p, qpos, ok := cov.next()
		if !ok {
			break
		}
		width := qpos - p + 1
		if k >= width {
			res += 1
		} else {
			res += float32(k) / float32(width)
		}
		if nExtent > 0 && p > prevStart {
			sumDist += 1.0 / float64(p-prevStart)
		}
		prevStart = p
		nExtent++
	}
	if nExtent == 0 {
		return 0
	}
	if method&RankNormLogLength > 0 {
		res /= float32(math.Log2(float64(cntLen(v) + 1)))
	}
	if method&RankNormLength > 0 {
		if l := cntLen(v); l > 0 {
			res /= float32(l)
		}
	}
	if method&RankNormExtDist > 0 && sumDist > 0 {
		res /= float32(float64(nExtent) / sumDist)
	}
	if method&RankNormUniq > 0 {
		res /= float32(v.Length())
	}
	if method&RankNormLogUniq > 0 {
		res /= float32(math.Log2(float64(v.Length() + 1)))
	}
	if method&RankNormRDivRPlus1 > 0 {
		res /= res + 1
	}
	return res
}

// leafSatisfiedBy reports whether a lexeme satisfies the leaf, used by
// the headline marker.
func leafSatisfiedBy(it *Item, lexeme string) bool {
	if it.Prefix {
		return strings.HasPrefix(lexeme, it.Value)
	}
	return lexeme == it.Value
}
