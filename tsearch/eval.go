package tsearch

import (
	"github.com/hupe1980/gistkit/gist"
	"github.com/hupe1980/gistkit/internal/sigbits"
)

// ChkCond answers whether one value leaf is satisfied by the document
// being tested.
type ChkCond func(*Item) bool

// Execute evaluates the query bottom-up against a leaf oracle. With
// calcnot false, NOT subtrees are assumed true; lossy contexts cannot
// prove a negation and must recheck. An empty query matches nothing.
func (q *TSQuery) Execute(calcnot bool, chk ChkCond) bool {
	if len(q.Items) == 0 {
		return false
	}
	return q.exec(0, 0, calcnot, chk)
}

func (q *TSQuery) exec(i, depth int, calcnot bool, chk ChkCond) bool {
	// Every constructor bounds nesting, so the guard only trips on
	// hand-built item arrays.
	if depth > maxParseDepth {
		return false
	}
	it := &q.Items[i]
	switch it.Type {
	case QueryVal:
		return chk(it)
	case QueryStop:
		return false
	}
	switch it.Op {
	case OpNot:
		if !calcnot {
			return true
		}
		return !q.exec(i+1, depth+1, calcnot, chk)
	case OpAnd:
		return q.exec(i+it.Left, depth+1, calcnot, chk) && q.exec(i+1, depth+1, calcnot, chk)
	default:
		return q.exec(i+it.Left, depth+1, calcnot, chk) || q.exec(i+1, depth+1, calcnot, chk)
	}
}

// entryWeightOK checks the query weight mask against an entry's position
// weights. A stripped entry carries no weights and fails any nonzero
// mask.
func entryWeightOK(e *Entry, mask uint8) bool {
	if mask == 0 {
		return true
	}
	for _, p := range e.Positions {
		if p.Weight().Mask()&mask != 0 {
			return true
		}
	}
	return false
}

func matchEntry(v *TSVector, it *Item) bool {
	if it.Prefix {
		found := false
		v.LookupPrefix(it.Value, func(e *Entry) bool {
			if entryWeightOK(e, it.Weights) {
				found = true
				return false
			}
			return true
		})
		return found
	}
	e := v.Lookup(it.Value)
	return e != nil && entryWeightOK(e, it.Weights)
}

// Match implements the match operator between a vector and a query.
func Match(v *TSVector, q *TSQuery) bool {
	return q.Execute(true, func(it *Item) bool {
		return matchEntry(v, it)
	})
}

// Signature summarizes the vector's lexemes into a siglen-byte bitmap,
// the leaf form of the signature GiST key. Positions and weights do not
// survive the summary.
func (v *TSVector) Signature(siglen int) sigbits.Signature {
	s := sigbits.New(siglen)
	for i := range v.Entries {
		s.SetHash(sigbits.HashString(v.Entries[i].Lexeme))
	}
	return s
}

// SignKey wraps the vector's signature as a GiST key.
func (v *TSVector) SignKey(siglen int) *gist.LossyKey {
	return gist.NewSignKey(v.Signature(siglen))
}

// MatchSignature tests the query against a lexeme-hash signature. The
// answer is lossy: prefix leaves and negations degrade to true, so a
// positive result still needs a recheck against the full vector.
func MatchSignature(sign *sigbits.Signature, q *TSQuery) bool {
	return q.Execute(false, func(it *Item) bool {
		if it.Prefix {
			return true
		}
		return sign.TestHash(it.Hash())
	})
}

// MatchLossyKey tests the query against a GiST inner key built from
// lexeme hashes. Same lossiness rules as MatchSignature.
func MatchLossyKey(key *gist.LossyKey, q *TSQuery) bool {
	if key.AllTrue() {
		return len(q.Items) > 0
	}
	return q.Execute(false, func(it *Item) bool {
		if it.Prefix {
			return true
		}
		return key.ContainsHash(int32(it.Hash()))
	})
}
