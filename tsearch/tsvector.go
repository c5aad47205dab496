// Package tsearch implements the text-search core: tsvector documents,
// tsquery boolean queries stored as flat prefix-order item arrays,
// evaluation against vectors and signatures, ranking, and headline
// generation. Text analysis (parsing and dictionaries) lives in the
// textparser and dict subpackages; this package drives them.
package tsearch

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/hupe1980/gistkit/errcode"
)

// Limits from the on-disk formats: positions are 14-bit with 0 reserved,
// position lists cap at 256 entries, lexemes at 2047 bytes.
const (
	MaxPosition           = 1<<14 - 1
	MaxPositionsPerLexeme = 256
	MaxLexemeBytes        = 2047
)

// Weight is the 2-bit per-position label. The zero value is D, the
// default.
type Weight uint8

const (
	WeightD Weight = iota
	WeightC
	WeightB
	WeightA
)

// Mask returns the weight's bit in a query weight mask.
func (w Weight) Mask() uint8 { return 1 << w }

func (w Weight) String() string {
	return string("DCBA"[w&3])
}

// ParseWeight maps a weight letter to its value.
func ParseWeight(r rune) (Weight, bool) {
	switch r {
	case 'a', 'A':
		return WeightA, true
	case 'b', 'B':
		return WeightB, true
	case 'c', 'C':
		return WeightC, true
	case 'd', 'D':
		return WeightD, true
	}
	return 0, false
}

// WordPos packs a 14-bit position and a 2-bit weight.
type WordPos uint16

// NewWordPos builds a packed position; the caller clamps pos beforehand.
func NewWordPos(pos int, w Weight) WordPos {
	return WordPos(pos&MaxPosition) | WordPos(w)<<14
}

// Pos returns the 1-based word position.
func (p WordPos) Pos() int { return int(p & MaxPosition) }

// Weight returns the position's weight.
func (p WordPos) Weight() Weight { return Weight(p >> 14) }

// WithWeight returns the position relabeled.
func (p WordPos) WithWeight(w Weight) WordPos { return NewWordPos(p.Pos(), w) }

// Entry is one lexeme of a tsvector with its sorted position list. A nil
// position list means the vector was stripped.
type Entry struct {
	Lexeme    string
	Positions []WordPos
}

// TSVector is a document: entries sorted by (length, bytes), unique.
type TSVector struct {
	Entries []Entry
}

// compareLex orders lexemes by length first, then bytewise; the order the
// entry array is sorted and searched in.
func compareLex(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// VectorOptions configure vector construction.
type VectorOptions struct {
	// Logger receives the clamp notices.
	Logger *slog.Logger
}

func defaultVectorOptions() VectorOptions {
	return VectorOptions{Logger: slog.Default()}
}

// rawTerm is a pre-normalization (lexeme, position) pair.
type rawTerm struct {
	lexeme string
	pos    WordPos
	haspos bool
}

// buildVector normalizes raw terms into a vector: sort by (lexeme, pos),
// merge duplicate lexemes, drop duplicate positions, cap the per-lexeme
// position count with a notice.
func buildVector(terms []rawTerm, opts VectorOptions) (*TSVector, error) {
	for _, t := range terms {
		if len(t.lexeme) > MaxLexemeBytes {
			return nil, errcode.Newf(errcode.CodeLimitExceeded, "lexeme is %d bytes, maximum is %d", len(t.lexeme), MaxLexemeBytes)
		}
	}
	sort.SliceStable(terms, func(i, j int) bool {
		if c := compareLex(terms[i].lexeme, terms[j].lexeme); c != 0 {
			return c < 0
		}
		return terms[i].pos.Pos() < terms[j].pos.Pos()
	})

	v := &TSVector{}
	for i := 0; i < len(terms); {
		j := i
		var positions []WordPos
		capped := false
		for ; j < len(terms) && terms[j].lexeme == terms[i].lexeme; j++ {
			if !terms[j].haspos {
				continue
			}
			if len(positions) > 0 && positions[len(positions)-1].Pos() == terms[j].pos.Pos() {
				continue
			}
			if len(positions) >= MaxPositionsPerLexeme {
				capped = true
				continue
			}
			positions = append(positions, terms[j].pos)
		}
		if capped {
			opts.Logger.Warn("lexeme has more positions than fit, extra positions dropped",
				slog.String("lexeme", terms[i].lexeme),
				slog.Int("max", MaxPositionsPerLexeme),
			)
		}
		v.Entries = append(v.Entries, Entry{Lexeme: terms[i].lexeme, Positions: positions})
		i = j
	}
	return v, nil
}

// clampPosition saturates a 1-based position into the storable range,
// announcing the clamp.
func clampPosition(pos int, logger *slog.Logger) int {
	if pos > MaxPosition {
		logger.Warn("word position exceeds the storable maximum, clamped",
			slog.Int("position", pos),
			slog.Int("max", MaxPosition),
		)
		return MaxPosition
	}
	if pos < 1 {
		pos = 1
	}
	return pos
}

// Length returns the number of distinct lexemes.
func (v *TSVector) Length() int { return len(v.Entries) }

// Lookup finds the entry for an exact lexeme.
func (v *TSVector) Lookup(lexeme string) *Entry {
	i := sort.Search(len(v.Entries), func(i int) bool {
		return compareLex(v.Entries[i].Lexeme, lexeme) >= 0
	})
	if i < len(v.Entries) && v.Entries[i].Lexeme == lexeme {
		return &v.Entries[i]
	}
	return nil
}

// LookupPrefix calls fn for every entry whose lexeme starts with prefix,
// in entry order. Entries are length-sorted, so the whole tail from the
// first length-match candidate must be scanned.
func (v *TSVector) LookupPrefix(prefix string, fn func(*Entry) bool) {
	i := sort.Search(len(v.Entries), func(i int) bool {
		return len(v.Entries[i].Lexeme) >= len(prefix)
	})
	for ; i < len(v.Entries); i++ {
		if strings.HasPrefix(v.Entries[i].Lexeme, prefix) {
			if !fn(&v.Entries[i]) {
				return
			}
		}
	}
}

// SetWeight relabels every position of every entry.
func (v *TSVector) SetWeight(w Weight) *TSVector {
	out := &TSVector{Entries: make([]Entry, len(v.Entries))}
	for i, e := range v.Entries {
		positions := make([]WordPos, len(e.Positions))
		for j, p := range e.Positions {
			positions[j] = p.WithWeight(w)
		}
		out.Entries[i] = Entry{Lexeme: e.Lexeme, Positions: positions}
	}
	return out
}

// Strip drops all position lists.
func (v *TSVector) Strip() *TSVector {
	out := &TSVector{Entries: make([]Entry, len(v.Entries))}
	for i, e := range v.Entries {
		out.Entries[i] = Entry{Lexeme: e.Lexeme}
	}
	return out
}

// Filter keeps only the positions whose weight is in the mask, dropping
// entries left without positions.
func (v *TSVector) Filter(mask uint8) *TSVector {
	out := &TSVector{}
	for _, e := range v.Entries {
		var kept []WordPos
		for _, p := range e.Positions {
			if p.Weight().Mask()&mask != 0 {
				kept = append(kept, p)
			}
		}
		if len(kept) > 0 {
			out.Entries = append(out.Entries, Entry{Lexeme: e.Lexeme, Positions: kept})
		}
	}
	return out
}

// maxPos returns the highest position in the vector, 0 for stripped or
// empty vectors.
func (v *TSVector) maxPos() int {
	max := 0
	for _, e := range v.Entries {
		if n := len(e.Positions); n > 0 {
			if p := e.Positions[n-1].Pos(); p > max {
				max = p
			}
		}
	}
	return max
}

// Concat merges two vectors, shifting b's positions past a's highest
// position.
func Concat(a, b *TSVector, optFns ...func(o *VectorOptions)) (*TSVector, error) {
	opts := defaultVectorOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	shift := a.maxPos()
	var terms []rawTerm
	for _, e := range a.Entries {
		terms = appendEntryTerms(terms, e, 0, opts.Logger)
	}
	for _, e := range b.Entries {
		terms = appendEntryTerms(terms, e, shift, opts.Logger)
	}
	return buildVector(terms, opts)
}

func appendEntryTerms(terms []rawTerm, e Entry, shift int, logger *slog.Logger) []rawTerm {
	if len(e.Positions) == 0 {
		return append(terms, rawTerm{lexeme: e.Lexeme})
	}
	for _, p := range e.Positions {
		pos := clampPosition(p.Pos()+shift, logger)
		terms = append(terms, rawTerm{lexeme: e.Lexeme, pos: NewWordPos(pos, p.Weight()), haspos: true})
	}
	return terms
}
