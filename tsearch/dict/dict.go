// Package dict implements the lexizer dictionaries and the driver that
// feeds parsed tokens through an ordered chain of them: stop lists, simple
// lowercasing, synonym replacement, snowball stemming, ispell affix
// expansion, and multi-word thesaurus substitution.
package dict

// LexFlag annotates an emitted lexeme.
type LexFlag uint8

const (
	// AddPos makes the lexeme occupy its own position instead of sharing
	// the position of the first lexeme of a multi-word substitution.
	AddPos LexFlag = 1 << iota
	// UseAsIs marks a lexeme that must not be processed by later
	// dictionaries in the chain.
	UseAsIs
)

// Lexeme is one normalized output of a dictionary. NVariant groups the
// lexemes of one ambiguous split: lexemes sharing a variant id belong to
// the same reading of the input word.
type Lexeme struct {
	Value    string
	NVariant int
	Flags    LexFlag
}

// Substate carries the multi-word protocol between a dictionary and the
// lexize driver across calls.
type Substate struct {
	// GetNext is set by the dictionary to request the next input word.
	GetNext bool
	// Unconsumed is set alongside a final result: the number of trailing
	// words the dictionary looked at but did not consume.
	Unconsumed int

	private any
}

// Dictionary normalizes one word (or, with the Substate protocol, a run of
// words). The bool result distinguishes "not recognized, try the next
// dictionary" (false) from a match (true); a match with no lexemes is a
// stop word and short-circuits the chain.
type Dictionary interface {
	Lexize(word string, sub *Substate) ([]Lexeme, bool)
}

// One returns a single unflagged lexeme.
func One(value string) []Lexeme {
	return []Lexeme{{Value: value}}
}
