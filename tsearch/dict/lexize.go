package dict

import (
	"context"

	"github.com/hupe1980/gistkit/internal/interrupt"
	"github.com/hupe1980/gistkit/tsearch/textparser"
)

// Mapping selects the dictionary chain tried for each token type. Token
// types with no entry are dropped from the output.
type Mapping map[textparser.TokenType][]Dictionary

// Result is the normalization of one token, or of a run of tokens when a
// multi-word dictionary matched. Empty Lexemes mark a stop word, which
// still occupies a position.
type Result struct {
	// Token is the first source token of the match.
	Token textparser.Token
	// Index is the zero-based position of Token among the indexable
	// tokens; word positions derive from it.
	Index int
	// Span is the number of indexable source tokens consumed.
	Span int
	// Lexemes is the normalized output; nil for stop words.
	Lexemes []Lexeme
}

// Stop reports whether the result is a stop word.
func (r Result) Stop() bool { return len(r.Lexemes) == 0 }

// Lexize drives tokens through their dictionary chains. Dictionaries are
// tried in mapping order; the first that recognizes a word wins. A
// dictionary requesting lookahead is fed the following indexable tokens
// and, on failure, the chain resumes where it left off.
func Lexize(ctx context.Context, mapping Mapping, tokens []textparser.Token) ([]Result, error) {
	words := make([]textparser.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type.Indexable() {
			words = append(words, tok)
		}
	}

	var out []Result
	for i, iter := 0, 0; i < len(words); {
		if err := interrupt.Check(ctx, iter); err != nil {
			return nil, err
		}
		iter++

		chain := mapping[words[i].Type]
		matched := false
		for _, d := range chain {
			var sub Substate
			lex, ok := d.Lexize(words[i].Value, &sub)
			fed := 1
			for sub.GetNext {
				var w string
				if i+fed < len(words) {
					w = words[i+fed].Value
				}
				sub.GetNext = false
				lex, ok = d.Lexize(w, &sub)
				fed++
			}
			if !ok {
				continue
			}
			consumed := fed - sub.Unconsumed
			if consumed < 1 {
				consumed = 1
			}
			out = append(out, Result{Token: words[i], Index: i, Span: consumed, Lexemes: lex})
			i += consumed
			matched = true
			break
		}
		if !matched {
			i++
		}
	}
	return out, nil
}
