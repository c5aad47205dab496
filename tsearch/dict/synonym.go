package dict

import (
	"bufio"
	"io"
	"strings"

	"github.com/hupe1980/gistkit/errcode"
)

// Synonym replaces words by exact lookup in a pair list. Lines have the
// form "from to"; a trailing "*" on the replacement marks it as a prefix
// lexeme kept as-is for later dictionaries to skip.
type Synonym struct {
	pairs map[string]Lexeme
}

// NewSynonym loads the pair list. Later entries win on duplicate keys.
func NewSynonym(r io.Reader) (*Synonym, error) {
	pairs := make(map[string]Lexeme)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, errcode.Newf(errcode.CodeSyntax, "synonym list line %d has %d fields, want 2", line, len(fields))
		}
		from := strings.ToLower(fields[0])
		to := strings.ToLower(fields[1])
		lex := Lexeme{Value: to}
		if strings.HasSuffix(to, "*") {
			lex.Value = strings.TrimSuffix(to, "*")
			lex.Flags |= UseAsIs
		}
		pairs[from] = lex
	}
	if err := sc.Err(); err != nil {
		return nil, errcode.Wrapf(err, errcode.CodeInternal, "reading synonym list")
	}
	return &Synonym{pairs: pairs}, nil
}

// SynonymOf builds a dictionary from literal from/to pairs.
func SynonymOf(pairs map[string]string) *Synonym {
	m := make(map[string]Lexeme, len(pairs))
	for from, to := range pairs {
		m[strings.ToLower(from)] = Lexeme{Value: strings.ToLower(to)}
	}
	return &Synonym{pairs: m}
}

// Lexize implements Dictionary.
func (d *Synonym) Lexize(word string, sub *Substate) ([]Lexeme, bool) {
	lex, ok := d.pairs[strings.ToLower(word)]
	if !ok {
		return nil, false
	}
	return []Lexeme{lex}, true
}
