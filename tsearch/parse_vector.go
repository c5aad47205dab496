package tsearch

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseTSVector reads the text form: whitespace-separated lexemes, quoted
// with single quotes when they contain special characters ('' escapes a
// quote), each optionally followed by :pos[,pos...] with a weight letter
// suffix per position.
func ParseTSVector(s string, optFns ...func(o *VectorOptions)) (*TSVector, error) {
	opts := defaultVectorOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var terms []rawTerm
	rs := []rune(s)
	i := 0
	for {
		for i < len(rs) && unicode.IsSpace(rs[i]) {
			i++
		}
		if i >= len(rs) {
			break
		}
		lexeme, next, err := scanLexeme(rs, i)
		if err != nil {
			return nil, err
		}
		i = next
		if lexeme == "" {
			return nil, vectorSyntax(s, i, "empty lexeme")
		}

		if i < len(rs) && rs[i] == ':' {
			i++
			for {
				start := i
				for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
					i++
				}
				if start == i {
					return nil, vectorSyntax(s, i, "expected a position number")
				}
				pos, err := strconv.Atoi(string(rs[start:i]))
				if err != nil || pos < 1 {
					return nil, vectorSyntax(s, i, "position must be a positive integer")
				}
				w := WeightD
				if i < len(rs) {
					if pw, ok := ParseWeight(rs[i]); ok {
						w = pw
						i++
					}
				}
				pos = clampPosition(pos, opts.Logger)
				terms = append(terms, rawTerm{lexeme: lexeme, pos: NewWordPos(pos, w), haspos: true})
				if i < len(rs) && rs[i] == ',' {
					i++
					continue
				}
				break
			}
			if i < len(rs) && !unicode.IsSpace(rs[i]) {
				return nil, vectorSyntax(s, i, "unexpected character after position list")
			}
		} else {
			terms = append(terms, rawTerm{lexeme: lexeme})
		}
	}
	return buildVector(terms, opts)
}

func vectorSyntax(in string, pos int, msg string) error {
	return syntaxErr("tsvector", in, pos, msg)
}

// scanLexeme reads one bare or quoted lexeme starting at i.
func scanLexeme(rs []rune, i int) (string, int, error) {
	if rs[i] == '\'' {
		var b strings.Builder
		i++
		for {
			if i >= len(rs) {
				return "", i, syntaxErr("lexeme", string(rs), i, "unterminated quote")
			}
			if rs[i] == '\'' {
				if i+1 < len(rs) && rs[i+1] == '\'' {
					b.WriteRune('\'')
					i += 2
					continue
				}
				return b.String(), i + 1, nil
			}
			b.WriteRune(rs[i])
			i++
		}
	}
	start := i
	for i < len(rs) && !unicode.IsSpace(rs[i]) && rs[i] != ':' && rs[i] != '\'' {
		i++
	}
	return string(rs[start:i]), i, nil
}

// quoteLexeme renders a lexeme in output form, quoting when it contains
// anything beyond plain word characters.
func quoteLexeme(lexeme string) string {
	plain := lexeme != ""
	for _, r := range lexeme {
		if unicode.IsSpace(r) || r == '\'' || r == ':' || r == ',' {
			plain = false
			break
		}
	}
	if plain {
		return lexeme
	}
	return "'" + strings.ReplaceAll(lexeme, "'", "''") + "'"
}

// String renders the canonical text form.
func (v *TSVector) String() string {
	var b strings.Builder
	for i, e := range v.Entries {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(quoteLexeme(e.Lexeme))
		for j, p := range e.Positions {
			if j == 0 {
				b.WriteByte(':')
			} else {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(p.Pos()))
			if w := p.Weight(); w != WeightD {
				b.WriteString(w.String())
			}
		}
	}
	return b.String()
}
