package cube

import (
	"strconv"
	"strings"

	"github.com/hupe1980/gistkit/errcode"
)

// Parse reads a cube literal. Accepted forms:
//
//	1,2,3            point
//	(1,2,3)          point
//	(1,2),(3,4)      box
func Parse(s string) (*Cube, error) {
	p := &parser{in: s}
	c, err := p.parse()
	if err != nil {
		return nil, err
	}
	return c, nil
}

type parser struct {
	in  string
	pos int
}

func (p *parser) syntax(format string, args ...any) error {
	return errcode.Newf(errcode.CodeSyntax, "invalid cube literal: "+format, args...).
		WithDetail("at or near position %d of %q", p.pos, p.in)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.in) && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t' || p.in[p.pos] == '\n') {
		p.pos++
	}
}

func (p *parser) eat(b byte) bool {
	p.skipSpace()
	if p.pos < len(p.in) && p.in[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

func (p *parser) number() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.in) && strings.IndexByte("+-0123456789.eEafinANIF", p.in[p.pos]) >= 0 {
		p.pos++
	}
	if start == p.pos {
		return 0, p.syntax("expected a number")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(p.in[start:p.pos]), 64)
	if err != nil {
		return 0, p.syntax("%q is not a valid coordinate", p.in[start:p.pos])
	}
	return v, nil
}

// coordList parses a comma-separated coordinate list terminated by ')' when
// parenthesized, or by end of input otherwise.
func (p *parser) coordList(paren bool) ([]float64, error) {
	var coords []float64
	for {
		v, err := p.number()
		if err != nil {
			return nil, err
		}
		coords = append(coords, v)
		if len(coords) > MaxDim {
			return nil, dimError(len(coords))
		}
		if p.eat(',') {
			continue
		}
		break
	}
	if paren && !p.eat(')') {
		return nil, p.syntax("expected ')'")
	}
	return coords, nil
}

func (p *parser) parse() (*Cube, error) {
	p.skipSpace()
	if p.pos >= len(p.in) {
		return nil, p.syntax("empty input")
	}
	if p.eat('(') {
		first, err := p.coordList(true)
		if err != nil {
			return nil, err
		}
		if p.eat(',') {
			if !p.eat('(') {
				return nil, p.syntax("expected '(' before the second corner")
			}
			second, err := p.coordList(true)
			if err != nil {
				return nil, err
			}
			if len(first) != len(second) {
				return nil, p.syntax("corners have different dimensions: %d vs %d", len(first), len(second))
			}
			if err := p.end(); err != nil {
				return nil, err
			}
			return New(first, second)
		}
		if err := p.end(); err != nil {
			return nil, err
		}
		return NewPoint(first)
	}
	coords, err := p.coordList(false)
	if err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return NewPoint(coords)
}

func (p *parser) end() error {
	p.skipSpace()
	if p.pos != len(p.in) {
		return p.syntax("unexpected trailing characters")
	}
	return nil
}

// String renders the canonical literal form: "(l1, l2)" for points and
// "(l1, l2),(u1, u2)" for boxes.
func (c *Cube) String() string {
	var b strings.Builder
	writeCorner := func(offset int) {
		b.WriteByte('(')
		for i := 0; i < c.dim; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatFloat(c.coords[offset+i], 'g', -1, 64))
		}
		b.WriteByte(')')
	}
	writeCorner(0)
	if !c.point {
		b.WriteString(",")
		writeCorner(c.dim)
	}
	return b.String()
}
