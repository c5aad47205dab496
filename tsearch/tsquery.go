package tsearch

import (
	"unicode"

	"github.com/hupe1980/gistkit/errcode"
	"github.com/hupe1980/gistkit/internal/sigbits"
)

// A tsquery is stored as a contiguous item array in prefix order: the root
// is item 0, an operator's right operand starts at self+1, and Left is the
// positive offset from the operator to the root of its left subtree. This
// layout is the on-disk form; evaluation walks it directly.

// NodeType discriminates query items.
type NodeType uint8

const (
	// QueryVal is a lexeme leaf.
	QueryVal NodeType = iota + 1
	// QueryOpr is an operator node.
	QueryOpr
	// QueryStop is a leaf whose lexeme was consumed by a stop-word
	// dictionary; it keeps the boolean shape until the cleanup rewrite.
	QueryStop
)

// Operators.
const (
	OpNot byte = '!'
	OpAnd byte = '&'
	OpOr  byte = '|'
)

// MaxQueryItems bounds the item array, per the on-disk format.
const MaxQueryItems = 32768

// maxParseDepth guards parser and evaluator recursion; sized for queries
// of ten thousand operators on one branch.
const maxParseDepth = 10000

// Item is one slot of the array. For operators only Op and Left are
// meaningful; for values the lexeme, its weight mask (0 matches any
// weight) and the prefix flag.
type Item struct {
	Type    NodeType
	Op      byte
	Left    int
	Value   string
	Weights uint8
	Prefix  bool
}

// Hash returns the leaf's signature hash.
func (it *Item) Hash() uint32 { return sigbits.HashString(it.Value) }

// TSQuery is a parsed query. A query with no items matches nothing.
type TSQuery struct {
	Items []Item
}

// NumNode returns the total item count.
func (q *TSQuery) NumNode() int { return len(q.Items) }

// cons prepends an operator to its operands: right subtree first, then
// left, with the back-link set.
func cons(op byte, left, right []Item) []Item {
	out := make([]Item, 0, 1+len(left)+len(right))
	out = append(out, Item{Type: QueryOpr, Op: op, Left: 1 + len(right)})
	out = append(out, right...)
	return append(out, left...)
}

func consNot(operand []Item) []Item {
	out := make([]Item, 0, 1+len(operand))
	out = append(out, Item{Type: QueryOpr, Op: OpNot, Left: 1})
	return append(out, operand...)
}

type queryParser struct {
	in  string
	rs  []rune
	pos int
}

// ParseTSQuery reads the raw text form: operands with optional
// ':WEIGHTS[*]' suffixes combined with ! & | and parentheses. Operands are
// taken verbatim; dictionary normalization is ToTSQuery's job.
func ParseTSQuery(s string) (*TSQuery, error) {
	p := &queryParser{in: s, rs: []rune(s)}
	items, err := p.parseOr(0)
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.pos != len(p.rs) {
		return nil, p.syntax("unexpected %q", string(p.rs[p.pos:]))
	}
	if len(items) > MaxQueryItems {
		return nil, errcode.Newf(errcode.CodeLimitExceeded, "tsquery has %d items, maximum is %d", len(items), MaxQueryItems)
	}
	return &TSQuery{Items: items}, nil
}

func (p *queryParser) syntax(format string, args ...any) error {
	return errcode.Newf(errcode.CodeSyntax, "invalid tsquery: "+format, args...).
		WithDetail("at position %d of %q", p.pos, p.in)
}

func (p *queryParser) skip() {
	for p.pos < len(p.rs) && unicode.IsSpace(p.rs[p.pos]) {
		p.pos++
	}
}

func (p *queryParser) eat(b rune) bool {
	p.skip()
	if p.pos < len(p.rs) && p.rs[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

func (p *queryParser) parseOr(depth int) ([]Item, error) {
	if depth > maxParseDepth {
		return nil, errcode.Newf(errcode.CodeLimitExceeded, "tsquery nesting exceeds depth limit %d", maxParseDepth)
	}
	items, err := p.parseAnd(depth + 1)
	if err != nil {
		return nil, err
	}
	for p.eat(rune(OpOr)) {
		right, err := p.parseAnd(depth + 1)
		if err != nil {
			return nil, err
		}
		items = cons(OpOr, items, right)
	}
	return items, nil
}

func (p *queryParser) parseAnd(depth int) ([]Item, error) {
	items, err := p.parseNot(depth + 1)
	if err != nil {
		return nil, err
	}
	for p.eat(rune(OpAnd)) {
		right, err := p.parseNot(depth + 1)
		if err != nil {
			return nil, err
		}
		items = cons(OpAnd, items, right)
	}
	return items, nil
}

func (p *queryParser) parseNot(depth int) ([]Item, error) {
	if depth > maxParseDepth {
		return nil, errcode.Newf(errcode.CodeLimitExceeded, "tsquery nesting exceeds depth limit %d", maxParseDepth)
	}
	if p.eat(rune(OpNot)) {
		operand, err := p.parseNot(depth + 1)
		if err != nil {
			return nil, err
		}
		return consNot(operand), nil
	}
	return p.parseAtom(depth)
}

func isQuerySpecial(r rune) bool {
	return r == '&' || r == '|' || r == '!' || r == '(' || r == ')' || r == ':' || r == '\''
}

func (p *queryParser) parseAtom(depth int) ([]Item, error) {
	if p.eat('(') {
		items, err := p.parseOr(depth + 1)
		if err != nil {
			return nil, err
		}
		if !p.eat(')') {
			return nil, p.syntax("expected ')'")
		}
		return items, nil
	}
	p.skip()
	var value string
	if p.pos < len(p.rs) && p.rs[p.pos] == '\'' {
		lex, next, err := scanLexeme(p.rs, p.pos)
		if err != nil {
			return nil, err
		}
		value, p.pos = lex, next
	} else {
		start := p.pos
		for p.pos < len(p.rs) && !unicode.IsSpace(p.rs[p.pos]) && !isQuerySpecial(p.rs[p.pos]) {
			p.pos++
		}
		value = string(p.rs[start:p.pos])
	}
	if value == "" {
		return nil, p.syntax("expected an operand")
	}
	if len(value) > MaxLexemeBytes {
		return nil, errcode.Newf(errcode.CodeLimitExceeded, "operand is %d bytes, maximum is %d", len(value), MaxLexemeBytes)
	}
	item := Item{Type: QueryVal, Value: value}
	if p.pos < len(p.rs) && p.rs[p.pos] == ':' {
		p.pos++
		start := p.pos
		for p.pos < len(p.rs) {
			if w, ok := ParseWeight(p.rs[p.pos]); ok {
				item.Weights |= w.Mask()
				p.pos++
				continue
			}
			if p.rs[p.pos] == '*' {
				item.Prefix = true
				p.pos++
				continue
			}
			break
		}
		if p.pos == start {
			return nil, p.syntax("expected weight letters after ':'")
		}
	}
	return []Item{item}, nil
}

// String renders the infix form with minimal parentheses.
func (q *TSQuery) String() string {
	if len(q.Items) == 0 {
		return ""
	}
	var render func(i, parentPrec int) string
	prec := func(op byte) int {
		switch op {
		case OpNot:
			return 3
		case OpAnd:
			return 2
		}
		return 1
	}
	render = func(i, parentPrec int) string {
		it := q.Items[i]
		switch it.Type {
		case QueryVal:
			s := quoteLexeme(it.Value)
			if it.Weights != 0 || it.Prefix {
				s += ":"
				for w := WeightA; ; w-- {
					if it.Weights&w.Mask() != 0 {
						s += w.String()
					}
					if w == WeightD {
						break
					}
				}
				if it.Prefix {
					s += "*"
				}
			}
			return s
		case QueryStop:
			return "$"
		}
		pr := prec(it.Op)
		var s string
		if it.Op == OpNot {
			s = "!" + render(i+1, pr)
		} else {
			s = render(i+it.Left, pr) + " " + string(it.Op) + " " + render(i+1, pr+1)
		}
		if pr < parentPrec {
			return "(" + s + ")"
		}
		return s
	}
	return render(0, 0)
}

// subtreeEnd returns the index one past the subtree rooted at i.
func (q *TSQuery) subtreeEnd(i int) int {
	it := q.Items[i]
	if it.Type != QueryOpr {
		return i + 1
	}
	if it.Op == OpNot {
		return q.subtreeEnd(i + 1)
	}
	return q.subtreeEnd(i + it.Left)
}

// ForEachVal calls fn for every value leaf in item order.
func (q *TSQuery) ForEachVal(fn func(*Item)) {
	for i := range q.Items {
		if q.Items[i].Type == QueryVal {
			fn(&q.Items[i])
		}
	}
}

// Weightless reports whether no leaf carries a weight mask.
func (q *TSQuery) Weightless() bool {
	for i := range q.Items {
		if q.Items[i].Type == QueryVal && q.Items[i].Weights != 0 {
			return false
		}
	}
	return true
}
