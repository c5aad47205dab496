package intset

import (
	"strconv"
	"strings"

	"github.com/hupe1980/gistkit/errcode"
	"github.com/hupe1980/gistkit/internal/sigbits"
)

// The query_int language: boolean expressions over set members, for example
// "1&(2|3)" or "!5&(1|2)". Queries are stored in reverse-Polish order with
// left-operand back-links, the same layout the text-search queries use.

// ItemType discriminates query items.
type ItemType uint8

const (
	ItemVal ItemType = iota + 1
	ItemOpr
)

// Operators.
const (
	OpNot byte = '!'
	OpAnd byte = '&'
	OpOr  byte = '|'
)

// QueryItem is one RPN slot: either a value or an operator. For operators,
// Left is the offset from this item to the root of its left subtree (always
// negative); the right operand is the item immediately before the operator.
type QueryItem struct {
	Type ItemType
	Val  int32
	Op   byte
	Left int
}

// Query is a parsed query_int expression. Items are in reverse-Polish
// order; the root is the last item.
type Query struct {
	Items []QueryItem
}

// maxQueryItems guards against adversarial inputs.
const maxQueryItems = 32768

// maxEvalDepth bounds evaluator recursion; adequate for ten thousand
// operators on either branch.
const maxEvalDepth = 16384

type queryParser struct {
	in  string
	pos int
}

// ParseQuery parses a query_int expression into RPN form.
func ParseQuery(s string) (*Query, error) {
	p := &queryParser{in: s}
	items, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.pos != len(p.in) {
		return nil, p.syntax("unexpected %q", p.in[p.pos:])
	}
	if len(items) > maxQueryItems {
		return nil, errcode.Newf(errcode.CodeLimitExceeded, "query_int has %d items, maximum is %d", len(items), maxQueryItems)
	}
	q := &Query{Items: items}
	q.fixLeftLinks()
	return q, nil
}

func (p *queryParser) syntax(format string, args ...any) error {
	return errcode.Newf(errcode.CodeSyntax, "invalid query_int: "+format, args...).
		WithDetail("at position %d of %q", p.pos, p.in)
}

func (p *queryParser) skip() {
	for p.pos < len(p.in) && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t') {
		p.pos++
	}
}

func (p *queryParser) eat(b byte) bool {
	p.skip()
	if p.pos < len(p.in) && p.in[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

// Recursive descent emitting postfix: or := and ('|' and)*.
func (p *queryParser) parseOr() ([]QueryItem, error) {
	items, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.eat(OpOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		items = append(append(items, right...), QueryItem{Type: ItemOpr, Op: OpOr})
	}
	return items, nil
}

func (p *queryParser) parseAnd() ([]QueryItem, error) {
	items, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.eat(OpAnd) {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		items = append(append(items, right...), QueryItem{Type: ItemOpr, Op: OpAnd})
	}
	return items, nil
}

func (p *queryParser) parseNot() ([]QueryItem, error) {
	if p.eat(OpNot) {
		items, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return append(items, QueryItem{Type: ItemOpr, Op: OpNot}), nil
	}
	return p.parseAtom()
}

func (p *queryParser) parseAtom() ([]QueryItem, error) {
	if p.eat('(') {
		items, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.eat(')') {
			return nil, p.syntax("expected ')'")
		}
		return items, nil
	}
	p.skip()
	start := p.pos
	if p.pos < len(p.in) && (p.in[p.pos] == '-' || p.in[p.pos] == '+') {
		p.pos++
	}
	for p.pos < len(p.in) && p.in[p.pos] >= '0' && p.in[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos || (p.pos-start == 1 && !isDigit(p.in[start])) {
		return nil, p.syntax("expected an integer")
	}
	v, err := strconv.ParseInt(p.in[start:p.pos], 10, 32)
	if err != nil {
		return nil, p.syntax("%q is out of int32 range", p.in[start:p.pos])
	}
	return []QueryItem{{Type: ItemVal, Val: int32(v)}}, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// fixLeftLinks computes each operator's back-link to the root of its left
// subtree in a single pass, using the invariant that the right operand sits
// immediately before the operator.
func (q *Query) fixLeftLinks() {
	var walk func(root int) int // returns index of the subtree's leftmost boundary
	walk = func(root int) int {
		it := &q.Items[root]
		if it.Type == ItemVal {
			return root
		}
		if it.Op == OpNot {
			// Single operand at root-1; Left mirrors it for uniform walking.
			start := walk(root - 1)
			it.Left = root - 1 - root
			return start
		}
		rightStart := walk(root - 1)
		leftRoot := rightStart - 1
		start := walk(leftRoot)
		it.Left = leftRoot - root
		return start
	}
	if len(q.Items) > 0 {
		walk(len(q.Items) - 1)
	}
}

// Execute evaluates the query with a membership callback. When calcnot is
// false the NOT branches are treated as true, the relaxation needed for
// lossy signature checks.
func (q *Query) Execute(check func(int32) bool, calcnot bool) (bool, error) {
	if len(q.Items) == 0 {
		return false, nil
	}
	return q.exec(len(q.Items)-1, check, calcnot, 0)
}

func (q *Query) exec(i int, check func(int32) bool, calcnot bool, depth int) (bool, error) {
	if depth > maxEvalDepth {
		return false, errcode.Newf(errcode.CodeLimitExceeded, "query_int nesting exceeds depth limit %d", maxEvalDepth)
	}
	it := q.Items[i]
	if it.Type == ItemVal {
		return check(it.Val), nil
	}
	switch it.Op {
	case OpNot:
		if !calcnot {
			return true, nil
		}
		v, err := q.exec(i-1, check, calcnot, depth+1)
		return !v, err
	case OpAnd:
		l, err := q.exec(i+it.Left, check, calcnot, depth+1)
		if err != nil || !l {
			return false, err
		}
		return q.exec(i-1, check, calcnot, depth+1)
	case OpOr:
		l, err := q.exec(i+it.Left, check, calcnot, depth+1)
		if err != nil || l {
			return l, err
		}
		return q.exec(i-1, check, calcnot, depth+1)
	}
	return false, errcode.Newf(errcode.CodeInternal, "query_int has unknown operator %q", it.Op)
}

// MatchArray evaluates the query against a sorted set.
func (q *Query) MatchArray(a []int32) (bool, error) {
	return q.Execute(func(v int32) bool { return ContainsOne(a, v) }, true)
}

// MatchSignature evaluates the query against a bit signature. The answer is
// lossy: NOT cannot be proved, so it evaluates as true.
func (q *Query) MatchSignature(sign sigbits.Signature) (bool, error) {
	return q.Execute(func(v int32) bool { return sign.TestHash(sigbits.HashInt32(v)) }, false)
}

// Values returns the distinct values referenced by the query.
func (q *Query) Values() []int32 {
	var vals []int32
	for _, it := range q.Items {
		if it.Type == ItemVal {
			vals = append(vals, it.Val)
		}
	}
	return SortUniq(vals)
}

// String renders the query back to infix form.
func (q *Query) String() string {
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
		if it.Type == ItemVal {
			return strconv.FormatInt(int64(it.Val), 10)
		}
		p := prec(it.Op)
		var s string
		if it.Op == OpNot {
			s = "!" + render(i-1, p)
		} else {
			s = render(i+it.Left, p) + string(it.Op) + render(i-1, p+1)
		}
		if p < parentPrec {
			return "(" + s + ")"
		}
		return s
	}
	var b strings.Builder
	b.WriteString(render(len(q.Items)-1, 0))
	return b.String()
}
