package tsearch

import (
	"context"
	"log/slog"

	"github.com/hupe1980/gistkit/tsearch/dict"
	"github.com/hupe1980/gistkit/tsearch/textparser"
)

// qnode is the tree view of an item array, used for the rewriting passes.
// For NOT only right is set; for AND and OR right is the operand at self+1
// and left the one reached through the back-link.
type qnode struct {
	item        Item
	left, right *qnode
}

func (q *TSQuery) tree() *qnode {
	if len(q.Items) == 0 {
		return nil
	}
	var build func(i int) *qnode
	build = func(i int) *qnode {
		it := q.Items[i]
		n := &qnode{item: it}
		if it.Type != QueryOpr {
			return n
		}
		n.right = build(i + 1)
		if it.Op != OpNot {
			n.left = build(i + it.Left)
		}
		return n
	}
	return build(0)
}

func flatten(n *qnode) []Item {
	if n == nil {
		return nil
	}
	if n.item.Type != QueryOpr {
		return []Item{n.item}
	}
	if n.item.Op == OpNot {
		return consNot(flatten(n.right))
	}
	return cons(n.item.Op, flatten(n.left), flatten(n.right))
}

func fromTree(n *qnode) *TSQuery {
	return &TSQuery{Items: flatten(n)}
}

// andJoin folds nodes into a left-deep AND chain; nil nodes are skipped.
func andJoin(nodes []*qnode) *qnode {
	var out *qnode
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if out == nil {
			out = n
			continue
		}
		out = &qnode{item: Item{Type: QueryOpr, Op: OpAnd}, left: out, right: n}
	}
	return out
}

func orJoin(nodes []*qnode) *qnode {
	var out *qnode
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if out == nil {
			out = n
			continue
		}
		out = &qnode{item: Item{Type: QueryOpr, Op: OpOr}, left: out, right: n}
	}
	return out
}

// morphLeaf runs one raw operand through the parser and dictionary chains.
// Each source word yields its lexemes grouped by variant: lexemes of one
// variant are AND-ed, variants OR-ed, and the words AND-ed together. Words
// eaten by a stop dictionary become stop placeholders for the cleanup
// pass. The operand's weight mask and prefix flag carry to every lexeme.
func (c *Config) morphLeaf(ctx context.Context, leaf Item) (*qnode, error) {
	tokens, err := textparser.Tokenize(ctx, leaf.Value)
	if err != nil {
		return nil, err
	}
	results, err := dict.Lexize(ctx, c.mapping, tokens)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &qnode{item: Item{Type: QueryStop}}, nil
	}

	words := make([]*qnode, 0, len(results))
	for _, res := range results {
		if res.Stop() {
			words = append(words, &qnode{item: Item{Type: QueryStop}})
			continue
		}
		var variants []*qnode
		for i := 0; i < len(res.Lexemes); {
			j := i
			var group []*qnode
			for ; j < len(res.Lexemes) && res.Lexemes[j].NVariant == res.Lexemes[i].NVariant; j++ {
				group = append(group, &qnode{item: Item{
					Type:    QueryVal,
					Value:   res.Lexemes[j].Value,
					Weights: leaf.Weights,
					Prefix:  leaf.Prefix,
				}})
			}
			variants = append(variants, andJoin(group))
			i = j
		}
		words = append(words, orJoin(variants))
	}
	return andJoin(words), nil
}

// morphTree rewrites every value leaf of the raw tree through morphLeaf.
func (c *Config) morphTree(ctx context.Context, n *qnode) (*qnode, error) {
	if n == nil {
		return nil, nil
	}
	if n.item.Type == QueryVal {
		return c.morphLeaf(ctx, n.item)
	}
	if n.item.Type != QueryOpr {
		return n, nil
	}
	var err error
	if n.right, err = c.morphTree(ctx, n.right); err != nil {
		return nil, err
	}
	if n.left, err = c.morphTree(ctx, n.left); err != nil {
		return nil, err
	}
	return n, nil
}

// cleanStops removes stop placeholders bottom-up: a stop under NOT takes
// the whole NOT-subtree with it, a stop operand of AND or OR yields the
// other operand, and two stops yield a stop (nil).
func cleanStops(n *qnode) *qnode {
	if n == nil {
		return nil
	}
	if n.item.Type != QueryOpr {
		if n.item.Type == QueryStop {
			return nil
		}
		return n
	}
	if n.item.Op == OpNot {
		if n.right = cleanStops(n.right); n.right == nil {
			return nil
		}
		return n
	}
	l, r := cleanStops(n.left), cleanStops(n.right)
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	n.left, n.right = l, r
	return n
}

// stripNot drops every NOT subtree, for lossy index checks where negation
// cannot be proved. The usual nil propagation applies.
func stripNot(n *qnode) *qnode {
	if n == nil {
		return nil
	}
	if n.item.Type != QueryOpr {
		return n
	}
	if n.item.Op == OpNot {
		return nil
	}
	l, r := stripNot(n.left), stripNot(n.right)
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	n.left, n.right = l, r
	return n
}

// CleanStopWords removes the stop placeholders left by the dictionary
// pass. A query that collapses entirely is announced and returned empty.
func (q *TSQuery) CleanStopWords(logger *slog.Logger) *TSQuery {
	n := cleanStops(q.tree())
	if n == nil {
		if len(q.Items) > 0 {
			logger.Warn("text-search query contains only stop words or does not contain lexemes, ignored")
		}
		return &TSQuery{}
	}
	return fromTree(n)
}

// StripNegations returns the query with all NOT subtrees removed. An empty
// result means nothing indexable remains and every item must be rechecked.
func (q *TSQuery) StripNegations() *TSQuery {
	return fromTree(stripNot(q.tree()))
}

// ToTSQuery parses the boolean query syntax and normalizes every operand
// through the dictionary chains, expanding multi-variant normalizations
// into AND groups OR-ed across variants. Stop words vanish from the
// boolean structure afterwards.
func (c *Config) ToTSQuery(ctx context.Context, input string) (*TSQuery, error) {
	raw, err := ParseTSQuery(input)
	if err != nil {
		return nil, err
	}
	n, err := c.morphTree(ctx, raw.tree())
	if err != nil {
		return nil, err
	}
	return fromTree(n).CleanStopWords(c.logger), nil
}

// PlainToTSQuery treats the whole input as plain text and AND-joins all
// resulting lexemes; the boolean operators have no special meaning.
func (c *Config) PlainToTSQuery(ctx context.Context, input string) (*TSQuery, error) {
	n, err := c.morphLeaf(ctx, Item{Type: QueryVal, Value: input})
	if err != nil {
		return nil, err
	}
	return fromTree(n).CleanStopWords(c.logger), nil
}
