package dict

import (
	"bufio"
	"io"
	"log/slog"
	"strings"

	"github.com/hupe1980/gistkit/errcode"
)

// Thesaurus substitutes multi-word phrases. Rules are loaded as
// "sample words : substitute words"; both sides are normalized through a
// sub-dictionary at load time. At runtime the dictionary walks a trie of
// pattern words, requesting more input while a longer pattern is still
// possible and falling back to the longest completed match.
type Thesaurus struct {
	sub  Dictionary
	root *thsNode
}

type thsNode struct {
	children map[string]*thsNode
	subst    []Lexeme
}

// thsWildcard matches any stop word in a pattern position.
const thsWildcard = "?"

// ThesaurusOptions configure rule loading.
type ThesaurusOptions struct {
	// Logger receives notices about skipped rules.
	Logger *slog.Logger
}

// NewThesaurus loads rules from r, normalizing both sides through sub.
// Rules whose sample or substitution contains a stop word are skipped with
// a Warn notice; a literal "?" in the sample matches any stop word.
func NewThesaurus(r io.Reader, sub Dictionary, optFns ...func(o *ThesaurusOptions)) (*Thesaurus, error) {
	opts := ThesaurusOptions{Logger: slog.Default()}
	for _, fn := range optFns {
		fn(&opts)
	}
	d := &Thesaurus{sub: sub, root: &thsNode{}}

	sc := bufio.NewScanner(r)
	line := 0
rules:
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		sample, subst, ok := strings.Cut(text, ":")
		if !ok {
			return nil, errcode.Newf(errcode.CodeSyntax, "thesaurus line %d has no ':' separator", line)
		}

		var pattern []string
		for _, w := range strings.Fields(sample) {
			if w == thsWildcard {
				pattern = append(pattern, thsWildcard)
				continue
			}
			norm, stop := d.normalize(w)
			if stop {
				opts.Logger.Warn("thesaurus sample contains a stop word, rule skipped; use ? to match stop words",
					slog.Int("line", line), slog.String("word", w))
				continue rules
			}
			pattern = append(pattern, norm)
		}
		if len(pattern) == 0 {
			return nil, errcode.Newf(errcode.CodeSyntax, "thesaurus line %d has an empty sample", line)
		}

		var out []Lexeme
		for _, w := range strings.Fields(subst) {
			norm, stop := d.normalize(w)
			if stop {
				opts.Logger.Warn("thesaurus substitution contains a stop word, rule skipped",
					slog.Int("line", line), slog.String("word", w))
				continue rules
			}
			lex := Lexeme{Value: norm}
			if len(out) > 0 {
				lex.Flags |= AddPos
			}
			out = append(out, lex)
		}
		if len(out) == 0 {
			return nil, errcode.Newf(errcode.CodeSyntax, "thesaurus line %d has an empty substitution", line)
		}

		node := d.root
		for _, w := range pattern {
			if node.children == nil {
				node.children = make(map[string]*thsNode)
			}
			next := node.children[w]
			if next == nil {
				next = &thsNode{}
				node.children[w] = next
			}
			node = next
		}
		node.subst = out
	}
	if err := sc.Err(); err != nil {
		return nil, errcode.Wrapf(err, errcode.CodeInternal, "reading thesaurus")
	}
	return d, nil
}

// normalize maps a surface word to its pattern form: the sub-dictionary's
// first lexeme, the wildcard for stop words, or the lowercased word when
// the sub-dictionary does not recognize it.
func (d *Thesaurus) normalize(word string) (string, bool) {
	var sub Substate
	lex, ok := d.sub.Lexize(word, &sub)
	if !ok {
		return strings.ToLower(word), false
	}
	if len(lex) == 0 {
		return thsWildcard, true
	}
	return lex[0].Value, false
}

type thsState struct {
	node           *thsNode
	tentative      []Lexeme
	sinceTentative int
}

// Lexize implements Dictionary with the multi-word protocol. An empty word
// is the end-of-stream marker.
func (d *Thesaurus) Lexize(word string, sub *Substate) ([]Lexeme, bool) {
	st, _ := sub.private.(*thsState)
	if st == nil {
		if word == "" {
			return nil, false
		}
		child := d.childFor(d.root, word)
		if child == nil {
			return nil, false
		}
		return d.advance(sub, &thsState{}, child)
	}

	st.sinceTentative++
	var child *thsNode
	if word != "" {
		child = d.childFor(st.node, word)
	}
	if child != nil {
		return d.advance(sub, st, child)
	}

	sub.GetNext = false
	sub.private = nil
	if st.tentative != nil {
		sub.Unconsumed = st.sinceTentative
		return st.tentative, true
	}
	return nil, false
}

func (d *Thesaurus) childFor(node *thsNode, word string) *thsNode {
	norm, stop := d.normalize(word)
	if c := node.children[norm]; c != nil {
		return c
	}
	if stop {
		return node.children[thsWildcard]
	}
	return nil
}

// advance moves into child and decides whether the match is complete, a
// dead end, or needs more input.
func (d *Thesaurus) advance(sub *Substate, st *thsState, child *thsNode) ([]Lexeme, bool) {
	st.node = child
	if child.subst != nil && len(child.children) == 0 {
		sub.GetNext = false
		sub.private = nil
		sub.Unconsumed = 0
		return child.subst, true
	}
	if child.subst != nil {
		st.tentative = child.subst
		st.sinceTentative = 0
	}
	sub.GetNext = true
	sub.private = st
	return nil, true
}
