package dict

import (
	"bufio"
	"io"
	"strings"

	"github.com/hupe1980/gistkit/errcode"
)

// Ispell performs affix analysis: a word is reduced to every dictionary
// root that, under some affix rule carrying the root's flag, produces the
// word. The affix grammar supported is the SFX/PFX rule subset.
type Ispell struct {
	roots    map[string]string // root -> flag string
	suffixes []affixRule
	prefixes []affixRule
}

type affixRule struct {
	flag  byte
	strip string
	add   string
	cond  []condItem
}

// condItem is one position of an affix condition: a literal rune or a
// bracketed character class.
type condItem struct {
	lit    rune
	set    []rune
	negate bool
	any    bool
}

func (c condItem) match(r rune) bool {
	if c.any {
		return true
	}
	if c.set == nil {
		return r == c.lit
	}
	found := false
	for _, s := range c.set {
		if s == r {
			found = true
			break
		}
	}
	return found != c.negate
}

func parseCondition(s string) ([]condItem, error) {
	if s == "." {
		return nil, nil
	}
	var items []condItem
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '.':
			items = append(items, condItem{any: true})
		case '[':
			j := i + 1
			neg := false
			if j < len(rs) && rs[j] == '^' {
				neg = true
				j++
			}
			var set []rune
			for j < len(rs) && rs[j] != ']' {
				set = append(set, rs[j])
				j++
			}
			if j >= len(rs) {
				return nil, errcode.Newf(errcode.CodeSyntax, "affix condition %q has an unterminated class", s)
			}
			items = append(items, condItem{set: set, negate: neg})
			i = j
		default:
			items = append(items, condItem{lit: rs[i]})
		}
	}
	return items, nil
}

// matchEnd checks the condition against the last len(cond) runes.
func matchEnd(word string, cond []condItem) bool {
	rs := []rune(word)
	if len(rs) < len(cond) {
		return false
	}
	tail := rs[len(rs)-len(cond):]
	for i, c := range cond {
		if !c.match(tail[i]) {
			return false
		}
	}
	return true
}

// matchStart checks the condition against the first len(cond) runes.
func matchStart(word string, cond []condItem) bool {
	rs := []rune(word)
	if len(rs) < len(cond) {
		return false
	}
	for i, c := range cond {
		if !c.match(rs[i]) {
			return false
		}
	}
	return true
}

// NewIspell loads an affix file and a root dictionary. Affix lines are
// "SFX flag strip add condition" (and PFX likewise) under a "SFX flag Y/N
// count" header; roots are "word/FLAGS" or bare words.
func NewIspell(affix, roots io.Reader) (*Ispell, error) {
	d := &Ispell{roots: make(map[string]string)}

	sc := bufio.NewScanner(affix)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		kind := fields[0]
		if kind != "SFX" && kind != "PFX" {
			continue
		}
		if len(fields) == 4 && (fields[2] == "Y" || fields[2] == "N") {
			continue // rule-set header
		}
		if len(fields) < 5 {
			return nil, errcode.Newf(errcode.CodeSyntax, "affix line %d: want 5 fields, got %d", line, len(fields))
		}
		strip, add := fields[2], fields[3]
		if strip == "0" {
			strip = ""
		}
		if add = strings.SplitN(add, "/", 2)[0]; add == "0" {
			add = ""
		}
		cond, err := parseCondition(fields[4])
		if err != nil {
			return nil, err
		}
		rule := affixRule{flag: fields[1][0], strip: strip, add: strings.ToLower(add), cond: cond}
		if kind == "SFX" {
			d.suffixes = append(d.suffixes, rule)
		} else {
			d.prefixes = append(d.prefixes, rule)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errcode.Wrapf(err, errcode.CodeInternal, "reading affix file")
	}

	sc = bufio.NewScanner(roots)
	for sc.Scan() {
		entry := strings.TrimSpace(sc.Text())
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		word, flags, _ := strings.Cut(entry, "/")
		d.roots[strings.ToLower(word)] = flags
	}
	if err := sc.Err(); err != nil {
		return nil, errcode.Wrapf(err, errcode.CodeInternal, "reading ispell dictionary")
	}
	return d, nil
}

func (d *Ispell) rootHasFlag(root string, flag byte) bool {
	flags, ok := d.roots[root]
	return ok && strings.IndexByte(flags, flag) >= 0
}

// Lexize implements Dictionary: every valid analysis comes back as its own
// variant. Unknown words are not recognized.
func (d *Ispell) Lexize(word string, sub *Substate) ([]Lexeme, bool) {
	lower := strings.ToLower(word)
	var out []Lexeme
	seen := map[string]bool{}
	emit := func(root string) {
		if !seen[root] {
			seen[root] = true
			out = append(out, Lexeme{Value: root, NVariant: len(out) + 1})
		}
	}

	if _, ok := d.roots[lower]; ok {
		emit(lower)
	}
	for _, r := range d.suffixes {
		if r.add != "" && !strings.HasSuffix(lower, r.add) {
			continue
		}
		root := lower[:len(lower)-len(r.add)] + r.strip
		if root == "" || root == lower && r.add == "" && r.strip == "" {
			continue
		}
		if d.rootHasFlag(root, r.flag) && matchEnd(root, r.cond) {
			emit(root)
		}
	}
	for _, r := range d.prefixes {
		if r.add != "" && !strings.HasPrefix(lower, r.add) {
			continue
		}
		root := r.strip + lower[len(r.add):]
		if root == "" {
			continue
		}
		if d.rootHasFlag(root, r.flag) && matchStart(root, r.cond) {
			emit(root)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
