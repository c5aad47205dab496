package dict

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/hupe1980/gistkit/errcode"
)

// StopList is a sorted list of lowercased stop words.
type StopList struct {
	words []string
}

// NewStopList reads one word per line; blank lines and leading/trailing
// space are ignored.
func NewStopList(r io.Reader) (*StopList, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w != "" {
			words = append(words, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errcode.Wrapf(err, errcode.CodeInternal, "reading stop word list")
	}
	sort.Strings(words)
	return &StopList{words: words}, nil
}

// StopListOf builds a list from literal words, for configs assembled in
// code and for tests.
func StopListOf(words ...string) *StopList {
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}
	sort.Strings(lowered)
	return &StopList{words: lowered}
}

// Contains reports membership; the word must already be lowercased.
func (s *StopList) Contains(word string) bool {
	if s == nil {
		return false
	}
	i := sort.SearchStrings(s.words, word)
	return i < len(s.words) && s.words[i] == word
}

// Len returns the number of stop words.
func (s *StopList) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Simple lowercases every word and filters it against a stop list. With
// Accept set it recognizes everything and terminates the chain; with it
// unset non-stopwords fall through to the next dictionary.
type Simple struct {
	Stop   *StopList
	Accept bool
}

// NewSimple creates a simple dictionary. A nil stop list filters nothing.
func NewSimple(stop *StopList) *Simple {
	return &Simple{Stop: stop, Accept: true}
}

// Lexize implements Dictionary.
func (d *Simple) Lexize(word string, sub *Substate) ([]Lexeme, bool) {
	lower := strings.ToLower(word)
	if d.Stop.Contains(lower) {
		return nil, true
	}
	if !d.Accept {
		return nil, false
	}
	return One(lower), true
}
