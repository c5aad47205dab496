package dict

import (
	"strings"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"
	"github.com/blevesearch/snowballstem/russian"

	"github.com/hupe1980/gistkit/errcode"
)

// StemFunc is a snowball stemmer operating on a mutable environment.
type StemFunc func(env *snowballstem.Env) bool

var stemmers = map[string]StemFunc{
	"english": english.Stem,
	"russian": russian.Stem,
}

// Snowball lowercases and stems. It recognizes every word, so it belongs
// at the end of a chain; words on its stop list come out as stop words.
type Snowball struct {
	stem StemFunc
	stop *StopList
}

// NewSnowball creates a stemming dictionary for a named language. The stop
// list may be nil.
func NewSnowball(language string, stop *StopList) (*Snowball, error) {
	stem, ok := stemmers[language]
	if !ok {
		return nil, errcode.Newf(errcode.CodeFeatureNotSupported, "no snowball stemmer for language %q", language)
	}
	return &Snowball{stem: stem, stop: stop}, nil
}

// NewSnowballFunc wraps a caller-supplied stemmer, for languages outside
// the built-in registry.
func NewSnowballFunc(stem StemFunc, stop *StopList) *Snowball {
	return &Snowball{stem: stem, stop: stop}
}

// Lexize implements Dictionary.
func (d *Snowball) Lexize(word string, sub *Substate) ([]Lexeme, bool) {
	lower := strings.ToLower(word)
	if d.stop.Contains(lower) {
		return nil, true
	}
	env := snowballstem.NewEnv(lower)
	d.stem(env)
	return One(env.Current()), true
}
