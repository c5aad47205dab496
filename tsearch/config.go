package tsearch

import (
	"context"
	"log/slog"

	"github.com/hupe1980/gistkit/tsearch/dict"
	"github.com/hupe1980/gistkit/tsearch/textparser"
)

// ConfigOptions configure a text-search configuration.
type ConfigOptions struct {
	// Logger receives the clamp and stop-word notices.
	Logger *slog.Logger
}

// Config ties the parser to the dictionary chains selected per token type.
// It is immutable after construction and safe for concurrent use.
type Config struct {
	mapping dict.Mapping
	logger  *slog.Logger
}

// NewConfig returns a configuration over the given mapping.
func NewConfig(mapping dict.Mapping, optFns ...func(o *ConfigOptions)) *Config {
	opts := ConfigOptions{Logger: slog.Default()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Config{mapping: mapping, logger: opts.Logger}
}

// Mapping returns the token-type mapping the configuration was built with.
func (c *Config) Mapping() dict.Mapping { return c.mapping }

// Lexize normalizes a single word through the chain for the given token
// type, without lookahead. It is the debugging entry point.
func (c *Config) Lexize(typ textparser.TokenType, word string) ([]dict.Lexeme, bool) {
	for _, d := range c.mapping[typ] {
		var sub dict.Substate
		lex, ok := d.Lexize(word, &sub)
		if sub.GetNext {
			// Multi-word dictionaries cannot finish on one word; feed the
			// end marker so they fall back to their single-word answer.
			sub.GetNext = false
			lex, ok = d.Lexize("", &sub)
		}
		if ok {
			return lex, true
		}
	}
	return nil, false
}

// ToTSVector parses the text, normalizes every indexable token through its
// dictionary chain, and assembles the resulting lexemes into a vector.
// Word positions count indexable tokens from 1; stop words keep their
// position slot but emit nothing.
func (c *Config) ToTSVector(ctx context.Context, text string) (*TSVector, error) {
	tokens, err := textparser.Tokenize(ctx, text)
	if err != nil {
		return nil, err
	}
	results, err := dict.Lexize(ctx, c.mapping, tokens)
	if err != nil {
		return nil, err
	}

	var terms []rawTerm
	for _, res := range results {
		if res.Stop() {
			continue
		}
		pos := clampPosition(res.Index+1, c.logger)
		for _, lx := range res.Lexemes {
			if lx.Flags&dict.AddPos != 0 {
				pos = clampPosition(pos+1, c.logger)
			}
			terms = append(terms, rawTerm{lexeme: lx.Value, pos: NewWordPos(pos, WeightD), haspos: true})
		}
	}
	return buildVector(terms, VectorOptions{Logger: c.logger})
}
