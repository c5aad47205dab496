package tsearch

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/hupe1980/gistkit/errcode"
	"github.com/hupe1980/gistkit/tsearch/dict"
	"github.com/hupe1980/gistkit/tsearch/textparser"
)

// HeadlineOptions control fragment selection and markup.
type HeadlineOptions struct {
	// StartSel and StopSel wrap every matched word.
	StartSel string
	StopSel  string
	// MinWords and MaxWords bound the fragment size in words.
	MinWords int
	MaxWords int
	// ShortWord is the length at or under which a word cannot start or
	// end the fragment.
	ShortWord int
	// HighlightAll marks matches across the whole document instead of
	// selecting a fragment.
	HighlightAll bool
}

// DefaultHeadlineOptions mirrors the stock option values.
func DefaultHeadlineOptions() HeadlineOptions {
	return HeadlineOptions{
		StartSel:  "<b>",
		StopSel:   "</b>",
		MinWords:  15,
		MaxWords:  35,
		ShortWord: 3,
	}
}

// ParseHeadlineOptions reads the comma-separated key=value option string;
// values may be double-quoted. Unknown keys are rejected.
func ParseHeadlineOptions(s string) (HeadlineOptions, error) {
	opts := DefaultHeadlineOptions()
	for _, part := range splitOptionList(s) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return opts, errcode.Newf(errcode.CodeSyntax, "headline option %q has no value", strings.TrimSpace(part))
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		switch strings.ToLower(key) {
		case "startsel":
			opts.StartSel = value
		case "stopsel":
			opts.StopSel = value
		case "minwords":
			n, err := parsePositiveInt(key, value)
			if err != nil {
				return opts, err
			}
			opts.MinWords = n
		case "maxwords":
			n, err := parsePositiveInt(key, value)
			if err != nil {
				return opts, err
			}
			opts.MaxWords = n
		case "shortword":
			n, err := parseNonNegativeInt(key, value)
			if err != nil {
				return opts, err
			}
			opts.ShortWord = n
		case "highlightall":
			switch strings.ToLower(value) {
			case "true", "on", "1", "t", "y", "yes":
				opts.HighlightAll = true
			case "false", "off", "0", "f", "n", "no":
				opts.HighlightAll = false
			default:
				return opts, errcode.Newf(errcode.CodeSyntax, "headline option HighlightAll: %q is not a boolean", value)
			}
		default:
			return opts, errcode.Newf(errcode.CodeSyntax, "unrecognized headline option %q", key)
		}
	}
	if opts.MinWords > opts.MaxWords {
		return opts, errcode.Newf(errcode.CodeSyntax, "MinWords must not exceed MaxWords")
	}
	return opts, nil
}

// splitOptionList splits on commas outside double quotes.
func splitOptionList(s string) []string {
	var parts []string
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func parsePositiveInt(key, value string) (int, error) {
	n, err := parseNonNegativeInt(key, value)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errcode.Newf(errcode.CodeSyntax, "headline option %s must be positive", key)
	}
	return n, nil
}

func parseNonNegativeInt(key, value string) (int, error) {
	n := 0
	if value == "" {
		return 0, errcode.Newf(errcode.CodeSyntax, "headline option %s: empty value", key)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, errcode.Newf(errcode.CodeSyntax, "headline option %s: %q is not a number", key, value)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// hlWord is one indexable token of the headline document with its
// normalization and match state.
type hlWord struct {
	tokIdx  int
	runeLen int
	matched bool
}

// Headline renders the best query-matching fragment of the text, wrapping
// matched words in the selection markers. With HighlightAll the whole
// document is returned with matches marked; HTML tags pass through only
// in that mode.
func (c *Config) Headline(ctx context.Context, text string, q *TSQuery, optFns ...func(o *HeadlineOptions)) (string, error) {
	opts := DefaultHeadlineOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	tokens, err := textparser.Tokenize(ctx, text)
	if err != nil {
		return "", err
	}
	results, err := dict.Lexize(ctx, c.mapping, tokens)
	if err != nil {
		return "", err
	}

	words := collectWords(tokens)
	markMatches(words, results, q)

	if opts.HighlightAll {
		return renderTokens(tokens, matchedTokens(words, 0, len(words)-1), 0, len(tokens)-1, true, opts), nil
	}

	start, end := selectFragment(words, q, opts)
	if start > end {
		return "", nil
	}
	return renderTokens(tokens, matchedTokens(words, start, end), words[start].tokIdx, words[end].tokIdx, false, opts), nil
}

// matchedTokens collects the token indexes of the matched words in the
// window.
func matchedTokens(words []hlWord, start, end int) map[int]bool {
	matched := make(map[int]bool)
	for i := start; i >= 0 && i <= end && i < len(words); i++ {
		if words[i].matched {
			matched[words[i].tokIdx] = true
		}
	}
	return matched
}

func collectWords(tokens []textparser.Token) []hlWord {
	var words []hlWord
	for i, tok := range tokens {
		if tok.Type.Indexable() {
			words = append(words, hlWord{tokIdx: i, runeLen: utf8.RuneCountInString(tok.Value)})
		}
	}
	return words
}

// markMatches flags every word whose normalization satisfies some value
// leaf of the query. A multi-word dictionary match flags its whole span.
func markMatches(words []hlWord, results []dict.Result, q *TSQuery) {
	for _, res := range results {
		if res.Stop() {
			continue
		}
		hit := false
		q.ForEachVal(func(it *Item) {
			if hit {
				return
			}
			for _, lx := range res.Lexemes {
				if leafSatisfiedBy(it, lx.Value) {
					hit = true
					return
				}
			}
		})
		if !hit {
			continue
		}
		for i := res.Index; i < res.Index+res.Span && i < len(words); i++ {
			words[i].matched = true
		}
	}
}

// selectFragment picks the window of [MinWords..MaxWords] words holding
// the most matches, anchored on the densest cover of matched words, with
// short words trimmed off the edges.
func selectFragment(words []hlWord, q *TSQuery, opts HeadlineOptions) (int, int) {
	if len(words) == 0 {
		return 0, -1
	}

	bestStart, bestEnd, bestScore := -1, -1, -1
	for i := range words {
		if !words[i].matched {
			continue
		}
		end := i
		score := 0
		for j := i; j < len(words) && j < i+opts.MaxWords; j++ {
			if words[j].matched {
				end = j
				score++
			}
		}
		if score > bestScore || (score == bestScore && end-i < bestEnd-bestStart) {
			bestStart, bestEnd, bestScore = i, end, score
		}
	}

	if bestStart < 0 {
		// No match anywhere: show the leading words.
		end := opts.MinWords - 1
		if end >= len(words) {
			end = len(words) - 1
		}
		return 0, trimShortTail(words, 0, end, opts.ShortWord)
	}

	// Grow the window around the match run up to MinWords, preferring
	// trailing context.
	start, end := bestStart, bestEnd
	for end-start+1 < opts.MinWords && end < len(words)-1 {
		end++
	}
	for end-start+1 < opts.MinWords && start > 0 {
		start--
	}

	for start < bestStart && words[start].runeLen <= opts.ShortWord {
		start++
	}
	return start, trimShortTail(words, bestEnd, end, opts.ShortWord)
}

// trimShortTail backs the end of the window off short words, never past
// floor.
func trimShortTail(words []hlWord, floor, end, shortWord int) int {
	for end > floor && words[end].runeLen <= shortWord {
		end--
	}
	return end
}

// renderTokens emits the source tokens in [fromTok, toTok], marking
// matches. Tags are dropped unless keepTags is set.
func renderTokens(tokens []textparser.Token, matched map[int]bool, fromTok, toTok int, keepTags bool, opts HeadlineOptions) string {
	if fromTok > toTok {
		return ""
	}
	var b strings.Builder
	for i := fromTok; i <= toTok; i++ {
		tok := tokens[i]
		if tok.Type == textparser.Tag && !keepTags {
			continue
		}
		if matched[i] {
			b.WriteString(opts.StartSel)
			b.WriteString(tok.Value)
			b.WriteString(opts.StopSel)
			continue
		}
		b.WriteString(tok.Value)
	}
	return b.String()
}
