package gistkit

import (
	"context"

	"github.com/hupe1980/gistkit/tsearch"
)

// ToTSVector converts a document to a tsvector through a configuration
// from the default catalog.
func ToTSVector(ctx context.Context, config, text string) (*tsearch.TSVector, error) {
	cfg, err := DefaultCatalog.Config(config)
	if err != nil {
		return nil, err
	}
	v, err := cfg.ToTSVector(ctx, text)
	lexemes := 0
	if v != nil {
		lexemes = v.Length()
	}
	DefaultCatalog.Logger().WithConfig(config).LogVectorize(ctx, lexemes, err)
	return v, err
}

// ToTSQuery parses and normalizes a boolean query through a
// configuration from the default catalog.
func ToTSQuery(ctx context.Context, config, input string) (*tsearch.TSQuery, error) {
	cfg, err := DefaultCatalog.Config(config)
	if err != nil {
		return nil, err
	}
	q, err := cfg.ToTSQuery(ctx, input)
	items := 0
	if q != nil {
		items = q.NumNode()
	}
	DefaultCatalog.Logger().WithConfig(config).LogQueryRewrite(ctx, items, err)
	return q, err
}

// PlainToTSQuery turns unstructured text into an AND query through a
// configuration from the default catalog.
func PlainToTSQuery(ctx context.Context, config, input string) (*tsearch.TSQuery, error) {
	cfg, err := DefaultCatalog.Config(config)
	if err != nil {
		return nil, err
	}
	q, err := cfg.PlainToTSQuery(ctx, input)
	items := 0
	if q != nil {
		items = q.NumNode()
	}
	DefaultCatalog.Logger().WithConfig(config).LogQueryRewrite(ctx, items, err)
	return q, err
}

// Headline highlights query matches in a document through a
// configuration from the default catalog.
func Headline(ctx context.Context, config, text string, q *tsearch.TSQuery, optFns ...func(o *tsearch.HeadlineOptions)) (string, error) {
	cfg, err := DefaultCatalog.Config(config)
	if err != nil {
		return "", err
	}
	h, err := cfg.Headline(ctx, text, q, optFns...)
	DefaultCatalog.Logger().WithConfig(config).LogHeadline(ctx, len(h), err)
	return h, err
}

// Match evaluates a query against a vector.
func Match(v *tsearch.TSVector, q *tsearch.TSQuery) bool {
	return tsearch.Match(v, q)
}
