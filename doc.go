// Package gistkit provides embeddable PostgreSQL-style indexable types
// for Go: multidimensional cubes, line segments with input precision,
// integer arrays with a boolean query language, and a full text search
// stack with configurable dictionary chains.
//
// The heart of the package tree is signature-based lossy indexing. Large
// values (cubes, arrays, document vectors) are summarized into fixed-size
// bitmap keys that an index can union and intersect cheaply; matches
// against the summaries are a superset of the true result and callers
// recheck against the original value.
//
// # Sub-packages
//
//   - cube: n-dimensional points and boxes with GiST union/penalty/picksplit
//   - seg: one-dimensional intervals carrying input precision through arithmetic
//   - intset: sorted integer sets, query_int boolean queries, RLE range keys
//   - tsearch: tsvector/tsquery, document parsing, ranking and headlines
//   - tsearch/textparser: the default 23-class document tokenizer
//   - tsearch/dict: stop lists, synonyms, snowball, ispell, thesaurus
//   - dictres: dictionary resource loading from local or object storage
//   - gin: inverted-index key extraction and consistency checking
//   - gist: generic signature keys with Guttman split
//   - stats: lossy counting statistics for array columns
//
// # Quick Start
//
// Text search through the default configuration catalog:
//
//	ctx := context.Background()
//	v, _ := gistkit.ToTSVector(ctx, "english", "a fat cat sat on a mat")
//	q, _ := gistkit.ToTSQuery(ctx, "english", "fat & cat")
//	if gistkit.Match(v, q) {
//	    ...
//	}
//
// Custom configurations are assembled from dictionary chains and
// registered under a name:
//
//	stop, _ := loader.StopList(ctx, "english.stop.gz")
//	stem, _ := dict.NewSnowball("english", stop)
//	cfg := tsearch.NewConfig(dict.Mapping{
//	    textparser.LatWord: {syn, stem},
//	})
//	gistkit.DefaultCatalog.Register("my_english", cfg)
package gistkit
