// Package gin implements inverted-index support for text search: key
// extraction from vectors and queries, the consistency check the index
// runs against its found-keys bitmap, and an in-memory posting-list index
// for hosts without their own inverted index.
package gin

import (
	"github.com/hupe1980/gistkit/tsearch"
)

// SearchMode tells the index how to combine the extracted keys.
type SearchMode int

const (
	// SearchDefault scans the posting lists of the required keys.
	SearchDefault SearchMode = iota
	// SearchAll scans every document; the query has no required key
	// (pure negations or only optional terms).
	SearchAll
)

// QueryKey is one extracted query key. A prefix key matches every indexed
// lexeme it is a prefix of.
type QueryKey struct {
	Value  string
	Prefix bool
}

// ExtractVector returns the index keys of a vector, one per lexeme,
// already unique and sorted.
func ExtractVector(v *tsearch.TSVector) []string {
	keys := make([]string, len(v.Entries))
	for i, e := range v.Entries {
		keys[i] = e.Lexeme
	}
	return keys
}

// hasRequiredValues reports whether every match of the subtree rooted at
// i must contain at least one of its value leaves. A NOT proves nothing
// about present keys; an OR requires both branches to require something.
func hasRequiredValues(q *tsearch.TSQuery, i int) bool {
	it := q.Items[i]
	switch it.Type {
	case tsearch.QueryVal:
		return true
	case tsearch.QueryStop:
		return false
	}
	switch it.Op {
	case tsearch.OpNot:
		return false
	case tsearch.OpAnd:
		return hasRequiredValues(q, i+it.Left) || hasRequiredValues(q, i+1)
	default:
		return hasRequiredValues(q, i+it.Left) && hasRequiredValues(q, i+1)
	}
}

// ExtractQuery flattens a query into its value keys in item order,
// together with the per-key requiredness and the search mode. A key is
// required when its leaf is not dominated by a negation; a query that
// requires nothing degrades to a full scan.
func ExtractQuery(q *tsearch.TSQuery) (keys []QueryKey, required []bool, mode SearchMode) {
	if len(q.Items) == 0 {
		return nil, nil, SearchAll
	}

	var walk func(i int, negated bool)
	walk = func(i int, negated bool) {
		it := q.Items[i]
		switch it.Type {
		case tsearch.QueryVal:
			keys = append(keys, QueryKey{Value: it.Value, Prefix: it.Prefix})
			required = append(required, !negated)
			return
		case tsearch.QueryStop:
			return
		}
		if it.Op == tsearch.OpNot {
			walk(i+1, !negated)
			return
		}
		// Keys stay in item order: the right operand precedes the left
		// subtree in the array.
		walk(i+1, negated)
		walk(i+it.Left, negated)
	}
	walk(0, false)

	mode = SearchAll
	if hasRequiredValues(q, 0) {
		mode = SearchDefault
	}
	return keys, required, mode
}

// Consistent evaluates the query against a found-keys oracle: check is
// indexed by the key's position in the extraction order. The answer is
// always lossy, since the index holds neither positions nor weights, so
// the caller must recheck positive results against the full vector.
func Consistent(q *tsearch.TSQuery, check func(i int) bool) (match, recheck bool) {
	if len(q.Items) == 0 {
		return false, false
	}
	idx := make(map[*tsearch.Item]int, len(q.Items))
	n := 0
	q.ForEachVal(func(it *tsearch.Item) {
		idx[it] = n
		n++
	})
	match = q.Execute(false, func(it *tsearch.Item) bool {
		return check(idx[it])
	})
	return match, true
}
