package gin

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/gistkit/tsearch"
)

// MemoryIndexOptions configure the in-memory index.
type MemoryIndexOptions struct {
	// Logger receives bulk-load progress.
	Logger *slog.Logger
}

// MemoryIndex is a posting-list index over document ids. It answers
// queries lossily: every hit must be rechecked against the document's
// vector, which the index does not keep.
type MemoryIndex struct {
	mu       sync.RWMutex
	postings map[string]*roaring.Bitmap
	docs     *roaring.Bitmap
	logger   *slog.Logger
}

// NewMemoryIndex returns an empty index.
func NewMemoryIndex(optFns ...func(o *MemoryIndexOptions)) *MemoryIndex {
	opts := MemoryIndexOptions{Logger: slog.Default()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &MemoryIndex{
		postings: make(map[string]*roaring.Bitmap),
		docs:     roaring.New(),
		logger:   opts.Logger,
	}
}

// Add indexes a document's vector under the given id. Re-adding an id
// extends its postings; callers replacing a document delete it first.
func (idx *MemoryIndex) Add(id uint32, v *tsearch.TSVector) {
	keys := ExtractVector(v)
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.docs.Add(id)
	for _, key := range keys {
		b, ok := idx.postings[key]
		if !ok {
			b = roaring.New()
			idx.postings[key] = b
		}
		b.Add(id)
	}
}

// Delete removes a document given the vector it was indexed with.
func (idx *MemoryIndex) Delete(id uint32, v *tsearch.TSVector) {
	keys := ExtractVector(v)
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.docs.Remove(id)
	for _, key := range keys {
		if b, ok := idx.postings[key]; ok {
			b.Remove(id)
			if b.IsEmpty() {
				delete(idx.postings, key)
			}
		}
	}
}

// Len returns the number of indexed documents.
func (idx *MemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return int(idx.docs.GetCardinality())
}

// BulkLoad normalizes and indexes a batch of documents, parallelizing
// the text analysis across the available CPUs.
func (idx *MemoryIndex) BulkLoad(ctx context.Context, cfg *tsearch.Config, docs map[uint32]string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for id, text := range docs {
		id, text := id, text
		g.Go(func() error {
			v, err := cfg.ToTSVector(ctx, text)
			if err != nil {
				return err
			}
			idx.Add(id, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	idx.logger.Debug("bulk load finished", slog.Int("documents", len(docs)))
	return nil
}

// keyBitmap materializes the documents holding a query key; prefix keys
// union every matching posting list. Callers hold the read lock.
func (idx *MemoryIndex) keyBitmap(key QueryKey) *roaring.Bitmap {
	if !key.Prefix {
		if b, ok := idx.postings[key.Value]; ok {
			return b
		}
		return roaring.New()
	}
	out := roaring.New()
	for lexeme, b := range idx.postings {
		if strings.HasPrefix(lexeme, key.Value) {
			out.Or(b)
		}
	}
	return out
}

// Search returns the ids whose indexed keys can satisfy the query. The
// result is lossy whenever recheck is true: weights, positions and
// negations must be verified against the stored vectors.
func (idx *MemoryIndex) Search(q *tsearch.TSQuery) (ids *roaring.Bitmap, recheck bool) {
	keys, required, mode := ExtractQuery(q)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	bitmaps := make([]*roaring.Bitmap, len(keys))
	for i, key := range keys {
		bitmaps[i] = idx.keyBitmap(key)
	}

	// In the default mode every match holds at least one required key, so
	// the union of their postings is a complete candidate set.
	candidates := roaring.New()
	if mode == SearchAll {
		candidates = idx.docs.Clone()
	} else {
		for i := range keys {
			if required[i] {
				candidates.Or(bitmaps[i])
			}
		}
	}

	out := roaring.New()
	it := candidates.Iterator()
	for it.HasNext() {
		id := it.Next()
		match, _ := Consistent(q, func(i int) bool {
			return bitmaps[i].Contains(id)
		})
		if match {
			out.Add(id)
		}
	}
	return out, true
}
