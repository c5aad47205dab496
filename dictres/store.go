// Package dictres loads dictionary resources (stop lists, synonym pairs,
// ispell affix and root files, thesaurus rules) from local or remote
// stores, with transparent decompression by file extension. It exists so
// that a host can ship its dictionary files next to the database, in an
// object store, or baked into a test, behind one interface.
package dictres

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/hupe1980/gistkit/internal/mmap"
)

// ErrNotFound is returned when a resource does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// Store is a read-only source of named dictionary resources.
type Store interface {
	// Open opens a resource for reading. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// mmapThreshold is the file size above which LocalStore maps instead of
// reading through a descriptor.
const mmapThreshold = 1 << 20

// LocalStore serves resources from a directory. Files above the mapping
// threshold are memory-mapped, so repeated configuration loads of big
// ispell or thesaurus files share the page cache.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	path := filepath.Join(s.root, name)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.Size() < mmapThreshold {
		return os.Open(path)
	}
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	// Dictionary files are parsed front to back.
	_ = m.Advise(mmap.AccessSequential)
	return &mappedFile{Reader: bytes.NewReader(m.Bytes()), m: m}, nil
}

type mappedFile struct {
	*bytes.Reader
	m *mmap.Mapping
}

func (f *mappedFile) Close() error { return f.m.Close() }

// MemoryStore keeps resources in a map. It backs tests and embedded
// configurations. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	resources map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{resources: make(map[string][]byte)}
}

// Put stores a resource, replacing any previous content.
func (s *MemoryStore) Put(name string, data []byte) {
	copied := make([]byte, len(data))
	copy(copied, data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[name] = copied
}

func (s *MemoryStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.resources[name]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// WithRateLimit wraps a store so that opens wait on the limiter. Remote
// stores sit behind this when many configurations load concurrently.
func WithRateLimit(inner Store, limiter *rate.Limiter) Store {
	return &rateLimitedStore{inner: inner, limiter: limiter}
}

type rateLimitedStore struct {
	inner   Store
	limiter *rate.Limiter
}

func (s *rateLimitedStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Open(ctx, name)
}

// compressionExt reports the recognized compression suffix of a name.
func compressionExt(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".gz", ".zst", ".lz4":
		return ext
	}
	return ""
}
