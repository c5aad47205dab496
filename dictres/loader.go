package dictres

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/gistkit/errcode"
	"github.com/hupe1980/gistkit/tsearch/dict"
)

// LoaderOptions configure a Loader.
type LoaderOptions struct {
	// Logger receives load notices, including the thesaurus rule
	// warnings.
	Logger *slog.Logger
}

// Loader builds dictionaries from a resource store, decompressing
// resources named *.gz, *.zst or *.lz4 on the fly.
type Loader struct {
	store  Store
	logger *slog.Logger
}

// NewLoader creates a loader over the store.
func NewLoader(store Store, optFns ...func(o *LoaderOptions)) *Loader {
	opts := LoaderOptions{Logger: slog.Default()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Loader{store: store, logger: opts.Logger}
}

// Open opens a resource, decoded.
func (l *Loader) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := l.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	decoded, err := decode(name, rc)
	if err != nil {
		rc.Close()
		return nil, errcode.Wrapf(err, errcode.CodeSyntax, "decoding %q", name)
	}
	return decoded, nil
}

// decode layers the decompressor selected by the name's extension over
// rc. The returned closer closes both.
func decode(name string, rc io.ReadCloser) (io.ReadCloser, error) {
	switch compressionExt(name) {
	case ".gz":
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
		return &layeredCloser{Reader: zr, closers: []io.Closer{zr, rc}}, nil
	case ".zst":
		zr, err := zstd.NewReader(rc)
		if err != nil {
			return nil, err
		}
		return &layeredCloser{Reader: zr, closers: []io.Closer{closerFunc(func() error {
			zr.Close()
			return nil
		}), rc}}, nil
	case ".lz4":
		return &layeredCloser{Reader: lz4.NewReader(rc), closers: []io.Closer{rc}}, nil
	}
	return rc, nil
}

type layeredCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *layeredCloser) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// StopList loads a one-word-per-line stop list.
func (l *Loader) StopList(ctx context.Context, name string) (*dict.StopList, error) {
	rc, err := l.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return dict.NewStopList(rc)
}

// Synonym loads a "from to" pair file.
func (l *Loader) Synonym(ctx context.Context, name string) (*dict.Synonym, error) {
	rc, err := l.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return dict.NewSynonym(rc)
}

// Ispell loads an affix file and a root list.
func (l *Loader) Ispell(ctx context.Context, affixName, rootsName string) (*dict.Ispell, error) {
	affix, err := l.Open(ctx, affixName)
	if err != nil {
		return nil, err
	}
	defer affix.Close()
	roots, err := l.Open(ctx, rootsName)
	if err != nil {
		return nil, err
	}
	defer roots.Close()
	return dict.NewIspell(affix, roots)
}

// Thesaurus loads a rule file, lexizing both rule sides through sub.
func (l *Loader) Thesaurus(ctx context.Context, name string, sub dict.Dictionary) (*dict.Thesaurus, error) {
	rc, err := l.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return dict.NewThesaurus(rc, sub, func(o *dict.ThesaurusOptions) { o.Logger = l.logger })
}
