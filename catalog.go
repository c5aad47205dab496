package gistkit

import (
	"sort"
	"sync"

	"github.com/hupe1980/gistkit/errcode"
	"github.com/hupe1980/gistkit/tsearch"
	"github.com/hupe1980/gistkit/tsearch/dict"
	"github.com/hupe1980/gistkit/tsearch/textparser"
)

// englishStopWords is the builtin stop list for the "english"
// configuration, matching the snowball project's list.
var englishStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
	"you", "your", "yours", "yourself", "yourselves",
	"he", "him", "his", "himself", "she", "her", "hers", "herself",
	"it", "its", "itself", "they", "them", "their", "theirs", "themselves",
	"what", "which", "who", "whom", "this", "that", "these", "those",
	"am", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "having", "do", "does", "did", "doing",
	"a", "an", "the", "and", "but", "if", "or", "because", "as",
	"until", "while", "of", "at", "by", "for", "with", "about",
	"against", "between", "into", "through", "during", "before",
	"after", "above", "below", "to", "from", "up", "down", "in",
	"out", "on", "off", "over", "under", "again", "further", "then",
	"once", "here", "there", "when", "where", "why", "how", "all",
	"any", "both", "each", "few", "more", "most", "other", "some",
	"such", "no", "nor", "not", "only", "own", "same", "so", "than",
	"too", "very", "s", "t", "can", "will", "just", "don", "should",
	"now",
}

// wordTypes are token classes fed through a stemmer; literalTypes keep
// their surface form.
var wordTypes = []textparser.TokenType{
	textparser.LatWord,
	textparser.CyrWord,
	textparser.UWord,
	textparser.LatHyphenWord,
	textparser.CyrHyphenWord,
	textparser.UHyphenWord,
	textparser.LatPartHyphenWord,
	textparser.CyrPartHyphenWord,
	textparser.UPartHyphenWord,
}

var literalTypes = []textparser.TokenType{
	textparser.Email,
	textparser.FURL,
	textparser.Host,
	textparser.URI,
	textparser.FilePath,
	textparser.Version,
	textparser.Scientific,
	textparser.Decimal,
	textparser.SignedInt,
	textparser.UnsignedInt,
}

// newEnglishConfig builds the default english configuration: snowball
// stemming with the builtin stop list for words, identity for literals.
func newEnglishConfig(logger *Logger) *tsearch.Config {
	stem, err := dict.NewSnowball("english", dict.StopListOf(englishStopWords...))
	if err != nil {
		// The english stemmer is compiled in.
		panic(err)
	}
	simple := dict.NewSimple(nil)

	mapping := make(dict.Mapping)
	for _, t := range wordTypes {
		mapping[t] = []dict.Dictionary{stem}
	}
	for _, t := range literalTypes {
		mapping[t] = []dict.Dictionary{simple}
	}
	return tsearch.NewConfig(mapping, func(o *tsearch.ConfigOptions) {
		o.Logger = logger.Logger
	})
}

// newSimpleConfig builds the "simple" configuration: every indexable
// token lowercased, nothing stemmed, nothing stopped.
func newSimpleConfig(logger *Logger) *tsearch.Config {
	simple := dict.NewSimple(nil)
	mapping := make(dict.Mapping)
	for _, t := range wordTypes {
		mapping[t] = []dict.Dictionary{simple}
	}
	for _, t := range literalTypes {
		mapping[t] = []dict.Dictionary{simple}
	}
	return tsearch.NewConfig(mapping, func(o *tsearch.ConfigOptions) {
		o.Logger = logger.Logger
	})
}

// CatalogOptions configure a catalog.
type CatalogOptions struct {
	// Logger receives operation logs and the notices emitted by the
	// builtin configurations.
	Logger *Logger
}

// Catalog is a named registry of text search configurations.
// Safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	configs map[string]*tsearch.Config
	logger  *Logger
}

// NewCatalog creates a catalog holding the builtin configurations.
func NewCatalog(optFns ...func(o *CatalogOptions)) *Catalog {
	opts := CatalogOptions{Logger: NewLogger(nil)}
	for _, fn := range optFns {
		fn(&opts)
	}
	c := &Catalog{logger: opts.Logger}
	c.Reset()
	return c
}

// Logger returns the catalog's logger.
func (c *Catalog) Logger() *Logger { return c.logger }

// Register adds or replaces a configuration under the given name.
func (c *Catalog) Register(name string, cfg *tsearch.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[name] = cfg
}

// Config looks up a configuration by name.
func (c *Catalog) Config(name string) (*tsearch.Config, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, ok := c.configs[name]
	if !ok {
		return nil, errcode.Newf(errcode.CodeFeatureNotSupported, "text search configuration %q does not exist", name)
	}
	return cfg, nil
}

// Names returns the registered configuration names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.configs))
	for name := range c.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every registration and restores the builtin
// configurations.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs = map[string]*tsearch.Config{
		"english": newEnglishConfig(c.logger),
		"simple":  newSimpleConfig(c.logger),
	}
}

// DefaultCatalog holds the builtin configurations, "english" and
// "simple". Hosts register their own alongside.
var DefaultCatalog = NewCatalog()
