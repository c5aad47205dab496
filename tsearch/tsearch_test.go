package tsearch

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gistkit/gist"
	"github.com/hupe1980/gistkit/tsearch/dict"
	"github.com/hupe1980/gistkit/tsearch/textparser"
)

func mustVector(t *testing.T, s string) *TSVector {
	t.Helper()
	v, err := ParseTSVector(s)
	require.NoError(t, err)
	return v
}

func mustQuery(t *testing.T, s string) *TSQuery {
	t.Helper()
	q, err := ParseTSQuery(s)
	require.NoError(t, err)
	return q
}

func englishConfig(t *testing.T, optFns ...func(o *ConfigOptions)) *Config {
	t.Helper()
	sb, err := dict.NewSnowball("english", dict.StopListOf("the", "over", "a"))
	require.NoError(t, err)
	return NewConfig(dict.Mapping{textparser.LatWord: {sb}}, optFns...)
}

func TestWordPos(t *testing.T) {
	p := NewWordPos(42, WeightB)
	assert.Equal(t, 42, p.Pos())
	assert.Equal(t, WeightB, p.Weight())
	assert.Equal(t, WeightA, p.WithWeight(WeightA).Weight())
	assert.Equal(t, 42, p.WithWeight(WeightA).Pos())
}

func TestParseTSVector(t *testing.T) {
	v := mustVector(t, "'fat':5 'rat':6 'cat':20")
	require.Equal(t, 3, v.Length())
	assert.Equal(t, "'cat':20 'fat':5 'rat':6", v.String())

	e := v.Lookup("fat")
	require.NotNil(t, e)
	assert.Equal(t, 5, e.Positions[0].Pos())
	assert.Nil(t, v.Lookup("dog"))
}

func TestParseTSVectorQuoting(t *testing.T) {
	v := mustVector(t, "'a b':1 plain")
	assert.Equal(t, "'a b':1 plain", v.String())
	require.NotNil(t, v.Lookup("a b"))

	_, err := ParseTSVector("'unterminated")
	assert.Error(t, err)
	_, err = ParseTSVector("word:")
	assert.Error(t, err)
	_, err = ParseTSVector("word:0")
	assert.Error(t, err)
}

func TestParseTSVectorMergesDuplicates(t *testing.T) {
	v := mustVector(t, "cat:3 cat:1 cat:3A")
	require.Equal(t, 1, v.Length())
	e := v.Lookup("cat")
	require.Len(t, e.Positions, 2)
	assert.Equal(t, 1, e.Positions[0].Pos())
	assert.Equal(t, 3, e.Positions[1].Pos())
}

func TestVectorWeightOps(t *testing.T) {
	v := mustVector(t, "'cat':3 'dog':7B")
	a := v.SetWeight(WeightA)
	assert.Equal(t, WeightA, a.Lookup("cat").Positions[0].Weight())
	assert.Equal(t, WeightA, a.Lookup("dog").Positions[0].Weight())

	onlyB := v.Filter(WeightB.Mask())
	assert.Equal(t, 1, onlyB.Length())
	require.NotNil(t, onlyB.Lookup("dog"))

	stripped := v.Strip()
	assert.Empty(t, stripped.Lookup("cat").Positions)
}

func TestConcatShiftsPositions(t *testing.T) {
	a := mustVector(t, "'cat':2")
	b := mustVector(t, "'dog':1")
	v, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Lookup("dog").Positions[0].Pos())
}

func TestParseTSQueryRoundTrip(t *testing.T) {
	for _, s := range []string{
		"fat",
		"fat & rat",
		"fat & (rat | cat)",
		"!dog",
		"fat & (rat | cat) & !dog",
		"cat:AB",
		"ca:*",
	} {
		q := mustQuery(t, s)
		assert.Equal(t, s, q.String(), "round trip of %q", s)
	}
}

func TestParseTSQueryErrors(t *testing.T) {
	for _, s := range []string{"", "fat &", "& fat", "(fat", "fat rat", "fat:"} {
		_, err := ParseTSQuery(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestMatchTruthTable(t *testing.T) {
	q := mustQuery(t, "fat & (rat | cat) & !dog")
	cases := []struct {
		doc  string
		want bool
	}{
		{"fat rat", true},
		{"fat cat", true},
		{"fat rat cat", true},
		{"fat rat dog", false},
		{"rat cat", false},
		{"fat", false},
	}
	for _, tc := range cases {
		v := mustVector(t, tc.doc)
		assert.Equal(t, tc.want, Match(v, q), "doc %q", tc.doc)
	}
}

func TestMatchWeights(t *testing.T) {
	v := mustVector(t, "'cat':3")
	vA := v.SetWeight(WeightA)

	qA := mustQuery(t, "cat:A")
	assert.True(t, Match(vA, qA))
	assert.False(t, Match(v, qA), "weight D position fails an A mask")
	assert.True(t, Match(v, mustQuery(t, "cat:D")))
	assert.True(t, Match(v, mustQuery(t, "cat")))

	assert.False(t, Match(v.Strip(), qA), "stripped vector fails weighted queries")
	assert.True(t, Match(v.Strip(), mustQuery(t, "cat")))
}

func TestMatchPrefix(t *testing.T) {
	v := mustVector(t, "catalog cat")
	assert.True(t, Match(v, mustQuery(t, "cata:*")))
	assert.True(t, Match(v, mustQuery(t, "cat:*")))
	assert.False(t, Match(v, mustQuery(t, "dog:*")))
}

func TestExecuteLossyNot(t *testing.T) {
	q := mustQuery(t, "fat & !dog")
	chk := func(it *Item) bool { return it.Value == "fat" || it.Value == "dog" }
	assert.False(t, q.Execute(true, chk))
	assert.True(t, q.Execute(false, chk), "negation degrades to true without calcnot")
}

func TestToTSVector(t *testing.T) {
	cfg := englishConfig(t)
	v, err := cfg.ToTSVector(context.Background(), "The quick brown foxes jump")
	require.NoError(t, err)

	assert.Equal(t, "'fox':4 'jump':5 'brown':3 'quick':2", v.String())
	assert.Nil(t, v.Lookup("the"), "stop words are discarded but keep their position slot")
}

func TestToTSQuery(t *testing.T) {
	cfg := englishConfig(t)
	q, err := cfg.ToTSQuery(context.Background(), "foxes & !dogs")
	require.NoError(t, err)
	assert.Equal(t, "fox & !dog", q.String())

	v, err := cfg.ToTSVector(context.Background(), "a fox jumped")
	require.NoError(t, err)
	assert.True(t, Match(v, q))
}

func TestToTSQueryDropsStopWords(t *testing.T) {
	cfg := englishConfig(t)
	q, err := cfg.ToTSQuery(context.Background(), "the & foxes")
	require.NoError(t, err)
	assert.Equal(t, "fox", q.String())
}

func TestToTSQueryAllStopWords(t *testing.T) {
	var warned bool
	logger := slog.New(slog.NewTextHandler(hitWriter{&warned}, nil))
	cfg := englishConfig(t, func(o *ConfigOptions) { o.Logger = logger })

	q, err := cfg.ToTSQuery(context.Background(), "the & over")
	require.NoError(t, err)
	assert.Zero(t, q.NumNode())
	assert.True(t, warned)
	assert.False(t, Match(mustVector(t, "fox"), q), "empty query matches nothing")
}

type hitWriter struct{ hit *bool }

func (w hitWriter) Write(p []byte) (int, error) {
	*w.hit = true
	return len(p), nil
}

func TestPlainToTSQuery(t *testing.T) {
	cfg := englishConfig(t)
	q, err := cfg.PlainToTSQuery(context.Background(), "the quick foxes!")
	require.NoError(t, err)
	assert.Equal(t, "quick & fox", q.String())
}

func TestStripNegations(t *testing.T) {
	q := mustQuery(t, "fat & !dog")
	assert.Equal(t, "fat", q.StripNegations().String())

	assert.Zero(t, mustQuery(t, "!dog").StripNegations().NumNode())
	assert.Equal(t, "fat & rat", mustQuery(t, "fat & rat").StripNegations().String())
}

func TestCover(t *testing.T) {
	v := mustVector(t, "'fat':5 'rat':6 'cat':20")

	c := newCoverer(v, mustQuery(t, "fat & rat"))
	p, q, ok := c.next()
	require.True(t, ok)
	assert.Equal(t, 5, p)
	assert.Equal(t, 6, q)
	_, _, ok = c.next()
	assert.False(t, ok)

	c = newCoverer(v, mustQuery(t, "fat & cat"))
	p, q, ok = c.next()
	require.True(t, ok)
	assert.Equal(t, 5, p)
	assert.Equal(t, 20, q)
}

func TestRankCD(t *testing.T) {
	v := mustVector(t, "'fat':5 'rat':6 'cat':20")

	assert.InDelta(t, 0.625, RankCD(10, v, mustQuery(t, "fat & cat"), 0), 1e-6)
	assert.InDelta(t, 1.0, RankCD(10, v, mustQuery(t, "fat & rat"), 0), 1e-6)
	assert.Zero(t, RankCD(10, v, mustQuery(t, "fat & dog"), 0))
}

func TestRank(t *testing.T) {
	q := mustQuery(t, "cat")
	often := mustVector(t, "'cat':1,5,10")
	once := mustVector(t, "'cat':2")
	assert.Greater(t, Rank(nil, often, q, 0), Rank(nil, once, q, 0))
	assert.Zero(t, Rank(nil, once, mustQuery(t, "dog"), 0))

	and := mustQuery(t, "fat & cat")
	near := mustVector(t, "'fat':1 'cat':2")
	far := mustVector(t, "'fat':1 'cat':90")
	assert.Greater(t, Rank(nil, near, and, 0), Rank(nil, far, and, 0))
}

func TestRankNormalization(t *testing.T) {
	q := mustQuery(t, "cat")
	v := mustVector(t, "'cat':1 'dog':2 'fish':3")
	raw := Rank(nil, v, q, 0)
	assert.Less(t, Rank(nil, v, q, RankNormLength), raw)
	assert.Less(t, Rank(nil, v, q, RankNormUniq), raw)
	byItself := Rank(nil, v, q, RankNormRDivRPlus1)
	assert.InDelta(t, raw/(raw+1), byItself, 1e-6)
}

func TestHeadline(t *testing.T) {
	cfg := englishConfig(t)
	q, err := cfg.ToTSQuery(context.Background(), "foxes")
	require.NoError(t, err)

	hl, err := cfg.Headline(context.Background(), "The quick brown foxes jump over the lazy dog", q,
		func(o *HeadlineOptions) { o.MinWords = 2; o.MaxWords = 4; o.ShortWord = 3 })
	require.NoError(t, err)
	assert.Contains(t, hl, "<b>foxes</b>")
	assert.NotContains(t, hl, "quick", "fragment is anchored on the match")
}

func TestHeadlineCustomMarkers(t *testing.T) {
	cfg := englishConfig(t)
	q, err := cfg.ToTSQuery(context.Background(), "fox")
	require.NoError(t, err)

	hl, err := cfg.Headline(context.Background(), "red fox den", q, func(o *HeadlineOptions) {
		o.StartSel, o.StopSel = "[", "]"
		o.MinWords, o.MaxWords, o.ShortWord = 1, 3, 0
	})
	require.NoError(t, err)
	assert.Contains(t, hl, "[fox]")
}

func TestHeadlineHighlightAll(t *testing.T) {
	cfg := englishConfig(t)
	q, err := cfg.ToTSQuery(context.Background(), "foxes")
	require.NoError(t, err)

	hl, err := cfg.Headline(context.Background(), "foxes <i>jump</i> high", q,
		func(o *HeadlineOptions) { o.HighlightAll = true })
	require.NoError(t, err)
	assert.Equal(t, "<b>foxes</b> <i>jump</i> high", hl, "tags pass through in highlight-all mode")
}

func TestHeadlineNoMatchShowsLeadingWords(t *testing.T) {
	cfg := englishConfig(t)
	q, err := cfg.ToTSQuery(context.Background(), "zebra")
	require.NoError(t, err)

	hl, err := cfg.Headline(context.Background(), "one two three four five", q,
		func(o *HeadlineOptions) { o.MinWords = 3; o.MaxWords = 4; o.ShortWord = 2 })
	require.NoError(t, err)
	assert.Equal(t, "one two three", hl)
}

func TestParseHeadlineOptions(t *testing.T) {
	opts, err := ParseHeadlineOptions(`MaxWords=7, MinWords=2, StartSel="<<", StopSel=">>", HighlightAll=true`)
	require.NoError(t, err)
	assert.Equal(t, 7, opts.MaxWords)
	assert.Equal(t, 2, opts.MinWords)
	assert.Equal(t, "<<", opts.StartSel)
	assert.Equal(t, ">>", opts.StopSel)
	assert.True(t, opts.HighlightAll)

	_, err = ParseHeadlineOptions("NoSuchOption=1")
	assert.Error(t, err)
	_, err = ParseHeadlineOptions("MinWords=10, MaxWords=2")
	assert.Error(t, err)
	_, err = ParseHeadlineOptions("MinWords=abc")
	assert.Error(t, err)
}

func TestVectorBinaryRoundTrip(t *testing.T) {
	v := mustVector(t, "'cat':3A 'dog':7 plain")
	got, err := DecodeTSVector(v.EncodeBinary())
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = DecodeTSVector(v.EncodeBinary()[:5])
	assert.Error(t, err)
	_, err = DecodeTSVector([]byte{0, 0})
	assert.Error(t, err)
}

func TestQueryBinaryRoundTrip(t *testing.T) {
	q := mustQuery(t, "fat & (rat | cat:AB) & !do:*")
	got, err := DecodeTSQuery(q.EncodeBinary())
	require.NoError(t, err)
	assert.Equal(t, q.String(), got.String())
	assert.Equal(t, q.Items, got.Items)

	_, err = DecodeTSQuery(q.EncodeBinary()[:3])
	assert.Error(t, err)
}

func TestDecodeTSQueryRejectsMalformedTree(t *testing.T) {
	// One AND operator with a single operand.
	and := &TSQuery{Items: []Item{
		{Type: QueryOpr, Op: OpAnd, Left: 1},
		{Type: QueryVal, Value: "x"},
	}}
	_, err := DecodeTSQuery(and.EncodeBinary())
	assert.Error(t, err)
}

func TestSignatureMatch(t *testing.T) {
	v := mustVector(t, "'cat':1 'fat':2")
	sign := v.Signature(16)

	assert.True(t, MatchSignature(&sign, mustQuery(t, "cat & fat")))
	// A negation cannot be disproven from a signature.
	assert.True(t, MatchSignature(&sign, mustQuery(t, "cat & !fat")))
	// Prefix leaves degrade to true.
	assert.True(t, MatchSignature(&sign, mustQuery(t, "zeb:*")))

	empty := (&TSVector{}).Signature(16)
	assert.False(t, MatchSignature(&empty, mustQuery(t, "cat")))
}

func TestLossyKeyMatch(t *testing.T) {
	v := mustVector(t, "'cat':1 'fat':2")
	key := v.SignKey(16)
	assert.True(t, MatchLossyKey(key, mustQuery(t, "cat & fat")))

	allTrue := gist.NewSignKey(v.Signature(16))
	allTrue.Flags |= gist.FlagAllTrue
	assert.True(t, MatchLossyKey(allTrue, mustQuery(t, "anything")))
}
