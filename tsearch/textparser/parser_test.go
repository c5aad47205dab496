package textparser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tt struct {
	typ TokenType
	val string
}

func collect(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := Tokenize(context.Background(), src)
	require.NoError(t, err)
	return toks
}

func assertTokens(t *testing.T, src string, want []tt) {
	t.Helper()
	toks := collect(t, src)
	got := make([]tt, 0, len(toks))
	for _, tok := range toks {
		got = append(got, tt{tok.Type, tok.Value})
	}
	assert.Equal(t, want, got, "input %q", src)
}

func TestWords(t *testing.T) {
	assertTokens(t, "The quick brown", []tt{
		{LatWord, "The"}, {Space, " "},
		{LatWord, "quick"}, {Space, " "},
		{LatWord, "brown"},
	})
	assertTokens(t, "привет мир", []tt{
		{CyrWord, "привет"}, {Space, " "}, {CyrWord, "мир"},
	})
	assertTokens(t, "héllo", []tt{{UWord, "héllo"}})
	assertTokens(t, "abc123", []tt{{UWord, "abc123"}})
}

func TestNumbers(t *testing.T) {
	assertTokens(t, "42", []tt{{UnsignedInt, "42"}})
	assertTokens(t, "-7", []tt{{SignedInt, "-7"}})
	assertTokens(t, "+5 and", []tt{{SignedInt, "+5"}, {Space, " "}, {LatWord, "and"}})
	assertTokens(t, "3.14", []tt{{Decimal, "3.14"}})
	assertTokens(t, "8.4.1", []tt{{Version, "8.4.1"}})
	assertTokens(t, "1.5e-3", []tt{{Scientific, "1.5e-3"}})
	assertTokens(t, "2e10", []tt{{Scientific, "2e10"}})
	// A dangling exponent marker backs off to the plain number.
	assertTokens(t, "12e", []tt{{UnsignedInt, "12"}, {LatWord, "e"}})
	// A dangling sign degrades to a blank.
	assertTokens(t, "+ x", []tt{{Space, "+"}, {Space, " "}, {LatWord, "x"}})
}

func TestSentencePunctuation(t *testing.T) {
	assertTokens(t, "end. Next", []tt{
		{LatWord, "end"}, {Space, "."}, {Space, " "}, {LatWord, "Next"},
	})
}

func TestEmailHostURL(t *testing.T) {
	assertTokens(t, "john@example.com", []tt{{Email, "john@example.com"}})
	assertTokens(t, "example.com", []tt{{Host, "example.com"}})
	assertTokens(t, "http://example.com/a?b=1 x", []tt{
		{Protocol, "http://"},
		{FURL, "example.com/a?b=1"},
		{Host, "example.com"},
		{URI, "/a?b=1"},
		{Space, " "},
		{LatWord, "x"},
	})
	// A trailing dot is not part of the address.
	assertTokens(t, "a@b.c.", []tt{{Email, "a@b.c"}, {Space, "."}})
}

func TestFilePath(t *testing.T) {
	assertTokens(t, "/usr/share/dict", []tt{{FilePath, "/usr/share/dict"}})
	assertTokens(t, "a / b", []tt{
		{LatWord, "a"}, {Space, " "}, {Space, "/"}, {Space, " "}, {LatWord, "b"},
	})
}

func TestHyphenatedPartsBeforeComposite(t *testing.T) {
	assertTokens(t, "foo-bar", []tt{
		{LatPartHyphenWord, "foo"},
		{Space, "-"},
		{LatPartHyphenWord, "bar"},
		{LatHyphenWord, "foo-bar"},
	})
	assertTokens(t, "a-b-c x", []tt{
		{LatPartHyphenWord, "a"},
		{Space, "-"},
		{LatPartHyphenWord, "b"},
		{Space, "-"},
		{LatPartHyphenWord, "c"},
		{LatHyphenWord, "a-b-c"},
		{Space, " "},
		{LatWord, "x"},
	})
	// A double hyphen is not a hyphenated word.
	assertTokens(t, "foo--bar", []tt{
		{LatWord, "foo"}, {Space, "-"}, {Space, "-"}, {LatWord, "bar"},
	})
	// A trailing hyphen backs off to the word.
	assertTokens(t, "foo- x", []tt{
		{LatWord, "foo"}, {Space, "-"}, {Space, " "}, {LatWord, "x"},
	})
}

func TestTags(t *testing.T) {
	assertTokens(t, `<a href="x>y">link</a>`, []tt{
		{Tag, `<a href="x>y">`},
		{LatWord, "link"},
		{Tag, "</a>"},
	})
	assertTokens(t, "1<2", []tt{
		{UnsignedInt, "1"}, {Space, "<"}, {UnsignedInt, "2"},
	})
	// Unterminated tag degrades to a blank.
	assertTokens(t, "<a hre", []tt{
		{Space, "<"}, {LatWord, "a"}, {Space, " "}, {LatWord, "hre"},
	})
}

func TestEntities(t *testing.T) {
	assertTokens(t, "&amp;", []tt{{HTMLEntity, "&amp;"}})
	assertTokens(t, "&#955;", []tt{{HTMLEntity, "&#955;"}})
	assertTokens(t, "AT&T", []tt{
		{LatWord, "AT"}, {Space, "&"}, {LatWord, "T"},
	})
}

func TestScriptIgnoreMode(t *testing.T) {
	assertTokens(t, "<script>var x = 1;</script>done", []tt{
		{Tag, "<script>"},
		{Space, "var x = 1;"},
		{Tag, "</script>"},
		{LatWord, "done"},
	})
	assertTokens(t, "<style>p { color: red }</style>ok", []tt{
		{Tag, "<style>"},
		{Space, "p { color: red }"},
		{Tag, "</style>"},
		{LatWord, "ok"},
	})
	// Closing tags of self-closing script elements do not arm ignore mode.
	assertTokens(t, "<script/>x", []tt{{Tag, "<script/>"}, {LatWord, "x"}})
}

func TestUnterminatedScriptIgnoresToEOF(t *testing.T) {
	assertTokens(t, "<script>oops", []tt{
		{Tag, "<script>"},
		{Space, "oops"},
	})
}

func TestOffsets(t *testing.T) {
	toks := collect(t, "aé b")
	require.Len(t, toks, 3)
	assert.Equal(t, 0, toks[0].ByteOff)
	assert.Equal(t, 3, toks[0].ByteLen, "é is two bytes")
	assert.Equal(t, 2, toks[0].RuneLen)
	assert.Equal(t, 3, toks[1].ByteOff)
	assert.Equal(t, 2, toks[1].RuneOff)
	assert.Equal(t, 4, toks[2].ByteOff)
	assert.Equal(t, 3, toks[2].RuneOff)
}

func TestByteCoverage(t *testing.T) {
	for _, src := range []string{
		"The quick brown foxes jumped 3.14 over http://x.io/a?b AT&T <b>bold</b>",
		"<script>a b</script>tail",
	} {
		toks := collect(t, src)
		pos := 0
		for _, tok := range toks {
			if tok.Type == Host || tok.Type == URI {
				continue // overlap their url composite
			}
			assert.Equal(t, pos, tok.ByteOff, "gap before %q in %q", tok.Value, src)
			pos = tok.ByteOff + tok.ByteLen
		}
		assert.Equal(t, len(src), pos, "coverage of %q", src)
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	big := make([]byte, 0, 1<<16)
	for i := 0; i < 1<<14; i++ {
		big = append(big, "word "...)
	}
	_, err := Tokenize(ctx, string(big))
	require.Error(t, err)
}
