package textparser

// TokenType classifies parser output. The set mirrors the default parser's
// 23 lexeme classes; dictionaries are mapped per type.
type TokenType uint8

const (
	// LatWord is a word of ASCII letters only.
	LatWord TokenType = iota + 1
	// CyrWord is a word of Cyrillic letters only.
	CyrWord
	// UWord is any other word: mixed scripts, non-Latin non-Cyrillic
	// letters, or letter-digit mixtures.
	UWord
	// Email is a local@domain address.
	Email
	// FURL is a host immediately followed by a path, with or without a
	// preceding protocol token.
	FURL
	// Host is a dotted name such as example.com.
	Host
	// Scientific is a float in exponent notation, 1.5e-3.
	Scientific
	// Version is a dotted number with three or more groups, 8.4.1.
	Version
	// CyrPartHyphenWord is a Cyrillic constituent of a hyphenated word.
	CyrPartHyphenWord
	// UPartHyphenWord is any other constituent of a hyphenated word.
	UPartHyphenWord
	// LatPartHyphenWord is an ASCII constituent of a hyphenated word.
	LatPartHyphenWord
	// Space is whitespace or punctuation carrying no lexeme.
	Space
	// Tag is an HTML/XML tag including its angle brackets.
	Tag
	// Protocol is a scheme prefix such as http://.
	Protocol
	// CyrHyphenWord is a hyphenated word whose parts are all Cyrillic.
	CyrHyphenWord
	// LatHyphenWord is a hyphenated word whose parts are all ASCII.
	LatHyphenWord
	// UHyphenWord is any other hyphenated word.
	UHyphenWord
	// URI is the path component of a URL, starting at the slash.
	URI
	// FilePath is a Unix path such as /usr/share/dict.
	FilePath
	// Decimal is a float in fixed notation, 3.14.
	Decimal
	// SignedInt is an integer with an explicit sign.
	SignedInt
	// UnsignedInt is a bare integer.
	UnsignedInt
	// HTMLEntity is &name; or &#digits;.
	HTMLEntity

	numTokenTypes = iota + 1
)

var tokenTypeNames = map[TokenType]string{
	LatWord:           "latword",
	CyrWord:           "cyrword",
	UWord:             "uword",
	Email:             "email",
	FURL:              "url",
	Host:              "host",
	Scientific:        "sfloat",
	Version:           "version",
	CyrPartHyphenWord: "hword_cyrpart",
	UPartHyphenWord:   "hword_part",
	LatPartHyphenWord: "hword_asciipart",
	Space:             "blank",
	Tag:               "tag",
	Protocol:          "protocol",
	CyrHyphenWord:     "cyrhword",
	LatHyphenWord:     "asciihword",
	UHyphenWord:       "hword",
	URI:               "url_path",
	FilePath:          "file",
	Decimal:           "float",
	SignedInt:         "int",
	UnsignedInt:       "uint",
	HTMLEntity:        "entity",
}

func (t TokenType) String() string {
	if s, ok := tokenTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// Indexable reports whether tokens of this type carry a lexeme worth
// feeding to a dictionary chain. Blanks and tags do not.
func (t TokenType) Indexable() bool {
	switch t {
	case Space, Tag, HTMLEntity, Protocol:
		return false
	}
	return true
}

// HyphenComposite reports whether the type is a whole hyphenated word,
// emitted after its parts.
func (t TokenType) HyphenComposite() bool {
	switch t {
	case LatHyphenWord, CyrHyphenWord, UHyphenWord:
		return true
	}
	return false
}

// HyphenPart reports whether the type is a hyphenated-word constituent.
func (t TokenType) HyphenPart() bool {
	switch t {
	case LatPartHyphenWord, CyrPartHyphenWord, UPartHyphenWord:
		return true
	}
	return false
}

// Token is one parser emission. Offsets are byte-based into the input;
// rune offsets are carried alongside for hosts that count characters.
type Token struct {
	Type    TokenType
	Value   string
	ByteOff int
	ByteLen int
	RuneOff int
	RuneLen int
}
