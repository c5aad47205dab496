// Package textparser tokenizes raw text into typed lexemes for the
// text-search pipeline. The tokenizer is a table-driven state machine: each
// state holds an ordered list of transition rules keyed on character
// predicates, each rule carrying action flags and an optional special
// handler for the context-sensitive cases (hyphenated words, URLs,
// script/style ignore mode).
package textparser

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/gistkit/internal/interrupt"
)

// Action flags. NEXT consumes the current character. BINGO emits a token
// covering the scan so far. PUSH snapshots the current position as a
// fallback; POP restores and emits the fallback. CLRALL drops all
// snapshots; MERGE rewrites the top snapshot in place. RERUN re-dispatches
// the current character in the new state.
type actionFlag uint16

const (
	aNext actionFlag = 1 << iota
	aBingo
	aPush
	aPop
	aClear
	aClrAll
	aMerge
	aRerun
)

type state uint8

const (
	tpsBase state = iota
	tpsSpace
	tpsLat
	tpsCyr
	tpsUni
	tpsUInt
	tpsSignFirst
	tpsSInt
	tpsDecFirst
	tpsDec
	tpsVerFirst
	tpsVer
	tpsSciE
	tpsSciSign
	tpsSci
	tpsEmailAt
	tpsEmail
	tpsEmailDot
	tpsHostDot
	tpsHost
	tpsProtoC
	tpsProtoS1
	tpsURI
	tpsFileFirst
	tpsFile
	tpsTagOpen
	tpsTagCloseFirst
	tpsTagName
	tpsTagBody
	tpsTagQD
	tpsTagQS
	tpsTagEscD
	tpsTagEscS
	tpsEntFirst
	tpsEntNumFirst
	tpsEntNum
	tpsEntName
	tpsHyphenFirst
	tpsHyphenWord
	numStates
)

type charTest func(r rune, eof bool) bool

type special func(p *Parser, tok Token) Token

// rule is one transition: the first rule whose test accepts the current
// character fires. A nil test is the catch-all.
type rule struct {
	test  charTest
	flags actionFlag
	to    state
	typ   TokenType
	spec  special
}

func isEOF(r rune, eof bool) bool   { return eof }
func isSpace(r rune, eof bool) bool { return !eof && unicode.IsSpace(r) }
func isDigit(r rune, eof bool) bool { return !eof && r >= '0' && r <= '9' }

func isLat(r rune, eof bool) bool {
	return !eof && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
}

func isCyr(r rune, eof bool) bool { return !eof && unicode.Is(unicode.Cyrillic, r) }

// isUniAlpha accepts any other letter. Invalid bytes count as letters so
// that byte-soup encodings still tokenize into words.
func isUniAlpha(r rune, eof bool) bool {
	if eof {
		return false
	}
	if isLat(r, false) || isCyr(r, false) {
		return false
	}
	return unicode.IsLetter(r) || r == utf8.RuneError
}

func isAlpha(r rune, eof bool) bool {
	return isLat(r, eof) || isCyr(r, eof) || isUniAlpha(r, eof)
}

func isAlnum(r rune, eof bool) bool { return isAlpha(r, eof) || isDigit(r, eof) }

func isLatNum(r rune, eof bool) bool { return isLat(r, eof) || isDigit(r, eof) }

func ch(c rune) charTest {
	return func(r rune, eof bool) bool { return !eof && r == c }
}

func anyOf(set string) charTest {
	return func(r rune, eof bool) bool { return !eof && strings.ContainsRune(set, r) }
}

var transitions [numStates][]rule

func init() {
	transitions[tpsBase] = []rule{
		{test: isSpace, flags: aNext, to: tpsSpace},
		{test: isLat, flags: aNext, to: tpsLat},
		{test: isCyr, flags: aNext, to: tpsCyr},
		{test: isUniAlpha, flags: aNext, to: tpsUni},
		{test: isDigit, flags: aNext, to: tpsUInt},
		{test: anyOf("+-"), flags: aPush | aNext, to: tpsSignFirst},
		{test: ch('<'), flags: aPush | aNext, to: tpsTagOpen},
		{test: ch('&'), flags: aPush | aNext, to: tpsEntFirst},
		{test: ch('/'), flags: aPush | aNext, to: tpsFileFirst},
		{flags: aNext | aBingo, typ: Space},
	}
	transitions[tpsSpace] = []rule{
		{test: isSpace, flags: aNext},
		{flags: aBingo, typ: Space},
	}
	transitions[tpsLat] = []rule{
		{test: isLat, flags: aNext},
		{test: isAlnum, flags: aNext, to: tpsUni},
		{test: ch('@'), flags: aPush | aNext, to: tpsEmailAt, typ: LatWord},
		{test: ch('.'), flags: aPush | aNext, to: tpsHostDot, typ: LatWord},
		{test: ch(':'), flags: aPush | aNext, to: tpsProtoC, typ: LatWord},
		{test: ch('-'), flags: aPush | aNext, to: tpsHyphenFirst, typ: LatWord},
		{flags: aBingo, typ: LatWord},
	}
	transitions[tpsCyr] = []rule{
		{test: isCyr, flags: aNext},
		{test: isAlnum, flags: aNext, to: tpsUni},
		{test: ch('-'), flags: aPush | aNext, to: tpsHyphenFirst, typ: CyrWord},
		{flags: aBingo, typ: CyrWord},
	}
	transitions[tpsUni] = []rule{
		{test: isAlnum, flags: aNext},
		{test: ch('-'), flags: aPush | aNext, to: tpsHyphenFirst, typ: UWord},
		{flags: aBingo, typ: UWord},
	}
	transitions[tpsUInt] = []rule{
		{test: isDigit, flags: aNext},
		{test: ch('.'), flags: aPush | aNext, to: tpsDecFirst, typ: UnsignedInt},
		{test: anyOf("eE"), flags: aPush | aNext, to: tpsSciE, typ: UnsignedInt},
		{test: isAlpha, flags: aNext, to: tpsUni},
		{flags: aBingo, typ: UnsignedInt},
	}
	transitions[tpsSignFirst] = []rule{
		{test: isDigit, flags: aNext, to: tpsSInt},
		{flags: aPop},
	}
	transitions[tpsSInt] = []rule{
		{test: isDigit, flags: aNext},
		{test: ch('.'), flags: aPush | aNext, to: tpsDecFirst, typ: SignedInt},
		{test: anyOf("eE"), flags: aPush | aNext, to: tpsSciE, typ: SignedInt},
		{flags: aBingo, typ: SignedInt},
	}
	transitions[tpsDecFirst] = []rule{
		{test: isDigit, flags: aNext, to: tpsDec},
		{flags: aPop},
	}
	transitions[tpsDec] = []rule{
		{test: isDigit, flags: aNext},
		{test: ch('.'), flags: aPush | aNext, to: tpsVerFirst, typ: Decimal},
		{test: anyOf("eE"), flags: aPush | aNext, to: tpsSciE, typ: Decimal},
		{flags: aBingo | aClrAll, typ: Decimal},
	}
	transitions[tpsVerFirst] = []rule{
		{test: isDigit, flags: aNext, to: tpsVer},
		{flags: aPop},
	}
	transitions[tpsVer] = []rule{
		{test: isDigit, flags: aNext},
		{test: ch('.'), flags: aPush | aNext, to: tpsVerFirst, typ: Version},
		{flags: aBingo | aClrAll, typ: Version},
	}
	transitions[tpsSciE] = []rule{
		{test: isDigit, flags: aNext, to: tpsSci},
		{test: anyOf("+-"), flags: aNext, to: tpsSciSign},
		{flags: aPop},
	}
	transitions[tpsSciSign] = []rule{
		{test: isDigit, flags: aNext, to: tpsSci},
		{flags: aPop},
	}
	transitions[tpsSci] = []rule{
		{test: isDigit, flags: aNext},
		{flags: aBingo | aClrAll, typ: Scientific},
	}
	transitions[tpsEmailAt] = []rule{
		{test: isLatNum, flags: aNext, to: tpsEmail},
		{flags: aPop},
	}
	transitions[tpsEmail] = []rule{
		{test: isLatNum, flags: aNext},
		{test: anyOf("-_"), flags: aNext},
		{test: ch('.'), flags: aPush | aNext, to: tpsEmailDot, typ: Email},
		{flags: aBingo | aClrAll, typ: Email},
	}
	transitions[tpsEmailDot] = []rule{
		{test: isLatNum, flags: aNext, to: tpsEmail},
		{flags: aPop},
	}
	transitions[tpsHostDot] = []rule{
		{test: isLatNum, flags: aNext, to: tpsHost},
		{flags: aPop},
	}
	transitions[tpsHost] = []rule{
		{test: isLatNum, flags: aNext},
		{test: anyOf("-_"), flags: aNext},
		{test: ch('.'), flags: aPush | aNext, to: tpsHostDot, typ: Host},
		{test: ch('@'), flags: aPush | aNext, to: tpsEmailAt, typ: Host},
		{test: ch('/'), flags: aPush | aNext, to: tpsURI, typ: Host},
		{flags: aBingo | aClrAll, typ: Host},
	}
	transitions[tpsProtoC] = []rule{
		{test: ch('/'), flags: aNext, to: tpsProtoS1},
		{flags: aPop},
	}
	transitions[tpsProtoS1] = []rule{
		{test: ch('/'), flags: aNext | aBingo | aClrAll, typ: Protocol},
		{flags: aPop},
	}
	transitions[tpsURI] = []rule{
		{test: isSpace, flags: aBingo, typ: FURL, spec: specURL},
		{test: isEOF, flags: aBingo, typ: FURL, spec: specURL},
		{test: anyOf("<>\""), flags: aBingo, typ: FURL, spec: specURL},
		{flags: aNext},
	}
	transitions[tpsFileFirst] = []rule{
		{test: isAlnum, flags: aNext, to: tpsFile},
		{test: anyOf("._"), flags: aNext, to: tpsFile},
		{flags: aPop},
	}
	transitions[tpsFile] = []rule{
		{test: isAlnum, flags: aNext},
		{test: anyOf("._-/"), flags: aNext},
		{flags: aBingo | aClrAll, typ: FilePath},
	}
	transitions[tpsTagOpen] = []rule{
		{test: isLat, flags: aNext, to: tpsTagName},
		{test: ch('/'), flags: aNext, to: tpsTagCloseFirst},
		{flags: aPop},
	}
	transitions[tpsTagCloseFirst] = []rule{
		{test: isLat, flags: aNext, to: tpsTagName},
		{flags: aPop},
	}
	transitions[tpsTagName] = []rule{
		{test: isLatNum, flags: aNext},
		{test: ch('-'), flags: aNext},
		{test: ch('>'), flags: aNext | aBingo | aClrAll, typ: Tag, spec: specTag},
		{test: isSpace, flags: aNext, to: tpsTagBody},
		{test: ch('/'), flags: aNext, to: tpsTagBody},
		{flags: aPop},
	}
	transitions[tpsTagBody] = []rule{
		{test: ch('>'), flags: aNext | aBingo | aClrAll, typ: Tag, spec: specTag},
		{test: ch('"'), flags: aNext, to: tpsTagQD},
		{test: ch('\''), flags: aNext, to: tpsTagQS},
		{test: isEOF, flags: aPop},
		{flags: aNext},
	}
	transitions[tpsTagQD] = []rule{
		{test: ch('"'), flags: aNext, to: tpsTagBody},
		{test: ch('\\'), flags: aNext, to: tpsTagEscD},
		{test: isEOF, flags: aPop},
		{flags: aNext},
	}
	transitions[tpsTagQS] = []rule{
		{test: ch('\''), flags: aNext, to: tpsTagBody},
		{test: ch('\\'), flags: aNext, to: tpsTagEscS},
		{test: isEOF, flags: aPop},
		{flags: aNext},
	}
	transitions[tpsTagEscD] = []rule{
		{test: isEOF, flags: aPop},
		{flags: aNext, to: tpsTagQD},
	}
	transitions[tpsTagEscS] = []rule{
		{test: isEOF, flags: aPop},
		{flags: aNext, to: tpsTagQS},
	}
	transitions[tpsEntFirst] = []rule{
		{test: ch('#'), flags: aNext, to: tpsEntNumFirst},
		{test: isLat, flags: aNext, to: tpsEntName},
		{flags: aPop},
	}
	transitions[tpsEntNumFirst] = []rule{
		{test: isDigit, flags: aNext, to: tpsEntNum},
		{flags: aPop},
	}
	transitions[tpsEntNum] = []rule{
		{test: isDigit, flags: aNext},
		{test: ch(';'), flags: aNext | aBingo | aClrAll, typ: HTMLEntity},
		{flags: aPop},
	}
	transitions[tpsEntName] = []rule{
		{test: isLatNum, flags: aNext},
		{test: ch(';'), flags: aNext | aBingo | aClrAll, typ: HTMLEntity},
		{flags: aPop},
	}
	transitions[tpsHyphenFirst] = []rule{
		{test: isAlnum, flags: aNext, to: tpsHyphenWord},
		{flags: aPop},
	}
	transitions[tpsHyphenWord] = []rule{
		{test: isAlnum, flags: aNext},
		{test: ch('-'), flags: aMerge | aNext, to: tpsHyphenFirst},
		{flags: aBingo, spec: specHyphen},
	}
}

// snapshot is a pushed fallback: the byte/rune end of a token that can be
// emitted if the speculative scan past it fails. A special marker routes
// the emission through a handler instead of a plain type.
type snapshot struct {
	endByte int
	endRune int
	typ     TokenType
	spec    special
}

// Parser streams tokens off a string. Zero value is not usable; call New.
type Parser struct {
	src    string
	pos    int
	rpos   int
	stack  []snapshot
	queue  []Token
	ignore string // closing tag name while in script/style ignore mode

	startByte int
	startRune int
}

// New creates a parser over the input text.
func New(src string) *Parser {
	return &Parser{src: src}
}

func (p *Parser) peek() (rune, int, bool) {
	if p.pos >= len(p.src) {
		return 0, 0, true
	}
	r, sz := utf8.DecodeRuneInString(p.src[p.pos:])
	return r, sz, false
}

func (p *Parser) token(typ TokenType, fromByte, fromRune, toByte, toRune int) Token {
	return Token{
		Type:    typ,
		Value:   p.src[fromByte:toByte],
		ByteOff: fromByte,
		ByteLen: toByte - fromByte,
		RuneOff: fromRune,
		RuneLen: toRune - fromRune,
	}
}

// Next returns the next token, or ok=false at end of input.
func (p *Parser) Next() (Token, bool) {
	if len(p.queue) > 0 {
		tok := p.queue[0]
		p.queue = p.queue[1:]
		return tok, true
	}
	if p.ignore != "" {
		if tok, ok := p.skipIgnored(); ok {
			return tok, true
		}
	}
	if p.pos >= len(p.src) {
		return Token{}, false
	}

	p.startByte, p.startRune = p.pos, p.rpos
	p.stack = p.stack[:0]
	st := tpsBase

	for {
		r, sz, eof := p.peek()
		var act *rule
		for i := range transitions[st] {
			t := transitions[st][i].test
			if t == nil || t(r, eof) {
				act = &transitions[st][i]
				break
			}
		}
		if act == nil || (eof && st == tpsBase) {
			return Token{}, false
		}

		if act.flags&aPop != 0 {
			return p.popFallback(), true
		}
		if act.flags&aPush != 0 {
			p.stack = append(p.stack, snapshot{endByte: p.pos, endRune: p.rpos, typ: act.typ, spec: act.spec})
		}
		if act.flags&aMerge != 0 && len(p.stack) > 0 {
			top := &p.stack[len(p.stack)-1]
			top.endByte, top.endRune = p.pos, p.rpos
			top.typ = 0
			top.spec = specHyphen
		}
		if act.flags&aClear != 0 && len(p.stack) > 0 {
			p.stack = p.stack[:len(p.stack)-1]
		}
		if act.flags&aClrAll != 0 {
			p.stack = p.stack[:0]
		}
		if act.flags&aNext != 0 && !eof {
			p.pos += sz
			p.rpos++
		}
		if act.flags&aBingo != 0 {
			tok := p.token(act.typ, p.startByte, p.startRune, p.pos, p.rpos)
			if act.spec != nil {
				tok = act.spec(p, tok)
			}
			return tok, true
		}
		if act.flags&aRerun != 0 || act.to != tpsBase {
			st = act.to
		}
	}
}

// popFallback restores the top snapshot and emits its token. An empty span
// means the speculative construct began the token; it degrades to a single
// blank character.
func (p *Parser) popFallback() Token {
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:0]
	if top.endByte == p.startByte {
		_, sz := utf8.DecodeRuneInString(p.src[p.startByte:])
		tok := p.token(Space, p.startByte, p.startRune, p.startByte+sz, p.startRune+1)
		p.pos, p.rpos = p.startByte+sz, p.startRune+1
		return tok
	}
	tok := p.token(top.typ, p.startByte, p.startRune, top.endByte, top.endRune)
	p.pos, p.rpos = top.endByte, top.endRune
	if top.spec != nil {
		tok = top.spec(p, tok)
	}
	return tok
}

// Tokenize runs the parser to completion, checking for cancellation at a
// bounded interval.
func Tokenize(ctx context.Context, src string) ([]Token, error) {
	p := New(src)
	var out []Token
	for i := 0; ; i++ {
		if err := interrupt.Check(ctx, i); err != nil {
			return nil, err
		}
		tok, ok := p.Next()
		if !ok {
			return out, nil
		}
		out = append(out, tok)
	}
}

func classifyWord(s string) TokenType {
	lat, cyr, other := false, false, false
	for _, r := range s {
		switch {
		case isLat(r, false):
			lat = true
		case isCyr(r, false):
			cyr = true
		default:
			other = true
		}
	}
	switch {
	case lat && !cyr && !other:
		return LatWord
	case cyr && !lat && !other:
		return CyrWord
	}
	return UWord
}

// specHyphen splits a completed hyphenated word into its constituents. The
// parts come first, the composite last: dictionaries match on the parts, so
// their emission order is load-bearing for position assignment.
func specHyphen(p *Parser, tok Token) Token {
	parts := strings.Split(tok.Value, "-")
	composite := UHyphenWord
	switch classifyWord(strings.ReplaceAll(tok.Value, "-", "")) {
	case LatWord:
		composite = LatHyphenWord
	case CyrWord:
		composite = CyrHyphenWord
	}

	byteOff, runeOff := tok.ByteOff, tok.RuneOff
	var toks []Token
	for i, part := range parts {
		if i > 0 {
			toks = append(toks, p.token(Space, byteOff, runeOff, byteOff+1, runeOff+1))
			byteOff++
			runeOff++
		}
		typ := UPartHyphenWord
		switch classifyWord(part) {
		case LatWord:
			typ = LatPartHyphenWord
		case CyrWord:
			typ = CyrPartHyphenWord
		}
		toks = append(toks, p.token(typ, byteOff, runeOff, byteOff+len(part), runeOff+utf8.RuneCountInString(part)))
		byteOff += len(part)
		runeOff += utf8.RuneCountInString(part)
	}
	toks = append(toks, tok)
	toks[len(toks)-1].Type = composite

	p.queue = append(p.queue, toks[1:]...)
	return toks[0]
}

// specURL splits host/path into the three URL tokens: the full url first,
// then the host, then the path.
func specURL(p *Parser, tok Token) Token {
	hostEndByte, hostEndRune := tok.ByteOff+tok.ByteLen, tok.RuneOff+tok.RuneLen
	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		hostEndByte, hostEndRune = top.endByte, top.endRune
	}
	p.stack = p.stack[:0]
	tok.Type = FURL
	p.queue = append(p.queue,
		p.token(Host, tok.ByteOff, tok.RuneOff, hostEndByte, hostEndRune),
		p.token(URI, hostEndByte, hostEndRune, tok.ByteOff+tok.ByteLen, tok.RuneOff+tok.RuneLen),
	)
	return tok
}

// specTag inspects a completed tag. Opening <script> or <style> switches
// the parser into ignore mode until the matching close tag or end of input.
func specTag(p *Parser, tok Token) Token {
	inner := strings.TrimSuffix(strings.TrimPrefix(tok.Value, "<"), ">")
	if strings.HasPrefix(inner, "/") || strings.HasSuffix(inner, "/") {
		return tok
	}
	name := inner
	if i := strings.IndexFunc(inner, func(r rune) bool { return unicode.IsSpace(r) }); i >= 0 {
		name = inner[:i]
	}
	name = strings.ToLower(name)
	if name == "script" || name == "style" {
		p.ignore = name
	}
	return tok
}

// skipIgnored swallows everything up to the matching close tag, emitting
// the swallowed region as one blank token so that downstream consumers
// still see full byte coverage. Unterminated regions run to end of input.
func (p *Parser) skipIgnored() (Token, bool) {
	closing := "</" + p.ignore
	rest := p.src[p.pos:]
	i := strings.Index(strings.ToLower(rest), closing)
	if i < 0 {
		p.ignore = ""
		if len(rest) == 0 {
			return Token{}, false
		}
		tok := p.token(Space, p.pos, p.rpos, len(p.src), p.rpos+utf8.RuneCountInString(rest))
		p.pos = len(p.src)
		p.rpos += utf8.RuneCountInString(rest)
		return tok, true
	}
	p.ignore = ""
	if i == 0 {
		return Token{}, false
	}
	skipped := rest[:i]
	tok := p.token(Space, p.pos, p.rpos, p.pos+i, p.rpos+utf8.RuneCountInString(skipped))
	p.pos += i
	p.rpos += utf8.RuneCountInString(skipped)
	return tok, true
}
