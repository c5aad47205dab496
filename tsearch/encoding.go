package tsearch

import (
	"bytes"
	"encoding/binary"

	"github.com/hupe1980/gistkit/errcode"
)

// Binary forms, big-endian. A tsvector is the entry count followed by
// length-prefixed lexemes each with its packed position list; a tsquery is
// the item count followed by the items in prefix order, with the operand
// back-links recomputed on receive.

// EncodeBinary renders the vector's wire form.
func (v *TSVector) EncodeBinary() []byte {
	var b bytes.Buffer
	writeU32 := func(n uint32) {
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], n)
		b.Write(tmp[:])
	}
	writeU16 := func(n uint16) {
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], n)
		b.Write(tmp[:])
	}
	writeU32(uint32(len(v.Entries)))
	for _, e := range v.Entries {
		writeU16(uint16(len(e.Lexeme)))
		b.WriteString(e.Lexeme)
		writeU16(uint16(len(e.Positions)))
		for _, p := range e.Positions {
			writeU16(uint16(p))
		}
	}
	return b.Bytes()
}

type binReader struct {
	buf []byte
	off int
}

func (r *binReader) u16() (uint16, error) {
	if r.off+2 > len(r.buf) {
		return 0, errcode.Newf(errcode.CodeSyntax, "binary data truncated")
	}
	n := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return n, nil
}

func (r *binReader) u32() (uint32, error) {
	if r.off+4 > len(r.buf) {
		return 0, errcode.Newf(errcode.CodeSyntax, "binary data truncated")
	}
	n := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return n, nil
}

func (r *binReader) bytes(n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, errcode.Newf(errcode.CodeSyntax, "binary data truncated")
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *binReader) done() error {
	if r.off != len(r.buf) {
		return errcode.Newf(errcode.CodeSyntax, "trailing garbage in binary data")
	}
	return nil
}

// DecodeTSVector parses the wire form, enforcing entry order and the
// lexeme and position limits.
func DecodeTSVector(data []byte) (*TSVector, error) {
	r := &binReader{buf: data}
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	v := &TSVector{Entries: make([]Entry, 0, count)}
	for i := uint32(0); i < count; i++ {
		lexLen, err := r.u16()
		if err != nil {
			return nil, err
		}
		if int(lexLen) > MaxLexemeBytes {
			return nil, errcode.Newf(errcode.CodeLimitExceeded, "lexeme is %d bytes, maximum is %d", lexLen, MaxLexemeBytes)
		}
		lex, err := r.bytes(int(lexLen))
		if err != nil {
			return nil, err
		}
		lexeme := string(lex)
		if n := len(v.Entries); n > 0 && compareLex(v.Entries[n-1].Lexeme, lexeme) >= 0 {
			return nil, errcode.Newf(errcode.CodeSyntax, "tsvector entries out of order")
		}
		npos, err := r.u16()
		if err != nil {
			return nil, err
		}
		if int(npos) > MaxPositionsPerLexeme {
			return nil, errcode.Newf(errcode.CodeLimitExceeded, "lexeme has %d positions, maximum is %d", npos, MaxPositionsPerLexeme)
		}
		var positions []WordPos
		for j := uint16(0); j < npos; j++ {
			raw, err := r.u16()
			if err != nil {
				return nil, err
			}
			p := WordPos(raw)
			if len(positions) > 0 && positions[len(positions)-1].Pos() >= p.Pos() {
				return nil, errcode.Newf(errcode.CodeSyntax, "tsvector positions out of order")
			}
			positions = append(positions, p)
		}
		v.Entries = append(v.Entries, Entry{Lexeme: lexeme, Positions: positions})
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeBinary renders the query's wire form. Back-links are not
// transmitted; the prefix layout determines them.
func (q *TSQuery) EncodeBinary() []byte {
	var b bytes.Buffer
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(q.Items)))
	b.Write(tmp[:])
	for _, it := range q.Items {
		b.WriteByte(byte(it.Type))
		switch it.Type {
		case QueryVal:
			b.WriteByte(it.Weights)
			if it.Prefix {
				b.WriteByte(1)
			} else {
				b.WriteByte(0)
			}
			binary.BigEndian.PutUint16(tmp[:2], uint16(len(it.Value)))
			b.Write(tmp[:2])
			b.WriteString(it.Value)
		case QueryOpr:
			b.WriteByte(it.Op)
		}
	}
	return b.Bytes()
}

// DecodeTSQuery parses the wire form and recomputes the back-links,
// rejecting malformed trees.
func DecodeTSQuery(data []byte) (*TSQuery, error) {
	r := &binReader{buf: data}
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	if count > MaxQueryItems {
		return nil, errcode.Newf(errcode.CodeLimitExceeded, "tsquery has %d items, maximum is %d", count, MaxQueryItems)
	}
	items := make([]Item, 0, count)
	for i := uint32(0); i < count; i++ {
		typeBytes, err := r.bytes(1)
		if err != nil {
			return nil, err
		}
		switch NodeType(typeBytes[0]) {
		case QueryVal:
			meta, err := r.bytes(2)
			if err != nil {
				return nil, err
			}
			lexLen, err := r.u16()
			if err != nil {
				return nil, err
			}
			if int(lexLen) > MaxLexemeBytes {
				return nil, errcode.Newf(errcode.CodeLimitExceeded, "operand is %d bytes, maximum is %d", lexLen, MaxLexemeBytes)
			}
			lex, err := r.bytes(int(lexLen))
			if err != nil {
				return nil, err
			}
			items = append(items, Item{
				Type:    QueryVal,
				Value:   string(lex),
				Weights: meta[0],
				Prefix:  meta[1] != 0,
			})
		case QueryOpr:
			opByte, err := r.bytes(1)
			if err != nil {
				return nil, err
			}
			op := opByte[0]
			if op != OpNot && op != OpAnd && op != OpOr {
				return nil, errcode.Newf(errcode.CodeSyntax, "unknown tsquery operator %d", op)
			}
			items = append(items, Item{Type: QueryOpr, Op: op})
		case QueryStop:
			items = append(items, Item{Type: QueryStop})
		default:
			return nil, errcode.Newf(errcode.CodeSyntax, "unknown tsquery item type %d", typeBytes[0])
		}
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	if err := relinkItems(items); err != nil {
		return nil, err
	}
	return &TSQuery{Items: items}, nil
}

// relinkItems recomputes the Left offsets of a prefix-order item array
// and validates that the array is exactly one well-formed tree.
func relinkItems(items []Item) error {
	if len(items) == 0 {
		return nil
	}
	var walk func(i, depth int) (int, error)
	walk = func(i, depth int) (int, error) {
		if depth > maxParseDepth {
			return 0, errcode.Newf(errcode.CodeLimitExceeded, "tsquery nesting exceeds depth limit %d", maxParseDepth)
		}
		if i >= len(items) {
			return 0, errcode.Newf(errcode.CodeSyntax, "tsquery item array is truncated")
		}
		it := &items[i]
		if it.Type != QueryOpr {
			return i + 1, nil
		}
		if it.Op == OpNot {
			it.Left = 1
			return walk(i+1, depth+1)
		}
		rightEnd, err := walk(i+1, depth+1)
		if err != nil {
			return 0, err
		}
		it.Left = rightEnd - i
		return walk(rightEnd, depth+1)
	}
	end, err := walk(0, 0)
	if err != nil {
		return err
	}
	if end != len(items) {
		return errcode.Newf(errcode.CodeSyntax, "tsquery item array has trailing items")
	}
	return nil
}
