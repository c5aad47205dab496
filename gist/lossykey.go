package gist

import (
	"encoding/binary"
	"sort"

	"github.com/hupe1980/gistkit/errcode"
	"github.com/hupe1980/gistkit/internal/sigbits"
)

// KeyFlag describes the payload of a LossyKey.
type KeyFlag uint32

const (
	// FlagArrKey marks an exact key: a sorted int32 array (set elements or
	// lexeme hashes). Leaf pages may carry exact keys.
	FlagArrKey KeyFlag = 1 << iota
	// FlagSignKey marks a fixed-length bit signature.
	FlagSignKey
	// FlagAllTrue marks a saturated signature stored without payload.
	FlagAllTrue
)

// LossyKey is the signature GiST key (on-disk GISTTYPE) shared by the
// int-set and text-search opclasses: either an exact int32 array, a bit
// signature, or the ALLISTRUE placeholder for a saturated signature.
type LossyKey struct {
	Flags  KeyFlag
	Arr    []int32
	Sign   sigbits.Signature
	SigLen int // signature length in bytes; fixed per index
}

// NewArrayKey builds an exact leaf key from sorted, unique values.
func NewArrayKey(vals []int32, siglen int) *LossyKey {
	return &LossyKey{Flags: FlagArrKey, Arr: vals, SigLen: siglen}
}

// NewSignKey builds a signature key, collapsing to ALLISTRUE when saturated.
func NewSignKey(sign sigbits.Signature) *LossyKey {
	if sign.Saturated() {
		return &LossyKey{Flags: FlagAllTrue, SigLen: len(sign)}
	}
	return &LossyKey{Flags: FlagSignKey, Sign: sign, SigLen: len(sign)}
}

// AllTrue reports whether the key is the saturation placeholder.
func (k *LossyKey) AllTrue() bool { return k.Flags&FlagAllTrue != 0 }

// IsArray reports whether the key carries exact elements.
func (k *LossyKey) IsArray() bool { return k.Flags&FlagArrKey != 0 }

// Signature returns the key's signature form, hashing array elements on
// demand. ALLISTRUE yields a fully set signature.
func (k *LossyKey) Signature() sigbits.Signature {
	switch {
	case k.AllTrue():
		s := sigbits.New(k.SigLen)
		for i := range s {
			s[i] = 0xff
		}
		return s
	case k.IsArray():
		s := sigbits.New(k.SigLen)
		for _, v := range k.Arr {
			s.SetHash(sigbits.HashInt32(v))
		}
		return s
	default:
		return k.Sign
	}
}

// Union implements Key. Signatures OR together; an exact array unions into
// the signature domain. Saturation collapses to ALLISTRUE.
func (k *LossyKey) Union(other Key) Key {
	o := other.(*LossyKey)
	if k.AllTrue() || o.AllTrue() {
		return &LossyKey{Flags: FlagAllTrue, SigLen: k.SigLen}
	}
	s := k.Signature().Clone()
	s.Union(o.Signature())
	return NewSignKey(s)
}

// Size implements Key: Hamming distance to the empty signature.
func (k *LossyKey) Size() float64 {
	if k.AllTrue() {
		return float64(k.SigLen * 8)
	}
	return float64(sigbits.HammingToEmpty(k.Signature()))
}

// Same implements Key.
func (k *LossyKey) Same(other Key) bool {
	o := other.(*LossyKey)
	if k.AllTrue() || o.AllTrue() {
		return k.AllTrue() == o.AllTrue()
	}
	if k.IsArray() != o.IsArray() {
		return false
	}
	if k.IsArray() {
		if len(k.Arr) != len(o.Arr) {
			return false
		}
		for i := range k.Arr {
			if k.Arr[i] != o.Arr[i] {
				return false
			}
		}
		return true
	}
	return sigbits.Hamming(k.Sign, o.Sign) == 0
}

// Waste implements Key: Hamming distance between the signature forms.
func (k *LossyKey) Waste(other Key) float64 {
	o := other.(*LossyKey)
	return float64(sigbits.Hamming(k.Signature(), o.Signature()))
}

// ContainsHash reports whether the key admits an element with the given
// hash (stored as int32, sorted). ALLISTRUE admits everything; array keys
// answer exactly.
func (k *LossyKey) ContainsHash(h int32) bool {
	if k.AllTrue() {
		return true
	}
	if k.IsArray() {
		i := sort.Search(len(k.Arr), func(i int) bool { return k.Arr[i] >= h })
		return i < len(k.Arr) && k.Arr[i] == h
	}
	return k.Sign.TestHash(uint32(h))
}

// ContainsSign reports the lossy superset test against a query signature.
func (k *LossyKey) ContainsSign(q sigbits.Signature) bool {
	if k.AllTrue() {
		return true
	}
	return k.Signature().Contains(q)
}

// OverlapsSign reports the lossy intersection test against a query
// signature.
func (k *LossyKey) OverlapsSign(q sigbits.Signature) bool {
	if k.AllTrue() {
		return true
	}
	return k.Signature().Overlaps(q)
}

// Encode emits the on-disk form: a 4-byte flag word followed by either the
// int32 array or the raw signature; ALLISTRUE has no payload.
func (k *LossyKey) Encode() []byte {
	var payload int
	switch {
	case k.AllTrue():
	case k.IsArray():
		payload = 4 * len(k.Arr)
	default:
		payload = len(k.Sign)
	}
	out := make([]byte, 4+payload)
	binary.LittleEndian.PutUint32(out, uint32(k.Flags))
	switch {
	case k.AllTrue():
	case k.IsArray():
		for i, v := range k.Arr {
			binary.LittleEndian.PutUint32(out[4+4*i:], uint32(v))
		}
	default:
		copy(out[4:], k.Sign)
	}
	return out
}

// DecodeLossyKey parses the on-disk form. siglen is the opclass option the
// index was built with.
func DecodeLossyKey(data []byte, siglen int) (*LossyKey, error) {
	if len(data) < 4 {
		return nil, errcode.Newf(errcode.CodeSyntax, "signature key too short: %d bytes", len(data))
	}
	flags := KeyFlag(binary.LittleEndian.Uint32(data))
	payload := data[4:]
	switch {
	case flags&FlagAllTrue != 0:
		if len(payload) != 0 {
			return nil, errcode.Newf(errcode.CodeSyntax, "ALLISTRUE key carries %d payload bytes", len(payload))
		}
		return &LossyKey{Flags: FlagAllTrue, SigLen: siglen}, nil
	case flags&FlagArrKey != 0:
		if len(payload)%4 != 0 {
			return nil, errcode.Newf(errcode.CodeSyntax, "array key payload not a multiple of 4: %d", len(payload))
		}
		arr := make([]int32, len(payload)/4)
		for i := range arr {
			arr[i] = int32(binary.LittleEndian.Uint32(payload[4*i:]))
		}
		return &LossyKey{Flags: FlagArrKey, Arr: arr, SigLen: siglen}, nil
	case flags&FlagSignKey != 0:
		if len(payload) != siglen {
			return nil, errcode.Newf(errcode.CodeLimitExceeded, "signature length %d does not match opclass siglen %d", len(payload), siglen)
		}
		return &LossyKey{Flags: FlagSignKey, Sign: sigbits.Signature(payload), SigLen: siglen}, nil
	}
	return nil, errcode.Newf(errcode.CodeSyntax, "signature key with unknown flags %#x", uint32(flags))
}
