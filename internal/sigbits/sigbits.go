// Package sigbits implements fixed-length bit signatures: the lossy key form
// shared by the int-set and text-search GiST opclasses. A signature maps each
// element to one bit via hashing; set-membership tests over signatures are
// supersets of the exact answer.
package sigbits

import (
	"hash/crc32"
	"math/bits"
)

// DefaultLen is the default signature length in bytes. It keeps the key
// comfortably under common index key-size limits.
const DefaultLen = 252

// crc32cTable is pre-computed for the CRC32-Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// HashBytes hashes a lexeme to a 32-bit value used both as the tsquery
// value hash and as the signature bit source.
func HashBytes(b []byte) uint32 {
	return crc32.Checksum(b, crc32cTable)
}

// HashString is HashBytes for strings.
func HashString(s string) uint32 {
	return crc32.Checksum([]byte(s), crc32cTable)
}

// HashInt32 hashes an int32 set element.
func HashInt32(v int32) uint32 {
	var b [4]byte
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	return crc32.Checksum(b[:], crc32cTable)
}

// Signature is a fixed-length bit vector. The zero-length signature is
// invalid; callers size it once and keep the length for the lifetime of an
// index.
type Signature []byte

// New returns an empty signature of siglen bytes.
func New(siglen int) Signature {
	return make(Signature, siglen)
}

// Bits returns the signature length in bits.
func (s Signature) Bits() int { return len(s) * 8 }

// SetBit sets bit i (mod length).
func (s Signature) SetBit(i uint32) {
	i %= uint32(len(s) * 8)
	s[i>>3] |= 1 << (i & 7)
}

// GetBit reports bit i (mod length).
func (s Signature) GetBit(i uint32) bool {
	i %= uint32(len(s) * 8)
	return s[i>>3]&(1<<(i&7)) != 0
}

// SetHash sets the bit addressed by a 32-bit element hash.
func (s Signature) SetHash(h uint32) { s.SetBit(h) }

// TestHash reports the bit addressed by a 32-bit element hash.
func (s Signature) TestHash(h uint32) bool { return s.GetBit(h) }

// Union ORs other into s. Lengths must match.
func (s Signature) Union(other Signature) {
	for i := range s {
		s[i] |= other[i]
	}
}

// Contains reports whether s has every bit of other set: the lossy superset
// test behind signature-level Consistent.
func (s Signature) Contains(other Signature) bool {
	for i := range s {
		if s[i]&other[i] != other[i] {
			return false
		}
	}
	return true
}

// Overlaps reports whether s and other share any bit.
func (s Signature) Overlaps(other Signature) bool {
	for i := range s {
		if s[i]&other[i] != 0 {
			return true
		}
	}
	return false
}

// Count returns the number of set bits.
func (s Signature) Count() int {
	n := 0
	for _, b := range s {
		n += bits.OnesCount8(b)
	}
	return n
}

// Saturated reports whether every bit is set. A saturated signature is
// replaced by the ALLISTRUE flag upstream, dropping the payload.
func (s Signature) Saturated() bool {
	for _, b := range s {
		if b != 0xff {
			return false
		}
	}
	return true
}

// Hamming returns the Hamming distance between s and other.
// Lengths must match.
func Hamming(a, b Signature) int {
	n := 0
	for i := range a {
		n += bits.OnesCount8(a[i] ^ b[i])
	}
	return n
}

// HammingToEmpty is the signature "size" used by the GiST penalty: the
// distance from s to the all-zero signature, which is just the popcount.
func HammingToEmpty(s Signature) int { return s.Count() }

// Clone returns a copy of s.
func (s Signature) Clone() Signature {
	c := make(Signature, len(s))
	copy(c, s)
	return c
}
