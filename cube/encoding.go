package cube

import (
	"encoding/binary"
	"math"

	"github.com/hupe1980/gistkit/errcode"
)

// Binary layout: a 4-byte header with the dimension count in the low 8 bits
// and the point flag in the top bit, followed by dim (point) or 2*dim (box)
// IEEE-754 float64 values. The host's varlena framing is not included.
const (
	headerPointBit = 1 << 31
	headerDimMask  = 0xff
)

// Encode emits the on-disk form of the cube.
func (c *Cube) Encode() []byte {
	header := uint32(c.dim)
	if c.point {
		header |= headerPointBit
	}
	out := make([]byte, 4+8*len(c.coords))
	binary.LittleEndian.PutUint32(out, header)
	for i, v := range c.coords {
		binary.LittleEndian.PutUint64(out[4+8*i:], math.Float64bits(v))
	}
	return out
}

// Decode parses the on-disk form produced by Encode.
func Decode(data []byte) (*Cube, error) {
	if len(data) < 4 {
		return nil, errcode.Newf(errcode.CodeSyntax, "cube data too short: %d bytes", len(data))
	}
	header := binary.LittleEndian.Uint32(data)
	dim := int(header & headerDimMask)
	point := header&headerPointBit != 0
	if dim > MaxDim {
		return nil, dimError(dim)
	}
	n := dim
	if !point {
		n = 2 * dim
	}
	if len(data) != 4+8*n {
		return nil, errcode.Newf(errcode.CodeSyntax, "cube data has %d bytes, want %d for dim=%d point=%v", len(data), 4+8*n, dim, point)
	}
	coords := make([]float64, n)
	for i := range coords {
		coords[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[4+8*i:]))
	}
	return &Cube{dim: dim, point: point, coords: coords}, nil
}
