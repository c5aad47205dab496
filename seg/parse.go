package seg

import (
	"strconv"
	"strings"

	"github.com/hupe1980/gistkit/errcode"
)

// Parse reads a SEG literal. Accepted forms:
//
//	6.25          exact value
//	~6.3          approximate value
//	<6.3          value is an upper bound
//	>6.3          value is a lower bound
//	5(+-)0.3      range 4.7 .. 5.3
//	6.25 .. 6.50  explicit range; either side may carry ~
func Parse(s string) (*Seg, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return nil, segSyntax(s, "empty input")
	}

	if i := strings.Index(in, "(+-)"); i >= 0 {
		center, _, cext, err := parseBound(in[:i], s)
		if err != nil {
			return nil, err
		}
		delta, _, dext, err := parseBound(in[i+4:], s)
		if err != nil {
			return nil, err
		}
		if cext != ExtNone || dext != ExtNone {
			return nil, segSyntax(s, "the (+-) form cannot carry extensions")
		}
		lo, hi := center-delta, center+delta
		// The bounds are computed, so take their significant digits from
		// their own shortest representations.
		return &Seg{
			Lower: lo, Upper: hi,
			LowerSig: sigDigits(strconv.FormatFloat(float64(lo), 'g', -1, 32)),
			UpperSig: sigDigits(strconv.FormatFloat(float64(hi), 'g', -1, 32)),
		}, nil
	}

	if i := strings.Index(in, ".."); i >= 0 {
		lo, losig, loext, err := parseBound(in[:i], s)
		if err != nil {
			return nil, err
		}
		hi, hisig, hiext, err := parseBound(in[i+2:], s)
		if err != nil {
			return nil, err
		}
		if lo > hi {
			return nil, segSyntax(s, "lower bound %v exceeds upper bound %v", lo, hi)
		}
		return &Seg{Lower: lo, Upper: hi, LowerSig: losig, UpperSig: hisig, LowerExt: loext, UpperExt: hiext}, nil
	}

	v, sig, ext, err := parseBound(in, s)
	if err != nil {
		return nil, err
	}
	return &Seg{Lower: v, Upper: v, LowerSig: sig, UpperSig: sig, LowerExt: ext, UpperExt: ext}, nil
}

func segSyntax(in, format string, args ...any) error {
	return errcode.Newf(errcode.CodeSyntax, "invalid seg literal: "+format, args...).
		WithDetail("input was %q", in)
}

// parseBound reads one endpoint: an optional extension marker followed by a
// float. It also counts the significant digits of the literal.
func parseBound(tok, whole string) (float32, uint8, byte, error) {
	tok = strings.TrimSpace(tok)
	ext := ExtNone
	if tok != "" {
		switch tok[0] {
		case ExtAprx, ExtLess, ExtGrtr:
			ext = tok[0]
			tok = strings.TrimSpace(tok[1:])
		}
	}
	if tok == "" {
		return 0, 0, 0, segSyntax(whole, "missing number")
	}
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, 0, 0, segSyntax(whole, "%q is not a valid number", tok)
	}
	return float32(v), sigDigits(tok), ext, nil
}

// sigDigits counts the significant digits of a numeric literal: mantissa
// digits without sign, decimal point and leading zeros; trailing zeros
// count ("5.0" has two).
func sigDigits(tok string) uint8 {
	if i := strings.IndexAny(tok, "eE"); i >= 0 {
		tok = tok[:i]
	}
	digits := make([]byte, 0, len(tok))
	for i := 0; i < len(tok); i++ {
		if tok[i] >= '0' && tok[i] <= '9' {
			digits = append(digits, tok[i])
		}
	}
	j := 0
	for j < len(digits)-1 && digits[j] == '0' {
		j++
	}
	n := len(digits) - j
	if n > 255 {
		n = 255
	}
	return uint8(n)
}

// formatBound renders one endpoint honoring its significant digits,
// restoring trailing zeros the float dropped ("6.50" stays "6.50").
func formatBound(v float32, sig uint8, ext byte) string {
	prec := int(sig)
	if prec < 1 {
		prec = -1
	}
	s := strconv.FormatFloat(float64(v), 'g', prec, 32)
	if n := int(sig) - int(sigDigits(s)); n > 0 && !strings.ContainsAny(s, "eE") {
		if !strings.Contains(s, ".") {
			s += "."
		}
		s += strings.Repeat("0", n)
	}
	if ext != ExtNone && ext != ExtLower {
		return string(ext) + s
	}
	return s
}

// String renders the canonical literal. Single-value forms collapse to one
// endpoint; ranges use the "lo .. hi" form.
func (a *Seg) String() string {
	if a.Lower == a.Upper && a.LowerExt == a.UpperExt && a.LowerSig == a.UpperSig {
		return formatBound(a.Lower, a.LowerSig, a.LowerExt)
	}
	return formatBound(a.Lower, a.LowerSig, a.LowerExt) + " .. " + formatBound(a.Upper, a.UpperSig, a.UpperExt)
}
