package urlparser

import (
	"strings"
	"unicode/utf8"
)

const upperHex = "0123456789ABCDEF"

// percentEncodeRune encodes r into buf under the given encode set,
// spec.md §4.1 percent-encode. Code points outside the set are appended
// unchanged.
func percentEncodeRune(buf *strings.Builder, r rune, set *percentEncodeSet) {
	if !set.contains(r) {
		buf.WriteRune(r)
		return
	}
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	for i := 0; i < n; i++ {
		percentEncodeByte(buf, enc[i])
	}
}

func percentEncodeByte(buf *strings.Builder, b byte) {
	buf.WriteByte('%')
	buf.WriteByte(upperHex[b>>4])
	buf.WriteByte(upperHex[b&0x0F])
}

// percentEncodeString encodes every rune of s under set, returning the
// resulting string.
func percentEncodeString(s string, set *percentEncodeSet) string {
	var buf strings.Builder
	for _, r := range s {
		percentEncodeRune(&buf, r, set)
	}
	return buf.String()
}

// percentDecode implements spec.md §4.1 percent-decode: left-to-right,
// never fails, output is an arbitrary byte sequence.
func percentDecode(s string) []byte {
	out := make([]byte, 0, len(s))
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] == '%' && i+2 < len(b) && isHexByte(b[i+1]) && isHexByte(b[i+2]) {
			out = append(out, hexByteValue(b[i+1], b[i+2]))
			i += 2
		} else {
			out = append(out, b[i])
		}
	}
	return out
}

func isHexByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexDigitValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

func hexByteValue(hi, lo byte) byte {
	return hexDigitValue(hi)<<4 | hexDigitValue(lo)
}

// isRemainingInvalidPercentEncoded reports whether, starting at a '%' code
// point, the following two code points are not both ASCII hex digits. It is
// used by the state machine to fire the "invalid percent encoding"
// validation error without consuming input.
func isRemainingInvalidPercentEncoded(remaining []rune) bool {
	if len(remaining) == 0 || remaining[0] != '%' {
		return false
	}
	if len(remaining) < 3 {
		return true
	}
	return !isASCIIHexDigit(remaining[1]) || !isASCIIHexDigit(remaining[2])
}
