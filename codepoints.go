package urlparser

import "github.com/bits-and-blooms/bitset"

// Code-point classification tables. Each table is a 128-bit set indexed by
// ASCII code unit, built once at package init and tested with
// table.Test(uint(c)) the way the wider URL-parsing pack represents fixed
// character classes (see DESIGN.md).

var (
	asciiAlpha      = newASCIISet(func(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') })
	asciiDigit      = newASCIISet(func(c byte) bool { return c >= '0' && c <= '9' })
	asciiAlphaDigit = newASCIISet(func(c byte) bool {
		return asciiAlpha.Test(uint(c)) || asciiDigit.Test(uint(c))
	})
	asciiHex = newASCIISet(func(c byte) bool {
		return asciiDigit.Test(uint(c)) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	})
	schemeTail = newASCIISet(func(c byte) bool {
		return asciiAlphaDigit.Test(uint(c)) || c == '+' || c == '-' || c == '.'
	})
)

func newASCIISet(pred func(byte) bool) *bitset.BitSet {
	b := bitset.New(128)
	for c := 0; c < 128; c++ {
		if pred(byte(c)) {
			b.Set(uint(c))
		}
	}
	return b
}

func isASCIIAlpha(r rune) bool      { return r >= 0 && r < 128 && asciiAlpha.Test(uint(r)) }
func isASCIIDigit(r rune) bool      { return r >= 0 && r < 128 && asciiDigit.Test(uint(r)) }
func isASCIIAlphanumeric(r rune) bool {
	return r >= 0 && r < 128 && asciiAlphaDigit.Test(uint(r))
}
func isASCIIHexDigit(r rune) bool { return r >= 0 && r < 128 && asciiHex.Test(uint(r)) }
func isSchemeTailCodePoint(r rune) bool {
	return r >= 0 && r < 128 && schemeTail.Test(uint(r))
}

// isC0ControlOrSpace reports whether r is in [U+0000, U+001F] or is U+0020.
func isC0ControlOrSpace(r rune) bool {
	return (r >= 0x0000 && r <= 0x001F) || r == 0x0020
}

// isASCIITabOrNewline reports whether r is TAB, LF or CR.
func isASCIITabOrNewline(r rune) bool {
	return r == 0x0009 || r == 0x000A || r == 0x000D
}

// isForbiddenHostCodePoint reports membership in the forbidden host
// code-point set, spec.md GLOSSARY. '%' is included here; callers that
// allow a percent-escape introducer check for that separately.
func isForbiddenHostCodePoint(r rune) bool {
	switch r {
	case 0x0000, 0x0009, 0x000A, 0x000D, 0x0020,
		'#', '%', '/', ':', '?', '@', '[', '\\', ']', '|':
		return true
	}
	return false
}

// isNoncharacter reports whether r is one of the 66 Unicode noncharacters:
// U+FDD0..U+FDEF and the last two code points of every plane.
func isNoncharacter(r rune) bool {
	if r >= 0xFDD0 && r <= 0xFDEF {
		return true
	}
	switch r {
	case 0xFFFE, 0xFFFF, 0x1FFFE, 0x1FFFF, 0x2FFFE, 0x2FFFF,
		0x3FFFE, 0x3FFFF, 0x4FFFE, 0x4FFFF, 0x5FFFE, 0x5FFFF,
		0x6FFFE, 0x6FFFF, 0x7FFFE, 0x7FFFF, 0x8FFFE, 0x8FFFF,
		0x9FFFE, 0x9FFFF, 0xAFFFE, 0xAFFFF, 0xBFFFE, 0xBFFFF,
		0xCFFFE, 0xCFFFF, 0xDFFFE, 0xDFFFF, 0xEFFFE, 0xEFFFF,
		0xFFFFE, 0xFFFFF, 0x10FFFE, 0x10FFFF:
		return true
	}
	return false
}

func isSurrogate(r rune) bool { return r >= 0xD800 && r <= 0xDFFF }

// isURLCodePoint implements spec.md §4.1 is_url_code_point.
func isURLCodePoint(r rune) bool {
	if isASCIIAlphanumeric(r) {
		return true
	}
	switch r {
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
		':', ';', '=', '?', '@', '_', '~':
		return true
	}
	if r < 0x00A0 || r > 0x10FFFD {
		return false
	}
	if isSurrogate(r) {
		return false
	}
	if r >= 0xFDD0 && r <= 0xFDEF {
		return false
	}
	if isNoncharacter(r) {
		return false
	}
	return true
}

// percentEncodeSet is one of the four fixed encode sets from spec.md §4.1,
// represented as a predicate plus a precomputed 128-bit table for the ASCII
// range (every code point above U+007E is always a member, per the C0 set's
// base definition, and membership is monotone across the four sets).
type percentEncodeSet struct {
	name  string
	table *bitset.BitSet
}

func newPercentEncodeSet(name string, extra ...rune) *percentEncodeSet {
	b := bitset.New(128)
	for c := 0; c <= 0x1F; c++ {
		b.Set(uint(c))
	}
	for _, r := range extra {
		if r >= 0 && r < 128 {
			b.Set(uint(r))
		}
	}
	return &percentEncodeSet{name: name, table: b}
}

// contains reports whether r must be percent-encoded under this set.
func (s *percentEncodeSet) contains(r rune) bool {
	if r > 0x7E {
		return true
	}
	if r < 0 {
		return true
	}
	return s.table.Test(uint(r))
}

var (
	// C0ControlPercentEncodeSet: [U+0000, U+001F] plus > U+007E (implicit
	// in percentEncodeSet.contains).
	c0ControlPercentEncodeSet = newPercentEncodeSet("C0 control")

	// FragmentPercentEncodeSet: C0 ∪ { space, ", <, >, ` }.
	fragmentPercentEncodeSet = newPercentEncodeSet("fragment", ' ', '"', '<', '>', '`')

	// PathPercentEncodeSet: fragment ∪ { #, ?, {, } }.
	pathPercentEncodeSet = newPercentEncodeSet("path", ' ', '"', '<', '>', '`', '#', '?', '{', '}')

	// UserinfoPercentEncodeSet: path ∪ { /, :, ;, =, @, [, \, ], ^, | }.
	userinfoPercentEncodeSet = newPercentEncodeSet("userinfo",
		' ', '"', '<', '>', '`', '#', '?', '{', '}',
		'/', ':', ';', '=', '@', '[', '\\', ']', '^', '|')
)
