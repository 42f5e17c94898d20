package urlparser

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// idnaProfile implements the IDNA collaborator required by spec.md §4.2
// step 3 and §6 ("A function domain_to_ascii(domain) → ASCII | IDNA-error
// implementing UTS#46"). Transitional_Processing = false,
// UseSTD3ASCIIRules = false, VerifyDnsLength = false, matching the spec's
// parameters exactly; the teacher (region23-urlparser) already calls
// into golang.org/x/net/idna synchronously from Normalize, establishing
// that idiom for this codebase.
var idnaProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(false),
	idna.VerifyDNSLength(false),
	idna.BidiRule(),
)

// domainToASCII implements the collaborator interface named in spec.md §6.
func domainToASCII(domain string) (string, error) {
	ascii, err := idnaProfile.ToASCII(domain)
	if err != nil {
		return "", fmt.Errorf("IDNA ToASCII: %w", err)
	}
	return ascii, nil
}

// parseHost implements spec.md §4.2. isOpaque is true when the URL's
// scheme is not in the special set.
func parseHost(input string, isOpaque bool) (*Host, *ParseError) {
	if input == "" {
		return &Host{Kind: HostEmpty}, nil
	}
	if strings.HasPrefix(input, "[") {
		if !strings.HasSuffix(input, "]") {
			return nil, newParseError(input, ReasonInvalidIPv6Address, nil)
		}
		pieces, err := parseIPv6(input[1 : len(input)-1])
		if err != nil {
			return nil, newParseError(input, ReasonInvalidIPv6Address, err)
		}
		return &Host{Kind: HostIPv6, IPv6: pieces}, nil
	}
	if isOpaque {
		return parseOpaqueHost(input)
	}
	return parseDomainOrIPv4Host(input)
}

// parseOpaqueHost implements spec.md §4.2 step 2.
func parseOpaqueHost(input string) (*Host, *ParseError) {
	for _, r := range input {
		if r != '%' && isForbiddenHostCodePoint(r) {
			return nil, newParseError(input, ReasonInvalidHost, nil)
		}
	}
	var buf strings.Builder
	for _, r := range input {
		percentEncodeRune(&buf, r, c0ControlPercentEncodeSet)
	}
	return &Host{Kind: HostOpaque, Domain: buf.String()}, nil
}

// parseDomainOrIPv4Host implements spec.md §4.2 steps 3–5.
func parseDomainOrIPv4Host(input string) (*Host, *ParseError) {
	decodedBytes := percentDecode(input)
	domain := decodeUTF8Lossy(decodedBytes)

	ascii, err := domainToASCII(domain)
	if err != nil {
		return nil, newParseError(input, ReasonInvalidDomain, err)
	}
	ascii = strings.ToLower(ascii)

	for _, r := range ascii {
		if isForbiddenHostCodePoint(r) {
			return nil, newParseError(input, ReasonInvalidHost, nil)
		}
	}

	if looksLikeIPv4(ascii) {
		v4, ok := parseIPv4(ascii)
		if !ok {
			return nil, newParseError(input, ReasonInvalidIPv4Address, nil)
		}
		return &Host{Kind: HostIPv4, IPv4: v4}, nil
	}

	return &Host{Kind: HostDomain, Domain: ascii}, nil
}

// decodeUTF8Lossy decodes b as UTF-8, substituting U+FFFD for invalid
// sequences, per spec.md §4.2 step 3.
func decodeUTF8Lossy(b []byte) string {
	return string([]rune(string(b)))
}

// ---- IPv4 ----

// looksLikeIPv4 implements the spec's "ends in a number" check: split on
// '.', and test whether the last non-empty part looks numeric.
func looksLikeIPv4(s string) bool {
	if s == "" {
		return false
	}
	parts := strings.Split(s, ".")
	last := parts[len(parts)-1]
	if last == "" {
		if len(parts) == 1 {
			return false
		}
		last = parts[len(parts)-2]
	}
	if last == "" {
		return false
	}
	return isIPv4NumberCandidate(last)
}

func isIPv4NumberCandidate(s string) bool {
	body := s
	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		body = body[2:]
		if body == "" {
			return true // "0x" alone parses to 0, per the standard's number parser
		}
		for _, r := range body {
			if !isASCIIHexDigit(r) {
				return false
			}
		}
		return true
	}
	for _, r := range body {
		if !isASCIIDigit(r) {
			return false
		}
	}
	return body != ""
}

// parseIPv4 implements the spec's IPv4 parser: up to 4 dot-separated
// parts, each parsed as hex (0x/0X prefix), octal (leading 0) or decimal,
// combined into a 32-bit value.
func parseIPv4(input string) (uint32, bool) {
	parts := strings.Split(input, ".")
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 || len(parts) > 4 {
		return 0, false
	}
	numbers := make([]uint64, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return 0, false
		}
		n, ok := parseIPv4Number(part)
		if !ok {
			return 0, false
		}
		numbers = append(numbers, n)
	}
	for i := 0; i < len(numbers)-1; i++ {
		if numbers[i] > 255 {
			return 0, false
		}
	}
	last := numbers[len(numbers)-1]
	maxLast := uint64(1) << (8 * uint(5-len(numbers)))
	if last >= maxLast {
		return 0, false
	}

	var ipv4 uint64
	for i := 0; i < len(numbers)-1; i++ {
		ipv4 += numbers[i] << (8 * uint(3-i))
	}
	ipv4 += last
	return uint32(ipv4), true
}

func parseIPv4Number(part string) (uint64, bool) {
	radix := 10
	switch {
	case strings.HasPrefix(part, "0x") || strings.HasPrefix(part, "0X"):
		radix = 16
		part = part[2:]
	case len(part) >= 2 && part[0] == '0':
		radix = 8
		part = part[1:]
	}
	if part == "" {
		return 0, true
	}
	n, err := strconv.ParseUint(part, radix, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// serializeIPv4 implements the canonical dotted-quad form.
func serializeIPv4(v uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// ---- IPv6 ----

// parseIPv6 implements the spec's IPv6 parser over the bracket-stripped
// interior string: eight colon-separated 16-bit hex groups, with at most
// one "::" elision, and a trailing embedded IPv4 address permitted in the
// last 32 bits.
func parseIPv6(input string) ([8]uint16, error) {
	var address [8]uint16
	pieceIndex := 0
	compress := -1

	runes := []rune(input)
	pos := 0
	peek := func() rune {
		if pos < len(runes) {
			return runes[pos]
		}
		return -1
	}

	if peek() == ':' {
		if pos+1 >= len(runes) || runes[pos+1] != ':' {
			return address, fmt.Errorf("IPv6 address begins with a lone ':'")
		}
		pos += 2
		pieceIndex++
		compress = pieceIndex
	}

	for pos < len(runes) {
		if pieceIndex == 8 {
			return address, fmt.Errorf("too many pieces in IPv6 address")
		}
		if peek() == ':' {
			if compress != -1 {
				return address, fmt.Errorf("more than one '::' in IPv6 address")
			}
			pos++
			pieceIndex++
			compress = pieceIndex
			continue
		}

		value := 0
		length := 0
		for length < 4 && isASCIIHexDigit(peek()) {
			value = value*16 + int(hexDigitValue(byte(peek())))
			pos++
			length++
		}
		switch peek() {
		case '.':
			if length == 0 {
				return address, fmt.Errorf("IPv4 segment with no digits")
			}
			pos -= length
			if pieceIndex > 6 {
				return address, fmt.Errorf("IPv4 segment appears too late in IPv6 address")
			}
			numbersSeen := 0
			for peek() != -1 {
				ipv4Piece := -1
				if numbersSeen > 0 {
					if peek() == '.' && numbersSeen < 4 {
						pos++
					} else {
						return address, fmt.Errorf("malformed embedded IPv4 address")
					}
				}
				if !isASCIIDigit(peek()) {
					return address, fmt.Errorf("malformed embedded IPv4 address")
				}
				for isASCIIDigit(peek()) {
					digit := int(peek() - '0')
					switch {
					case ipv4Piece == -1:
						ipv4Piece = digit
					case ipv4Piece == 0:
						return address, fmt.Errorf("IPv4 segment has leading zero")
					default:
						ipv4Piece = ipv4Piece*10 + digit
					}
					if ipv4Piece > 255 {
						return address, fmt.Errorf("IPv4 segment out of range")
					}
					pos++
				}
				address[pieceIndex] = address[pieceIndex]*256 + uint16(ipv4Piece)
				numbersSeen++
				if numbersSeen == 2 || numbersSeen == 4 {
					pieceIndex++
				}
			}
			if numbersSeen != 4 {
				return address, fmt.Errorf("embedded IPv4 address has wrong number of parts")
			}
			continue
		case ':':
			pos++
			if peek() == -1 {
				return address, fmt.Errorf("IPv6 address unexpectedly ends after ':'")
			}
		case -1:
			// end of input, fall through to store piece below
		default:
			return address, fmt.Errorf("unexpected code point in IPv6 address")
		}
		address[pieceIndex] = uint16(value)
		pieceIndex++
	}

	if compress != -1 {
		swaps := pieceIndex - compress
		pieceIndex = 7
		for pieceIndex != 0 && swaps > 0 {
			address[pieceIndex], address[compress+swaps-1] = address[compress+swaps-1], address[pieceIndex]
			pieceIndex--
			swaps--
		}
	} else if compress == -1 && pieceIndex != 8 {
		return address, fmt.Errorf("IPv6 address has too few pieces")
	}

	return address, nil
}

// serializeIPv6 implements the canonical IPv6 textual form: find the
// longest run of two-or-more zero pieces and compress it with "::".
func serializeIPv6(pieces [8]uint16) string {
	compressStart, compressLen := -1, 0
	runStart, runLen := -1, 0
	for i := 0; i <= 8; i++ {
		if i < 8 && pieces[i] == 0 {
			if runStart == -1 {
				runStart = i
			}
			runLen++
		} else {
			if runLen > compressLen && runLen > 1 {
				compressStart, compressLen = runStart, runLen
			}
			runStart, runLen = -1, 0
		}
	}

	var b strings.Builder
	ignore0 := false
	for i := 0; i < 8; i++ {
		if ignore0 && pieces[i] == 0 {
			continue
		} else if ignore0 {
			ignore0 = false
		}
		if compressStart == i {
			if i == 0 {
				b.WriteString("::")
			} else {
				b.WriteByte(':')
			}
			ignore0 = true
			continue
		}
		b.WriteString(strconv.FormatUint(uint64(pieces[i]), 16))
		if i != 7 {
			b.WriteByte(':')
		}
	}
	return b.String()
}
