package urlparser

import (
	"strconv"
	"strings"
)

// parserState enumerates the twenty-one states of spec.md §4.4.
type parserState int

const (
	stateNone parserState = iota
	stateSchemeStart
	stateScheme
	stateNoScheme
	stateSpecialRelativeOrAuthority
	statePathOrAuthority
	stateRelative
	stateRelativeSlash
	stateSpecialAuthoritySlashes
	stateSpecialAuthorityIgnoreSlashes
	stateAuthority
	stateHost
	stateHostname
	statePort
	stateFile
	stateFileSlash
	stateFileHost
	statePathStart
	statePath
	stateCannotBeABaseURL
	stateQuery
	stateFragment
)

// StateOverride is the parserState type exposed for
// ParseWithStateOverride callers — the embedding attribute-setter layer
// named in spec.md §1/§6 ("presentation of mutator methods belongs to
// the embedding layer"). Only the states a setter can legally re-enter
// the machine at are exported; the rest remain internal to the state
// machine's own transitions.
type StateOverride = parserState

const (
	StateOverrideScheme     StateOverride = stateScheme
	StateOverrideHost       StateOverride = stateHost
	StateOverrideHostname   StateOverride = stateHostname
	StateOverridePort       StateOverride = statePort
	StateOverridePathStart  StateOverride = statePathStart
	StateOverrideQuery      StateOverride = stateQuery
	StateOverrideFragment   StateOverride = stateFragment
)

// eof is the sentinel code point processed at pointer == len(input), per
// spec.md §4.4. A handler that decrements the pointer at EOF has the
// sentinel processed again in its next state; the machine stops once the
// pointer has moved past it.
const eof rune = -1

// nextCodePoint reads the code point at *pointer and advances it,
// returning eof once the pointer reaches len(input). Advancing past EOF
// is allowed by design (spec.md §4.4, §9).
func nextCodePoint(input []rune, pointer *int) rune {
	if *pointer >= len(input) {
		*pointer++
		return eof
	}
	r := input[*pointer]
	*pointer++
	return r
}

// remainingFrom returns input starting at the code point last returned by
// nextCodePoint (i.e. including it), since *pointer already advanced past
// it.
func remainingFrom(input []rune, pointer int) []rune {
	if pointer <= 0 {
		return input
	}
	if pointer-1 >= len(input) {
		return nil
	}
	return input[pointer-1:]
}

// remainingAfter returns the tail strictly after the code point last
// returned by nextCodePoint — the look-ahead slice handlers call
// `remaining` in spec.md §4.4.
func remainingAfter(input []rune, pointer int) []rune {
	if pointer >= len(input) {
		return nil
	}
	return input[pointer:]
}

func startsWith(haystack []rune, needle string) bool {
	n := []rune(needle)
	if len(haystack) < len(n) {
		return false
	}
	for i, r := range n {
		if haystack[i] != r {
			return false
		}
	}
	return true
}

// runStateMachine drives the twenty-one-state machine over input, mutating
// url in place, starting from state (stateSchemeStart for a fresh parse,
// or stateOverride for an attribute-setter re-entry per spec.md §6).
// base is the URL to resolve relative references against, or nil.
func (p *Parser) runStateMachine(url, base *URL, input []rune, state parserState, stateOverride parserState) *ParseError {
	stateOverridden := stateOverride != stateNone

	// spec.md §9(c): entering the query or fragment state initializes the
	// corresponding field to the empty string. Every in-machine transition
	// into these states already does this (e.g. stateRelative, statePath);
	// ParseWithStateOverride can also enter directly at stateQuery or
	// stateFragment, which needs the same initialization here.
	if stateOverridden {
		switch state {
		case stateQuery:
			if url.Query == nil {
				url.Query = stringPtr("")
			}
		case stateFragment:
			if url.Fragment == nil {
				url.Fragment = stringPtr("")
			}
		}
	}

	var buffer strings.Builder
	atSignSeen := false
	insideBrackets := false
	passwordTokenSeen := false
	pointer := 0

	validationError := func(kind ValidationErrorKind) *ParseError {
		p.recordValidationError(url, kind, pointer-1)
		if p.failOnValidationError {
			return newParseError(string(input), ReasonIllegalCodePoint, nil)
		}
		return nil
	}

	for {
		c := nextCodePoint(input, &pointer)
		remaining := remainingAfter(input, pointer)
		isEOF := c == eof

		switch state {
		case stateSchemeStart:
			switch {
			case isASCIIAlpha(c):
				buffer.WriteRune(lowerRune(c))
				state = stateScheme
			case !stateOverridden:
				state = stateNoScheme
				pointer--
			default:
				return newParseError(string(input), ReasonInvalidScheme, nil)
			}

		case stateScheme:
			switch {
			case isSchemeTailCodePoint(c):
				buffer.WriteRune(lowerRune(c))
			case c == ':':
				scheme := buffer.String()
				if stateOverridden {
					if p.isSpecialScheme(url.Scheme) != p.isSpecialScheme(scheme) {
						return nil
					}
					if url.HasCredentials() || url.Port != nil {
						if scheme == "file" {
							return nil
						}
					}
					if url.Scheme == "file" && (url.Host == nil || url.Host.Kind == HostEmpty) {
						return nil
					}
				}
				url.Scheme = scheme
				if stateOverridden {
					p.cleanDefaultPort(url)
					return nil
				}
				buffer.Reset()
				switch {
				case url.Scheme == "file":
					if !startsWith(remaining, "//") {
						if err := validationError(ValidationSpecialSchemeMissingSlashes); err != nil {
							return err
						}
					}
					state = stateFile
				case p.isSpecialScheme(url.Scheme) && base != nil && base.Scheme == url.Scheme:
					state = stateSpecialRelativeOrAuthority
				case p.isSpecialScheme(url.Scheme):
					state = stateSpecialAuthoritySlashes
				case len(remaining) > 0 && remaining[0] == '/':
					state = statePathOrAuthority
					pointer++
				default:
					url.CannotBeBase = true
					url.Path = append(url.Path, "")
					state = stateCannotBeABaseURL
				}
			case !stateOverridden:
				buffer.Reset()
				state = stateNoScheme
				pointer = 0
			default:
				return newParseError(string(input), ReasonInvalidScheme, nil)
			}

		case stateNoScheme:
			if base == nil || (base.CannotBeBase && c != '#') {
				return newParseError(string(input), ReasonMissingSchemeNoBase, nil)
			}
			if base != nil && base.CannotBeBase && c == '#' {
				url.Scheme = base.Scheme
				url.Path = clonePath(base.Path)
				url.CannotBeBase = true
				url.Query = copyStringPtr(base.Query)
				url.Fragment = stringPtr("")
				state = stateFragment
			} else if base != nil && base.Scheme != "file" {
				state = stateRelative
				pointer--
			} else {
				state = stateFile
				pointer--
			}

		case stateSpecialRelativeOrAuthority:
			if c == '/' && len(remaining) > 0 && remaining[0] == '/' {
				state = stateSpecialAuthorityIgnoreSlashes
				pointer++
			} else {
				if err := validationError(ValidationIllegalSlash); err != nil {
					return err
				}
				state = stateRelative
				pointer--
			}

		case statePathOrAuthority:
			if c == '/' {
				state = stateAuthority
			} else {
				state = statePath
				pointer--
			}

		case stateRelative:
			url.Scheme = base.Scheme
			if isEOF {
				copyAuthorityAndPath(url, base)
				url.Query = copyStringPtr(base.Query)
			} else {
				switch {
				case c == '/':
					state = stateRelativeSlash
				case c == '?':
					copyAuthorityAndPath(url, base)
					url.Query = stringPtr("")
					state = stateQuery
				case c == '#':
					copyAuthorityAndPath(url, base)
					url.Query = copyStringPtr(base.Query)
					url.Fragment = stringPtr("")
					state = stateFragment
				case p.isSpecialSchemeAndBackslash(url.Scheme, c):
					if err := validationError(ValidationIllegalSlash); err != nil {
						return err
					}
					state = stateRelativeSlash
				default:
					copyAuthorityAndPath(url, base)
					if len(url.Path) > 0 {
						url.Path = url.Path[:len(url.Path)-1]
					}
					state = statePath
					pointer--
				}
			}

		case stateRelativeSlash:
			if p.isSpecialScheme(url.Scheme) && (c == '/' || c == '\\') {
				if c == '\\' {
					if err := validationError(ValidationIllegalSlash); err != nil {
						return err
					}
				}
				state = stateSpecialAuthorityIgnoreSlashes
			} else if c == '/' {
				state = stateAuthority
			} else {
				url.Username = base.Username
				url.Password = base.Password
				url.Host = cloneHost(base.Host)
				url.Port = copyIntPtr(base.Port)
				state = statePath
				pointer--
			}

		case stateSpecialAuthoritySlashes:
			if c == '/' && len(remaining) > 0 && remaining[0] == '/' {
				state = stateSpecialAuthorityIgnoreSlashes
				pointer++
			} else {
				if err := validationError(ValidationIllegalSlash); err != nil {
					return err
				}
				state = stateSpecialAuthorityIgnoreSlashes
				pointer--
			}

		case stateSpecialAuthorityIgnoreSlashes:
			if c != '/' && c != '\\' {
				state = stateAuthority
				pointer--
			} else if err := validationError(ValidationIllegalSlash); err != nil {
				return err
			}

		case stateAuthority:
			switch {
			case c == '@':
				if err := validationError(ValidationAtInAuthority); err != nil {
					return err
				}
				if atSignSeen {
					prefixed := "%40" + buffer.String()
					buffer.Reset()
					buffer.WriteString(prefixed)
				}
				atSignSeen = true
				userinfo := []rune(buffer.String())
				idx := 0
				for idx < len(userinfo) {
					uc := userinfo[idx]
					if uc == ':' && !passwordTokenSeen {
						passwordTokenSeen = true
						idx++
						continue
					}
					var eb strings.Builder
					percentEncodeRune(&eb, uc, userinfoPercentEncodeSet)
					if passwordTokenSeen {
						url.Password += eb.String()
					} else {
						url.Username += eb.String()
					}
					idx++
				}
				buffer.Reset()
			case isEOF || c == '/' || c == '?' || c == '#' || p.isSpecialSchemeAndBackslash(url.Scheme, c):
				if atSignSeen && buffer.Len() == 0 {
					return newParseError(string(input), ReasonMissingHost, nil)
				}
				pointer -= len([]rune(buffer.String())) + 1
				buffer.Reset()
				state = stateHost
			default:
				buffer.WriteRune(c)
			}

		case stateHost, stateHostname:
			if stateOverridden && url.Scheme == "file" {
				pointer--
				state = stateFileHost
			} else if c == ':' && !insideBrackets {
				if buffer.Len() == 0 {
					return newParseError(string(input), ReasonMissingHost, nil)
				}
				host, perr := parseHost(buffer.String(), !p.isSpecialScheme(url.Scheme))
				if perr != nil {
					return perr
				}
				url.Host = host
				buffer.Reset()
				state = statePort
				if stateOverride == stateHostname {
					return nil
				}
			} else if isEOF || c == '/' || c == '?' || c == '#' || p.isSpecialSchemeAndBackslash(url.Scheme, c) {
				pointer--
				if p.isSpecialScheme(url.Scheme) && buffer.Len() == 0 {
					return newParseError(string(input), ReasonMissingHost, nil)
				}
				if stateOverridden && buffer.Len() == 0 && (url.HasCredentials() || url.Port != nil) {
					return nil
				}
				host, perr := parseHost(buffer.String(), !p.isSpecialScheme(url.Scheme))
				if perr != nil {
					return perr
				}
				url.Host = host
				buffer.Reset()
				state = statePathStart
				if stateOverridden {
					return nil
				}
			} else {
				if c == '[' {
					insideBrackets = true
				} else if c == ']' {
					insideBrackets = false
				}
				buffer.WriteRune(c)
			}

		case statePort:
			switch {
			case isASCIIDigit(c):
				buffer.WriteRune(c)
			case isEOF || c == '/' || c == '?' || c == '#' || p.isSpecialSchemeAndBackslash(url.Scheme, c) || stateOverridden:
				if buffer.Len() > 0 {
					portNum, err := strconv.Atoi(buffer.String())
					if err != nil || portNum > 65535 {
						return newParseError(string(input), ReasonPortOutOfRange, nil)
					}
					url.Port = &portNum
					p.cleanDefaultPort(url)
					buffer.Reset()
				}
				if stateOverridden {
					return nil
				}
				state = statePathStart
				pointer--
			default:
				return newParseError(string(input), ReasonInvalidPort, nil)
			}

		case stateFile:
			url.Scheme = "file"
			switch {
			case c == '/' || c == '\\':
				if c == '\\' {
					if err := validationError(ValidationIllegalSlash); err != nil {
						return err
					}
				}
				state = stateFileSlash
			case base != nil && base.Scheme == "file":
				if isEOF {
					url.Host = cloneHost(base.Host)
					url.Path = clonePath(base.Path)
					url.Query = copyStringPtr(base.Query)
				} else {
					switch c {
					case '?':
						url.Host = cloneHost(base.Host)
						url.Path = clonePath(base.Path)
						url.Query = stringPtr("")
						state = stateQuery
					case '#':
						url.Host = cloneHost(base.Host)
						url.Path = clonePath(base.Path)
						url.Query = copyStringPtr(base.Query)
						url.Fragment = stringPtr("")
						state = stateFragment
					default:
						if !startsWithWindowsDriveLetter(remainingFrom(input, pointer)) {
							url.Host = cloneHost(base.Host)
							url.Path = clonePath(base.Path)
							shortenPath(url)
						} else if err := validationError(ValidationBadWindowsDriveLetter); err != nil {
							return err
						}
						state = statePath
						pointer--
					}
				}
			default:
				state = statePath
				pointer--
			}

		case stateFileSlash:
			if c == '/' || c == '\\' {
				if c == '\\' {
					if err := validationError(ValidationIllegalSlash); err != nil {
						return err
					}
				}
				state = stateFileHost
			} else {
				if base != nil && base.Scheme == "file" && !startsWithWindowsDriveLetter(remainingFrom(input, pointer)) {
					if len(base.Path) > 0 && isNormalizedWindowsDriveLetter(base.Path[0]) {
						url.Path = append(url.Path, base.Path[0])
					} else {
						url.Host = cloneHost(base.Host)
					}
				}
				state = statePath
				pointer--
			}

		case stateFileHost:
			if isEOF || c == '/' || c == '\\' || c == '?' || c == '#' {
				pointer--
				switch {
				case !stateOverridden && isWindowsDriveLetter(buffer.String()):
					if err := validationError(ValidationBadWindowsDriveLetter); err != nil {
						return err
					}
					state = statePath
				case buffer.Len() == 0:
					url.Host = &Host{Kind: HostEmpty}
					if stateOverridden {
						return nil
					}
					state = statePathStart
				default:
					host, perr := parseHost(buffer.String(), !p.isSpecialScheme(url.Scheme))
					if perr != nil {
						return perr
					}
					if host.Kind == HostDomain && host.Domain == "localhost" {
						host = &Host{Kind: HostEmpty}
					}
					url.Host = host
					if stateOverridden {
						return nil
					}
					buffer.Reset()
					state = statePathStart
				}
			} else {
				buffer.WriteRune(c)
			}

		case statePathStart:
			if p.isSpecialScheme(url.Scheme) {
				if c == '\\' {
					if err := validationError(ValidationIllegalSlash); err != nil {
						return err
					}
				}
				state = statePath
				if c != '/' && c != '\\' {
					pointer--
				}
			} else if !stateOverridden && c == '?' {
				url.Query = stringPtr("")
				state = stateQuery
			} else if !stateOverridden && c == '#' {
				url.Fragment = stringPtr("")
				state = stateFragment
			} else if !isEOF {
				state = statePath
				if c != '/' {
					pointer--
				}
			}

		case statePath:
			atSegmentEnd := isEOF || c == '/' ||
				p.isSpecialSchemeAndBackslash(url.Scheme, c) ||
				(!stateOverridden && (c == '?' || c == '#'))
			if atSegmentEnd {
				if p.isSpecialSchemeAndBackslash(url.Scheme, c) {
					if err := validationError(ValidationIllegalSlash); err != nil {
						return err
					}
				}
				segment := buffer.String()
				switch {
				case isDoubleDotPathSegment(segment):
					shortenPath(url)
					if c != '/' && !p.isSpecialSchemeAndBackslash(url.Scheme, c) {
						url.Path = append(url.Path, "")
					}
				case isSingleDotPathSegment(segment):
					if c != '/' && !p.isSpecialSchemeAndBackslash(url.Scheme, c) {
						url.Path = append(url.Path, "")
					}
				default:
					if url.Scheme == "file" && len(url.Path) == 0 && isWindowsDriveLetter(segment) {
						if url.Host != nil && url.Host.Kind != HostEmpty {
							if err := validationError(ValidationIllegalLocalFileAndHostCombo); err != nil {
								return err
							}
							url.Host = &Host{Kind: HostEmpty}
						}
						segment = string(segment[0]) + ":" + segment[2:]
					}
					url.Path = append(url.Path, segment)
				}
				buffer.Reset()
				if url.Scheme == "file" && (isEOF || c == '?' || c == '#') {
					for len(url.Path) > 1 && url.Path[0] == "" {
						if err := validationError(ValidationIllegalSlash); err != nil {
							return err
						}
						url.Path = url.Path[1:]
					}
				}
				if c == '?' {
					url.Query = stringPtr("")
					state = stateQuery
				}
				if c == '#' {
					url.Fragment = stringPtr("")
					state = stateFragment
				}
			} else {
				if !isURLCodePoint(c) && c != '%' {
					if err := validationError(ValidationIllegalCodePoint); err != nil {
						return err
					}
				}
				if isRemainingInvalidPercentEncoded(remainingFrom(input, pointer)) {
					if err := validationError(ValidationInvalidPercentEncoding); err != nil {
						return err
					}
				}
				percentEncodeRune(&buffer, c, pathPercentEncodeSet)
			}

		case stateCannotBeABaseURL:
			switch c {
			case '?':
				url.Query = stringPtr("")
				state = stateQuery
			case '#':
				url.Fragment = stringPtr("")
				state = stateFragment
			default:
				if !isEOF && !isURLCodePoint(c) && c != '%' {
					if err := validationError(ValidationIllegalCodePoint); err != nil {
						return err
					}
				}
				if isRemainingInvalidPercentEncoded(remainingFrom(input, pointer)) {
					if err := validationError(ValidationInvalidPercentEncoding); err != nil {
						return err
					}
				}
				if !isEOF {
					if len(url.Path) == 0 {
						url.Path = append(url.Path, "")
					}
					var eb strings.Builder
					percentEncodeRune(&eb, c, c0ControlPercentEncodeSet)
					url.Path[0] += eb.String()
				}
			}

		case stateQuery:
			if !stateOverridden && c == '#' {
				url.Fragment = stringPtr("")
				state = stateFragment
			} else if !isEOF {
				if !isURLCodePoint(c) && c != '%' {
					if err := validationError(ValidationIllegalCodePoint); err != nil {
						return err
					}
				}
				if isRemainingInvalidPercentEncoded(remainingFrom(input, pointer)) {
					if err := validationError(ValidationInvalidPercentEncoding); err != nil {
						return err
					}
				}
				encoded := p.encodeQueryRune(c, url.Scheme)
				*url.Query += encoded
			}

		case stateFragment:
			if !isEOF {
				if c == 0 {
					if err := validationError(ValidationIllegalCodePoint); err != nil {
						return err
					}
				} else if !isURLCodePoint(c) && c != '%' {
					if err := validationError(ValidationIllegalCodePoint); err != nil {
						return err
					}
				}
				if isRemainingInvalidPercentEncoded(remainingFrom(input, pointer)) {
					if err := validationError(ValidationInvalidPercentEncoding); err != nil {
						return err
					}
				}
				var eb strings.Builder
				percentEncodeRune(&eb, c, fragmentPercentEncodeSet)
				*url.Fragment += eb.String()
			}
		}

		if isEOF && pointer > len(input) {
			break
		}
	}

	return nil
}

func lowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func stringPtr(s string) *string { return &s }

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyIntPtr(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneHost(h *Host) *Host {
	if h == nil {
		return nil
	}
	clone := *h
	return &clone
}

func copyAuthorityAndPath(url, base *URL) {
	url.Username = base.Username
	url.Password = base.Password
	url.Host = cloneHost(base.Host)
	url.Port = copyIntPtr(base.Port)
	url.Path = clonePath(base.Path)
}

// cleanDefaultPort drops url.Port when it equals the scheme's default
// port (spec.md §3 invariant "port stored is never equal to the scheme's
// default port").
func (p *Parser) cleanDefaultPort(url *URL) {
	if url.Port == nil {
		return
	}
	if dp, ok := p.defaultPort(url.Scheme); ok && *url.Port == dp {
		url.Port = nil
	}
}

func (p *Parser) isSpecialSchemeAndBackslash(scheme string, r rune) bool {
	return r == '\\' && p.isSpecialScheme(scheme)
}

// encodeQueryRune implements spec.md §4.4 query-state encoding: percent
// encode bytes < 0x21, > 0x7E, or in {0x22,0x23,0x3C,0x3E}, plus 0x27 when
// the scheme is special. When a non-UTF-8 encoding override is configured
// (ambient AMBIENT STACK "encoding" option), it applies only to special
// schemes other than ws/wss (http, https, ftp, gopher, file); ws, wss, and
// every non-special scheme are always encoded as UTF-8.
func (p *Parser) encodeQueryRune(r rune, scheme string) string {
	bytes := encodeQueryBytes(p, r, scheme)
	var b strings.Builder
	for _, by := range bytes {
		if by < 0x21 || by > 0x7E || by == 0x22 || by == 0x23 || by == 0x3C || by == 0x3E ||
			(by == 0x27 && isSpecialScheme(scheme)) {
			percentEncodeByte(&b, by)
		} else {
			b.WriteByte(by)
		}
	}
	return b.String()
}

func encodeQueryBytes(p *Parser, r rune, scheme string) []byte {
	if p.encodingOverride != nil && isSpecialScheme(scheme) && scheme != "ws" && scheme != "wss" {
		if b, ok := p.encodingOverride.EncodeRune(r); ok {
			return []byte{b}
		}
	}
	return []byte(string(r))
}

func isSingleDotPathSegment(s string) bool {
	return s == "." || strings.EqualFold(s, "%2e")
}

func isDoubleDotPathSegment(s string) bool {
	lower := strings.ToLower(s)
	return s == ".." || lower == ".%2e" || lower == "%2e." || lower == "%2e%2e"
}

func shortenPath(url *URL) {
	if len(url.Path) == 0 {
		return
	}
	if url.Scheme == "file" && len(url.Path) == 1 && isNormalizedWindowsDriveLetter(url.Path[0]) {
		return
	}
	url.Path = url.Path[:len(url.Path)-1]
}

func isWindowsDriveLetter(s string) bool {
	return len(s) == 2 && isASCIIAlpha(rune(s[0])) && (s[1] == ':' || s[1] == '|')
}

func isNormalizedWindowsDriveLetter(s string) bool {
	return len(s) == 2 && isASCIIAlpha(rune(s[0])) && s[1] == ':'
}

func startsWithWindowsDriveLetter(s []rune) bool {
	if len(s) < 2 || !isASCIIAlpha(s[0]) || (s[1] != ':' && s[1] != '|') {
		return false
	}
	return len(s) == 2 || s[2] == '/' || s[2] == '\\' || s[2] == '?' || s[2] == '#'
}
