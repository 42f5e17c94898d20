package urlparser

import "strings"

// defaultParser is the package-level zero-configuration Parser used by
// the free functions below, mirroring the teacher's own habit of
// providing bare package-level entry points over a configurable type
// (region23-urlparser's package-level Parse wraps stateless regex work;
// here it wraps a *Parser with default options).
var defaultParser = &Parser{}

// Parse implements spec.md §6 parse(input, base?, encoding?) for the
// common case (no base, default UTF-8 query encoding).
func Parse(input string) (*URL, error) {
	return defaultParser.Parse(input, nil)
}

// ParseRef parses input relative to a base URL string.
func ParseRef(input, base string) (*URL, error) {
	baseURL, err := defaultParser.Parse(base, nil)
	if err != nil {
		return nil, err
	}
	return defaultParser.Parse(input, baseURL)
}

// Parse implements spec.md §6 on a configured Parser.
func (p *Parser) Parse(input string, base *URL) (*URL, error) {
	p.validationErrors = nil
	url := &URL{}
	if err := p.parseInto(url, input, base, stateNone); err != nil {
		return nil, err
	}
	return url, nil
}

// ParseWithStateOverride implements spec.md §6
// parse_with_state_override(url, input, state_override): reuses an
// existing URL, mutating it in place, for attribute-setter re-entry.
func (p *Parser) ParseWithStateOverride(url *URL, input string, stateOverride parserState) error {
	if err := p.parseInto(url, input, nil, stateOverride); err != nil {
		return err
	}
	return nil
}

// parseInto implements spec.md §4.5: the driver pre-processes input
// (trimming C0-or-space, stripping tab/newline) and drives the state
// machine until EOF or early termination.
func (p *Parser) parseInto(url *URL, input string, base *URL, stateOverride parserState) *ParseError {
	trimmed, trimChanged := trimC0OrSpace(input)
	if trimChanged {
		p.recordValidationError(url, ValidationLeadingOrTrailingC0OrSpace, 0)
		if p.failOnValidationError {
			return newParseError(input, ReasonIllegalCodePoint, nil)
		}
	}

	stripped, stripChanged := stripTabsAndNewlines(trimmed)
	if stripChanged {
		p.recordValidationError(url, ValidationTabOrNewline, 0)
		if p.failOnValidationError {
			return newParseError(input, ReasonIllegalCodePoint, nil)
		}
	}

	initialState := stateSchemeStart
	if stateOverride != stateNone {
		initialState = stateOverride
	}

	runes := []rune(stripped)
	return p.runStateMachine(url, base, runes, initialState, stateOverride)
}

// trimC0OrSpace implements spec.md §4.5 step 1.
func trimC0OrSpace(s string) (string, bool) {
	runes := []rune(s)
	start := 0
	for start < len(runes) && isC0ControlOrSpace(runes[start]) {
		start++
	}
	end := len(runes)
	for end > start && isC0ControlOrSpace(runes[end-1]) {
		end--
	}
	if start == 0 && end == len(runes) {
		return s, false
	}
	return string(runes[start:end]), true
}

// stripTabsAndNewlines implements spec.md §4.5 step 2.
func stripTabsAndNewlines(s string) (string, bool) {
	if !strings.ContainsAny(s, "\t\n\r") {
		return s, false
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isASCIITabOrNewline(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), true
}
