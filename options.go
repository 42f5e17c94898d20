package urlparser

import "golang.org/x/text/encoding/charmap"

// Parser holds the configuration a caller can tune via ParserOption.
// It is the ambient configuration surface referenced in SPEC_FULL.md,
// grounded on the functional-options pattern used by the wider URL
// parsing pack (nlnwa/whatwg-url's ParserOption, read as a reference
// implementation only — see DESIGN.md).
//
// A zero-value Parser is ready to use and matches the spec's defaults
// exactly: UTF-8 query encoding, the built-in special-scheme table, and
// validation errors tracked only via URL.ValidationError.
type Parser struct {
	reportValidationErrors bool
	failOnValidationError  bool
	specialSchemes         map[string]int
	encodingOverride       *charmap.Charmap

	validationErrors []ValidationError
}

// ParserOption configures a Parser. Grounded on the With*/funcParserOption
// pattern observed across the pack.
type ParserOption interface {
	apply(*Parser)
}

type funcParserOption struct {
	f func(*Parser)
}

func (o *funcParserOption) apply(p *Parser) { o.f(p) }

func newFuncParserOption(f func(*Parser)) ParserOption {
	return &funcParserOption{f: f}
}

// WithReportValidationErrors makes the Parser retain every ValidationError
// it fires (see Parser.ValidationErrors), instead of only the aggregate
// boolean already carried on URL.ValidationError.
func WithReportValidationErrors() ParserOption {
	return newFuncParserOption(func(p *Parser) {
		p.reportValidationErrors = true
	})
}

// WithFailOnValidationError turns every soft validation error into a hard
// ParseError, useful for strict conformance testing.
func WithFailOnValidationError() ParserOption {
	return newFuncParserOption(func(p *Parser) {
		p.failOnValidationError = true
	})
}

// WithSpecialSchemes overrides the default special-scheme/port table
// (GLOSSARY). The map is scheme -> default port; use -1 for a special
// scheme with no default port (as "file" has).
func WithSpecialSchemes(schemes map[string]int) ParserOption {
	return newFuncParserOption(func(p *Parser) {
		p.specialSchemes = schemes
	})
}

// WithEncodingOverride sets a non-UTF-8 output encoding for the query
// state (spec.md §6 "encoding defaults to UTF-8 and affects only the
// query state").
func WithEncodingOverride(cm *charmap.Charmap) ParserOption {
	return newFuncParserOption(func(p *Parser) {
		p.encodingOverride = cm
	})
}

// NewParser builds a Parser from the given options.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt.apply(p)
	}
	return p
}

// ValidationErrors returns the validation errors accumulated since the
// last parse, when WithReportValidationErrors was set; otherwise it
// returns nil even if errors fired (the aggregate boolean is still
// available on the resulting URL).
func (p *Parser) ValidationErrors() []ValidationError {
	return p.validationErrors
}

func (p *Parser) isSpecialScheme(scheme string) bool {
	if p.specialSchemes == nil {
		return isSpecialScheme(scheme)
	}
	_, ok := p.specialSchemes[scheme]
	return ok
}

func (p *Parser) defaultPort(scheme string) (int, bool) {
	if p.specialSchemes == nil {
		return defaultPort(scheme)
	}
	port, ok := p.specialSchemes[scheme]
	if !ok || port < 0 {
		return 0, false
	}
	return port, true
}

func (p *Parser) recordValidationError(u *URL, kind ValidationErrorKind, position int) {
	u.ValidationError = true
	if p.reportValidationErrors {
		p.validationErrors = append(p.validationErrors, ValidationError{Kind: kind, Position: position})
	}
}
