package urlparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelativeWithoutBaseFails(t *testing.T) {
	_, err := Parse("/just/a/path")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ReasonMissingSchemeNoBase, perr.Reason)
}

func TestParseTrimsC0AndStripsTabsNewlines(t *testing.T) {
	u, err := Parse("  \thttp://exa\nmple.com/\t  ")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host.String())
	assert.True(t, u.ValidationError)
}

func TestParserWithReportValidationErrors(t *testing.T) {
	p := NewParser(WithReportValidationErrors())
	u, err := p.Parse(" http://example.com/", nil)
	require.NoError(t, err)
	assert.True(t, u.ValidationError)
	errs := p.ValidationErrors()
	require.NotEmpty(t, errs)
	assert.Equal(t, ValidationLeadingOrTrailingC0OrSpace, errs[0].Kind)
}

func TestParserWithFailOnValidationError(t *testing.T) {
	p := NewParser(WithFailOnValidationError())
	_, err := p.Parse(" http://example.com/", nil)
	require.Error(t, err)
}

func TestParserWithSpecialSchemes(t *testing.T) {
	p := NewParser(WithSpecialSchemes(map[string]int{"foo": 1234}))
	u, err := p.Parse("foo://example.com:1234/bar", nil)
	require.NoError(t, err)
	assert.Nil(t, u.Port, "default port for the overridden special scheme should be suppressed")
}

func TestParseWithStateOverrideHostname(t *testing.T) {
	p := &Parser{}
	u, err := p.Parse("http://example.com/path", nil)
	require.NoError(t, err)

	err = p.ParseWithStateOverride(u, "newhost.example", StateOverrideHostname)
	require.NoError(t, err)
	assert.Equal(t, "newhost.example", u.Host.String())
	assert.Equal(t, []string{"path"}, u.Path)
}

func TestParseWithStateOverridePort(t *testing.T) {
	p := &Parser{}
	u, err := p.Parse("http://example.com:8080/path", nil)
	require.NoError(t, err)

	err = p.ParseWithStateOverride(u, "9090", StateOverridePort)
	require.NoError(t, err)
	require.NotNil(t, u.Port)
	assert.Equal(t, 9090, *u.Port)
}
