package urlparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentEncodeSetMonotonicity(t *testing.T) {
	// spec.md §4.1: C0 ⊂ fragment ⊂ path ⊂ userinfo.
	for c := 0; c < 128; c++ {
		r := rune(c)
		if c0ControlPercentEncodeSet.contains(r) {
			assert.True(t, fragmentPercentEncodeSet.contains(r), "fragment should contain C0 member %q", r)
		}
		if fragmentPercentEncodeSet.contains(r) {
			assert.True(t, pathPercentEncodeSet.contains(r), "path should contain fragment member %q", r)
		}
		if pathPercentEncodeSet.contains(r) {
			assert.True(t, userinfoPercentEncodeSet.contains(r), "userinfo should contain path member %q", r)
		}
	}
}

func TestPercentEncodeString(t *testing.T) {
	cases := []struct {
		in  string
		set *percentEncodeSet
		out string
	}{
		{"hello world", fragmentPercentEncodeSet, "hello%20world"},
		{"a\"b", fragmentPercentEncodeSet, "a%22b"},
		{"a?b", pathPercentEncodeSet, "a%3Fb"},
		{"a@b", userinfoPercentEncodeSet, "a%40b"},
		{"plainascii", c0ControlPercentEncodeSet, "plainascii"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.out, percentEncodeString(tc.in, tc.set))
	}
}

func TestPercentEncodeNonASCIIAlwaysEncoded(t *testing.T) {
	out := percentEncodeString("café", c0ControlPercentEncodeSet)
	assert.Equal(t, "caf%C3%A9", out)
}

func TestPercentDecode(t *testing.T) {
	assert.Equal(t, []byte("hello world"), percentDecode("hello%20world"))
	assert.Equal(t, []byte("100%"), percentDecode("100%"))
	assert.Equal(t, []byte("100%2"), percentDecode("100%2"))
	assert.Equal(t, []byte("100%zz"), percentDecode("100%zz"))
}

func TestIsRemainingInvalidPercentEncoded(t *testing.T) {
	assert.False(t, isRemainingInvalidPercentEncoded([]rune("%41")))
	assert.True(t, isRemainingInvalidPercentEncoded([]rune("%4")))
	assert.True(t, isRemainingInvalidPercentEncoded([]rune("%")))
	assert.True(t, isRemainingInvalidPercentEncoded([]rune("%zz")))
	assert.False(t, isRemainingInvalidPercentEncoded([]rune(strings.Repeat("x", 3))))
}
