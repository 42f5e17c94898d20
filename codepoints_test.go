package urlparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsURLCodePoint(t *testing.T) {
	assert.True(t, isURLCodePoint('a'))
	assert.True(t, isURLCodePoint('9'))
	assert.True(t, isURLCodePoint('~'))
	assert.True(t, isURLCodePoint(0x00A1))
	assert.False(t, isURLCodePoint(0x007F))
	assert.False(t, isURLCodePoint(0xFFFE))
	assert.False(t, isURLCodePoint(0xD800))
}

func TestIsForbiddenHostCodePoint(t *testing.T) {
	for _, r := range []rune{0x0000, '\t', '\n', '\r', ' ', '#', '%', '/', ':', '?', '@', '[', '\\', ']', '|'} {
		assert.True(t, isForbiddenHostCodePoint(r), "expected %q to be forbidden", r)
	}
	assert.False(t, isForbiddenHostCodePoint('a'))
	assert.False(t, isForbiddenHostCodePoint('-'))
}

func TestIsNoncharacter(t *testing.T) {
	assert.True(t, isNoncharacter(0xFDD0))
	assert.True(t, isNoncharacter(0xFDEF))
	assert.True(t, isNoncharacter(0xFFFE))
	assert.True(t, isNoncharacter(0x10FFFF))
	assert.False(t, isNoncharacter(0xFDD0-1))
	assert.False(t, isNoncharacter('a'))
}

func TestIsSchemeTailCodePoint(t *testing.T) {
	assert.True(t, isSchemeTailCodePoint('a'))
	assert.True(t, isSchemeTailCodePoint('9'))
	assert.True(t, isSchemeTailCodePoint('+'))
	assert.True(t, isSchemeTailCodePoint('-'))
	assert.True(t, isSchemeTailCodePoint('.'))
	assert.False(t, isSchemeTailCodePoint(':'))
	assert.False(t, isSchemeTailCodePoint('/'))
}

func TestIsC0ControlOrSpace(t *testing.T) {
	assert.True(t, isC0ControlOrSpace(0x00))
	assert.True(t, isC0ControlOrSpace(0x1F))
	assert.True(t, isC0ControlOrSpace(' '))
	assert.False(t, isC0ControlOrSpace('a'))
}
