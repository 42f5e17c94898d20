package urlparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLCloneIsIndependent(t *testing.T) {
	u, err := Parse("http://user@example.com:8080/a/b?q=1#f")
	require.NoError(t, err)

	clone := u.Clone()
	require.True(t, u.Equal(clone))

	clone.Path[0] = "mutated"
	*clone.Query = "mutated"
	*clone.Port = 9999

	assert.Equal(t, "a", u.Path[0])
	assert.Equal(t, "q=1", *u.Query)
	assert.Equal(t, 8080, *u.Port)
}

func TestHostEqual(t *testing.T) {
	a := &Host{Kind: HostDomain, Domain: "example.com"}
	b := &Host{Kind: HostDomain, Domain: "example.com"}
	c := &Host{Kind: HostDomain, Domain: "other.com"}
	assert.True(t, a.equal(b))
	assert.False(t, a.equal(c))
	assert.False(t, a.equal(nil))

	var nilHost *Host
	assert.True(t, nilHost.equal(nil))
}

func TestIsSpecialSchemeAndDefaultPort(t *testing.T) {
	cases := map[string]int{
		"ftp": 21, "http": 80, "https": 443, "ws": 80, "wss": 443, "gopher": 70,
	}
	for scheme, port := range cases {
		assert.True(t, isSpecialScheme(scheme))
		p, ok := defaultPort(scheme)
		require.True(t, ok)
		assert.Equal(t, port, p)
	}
	assert.True(t, isSpecialScheme("file"))
	_, ok := defaultPort("file")
	assert.False(t, ok)
	assert.False(t, isSpecialScheme("mailto"))
}

func TestHasCredentials(t *testing.T) {
	u := &URL{}
	assert.False(t, u.HasCredentials())
	u.Username = "a"
	assert.True(t, u.HasCredentials())
}
