package urlparser

import (
	"strconv"
	"strings"
)

// Serialize implements spec.md §4.3. When excludeFragment is true the
// trailing "#fragment" is omitted even if present, matching the
// `serialize(url, exclude_fragment)` signature in spec.md §6.
func Serialize(u *URL, excludeFragment bool) string {
	var b strings.Builder

	b.WriteString(u.Scheme)
	b.WriteByte(':')

	if u.Host != nil {
		b.WriteString("//")
		if u.HasCredentials() {
			b.WriteString(u.Username)
			if u.Password != "" {
				b.WriteByte(':')
				b.WriteString(u.Password)
			}
			b.WriteByte('@')
		}
		b.WriteString(u.Host.String())
		if u.Port != nil {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(*u.Port))
		}
	} else if u.Scheme == "file" {
		b.WriteString("//")
	}

	if u.CannotBeBase {
		if len(u.Path) > 0 {
			b.WriteString(u.Path[0])
		}
	} else {
		for _, segment := range u.Path {
			b.WriteByte('/')
			b.WriteString(segment)
		}
	}

	if u.Query != nil {
		b.WriteByte('?')
		b.WriteString(*u.Query)
	}

	if !excludeFragment && u.Fragment != nil {
		b.WriteByte('#')
		b.WriteString(*u.Fragment)
	}

	return b.String()
}

// Href implements spec.md §6: href(url) = serialize(url, false).
func Href(u *URL) string {
	return Serialize(u, false)
}
