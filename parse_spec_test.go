package urlparser_test

import (
	. "github.com/SethMichaelLarson/whatwg-url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parse", func() {
	Describe("relative reference resolution against a base", func() {
		It("resolves a bare path against a base with a trailing file segment", func() {
			u, err := ParseRef("c", "http://example.com/a/b")
			Expect(err).NotTo(HaveOccurred())
			Expect(Href(u)).To(Equal("http://example.com/a/c"))
		})

		It("resolves a query-only reference, keeping the base's path", func() {
			u, err := ParseRef("?q=1", "http://example.com/a/b")
			Expect(err).NotTo(HaveOccurred())
			Expect(Href(u)).To(Equal("http://example.com/a/b?q=1"))
		})

		It("resolves a fragment-only reference, keeping the base's path and query", func() {
			u, err := ParseRef("#frag", "http://example.com/a/b?q=1")
			Expect(err).NotTo(HaveOccurred())
			Expect(Href(u)).To(Equal("http://example.com/a/b?q=1#frag"))
		})

		It("treats a special-scheme backslash the same as a forward slash", func() {
			u, err := ParseRef("\\\\foo\\bar", "http://example.com/x")
			Expect(err).NotTo(HaveOccurred())
			Expect(Href(u)).To(Equal("http://foo/bar"))
		})

		It("fails a schemeless, base-less reference", func() {
			_, err := Parse("just/a/path")
			Expect(err).To(HaveOccurred())
			var perr *ParseError
			Expect(err).To(BeAssignableToTypeOf(perr))
		})
	})

	Describe("scheme and authority parsing", func() {
		It("lowercases the scheme and an ASCII domain host", func() {
			u, err := Parse("HTTP://EXAMPLE.COM/")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Scheme).To(Equal("http"))
			Expect(u.Host.String()).To(Equal("example.com"))
		})

		It("percent-encodes an unescaped '@' inside userinfo", func() {
			u, err := Parse("http://user@name:pass@example.com/")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("user%40name"))
			Expect(u.Password).To(Equal("pass"))
		})

		It("rejects a special-scheme URL with no host at all", func() {
			_, err := Parse("http:///")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ParserOption configuration", func() {
		It("uses a caller-supplied special-scheme table instead of the default", func() {
			p := NewParser(WithSpecialSchemes(map[string]int{"widget": 9999}))
			u, err := p.Parse("widget://host/path", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Host.String()).To(Equal("host"))
			Expect(u.CannotBeBase).To(BeFalse())
		})
	})
})
