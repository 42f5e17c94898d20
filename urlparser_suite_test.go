package urlparser_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestURLParser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "urlparser suite")
}
