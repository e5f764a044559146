package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTML_Basic(t *testing.T) {
	out := ToHTML("# Title\n\nSome **bold** text")
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>bold</strong>")
}

func TestToHTML_RawHTMLNotPassedThrough(t *testing.T) {
	out := ToHTML("<script>alert(1)</script>")
	assert.False(t, strings.Contains(out, "<script>"), "原始 HTML 不应透传: %s", out)
}

func TestToHTML_GFMTable(t *testing.T) {
	out := ToHTML("| a | b |\n|---|---|\n| 1 | 2 |")
	assert.Contains(t, out, "<table>")
}
