package term

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
)

// Normalize prepares markup written for a browser for the grid layout:
// whitespace-only text between blocks is removed and runs of whitespace
// collapse to one space outside pre.
func Normalize(root *html.Node) {
	for _, t := range dom.TextNodes(root) {
		if dom.ClosestTag(t, root, "pre") != nil {
			continue
		}
		if strings.TrimSpace(t.Data) == "" && betweenBlocks(t) {
			dom.Remove(t)
			continue
		}
		t.Data = collapse(t.Data)
	}
}

// betweenBlocks reports whether t sits directly in a block container or
// next to a block element.
func betweenBlocks(t *html.Node) bool {
	if t.Parent == nil {
		return true
	}
	tag := dom.Tag(t.Parent)
	if tag == "body" || tag == "html" || tag == "div" || tag == "blockquote" || tag == "ul" || tag == "ol" {
		return true
	}
	for _, sib := range []*html.Node{t.PrevSibling, t.NextSibling} {
		if dom.IsElement(sib) && dom.IsBlock(dom.Tag(sib)) {
			return true
		}
	}
	return false
}

// collapse turns each run of whitespace into one space.
func collapse(s string) string {
	const space = " \t\r\n\f"
	out := strings.Join(strings.Fields(s), " ")
	if out == "" {
		return " "
	}
	if strings.ContainsAny(s[:1], space) {
		out = " " + out
	}
	if strings.ContainsAny(s[len(s)-1:], space) {
		out += " "
	}
	return out
}
