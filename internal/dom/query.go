package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// QueryAll returns every element under root matching a simple selector.
// Supported forms are a comma separated list of compound selectors made of
// an optional tag, #id, .class tokens and [attr] / [attr=value] tests, for
// example "div.editable", "#main", "[data-editable]".
func QueryAll(root *html.Node, selector string) []*html.Node {
	var sels []compound
	for _, part := range strings.Split(selector, ",") {
		if c, ok := parseCompound(strings.TrimSpace(part)); ok {
			sels = append(sels, c)
		}
	}
	if len(sels) == 0 {
		return nil
	}
	var out []*html.Node
	w := NewWalker(root)
	for n := w.Next(); n != nil; n = w.Next() {
		if !IsElement(n) {
			continue
		}
		for _, c := range sels {
			if c.match(n) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

type attrTest struct {
	key, val string
	hasVal   bool
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrTest
}

func parseCompound(s string) (compound, bool) {
	var c compound
	if s == "" {
		return c, false
	}
	i := 0
	readIdent := func() string {
		start := i
		for i < len(s) && !strings.ContainsRune(".#[", rune(s[i])) {
			i++
		}
		return s[start:i]
	}
	c.tag = strings.ToLower(readIdent())
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			c.classes = append(c.classes, readIdent())
		case '#':
			i++
			c.id = readIdent()
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c, false
			}
			body := s[i+1 : i+end]
			i += end + 1
			key, val, hasVal := strings.Cut(body, "=")
			c.attrs = append(c.attrs, attrTest{
				key:    strings.TrimSpace(key),
				val:    strings.Trim(strings.TrimSpace(val), `"'`),
				hasVal: hasVal,
			})
		default:
			return c, false
		}
	}
	return c, true
}

func (c compound) match(n *html.Node) bool {
	if c.tag != "" && c.tag != "*" && Tag(n) != c.tag {
		return false
	}
	if c.id != "" {
		if id, _ := Attr(n, "id"); id != c.id {
			return false
		}
	}
	for _, cls := range c.classes {
		if !HasClass(n, cls) {
			return false
		}
	}
	for _, a := range c.attrs {
		v, ok := Attr(n, a.key)
		if !ok || (a.hasVal && v != a.val) {
			return false
		}
	}
	return true
}
