package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// StyleProp returns the value of an inline style property of n.
func StyleProp(n *html.Node, prop string) (string, bool) {
	style, _ := Attr(n, "style")
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), prop) {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// SetStyleProp sets an inline style property of n. An empty value removes
// the property.
func SetStyleProp(n *html.Node, prop, val string) {
	style, _ := Attr(n, "style")
	var decls []string
	for _, decl := range strings.Split(style, ";") {
		k, _, ok := strings.Cut(decl, ":")
		if !ok || strings.EqualFold(strings.TrimSpace(k), prop) {
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	if val != "" {
		decls = append(decls, prop+": "+val)
	}
	if len(decls) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", strings.Join(decls, "; ")+";")
}
