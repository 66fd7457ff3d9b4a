package dom

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	headingTag = regexp.MustCompile(`^h[1-6]$`)
	blockTags  = map[string]bool{
		"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"blockquote": true, "pre": true, "div": true, "li": true, "ul": true, "ol": true,
	}
)

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Tag returns the lower-case tag name of an element, or "" for other nodes.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// IsHeading reports whether tag names a heading element (h1..h6).
func IsHeading(tag string) bool {
	return headingTag.MatchString(strings.ToLower(tag))
}

// IsBlock reports whether tag names a block-level element.
func IsBlock(tag string) bool {
	return blockTags[strings.ToLower(tag)]
}

// NewElement creates a detached element node.
func NewElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Rename changes the tag of an element in place.
func Rename(n *html.Node, tag string) {
	tag = strings.ToLower(tag)
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// AttrTrue reports whether the attribute is present with a value other than
// "" or "false".
func AttrTrue(n *html.Node, key string) bool {
	v, ok := Attr(n, key)
	return ok && v != "" && !strings.EqualFold(v, "false")
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && strings.EqualFold(n.Attr[i].Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Classes returns the whitespace separated class tokens of n.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries the class token.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds a class token if it is not already present.
func AddClass(n *html.Node, class string) {
	if class == "" || HasClass(n, class) {
		return
	}
	SetAttr(n, "class", strings.TrimSpace(strings.Join(append(Classes(n), class), " ")))
}

// RemoveClass removes a class token.
func RemoveClass(n *html.Node, class string) {
	cls := Classes(n)
	out := cls[:0]
	for _, c := range cls {
		if c != class {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(out, " "))
}

// IsDescendant reports whether child is strictly inside parent.
func IsDescendant(parent, child *html.Node) bool {
	if parent == nil || child == nil {
		return false
	}
	for n := child.Parent; n != nil; n = n.Parent {
		if n == parent {
			return true
		}
	}
	return false
}

// Contains reports whether n is root or inside root.
func Contains(root, n *html.Node) bool {
	return root == n || IsDescendant(root, n)
}

// Children returns the child nodes of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ChildCount returns the number of child nodes of n.
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// ChildAt returns the i-th child of n, or nil.
func ChildAt(n *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; c = c.NextSibling {
		i--
	}
	return c
}

// IndexOf returns the position of n among its siblings.
func IndexOf(n *html.Node) int {
	i := 0
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		i++
	}
	return i
}

// PrevElementSibling returns the closest preceding sibling element.
func PrevElementSibling(n *html.Node) *html.Node {
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		if IsElement(c) {
			return c
		}
	}
	return nil
}

// NextElementSibling returns the closest following sibling element.
func NextElementSibling(n *html.Node) *html.Node {
	for c := n.NextSibling; c != nil; c = c.NextSibling {
		if IsElement(c) {
			return c
		}
	}
	return nil
}

// HasElementChildren reports whether n has at least one element child.
func HasElementChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c) {
			return true
		}
	}
	return false
}

// TextLength returns the number of code points in a text node's data.
func TextLength(n *html.Node) int {
	if !IsText(n) {
		return 0
	}
	return utf8.RuneCountInString(n.Data)
}

// TextContent concatenates the text of every text node under n in document
// order.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if IsText(n) {
		return n.Data
	}
	var sb strings.Builder
	w := NewWalker(n)
	for node := w.Next(); node != nil; node = w.Next() {
		if IsText(node) {
			sb.WriteString(node.Data)
		}
	}
	return sb.String()
}

// ContentLength returns the number of code points in the text content of n.
func ContentLength(n *html.Node) int {
	return utf8.RuneCountInString(TextContent(n))
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertAfter inserts n as the next sibling of ref.
func InsertAfter(n, ref *html.Node) {
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// Unwrap replaces n with its children.
func Unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// Wrap inserts wrapper in place of n and moves n into it.
func Wrap(n, wrapper *html.Node) {
	n.Parent.InsertBefore(wrapper, n)
	n.Parent.RemoveChild(n)
	wrapper.AppendChild(n)
}

// Closest returns the nearest element at or above n for which match returns
// true, not looking past stop.
func Closest(n, stop *html.Node, match func(*html.Node) bool) *html.Node {
	for ; n != nil; n = n.Parent {
		if IsElement(n) && match(n) {
			return n
		}
		if n == stop {
			return nil
		}
	}
	return nil
}

// ClosestTag returns the nearest element at or above n whose tag is one of
// tags, not looking past stop.
func ClosestTag(n, stop *html.Node, tags ...string) *html.Node {
	return Closest(n, stop, func(el *html.Node) bool {
		t := Tag(el)
		for _, want := range tags {
			if t == want {
				return true
			}
		}
		return false
	})
}

// ElementsByTag returns every element below root with the given tag, in
// document order.
func ElementsByTag(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	w := NewWalker(root)
	for n := w.Next(); n != nil; n = w.Next() {
		if n != root && Tag(n) == tag {
			out = append(out, n)
		}
	}
	return out
}

// ElementChild returns the first child element of n with the given tag.
func ElementChild(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if Tag(c) == tag {
			return c
		}
	}
	return nil
}

// OwnerDocument returns the document node that n belongs to.
func OwnerDocument(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type == html.DocumentNode {
			return n
		}
		if n.Parent == nil {
			return n
		}
	}
	return nil
}

// DocumentElement returns the <html> element of a document.
func DocumentElement(doc *html.Node) *html.Node {
	if doc == nil {
		return nil
	}
	if Tag(doc) == "html" {
		return doc
	}
	if el := ElementChild(doc, "html"); el != nil {
		return el
	}
	return doc
}

// Body returns the <body> element of a document, falling back to the
// document element.
func Body(doc *html.Node) *html.Node {
	root := DocumentElement(doc)
	if b := ElementChild(root, "body"); b != nil {
		return b
	}
	return root
}
