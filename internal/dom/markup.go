package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// OuterHTML renders n including its own tags.
func OuterHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// RenderNodes renders a list of sibling nodes.
func RenderNodes(nodes []*html.Node) string {
	var buf bytes.Buffer
	for _, n := range nodes {
		_ = html.Render(&buf, n)
	}
	return buf.String()
}

// ParseFragment parses markup in the context of the given element.
func ParseFragment(markup string, context *html.Node) ([]*html.Node, error) {
	if context == nil || !IsElement(context) {
		context = NewElement("div")
	}
	return html.ParseFragment(strings.NewReader(markup), context)
}

// SetInnerHTML replaces the children of n with parsed markup.
func SetInnerHTML(n *html.Node, markup string) error {
	nodes, err := ParseFragment(markup, n)
	if err != nil {
		return err
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// CloneContents returns detached copies of the nodes covered by r. Partially
// covered elements are cloned shallowly with only their covered descendants;
// partially covered text is cut at the boundary.
func CloneContents(r *Range) []*html.Node {
	root := r.CommonAncestor()
	if root == nil || r.Collapsed() {
		return nil
	}
	if IsText(root) {
		return []*html.Node{NewText(substring(root.Data, r.Start.Offset, r.End.Offset))}
	}
	start, ok1 := TextOffset(root, r.Start)
	end, ok2 := TextOffset(root, r.End)
	if !ok1 || !ok2 || end < start {
		return nil
	}
	return CloneSlice(root, start, end)
}

// CloneSlice clones the children of root restricted to the text interval
// [start, end) of root's flattened content.
func CloneSlice(root *html.Node, start, end int) []*html.Node {
	var out []*html.Node
	pos := 0
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if clone := cloneCovered(c, pos, start, end); clone != nil {
			out = append(out, clone)
		}
		pos += ContentLength(c)
	}
	return out
}

// cloneCovered clones n when its text interval [pos, pos+len) intersects
// [start, end).
func cloneCovered(n *html.Node, pos, start, end int) *html.Node {
	length := ContentLength(n)
	nodeEnd := pos + length
	covered := min(nodeEnd, end)-max(pos, start) > 0
	emptyInside := length == 0 && pos > start && pos < end
	if !covered && !emptyInside {
		return nil
	}
	if IsText(n) {
		return NewText(substring(n.Data, max(start, pos)-pos, min(end, nodeEnd)-pos))
	}
	clone := &html.Node{Type: n.Type, Data: n.Data, DataAtom: n.DataAtom, Namespace: n.Namespace}
	clone.Attr = append([]html.Attribute(nil), n.Attr...)
	child := pos
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if cc := cloneCovered(c, child, start, end); cc != nil {
			clone.AppendChild(cc)
		}
		child += ContentLength(c)
	}
	return clone
}
