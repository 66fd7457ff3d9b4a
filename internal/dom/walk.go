package dom

import "golang.org/x/net/html"

// Walker performs a pre-order depth-first traversal of a subtree using an
// explicit stack. Children are pushed in reverse order so they pop in
// document order.
type Walker struct {
	stack []*html.Node
}

// NewWalker creates a walker rooted at root. A nil root yields no nodes.
func NewWalker(root *html.Node) *Walker {
	w := &Walker{}
	if root != nil {
		w.stack = append(w.stack, root)
	}
	return w
}

// Next returns the next node in document order, or nil when the walk is
// exhausted.
func (w *Walker) Next() *html.Node {
	if len(w.stack) == 0 {
		return nil
	}
	n := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		w.stack = append(w.stack, c)
	}
	return n
}

// TextNodes returns the text nodes under root in document order.
func TextNodes(root *html.Node) []*html.Node {
	var out []*html.Node
	w := NewWalker(root)
	for n := w.Next(); n != nil; n = w.Next() {
		if IsText(n) {
			out = append(out, n)
		}
	}
	return out
}

// following returns the first node after the subtree of n in pre-order,
// without leaving root.
func following(n, root *html.Node) *html.Node {
	for ; n != nil && n != root; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}
