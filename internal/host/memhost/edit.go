package memhost

import (
	"slices"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
)

// rootOf returns the editing host containing n, or the body.
func (h *Host) rootOf(n *html.Node) *html.Node {
	if root := editingHost(n); root != nil {
		return root
	}
	return h.Body()
}

// offsets returns the flat text offsets of r relative to root.
func offsets(root *html.Node, r *dom.Range) (int, int, bool) {
	start, ok1 := dom.TextOffset(root, r.Start)
	end, ok2 := dom.TextOffset(root, r.End)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	if end < start {
		start, end = end, start
	}
	return start, end, true
}

// pointForward converts a flat offset into a point, preferring the start of
// the following text node when the offset falls on a node boundary.
func pointForward(root *html.Node, offset int) dom.Point {
	count := 0
	var last *html.Node
	for _, t := range dom.TextNodes(root) {
		next := count + dom.TextLength(t)
		if offset >= count && offset < next {
			return dom.Point{Node: t, Offset: offset - count}
		}
		count = next
		last = t
	}
	if last != nil {
		return dom.Point{Node: last, Offset: dom.TextLength(last)}
	}
	return dom.Point{Node: root, Offset: 0}
}

// splitText splits t at a code point offset and returns the new node
// holding the tail.
func splitText(t *html.Node, offset int) *html.Node {
	runes := []rune(t.Data)
	offset = min(max(offset, 0), len(runes))
	tail := dom.NewText(string(runes[offset:]))
	t.Data = string(runes[:offset])
	dom.InsertAfter(tail, t)
	return tail
}

// isolate splits text nodes at start and end and returns the text nodes
// lying entirely inside [start, end) of root, in document order.
func isolate(root *html.Node, start, end int) []*html.Node {
	var out []*html.Node
	pos := 0
	for _, t := range dom.TextNodes(root) {
		l := dom.TextLength(t)
		a, b := max(start, pos), min(end, pos+l)
		if b > a {
			node := t
			if b < pos+l {
				splitText(node, b-pos)
			}
			if a > pos {
				node = splitText(node, a-pos)
			}
			out = append(out, node)
		}
		pos += l
	}
	return out
}

// touching returns the text nodes intersecting [start, end) of root without
// modifying the tree.
func touching(root *html.Node, start, end int) []*html.Node {
	var out []*html.Node
	pos := 0
	for _, t := range dom.TextNodes(root) {
		l := dom.TextLength(t)
		if min(end, pos+l) > max(start, pos) {
			out = append(out, t)
		}
		pos += l
	}
	return out
}

// coverUnits lifts each selected text node to its highest inline ancestor
// below root whose text is entirely selected.
func coverUnits(root *html.Node, segs []*html.Node) []*html.Node {
	selected := make(map[*html.Node]bool, len(segs))
	for _, s := range segs {
		selected[s] = true
	}
	covered := func(n *html.Node) bool {
		texts := dom.TextNodes(n)
		if len(texts) == 0 {
			return false
		}
		for _, t := range texts {
			if !selected[t] {
				return false
			}
		}
		return true
	}

	var units []*html.Node
	seen := make(map[*html.Node]bool)
	for _, t := range segs {
		u := t
		for p := u.Parent; p != nil && p != root && dom.IsElement(p) && !dom.IsBlock(dom.Tag(p)) && covered(p); p = p.Parent {
			u = p
		}
		if !seen[u] {
			seen[u] = true
			units = append(units, u)
		}
	}
	return units
}

// wrapRuns wraps consecutive sibling units in elements made by mk and
// returns the wrappers.
func wrapRuns(units []*html.Node, mk func() *html.Node) []*html.Node {
	var wrappers []*html.Node
	var cur *html.Node
	for _, u := range units {
		if cur != nil && u.PrevSibling == cur {
			u.Parent.RemoveChild(u)
			cur.AppendChild(u)
			continue
		}
		cur = mk()
		dom.Wrap(u, cur)
		wrappers = append(wrappers, cur)
	}
	return wrappers
}

// isBlockElement reports whether n is a block that can be reformatted.
func isBlockElement(n *html.Node) bool {
	t := dom.Tag(n)
	return dom.IsBlock(t) && t != "ul" && t != "ol"
}

// blockOf returns the nearest block ancestor of n strictly below root.
func blockOf(n, root *html.Node) *html.Node {
	b := dom.Closest(n, root, isBlockElement)
	if b == root {
		return nil
	}
	return b
}

// hasBlockChild reports whether n has a block element child.
func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsBlock(dom.Tag(c)) {
			return true
		}
	}
	return false
}

// wrapInlineRun wraps the run of inline siblings around n that sit directly
// under root into a new element with the given tag.
func wrapInlineRun(n, root *html.Node, tag string) *html.Node {
	top := n
	for top.Parent != nil && top.Parent != root {
		top = top.Parent
	}
	first, last := top, top
	for s := first.PrevSibling; s != nil && !dom.IsBlock(dom.Tag(s)); s = s.PrevSibling {
		first = s
	}
	for s := last.NextSibling; s != nil && !dom.IsBlock(dom.Tag(s)); s = s.NextSibling {
		last = s
	}
	el := dom.NewElement(tag)
	root.InsertBefore(el, first)
	for c := first; c != nil; {
		next := c.NextSibling
		root.RemoveChild(c)
		el.AppendChild(c)
		if c == last {
			break
		}
		c = next
	}
	return el
}

// caretNode returns the node a collapsed point sits in.
func caretNode(p dom.Point) *html.Node {
	if dom.IsElement(p.Node) {
		if c := dom.ChildAt(p.Node, p.Offset); c != nil {
			return c
		}
		if p.Node.LastChild != nil && p.Offset > 0 {
			return p.Node.LastChild
		}
	}
	return p.Node
}

// blocksIn returns the blocks touched by r, creating paragraphs for inline
// content that sits directly under root.
func blocksIn(root *html.Node, r *dom.Range) []*html.Node {
	var nodes []*html.Node
	if start, end, ok := offsets(root, r); ok && start < end {
		nodes = touching(root, start, end)
	}
	if len(nodes) == 0 {
		nodes = []*html.Node{caretNode(r.Start)}
	}

	var blocks []*html.Node
	for _, n := range nodes {
		var b *html.Node
		switch {
		case n == root:
			b = dom.NewElement("p")
			for c := root.FirstChild; c != nil; c = root.FirstChild {
				root.RemoveChild(c)
				b.AppendChild(c)
			}
			if b.FirstChild == nil {
				b.AppendChild(dom.NewElement("br"))
			}
			root.AppendChild(b)
		default:
			b = blockOf(n, root)
			if b == nil {
				b = wrapInlineRun(n, root, "p")
			}
		}
		if !slices.Contains(blocks, b) {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// unwrapExcept unwraps el but keeps its formatting on the text nodes below
// it that are not selected.
func unwrapExcept(el *html.Node, selected map[*html.Node]bool) {
	for _, t := range dom.TextNodes(el) {
		if selected[t] {
			continue
		}
		clone := dom.NewElement(el.Data)
		clone.Attr = append([]html.Attribute(nil), el.Attr...)
		dom.Wrap(t, clone)
	}
	dom.Unwrap(el)
}

// removeEmptyInline removes empty inline ancestors of n up to root.
func removeEmptyInline(n, root *html.Node) {
	for n != nil && n != root && dom.IsElement(n) && !dom.IsBlock(dom.Tag(n)) && n.FirstChild == nil && dom.Tag(n) != "br" && dom.Tag(n) != "img" {
		parent := n.Parent
		dom.Remove(n)
		n = parent
	}
}

// insertAt inserts nodes at p and returns the point after the last one.
func insertAt(p dom.Point, nodes []*html.Node) dom.Point {
	if len(nodes) == 0 {
		return p
	}
	var parent, ref *html.Node
	switch {
	case dom.IsText(p.Node) && p.Offset <= 0:
		parent, ref = p.Node.Parent, p.Node
	case dom.IsText(p.Node) && p.Offset >= dom.TextLength(p.Node):
		parent, ref = p.Node.Parent, p.Node.NextSibling
	case dom.IsText(p.Node):
		ref = splitText(p.Node, p.Offset)
		parent = ref.Parent
	default:
		parent, ref = p.Node, dom.ChildAt(p.Node, p.Offset)
	}
	if only := parent.FirstChild; only != nil && only == parent.LastChild && dom.Tag(only) == "br" {
		if ref == only {
			ref = nil
		}
		parent.RemoveChild(only)
	}
	for _, n := range nodes {
		parent.InsertBefore(n, ref)
	}
	last := nodes[len(nodes)-1]
	if dom.IsText(last) {
		return dom.Point{Node: last, Offset: dom.TextLength(last)}
	}
	return dom.Point{Node: last.Parent, Offset: dom.IndexOf(last) + 1}
}

// insertTextAt inserts s at p and returns the caret after it.
func insertTextAt(p dom.Point, s string) dom.Point {
	if dom.IsText(p.Node) {
		runes := []rune(p.Node.Data)
		off := min(max(p.Offset, 0), len(runes))
		p.Node.Data = string(runes[:off]) + s + string(runes[off:])
		return dom.Point{Node: p.Node, Offset: off + utf8.RuneCountInString(s)}
	}
	return insertAt(p, []*html.Node{dom.NewText(s)})
}

// deleteRange removes the text in [start, end) of root, merging the blocks
// at either end, and returns the collapsed caret.
func deleteRange(root *html.Node, start, end int) dom.Point {
	segs := isolate(root, start, end)
	if len(segs) == 0 {
		return dom.PointAt(root, start)
	}
	startBlock := blockOf(segs[0], root)
	endBlock := blockOf(segs[len(segs)-1], root)
	var middle []*html.Node
	for _, s := range segs {
		if b := blockOf(s, root); b != nil && b != startBlock && b != endBlock && !slices.Contains(middle, b) {
			middle = append(middle, b)
		}
	}

	local := start
	if startBlock != nil {
		blockStart, _ := dom.TextOffset(root, dom.Point{Node: startBlock, Offset: 0})
		local = start - blockStart
	}
	for _, s := range segs {
		parent := s.Parent
		dom.Remove(s)
		removeEmptyInline(parent, root)
	}
	for _, b := range middle {
		if dom.ContentLength(b) == 0 && !dom.Contains(b, startBlock) && !dom.Contains(b, endBlock) {
			dom.Remove(b)
		}
	}
	if startBlock != nil && endBlock != nil && startBlock != endBlock && endBlock.Parent != nil {
		mergeBlocks(startBlock, endBlock)
	}
	if startBlock != nil {
		ensureLine(startBlock)
		return dom.PointAt(startBlock, local)
	}
	return dom.PointAt(root, start)
}

// mergeBlocks moves the children of b into a and removes b.
func mergeBlocks(a, b *html.Node) {
	if dom.ContentLength(a) == 0 {
		for c := a.FirstChild; c != nil; c = a.FirstChild {
			a.RemoveChild(c)
		}
	}
	for c := b.FirstChild; c != nil; c = b.FirstChild {
		b.RemoveChild(c)
		if dom.Tag(c) == "br" && a.FirstChild != nil {
			continue
		}
		a.AppendChild(c)
	}
	dom.Remove(b)
}

// ensureLine gives an empty block a line break so it keeps its line.
func ensureLine(b *html.Node) {
	if b.FirstChild == nil {
		b.AppendChild(dom.NewElement("br"))
	}
}

// splitBlock splits b at a flat offset and returns the new trailing block.
func splitBlock(b *html.Node, offset int) *html.Node {
	total := dom.ContentLength(b)
	tag := dom.Tag(b)
	if dom.IsHeading(tag) && offset >= total {
		tag = "p"
	}
	left := dom.CloneSlice(b, 0, offset)
	right := dom.CloneSlice(b, offset, total)

	for c := b.FirstChild; c != nil; c = b.FirstChild {
		b.RemoveChild(c)
	}
	for _, c := range left {
		b.AppendChild(c)
	}
	ensureLine(b)

	nb := dom.NewElement(tag)
	if tag == dom.Tag(b) {
		for _, a := range b.Attr {
			if a.Key != "id" {
				nb.Attr = append(nb.Attr, a)
			}
		}
	}
	for _, c := range right {
		nb.AppendChild(c)
	}
	ensureLine(nb)
	dom.InsertAfter(nb, b)
	return nb
}

// startOf returns the caret at the start of n.
func startOf(n *html.Node) dom.Point {
	if texts := dom.TextNodes(n); len(texts) > 0 {
		return dom.Point{Node: texts[0], Offset: 0}
	}
	return dom.Point{Node: n, Offset: 0}
}

// unlistItem turns li into a paragraph placed after its list, splitting the
// list when li is in the middle. It returns the paragraph.
func unlistItem(li *html.Node) *html.Node {
	list := li.Parent
	p := dom.NewElement("p")
	for c := li.FirstChild; c != nil; c = li.FirstChild {
		li.RemoveChild(c)
		p.AppendChild(c)
	}
	ensureLine(p)

	if dom.NextElementSibling(li) != nil {
		tail := dom.NewElement(list.Data)
		for c := li.NextSibling; c != nil; c = li.NextSibling {
			list.RemoveChild(c)
			tail.AppendChild(c)
		}
		dom.InsertAfter(tail, list)
	}
	list.RemoveChild(li)
	dom.InsertAfter(p, list)
	if !dom.HasElementChildren(list) {
		dom.Remove(list)
	}
	return p
}
