package memhost

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/host"
)

// inlineTags maps the inline toggles to the tags that express them. The
// first tag is the one created.
var inlineTags = map[string][]string{
	"bold":          {"b", "strong"},
	"italic":        {"i", "em"},
	"underline":     {"u"},
	"strikethrough": {"strike", "s", "del"},
	"superscript":   {"sup"},
	"subscript":     {"sub"},
}

var justify = map[string]string{
	"justifyleft":   "left",
	"justifycenter": "center",
	"justifyright":  "right",
	"justifyfull":   "justify",
}

// ExecCommand runs a native editing command over the selection.
func (h *Host) ExecCommand(name, value string) bool {
	h.calls = append(h.calls, Call{Name: name, Value: value})
	r := h.Selection()
	if r == nil {
		return false
	}
	root := h.rootOf(r.Start.Node)
	cmd := strings.ToLower(name)

	if tags, ok := inlineTags[cmd]; ok {
		return h.toggleInline(root, r, tags)
	}
	if align, ok := justify[cmd]; ok {
		return h.justify(root, r, align)
	}
	switch cmd {
	case "createlink":
		return h.createLink(root, r, value)
	case "unlink":
		return h.unlink(root, r)
	case "formatblock":
		return h.formatBlock(root, r, value)
	case "insertorderedlist":
		return h.insertList(root, r, "ol")
	case "insertunorderedlist":
		return h.insertList(root, r, "ul")
	case "indent":
		return h.indent(root, r)
	case "outdent":
		return h.outdent(root, r)
	case "inserthtml":
		return h.insertHTML(root, r, value)
	case "inserttext":
		return h.insertText(root, r, value)
	case "insertimage":
		return h.insertHTML(root, r, `<img src="`+html.EscapeString(value)+`">`)
	case "insertparagraph":
		return h.insertParagraph(root, r)
	case "delete":
		return h.deleteBackward(root, r)
	case "forwarddelete":
		return h.deleteForward(root, r)
	}
	return false
}

// QueryCommandState reports whether a command is active for the selection.
func (h *Host) QueryCommandState(name string) (active, supported bool) {
	cmd := strings.ToLower(name)
	r := h.Selection()
	if tags, ok := inlineTags[cmd]; ok {
		if r == nil {
			return false, true
		}
		return h.inlineActive(h.rootOf(r.Start.Node), r, tags), true
	}
	if align, ok := justify[cmd]; ok {
		if r == nil {
			return false, true
		}
		root := h.rootOf(r.Start.Node)
		b := blockOf(caretNode(r.Start), root)
		if b == nil {
			return align == "left", true
		}
		v, has := dom.StyleProp(b, "text-align")
		return v == align || (!has && align == "left"), true
	}
	switch cmd {
	case "insertorderedlist", "insertunorderedlist":
		if r == nil {
			return false, true
		}
		want := "ol"
		if cmd == "insertunorderedlist" {
			want = "ul"
		}
		root := h.rootOf(r.Start.Node)
		li := dom.ClosestTag(caretNode(r.Start), root, "li")
		return li != nil && dom.Tag(li.Parent) == want, true
	}
	return false, false
}

func (h *Host) inlineActive(root *xhtml.Node, r *dom.Range, tags []string) bool {
	start, end, ok := offsets(root, r)
	if !ok {
		return false
	}
	nodes := []*xhtml.Node{caretNode(r.Start)}
	if start < end {
		nodes = touching(root, start, end)
	}
	if len(nodes) == 0 {
		return false
	}
	for _, n := range nodes {
		if dom.ClosestTag(n, root, tags...) == nil {
			return false
		}
	}
	return true
}

func (h *Host) selectNodes(first, last *xhtml.Node) {
	h.sel = dom.NewRange(first, 0, last, dom.TextLength(last))
}

func (h *Host) toggleInline(root *xhtml.Node, r *dom.Range, tags []string) bool {
	start, end, ok := offsets(root, r)
	if !ok || start == end {
		return false
	}
	active := h.inlineActive(root, r, tags)
	segs := isolate(root, start, end)
	if len(segs) == 0 {
		return false
	}
	if active {
		selected := make(map[*xhtml.Node]bool, len(segs))
		for _, s := range segs {
			selected[s] = true
		}
		var found []*xhtml.Node
		for _, s := range segs {
			for el := dom.ClosestTag(s, root, tags...); el != nil; el = dom.ClosestTag(el.Parent, root, tags...) {
				if !containsNode(found, el) {
					found = append(found, el)
				}
			}
		}
		for _, el := range found {
			unwrapExcept(el, selected)
		}
	} else {
		wrapRuns(coverUnits(root, segs), func() *xhtml.Node { return dom.NewElement(tags[0]) })
	}
	h.selectNodes(segs[0], segs[len(segs)-1])
	return true
}

func containsNode(list []*xhtml.Node, n *xhtml.Node) bool {
	for _, x := range list {
		if x == n {
			return true
		}
	}
	return false
}

func (h *Host) createLink(root *xhtml.Node, r *dom.Range, href string) bool {
	start, end, ok := offsets(root, r)
	if !ok || start == end || href == "" {
		return false
	}
	segs := isolate(root, start, end)
	if len(segs) == 0 {
		return false
	}
	var units []*xhtml.Node
	for _, u := range coverUnits(root, segs) {
		if a := dom.ClosestTag(u, root, "a"); a != nil {
			dom.SetAttr(a, "href", href)
			continue
		}
		for _, inner := range dom.ElementsByTag(u, "a") {
			dom.Unwrap(inner)
		}
		units = append(units, u)
	}
	wrapRuns(units, func() *xhtml.Node {
		a := dom.NewElement("a")
		dom.SetAttr(a, "href", href)
		return a
	})
	h.selectNodes(segs[0], segs[len(segs)-1])
	return true
}

func (h *Host) unlink(root *xhtml.Node, r *dom.Range) bool {
	start, end, ok := offsets(root, r)
	if !ok {
		return false
	}
	var anchors []*xhtml.Node
	add := func(a *xhtml.Node) {
		if a != nil && !containsNode(anchors, a) {
			anchors = append(anchors, a)
		}
	}
	if start == end {
		add(dom.ClosestTag(caretNode(r.Start), root, "a"))
	} else {
		for _, t := range touching(root, start, end) {
			add(dom.ClosestTag(t, root, "a"))
		}
	}
	if len(anchors) == 0 {
		return false
	}
	for _, a := range anchors {
		dom.Unwrap(a)
	}
	h.settle(root, r, start, end)
	return true
}

// settle keeps r when its boundary text nodes survived a structural change
// and otherwise re-derives the selection from flat offsets.
func (h *Host) settle(root *xhtml.Node, r *dom.Range, start, end int) {
	if dom.IsText(r.Start.Node) && dom.IsText(r.End.Node) &&
		dom.Contains(root, r.Start.Node) && dom.Contains(root, r.End.Node) {
		h.sel = r
		return
	}
	h.Select(root, start, end)
}

func (h *Host) formatBlock(root *xhtml.Node, r *dom.Range, value string) bool {
	tag := strings.ToLower(strings.Trim(value, "<> "))
	if tag == "" {
		return false
	}
	start, end, _ := offsets(root, r)
	for _, b := range blocksIn(root, r) {
		switch {
		case dom.Tag(b) == tag:
		case dom.Tag(b) == "li":
			el := dom.NewElement(tag)
			for c := b.FirstChild; c != nil; c = b.FirstChild {
				b.RemoveChild(c)
				el.AppendChild(c)
			}
			b.AppendChild(el)
		default:
			dom.Rename(b, tag)
		}
	}
	h.settle(root, r, start, end)
	return true
}

func (h *Host) justify(root *xhtml.Node, r *dom.Range, align string) bool {
	start, end, _ := offsets(root, r)
	for _, b := range blocksIn(root, r) {
		dom.SetStyleProp(b, "text-align", align)
	}
	h.settle(root, r, start, end)
	return true
}

func (h *Host) insertList(root *xhtml.Node, r *dom.Range, listTag string) bool {
	start, end, _ := offsets(root, r)
	blocks := blocksIn(root, r)
	if li := dom.ClosestTag(blocks[0], root, "li"); li != nil {
		list := li.Parent
		if dom.Tag(list) != listTag {
			dom.Rename(list, listTag)
			h.settle(root, r, start, end)
			return true
		}
		for _, b := range blocks {
			if item := dom.ClosestTag(b, root, "li"); item != nil && item.Parent != nil {
				unlistItem(item)
			}
		}
		h.settle(root, r, start, end)
		return true
	}

	list := dom.NewElement(listTag)
	blocks[0].Parent.InsertBefore(list, blocks[0])
	for _, b := range blocks {
		li := dom.NewElement("li")
		if dom.IsHeading(dom.Tag(b)) {
			dom.Remove(b)
			li.AppendChild(b)
		} else {
			for c := b.FirstChild; c != nil; c = b.FirstChild {
				b.RemoveChild(c)
				li.AppendChild(c)
			}
			dom.Remove(b)
		}
		list.AppendChild(li)
	}
	h.settle(root, r, start, end)
	return true
}

func (h *Host) indent(root *xhtml.Node, r *dom.Range) bool {
	start, end, _ := offsets(root, r)
	if li := dom.ClosestTag(caretNode(r.Start), root, "li"); li != nil {
		list := li.Parent
		prev := dom.PrevElementSibling(li)
		if prev != nil && dom.Tag(prev) == "li" {
			sub := prev.LastChild
			if dom.Tag(sub) != dom.Tag(list) {
				sub = dom.NewElement(list.Data)
				prev.AppendChild(sub)
			}
			list.RemoveChild(li)
			sub.AppendChild(li)
		} else {
			dom.Wrap(li, dom.NewElement(list.Data))
		}
		h.settle(root, r, start, end)
		return true
	}
	wrapRuns(blocksIn(root, r), func() *xhtml.Node { return dom.NewElement("blockquote") })
	h.settle(root, r, start, end)
	return true
}

func (h *Host) outdent(root *xhtml.Node, r *dom.Range) bool {
	start, end, _ := offsets(root, r)
	node := caretNode(r.Start)
	if li := dom.ClosestTag(node, root, "li"); li != nil {
		list := li.Parent
		switch outer := list.Parent; dom.Tag(outer) {
		case "li":
			list.RemoveChild(li)
			dom.InsertAfter(li, outer)
			if !dom.HasElementChildren(list) {
				dom.Remove(list)
			}
		case "ul", "ol":
			list.RemoveChild(li)
			dom.InsertAfter(li, list)
			if !dom.HasElementChildren(list) {
				dom.Remove(list)
			}
		default:
			unlistItem(li)
		}
		h.settle(root, r, start, end)
		return true
	}
	bq := dom.ClosestTag(node, root, "blockquote")
	if bq == nil || bq == root {
		return false
	}
	if hasBlockChild(bq) {
		dom.Unwrap(bq)
	} else {
		dom.Rename(bq, "p")
	}
	h.settle(root, r, start, end)
	return true
}

func (h *Host) insertHTML(root *xhtml.Node, r *dom.Range, markup string) bool {
	caret := h.collapse(root, r)
	context := caret.Node
	if !dom.IsElement(context) {
		context = context.Parent
	}
	nodes, err := dom.ParseFragment(markup, context)
	if err != nil || len(nodes) == 0 {
		return false
	}
	after := insertAt(caret, nodes)
	h.sel = dom.NewRange(after.Node, after.Offset, after.Node, after.Offset)
	return true
}

func (h *Host) insertText(root *xhtml.Node, r *dom.Range, text string) bool {
	if text == "" {
		return false
	}
	after := insertTextAt(h.collapse(root, r), text)
	h.sel = dom.NewRange(after.Node, after.Offset, after.Node, after.Offset)
	return true
}

// collapse deletes the selected content and returns the caret.
func (h *Host) collapse(root *xhtml.Node, r *dom.Range) dom.Point {
	if r.Collapsed() {
		return r.Start
	}
	start, end, ok := offsets(root, r)
	if !ok {
		return r.Start
	}
	return deleteRange(root, start, end)
}

func (h *Host) insertParagraph(root *xhtml.Node, r *dom.Range) bool {
	caret := h.collapse(root, r)
	h.sel = dom.NewRange(caret.Node, caret.Offset, caret.Node, caret.Offset)
	block := blocksIn(root, h.sel)[0]

	if dom.Tag(block) == "li" && dom.ContentLength(block) == 0 {
		p := unlistItem(block)
		h.sel = dom.Caret(p, 0)
		return true
	}
	off, ok := dom.TextOffset(block, caret)
	if !ok {
		off = dom.ContentLength(block)
	}
	nb := splitBlock(block, off)
	start := startOf(nb)
	h.sel = dom.NewRange(start.Node, start.Offset, start.Node, start.Offset)
	return true
}

func (h *Host) deleteBackward(root *xhtml.Node, r *dom.Range) bool {
	if !r.Collapsed() {
		caret := h.collapse(root, r)
		h.sel = dom.NewRange(caret.Node, caret.Offset, caret.Node, caret.Offset)
		return true
	}
	off, ok := dom.TextOffset(root, r.Start)
	if !ok {
		return false
	}
	block := blockOf(caretNode(r.Start), root)
	blockStart := 0
	if block != nil {
		blockStart, _ = dom.TextOffset(root, dom.Point{Node: block, Offset: 0})
	}
	if off > blockStart {
		caret := deleteRange(root, off-1, off)
		h.sel = dom.NewRange(caret.Node, caret.Offset, caret.Node, caret.Offset)
		return true
	}
	if block == nil {
		return false
	}
	prev := dom.PrevElementSibling(block)
	if prev == nil || !isBlockElement(prev) {
		return false
	}
	if dom.ContentLength(prev) == 0 {
		dom.Remove(prev)
		return true
	}
	prevLen := dom.ContentLength(prev)
	mergeBlocks(prev, block)
	caret := dom.PointAt(prev, prevLen)
	h.sel = dom.NewRange(caret.Node, caret.Offset, caret.Node, caret.Offset)
	return true
}

func (h *Host) deleteForward(root *xhtml.Node, r *dom.Range) bool {
	if !r.Collapsed() {
		return h.deleteBackward(root, r)
	}
	off, ok := dom.TextOffset(root, r.Start)
	if !ok {
		return false
	}
	block := blockOf(caretNode(r.Start), root)
	limit := dom.ContentLength(root)
	if block != nil {
		blockStart, _ := dom.TextOffset(root, dom.Point{Node: block, Offset: 0})
		limit = blockStart + dom.ContentLength(block)
	}
	if off < limit {
		caret := deleteRange(root, off, off+1)
		h.sel = dom.NewRange(caret.Node, caret.Offset, caret.Node, caret.Offset)
		return true
	}
	if block == nil {
		return false
	}
	next := dom.NextElementSibling(block)
	if next == nil || !isBlockElement(next) {
		return false
	}
	mergeBlocks(block, next)
	return true
}

var _ host.Host = (*Host)(nil)
