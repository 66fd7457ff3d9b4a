package memhost

import (
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
)

// Default page origin of the first line of content.
const (
	DefaultOriginX = 40
	DefaultOriginY = 100
)

type cell struct {
	x, y float64
}

// layout places every text node on a fixed grid. Blocks start on a new
// line; text never wraps.
type layout struct {
	text map[*html.Node]cell
	top  map[*html.Node]float64
	end  map[*html.Node]float64
}

func (h *Host) layout() *layout {
	l := &layout{
		text: make(map[*html.Node]cell),
		top:  make(map[*html.Node]float64),
		end:  make(map[*html.Node]float64),
	}
	x, y := 0.0, 0.0
	newline := func() {
		if x > 0 {
			x = 0
			y += h.lineHeight
		}
	}

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		switch {
		case dom.IsText(n):
			l.text[n] = cell{x: h.originX + x, y: h.originY + y}
			x += float64(dom.TextLength(n)) * h.charWidth
		case n.Type == html.ElementNode || n.Type == html.DocumentNode:
			tag := dom.Tag(n)
			block := n.Type == html.DocumentNode || dom.IsBlock(tag) || tag == "body" || tag == "html"
			if block {
				newline()
			}
			l.top[n] = h.originY + y
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				visit(c)
			}
			switch {
			case tag == "br":
				x = 0
				y += h.lineHeight
			case block && x > 0:
				newline()
			case block && h.originY+y == l.top[n]:
				y += h.lineHeight
			}
			l.end[n] = h.originY + y
		}
	}
	visit(h.doc)
	return l
}

func (h *Host) toViewport(r dom.Rect) dom.Rect {
	return dom.Rect{
		Left:   r.Left - h.viewport.ScrollX,
		Top:    r.Top - h.viewport.ScrollY,
		Right:  r.Right - h.viewport.ScrollX,
		Bottom: r.Bottom - h.viewport.ScrollY,
	}
}

// RangeRect returns the bounding rectangle of r in viewport coordinates.
func (h *Host) RangeRect(r *dom.Range) dom.Rect {
	if r == nil || r.Start.Node == nil {
		return dom.Rect{}
	}
	l := h.layout()
	body := h.Body()
	start, ok1 := dom.TextOffset(body, r.Start)
	end, ok2 := dom.TextOffset(body, r.End)
	if !ok1 || !ok2 {
		return dom.Rect{}
	}
	if end < start {
		start, end = end, start
	}

	var rect dom.Rect
	pos := 0
	for _, t := range dom.TextNodes(body) {
		n := dom.TextLength(t)
		c := l.text[t]
		if start == end && start >= pos && start <= pos+n {
			x := c.x + float64(start-pos)*h.charWidth
			return h.toViewport(dom.Rect{Left: x, Top: c.y, Right: x, Bottom: c.y + h.lineHeight})
		}
		a, b := max(start, pos), min(end, pos+n)
		if b > a {
			rect = rect.Union(dom.Rect{
				Left:   c.x + float64(a-pos)*h.charWidth,
				Top:    c.y,
				Right:  c.x + float64(b-pos)*h.charWidth,
				Bottom: c.y + h.lineHeight,
			})
		}
		pos += n
	}
	if rect.Empty() {
		if top, ok := l.top[caretNode(r.Start)]; ok {
			return h.toViewport(dom.Rect{Left: h.originX, Top: top, Right: h.originX, Bottom: top + h.lineHeight})
		}
		return dom.Rect{}
	}
	return h.toViewport(rect)
}

// ElementRect returns the bounding rectangle of n in viewport coordinates.
// Block elements span the layout width.
func (h *Host) ElementRect(n *html.Node) dom.Rect {
	if n == nil {
		return dom.Rect{}
	}
	l := h.layout()
	top, ok := l.top[n]
	if !ok {
		return dom.Rect{}
	}
	var rect dom.Rect
	for _, t := range dom.TextNodes(n) {
		c := l.text[t]
		rect = rect.Union(dom.Rect{
			Left:   c.x,
			Top:    c.y,
			Right:  c.x + float64(dom.TextLength(t))*h.charWidth,
			Bottom: c.y + h.lineHeight,
		})
	}
	if rect.Empty() {
		rect = dom.Rect{Left: h.originX, Top: top, Right: h.originX, Bottom: top + h.lineHeight}
	}
	if dom.IsBlock(dom.Tag(n)) {
		rect.Left = h.originX
		rect.Right = max(rect.Right, h.viewport.Width-h.originX)
		rect.Top = min(rect.Top, top)
		rect.Bottom = max(rect.Bottom, l.end[n])
	}
	return h.toViewport(rect)
}

// TextBox is the laid-out position of one text node.
type TextBox struct {
	Node *html.Node
	// X and Y are the page coordinates of the node's first character.
	X, Y float64
}

// TextBoxes returns the position of every text node under root in
// document order.
func (h *Host) TextBoxes(root *html.Node) []TextBox {
	l := h.layout()
	nodes := dom.TextNodes(root)
	out := make([]TextBox, 0, len(nodes))
	for _, t := range nodes {
		c := l.text[t]
		out = append(out, TextBox{Node: t, X: c.x, Y: c.y})
	}
	return out
}

// HitTest returns the caret position closest to a viewport point on the
// same line. It reports false when no text lies on that line.
func (h *Host) HitTest(x, y float64) (dom.Point, bool) {
	px, py := x+h.viewport.ScrollX, y+h.viewport.ScrollY
	var (
		best  dom.Point
		found bool
		right float64
	)
	for _, b := range h.TextBoxes(h.Body()) {
		if py < b.Y || py >= b.Y+h.lineHeight {
			continue
		}
		n := dom.TextLength(b.Node)
		end := b.X + float64(n)*h.charWidth
		switch {
		case px >= b.X && px < end:
			return dom.Point{Node: b.Node, Offset: int((px - b.X) / h.charWidth)}, true
		case px < b.X && !found:
			best, found, right = dom.Point{Node: b.Node}, true, end
		case px >= end && (!found || end >= right):
			best, found, right = dom.Point{Node: b.Node, Offset: n}, true, end
		}
	}
	return best, found
}
