package dom

import (
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Point is a boundary point: a container node and an offset into it. For
// text nodes the offset counts code points; for elements it is a child index.
type Point struct {
	Node   *html.Node
	Offset int
}

// Range is a pair of boundary points. It is a static value: mutating the
// tree does not update it.
type Range struct {
	Start Point
	End   Point
}

// NewRange creates a range between two boundary points.
func NewRange(startNode *html.Node, startOffset int, endNode *html.Node, endOffset int) *Range {
	return &Range{
		Start: Point{Node: startNode, Offset: startOffset},
		End:   Point{Node: endNode, Offset: endOffset},
	}
}

// Caret creates a collapsed range.
func Caret(n *html.Node, offset int) *Range {
	return NewRange(n, offset, n, offset)
}

// NodeContents creates a range spanning the contents of n.
func NodeContents(n *html.Node) *Range {
	if IsText(n) {
		return NewRange(n, 0, n, TextLength(n))
	}
	return NewRange(n, 0, n, ChildCount(n))
}

// Clone returns a copy of the range.
func (r *Range) Clone() *Range {
	c := *r
	return &c
}

// Collapsed reports whether start and end are the same point.
func (r *Range) Collapsed() bool {
	return r.Start.Node == r.End.Node && r.Start.Offset == r.End.Offset
}

// Collapse moves one boundary onto the other.
func (r *Range) Collapse(toStart bool) {
	if toStart {
		r.End = r.Start
	} else {
		r.Start = r.End
	}
}

// CommonAncestor returns the deepest node containing both boundary
// containers.
func (r *Range) CommonAncestor() *html.Node {
	if r.Start.Node == nil || r.End.Node == nil {
		return nil
	}
	for n := r.Start.Node; n != nil; n = n.Parent {
		if Contains(n, r.End.Node) {
			return n
		}
	}
	return nil
}

// String returns the text covered by the range.
func (r *Range) String() string {
	root := r.CommonAncestor()
	if root == nil {
		return ""
	}
	if IsText(root) {
		return substring(root.Data, r.Start.Offset, r.End.Offset)
	}
	start, ok1 := TextOffset(root, r.Start)
	end, ok2 := TextOffset(root, r.End)
	if !ok1 || !ok2 || end <= start {
		return ""
	}
	return substring(TextContent(root), start, end)
}

// SelectsSingleNode reports whether the range selects exactly one child of
// an element container.
func (r *Range) SelectsSingleNode() bool {
	n := r.Start.Node
	return n == r.End.Node && IsElement(n) && n.FirstChild != nil && r.End.Offset == r.Start.Offset+1
}

// TextOffset converts a boundary point to the number of code points of text
// under root that precede it. It returns false when p is not inside root.
func TextOffset(root *html.Node, p Point) (int, bool) {
	if root == nil || p.Node == nil || !Contains(root, p.Node) {
		return 0, false
	}
	target := p.Node
	extra := 0
	switch {
	case IsText(p.Node):
		extra = clamp(p.Offset, 0, TextLength(p.Node))
	case p.Offset < ChildCount(p.Node):
		target = ChildAt(p.Node, p.Offset)
	default:
		target = following(p.Node, root)
	}

	count := 0
	w := NewWalker(root)
	for n := w.Next(); n != nil; n = w.Next() {
		if n == target {
			return count + extra, true
		}
		count += TextLength(n)
	}
	return count, true
}

// PointAt converts a flat text offset under root into a boundary point inside
// a text node. Offsets past the end clamp to the end of the last text node;
// when root has no text the point is (root, 0).
func PointAt(root *html.Node, offset int) Point {
	count := 0
	var last *html.Node
	w := NewWalker(root)
	for n := w.Next(); n != nil; n = w.Next() {
		if !IsText(n) {
			continue
		}
		next := count + TextLength(n)
		if offset >= count && offset <= next {
			return Point{Node: n, Offset: offset - count}
		}
		count = next
		last = n
	}
	if last != nil {
		return Point{Node: last, Offset: TextLength(last)}
	}
	return Point{Node: root, Offset: 0}
}

func substring(s string, start, end int) string {
	n := utf8.RuneCountInString(s)
	start = clamp(start, 0, n)
	end = clamp(end, start, n)
	runes := []rune(s)
	return string(runes[start:end])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
