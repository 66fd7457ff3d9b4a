package selection

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/host"
)

// ElementAttr marks an element as an editor surface.
const ElementAttr = "data-medium-element"

// Kind classifies the live selection.
type Kind int

const (
	// Empty is a missing or collapsed selection, or one that covers only
	// whitespace.
	Empty Kind = iota
	// SingleParagraph is a selection inside at most one block.
	SingleParagraph
	// MultiParagraph is a selection spanning several blocks.
	MultiParagraph
	// InsideNonEditable is a selection inside a contenteditable="false"
	// region of a surface.
	InsideNonEditable
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case SingleParagraph:
		return "single-paragraph"
	case MultiParagraph:
		return "multi-paragraph"
	case InsideNonEditable:
		return "inside-non-editable"
	default:
		return "unknown"
	}
}

var (
	emptyElement = regexp.MustCompile(`<[\S]+></[\S]+>`)
	blockElement = regexp.MustCompile(`(?i)<(p|h[0-6]|blockquote)(\s[^>]*)?>[\s\S]*?</(p|h[0-6]|blockquote)>`)
)

// Coordinator saves, restores and inspects the host selection for a fixed
// list of surfaces.
type Coordinator struct {
	host     host.Host
	surfaces []*html.Node
}

// New creates a coordinator over the given surfaces.
func New(h host.Host, surfaces ...*html.Node) *Coordinator {
	return &Coordinator{host: h, surfaces: surfaces}
}

// SetSurfaces replaces the surface list.
func (c *Coordinator) SetSurfaces(surfaces []*html.Node) {
	c.surfaces = surfaces
}

// Surfaces returns the surface list.
func (c *Coordinator) Surfaces() []*html.Node {
	return c.surfaces
}

// SurfaceIndex returns the index of the surface containing n, or -1.
func (c *Coordinator) SurfaceIndex(n *html.Node) int {
	for i, s := range c.surfaces {
		if dom.Contains(s, n) {
			return i
		}
	}
	return -1
}

// Save captures the live selection as offsets into the surface holding its
// start. It returns false when no selection starts inside a surface.
func (c *Coordinator) Save() (Snapshot, bool) {
	r := c.host.Selection()
	if r == nil || len(c.surfaces) == 0 {
		return Snapshot{}, false
	}
	idx := c.SurfaceIndex(r.Start.Node)
	if idx < 0 {
		return Snapshot{}, false
	}
	root := c.surfaces[idx]
	start, _ := dom.TextOffset(root, r.Start)
	end, ok := dom.TextOffset(root, r.End)
	if !ok {
		end = start + utf8.RuneCountInString(r.String())
	}
	end = min(max(end, start), dom.ContentLength(root))
	return Snapshot{Surface: idx, Start: start, End: end}, true
}

// Restore selects the text described by s. A boundary that no longer exists
// falls back to the start of the surface or the end of its text. It returns
// false only when s names no known surface.
func (c *Coordinator) Restore(s Snapshot) bool {
	if s.Surface < 0 || s.Surface >= len(c.surfaces) {
		return false
	}
	c.host.SetSelection(Locate(c.surfaces[s.Surface], s.Start, s.End))
	return true
}

// Locate builds the range covering [start, end) of the text under root.
func Locate(root *html.Node, start, end int) *dom.Range {
	r := dom.Caret(root, 0)
	pos := 0
	foundStart, foundEnd := false, false
	var last *html.Node

	w := dom.NewWalker(root)
	for n := w.Next(); n != nil && !foundEnd; n = w.Next() {
		if !dom.IsText(n) {
			continue
		}
		next := pos + dom.TextLength(n)
		if !foundStart && start >= pos && start <= next {
			r.Start = dom.Point{Node: n, Offset: start - pos}
			foundStart = true
		}
		if foundStart && end >= pos && end <= next {
			r.End = dom.Point{Node: n, Offset: end - pos}
			foundEnd = true
		}
		pos = next
		last = n
	}

	switch {
	case !foundStart:
		r.End = r.Start
	case !foundEnd && last != nil:
		r.End = dom.Point{Node: last, Offset: dom.TextLength(last)}
	}
	return r
}

// Classify reports the kind of the live selection.
func (c *Coordinator) Classify() Kind {
	r := c.host.Selection()
	if r == nil || len(c.surfaces) == 0 || r.Collapsed() {
		return Empty
	}
	if strings.TrimSpace(r.String()) == "" {
		return Empty
	}
	if c.InNonEditable(r) {
		return InsideNonEditable
	}
	if IsMultiParagraph(SelectionHTML(r)) {
		return MultiParagraph
	}
	return SingleParagraph
}

// IsMultiParagraph reports whether markup holds more than one paragraph,
// heading or blockquote element once empty elements are dropped.
func IsMultiParagraph(markup string) bool {
	markup = emptyElement.ReplaceAllString(markup, "")
	return len(blockElement.FindAllStringIndex(markup, 2)) > 1
}

// SelectionHTML returns the markup covered by r.
func SelectionHTML(r *dom.Range) string {
	if r == nil {
		return ""
	}
	return dom.RenderNodes(dom.CloneContents(r))
}

// Text returns the text of the live selection.
func (c *Coordinator) Text() string {
	r := c.host.Selection()
	if r == nil {
		return ""
	}
	return r.String()
}

// InNonEditable reports whether r sits inside an element marked
// contenteditable="false" below its surface.
func (c *Coordinator) InNonEditable(r *dom.Range) bool {
	common := r.CommonAncestor()
	if common == nil {
		return false
	}
	stop := SurfaceOf(common)
	return dom.Closest(common, stop, func(n *html.Node) bool {
		v, ok := dom.Attr(n, "contenteditable")
		return ok && strings.EqualFold(v, "false")
	}) != nil
}

// SelectionStart returns the element holding the start of the live
// selection.
func (c *Coordinator) SelectionStart() *html.Node {
	r := c.host.Selection()
	if r == nil {
		return nil
	}
	if dom.IsText(r.Start.Node) {
		return r.Start.Node.Parent
	}
	return r.Start.Node
}

// SelectedParentElement returns the element a range is anchored in. A range
// selecting exactly one element returns that element.
func SelectedParentElement(r *dom.Range) *html.Node {
	if r == nil || r.Start.Node == nil {
		return nil
	}
	if r.SelectsSingleNode() {
		if child := dom.ChildAt(r.Start.Node, r.Start.Offset); dom.IsElement(child) {
			return child
		}
	}
	if dom.IsText(r.Start.Node) {
		return r.Start.Node.Parent
	}
	return r.Start.Node
}

// SelectionElement returns the surface owning the live selection, or nil.
func (c *Coordinator) SelectionElement() *html.Node {
	r := c.host.Selection()
	if r == nil {
		return nil
	}
	return SurfaceOf(r.CommonAncestor())
}

// SurfaceOf returns the nearest element at or above n that is marked as a
// surface.
func SurfaceOf(n *html.Node) *html.Node {
	return dom.Closest(n, nil, func(el *html.Node) bool {
		_, ok := dom.Attr(el, ElementAttr)
		return ok
	})
}

// StandardizeStart moves a selection start that sits at the very end of a
// text node to the first non-space character of the next text node with
// content. It reports whether the selection changed.
func (c *Coordinator) StandardizeStart() bool {
	r := c.host.Selection()
	if r == nil || !dom.IsText(r.Start.Node) || r.Start.Offset != dom.TextLength(r.Start.Node) {
		return false
	}
	root := SurfaceOf(r.Start.Node)
	if root == nil {
		return false
	}
	next := adjacentTextWithContent(root, r.Start.Node)
	if next == nil {
		return false
	}
	offset := 0
	for _, ch := range next.Data {
		if !unicode.IsSpace(ch) {
			break
		}
		offset++
	}
	r.Start = dom.Point{Node: next, Offset: offset}
	if endBefore(root, r) {
		r.End = r.Start
	}
	c.host.SetSelection(r)
	return true
}

// adjacentTextWithContent returns the first text node after target under
// root whose text is not only whitespace.
func adjacentTextWithContent(root, target *html.Node) *html.Node {
	passed := false
	for _, t := range dom.TextNodes(root) {
		if t == target {
			passed = true
			continue
		}
		if passed && strings.TrimSpace(t.Data) != "" {
			return t
		}
	}
	return nil
}

func endBefore(root *html.Node, r *dom.Range) bool {
	start, ok1 := dom.TextOffset(root, r.Start)
	end, ok2 := dom.TextOffset(root, r.End)
	return ok1 && ok2 && end < start
}
