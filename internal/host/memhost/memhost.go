package memhost

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/event"
	"github.com/dshills/stylus/internal/sched"
	"github.com/dshills/stylus/internal/ui"
)

// Default geometry.
const (
	DefaultCharWidth  = 8
	DefaultLineHeight = 20
)

// Call records one ExecCommand invocation.
type Call struct {
	Name  string
	Value string
}

// Option configures a Host.
type Option func(*Host)

// WithScheduler replaces the default virtual clock.
func WithScheduler(s sched.Scheduler) Option {
	return func(h *Host) { h.sched = s }
}

// WithViewport sets the initial viewport.
func WithViewport(vp dom.Viewport) Option {
	return func(h *Host) { h.viewport = vp }
}

// WithCellSize sets the layout grid.
func WithCellSize(charWidth, lineHeight float64) Option {
	return func(h *Host) {
		h.charWidth = charWidth
		h.lineHeight = lineHeight
	}
}

// WithOrigin sets the page position of the first line of content.
func WithOrigin(x, y float64) Option {
	return func(h *Host) {
		h.originX = x
		h.originY = y
	}
}

// Host is an in-memory host.Host.
type Host struct {
	doc       *html.Node
	sel       *dom.Range
	sched     sched.Scheduler
	clock     *sched.Virtual
	listeners []*listener
	mounted   []*ui.Element
	focused   event.Target
	hovered   event.Target
	calls     []Call
	sizes     map[ui.Kind]dom.Size

	viewport   dom.Viewport
	charWidth  float64
	lineHeight float64
	originX    float64
	originY    float64
}

// New creates a host over doc.
func New(doc *html.Node, opts ...Option) *Host {
	h := &Host{
		doc:        doc,
		viewport:   dom.Viewport{Width: 1024, Height: 768},
		charWidth:  DefaultCharWidth,
		lineHeight: DefaultLineHeight,
		originX:    DefaultOriginX,
		originY:    DefaultOriginY,
		sizes: map[ui.Kind]dom.Size{
			ui.KindToolbar: {Width: 300, Height: 50},
			ui.KindPreview: {Width: 200, Height: 40},
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.sched == nil {
		h.clock = sched.NewVirtual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		h.sched = h.clock
	}
	if v, ok := h.sched.(*sched.Virtual); ok {
		h.clock = v
	}
	return h
}

// Parse creates a host from markup.
func Parse(markup string, opts ...Option) (*Host, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	return New(doc, opts...), nil
}

// Document returns the document node.
func (h *Host) Document() *html.Node { return h.doc }

// Body returns the body element.
func (h *Host) Body() *html.Node { return dom.Body(h.doc) }

// Selection returns a copy of the current selection.
func (h *Host) Selection() *dom.Range {
	if h.sel == nil {
		return nil
	}
	if !dom.Contains(h.doc, h.sel.Start.Node) || !dom.Contains(h.doc, h.sel.End.Node) {
		h.sel = nil
		return nil
	}
	return h.sel.Clone()
}

// SetSelection replaces the selection.
func (h *Host) SetSelection(r *dom.Range) {
	if r == nil {
		h.sel = nil
		return
	}
	h.sel = r.Clone()
}

// Select sets the selection to the text between two flat offsets of root.
func (h *Host) Select(root *html.Node, start, end int) {
	h.SetSelection(&dom.Range{Start: pointForward(root, start), End: dom.PointAt(root, end)})
	if start == end {
		h.sel.End = h.sel.Start
	}
}

// SelectText selects the first occurrence of text inside root. It returns
// false when the text is not found.
func (h *Host) SelectText(root *html.Node, text string) bool {
	content := []rune(dom.TextContent(root))
	needle := []rune(text)
	for i := 0; i+len(needle) <= len(content); i++ {
		if string(content[i:i+len(needle)]) == text {
			h.Select(root, i, i+len(needle))
			return true
		}
	}
	return false
}

// Scheduler returns the host's scheduler.
func (h *Host) Scheduler() sched.Scheduler { return h.sched }

// Clock returns the virtual clock, or nil when a different scheduler is in
// use.
func (h *Host) Clock() *sched.Virtual { return h.clock }

// Advance moves the virtual clock forward. It is a no-op for other
// schedulers.
func (h *Host) Advance(d time.Duration) {
	if h.clock != nil {
		h.clock.Advance(d)
	}
}

// Mount attaches a UI tree.
func (h *Host) Mount(e *ui.Element) {
	if e != nil && !slices.Contains(h.mounted, e) {
		h.mounted = append(h.mounted, e)
	}
}

// Unmount detaches a UI tree.
func (h *Host) Unmount(e *ui.Element) {
	if i := slices.Index(h.mounted, e); i >= 0 {
		h.mounted = slices.Delete(h.mounted, i, i+1)
	}
}

// Mounted returns the attached UI trees in mount order.
func (h *Host) Mounted() []*ui.Element {
	return slices.Clone(h.mounted)
}

// Viewport returns the viewport.
func (h *Host) Viewport() dom.Viewport { return h.viewport }

// Resize changes the viewport size and fires a resize event on the window.
func (h *Host) Resize(width, height float64) {
	h.viewport.Width, h.viewport.Height = width, height
	h.Fire(event.Window, event.New(event.TypeResize, event.Window))
}

// ScrollTo changes the scroll offsets and fires a scroll event on the window.
func (h *Host) ScrollTo(x, y float64) {
	h.viewport.ScrollX, h.viewport.ScrollY = x, y
	h.Fire(event.Window, event.New(event.TypeScroll, event.Window))
}

// Measure returns the configured size for the element's kind.
func (h *Host) Measure(e *ui.Element) dom.Size {
	if e == nil {
		return dom.Size{}
	}
	return h.sizes[e.Kind]
}

// SetSize overrides the measured size for a UI kind.
func (h *Host) SetSize(kind ui.Kind, size dom.Size) {
	h.sizes[kind] = size
}

// Calls returns the recorded ExecCommand invocations.
func (h *Host) Calls() []Call {
	return slices.Clone(h.calls)
}

// CallCount returns how many times the named command was invoked.
func (h *Host) CallCount(name string) int {
	n := 0
	for _, c := range h.calls {
		if strings.EqualFold(c.Name, name) {
			n++
		}
	}
	return n
}

// ResetCalls clears the command log.
func (h *Host) ResetCalls() { h.calls = nil }
