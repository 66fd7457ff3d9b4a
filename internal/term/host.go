package term

import (
	"math"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/host"
	"github.com/dshills/stylus/internal/host/memhost"
	"github.com/dshills/stylus/internal/sched"
	"github.com/dshills/stylus/internal/ui"
)

// Cell metrics in host pixels.
const (
	CellWidth  = memhost.DefaultCharWidth
	CellHeight = memhost.DefaultLineHeight
)

// Screen position of the first line of content, in cells.
const (
	OriginCol = 1
	OriginRow = 2
)

// InputWidth is the minimum width of a text input, in cells.
const InputWidth = 30

// Host is a memhost.Host whose engine elements are measured in terminal
// cells.
type Host struct {
	*memhost.Host
}

// NewHost creates a host over doc driven by s.
func NewHost(doc *html.Node, s sched.Scheduler, width, height int) *Host {
	return &Host{Host: memhost.New(doc,
		memhost.WithScheduler(s),
		memhost.WithOrigin(OriginCol*CellWidth, OriginRow*CellHeight),
		memhost.WithViewport(dom.Viewport{Width: float64(width * CellWidth), Height: float64(height * CellHeight)}),
	)}
}

// Measure returns the pixel size of the cells e occupies when drawn.
func (h *Host) Measure(e *ui.Element) dom.Size {
	if e == nil {
		return dom.Size{}
	}
	return dom.Size{Width: float64(width(e) * CellWidth), Height: CellHeight}
}

// Resize sets the viewport to a screen of cols x rows cells.
func (h *Host) Resize(cols, rows int) {
	h.Host.Resize(float64(cols*CellWidth), float64(rows*CellHeight))
}

// HitTest returns the caret position under a screen cell.
func (h *Host) HitTest(col, row int) (dom.Point, bool) {
	return h.Host.HitTest(float64(col*CellWidth), float64(row*CellHeight))
}

// width returns the number of cells e takes on one row. Hidden children
// take none.
func width(e *ui.Element) int {
	switch e.Kind {
	case ui.KindButton, ui.KindLink:
		return uniseg.StringWidth(e.Label) + 2
	case ui.KindCheckbox:
		return uniseg.StringWidth(e.Label) + 4
	case ui.KindInput:
		return max(InputWidth, uniseg.StringWidth(e.Value)+1)
	case ui.KindText:
		return uniseg.StringWidth(e.Label)
	}
	w := 0
	for _, c := range e.Children {
		if !c.Hidden {
			w += width(c)
		}
	}
	return w
}

// toCell converts viewport pixels to a screen cell.
func toCell(x, y float64) (col, row int) {
	return int(math.Floor(x / CellWidth)), int(math.Floor(y / CellHeight))
}

var _ host.Host = (*Host)(nil)
