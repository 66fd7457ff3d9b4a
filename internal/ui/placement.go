package ui

import (
	"math"

	"github.com/dshills/stylus/internal/dom"
)

const (
	// ToolbarButtonHeight is the vertical room a floating toolbar needs
	// above a selection before it flips underneath.
	ToolbarButtonHeight = 50

	// PreviewButtonHeight is the vertical offset used for the anchor preview.
	PreviewButtonHeight = 40
)

// Arrow is the side of a floating element its pointer is drawn on.
type Arrow int

const (
	// ArrowUnder places the element above the target, pointing down.
	ArrowUnder Arrow = iota
	// ArrowOver places the element below the target, pointing up.
	ArrowOver
)

// Class returns the CSS-style class name for the arrow.
func (a Arrow) Class() string {
	if a == ArrowOver {
		return "medium-toolbar-arrow-over"
	}
	return "medium-toolbar-arrow-under"
}

// Placement is a computed position.
type Placement struct {
	Top, Left float64
	Arrow     Arrow
	Sticky    bool
}

// Offsets are the configurable position deltas.
type Offsets struct {
	DiffLeft float64
	DiffTop  float64
}

// Align is the horizontal alignment of a static toolbar.
type Align string

// Static toolbar alignments.
const (
	AlignCenter Align = "center"
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
)

// clampLeft centres an element of width w on middle, keeping it inside the
// viewport.
func clampLeft(middle, w, viewportWidth, diffLeft float64) float64 {
	half := w / 2
	defaultLeft := diffLeft - half
	switch {
	case middle < half:
		return defaultLeft + half
	case viewportWidth-middle < half:
		return viewportWidth + defaultLeft - half
	default:
		return defaultLeft + middle
	}
}

// Floating positions a floating toolbar of size tb over the selection
// rectangle sel. When sel is closer to the viewport top than the button
// height, the toolbar is placed under the selection instead.
func Floating(sel dom.Rect, tb dom.Size, vp dom.Viewport, off Offsets) Placement {
	middle := (sel.Left + sel.Right) / 2
	p := Placement{Left: clampLeft(middle, tb.Width, vp.Width, off.DiffLeft)}
	if sel.Top < ToolbarButtonHeight {
		p.Arrow = ArrowOver
		p.Top = ToolbarButtonHeight + sel.Bottom - off.DiffTop + vp.ScrollY - tb.Height
	} else {
		p.Arrow = ArrowUnder
		p.Top = sel.Top + off.DiffTop + vp.ScrollY - tb.Height
	}
	return p
}

// Preview positions the anchor preview of size pv under the anchor
// rectangle a. The top is rounded to whole units.
func Preview(a dom.Rect, pv dom.Size, vp dom.Viewport, off Offsets) Placement {
	middle := (a.Left + a.Right) / 2
	return Placement{
		Top:   math.Round(PreviewButtonHeight + a.Bottom - off.DiffTop + vp.ScrollY - pv.Height),
		Left:  clampLeft(middle, pv.Width, vp.Width, off.DiffLeft),
		Arrow: ArrowOver,
	}
}

// Static positions a toolbar of size tb against the container rectangle c
// (viewport coordinates). With sticky set, the toolbar sticks to the
// viewport top once the container's top scrolls past it and drops below the
// container once the container has scrolled out.
func Static(c dom.Rect, tb dom.Size, vp dom.Viewport, sticky bool, align Align) Placement {
	var p Placement
	containerTop := c.Top + vp.ScrollY
	switch {
	case sticky && vp.ScrollY > containerTop+c.Height()-tb.Height:
		p.Top = containerTop + c.Height()
	case sticky && vp.ScrollY > containerTop-tb.Height:
		p.Top = 0
		p.Sticky = true
	default:
		p.Top = containerTop - tb.Height
	}

	center := c.Left + c.Width()/2
	switch align {
	case AlignLeft:
		p.Left = c.Left
	case AlignRight:
		p.Left = c.Right - tb.Width
	default:
		p.Left = center - tb.Width/2
	}
	return p
}

// Apply sets the element's position and arrow classes from p.
func (p Placement) Apply(e *Element) {
	e.SetPosition(p.Top, p.Left)
	e.ToggleClass(ArrowOver.Class(), p.Arrow == ArrowOver)
	e.ToggleClass(ArrowUnder.Class(), p.Arrow == ArrowUnder)
}
