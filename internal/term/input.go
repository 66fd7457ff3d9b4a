package term

import (
	"github.com/gdamore/tcell/v2"
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/event"
	"github.com/dshills/stylus/internal/selection"
	"github.com/dshills/stylus/internal/ui"
)

// Handle applies one screen event to the host. It reports whether the user
// asked to quit.
func (s *Session) Handle(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return s.handleKey(e)
	case *tcell.EventMouse:
		s.handleMouse(e)
	case *tcell.EventResize:
		w, h := e.Size()
		s.host.Resize(w, max(h-1, 1))
		s.screen.Sync()
	}
	return false
}

func (s *Session) handleKey(e *tcell.EventKey) bool {
	shift := e.Modifiers()&tcell.ModShift != 0
	switch k := e.Key(); k {
	case tcell.KeyCtrlQ, tcell.KeyCtrlC:
		return s.canQuit == nil || s.canQuit()
	case tcell.KeyLeft, tcell.KeyRight, tcell.KeyUp, tcell.KeyDown, tcell.KeyHome, tcell.KeyEnd:
		s.move(k, shift)
	case tcell.KeyPgUp:
		s.scroll(-pageRows(s.host))
	case tcell.KeyPgDn:
		s.scroll(pageRows(s.host))
	case tcell.KeyBacktab:
		s.host.Press(event.KeyTab, 0, true)
	case tcell.KeyRune:
		if e.Rune() == ' ' {
			s.host.Press(event.KeySpace, ' ', shift)
		} else {
			s.host.Press(event.KeyRune, e.Rune(), shift)
		}
	default:
		if fn, ok := s.shortcuts[k]; ok {
			fn()
			return false
		}
		if key := convertKey(k); key != event.KeyNone {
			s.host.Press(key, 0, shift)
		}
	}
	return false
}

// convertKey converts the tcell keys the engine distinguishes.
func convertKey(k tcell.Key) event.Key {
	switch k {
	case tcell.KeyEnter:
		return event.KeyEnter
	case tcell.KeyEscape:
		return event.KeyEscape
	case tcell.KeyTab:
		return event.KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return event.KeyBackspace
	case tcell.KeyDelete:
		return event.KeyDelete
	default:
		return event.KeyNone
	}
}

// move moves the caret, or the focus end of the selection with shift, and
// fires a key event so listeners see the selection change. Keys go to a
// focused input unchanged.
func (s *Session) move(k tcell.Key, shift bool) {
	if _, ok := s.host.Focused().(*ui.Element); ok {
		return
	}
	r := s.host.Selection()
	if r == nil {
		return
	}
	root := selection.SurfaceOf(r.Start.Node)
	if root == nil {
		return
	}
	start, ok1 := dom.TextOffset(root, r.Start)
	end, ok2 := dom.TextOffset(root, r.End)
	if !ok1 || !ok2 {
		return
	}
	if root != s.anchorRoot || min(s.anchor, s.focus) != start || max(s.anchor, s.focus) != end {
		s.anchorRoot, s.anchor, s.focus = root, start, end
	}

	focus := s.focus
	switch k {
	case tcell.KeyLeft:
		if !shift && start != end {
			focus = start
		} else {
			focus--
		}
	case tcell.KeyRight:
		if !shift && start != end {
			focus = end
		} else {
			focus++
		}
	default:
		if f, ok := s.lineTarget(root, focus, k); ok {
			focus = f
		}
	}
	focus = min(max(focus, 0), dom.ContentLength(root))
	s.focus = focus
	if !shift {
		s.anchor = focus
	}
	s.host.Select(root, min(s.anchor, s.focus), max(s.anchor, s.focus))
	s.host.Press(event.KeyNone, 0, shift)
}

// lineTarget returns the offset a vertical or line-edge key moves the
// focus to, found by hit testing next to the focus cell.
func (s *Session) lineTarget(root *html.Node, focus int, k tcell.Key) (int, bool) {
	p := dom.PointAt(root, focus)
	rect := s.host.RangeRect(dom.Caret(p.Node, p.Offset))
	col, row := toCell(rect.Left, rect.Top)
	switch k {
	case tcell.KeyUp:
		row--
	case tcell.KeyDown:
		row++
	case tcell.KeyHome:
		col = 0
	case tcell.KeyEnd:
		w, _ := s.screen.Size()
		col = w * 4
	}
	target, ok := s.host.HitTest(col, row)
	if !ok {
		return 0, false
	}
	return dom.TextOffset(root, target)
}

func (s *Session) scroll(rows int) {
	vp := s.host.Viewport()
	s.host.ScrollTo(vp.ScrollX, max(vp.ScrollY+float64(rows*CellHeight), 0))
}

func pageRows(h *Host) int {
	return max(int(h.Viewport().Height/CellHeight)-1, 1)
}

func (s *Session) handleMouse(e *tcell.EventMouse) {
	col, row := e.Position()
	btn := e.Buttons()
	switch {
	case btn&tcell.WheelUp != 0:
		s.scroll(-1)
	case btn&tcell.WheelDown != 0:
		s.scroll(1)
	case btn&tcell.Button1 != 0:
		if s.pressed {
			s.drag(col, row)
		} else {
			s.pressed = true
			s.press(col, row)
		}
	case s.pressed:
		s.pressed = false
		s.release(col, row)
	default:
		s.hover(col, row)
	}
}

func (s *Session) press(col, row int) {
	if el := s.elementAt(col, row); el != nil {
		s.pressUI = el
		return
	}
	s.dragFrom, s.dragOK = s.host.HitTest(col, row)
}

func (s *Session) drag(col, row int) {
	if !s.dragOK {
		return
	}
	if p, ok := s.host.HitTest(col, row); ok {
		s.host.SetSelection(s.ordered(s.dragFrom, p))
	}
}

// release completes a click or a drag. A click on an engine element clicks
// it; a click or drag over text selects and clicks the text; anywhere else
// clears the selection.
func (s *Session) release(col, row int) {
	if el := s.pressUI; el != nil {
		s.pressUI = nil
		if s.elementAt(col, row) == el {
			s.host.Click(el)
		}
		return
	}
	if !s.dragOK {
		s.host.SetSelection(nil)
		s.host.Click(s.host.Body())
		return
	}
	s.dragOK = false
	p, ok := s.host.HitTest(col, row)
	if !ok {
		p = s.dragFrom
	}
	r := s.ordered(s.dragFrom, p)
	s.host.SetSelection(r)
	s.host.Click(r.Start.Node.Parent)
}

func (s *Session) hover(col, row int) {
	if el := s.elementAt(col, row); el != nil {
		s.host.MoveMouse(el)
		return
	}
	if p, ok := s.host.HitTest(col, row); ok && p.Node.Parent != nil {
		s.host.MoveMouse(p.Node.Parent)
		return
	}
	s.host.MoveMouse(s.host.Body())
}

// ordered returns the range between two points in document order.
func (s *Session) ordered(a, b dom.Point) *dom.Range {
	body := s.host.Body()
	oa, _ := dom.TextOffset(body, a)
	ob, _ := dom.TextOffset(body, b)
	if ob < oa {
		a, b = b, a
	}
	return dom.NewRange(a.Node, a.Offset, b.Node, b.Offset)
}
