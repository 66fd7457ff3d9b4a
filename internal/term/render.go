package term

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/ui"
)

// region is the screen extent of a drawn engine element.
type region struct {
	el         *ui.Element
	row        int
	col0, col1 int
}

// Draw redraws the whole screen.
func (s *Session) Draw() {
	cols, rows := s.screen.Size()
	s.screen.Fill(' ', s.theme.Base())
	s.regions = s.regions[:0]

	s.drawText(cols, rows-1)
	for _, el := range s.host.Mounted() {
		if el.Visible() {
			s.drawElement(el, cols, rows-1)
		}
	}
	s.drawStatus(cols, rows-1)
	s.placeCursor()
	s.screen.Show()
}

func (s *Session) drawText(cols, rows int) {
	body := s.host.Body()
	selStart, selEnd := -1, -1
	if r := s.host.Selection(); r != nil && !r.Collapsed() {
		a, ok1 := dom.TextOffset(body, r.Start)
		b, ok2 := dom.TextOffset(body, r.End)
		if ok1 && ok2 {
			selStart, selEnd = min(a, b), max(a, b)
		}
	}
	selBg := s.theme.SelectionColor()
	vp := s.host.Viewport()

	pos := 0
	for _, box := range s.host.TextBoxes(body) {
		style := s.textStyle(box.Node)
		col, row := toCell(box.X-vp.ScrollX, box.Y-vp.ScrollY)
		rest, state := box.Node.Data, -1
		for rest != "" {
			var cluster string
			cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
			runes := []rune(cluster)
			st := style
			if pos >= selStart && pos < selEnd {
				st = st.Background(selBg)
			}
			if row >= 0 && row < rows && col >= 0 && col < cols {
				main := runes[0]
				if unicode.IsControl(main) {
					main = ' '
				}
				s.screen.SetContent(col, row, main, runes[1:], st)
			}
			col += len(runes)
			pos += len(runes)
		}
	}
}

// textStyle derives the style of a text node from its ancestors. The
// innermost colour wins; attributes accumulate.
func (s *Session) textStyle(n *html.Node) tcell.Style {
	st := s.theme.Base()
	colored := false
	color := func(role string) {
		if !colored {
			st = st.Foreground(s.theme.Color(role))
			colored = true
		}
	}
	for p := n.Parent; dom.IsElement(p); p = p.Parent {
		switch tag := dom.Tag(p); tag {
		case "body", "html":
			return st
		case "b", "strong":
			st = st.Bold(true)
		case "i", "em":
			st = st.Italic(true)
		case "u":
			st = st.Underline(true)
		case "s", "strike", "del":
			st = st.StrikeThrough(true)
		case "sup", "sub":
			st = st.Dim(true)
		case "a":
			color(RoleLink)
			st = st.Underline(true)
		case "blockquote":
			color(RoleQuote)
			st = st.Italic(true)
		case "pre", "code":
			color(RoleCode)
		default:
			if dom.IsHeading(tag) {
				color(RoleHeading)
				st = st.Bold(true)
			}
		}
	}
	return st
}

// drawElement draws a mounted tree on one row at its position.
func (s *Session) drawElement(el *ui.Element, cols, rows int) {
	vp := s.host.Viewport()
	col, row := toCell(el.Left-vp.ScrollX, el.Top-vp.ScrollY)
	if row < 0 || row >= rows {
		return
	}
	s.drawRow(el, max(col, 0), row, cols)
}

func (s *Session) drawRow(el *ui.Element, col, row, cols int) int {
	start := col
	style := s.theme.Toolbar()
	if el.HasClass(s.activeClass) {
		style = s.theme.Active()
	}
	switch el.Kind {
	case ui.KindButton, ui.KindLink:
		col = s.put(col, row, cols, " "+el.Label+" ", style)
	case ui.KindCheckbox:
		mark := "[ ] "
		if el.Checked {
			mark = "[x] "
		}
		col = s.put(col, row, cols, mark+el.Label, style)
	case ui.KindInput:
		text := el.Value
		if text == "" {
			text = el.Placeholder
			style = style.Dim(true)
		}
		end := start + width(el)
		col = s.put(col, row, cols, text, style.Underline(true))
		for ; col < end && col < cols; col++ {
			s.screen.SetContent(col, row, ' ', nil, style.Underline(true))
		}
	case ui.KindText:
		col = s.put(col, row, cols, el.Label, style)
	default:
		s.regions = append(s.regions, region{el: el, row: row, col0: start, col1: start + width(el)})
		for _, c := range el.Children {
			if !c.Hidden {
				col = s.drawRow(c, col, row, cols)
			}
		}
		return col
	}
	s.regions = append(s.regions, region{el: el, row: row, col0: start, col1: col})
	return col
}

// put draws str from col and returns the column after it.
func (s *Session) put(col, row, cols int, str string, style tcell.Style) int {
	state := -1
	for str != "" {
		var cluster string
		var w int
		cluster, str, w, state = uniseg.FirstGraphemeClusterInString(str, state)
		if col >= 0 && col+w <= cols {
			runes := []rune(cluster)
			s.screen.SetContent(col, row, runes[0], runes[1:], style)
		}
		col += w
	}
	return col
}

func (s *Session) drawStatus(cols, row int) {
	style := s.theme.Status()
	for c := range cols {
		s.screen.SetContent(c, row, ' ', nil, style)
	}
	col := s.put(1, row, cols, s.title, style.Bold(true))
	if s.status != "" {
		col = s.put(col+2, row, cols, s.status, style)
	}
	hint := "^S save  ^Q quit"
	if w := uniseg.StringWidth(hint); cols-w-1 > col+2 {
		s.put(cols-w-1, row, cols, hint, style.Dim(true))
	}
}

// placeCursor shows the cursor at the end of a focused input or at a
// collapsed caret.
func (s *Session) placeCursor() {
	if el, ok := s.host.Focused().(*ui.Element); ok && el.Kind == ui.KindInput {
		for _, r := range s.regions {
			if r.el == el {
				s.screen.ShowCursor(r.col0+uniseg.StringWidth(el.Value), r.row)
				return
			}
		}
	}
	r := s.host.Selection()
	if r == nil || !r.Collapsed() {
		s.screen.HideCursor()
		return
	}
	rect := s.host.RangeRect(r)
	col, row := toCell(rect.Left, rect.Top)
	s.screen.ShowCursor(col, row)
}

// elementAt returns the innermost engine element drawn at a cell.
func (s *Session) elementAt(col, row int) *ui.Element {
	for i := len(s.regions) - 1; i >= 0; i-- {
		r := s.regions[i]
		if r.row == row && col >= r.col0 && col < r.col1 {
			return r.el
		}
	}
	return nil
}
