package term

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/config"
	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/editor"
	"github.com/dshills/stylus/internal/sched"
	"github.com/dshills/stylus/internal/toolbar"
	"github.com/dshills/stylus/internal/ui"
)

type fixture struct {
	screen  tcell.SimulationScreen
	s       *Session
	h       *Host
	e       *editor.Editor
	surface *html.Node
}

func newFixture(t *testing.T, content string, opts ...Option) *fixture {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(60, 20)

	doc, err := html.Parse(strings.NewReader(`<html><body><div id="editor">` + content + `</div></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	h := NewHost(doc, sched.NewVirtual(time.Unix(0, 0)), 60, 19)
	f := &fixture{screen: screen, h: h}
	f.s = NewSession(screen, h, opts...)
	f.e, err = editor.NewFromSelector(h, "#editor", editor.WithOptions(config.Default()))
	if err != nil {
		t.Fatalf("editor: %v", err)
	}
	f.surface = f.e.Elements()[0]
	return f
}

func (f *fixture) cell(col, row int) rune {
	r, _, _, _ := f.screen.GetContent(col, row) //nolint:staticcheck // GetContent is the correct API
	return r
}

func (f *fixture) mouse(col, row int, btn tcell.ButtonMask) {
	f.s.Handle(tcell.NewEventMouse(col, row, btn, tcell.ModNone))
}

func (f *fixture) click(col, row int) {
	f.mouse(col, row, tcell.Button1)
	f.mouse(col, row, tcell.ButtonNone)
}

func (f *fixture) key(k tcell.Key, r rune, mod tcell.ModMask) bool {
	return f.s.Handle(tcell.NewEventKey(k, r, mod))
}

// regionOf returns the drawn extent of el.
func (f *fixture) regionOf(t *testing.T, match func(*ui.Element) bool) region {
	t.Helper()
	f.s.Draw()
	for _, r := range f.s.regions {
		if match(r.el) {
			return r
		}
	}
	t.Fatal("element not drawn")
	return region{}
}

func TestDraw_Text(t *testing.T) {
	f := newFixture(t, `<p>hello</p><h2>Title</h2>`)
	f.s.SetStatus("ready")
	f.s.Draw()

	for i, want := range "hello" {
		if got := f.cell(OriginCol+i, OriginRow); got != want {
			t.Errorf("cell(%d, %d) = %q, want %q", OriginCol+i, OriginRow, got, want)
		}
	}
	if got := f.cell(OriginCol, OriginRow+1); got != 'T' {
		t.Errorf("heading cell = %q", got)
	}
	if got := f.cell(1, 19); got != 's' {
		t.Errorf("status line cell = %q, want title", got)
	}
}

func TestMouse_SelectAndFormat(t *testing.T) {
	f := newFixture(t, `<p>hello world</p>`)

	f.mouse(OriginCol+6, OriginRow, tcell.Button1)
	f.mouse(OriginCol+11, OriginRow, tcell.Button1)
	f.mouse(OriginCol+11, OriginRow, tcell.ButtonNone)
	if got := f.h.Selection().String(); got != "world" {
		t.Fatalf("selection = %q", got)
	}
	f.h.Advance(0)
	if f.e.Toolbar().State() != toolbar.ActionsVisible {
		t.Fatalf("toolbar state = %v", f.e.Toolbar().State())
	}

	bold := f.regionOf(t, func(el *ui.Element) bool { return el.Name == "bold" })
	if got := f.cell(bold.col0+1, bold.row); got != 'B' {
		t.Errorf("bold label cell = %q", got)
	}
	f.click(bold.col0, bold.row)
	if got := dom.InnerHTML(f.surface); got != `<p>hello <b>world</b></p>` {
		t.Errorf("markup = %s", got)
	}
}

func TestMouse_ClickOutsideClears(t *testing.T) {
	f := newFixture(t, `<p>hello</p>`)
	f.h.Select(f.surface, 0, 5)
	f.click(40, 15)
	if f.h.Selection() != nil {
		t.Errorf("selection = %q after clicking empty space", f.h.Selection().String())
	}
}

func TestKeys_Typing(t *testing.T) {
	f := newFixture(t, `<p>hello world</p>`)
	f.click(30, OriginRow)
	if r := f.h.Selection(); r == nil || !r.Collapsed() {
		t.Fatal("click past the line end did not place a caret")
	}

	f.key(tcell.KeyRune, '!', tcell.ModNone)
	f.key(tcell.KeyRune, ' ', tcell.ModNone)
	if got := dom.InnerHTML(f.surface); got != `<p>hello world! </p>` {
		t.Errorf("markup after typing = %s", got)
	}
	f.key(tcell.KeyBackspace2, 0, tcell.ModNone)
	f.key(tcell.KeyBackspace2, 0, tcell.ModNone)
	if got := dom.InnerHTML(f.surface); got != `<p>hello world</p>` {
		t.Errorf("markup after backspace = %s", got)
	}
}

func TestKeys_Arrows(t *testing.T) {
	f := newFixture(t, `<p>hello</p>`)
	f.h.Select(f.surface, 2, 2)

	f.key(tcell.KeyRight, 0, tcell.ModShift)
	f.key(tcell.KeyRight, 0, tcell.ModShift)
	if got := f.h.Selection().String(); got != "ll" {
		t.Errorf("shift selection = %q, want ll", got)
	}

	f.key(tcell.KeyLeft, 0, tcell.ModNone)
	r := f.h.Selection()
	if off, _ := dom.TextOffset(f.surface, r.Start); !r.Collapsed() || off != 2 {
		t.Errorf("left collapsed to %d (collapsed %v), want 2", off, r.Collapsed())
	}

	f.key(tcell.KeyEnd, 0, tcell.ModNone)
	if off, _ := dom.TextOffset(f.surface, f.h.Selection().Start); off != 5 {
		t.Errorf("end moved to %d, want 5", off)
	}
}

func TestKeys_QuitAndShortcuts(t *testing.T) {
	saves := 0
	f := newFixture(t, `<p>hello</p>`, WithShortcut(tcell.KeyCtrlS, func() { saves++ }))

	if f.key(tcell.KeyCtrlS, 0, tcell.ModCtrl) {
		t.Error("Ctrl-S quit")
	}
	if saves != 1 {
		t.Errorf("saves = %d", saves)
	}
	if !f.key(tcell.KeyCtrlQ, 0, tcell.ModCtrl) {
		t.Error("Ctrl-Q did not quit")
	}
}

func TestKeys_QuitCheck(t *testing.T) {
	asked := 0
	f := newFixture(t, `<p>hello</p>`, WithQuitCheck(func() bool {
		asked++
		return asked > 1
	}))
	if f.key(tcell.KeyCtrlQ, 0, tcell.ModCtrl) {
		t.Error("first Ctrl-Q quit despite the check")
	}
	if !f.key(tcell.KeyCtrlQ, 0, tcell.ModCtrl) {
		t.Error("second Ctrl-Q did not quit")
	}
}

func TestPreview_HoverAndEdit(t *testing.T) {
	f := newFixture(t, `<p>see <a href="http://a.com">link</a></p>`)

	f.mouse(OriginCol+5, OriginRow, tcell.ButtonNone)
	f.h.Advance(0)
	inner := f.e.Preview().Element().Children[0]
	if !f.e.Preview().Element().Visible() {
		t.Fatalf("preview state = %v", f.e.Preview().State())
	}

	r := f.regionOf(t, func(el *ui.Element) bool { return el == inner })
	f.click(r.col0, r.row)
	f.h.Advance(0)
	if !f.e.LinkForm().Visible() {
		t.Fatal("link form not opened from the preview")
	}

	f.key(tcell.KeyRune, 'x', tcell.ModNone)
	if got := f.e.LinkForm().Input().Value; got != "http://a.comx" {
		t.Errorf("input = %q", got)
	}
	f.s.Draw()
	f.regionOf(t, func(el *ui.Element) bool { return el == f.e.LinkForm().Input() })
}

func TestResize(t *testing.T) {
	f := newFixture(t, `<p>hello</p>`)
	f.screen.SetSize(40, 10)
	f.s.Handle(tcell.NewEventResize(40, 10))
	vp := f.h.Viewport()
	if vp.Width != 40*CellWidth || vp.Height != 9*CellHeight {
		t.Errorf("viewport = %vx%v", vp.Width, vp.Height)
	}
}

func TestMeasure(t *testing.T) {
	h := NewHost(&html.Node{Type: html.DocumentNode}, sched.NewVirtual(time.Unix(0, 0)), 80, 24)
	actions := ui.New(ui.KindActions, "actions")
	b := ui.New(ui.KindButton, "bold")
	b.Label = "B"
	h1 := ui.New(ui.KindButton, "header1")
	h1.Label = "H1"
	hidden := ui.New(ui.KindButton, "hidden")
	hidden.Label = "xyz"
	hidden.Hide()
	actions.Append(b, h1, hidden)

	tests := []struct {
		name string
		el   *ui.Element
		want int
	}{
		{"buttons", actions, 7},
		{"input", ui.New(ui.KindInput, "url"), InputWidth},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Measure(tt.el)
			if int(got.Width) != tt.want*CellWidth {
				t.Errorf("Measure width = %v, want %d cells", got.Width, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	doc, err := html.Parse(strings.NewReader("<html><body><div id=\"x\">\n  <p>hello\n   world</p>\n  <p><b>a</b> <i>b</i></p>\n  <pre>a\n  b</pre>\n</div></body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	div := dom.QueryAll(doc, "#x")[0]
	Normalize(div)
	want := "<p>hello world</p><p><b>a</b> <i>b</i></p><pre>a\n  b</pre>"
	if got := dom.InnerHTML(div); got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestTheme(t *testing.T) {
	th := DefaultTheme()
	if len(th.Roles()) != 9 {
		t.Errorf("roles = %v", th.Roles())
	}
	if err := th.Set("link", "#ff0000"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := th.Color(RoleLink); got != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("link colour = %v", got)
	}
	if err := th.Set("nope", "#000000"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("Set(unknown) err = %v", err)
	}
	if err := th.Set("text", "red"); err == nil {
		t.Error("Set accepted a malformed colour")
	}
	if err := th.Apply(map[string]string{"quote": "#00ff00"}); err != nil {
		t.Errorf("Apply: %v", err)
	}
}
