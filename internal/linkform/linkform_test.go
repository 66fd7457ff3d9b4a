package linkform

import (
	"testing"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/command"
	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/event"
	"github.com/dshills/stylus/internal/host/memhost"
	"github.com/dshills/stylus/internal/selection"
	"github.com/dshills/stylus/internal/toolbar"
)

type fixture struct {
	h    *memhost.Host
	root *html.Node
	tb   *toolbar.Machine
	c    *Controller
}

func newFixture(t *testing.T, content string, cfg Config) *fixture {
	t.Helper()
	h, err := memhost.Parse(`<html><body><div id="editor" data-medium-element="true" contenteditable="true">` + content + `</div></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f := &fixture{h: h, root: dom.QueryAll(h.Body(), "#editor")[0]}

	reg := command.NewRegistry()
	if err := reg.Register([]string{"bold", "anchor"}, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	sel := selection.New(h, f.root)
	f.tb = toolbar.New(h, sel, reg, toolbar.Config{AllowMultiParagraph: true})
	f.c, err = New(h, sel, f.tb, event.NewBinder(h), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func (f *fixture) open(t *testing.T, text string) {
	t.Helper()
	if !f.h.SelectText(f.root, text) {
		t.Fatalf("text %q not found", text)
	}
	if !f.c.Open("") {
		t.Fatal("Open returned false")
	}
}

func TestHasScheme(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://a.com", true},
		{"HTTPS://a.com", true},
		{"ftp://a.com", true},
		{"ftps://a.com", true},
		{"rtmp://a.com", true},
		{"rtmpt://a.com", true},
		{"mailto:me@a.com", true},
		{"MailTo:me@a.com", true},
		{"a.com", false},
		{"xhttp://a.com", false},
		{"javascript:alert(1)", false},
		{"see mailto:me@a.com", false},
	}
	for _, tt := range tests {
		if got := HasScheme(tt.in); got != tt.want {
			t.Errorf("HasScheme(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"test.com", "http://test.com/"},
		{"mailto:test.com", "mailto:test.com"},
		{"http://test.com", "http://test.com/"},
		{"HTTPS://Example.COM/Path", "https://example.com/Path"},
		{"ftp://files.org/pub", "ftp://files.org/pub"},
		{"rtmpt://stream.tv/live", "rtmpt://stream.tv/live"},
		{"www.x.org/a?b=1", "http://www.x.org/a?b=1"},
		{"x.org?q=1", "http://x.org/?q=1"},
		{"  padded.com  ", "http://padded.com/"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpen(t *testing.T) {
	f := newFixture(t, `<p>hello world</p>`, Config{})
	f.open(t, "world")

	if !f.c.Visible() || !f.tb.KeepAlive() {
		t.Fatalf("form visible=%v keepAlive=%v", f.c.Visible(), f.tb.KeepAlive())
	}
	if f.tb.Actions().Visible() {
		t.Error("actions visible alongside the form")
	}
	snap, ok := f.c.Pending()
	if !ok || snap != (selection.Snapshot{Surface: 0, Start: 6, End: 11}) {
		t.Errorf("pending = %+v, %v", snap, ok)
	}
	if f.h.Focused() != f.c.Input() {
		t.Error("input not focused")
	}
}

func TestOpen_Prefill(t *testing.T) {
	f := newFixture(t, `<p>hello world</p>`, Config{})
	f.h.SelectText(f.root, "hello")
	f.c.Open("http://prefilled.com")
	if got := f.c.Input().Value; got != "http://prefilled.com" {
		t.Errorf("input = %q", got)
	}
}

func TestOpen_Disabled(t *testing.T) {
	f := newFixture(t, `<p>hello</p>`, Config{Disabled: true})
	f.h.SelectText(f.root, "hello")
	if f.c.Open("") {
		t.Error("Open succeeded with the form disabled")
	}
	if f.tb.State() != toolbar.Hidden {
		t.Errorf("state = %v, want hidden", f.tb.State())
	}
}

func TestCommit_RestoresAndLinks(t *testing.T) {
	f := newFixture(t, `<p>hello world</p>`, Config{CheckLinkFormat: true})
	f.open(t, "world")
	f.h.Select(f.root, 0, 0)

	if !f.c.Commit("test.com", false, "") {
		t.Fatal("Commit returned false")
	}
	f.h.Advance(0)

	if got := dom.InnerHTML(f.root); got != `<p>hello <a href="http://test.com/">world</a></p>` {
		t.Errorf("markup = %s", got)
	}
	if f.tb.State() != toolbar.ActionsVisible || f.tb.KeepAlive() {
		t.Errorf("state = %v keepAlive = %v, want actions", f.tb.State(), f.tb.KeepAlive())
	}
	if f.c.Input().Value != "" {
		t.Errorf("input not cleared: %q", f.c.Input().Value)
	}
	if _, ok := f.c.Pending(); ok {
		t.Error("pending selection not cleared")
	}
}

func TestCommit_RawWithoutFormatCheck(t *testing.T) {
	f := newFixture(t, `<p>hello world</p>`, Config{})
	f.open(t, "hello")
	f.c.Commit("test.com", false, "")
	if got := dom.InnerHTML(f.root); got != `<p><a href="test.com">hello</a> world</p>` {
		t.Errorf("markup = %s", got)
	}
}

func TestCommit_EmptyAborts(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		f := newFixture(t, `<p>hello world</p>`, Config{})
		f.open(t, "world")
		if f.c.Commit(raw, true, "btn") {
			t.Errorf("Commit(%q) returned true", raw)
		}
		f.h.Advance(0)
		if n := f.h.CallCount("createLink"); n != 0 {
			t.Errorf("Commit(%q) called createLink %d times", raw, n)
		}
		if f.tb.State() != toolbar.ActionsVisible {
			t.Errorf("Commit(%q) state = %v, want actions", raw, f.tb.State())
		}
		if got := dom.InnerHTML(f.root); got != `<p>hello world</p>` {
			t.Errorf("Commit(%q) changed markup: %s", raw, got)
		}
	}
}

func TestCommit_TargetAndButtonClass(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		newTab     bool
		class      string
		wantTarget bool
		wantInputs int
	}{
		{"plain", Config{}, false, "", false, 0},
		{"new tab", Config{}, true, "", true, 1},
		{"global target blank", Config{TargetBlank: true}, false, "", true, 1},
		{"button class", Config{}, false, "btn btn-primary", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, `<p>hello world</p>`, tt.cfg)
			inputs := 0
			f.h.Listen(f.root, event.TypeInput, func(*event.Event) { inputs++ }, false)

			f.open(t, "world")
			f.c.Commit("http://x.com", tt.newTab, tt.class)

			a := dom.ElementsByTag(f.root, "a")[0]
			target, _ := dom.Attr(a, "target")
			if (target == "_blank") != tt.wantTarget {
				t.Errorf("target = %q, want blank %v", target, tt.wantTarget)
			}
			if tt.class != "" && (!dom.HasClass(a, "btn") || !dom.HasClass(a, "btn-primary")) {
				t.Errorf("classes = %v", dom.Classes(a))
			}
			if inputs != tt.wantInputs {
				t.Errorf("input events = %d, want %d", inputs, tt.wantInputs)
			}
		})
	}
}

func TestSubmit_UsesCheckboxes(t *testing.T) {
	f := newFixture(t, `<p>hello world</p>`, Config{AnchorTarget: true, AnchorButton: true, AnchorButtonClass: "btn", CheckboxLabel: "Open in new window"})
	if f.c.TargetCheckbox() == nil || f.c.ButtonCheckbox() == nil {
		t.Fatal("checkboxes missing")
	}
	if f.c.TargetCheckbox().Label != "Open in new window" {
		t.Errorf("checkbox label = %q", f.c.TargetCheckbox().Label)
	}
	f.open(t, "world")
	f.c.Input().Value = "http://x.com"
	f.c.TargetCheckbox().Checked = true
	f.c.ButtonCheckbox().Checked = true
	f.c.Submit()

	a := dom.ElementsByTag(f.root, "a")[0]
	if v, _ := dom.Attr(a, "target"); v != "_blank" || !dom.HasClass(a, "btn") {
		t.Errorf("anchor = %s", dom.OuterHTML(a))
	}
}

func TestKeyboard(t *testing.T) {
	t.Run("enter commits", func(t *testing.T) {
		f := newFixture(t, `<p>hello world</p>`, Config{})
		f.open(t, "world")
		f.h.Type("x.org")
		f.h.Key(event.KeyEnter)
		if got := dom.InnerHTML(f.root); got != `<p>hello <a href="x.org">world</a></p>` {
			t.Errorf("markup = %s", got)
		}
	})

	t.Run("escape cancels", func(t *testing.T) {
		f := newFixture(t, `<p>hello world</p>`, Config{})
		f.open(t, "world")
		f.h.Type("x.org")
		f.h.Select(f.root, 0, 0)
		f.h.Key(event.KeyEscape)
		f.h.Advance(0)

		if len(dom.ElementsByTag(f.root, "a")) != 0 {
			t.Error("escape created a link")
		}
		if got := f.h.Selection().String(); got != "world" {
			t.Errorf("selection = %q, want world restored", got)
		}
		if f.tb.State() != toolbar.ActionsVisible || f.c.Input().Value != "" {
			t.Errorf("state = %v input = %q", f.tb.State(), f.c.Input().Value)
		}
	})
}

func TestTrigger(t *testing.T) {
	f := newFixture(t, `<p>go <a href="x">here</a> now</p>`, Config{})

	f.h.SelectText(f.root, "go")
	f.c.Trigger()
	if !f.c.Visible() {
		t.Fatal("Trigger did not open the form")
	}
	f.c.Trigger()
	f.h.Advance(0)
	if f.c.Visible() || f.tb.State() != toolbar.ActionsVisible {
		t.Errorf("second Trigger left state %v", f.tb.State())
	}

	f.h.SelectText(f.root, "here")
	f.c.Trigger()
	if got := dom.InnerHTML(f.root); got != `<p>go here now</p>` {
		t.Errorf("Trigger inside link markup = %s", got)
	}
}

func TestOutsideClick(t *testing.T) {
	f := newFixture(t, `<p>hello world</p>`, Config{})
	f.open(t, "world")

	f.h.Click(f.c.Form())
	if !f.c.Visible() || !f.tb.KeepAlive() {
		t.Fatal("click inside the form closed it")
	}

	f.h.Click(f.root.FirstChild)
	f.h.Advance(0)
	if f.c.Visible() {
		t.Error("click outside left the form open")
	}
	if _, ok := f.c.Pending(); ok {
		t.Error("saved selection kept after the form closed")
	}
	if f.tb.State() != toolbar.ActionsVisible {
		t.Errorf("state = %v, want actions", f.tb.State())
	}
}

func TestAnchorHelpers(t *testing.T) {
	body := dom.NewElement("p")
	if err := dom.SetInnerHTML(body, `<a href="1">one</a> and <b><a href="2">two</a></b>`); err != nil {
		t.Fatal(err)
	}
	SetTargetBlank(body)
	AddButtonClass(body, "btn  big")
	for _, a := range dom.ElementsByTag(body, "a") {
		if v, _ := dom.Attr(a, "target"); v != "_blank" {
			t.Errorf("%s missing target", dom.OuterHTML(a))
		}
		if !dom.HasClass(a, "btn") || !dom.HasClass(a, "big") {
			t.Errorf("%s missing classes", dom.OuterHTML(a))
		}
	}

	single := dom.ElementsByTag(body, "a")[0]
	AddButtonClass(single, "solo")
	if !dom.HasClass(single, "solo") || dom.HasClass(dom.ElementsByTag(body, "a")[1], "solo") {
		t.Error("class applied beyond the anchor itself")
	}
	SetTargetBlank(nil)
}

func TestDestroy(t *testing.T) {
	f := newFixture(t, `<p>hello</p>`, Config{})
	if f.h.ListenerCount() == 0 {
		t.Fatal("no listeners bound")
	}
	f.c.Destroy()
	if n := f.h.ListenerCount(); n != 0 {
		t.Errorf("listeners after Destroy = %d", n)
	}
}
