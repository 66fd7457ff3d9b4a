package preview

import (
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/event"
	"github.com/dshills/stylus/internal/host/memhost"
	"github.com/dshills/stylus/internal/ui"
)

const page = `<html><body><div id="editor" data-medium-element="true" contenteditable="true">` +
	`<p>see <a id="ex" href="http://example.com">example</a> and <a id="other" href="http://other.org">other</a></p>` +
	`<p><a id="frag" href="#top">top</a> <a id="empty" href="">empty</a> <a id="off" href="http://off.net" data-disable-preview="true">off</a></p>` +
	`</div></body></html>`

type fixture struct {
	h      *memhost.Host
	e      *Engine
	opened []string
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	h, err := memhost.Parse(page)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f := &fixture{h: h}
	cfg := Config{
		ShowDelay: 100 * time.Millisecond,
		HideDelay: 500 * time.Millisecond,
		Offsets:   ui.Offsets{DiffTop: -10},
	}
	opts = append([]Option{WithFormOpener(func(href string) { f.opened = append(f.opened, href) })}, opts...)
	f.e = New(h, event.NewBinder(h), cfg, opts...)
	f.e.Observe(f.node(t, "#editor"))
	return f
}

func (f *fixture) node(t *testing.T, sel string) *html.Node {
	t.Helper()
	nodes := dom.QueryAll(f.h.Body(), sel)
	if len(nodes) == 0 {
		t.Fatalf("no node for %s", sel)
	}
	return nodes[0]
}

// assertIdle checks that nothing the engine scheduled or subscribed
// outlives the return to Idle.
func (f *fixture) assertIdle(t *testing.T) {
	t.Helper()
	if f.e.State() != Idle {
		t.Errorf("state = %v, want idle", f.e.State())
	}
	if f.e.Anchor() != nil {
		t.Error("anchor still tracked")
	}
	if n := f.e.LiveTasks(); n != 0 {
		t.Errorf("live tasks = %d, want 0", n)
	}
	if n := f.h.Clock().Pending(); n != 0 {
		t.Errorf("pending clock tasks = %d, want 0", n)
	}
	if n := f.h.ListenerCount(); n != 2 {
		t.Errorf("listeners = %d, want 2", n)
	}
	if f.e.Element().Visible() {
		t.Error("preview element visible")
	}
}

func TestQualifies(t *testing.T) {
	tests := []struct {
		markup string
		want   bool
	}{
		{`<a href="http://example.com">x</a>`, true},
		{`<a href="/relative">x</a>`, true},
		{`<a href="#top">x</a>`, false},
		{`<a href="#">x</a>`, false},
		{`<a href="">x</a>`, false},
		{`<a>x</a>`, false},
		{`<a href="two words">x</a>`, false},
		{`<span href="http://example.com">x</span>`, false},
	}
	for _, tt := range tests {
		nodes, err := dom.ParseFragment(tt.markup, dom.NewElement("div"))
		if err != nil {
			t.Fatalf("parse %s: %v", tt.markup, err)
		}
		if got := Qualifies(nodes[0]); got != tt.want {
			t.Errorf("Qualifies(%s) = %v, want %v", tt.markup, got, tt.want)
		}
	}
}

func TestHover_ShowsAfterDelayAndHides(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "#ex")

	f.h.MoveMouse(a)
	if f.e.State() != Tracking || f.e.Anchor() != a {
		t.Fatalf("after hover state = %v, want tracking", f.e.State())
	}
	f.h.Advance(99 * time.Millisecond)
	if f.e.State() != Tracking {
		t.Fatalf("state before delay = %v", f.e.State())
	}
	f.h.Advance(time.Millisecond)
	if f.e.State() != Visible {
		t.Fatalf("state after delay = %v, want visible", f.e.State())
	}

	el := f.e.Element()
	if !el.Visible() || !el.HasClass(ActivePreviewClass) || !el.HasClass(ui.ArrowOver.Class()) {
		t.Errorf("preview classes = %q visible = %v", el.ClassName(), el.Visible())
	}
	if got := el.Find("href").Label; got != "http://example.com" {
		t.Errorf("preview href = %q", got)
	}
	if el.Top != 130 || el.Left != 0 {
		t.Errorf("preview position = (%v, %v), want (130, 0)", el.Top, el.Left)
	}

	f.h.MoveMouse(nil)
	f.h.Advance(400 * time.Millisecond)
	if f.e.State() != Visible {
		t.Fatalf("hidden before the hide delay elapsed")
	}
	f.h.Advance(400 * time.Millisecond)
	f.assertIdle(t)
}

func TestHover_ReturnBeforeHideDelay(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "#ex")

	f.h.MoveMouse(a)
	f.h.Advance(100 * time.Millisecond)
	if f.e.State() != Visible {
		t.Fatalf("state after delay = %v, want visible", f.e.State())
	}

	f.h.MoveMouse(nil)
	f.h.Advance(300 * time.Millisecond)
	f.h.MoveMouse(a)
	f.h.Advance(2 * time.Second)
	if f.e.State() != Visible || f.e.Anchor() != a {
		t.Fatalf("state after returning = %v, want visible", f.e.State())
	}
	if n := f.e.LiveTasks(); n != 1 {
		t.Errorf("live tasks while visible = %d, want 1", n)
	}

	f.h.MoveMouse(nil)
	f.h.Advance(800 * time.Millisecond)
	f.assertIdle(t)
}

func TestHover_LeaveBeforeDelay(t *testing.T) {
	f := newFixture(t)
	f.h.MoveMouse(f.node(t, "#ex"))
	f.h.Advance(50 * time.Millisecond)
	f.h.MoveMouse(nil)
	f.h.Advance(50 * time.Millisecond)
	f.assertIdle(t)
}

func TestHover_PreviewKeepsAlive(t *testing.T) {
	f := newFixture(t)
	f.h.MoveMouse(f.node(t, "#ex"))
	f.h.Advance(100 * time.Millisecond)

	f.h.MoveMouse(f.e.Element())
	f.h.Advance(2 * time.Second)
	if f.e.State() != Visible {
		t.Fatalf("state while over preview = %v, want visible", f.e.State())
	}

	f.h.MoveMouse(nil)
	f.h.Advance(time.Second)
	f.assertIdle(t)
}

func TestHover_Ignored(t *testing.T) {
	tests := []struct {
		name   string
		target string
		opts   []Option
	}{
		{"fragment", "#frag", nil},
		{"empty href", "#empty", nil},
		{"not a link", "p", nil},
		{"toolbar shown", "#ex", []Option{WithToolbarShown(func() bool { return true })}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.opts...)
			f.h.MoveMouse(f.node(t, tt.target))
			f.h.Advance(time.Second)
			f.assertIdle(t)
		})
	}
}

func TestHover_DisabledPreview(t *testing.T) {
	f := newFixture(t)
	f.h.MoveMouse(f.node(t, "#off"))
	if f.e.State() != Tracking {
		t.Fatalf("state = %v, want tracking", f.e.State())
	}
	f.h.Advance(100 * time.Millisecond)
	f.assertIdle(t)
}

func TestHover_OneAnchorAtATime(t *testing.T) {
	f := newFixture(t)
	ex, other := f.node(t, "#ex"), f.node(t, "#other")

	f.h.MoveMouse(ex)
	f.h.Advance(100 * time.Millisecond)
	if f.e.State() != Visible {
		t.Fatalf("state = %v, want visible", f.e.State())
	}

	f.h.MoveMouse(other)
	if f.e.State() != Tracking || f.e.Anchor() != other {
		t.Fatalf("second hover state = %v anchor = %v", f.e.State(), f.e.Anchor())
	}
	if f.e.Element().Visible() {
		t.Error("previous preview still visible")
	}
	// surface observer, preview click, and the new anchor's two stamps
	if n := f.h.ListenerCount(); n != 4 {
		t.Errorf("listeners = %d, want 4", n)
	}
	if n := f.e.LiveTasks(); n != 1 {
		t.Errorf("live tasks = %d, want 1", n)
	}

	f.h.Advance(100 * time.Millisecond)
	if f.e.State() != Visible || f.e.Element().Find("href").Label != "http://other.org" {
		t.Errorf("state = %v href = %q", f.e.State(), f.e.Element().Find("href").Label)
	}
}

func TestHover_SameAnchorDoesNotRestart(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "#ex")
	f.h.MoveMouse(a)
	f.h.Advance(100 * time.Millisecond)

	f.e.HandleMouseOver(event.New(event.TypeMouseOver, a))
	if f.e.State() != Visible {
		t.Errorf("repeat hover changed state to %v", f.e.State())
	}
}

func TestClick_OpensForm(t *testing.T) {
	f := newFixture(t)
	f.h.MoveMouse(f.node(t, "#ex"))
	f.h.Advance(100 * time.Millisecond)

	f.h.Click(f.e.Element())
	if f.e.State() != Idle || f.e.Element().Visible() {
		t.Fatalf("preview not hidden on click: %v", f.e.State())
	}
	if got := f.h.Selection().String(); got != "example" {
		t.Errorf("selection = %q, want example", got)
	}
	if len(f.opened) != 0 {
		t.Fatal("form opened before the delay")
	}
	f.h.Advance(100 * time.Millisecond)
	if len(f.opened) != 1 || f.opened[0] != "http://example.com" {
		t.Errorf("opened = %v", f.opened)
	}
	f.assertIdle(t)
}

func TestClick_AnchorFormDisabled(t *testing.T) {
	h, err := memhost.Parse(page)
	if err != nil {
		t.Fatal(err)
	}
	opened := 0
	e := New(h, event.NewBinder(h), Config{ShowDelay: 10 * time.Millisecond, DisableAnchorForm: true},
		WithFormOpener(func(string) { opened++ }))
	e.Observe(dom.QueryAll(h.Body(), "#editor")[0])

	h.MoveMouse(dom.QueryAll(h.Body(), "#ex")[0])
	h.Advance(10 * time.Millisecond)
	h.Click(e.Element())
	h.Advance(time.Second)
	if opened != 0 || e.State() != Idle {
		t.Errorf("opened = %d state = %v", opened, e.State())
	}
}

func TestHide(t *testing.T) {
	f := newFixture(t)
	f.h.MoveMouse(f.node(t, "#ex"))
	f.h.Advance(100 * time.Millisecond)
	f.e.Hide()
	f.assertIdle(t)
}

func TestGuard(t *testing.T) {
	f := newFixture(t, WithGuard(func() bool { return false }))
	f.h.MoveMouse(f.node(t, "#ex"))
	f.h.Advance(time.Second)
	if f.e.State() != Tracking {
		t.Errorf("guarded check ran: state = %v", f.e.State())
	}
}

func TestDestroy(t *testing.T) {
	f := newFixture(t)
	f.h.MoveMouse(f.node(t, "#ex"))
	f.e.Destroy()
	f.h.Advance(time.Second)

	if n := f.h.ListenerCount(); n != 0 {
		t.Errorf("listeners after Destroy = %d, want 0", n)
	}
	if len(f.h.Mounted()) != 0 {
		t.Error("preview still mounted")
	}
	if f.e.State() != Idle {
		t.Errorf("state = %v", f.e.State())
	}
}
