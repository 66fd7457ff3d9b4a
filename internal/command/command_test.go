package command

import (
	"errors"
	"testing"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/host"
	"github.com/dshills/stylus/internal/host/memhost"
	"github.com/dshills/stylus/internal/ui"
)

type fakeEnv struct {
	h       host.Host
	actions []string
}

func (e *fakeEnv) Host() host.Host          { return e.h }
func (e *fakeEnv) ExecAction(action string) { e.actions = append(e.actions, action) }

type plainCommand struct{ name string }

func (c *plainCommand) Name() string { return c.name }

type hidingCommand struct {
	plainCommand
	hidden int
	hooks  []string
	err    error
}

func (c *hidingCommand) OnHide() { c.hidden++ }

func (c *hidingCommand) Hook(name string, args ...any) error {
	c.hooks = append(c.hooks, name)
	return c.err
}

type checkingCommand struct {
	plainCommand
	seen []string
}

func (c *checkingCommand) CheckState(node *html.Node) { c.seen = append(c.seen, dom.Tag(node)) }

type buttonCommand struct {
	plainCommand
	el *ui.Element
}

func (c *buttonCommand) Button() *ui.Element { return c.el }

type narrowedCommand struct {
	hidingCommand
}

func (c *narrowedCommand) Capabilities() Capability { return CapHook }

type panicCommand struct{ plainCommand }

func (c *panicCommand) OnHide() { panic("boom") }

func names(entries []*Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestRegister_Resolution(t *testing.T) {
	custom := &buttonCommand{plainCommand{"bold"}, ui.New(ui.KindButton, "custom-bold")}
	extra := &hidingCommand{plainCommand: plainCommand{"zeta"}}
	other := &hidingCommand{plainCommand: plainCommand{"alpha"}}

	r := NewRegistry()
	err := r.Register([]string{"bold", "italic", "nosuch", "italic"}, map[string]Command{
		"bold":  custom,
		"zeta":  extra,
		"alpha": other,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got := names(r.Entries())
	want := []string{"bold", "italic", "alpha", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entries = %v, want %v", got, want)
		}
	}

	bold, _ := r.Lookup("bold")
	if bold.Command != custom || !bold.Extension || !bold.InToolbar {
		t.Errorf("bold entry = %+v, want extension in toolbar", bold)
	}
	italic, _ := r.Lookup("italic")
	if _, ok := italic.Command.(*DefaultButton); !ok || italic.Extension {
		t.Errorf("italic entry = %+v, want default button", italic)
	}
	zeta, _ := r.Lookup("zeta")
	if zeta.InToolbar {
		t.Error("unreferenced extension should not be in the toolbar")
	}

	if err := r.Register(nil, nil); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("second Register() error = %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegister_NilExtension(t *testing.T) {
	r := NewRegistry()
	err := r.Register([]string{"bold"}, map[string]Command{"bad": nil})
	if !errors.Is(err, ErrNilCommand) {
		t.Errorf("Register() error = %v, want ErrNilCommand", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestCapabilitiesOf(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want Capability
	}{
		{"plain", &plainCommand{"p"}, 0},
		{"hider", &hidingCommand{plainCommand: plainCommand{"h"}}, CapHide | CapHook},
		{"checker", &checkingCommand{plainCommand: plainCommand{"c"}}, CapCheckState},
		{"narrowed", &narrowedCommand{}, CapHook},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CapabilitiesOf(tt.cmd); got != tt.want {
				t.Errorf("CapabilitiesOf() = %v, want %v", got, tt.want)
			}
		})
	}

	b, _ := NewDefaultButton("bold", DefaultButtonOptions())
	caps := CapabilitiesOf(b)
	for _, c := range []Capability{CapButton, CapQueryState, CapToggle, CapShouldActivate, CapInit, CapClick} {
		if !caps.Has(c) {
			t.Errorf("default button missing %v", c)
		}
	}
	if caps.Has(CapForm) {
		t.Error("default button should not provide a form")
	}
	if Capability(0).String() != "none" || (CapHide | CapInit).String() != "onHide|init" {
		t.Errorf("String() = %q, %q", Capability(0).String(), (CapHide | CapInit).String())
	}
}

func TestRender_EdgeClasses(t *testing.T) {
	r := NewRegistry()
	if err := r.Register([]string{"bold", "italic", "underline"}, nil); err != nil {
		t.Fatal(err)
	}

	for range 3 {
		buttons := r.Render()
		if len(buttons) != 3 {
			t.Fatalf("Render() returned %d buttons", len(buttons))
		}
		first, last := 0, 0
		for _, b := range buttons {
			if b.HasClass(DefaultFirstButtonClass) {
				first++
			}
			if b.HasClass(DefaultLastButtonClass) {
				last++
			}
		}
		if first != 1 || last != 1 {
			t.Fatalf("first = %d, last = %d, want 1 and 1", first, last)
		}
		if !buttons[0].HasClass(DefaultFirstButtonClass) || !buttons[2].HasClass(DefaultLastButtonClass) {
			t.Fatal("edge classes on wrong buttons")
		}
	}

	e, ok := r.EntryForButton(r.Render()[1])
	if !ok || e.Name != "italic" {
		t.Errorf("EntryForButton() = %v, %v", e, ok)
	}
}

func TestRender_SingleButton(t *testing.T) {
	r := NewRegistry(WithEdgeClasses("first", "last"))
	r.Register([]string{"anchor"}, nil)
	buttons := r.Render()
	if len(buttons) != 1 || !buttons[0].HasClass("first") || !buttons[0].HasClass("last") {
		t.Errorf("single button classes = %q", buttons[0].ClassName())
	}
}

func TestDispatch(t *testing.T) {
	hider := &hidingCommand{plainCommand: plainCommand{"hider"}}
	checker := &checkingCommand{plainCommand: plainCommand{"checker"}}
	r := NewRegistry()
	r.Register([]string{"bold"}, map[string]Command{"hider": hider, "checker": checker})

	if err := r.Dispatch(HookHide); err != nil {
		t.Fatalf("Dispatch(onHide) error = %v", err)
	}
	if hider.hidden != 1 {
		t.Errorf("hidden = %d, want 1", hider.hidden)
	}

	p := dom.NewElement("p")
	if err := r.Dispatch(HookCheckState, p); err != nil {
		t.Fatalf("Dispatch(checkState) error = %v", err)
	}
	if len(checker.seen) != 1 || checker.seen[0] != "p" {
		t.Errorf("checkState saw %v", checker.seen)
	}
	var hookErr *HookError
	if err := r.Dispatch(HookCheckState, "not a node"); !errors.As(err, &hookErr) || !errors.Is(err, ErrHookArgs) {
		t.Errorf("Dispatch(bad args) error = %v", err)
	}

	if err := r.Dispatch("custom", 1); err != nil {
		t.Fatalf("Dispatch(custom) error = %v", err)
	}
	// hider has no checkState capability, so it received that hook through
	// its generic receiver.
	if len(hider.hooks) != 2 || hider.hooks[0] != HookCheckState || hider.hooks[1] != "custom" {
		t.Errorf("hooks = %v", hider.hooks)
	}

	hider.err = errors.New("broken")
	err := r.Dispatch("custom")
	if !errors.As(err, &hookErr) || hookErr.Command != "hider" || hookErr.Hook != "custom" {
		t.Errorf("Dispatch() error = %v, want HookError from hider", err)
	}
}

type failingCommand struct {
	plainCommand
	fail    bool
	pending error
}

func (c *failingCommand) OnHide() {
	if c.fail {
		c.pending = errors.New("hide failed")
	}
}

func (c *failingCommand) TakeErr() error {
	err := c.pending
	c.pending = nil
	return err
}

func TestDispatch_RecordedFailure(t *testing.T) {
	c := &failingCommand{plainCommand: plainCommand{"f"}}
	r := NewRegistry()
	r.Register(nil, map[string]Command{"f": c})

	c.pending = errors.New("stale")
	if err := r.Dispatch(HookHide); err != nil {
		t.Errorf("Dispatch reported a failure from an earlier call: %v", err)
	}

	c.fail = true
	var hookErr *HookError
	if err := r.Dispatch(HookHide); !errors.As(err, &hookErr) || hookErr.Command != "f" || hookErr.Hook != HookHide {
		t.Errorf("Dispatch(onHide) = %v, want HookError from f", err)
	}
	if err := r.Hide(); !errors.As(err, &hookErr) || hookErr.Command != "f" {
		t.Errorf("Hide() = %v, want HookError from f", err)
	}
	c.fail = false
	if err := r.Hide(); err != nil {
		t.Errorf("Hide() after recovery = %v", err)
	}
}

func TestDispatch_PanicPropagates(t *testing.T) {
	r := NewRegistry()
	r.Register(nil, map[string]Command{"p": &panicCommand{plainCommand{"p"}}})
	defer func() {
		if recover() == nil {
			t.Error("panic in hook was swallowed")
		}
	}()
	r.Dispatch(HookHide)
}

func TestHideAndDeactivateAll(t *testing.T) {
	hider := &hidingCommand{plainCommand: plainCommand{"hider"}}
	r := NewRegistry()
	r.Register([]string{"bold", "italic"}, map[string]Command{"hider": hider})
	r.Render()

	bold, _ := r.Lookup("bold")
	bold.Command.(Toggler).Activate()
	r.Hide()
	r.DeactivateAll()
	if hider.hidden != 1 {
		t.Errorf("hidden = %d, want 1", hider.hidden)
	}
	if bold.Command.(Toggler).IsActive() {
		t.Error("bold still active after DeactivateAll")
	}
}

func TestDefaultButton(t *testing.T) {
	opts := ButtonOptions{FirstHeader: "h2", SecondHeader: "h5", ActiveClass: "on"}
	h1, _ := NewDefaultButton("header1", opts)
	if h1.Action() != "append-h2" || !h1.ShouldActivate(dom.NewElement("h2")) {
		t.Errorf("header1 action = %q", h1.Action())
	}
	if _, ok := NewDefaultButton("nosuch", opts); ok {
		t.Error("unknown button should not be created")
	}

	center, _ := NewDefaultButton("justifyCenter", opts)
	p := dom.NewElement("p")
	dom.SetStyleProp(p, "text-align", "center")
	if !center.ShouldActivate(p) {
		t.Error("justifyCenter should activate on centred paragraph")
	}
	bold, _ := NewDefaultButton("bold", opts)
	span := dom.NewElement("span")
	dom.SetStyleProp(span, "font-weight", "bold")
	if !bold.ShouldActivate(span) || !bold.ShouldActivate(dom.NewElement("strong")) || bold.ShouldActivate(p) {
		t.Error("bold ShouldActivate mismatch")
	}

	bold.Activate()
	if !bold.IsActive() || !bold.Button().HasClass("on") {
		t.Error("Activate() did not set the active class")
	}
	bold.Deactivate()
	if bold.IsActive() {
		t.Error("Deactivate() left the button active")
	}
	if v, _ := bold.Button().Attr("data-element"); v != "b" {
		t.Errorf("data-element = %q", v)
	}
}

func TestDefaultButton_QueryStateAndClick(t *testing.T) {
	h, err := memhost.Parse(`<div contenteditable="true"><p><b>bold</b> text</p></div>`)
	if err != nil {
		t.Fatal(err)
	}
	root := dom.QueryAll(h.Document(), "div")[0]
	env := &fakeEnv{h: h}

	r := NewRegistry()
	r.Register([]string{"bold", "quote"}, nil)
	if err := r.Init(env); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	h.Select(root, 0, 2)
	bold, _ := r.Lookup("bold")
	if active, ok := bold.Command.(StateQuerier).QueryState(); !ok || !active {
		t.Errorf("bold QueryState() = %v, %v", active, ok)
	}
	quote, _ := r.Lookup("quote")
	if _, ok := quote.Command.(StateQuerier).QueryState(); ok {
		t.Error("quote should not use the native query")
	}

	quote.Command.(Clicker).HandleClick()
	if len(env.actions) != 1 || env.actions[0] != "append-blockquote" {
		t.Errorf("actions = %v", env.actions)
	}
}
