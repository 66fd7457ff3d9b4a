package lua

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/command"
	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/host"
	"github.com/dshills/stylus/internal/host/memhost"
	"github.com/dshills/stylus/internal/logging"
)

type testEnv struct {
	h       *memhost.Host
	actions []string
}

func (e *testEnv) Host() host.Host          { return e.h }
func (e *testEnv) ExecAction(action string) { e.actions = append(e.actions, action) }

func newEnv(t *testing.T, content string) *testEnv {
	t.Helper()
	h, err := memhost.Parse(`<html><body><div id="editor" data-medium-element="true" contenteditable="true">` + content + `</div></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return &testEnv{h: h}
}

func (e *testEnv) root() *html.Node { return dom.QueryAll(e.h.Body(), "#editor")[0] }

func load(t *testing.T, name, src string, opts ...Option) *Extension {
	t.Helper()
	ext, err := LoadString(name, src, opts...)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	t.Cleanup(ext.Close)
	return ext
}

const highlight = `
active = false
checked = {}

function getButton()
  return { label = "H", aria = "highlight", action = "highlight", tag = "mark" }
end

function checkState(node)
  table.insert(checked, node.tag)
  if node.tag == "mark" then active = true end
end

function isActive() return active end
function activate() active = true end
function deactivate() active = false end

function onClick()
  stylus.exec("bold")
  stylus.action("refresh")
end
`

func TestCapabilities(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want command.Capability
	}{
		{"empty", ``, command.CapInit},
		{"button", `function getButton() return "X" end`, command.CapInit | command.CapButton | command.CapClick},
		{"form", `function getForm() return "type here" end`, command.CapInit | command.CapForm},
		{"query", `function queryCommandState() return nil end`, command.CapInit | command.CapQueryState},
		{"partial toggle", `function isActive() return true end`, command.CapInit},
		{"hooks", `function onHide() end function hook(name) end function shouldActivate(n) return false end`,
			command.CapInit | command.CapHide | command.CapHook | command.CapShouldActivate},
		{"highlight", highlight,
			command.CapInit | command.CapButton | command.CapClick | command.CapCheckState | command.CapToggle},
		{"not a function", `getButton = "X"`, command.CapInit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := load(t, tt.name, tt.src)
			if got := command.CapabilitiesOf(ext); got != tt.want {
				t.Errorf("CapabilitiesOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistryIntegration(t *testing.T) {
	env := newEnv(t, `<p>hello <mark>world</mark></p>`)
	ext := load(t, "highlight", highlight)

	reg := command.NewRegistry()
	if err := reg.Register([]string{"bold", "highlight"}, map[string]command.Command{"highlight": ext}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Init(env); err != nil {
		t.Fatalf("Init: %v", err)
	}
	buttons := reg.Render()
	if len(buttons) != 2 {
		t.Fatalf("buttons = %d, want 2", len(buttons))
	}
	b := buttons[1]
	tag, _ := b.Attr("data-element")
	aria, _ := b.Attr("aria-label")
	if b.Label != "H" || tag != "mark" || aria != "highlight" {
		t.Errorf("button = label %q attrs %q %q", b.Label, tag, aria)
	}
	if !b.HasClass("medium-editor-action-highlight") || !b.HasClass(command.DefaultLastButtonClass) {
		t.Errorf("button classes = %q", b.ClassName())
	}

	mark := dom.ElementsByTag(env.root(), "mark")[0]
	if err := reg.Dispatch(command.HookCheckState, mark); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !ext.IsActive() {
		t.Error("checkState did not activate")
	}
	ext.Deactivate()
	if ext.IsActive() || b.HasClass(command.DefaultActiveButtonClass) {
		t.Error("Deactivate left the command active")
	}
	ext.Activate()
	if !ext.IsActive() || !b.HasClass(command.DefaultActiveButtonClass) {
		t.Error("Activate did not mark the button")
	}
}

func TestHandleClick(t *testing.T) {
	env := newEnv(t, `<p>hello world</p>`)
	ext := load(t, "highlight", highlight)
	if err := ext.Init(env); err != nil {
		t.Fatalf("Init: %v", err)
	}
	env.h.SelectText(env.root(), "world")

	ext.HandleClick()
	if err := ext.Err(); err != nil {
		t.Fatalf("click error: %v", err)
	}
	if got := dom.InnerHTML(env.root()); got != `<p>hello <b>world</b></p>` {
		t.Errorf("markup = %s", got)
	}
	if len(env.actions) != 1 || env.actions[0] != "refresh" {
		t.Errorf("actions = %v", env.actions)
	}
}

func TestHandleClick_ButtonAction(t *testing.T) {
	env := newEnv(t, `<p>x</p>`)
	ext := load(t, "h2", `function getButton() return { label = "H2", action = "append-h2" } end`)
	ext.Init(env)
	ext.Button()
	ext.HandleClick()
	if len(env.actions) != 1 || env.actions[0] != "append-h2" {
		t.Errorf("actions = %v", env.actions)
	}
}

func TestScriptAPI(t *testing.T) {
	env := newEnv(t, `<p>hello <i class="x">world</i></p>`)
	ext := load(t, "probe", `
function hook(name, arg)
  if name == "probe" then
    local p = stylus.parent()
    result = stylus.selection() .. "|" .. p.tag .. "|" .. p.attrs.class .. "|" .. arg
  end
end`)
	ext.Init(env)
	env.h.SelectText(env.root(), "world")

	if err := ext.Hook("probe", "extra"); err != nil {
		t.Fatalf("Hook: %v", err)
	}
	if got := ext.state.L.GetGlobal("result").String(); got != "world|i|x|extra" {
		t.Errorf("result = %q", got)
	}
}

func TestScriptAPI_Detached(t *testing.T) {
	ext := load(t, "early", `function hook() stylus.exec("bold") end`)
	err := ext.Hook("anything")
	if err == nil || !strings.Contains(err.Error(), ErrDetached.Error()) {
		t.Errorf("Hook before Init = %v, want detached error", err)
	}
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf, Prefix: "test"})
	ext := load(t, "talker", `function init() stylus.log("ready", { mode = "demo" }) end`, WithLogger(log))
	if err := ext.Init(newEnv(t, `<p>x</p>`)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, "[INFO] test: ready") || !strings.Contains(line, "extension=talker") || !strings.Contains(line, "mode=demo") {
		t.Errorf("log line = %q", line)
	}
}

func TestErrors(t *testing.T) {
	t.Run("syntax", func(t *testing.T) {
		_, err := LoadString("bad", `function (`)
		var se *ScriptError
		if !errors.As(err, &se) || se.Script != "bad" || se.Func != "" {
			t.Errorf("LoadString error = %v", err)
		}
	})

	t.Run("init propagates", func(t *testing.T) {
		ext := load(t, "boom", `function init() error("boom") end`)
		reg := command.NewRegistry()
		reg.Register(nil, map[string]command.Command{"boom": ext})
		err := reg.Init(newEnv(t, `<p>x</p>`))
		var he *command.HookError
		var se *ScriptError
		if !errors.As(err, &he) || !errors.As(err, &se) || se.Func != FnInit {
			t.Errorf("Init error = %v", err)
		}
	})

	t.Run("recorded", func(t *testing.T) {
		ext := load(t, "flaky", `function onHide() error("nope") end`)
		ext.OnHide()
		if err := ext.Err(); err == nil || !strings.Contains(err.Error(), "nope") {
			t.Errorf("Err = %v", err)
		}
	})

	t.Run("dispatch propagates", func(t *testing.T) {
		ext := load(t, "bad", `
function onHide() error("boom") end
function checkState(node) error("bad state") end
`)
		env := newEnv(t, `<p>x</p>`)
		reg := command.NewRegistry()
		reg.Register(nil, map[string]command.Command{"bad": ext})

		tests := []struct {
			hook string
			args []any
			fn   string
		}{
			{command.HookHide, nil, FnOnHide},
			{command.HookCheckState, []any{env.root()}, FnCheckState},
		}
		for _, tt := range tests {
			err := reg.Dispatch(tt.hook, tt.args...)
			var he *command.HookError
			var se *ScriptError
			if !errors.As(err, &he) || he.Hook != tt.hook || !errors.As(err, &se) || se.Func != tt.fn {
				t.Errorf("Dispatch(%s) = %v, want a HookError from %s", tt.hook, err, tt.fn)
			}
		}
		if ext.TakeErr() != nil {
			t.Error("failure left pending after dispatch")
		}
		if ext.Err() == nil {
			t.Error("Err cleared by dispatch")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		ext := load(t, "spin", `function hook() while true do end end`, WithCallTimeout(20*time.Millisecond))
		start := time.Now()
		if err := ext.Hook("x"); err == nil {
			t.Error("runaway hook returned nil")
		}
		if time.Since(start) > 5*time.Second {
			t.Error("timeout did not stop the script")
		}
	})

	t.Run("closed", func(t *testing.T) {
		ext := load(t, "gone", `function hook() end`)
		ext.Close()
		if err := ext.Hook("x"); !errors.Is(err, ErrStateClosed) {
			t.Errorf("Hook after Close = %v", err)
		}
	})
}

func TestSandbox(t *testing.T) {
	s := NewState()
	defer s.Close()
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "io", "os", "debug"} {
		if v := s.L.GetGlobal(name); v != glua.LNil {
			t.Errorf("global %s = %v, want nil", name, v.Type())
		}
	}
	for _, name := range []string{"string", "table", "math", "pairs"} {
		if v := s.L.GetGlobal(name); v == glua.LNil {
			t.Errorf("global %s missing", name)
		}
	}
	if _, err := s.Call("missing"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(missing) = %v", err)
	}
}

func TestForm(t *testing.T) {
	ext := load(t, "note", `function getForm() return { placeholder = "Note", value = "draft" } end`)
	f := ext.Form()
	in := f.Find("input")
	if f.Name != "note" || in == nil || in.Placeholder != "Note" || in.Value != "draft" {
		t.Errorf("form = %+v input = %+v", f, in)
	}
	if ext.Form() != f {
		t.Error("Form rebuilt the panel")
	}
}

func TestQueryState(t *testing.T) {
	tests := []struct {
		src           string
		active, known bool
	}{
		{`function queryCommandState() return true end`, true, true},
		{`function queryCommandState() return false end`, false, true},
		{`function queryCommandState() return nil end`, false, false},
	}
	for _, tt := range tests {
		ext := load(t, "q", tt.src)
		active, known := ext.QueryState()
		if active != tt.active || known != tt.known {
			t.Errorf("%s: QueryState = %v, %v", tt.src, active, known)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shout.lua")
	if err := os.WriteFile(path, []byte(`function getButton() return "!" end`), 0o644); err != nil {
		t.Fatal(err)
	}
	ext, err := Load("", path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer ext.Close()
	if ext.Name() != "shout" || ext.Button().Label != "!" {
		t.Errorf("extension = %s label %q", ext, ext.Button().Label)
	}

	if _, err := Load("", filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestBridge(t *testing.T) {
	s := NewState()
	defer s.Close()

	if got := ToGo(ToLua(s.L, []string{"a", "b"})); len(got.([]any)) != 2 {
		t.Errorf("slice round trip = %v", got)
	}
	m := ToGo(ToLua(s.L, map[string]any{"n": 3, "f": 1.5, "ok": true})).(map[string]any)
	if m["n"] != int64(3) || m["f"] != 1.5 || m["ok"] != true {
		t.Errorf("map round trip = %v", m)
	}
	if ToLua(s.L, nil) != glua.LNil || NodeTable(s.L, nil) != glua.LNil {
		t.Error("nil did not convert to nil")
	}
}
