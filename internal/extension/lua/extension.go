package lua

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/command"
	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/logging"
	"github.com/dshills/stylus/internal/selection"
	"github.com/dshills/stylus/internal/ui"
)

// Script function names.
const (
	FnGetButton      = "getButton"
	FnGetForm        = "getForm"
	FnQueryState     = "queryCommandState"
	FnCheckState     = "checkState"
	FnIsActive       = "isActive"
	FnActivate       = "activate"
	FnDeactivate     = "deactivate"
	FnShouldActivate = "shouldActivate"
	FnOnHide         = "onHide"
	FnInit           = "init"
	FnOnClick        = "onClick"
	FnHook           = "hook"
)

// Option configures an Extension.
type Option func(*Extension)

// WithLogger sets the logger for script errors and stylus.log.
func WithLogger(l *logging.Logger) Option {
	return func(e *Extension) { e.log = l }
}

// WithCallTimeout bounds each script call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Extension) { e.stateOpts = append(e.stateOpts, WithTimeout(d)) }
}

// WithActiveClass sets the class marking the button active.
func WithActiveClass(class string) Option {
	return func(e *Extension) { e.activeClass = class }
}

// Extension is a toolbar command implemented by a Lua script.
type Extension struct {
	name        string
	script      string
	state       *State
	stateOpts   []StateOption
	caps        command.Capability
	env         command.Env
	log         *logging.Logger
	activeClass string

	button *ui.Element
	form   *ui.Element
	action string
	err    error
	failed error
}

// Load runs the script at path and returns it as a command named name.
// An empty name uses the file name without its extension.
func Load(name, path string, opts ...Option) (*Extension, error) {
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	e := newExtension(name, path, opts)
	if err := e.state.DoFile(path); err != nil {
		e.state.Close()
		return nil, &ScriptError{Script: e.script, Err: err}
	}
	e.detect()
	return e, nil
}

// LoadString runs src and returns it as a command named name.
func LoadString(name, src string, opts ...Option) (*Extension, error) {
	e := newExtension(name, name, opts)
	if err := e.state.DoString(src); err != nil {
		e.state.Close()
		return nil, &ScriptError{Script: e.script, Err: err}
	}
	e.detect()
	return e, nil
}

func newExtension(name, script string, opts []Option) *Extension {
	e := &Extension{
		name:        name,
		script:      script,
		log:         logging.Null(),
		activeClass: command.DefaultActiveButtonClass,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithField("extension", name)
	e.state = NewState(e.stateOpts...)
	e.state.RegisterModule("stylus", e.api())
	return e
}

// detect computes the capabilities from the functions the script defines.
// Init is always reported so the editor handle reaches the script API.
func (e *Extension) detect() {
	has := e.state.HasFunction
	caps := command.CapInit
	if has(FnGetButton) {
		caps |= command.CapButton | command.CapClick
	}
	if has(FnGetForm) {
		caps |= command.CapForm
	}
	if has(FnQueryState) {
		caps |= command.CapQueryState
	}
	if has(FnCheckState) {
		caps |= command.CapCheckState
	}
	if has(FnIsActive) && has(FnActivate) && has(FnDeactivate) {
		caps |= command.CapToggle
	}
	if has(FnShouldActivate) {
		caps |= command.CapShouldActivate
	}
	if has(FnOnHide) {
		caps |= command.CapHide
	}
	if has(FnOnClick) {
		caps |= command.CapClick
	}
	if has(FnHook) {
		caps |= command.CapHook
	}
	e.caps = caps
}

// Name implements command.Command.
func (e *Extension) Name() string { return e.name }

// Capabilities implements command.CapabilityReporter.
func (e *Extension) Capabilities() command.Capability { return e.caps }

// Err returns the last error raised by a script function called through a
// method without an error result.
func (e *Extension) Err() error { return e.err }

// TakeErr implements command.Failer. It returns the error raised by the
// latest script call made without an error result, and clears it.
func (e *Extension) TakeErr() error {
	err := e.failed
	e.failed = nil
	return err
}

// Close releases the Lua state.
func (e *Extension) Close() { e.state.Close() }

func (e *Extension) call(fn string, args ...any) ([]lua.LValue, error) {
	lv := make([]lua.LValue, len(args))
	for i, a := range args {
		lv[i] = ToLua(e.state.L, a)
	}
	out, err := e.state.Call(fn, lv...)
	if err != nil {
		return nil, &ScriptError{Script: e.script, Func: fn, Err: err}
	}
	return out, nil
}

// try calls fn and records a failure instead of returning it.
func (e *Extension) try(fn string, args ...any) lua.LValue {
	out, err := e.call(fn, args...)
	if err != nil {
		e.err = err
		e.failed = err
		e.log.Error("%v", err)
		return lua.LNil
	}
	if len(out) == 0 {
		return lua.LNil
	}
	return out[0]
}

// Init implements command.Initializer.
func (e *Extension) Init(env command.Env) error {
	e.env = env
	if !e.state.HasFunction(FnInit) {
		return nil
	}
	_, err := e.call(FnInit)
	return err
}

// Button implements command.ButtonProvider. The element is built once
// from the result of getButton.
func (e *Extension) Button() *ui.Element {
	if e.button != nil {
		return e.button
	}
	el := ui.New(ui.KindButton, e.name)
	el.AddClass("medium-editor-action")
	el.AddClass("medium-editor-action-" + strings.ToLower(e.name))
	switch v := e.try(FnGetButton).(type) {
	case lua.LString:
		el.Label = string(v)
	case *lua.LTable:
		el.Label = stringField(v, "label")
		e.action = stringField(v, "action")
		if aria := stringField(v, "aria"); aria != "" {
			el.SetAttr("aria-label", aria)
		}
		if e.action != "" {
			el.SetAttr("data-action", e.action)
		}
		if tag := stringField(v, "tag"); tag != "" {
			el.SetAttr("data-element", tag)
		}
		if markup := stringField(v, "markup"); markup != "" {
			el.SetAttr("data-markup", markup)
		}
	}
	if el.Label == "" {
		el.Label = e.name
	}
	e.button = el
	return el
}

// Form implements command.FormProvider. The panel holds one input named
// "input".
func (e *Extension) Form() *ui.Element {
	if e.form != nil {
		return e.form
	}
	f := ui.New(ui.KindForm, e.name)
	f.AddClass("medium-editor-toolbar-form-" + strings.ToLower(e.name))
	in := ui.New(ui.KindInput, "input")
	switch v := e.try(FnGetForm).(type) {
	case lua.LString:
		in.Placeholder = string(v)
	case *lua.LTable:
		in.Placeholder = stringField(v, "placeholder")
		in.Value = stringField(v, "value")
	}
	f.Append(in)
	e.form = f
	return f
}

// QueryState implements command.StateQuerier. A nil result means the
// script has no native answer.
func (e *Extension) QueryState() (active, supported bool) {
	v := e.try(FnQueryState)
	if v == lua.LNil {
		return false, false
	}
	return lua.LVAsBool(v), true
}

// CheckState implements command.StateChecker.
func (e *Extension) CheckState(node *html.Node) {
	e.try(FnCheckState, node)
}

// IsActive implements command.Toggler.
func (e *Extension) IsActive() bool {
	return lua.LVAsBool(e.try(FnIsActive))
}

// Activate implements command.Toggler.
func (e *Extension) Activate() {
	if e.button != nil {
		e.button.AddClass(e.activeClass)
	}
	e.try(FnActivate)
}

// Deactivate implements command.Toggler.
func (e *Extension) Deactivate() {
	if e.button != nil {
		e.button.RemoveClass(e.activeClass)
	}
	e.try(FnDeactivate)
}

// ShouldActivate implements command.ActivationChecker.
func (e *Extension) ShouldActivate(node *html.Node) bool {
	return lua.LVAsBool(e.try(FnShouldActivate, node))
}

// OnHide implements command.Hider.
func (e *Extension) OnHide() {
	e.try(FnOnHide)
}

// HandleClick implements command.Clicker: onClick when defined, otherwise
// the button's action.
func (e *Extension) HandleClick() {
	if e.state.HasFunction(FnOnClick) {
		e.try(FnOnClick)
		return
	}
	if e.action != "" && e.env != nil {
		e.env.ExecAction(e.action)
	}
}

// Hook implements command.HookReceiver.
func (e *Extension) Hook(name string, args ...any) error {
	_, err := e.call(FnHook, append([]any{name}, args...)...)
	return err
}

// api builds the stylus table.
func (e *Extension) api() map[string]lua.LGFunction {
	attached := func(L *lua.LState) bool {
		if e.env == nil {
			L.RaiseError("%v", ErrDetached)
			return false
		}
		return true
	}
	return map[string]lua.LGFunction{
		"exec": func(L *lua.LState) int {
			name := L.CheckString(1)
			value := L.OptString(2, "")
			if !attached(L) {
				return 0
			}
			L.Push(lua.LBool(e.env.Host().ExecCommand(name, value)))
			return 1
		},
		"action": func(L *lua.LState) int {
			name := L.CheckString(1)
			if !attached(L) {
				return 0
			}
			e.env.ExecAction(name)
			return 0
		},
		"selection": func(L *lua.LState) int {
			if !attached(L) {
				return 0
			}
			r := e.env.Host().Selection()
			if r == nil {
				L.Push(lua.LString(""))
				return 1
			}
			L.Push(lua.LString(r.String()))
			return 1
		},
		"parent": func(L *lua.LState) int {
			if !attached(L) {
				return 0
			}
			n := selection.SelectedParentElement(e.env.Host().Selection())
			if n != nil && !dom.IsElement(n) {
				n = n.Parent
			}
			L.Push(NodeTable(L, n))
			return 1
		},
		"log": func(L *lua.LState) int {
			msg := L.CheckString(1)
			l := e.log
			if t, ok := L.Get(2).(*lua.LTable); ok {
				if fields, ok := ToGo(t).(map[string]any); ok {
					l = l.WithFields(fields)
				}
			}
			l.Info("%s", msg)
			return 0
		},
	}
}

// String describes the extension.
func (e *Extension) String() string {
	return fmt.Sprintf("lua extension %s (%s)", e.name, e.caps)
}

var (
	_ command.CapabilityReporter = (*Extension)(nil)
	_ command.ButtonProvider     = (*Extension)(nil)
	_ command.FormProvider       = (*Extension)(nil)
	_ command.StateQuerier       = (*Extension)(nil)
	_ command.StateChecker       = (*Extension)(nil)
	_ command.Toggler            = (*Extension)(nil)
	_ command.ActivationChecker  = (*Extension)(nil)
	_ command.Hider              = (*Extension)(nil)
	_ command.Initializer        = (*Extension)(nil)
	_ command.Clicker            = (*Extension)(nil)
	_ command.HookReceiver       = (*Extension)(nil)
)
