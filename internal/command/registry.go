package command

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/ui"
)

// Hook names with a dedicated capability.
const (
	HookInit       = "init"
	HookHide       = "onHide"
	HookCheckState = "checkState"
	HookActivate   = "activate"
	HookDeactivate = "deactivate"
)

// Default edge classes applied by Render.
const (
	DefaultFirstButtonClass = "medium-editor-button-first"
	DefaultLastButtonClass  = "medium-editor-button-last"
)

// Entry is a registered command.
type Entry struct {
	// Name is the configured name the command was registered under.
	Name string

	// Command is the registered value.
	Command Command

	// Caps is the capability bitset computed at registration.
	Caps Capability

	// Extension is true for host-supplied commands.
	Extension bool

	// InToolbar is true when the command was named in the button list.
	InToolbar bool

	button *ui.Element
}

// Button returns the element rendered for the entry, or nil.
func (e *Entry) Button() *ui.Element {
	return e.button
}

// Registry holds the commands of one editor in registration order.
type Registry struct {
	entries    []*Entry
	byName     map[string]*Entry
	defaults   ButtonOptions
	firstClass string
	lastClass  string
	registered bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithButtonOptions sets the options used to build default buttons.
func WithButtonOptions(o ButtonOptions) Option {
	return func(r *Registry) {
		r.defaults = o
	}
}

// WithEdgeClasses sets the classes given to the first and last buttons.
func WithEdgeClasses(first, last string) Option {
	return func(r *Registry) {
		r.firstClass = first
		r.lastClass = last
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byName:     make(map[string]*Entry),
		defaults:   DefaultButtonOptions(),
		firstClass: DefaultFirstButtonClass,
		lastClass:  DefaultLastButtonClass,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register populates the registry. Each name in buttons resolves to the
// extension of that name, or else to the built-in button of that name;
// unknown names are skipped. Extensions not named in buttons are added
// afterwards in name order without a toolbar button.
func (r *Registry) Register(buttons []string, extensions map[string]Command) error {
	if r.registered {
		return ErrAlreadyRegistered
	}
	for name, ext := range extensions {
		if ext == nil {
			return fmt.Errorf("%w: %s", ErrNilCommand, name)
		}
	}
	r.registered = true

	for _, name := range buttons {
		if _, dup := r.byName[name]; dup {
			continue
		}
		if ext, ok := extensions[name]; ok {
			r.add(name, ext, true, true)
			continue
		}
		if b, ok := NewDefaultButton(name, r.defaults); ok {
			r.add(name, b, false, true)
		}
	}

	var rest []string
	for name := range extensions {
		if _, ok := r.byName[name]; !ok {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	for _, name := range rest {
		r.add(name, extensions[name], true, false)
	}
	return nil
}

func (r *Registry) add(name string, cmd Command, ext, toolbar bool) {
	e := &Entry{
		Name:      name,
		Command:   cmd,
		Caps:      CapabilitiesOf(cmd),
		Extension: ext,
		InToolbar: toolbar,
	}
	r.entries = append(r.entries, e)
	r.byName[name] = e
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns the registered commands in order.
func (r *Registry) Entries() []*Entry {
	return r.entries
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// EntryForButton returns the entry whose rendered button is el.
func (r *Registry) EntryForButton(el *ui.Element) (*Entry, bool) {
	for _, e := range r.entries {
		if e.button != nil && e.button == el {
			return e, true
		}
	}
	return nil, false
}

// Init initialises every command that supports it, in order.
func (r *Registry) Init(env Env) error {
	for _, e := range r.entries {
		if !e.Caps.Has(CapInit) {
			continue
		}
		if err := e.Command.(Initializer).Init(env); err != nil {
			return &HookError{Command: e.Name, Hook: HookInit, Err: err}
		}
	}
	return nil
}

// Dispatch invokes the named hook on every extension implementing it.
// Extensions without the hook are skipped. The first error stops the
// dispatch and is returned as a *HookError, including failures recorded
// by a Failer; panics are not recovered.
func (r *Registry) Dispatch(hook string, args ...any) error {
	for _, e := range r.entries {
		if !e.Extension {
			continue
		}
		if err := r.invoke(e, hook, args); err != nil {
			return &HookError{Command: e.Name, Hook: hook, Err: err}
		}
	}
	return nil
}

func (r *Registry) invoke(e *Entry, hook string, args []any) error {
	switch {
	case hook == HookInit && e.Caps.Has(CapInit):
		env, ok := arg[Env](args)
		if !ok {
			return ErrHookArgs
		}
		return e.Command.(Initializer).Init(env)
	case hook == HookHide && e.Caps.Has(CapHide):
		return guard(e.Command, e.Command.(Hider).OnHide)
	case hook == HookCheckState && e.Caps.Has(CapCheckState):
		node, ok := arg[*html.Node](args)
		if !ok {
			return ErrHookArgs
		}
		return guard(e.Command, func() { e.Command.(StateChecker).CheckState(node) })
	case hook == HookActivate && e.Caps.Has(CapToggle):
		return guard(e.Command, e.Command.(Toggler).Activate)
	case hook == HookDeactivate && e.Caps.Has(CapToggle):
		return guard(e.Command, e.Command.(Toggler).Deactivate)
	case e.Caps.Has(CapHook):
		return e.Command.(HookReceiver).Hook(hook, args...)
	}
	return nil
}

// guard runs a hook without an error result and returns the failure a
// Failer recorded during it.
func guard(c Command, fn func()) error {
	f, ok := c.(Failer)
	if ok {
		f.TakeErr()
	}
	fn()
	if ok {
		return f.TakeErr()
	}
	return nil
}

func arg[T any](args []any) (T, bool) {
	var zero T
	if len(args) == 0 {
		return zero, false
	}
	v, ok := args[0].(T)
	return v, ok
}

// Hide calls OnHide on every command that supports it. Every command is
// visited; the failures come back joined as *HookError values.
func (r *Registry) Hide() error {
	var errs []error
	for _, e := range r.entries {
		if e.Caps.Has(CapHide) {
			if err := guard(e.Command, e.Command.(Hider).OnHide); err != nil {
				errs = append(errs, &HookError{Command: e.Name, Hook: HookHide, Err: err})
			}
		}
	}
	return errors.Join(errs...)
}

// DeactivateAll clears the active flag of every command, like Hide.
func (r *Registry) DeactivateAll() error {
	var errs []error
	for _, e := range r.entries {
		if e.Caps.Has(CapToggle) {
			if err := guard(e.Command, e.Command.(Toggler).Deactivate); err != nil {
				errs = append(errs, &HookError{Command: e.Name, Hook: HookDeactivate, Err: err})
			}
		}
	}
	return errors.Join(errs...)
}

// Render returns the toolbar buttons in order. The first and last buttons
// carry the edge classes; no other button does.
func (r *Registry) Render() []*ui.Element {
	var out []*ui.Element
	for _, e := range r.entries {
		if !e.InToolbar || !e.Caps.Has(CapButton) {
			continue
		}
		el := e.Command.(ButtonProvider).Button()
		if el == nil {
			continue
		}
		e.button = el
		el.RemoveClass(r.firstClass)
		el.RemoveClass(r.lastClass)
		out = append(out, el)
	}
	if len(out) > 0 {
		out[0].AddClass(r.firstClass)
		out[len(out)-1].AddClass(r.lastClass)
	}
	return out
}

// Forms returns the form panels contributed by commands.
func (r *Registry) Forms() []*ui.Element {
	var out []*ui.Element
	for _, e := range r.entries {
		if !e.Caps.Has(CapForm) {
			continue
		}
		if f := e.Command.(FormProvider).Form(); f != nil {
			out = append(out, f)
		}
	}
	return out
}
