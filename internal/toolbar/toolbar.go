package toolbar

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/command"
	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/host"
	"github.com/dshills/stylus/internal/logging"
	"github.com/dshills/stylus/internal/sched"
	"github.com/dshills/stylus/internal/selection"
	"github.com/dshills/stylus/internal/ui"
)

// Classes applied to the toolbar element.
const (
	ToolbarClass       = "medium-editor-toolbar"
	ActiveToolbarClass = "medium-editor-toolbar-active"
	ActionsClass       = "medium-editor-toolbar-actions"
	StaticClass        = "static-toolbar"
	FloatingClass      = "stalker-toolbar"
	StickyClass        = "sticky-toolbar"
	DisableToolbarAttr = "data-disable-toolbar"
)

// State is the visibility state of the toolbar.
type State int

const (
	// Hidden means the toolbar is not shown.
	Hidden State = iota
	// ActionsVisible means the button panel is shown.
	ActionsVisible
	// FormVisible means a form replaced the button panel.
	FormVisible
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case ActionsVisible:
		return "actions"
	case FormVisible:
		return "form"
	default:
		return "unknown"
	}
}

// Config holds the behaviour switches of a Machine.
type Config struct {
	Static                    bool
	Sticky                    bool
	Align                     ui.Align
	Offsets                   ui.Offsets
	Delay                     time.Duration
	UpdateOnEmptySelection    bool
	AllowMultiParagraph       bool
	Disabled                  bool
	StandardizeSelectionStart bool
	ActiveButtonClass         string
}

// Option configures a Machine.
type Option func(*Machine)

// WithID sets the toolbar element ID.
func WithID(id string) Option {
	return func(m *Machine) { m.id = id }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithTasks records scheduled callbacks in tasks.
func WithTasks(tasks *sched.TaskSet) Option {
	return func(m *Machine) { m.tasks = tasks }
}

// WithGuard sets the predicate every deferred callback checks before
// running.
func WithGuard(active func() bool) Option {
	return func(m *Machine) { m.active = active }
}

// WithShowHook sets the function called when the toolbar becomes visible.
func WithShowHook(fn func()) Option {
	return func(m *Machine) { m.onShow = fn }
}

// WithHideHook sets the function called when the toolbar becomes hidden.
func WithHideHook(fn func()) Option {
	return func(m *Machine) { m.onHide = fn }
}

// WithPreviewHider sets the function called after every reposition.
func WithPreviewHider(fn func()) Option {
	return func(m *Machine) { m.hidePreview = fn }
}

// Machine drives the toolbar of one editor.
type Machine struct {
	host     host.Host
	sel      *selection.Coordinator
	registry *command.Registry
	cfg      Config
	log      *logging.Logger
	tasks    *sched.TaskSet
	active   func() bool

	id      string
	el      *ui.Element
	actions *ui.Element
	forms   map[string]*ui.Element

	shown     bool
	formID    string
	keepAlive bool
	paused    bool
	pending   sched.Task

	onShow      func()
	onHide      func()
	hidePreview func()
}

// New builds the toolbar element from the registry's buttons and forms and
// mounts it on the host. The registry must already be populated.
func New(h host.Host, sel *selection.Coordinator, reg *command.Registry, cfg Config, opts ...Option) *Machine {
	m := &Machine{
		host:     h,
		sel:      sel,
		registry: reg,
		cfg:      cfg,
		log:      logging.Null(),
		tasks:    &sched.TaskSet{},
		active:   func() bool { return true },
		id:       "medium-editor-toolbar",
		forms:    make(map[string]*ui.Element),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cfg.ActiveButtonClass == "" {
		m.cfg.ActiveButtonClass = command.DefaultActiveButtonClass
	}
	m.build()
	return m
}

func (m *Machine) build() {
	m.el = ui.New(ui.KindToolbar, "toolbar")
	m.el.ID = m.id
	m.el.AddClass(ToolbarClass)
	if m.cfg.Static {
		m.el.AddClass(StaticClass)
	} else {
		m.el.AddClass(FloatingClass)
	}
	m.el.Hide()

	m.actions = ui.New(ui.KindActions, "actions")
	m.actions.ID = m.id + "-actions"
	m.actions.AddClass(ActionsClass)
	m.actions.Append(m.registry.Render()...)
	m.el.Append(m.actions)

	for _, f := range m.registry.Forms() {
		if err := m.AddForm(f); err != nil {
			m.log.Warn("skipping form: %v", err)
		}
	}
	m.host.Mount(m.el)
}

// AddForm registers a form panel under its Name. The form starts hidden.
func (m *Machine) AddForm(f *ui.Element) error {
	if _, dup := m.forms[f.Name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateForm, f.Name)
	}
	f.Hide()
	m.forms[f.Name] = f
	m.el.Append(f)
	return nil
}

// Element returns the toolbar element.
func (m *Machine) Element() *ui.Element { return m.el }

// Actions returns the button panel.
func (m *Machine) Actions() *ui.Element { return m.actions }

// Form returns the form registered under id.
func (m *Machine) Form(id string) (*ui.Element, bool) {
	f, ok := m.forms[id]
	return f, ok
}

// State returns the current state.
func (m *Machine) State() State {
	switch {
	case !m.shown:
		return Hidden
	case m.formID != "":
		return FormVisible
	default:
		return ActionsVisible
	}
}

// FormID returns the visible form, or "".
func (m *Machine) FormID() string { return m.formID }

// Shown reports whether the toolbar is visible.
func (m *Machine) Shown() bool { return m.shown }

// KeepAlive reports whether selection checks are suspended by an open form.
func (m *Machine) KeepAlive() bool { return m.keepAlive }

// SetKeepAlive sets the keep-alive flag.
func (m *Machine) SetKeepAlive(v bool) { m.keepAlive = v }

// StopSelectionUpdates pauses CheckSelection.
func (m *Machine) StopSelectionUpdates() { m.paused = true }

// StartSelectionUpdates resumes CheckSelection.
func (m *Machine) StartSelectionUpdates() { m.paused = false }

// Config returns the machine configuration.
func (m *Machine) Config() Config { return m.cfg }

// ScheduleCheck runs CheckSelection once the current callback has returned.
func (m *Machine) ScheduleCheck() {
	m.tasks.Add(m.host.Scheduler().AfterFunc(0, func() {
		if m.active() {
			m.CheckSelection()
		}
	}))
}

// CheckSelection reconciles the toolbar with the live selection.
func (m *Machine) CheckSelection() {
	if m.paused || m.keepAlive || m.cfg.Disabled {
		return
	}

	r := m.host.Selection()
	empty := r == nil || strings.TrimSpace(r.String()) == ""
	switch {
	case empty && !m.cfg.UpdateOnEmptySelection,
		r != nil && !m.cfg.AllowMultiParagraph && selection.IsMultiParagraph(selection.SelectionHTML(r)),
		r != nil && m.sel.InNonEditable(r):
		if !m.cfg.Static {
			m.HideActions()
		} else if m.formID != "" {
			m.RefreshButtonStates()
		}
		return
	}

	surface := m.sel.SelectionElement()
	if surface == nil || dom.AttrTrue(surface, DisableToolbarAttr) {
		if !m.cfg.Static {
			m.HideActions()
		}
		return
	}

	if m.cfg.StandardizeSelectionStart {
		m.sel.StandardizeStart()
	}

	if !slices.Contains(m.sel.Surfaces(), surface) {
		if !m.cfg.Static {
			m.HideActions()
		}
		return
	}

	m.RefreshButtonStates()
	m.Position()
	m.ShowActions()
}

// ShowActions hides any open form, shows the button panel and clears
// keep-alive. The toolbar itself appears after the configured delay.
func (m *Machine) ShowActions() {
	m.hideForms()
	m.actions.Show()
	m.keepAlive = false

	m.cancelPending()
	m.pending = m.tasks.Add(m.host.Scheduler().AfterFunc(m.cfg.Delay, func() {
		m.pending = nil
		if m.active() {
			m.show()
		}
	}))
}

// HideActions notifies commands, clears keep-alive and hides the toolbar.
func (m *Machine) HideActions() {
	if err := m.registry.Hide(); err != nil {
		m.log.Error("hide commands: %v", err)
	}
	m.keepAlive = false
	m.cancelPending()
	m.hideForms()
	m.hide()
}

// HideUnlessKeptAlive hides the toolbar unless a form keeps it alive.
func (m *Machine) HideUnlessKeptAlive() {
	if !m.keepAlive {
		m.HideActions()
	}
}

// ShowForm replaces the button panel with the form registered under id and
// sets keep-alive. A hidden toolbar is shown immediately.
func (m *Machine) ShowForm(id string) error {
	f, ok := m.forms[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownForm, id)
	}
	m.actions.Hide()
	m.hideForms()
	f.Show()
	m.formID = id
	m.keepAlive = true
	m.cancelPending()
	m.show()
	m.Position()
	return nil
}

// CloseForm hides the visible form and shows the button panel again.
func (m *Machine) CloseForm() {
	if m.formID == "" {
		return
	}
	m.ShowActions()
	m.Position()
}

// Position places the toolbar for the current mode and hides the anchor
// preview. Nothing happens without a selection.
func (m *Machine) Position() {
	r := m.host.Selection()
	if r == nil {
		return
	}
	size := m.host.Measure(m.el)
	vp := m.host.Viewport()

	if m.cfg.Static {
		container := m.container()
		if container == nil {
			return
		}
		p := ui.Static(m.host.ElementRect(container), size, vp, m.cfg.Sticky, m.cfg.Align)
		m.el.SetPosition(p.Top, p.Left)
		m.el.ToggleClass(StickyClass, p.Sticky)
	} else if !r.Collapsed() {
		ui.Floating(m.host.RangeRect(r), size, vp, m.cfg.Offsets).Apply(m.el)
	}

	if m.hidePreview != nil {
		m.hidePreview()
	}
}

// PositionIfShown repositions a visible toolbar.
func (m *Machine) PositionIfShown() {
	if m.shown {
		m.Position()
	}
}

// container returns the surface a static toolbar is pinned to: the first
// one, whichever surface holds the selection.
func (m *Machine) container() *html.Node {
	if surfaces := m.sel.Surfaces(); len(surfaces) > 0 {
		return surfaces[0]
	}
	return nil
}

// RefreshButtonStates recomputes the active flag of every command. Commands
// with a native state answer are trusted; the others are asked at each
// ancestor of the selection up to its surface.
func (m *Machine) RefreshButtonStates() {
	if err := m.registry.DeactivateAll(); err != nil {
		m.log.Error("refresh buttons: %v", err)
	}

	var manual []*command.Entry
	for _, e := range m.registry.Entries() {
		if e.Caps.Has(command.CapQueryState) {
			if active, ok := e.Command.(command.StateQuerier).QueryState(); ok {
				if active && e.Caps.Has(command.CapToggle) {
					e.Command.(command.Toggler).Activate()
				}
				continue
			}
		}
		manual = append(manual, e)
	}

	surfaces := m.sel.Surfaces()
	for n := selection.SelectedParentElement(m.host.Selection()); dom.IsElement(n); n = n.Parent {
		tag := dom.Tag(n)
		if tag == "body" || tag == "html" {
			break
		}
		m.activateButton(tag)
		for _, e := range manual {
			checkEntry(e, n)
		}
		if slices.Contains(surfaces, n) {
			break
		}
	}
}

func checkEntry(e *command.Entry, n *html.Node) {
	switch {
	case e.Caps.Has(command.CapCheckState):
		e.Command.(command.StateChecker).CheckState(n)
	case e.Caps.Has(command.CapToggle | command.CapShouldActivate):
		t := e.Command.(command.Toggler)
		if !t.IsActive() && e.Command.(command.ActivationChecker).ShouldActivate(n) {
			t.Activate()
		}
	}
}

// activateButton marks the button whose data-element matches tag.
func (m *Machine) activateButton(tag string) {
	for _, b := range m.actions.FindAll(ui.KindButton) {
		if v, ok := b.Attr("data-element"); ok && v == tag {
			b.AddClass(m.cfg.ActiveButtonClass)
			return
		}
	}
}

// Destroy cancels pending work and unmounts the toolbar. No hooks fire.
func (m *Machine) Destroy() {
	m.cancelPending()
	m.host.Unmount(m.el)
	m.shown = false
	m.formID = ""
	m.keepAlive = false
	m.el.RemoveClass(ActiveToolbarClass)
	m.el.Hide()
}

func (m *Machine) show() {
	if m.shown {
		return
	}
	m.shown = true
	m.el.AddClass(ActiveToolbarClass)
	m.el.Show()
	m.log.Debug("toolbar shown")
	if m.onShow != nil {
		m.onShow()
	}
}

func (m *Machine) hide() {
	if !m.shown {
		return
	}
	m.shown = false
	m.el.RemoveClass(ActiveToolbarClass)
	m.el.Hide()
	m.log.Debug("toolbar hidden")
	if m.onHide != nil {
		m.onHide()
	}
}

func (m *Machine) hideForms() {
	for _, f := range m.forms {
		f.Hide()
	}
	m.formID = ""
}

func (m *Machine) cancelPending() {
	if m.pending != nil {
		m.pending.Cancel()
		m.pending = nil
	}
}
