package editor

import (
	"fmt"
	"maps"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/command"
	"github.com/dshills/stylus/internal/config"
	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/event"
	"github.com/dshills/stylus/internal/host"
	"github.com/dshills/stylus/internal/linkform"
	"github.com/dshills/stylus/internal/logging"
	"github.com/dshills/stylus/internal/preview"
	"github.com/dshills/stylus/internal/sched"
	"github.com/dshills/stylus/internal/selection"
	"github.com/dshills/stylus/internal/toolbar"
	"github.com/dshills/stylus/internal/ui"
)

// Surface attributes.
const (
	EditableAttr       = "contenteditable"
	DisableEditingAttr = "data-disable-editing"
)

// Option configures an Editor.
type Option func(*Editor)

// WithOptions sets the editor options. The default is config.Default().
func WithOptions(o config.Options) Option {
	return func(e *Editor) { e.opts = o.Clone() }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// WithExtensions sets the host-supplied commands by name.
func WithExtensions(exts map[string]command.Command) Option {
	return func(e *Editor) { e.extensions = maps.Clone(exts) }
}

// OnShowToolbar sets the function called each time the toolbar appears.
func OnShowToolbar(fn func()) Option {
	return func(e *Editor) { e.onShow = fn }
}

// OnHideToolbar sets the function called each time the toolbar disappears.
func OnHideToolbar(fn func()) Option {
	return func(e *Editor) { e.onHide = fn }
}

// Editor is one engine instance over a set of surfaces.
type Editor struct {
	host       host.Host
	elements   []*html.Node
	opts       config.Options
	log        *logging.Logger
	extensions map[string]command.Command
	onShow     func()
	onHide     func()

	id     string
	active bool

	binder   *event.Binder
	tasks    *sched.TaskSet
	sel      *selection.Coordinator
	registry *command.Registry
	toolbar  *toolbar.Machine
	preview  *preview.Engine
	linkForm *linkform.Controller
	resize   *sched.Throttle
	blur     *sched.Throttle

	saved *selection.Snapshot
}

// New creates an editor over elements and activates it. A nil or
// non-element entry is an ErrInvalidElement. With no elements the editor
// stays inactive.
func New(h host.Host, elements []*html.Node, opts ...Option) (*Editor, error) {
	for i, el := range elements {
		if !dom.IsElement(el) {
			return nil, fmt.Errorf("%w: index %d", ErrInvalidElement, i)
		}
	}
	e := &Editor{
		host:     h,
		elements: elements,
		opts:     config.Default(),
		log:      logging.Null(),
		id:       uuid.NewString(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("editor").WithField("editor", e.id[:8])
	if len(e.elements) == 0 {
		return e, nil
	}
	if err := e.setup(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewFromSelector creates an editor over the elements of h's document
// matching selector.
func NewFromSelector(h host.Host, selector string, opts ...Option) (*Editor, error) {
	return New(h, dom.QueryAll(h.Document(), selector), opts...)
}

// setup builds and binds every component. A failure leaves the editor
// inactive with nothing bound.
func (e *Editor) setup() error {
	e.active = true
	e.binder = event.NewBinder(e.host)
	e.tasks = &sched.TaskSet{}
	e.sel = selection.New(e.host, e.elements...)

	e.initElements()
	err := e.initCommands()
	if err == nil && e.wantsToolbar() {
		err = e.initToolbar()
	}
	if err != nil {
		e.teardown()
		e.releaseElements()
		return err
	}
	e.bindSelect()
	e.bindKeys()
	e.bindWindow()
	if err := e.binder.Err(); err != nil {
		e.teardown()
		e.releaseElements()
		return err
	}
	e.log.Info("activated with %d surfaces", len(e.elements))
	return nil
}

func (e *Editor) initElements() {
	for _, el := range e.elements {
		if !e.opts.DisableEditing && !dom.AttrTrue(el, DisableEditingAttr) {
			dom.SetAttr(el, EditableAttr, "true")
		}
		dom.SetAttr(el, selection.ElementAttr, "true")
	}
}

func (e *Editor) initCommands() error {
	e.registry = command.NewRegistry(
		command.WithButtonOptions(command.ButtonOptions{
			FirstHeader:  e.opts.FirstHeader,
			SecondHeader: e.opts.SecondHeader,
			ActiveClass:  e.opts.ActiveButtonClass,
		}),
		command.WithEdgeClasses(e.opts.FirstButtonClass, e.opts.LastButtonClass),
	)
	if err := e.registry.Register(e.opts.Buttons, e.extensions); err != nil {
		return err
	}
	if err := e.registry.Init(e); err != nil {
		e.log.Error("init commands: %v", err)
		return err
	}
	return nil
}

// wantsToolbar reports whether any surface shows the toolbar.
func (e *Editor) wantsToolbar() bool {
	if e.opts.DisableToolbar {
		return false
	}
	for _, el := range e.elements {
		if !dom.AttrTrue(el, toolbar.DisableToolbarAttr) {
			return true
		}
	}
	return false
}

func (e *Editor) initToolbar() error {
	o := e.opts
	offsets := ui.Offsets{DiffLeft: o.DiffLeft, DiffTop: o.DiffTop}

	e.toolbar = toolbar.New(e.host, e.sel, e.registry, toolbar.Config{
		Static:                    o.StaticToolbar,
		Sticky:                    o.StickyToolbar,
		Align:                     ui.Align(o.ToolbarAlign),
		Offsets:                   offsets,
		Delay:                     o.Delay,
		UpdateOnEmptySelection:    o.UpdateOnEmptySelection,
		AllowMultiParagraph:       o.AllowMultiParagraphSelection,
		Disabled:                  o.DisableToolbar,
		StandardizeSelectionStart: o.StandardizeSelectionStart,
		ActiveButtonClass:         o.ActiveButtonClass,
	},
		toolbar.WithID("medium-editor-toolbar-"+e.id),
		toolbar.WithLogger(e.log.WithComponent("toolbar")),
		toolbar.WithTasks(e.tasks),
		toolbar.WithGuard(e.IsActive),
		toolbar.WithShowHook(e.toolbarShown),
		toolbar.WithHideHook(e.toolbarHidden),
		toolbar.WithPreviewHider(e.hidePreview),
	)
	e.bindButtons()

	lf, err := linkform.New(e.host, e.sel, e.toolbar, e.binder, linkform.Config{
		CheckLinkFormat:   o.CheckLinkFormat,
		TargetBlank:       o.TargetBlank,
		AnchorTarget:      o.AnchorTarget,
		AnchorButton:      o.AnchorButton,
		AnchorButtonClass: o.AnchorButtonClass,
		Placeholder:       o.AnchorInputPlaceholder,
		CheckboxLabel:     o.AnchorInputCheckboxLabel,
		Disabled:          o.DisableAnchorForm,
	}, linkform.WithLogger(e.log.WithComponent("linkform")))
	if err != nil {
		return fmt.Errorf("link form: %w", err)
	}
	e.linkForm = lf

	e.preview = preview.New(e.host, e.binder, preview.Config{
		ShowDelay:         o.Delay,
		HideDelay:         o.AnchorPreviewHideDelay,
		Offsets:           offsets,
		DisableAnchorForm: o.DisableAnchorForm,
	},
		preview.WithID(e.id),
		preview.WithLogger(e.log.WithComponent("preview")),
		preview.WithTasks(e.tasks),
		preview.WithGuard(e.IsActive),
		preview.WithToolbarShown(e.toolbar.Shown),
		preview.WithFormOpener(func(href string) { e.linkForm.Open(href) }),
	)
	for _, el := range e.elements {
		e.preview.Observe(el)
	}
	return nil
}

func (e *Editor) toolbarShown() {
	if e.onShow != nil {
		e.onShow()
	}
}

func (e *Editor) toolbarHidden() {
	if e.onHide != nil {
		e.onHide()
	}
}

func (e *Editor) hidePreview() {
	if e.preview != nil {
		e.preview.Hide()
	}
}

// Activate sets the editor up again after Deactivate. It is a no-op on an
// active editor or one without surfaces.
func (e *Editor) Activate() error {
	if e.active || len(e.elements) == 0 {
		return nil
	}
	return e.setup()
}

// Deactivate unbinds every listener, cancels every pending callback,
// removes the toolbar and preview and makes the surfaces read-only again.
func (e *Editor) Deactivate() {
	if !e.active {
		return
	}
	e.teardown()
	e.releaseElements()
	e.log.Info("deactivated")
}

func (e *Editor) releaseElements() {
	for _, el := range e.elements {
		dom.RemoveAttr(el, EditableAttr)
		dom.RemoveAttr(el, selection.ElementAttr)
	}
}

func (e *Editor) teardown() {
	e.active = false
	e.tasks.CancelAll()
	if e.resize != nil {
		e.resize.Cancel()
	}
	if e.blur != nil {
		e.blur.Cancel()
	}
	if e.linkForm != nil {
		e.linkForm.Destroy()
	}
	if e.preview != nil {
		e.preview.Destroy()
	}
	if e.toolbar != nil {
		e.toolbar.Destroy()
	}
	e.binder.RemoveAll()
	e.toolbar, e.preview, e.linkForm = nil, nil, nil
	e.resize, e.blur = nil, nil
	e.saved = nil
}

// Reconfigure replaces the options and extensions of an active editor by
// deactivating and activating it again.
func (e *Editor) Reconfigure(o config.Options, exts map[string]command.Command) error {
	wasActive := e.active
	e.Deactivate()
	e.opts = o.Clone()
	if exts != nil {
		e.extensions = maps.Clone(exts)
	}
	if !wasActive {
		return nil
	}
	return e.Activate()
}

// IsActive reports whether the editor is active.
func (e *Editor) IsActive() bool { return e.active }

// ID returns the instance ID.
func (e *Editor) ID() string { return e.id }

// Host implements command.Env.
func (e *Editor) Host() host.Host { return e.host }

// Options returns a copy of the options.
func (e *Editor) Options() config.Options { return e.opts.Clone() }

// Elements returns the surfaces.
func (e *Editor) Elements() []*html.Node { return e.elements }

// Selection returns the selection coordinator, or nil before activation.
func (e *Editor) Selection() *selection.Coordinator { return e.sel }

// Registry returns the command registry, or nil before activation.
func (e *Editor) Registry() *command.Registry { return e.registry }

// Toolbar returns the toolbar, or nil when no surface shows one.
func (e *Editor) Toolbar() *toolbar.Machine { return e.toolbar }

// Preview returns the anchor preview, or nil when there is no toolbar.
func (e *Editor) Preview() *preview.Engine { return e.preview }

// LinkForm returns the link form, or nil when there is no toolbar.
func (e *Editor) LinkForm() *linkform.Controller { return e.linkForm }

// LiveTasks returns the number of pending callbacks owned by the editor.
func (e *Editor) LiveTasks() int {
	if e.tasks == nil {
		return 0
	}
	return e.tasks.Live()
}

// CheckSelection reconciles the toolbar with the live selection now.
func (e *Editor) CheckSelection() {
	if e.active && e.toolbar != nil {
		e.toolbar.CheckSelection()
	}
}

// SaveSelection records the live selection. It reports false when no
// surface holds the selection.
func (e *Editor) SaveSelection() bool {
	if !e.active {
		return false
	}
	s, ok := e.sel.Save()
	if !ok {
		e.saved = nil
		return false
	}
	e.saved = &s
	return true
}

// SavedSelection returns the selection recorded by SaveSelection.
func (e *Editor) SavedSelection() (selection.Snapshot, bool) {
	if e.saved == nil {
		return selection.Snapshot{}, false
	}
	return *e.saved, true
}

// RestoreSelection restores the selection recorded by SaveSelection.
func (e *Editor) RestoreSelection() bool {
	if !e.active || e.saved == nil {
		return false
	}
	return e.sel.Restore(*e.saved)
}

// RestoreSnapshot restores s, typically decoded from a previous session.
func (e *Editor) RestoreSnapshot(s selection.Snapshot) bool {
	if !e.active || !s.Valid() {
		return false
	}
	return e.sel.Restore(s)
}

func (e *Editor) surfaceKey(i int) string {
	if id, ok := dom.Attr(e.elements[i], "id"); ok && id != "" {
		return id
	}
	return "element-" + strconv.Itoa(i)
}

var _ command.Env = (*Editor)(nil)
