package preview

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/event"
	"github.com/dshills/stylus/internal/host"
	"github.com/dshills/stylus/internal/logging"
	"github.com/dshills/stylus/internal/sched"
	"github.com/dshills/stylus/internal/ui"
)

// PollInterval is the period of the hide check while the preview is
// visible.
const PollInterval = 200 * time.Millisecond

// Classes and attributes.
const (
	PreviewClass       = "medium-editor-anchor-preview"
	ActivePreviewClass = "medium-editor-anchor-preview-active"
	InnerClass         = "medium-editor-toolbar-anchor-preview-inner"
	DisablePreviewAttr = "data-disable-preview"
)

// State is the engine state.
type State int

const (
	// Idle means no link is tracked.
	Idle State = iota
	// Tracking means a link is hovered and the show delay is running.
	Tracking
	// Visible means the preview is shown for the tracked link.
	Visible
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Tracking:
		return "tracking"
	case Visible:
		return "visible"
	default:
		return "unknown"
	}
}

// Config holds the preview timings and offsets.
type Config struct {
	ShowDelay         time.Duration
	HideDelay         time.Duration
	Offsets           ui.Offsets
	DisableAnchorForm bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithID sets the preview element ID suffix.
func WithID(id string) Option {
	return func(e *Engine) { e.id = id }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithTasks records scheduled callbacks in tasks.
func WithTasks(tasks *sched.TaskSet) Option {
	return func(e *Engine) { e.tasks = tasks }
}

// WithGuard sets the predicate every deferred callback checks first.
func WithGuard(active func() bool) Option {
	return func(e *Engine) { e.active = active }
}

// WithToolbarShown sets the predicate that suppresses previews while the
// toolbar is up.
func WithToolbarShown(shown func() bool) Option {
	return func(e *Engine) { e.toolbarShown = shown }
}

// WithFormOpener sets the function that opens the link form for a href.
func WithFormOpener(open func(href string)) Option {
	return func(e *Engine) { e.openForm = open }
}

// Engine tracks hovered links and drives the preview element.
type Engine struct {
	host   host.Host
	binder *event.Binder
	cfg    Config
	log    *logging.Logger
	tasks  *sched.TaskSet
	active func() bool

	toolbarShown func() bool
	openForm     func(href string)

	id    string
	el    *ui.Element
	inner *ui.Element

	state    State
	anchor   *html.Node
	over     bool
	lastOver time.Time
	pending  sched.Task
	poll     sched.Task
	hover    []string
	own      []string
}

// New creates the preview element, mounts it and listens for clicks on it.
func New(h host.Host, binder *event.Binder, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		host:         h,
		binder:       binder,
		cfg:          cfg,
		log:          logging.Null(),
		tasks:        &sched.TaskSet{},
		active:       func() bool { return true },
		toolbarShown: func() bool { return false },
		id:           "0",
	}
	for _, opt := range opts {
		opt(e)
	}

	e.el = ui.New(ui.KindPreview, "anchor-preview")
	e.el.ID = "medium-editor-anchor-preview-" + e.id
	e.el.AddClass(PreviewClass)
	e.inner = ui.New(ui.KindLink, "href")
	e.inner.AddClass(InnerClass)
	e.el.Append(e.inner)
	e.el.Hide()
	h.Mount(e.el)

	e.own = append(e.own, binder.On(e.el, event.TypeClick, func(*event.Event) { e.HandleClick() }))
	return e
}

// Observe starts watching a surface for link hovers.
func (e *Engine) Observe(surface *html.Node) {
	e.own = append(e.own, e.binder.On(surface, event.TypeMouseOver, e.HandleMouseOver))
}

// Element returns the preview element.
func (e *Engine) Element() *ui.Element { return e.el }

// State returns the engine state.
func (e *Engine) State() State { return e.state }

// Anchor returns the tracked link, or nil.
func (e *Engine) Anchor() *html.Node { return e.anchor }

// LiveTasks returns the number of scheduled callbacks the engine owns.
func (e *Engine) LiveTasks() int {
	n := 0
	for _, t := range []sched.Task{e.pending, e.poll} {
		if t != nil && t.Active() {
			n++
		}
	}
	return n
}

// Qualifies reports whether n is a link worth previewing: an anchor whose
// href is non-empty, free of whitespace and not a fragment reference.
func Qualifies(n *html.Node) bool {
	if dom.Tag(n) != "a" {
		return false
	}
	href, ok := dom.Attr(n, "href")
	if !ok || href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	return strings.IndexFunc(href, unicode.IsSpace) < 0
}

// HandleMouseOver reacts to the pointer entering an element of a surface.
func (e *Engine) HandleMouseOver(ev *event.Event) {
	a, ok := ev.Target.(*html.Node)
	if !ok || !Qualifies(a) || e.toolbarShown() {
		return
	}
	if a == e.anchor && e.state != Idle {
		return
	}

	e.reset()
	e.anchor = a
	e.state = Tracking
	e.over = true
	e.lastOver = e.host.Scheduler().Now()
	e.watch(a)
	e.pending = e.tasks.Add(e.host.Scheduler().AfterFunc(e.cfg.ShowDelay, func() {
		e.pending = nil
		if e.active() {
			e.check()
		}
	}))
	e.log.Debug("tracking link %s", dom.OuterHTML(a))
}

func (e *Engine) check() {
	if e.state != Tracking {
		return
	}
	if !e.over || dom.AttrTrue(e.anchor, DisablePreviewAttr) {
		e.reset()
		return
	}
	e.show()
}

func (e *Engine) show() {
	href, _ := dom.Attr(e.anchor, "href")
	e.inner.Label = href
	e.inner.Value = href

	ui.Preview(e.host.ElementRect(e.anchor), e.host.Measure(e.el), e.host.Viewport(), e.cfg.Offsets).Apply(e.el)
	e.el.AddClass(ActivePreviewClass)
	e.el.Show()
	e.state = Visible
	e.watch(e.el)

	e.poll = e.tasks.Add(e.host.Scheduler().Every(PollInterval, func() {
		if e.active() {
			e.tick()
		}
	}))
}

func (e *Engine) tick() {
	if e.over {
		return
	}
	if e.host.Scheduler().Now().Sub(e.lastOver) > e.cfg.HideDelay {
		e.reset()
	}
}

// watch stamps hover entry and exit on target.
func (e *Engine) watch(target event.Target) {
	stamp := func(*event.Event) {
		e.lastOver = e.host.Scheduler().Now()
		e.over = true
	}
	unstamp := func(ev *event.Event) {
		if rel, ok := ev.RelatedTarget.(*ui.Element); ok && e.el.Contains(rel) {
			return
		}
		e.over = false
	}
	e.hover = append(e.hover,
		e.binder.On(target, event.TypeMouseOver, stamp),
		e.binder.On(target, event.TypeMouseOut, unstamp),
	)
}

// Hide hides the preview and stops tracking.
func (e *Engine) Hide() {
	e.reset()
}

// HandleClick selects the tracked link's contents and, after the show
// delay, opens the link form prefilled with its href. The preview hides
// immediately.
func (e *Engine) HandleClick() {
	if !e.cfg.DisableAnchorForm && e.anchor != nil {
		href, _ := dom.Attr(e.anchor, "href")
		e.host.SetSelection(dom.NodeContents(e.anchor))
		e.tasks.Add(e.host.Scheduler().AfterFunc(e.cfg.ShowDelay, func() {
			if e.active() && e.openForm != nil {
				e.openForm(href)
			}
		}))
	}
	e.reset()
}

// reset returns the engine to Idle.
func (e *Engine) reset() {
	for _, t := range []sched.Task{e.pending, e.poll} {
		if t != nil {
			t.Cancel()
		}
	}
	e.pending, e.poll = nil, nil
	for _, id := range e.hover {
		_ = e.binder.Off(id)
	}
	e.hover = nil
	e.el.RemoveClass(ActivePreviewClass)
	e.el.Hide()
	e.anchor = nil
	e.over = false
	e.state = Idle
}

// Destroy stops tracking, removes the engine's listeners and unmounts the
// preview element.
func (e *Engine) Destroy() {
	e.reset()
	for _, id := range e.own {
		_ = e.binder.Off(id)
	}
	e.own = nil
	e.host.Unmount(e.el)
}
