// Package linkform implements the inline form that creates links from the
// toolbar.
package linkform

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/event"
	"github.com/dshills/stylus/internal/host"
	"github.com/dshills/stylus/internal/logging"
	"github.com/dshills/stylus/internal/selection"
	"github.com/dshills/stylus/internal/toolbar"
	"github.com/dshills/stylus/internal/ui"
)

// FormID is the ID the form is registered under on the toolbar.
const FormID = "anchor"

// Form classes.
const (
	FormClass   = "medium-editor-toolbar-form-anchor"
	InputClass  = "medium-editor-toolbar-anchor-input"
	SaveClass   = "medium-editor-toobar-save"
	CloseClass  = "medium-editor-toobar-close"
	TargetClass = "medium-editor-toolbar-anchor-target"
	ButtonClass = "medium-editor-toolbar-anchor-button"
)

// Config holds the form options.
type Config struct {
	CheckLinkFormat   bool
	TargetBlank       bool
	AnchorTarget      bool
	AnchorButton      bool
	AnchorButtonClass string
	Placeholder       string
	CheckboxLabel     string
	Disabled          bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller drives the link form of one editor.
type Controller struct {
	host   host.Host
	sel    *selection.Coordinator
	tb     *toolbar.Machine
	binder *event.Binder
	cfg    Config
	log    *logging.Logger

	form   *ui.Element
	input  *ui.Element
	save   *ui.Element
	close  *ui.Element
	target *ui.Element
	button *ui.Element

	pending *selection.Snapshot
	own     []string
}

// New builds the form, registers it on the toolbar and binds its
// listeners.
func New(h host.Host, sel *selection.Coordinator, tb *toolbar.Machine, binder *event.Binder, cfg Config, opts ...Option) (*Controller, error) {
	c := &Controller{host: h, sel: sel, tb: tb, binder: binder, cfg: cfg, log: logging.Null()}
	for _, opt := range opts {
		opt(c)
	}
	c.build()
	if err := tb.AddForm(c.form); err != nil {
		return nil, err
	}
	c.bind()
	return c, nil
}

func (c *Controller) build() {
	c.form = ui.New(ui.KindForm, FormID)
	c.form.AddClass(FormClass)

	c.input = ui.New(ui.KindInput, "url")
	c.input.AddClass(InputClass)
	c.input.Placeholder = c.cfg.Placeholder

	c.save = ui.New(ui.KindLink, "save")
	c.save.AddClass(SaveClass)
	c.save.Label = "✓"
	c.close = ui.New(ui.KindLink, "close")
	c.close.AddClass(CloseClass)
	c.close.Label = "×"
	c.form.Append(c.input, c.save, c.close)

	if c.cfg.AnchorTarget {
		c.target = ui.New(ui.KindCheckbox, "target")
		c.target.AddClass(TargetClass)
		c.target.Label = c.cfg.CheckboxLabel
		c.form.Append(c.target)
	}
	if c.cfg.AnchorButton {
		c.button = ui.New(ui.KindCheckbox, "button")
		c.button.AddClass(ButtonClass)
		c.button.Label = "Button"
		c.form.Append(c.button)
	}
}

func (c *Controller) bind() {
	on := func(target event.Target, typ event.Type, l event.Listener, opts ...event.Option) {
		c.own = append(c.own, c.binder.On(target, typ, l, opts...))
	}

	on(c.form, event.TypeClick, func(e *event.Event) {
		e.StopPropagation()
		c.tb.SetKeepAlive(true)
	})
	on(c.input, event.TypeKeyUp, func(e *event.Event) {
		switch e.Key {
		case event.KeyEnter:
			e.PreventDefault()
			c.Submit()
		case event.KeyEscape:
			e.PreventDefault()
			c.Cancel()
		}
	})
	on(c.save, event.TypeClick, func(e *event.Event) {
		e.PreventDefault()
		c.Submit()
	}, event.WithCapture())
	on(c.close, event.TypeClick, func(e *event.Event) {
		e.PreventDefault()
		c.Cancel()
	})

	outside := func(e *event.Event) {
		if c.tb.State() != toolbar.FormVisible {
			return
		}
		if el, ok := e.Target.(*ui.Element); ok && (c.form.Contains(el) || c.tb.Actions().Contains(el)) {
			return
		}
		c.tb.SetKeepAlive(false)
		c.tb.CheckSelection()
		if !c.Visible() {
			c.pending = nil
		}
	}
	body := c.host.Document()
	if b := dom.Body(body); b != nil {
		body = b
	}
	on(body, event.TypeClick, outside, event.WithCapture())
	on(body, event.TypeFocus, outside, event.WithCapture())
}

// Form returns the form element.
func (c *Controller) Form() *ui.Element { return c.form }

// Input returns the URL input.
func (c *Controller) Input() *ui.Element { return c.input }

// TargetCheckbox returns the "open in new window" checkbox, or nil.
func (c *Controller) TargetCheckbox() *ui.Element { return c.target }

// ButtonCheckbox returns the "button" checkbox, or nil.
func (c *Controller) ButtonCheckbox() *ui.Element { return c.button }

// Visible reports whether the form is showing.
func (c *Controller) Visible() bool {
	return c.tb.State() == toolbar.FormVisible && c.tb.FormID() == FormID
}

// Pending returns the selection saved when the form opened.
func (c *Controller) Pending() (selection.Snapshot, bool) {
	if c.pending == nil {
		return selection.Snapshot{}, false
	}
	return *c.pending, true
}

// Open saves the selection, shows the form and focuses the input with
// prefill as its value. It returns false when the form is disabled.
func (c *Controller) Open(prefill string) bool {
	if c.cfg.Disabled {
		return false
	}
	c.pending = nil
	if s, ok := c.sel.Save(); ok {
		c.pending = &s
	}
	if err := c.tb.ShowForm(FormID); err != nil {
		c.log.Error("open link form: %v", err)
		return false
	}
	c.host.Focus(c.input)
	c.input.Value = prefill
	return true
}

// Trigger runs the anchor toolbar action: a selection inside a link is
// unlinked, an open form is closed, otherwise the form opens.
func (c *Controller) Trigger() {
	if dom.Tag(selection.SelectedParentElement(c.host.Selection())) == "a" {
		c.host.ExecCommand(host.CmdUnlink, "")
		return
	}
	if c.Visible() {
		c.tb.CloseForm()
		return
	}
	c.Open("")
}

// Submit commits the input value with the checkbox states.
func (c *Controller) Submit() bool {
	newTab := c.target != nil && c.target.Checked
	class := ""
	if c.button != nil && c.button.Checked {
		class = c.cfg.AnchorButtonClass
	}
	return c.Commit(c.input.Value, newTab, class)
}

// Commit creates a link to rawURL over the saved selection. An empty or
// blank URL creates nothing and only returns to the button panel. It
// reports whether a link was created.
func (c *Controller) Commit(rawURL string, openInNewTab bool, buttonClass string) bool {
	if strings.TrimSpace(rawURL) == "" {
		c.finish()
		return false
	}

	if c.pending != nil {
		c.sel.Restore(*c.pending)
	}
	url := rawURL
	if c.cfg.CheckLinkFormat {
		url = NormalizeURL(rawURL)
	}
	c.host.ExecCommand(host.CmdCreateLink, url)

	start := c.sel.SelectionStart()
	newTab := c.cfg.TargetBlank || openInNewTab
	if newTab {
		SetTargetBlank(start)
	}
	if buttonClass != "" {
		AddButtonClass(start, buttonClass)
	}
	if newTab || buttonClass != "" {
		for _, s := range c.sel.Surfaces() {
			c.host.Fire(s, event.New(event.TypeInput, s))
		}
	}
	c.log.Debug("created link %s", url)

	c.finish()
	c.tb.CheckSelection()
	return true
}

// Cancel closes the form without creating a link and restores the saved
// selection.
func (c *Controller) Cancel() {
	if c.pending != nil {
		c.sel.Restore(*c.pending)
	}
	c.finish()
}

func (c *Controller) finish() {
	c.pending = nil
	c.tb.CloseForm()
	c.input.Value = ""
}

// SetTargetBlank marks el, or every link inside it, to open in a new tab.
func SetTargetBlank(el *html.Node) {
	for _, a := range anchorsAt(el) {
		dom.SetAttr(a, "target", "_blank")
	}
}

// AddButtonClass adds the whitespace separated class tokens to el when it
// is a link, or else to every link inside it.
func AddButtonClass(el *html.Node, class string) {
	tokens := strings.Fields(class)
	for _, a := range anchorsAt(el) {
		for _, t := range tokens {
			dom.AddClass(a, t)
		}
	}
}

func anchorsAt(el *html.Node) []*html.Node {
	if el == nil {
		return nil
	}
	if dom.Tag(el) == "a" {
		return []*html.Node{el}
	}
	return dom.ElementsByTag(el, "a")
}

// Destroy removes the form's listeners.
func (c *Controller) Destroy() {
	for _, id := range c.own {
		_ = c.binder.Off(id)
	}
	c.own = nil
	c.pending = nil
}
