package editor

import (
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/block"
	"github.com/dshills/stylus/internal/command"
	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/event"
	"github.com/dshills/stylus/internal/sched"
	"github.com/dshills/stylus/internal/ui"
)

// bindSelect schedules a selection check after the events that can change
// the selection.
func (e *Editor) bindSelect() {
	if e.toolbar == nil {
		return
	}
	e.binder.On(e.host.Document(), event.TypeMouseUp, e.checkSelectionWrapper)
	for _, el := range e.elements {
		e.binder.On(el, event.TypeKeyUp, e.checkSelectionWrapper)
		e.binder.On(el, event.TypeBlur, e.checkSelectionWrapper)
		e.binder.On(el, event.TypeClick, e.checkSelectionWrapper)
		if e.opts.StaticToolbar {
			e.binder.On(el, event.TypeClick, func(*event.Event) { e.toolbar.Position() })
		}
	}
}

func (e *Editor) checkSelectionWrapper(ev *event.Event) {
	if !e.opts.DisableAnchorForm && e.intoLinkForm(ev) {
		return
	}
	e.toolbar.ScheduleCheck()
}

// intoLinkForm reports whether ev moves focus or a click into the link
// form.
func (e *Editor) intoLinkForm(ev *event.Event) bool {
	if e.linkForm == nil {
		return false
	}
	form := e.linkForm.Form()
	if el, ok := ev.RelatedTarget.(*ui.Element); ok && ev.Type == event.TypeBlur && form.Contains(el) {
		return true
	}
	el, ok := ev.Target.(*ui.Element)
	return ok && form.Contains(el)
}

// bindButtons routes toolbar button clicks to their commands.
func (e *Editor) bindButtons() {
	for _, entry := range e.registry.Entries() {
		el := entry.Button()
		if el == nil {
			continue
		}
		e.binder.On(el, event.TypeClick, func(ev *event.Event) {
			ev.PreventDefault()
			ev.StopPropagation()
			e.handleButton(el)
		})
	}
}

func (e *Editor) handleButton(el *ui.Element) {
	if !e.active {
		return
	}
	if e.host.Selection() == nil {
		e.CheckSelection()
	}
	entry, ok := e.registry.EntryForButton(el)
	if !ok {
		return
	}
	if entry.Caps.Has(command.CapClick) {
		entry.Command.(command.Clicker).HandleClick()
		return
	}
	if action, ok := el.Attr("data-action"); ok && action != "" {
		e.ExecAction(action)
	}
}

// bindKeys applies the block boundary policies to each surface.
func (e *Editor) bindKeys() {
	for _, el := range e.elements {
		surface := el
		e.binder.On(surface, event.TypeKeyDown, func(ev *event.Event) {
			e.applyBlock(ev, block.KeyDown(e.blockContext(ev, surface)))
		})
		e.binder.On(surface, event.TypeKeyPress, func(ev *event.Event) {
			e.applyBlock(ev, block.KeyPress(e.blockContext(ev, surface)))
		})
		e.binder.On(surface, event.TypeKeyUp, func(ev *event.Event) {
			block.ApplyAll(e.host, block.KeyUp(e.blockContext(ev, surface)))
		})
	}
}

func (e *Editor) blockContext(ev *event.Event, surface *html.Node) block.Context {
	return block.NewContext(ev.Key, ev.Shift, e.host.Selection(), surface, e.opts.DisableReturn, e.opts.DisableDoubleReturn)
}

func (e *Editor) applyBlock(ev *event.Event, a block.Action) {
	if a.Kind == block.None {
		return
	}
	if a.PreventDefault {
		ev.PreventDefault()
	}
	block.Apply(e.host, a)
	e.log.Debug("block %s on %s", a.Kind, ev.Key)
}

// bindWindow repositions on resize and sticky scroll and hides the toolbar
// when focus leaves the editor.
func (e *Editor) bindWindow() {
	if e.toolbar == nil {
		return
	}
	s := e.host.Scheduler()
	e.resize = sched.NewThrottle(s, sched.DefaultThrottle, func() {
		if e.active && e.toolbar != nil {
			e.toolbar.PositionIfShown()
		}
	})
	e.blur = sched.NewThrottle(s, sched.DefaultThrottle, func() {
		if e.active && e.toolbar != nil {
			e.toolbar.HideUnlessKeptAlive()
		}
	})

	if e.opts.StaticToolbar && e.opts.StickyToolbar {
		e.binder.On(event.Window, event.TypeScroll, func(*event.Event) {
			e.toolbar.PositionIfShown()
		}, event.WithCapture())
	}
	e.binder.On(event.Window, event.TypeResize, func(*event.Event) { e.resize.Call() })

	body := dom.Body(e.host.Document())
	if body == nil {
		body = e.host.Document()
	}
	outside := func(ev *event.Event) {
		if !e.owns(ev.Target) {
			e.blur.Call()
		}
	}
	e.binder.On(body, event.TypeClick, outside, event.WithCapture())
	e.binder.On(body, event.TypeFocus, outside, event.WithCapture())
}

// owns reports whether t is a surface, inside one, or part of the toolbar
// or preview.
func (e *Editor) owns(t event.Target) bool {
	switch v := t.(type) {
	case *html.Node:
		for _, el := range e.elements {
			if dom.Contains(el, v) {
				return true
			}
		}
	case *ui.Element:
		if e.toolbar != nil && e.toolbar.Element().Contains(v) {
			return true
		}
		if e.preview != nil && e.preview.Element().Contains(v) {
			return true
		}
	}
	return false
}
