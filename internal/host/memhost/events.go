package memhost

import (
	"slices"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/event"
	"github.com/dshills/stylus/internal/host"
	"github.com/dshills/stylus/internal/ui"
)

type listener struct {
	target  event.Target
	typ     event.Type
	fn      event.Listener
	capture bool
	removed bool
}

// Listen registers a listener and returns its remover.
func (h *Host) Listen(target event.Target, typ event.Type, l event.Listener, capture bool) func() {
	ln := &listener{target: target, typ: typ, fn: l, capture: capture}
	h.listeners = append(h.listeners, ln)
	return func() {
		ln.removed = true
		if i := slices.Index(h.listeners, ln); i >= 0 {
			h.listeners = slices.Delete(h.listeners, i, i+1)
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (h *Host) ListenerCount() int { return len(h.listeners) }

// Fire dispatches e to target through the capture, target and bubble
// phases. It returns false if a listener prevented the default action.
func (h *Host) Fire(target event.Target, e *event.Event) bool {
	if e.Target == nil {
		e.Target = target
	}
	path := h.path(target)
	last := len(path) - 1
	for i := 0; i < last; i++ {
		if h.invoke(path[i], e, phaseCapture) {
			return !e.DefaultPrevented()
		}
	}
	if h.invoke(target, e, phaseTarget) {
		return !e.DefaultPrevented()
	}
	if bubbles(e.Type) {
		for i := last - 1; i >= 0; i-- {
			if h.invoke(path[i], e, phaseBubble) {
				break
			}
		}
	}
	return !e.DefaultPrevented()
}

type phase int

const (
	phaseCapture phase = iota
	phaseTarget
	phaseBubble
)

// invoke runs the matching listeners on target and reports whether
// propagation was stopped.
func (h *Host) invoke(target event.Target, e *event.Event, p phase) bool {
	var matched []*listener
	for _, l := range h.listeners {
		if l.target != target || l.typ != e.Type {
			continue
		}
		if (p == phaseCapture && !l.capture) || (p == phaseBubble && l.capture) {
			continue
		}
		matched = append(matched, l)
	}
	for _, l := range matched {
		if !l.removed {
			l.fn(e)
		}
	}
	return e.PropagationStopped()
}

func bubbles(t event.Type) bool {
	switch t {
	case event.TypeFocus, event.TypeBlur, event.TypeResize:
		return false
	}
	return true
}

// path returns the propagation path from the outermost ancestor to target.
func (h *Host) path(target event.Target) []event.Target {
	switch t := target.(type) {
	case *html.Node:
		var out []event.Target
		for n := t; n != nil; n = n.Parent {
			out = append(out, n)
		}
		slices.Reverse(out)
		return out
	case *ui.Element:
		var chain []event.Target
		for el := t; el != nil; el = el.Parent {
			chain = append(chain, el)
		}
		slices.Reverse(chain)
		return append(h.path(h.Body()), chain...)
	default:
		return []event.Target{target}
	}
}

// Focused returns the focused target, or nil.
func (h *Host) Focused() event.Target { return h.focused }

// Focus moves focus to target, firing blur on the previously focused
// target and focus on the new one.
func (h *Host) Focus(target event.Target) {
	if target == h.focused {
		return
	}
	prev := h.focused
	h.focused = target
	if prev != nil {
		e := event.New(event.TypeBlur, prev)
		e.RelatedTarget = target
		h.Fire(prev, e)
	}
	if target != nil {
		e := event.New(event.TypeFocus, target)
		e.RelatedTarget = prev
		h.Fire(target, e)
	}
}

// focusTarget returns what receives focus when target is clicked.
func (h *Host) focusTarget(target event.Target) event.Target {
	switch t := target.(type) {
	case *html.Node:
		if root := editingHost(t); root != nil {
			return root
		}
	case *ui.Element:
		switch t.Kind {
		case ui.KindInput, ui.KindCheckbox, ui.KindButton, ui.KindLink:
			return t
		}
	}
	return nil
}

// Click simulates a pointer click on target: focus moves, then mouseup and
// click are dispatched.
func (h *Host) Click(target event.Target) {
	h.Focus(h.focusTarget(target))
	h.Fire(target, event.New(event.TypeMouseUp, target))
	h.Fire(target, event.New(event.TypeClick, target))
}

// ClickSelection selects the text between two offsets of root and clicks
// its editing host.
func (h *Host) ClickSelection(root *html.Node, start, end int) {
	h.Select(root, start, end)
	target := root
	if sel := h.Selection(); sel != nil && sel.Start.Node.Parent != nil {
		target = sel.Start.Node.Parent
	}
	h.Click(target)
}

// Hovered returns the target under the pointer.
func (h *Host) Hovered() event.Target { return h.hovered }

// MoveMouse moves the pointer onto target, firing mouseout on the previous
// target and mouseover on the new one. A nil target leaves the page.
func (h *Host) MoveMouse(target event.Target) {
	if target == h.hovered {
		return
	}
	prev := h.hovered
	h.hovered = target
	if prev != nil {
		e := event.New(event.TypeMouseOut, prev)
		e.RelatedTarget = target
		h.Fire(prev, e)
	}
	if target != nil {
		e := event.New(event.TypeMouseOver, target)
		e.RelatedTarget = prev
		h.Fire(target, e)
	}
}

// keyTarget returns the target of keyboard events.
func (h *Host) keyTarget() event.Target {
	if h.focused != nil {
		return h.focused
	}
	if sel := h.Selection(); sel != nil {
		if root := editingHost(sel.Start.Node); root != nil {
			return root
		}
	}
	return h.Body()
}

// Press simulates a key press: keydown, keypress for character keys and
// Enter, then keyup. Default actions run for events that were not
// prevented.
func (h *Host) Press(key event.Key, r rune, shift bool) {
	target := h.keyTarget()
	mk := func(typ event.Type) *event.Event {
		e := event.NewKey(typ, target, key)
		if r != 0 {
			e.Rune = r
		}
		e.Shift = shift
		return e
	}

	allowed := h.Fire(target, mk(event.TypeKeyDown))
	if el, ok := target.(*ui.Element); ok && allowed && el.Kind == ui.KindInput {
		inputDefault(el, key, r)
	} else if allowed && h.editable(target) {
		switch key {
		case event.KeyBackspace:
			h.ExecCommand(host.CmdDelete, "")
		case event.KeyDelete:
			h.ExecCommand(host.CmdForwardDelete, "")
		case event.KeyEnter, event.KeyRune, event.KeySpace:
			if h.Fire(target, mk(event.TypeKeyPress)) {
				h.pressDefault(key, r, shift)
			}
		}
	}
	h.Fire(target, mk(event.TypeKeyUp))
}

func (h *Host) pressDefault(key event.Key, r rune, shift bool) {
	switch key {
	case event.KeyEnter:
		if shift {
			h.ExecCommand(host.CmdInsertHTML, "<br>")
		} else {
			h.ExecCommand(host.CmdInsertParagraph, "")
		}
	case event.KeySpace:
		h.ExecCommand(host.CmdInsertText, " ")
	default:
		h.ExecCommand(host.CmdInsertText, string(r))
	}
}

func inputDefault(el *ui.Element, key event.Key, r rune) {
	switch key {
	case event.KeyBackspace:
		if runes := []rune(el.Value); len(runes) > 0 {
			el.Value = string(runes[:len(runes)-1])
		}
	case event.KeySpace:
		el.Value += " "
	case event.KeyRune:
		el.Value += string(r)
	}
}

// Key simulates pressing a named key.
func (h *Host) Key(key event.Key) { h.Press(key, 0, false) }

// Type simulates typing text one rune at a time.
func (h *Host) Type(text string) {
	for _, r := range text {
		switch r {
		case ' ':
			h.Press(event.KeySpace, ' ', false)
		case '\n':
			h.Press(event.KeyEnter, 0, false)
		default:
			h.Press(event.KeyRune, r, false)
		}
	}
}

// editable reports whether key defaults apply to target.
func (h *Host) editable(target event.Target) bool {
	n, ok := target.(*html.Node)
	return ok && editingHost(n) != nil
}

// editingHost returns the nearest contenteditable ancestor of n.
func editingHost(n *html.Node) *html.Node {
	return dom.Closest(n, nil, func(el *html.Node) bool {
		return dom.AttrTrue(el, "contenteditable")
	})
}
