// Package ui models the engine-owned interface elements: the toolbar, its
// buttons and forms, and the anchor preview. Hosts render these elements;
// the engine only mutates their state (visibility, classes, values and
// position).
package ui

import (
	"slices"
	"strings"
)

// Kind classifies an element.
type Kind string

// Element kinds.
const (
	KindContainer Kind = "container"
	KindToolbar   Kind = "toolbar"
	KindActions   Kind = "actions"
	KindButton    Kind = "button"
	KindForm      Kind = "form"
	KindInput     Kind = "input"
	KindCheckbox  Kind = "checkbox"
	KindLink      Kind = "link"
	KindPreview   Kind = "preview"
	KindText      Kind = "text"
)

// Element is a node in the engine's UI tree.
type Element struct {
	ID          string
	Kind        Kind
	Name        string
	Label       string
	Value       string
	Placeholder string
	Checked     bool
	Hidden      bool

	// Top and Left are the absolute position in page coordinates.
	Top, Left float64

	Parent   *Element
	Children []*Element

	classes []string
	attrs   map[string]string
}

// New creates an element of the given kind.
func New(kind Kind, name string) *Element {
	return &Element{Kind: kind, Name: name}
}

// Append adds children to e and returns e.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		c.Parent = e
		e.Children = append(e.Children, c)
	}
	return e
}

// RemoveChild detaches c from e.
func (e *Element) RemoveChild(c *Element) {
	if i := slices.Index(e.Children, c); i >= 0 {
		e.Children = slices.Delete(e.Children, i, i+1)
		c.Parent = nil
	}
}

// Contains reports whether o is e or a descendant of e.
func (e *Element) Contains(o *Element) bool {
	for ; o != nil; o = o.Parent {
		if o == e {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor of e.
func (e *Element) Root() *Element {
	for e.Parent != nil {
		e = e.Parent
	}
	return e
}

// Walk calls fn for e and every descendant in document order until fn
// returns false.
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first element in the subtree with the given name.
func (e *Element) Find(name string) *Element {
	var found *Element
	e.Walk(func(el *Element) bool {
		if el.Name == name {
			found = el
			return false
		}
		return true
	})
	return found
}

// FindAll returns every element in the subtree of the given kind.
func (e *Element) FindAll(kind Kind) []*Element {
	var out []*Element
	e.Walk(func(el *Element) bool {
		if el.Kind == kind {
			out = append(out, el)
		}
		return true
	})
	return out
}

// Visible reports whether e and all its ancestors are shown.
func (e *Element) Visible() bool {
	for el := e; el != nil; el = el.Parent {
		if el.Hidden {
			return false
		}
	}
	return true
}

// Show clears the hidden flag.
func (e *Element) Show() { e.Hidden = false }

// Hide sets the hidden flag.
func (e *Element) Hide() { e.Hidden = true }

// Classes returns a copy of the class list.
func (e *Element) Classes() []string {
	return slices.Clone(e.classes)
}

// ClassName returns the class list joined by spaces.
func (e *Element) ClassName() string {
	return strings.Join(e.classes, " ")
}

// HasClass reports whether e carries class.
func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.classes, class)
}

// AddClass adds each whitespace separated token in class.
func (e *Element) AddClass(class string) {
	for _, c := range strings.Fields(class) {
		if !e.HasClass(c) {
			e.classes = append(e.classes, c)
		}
	}
}

// RemoveClass removes each whitespace separated token in class.
func (e *Element) RemoveClass(class string) {
	for _, c := range strings.Fields(class) {
		if i := slices.Index(e.classes, c); i >= 0 {
			e.classes = slices.Delete(e.classes, i, i+1)
		}
	}
}

// ToggleClass adds class when on is true and removes it otherwise.
func (e *Element) ToggleClass(class string, on bool) {
	if on {
		e.AddClass(class)
	} else {
		e.RemoveClass(class)
	}
}

// Attr returns an attribute value.
func (e *Element) Attr(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// SetAttr sets an attribute.
func (e *Element) SetAttr(key, val string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[key] = val
}

// SetPosition sets the absolute position.
func (e *Element) SetPosition(top, left float64) {
	e.Top, e.Left = top, left
}
