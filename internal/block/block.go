// Package block decides how editing keys behave at block boundaries.
//
// The decision functions are pure: they read a Context built from the
// caret position and return an Action. Apply carries an Action out against
// a host.
package block

import (
	"regexp"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/event"
	"github.com/dshills/stylus/internal/host"
)

// Per-surface overrides.
const (
	DisableReturnAttr       = "data-disable-return"
	DisableDoubleReturnAttr = "data-disable-double-return"
)

// TabIndent is inserted for Tab inside preformatted blocks.
const TabIndent = "    "

var (
	emptyPattern   = regexp.MustCompile(`(?i)^(\s+|<br\s*/?>)?$`)
	headingPattern = regexp.MustCompile(`^h\d$`)
)

// Kind identifies what an Action does.
type Kind int

// Action kinds.
const (
	None Kind = iota
	// RemovePrevious deletes Target, the empty block before the caret's
	// heading.
	RemovePrevious
	// InsertParagraphBefore inserts an empty paragraph before Target.
	InsertParagraphBefore
	// RemoveCurrent deletes Target and moves the caret to the start of
	// Next.
	RemoveCurrent
	// Exec runs the native command Command with Value.
	Exec
	// Suppress only cancels the key's default behaviour.
	Suppress
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case RemovePrevious:
		return "remove-previous"
	case InsertParagraphBefore:
		return "insert-paragraph-before"
	case RemoveCurrent:
		return "remove-current"
	case Exec:
		return "exec"
	case Suppress:
		return "suppress"
	default:
		return "unknown"
	}
}

// Action is the outcome of a decision.
type Action struct {
	Kind    Kind
	Target  *html.Node
	Next    *html.Node
	Command string
	Value   string
	// PreventDefault reports whether the key's native behaviour must be
	// cancelled.
	PreventDefault bool
}

// Context describes the caret when a key arrives.
type Context struct {
	Key   event.Key
	Shift bool
	// Node is the element holding the selection start.
	Node *html.Node
	// Surface is the editable surface containing Node.
	Surface *html.Node
	// AtStart reports whether the caret sits at Node's first character.
	AtStart bool

	DisableReturn       bool
	DisableDoubleReturn bool
}

// NewContext builds a Context from a key and the current selection.
// Surface attributes extend the disable flags.
func NewContext(key event.Key, shift bool, r *dom.Range, surface *html.Node, disableReturn, disableDoubleReturn bool) Context {
	c := Context{
		Key:                 key,
		Shift:               shift,
		Surface:             surface,
		DisableReturn:       disableReturn || dom.AttrTrue(surface, DisableReturnAttr),
		DisableDoubleReturn: disableDoubleReturn || dom.AttrTrue(surface, DisableDoubleReturnAttr),
	}
	if r == nil || r.Start.Node == nil {
		return c
	}
	c.Node = r.Start.Node
	if dom.IsText(c.Node) {
		c.Node = c.Node.Parent
	}
	if off, ok := dom.TextOffset(c.Node, r.Start); ok {
		c.AtStart = off == 0
	}
	return c
}

// IsHeading reports whether n is a heading element.
func IsHeading(n *html.Node) bool {
	return dom.IsElement(n) && headingPattern.MatchString(dom.Tag(n))
}

// IsEmpty reports whether n holds nothing but whitespace or a single line
// break.
func IsEmpty(n *html.Node) bool {
	if n == nil {
		return false
	}
	return emptyPattern.MatchString(dom.InnerHTML(n))
}

// InListItem reports whether n is, or sits inside, a list item below
// surface.
func InListItem(n, surface *html.Node) bool {
	return dom.ClosestTag(n, surface, "li") != nil
}

// Decide applies the boundary table for Backspace, Enter and Delete.
//
//   - Backspace at the start of a heading whose previous sibling is empty
//     removes that sibling.
//   - Enter at the start of a heading with a previous sibling inserts an
//     empty paragraph before the heading.
//   - Delete in an empty non-heading block between two siblings, the next
//     being a heading, removes the block and moves the caret into the
//     heading.
func Decide(c Context) Action {
	n := c.Node
	if n == nil || n == c.Surface {
		return Action{}
	}
	prev := dom.PrevElementSibling(n)
	next := dom.NextElementSibling(n)

	switch c.Key {
	case event.KeyBackspace, event.KeyEnter:
		if prev == nil || !IsHeading(n) || !c.AtStart {
			return Action{}
		}
		if c.Key == event.KeyBackspace {
			if IsEmpty(prev) {
				return Action{Kind: RemovePrevious, Target: prev, PreventDefault: true}
			}
			return Action{}
		}
		return Action{Kind: InsertParagraphBefore, Target: n, PreventDefault: true}
	case event.KeyDelete:
		if prev != nil && next != nil && !IsHeading(n) && IsEmpty(n) && IsHeading(next) {
			return Action{Kind: RemoveCurrent, Target: n, Next: next, PreventDefault: true}
		}
	}
	return Action{}
}

// KeyDown decides a keydown: Tab handling in preformatted blocks and list
// items, then the boundary table.
func KeyDown(c Context) Action {
	switch c.Key {
	case event.KeyTab:
		if c.Node == nil {
			return Action{}
		}
		if dom.Tag(c.Node) == "pre" {
			return Action{Kind: Exec, Command: host.CmdInsertHTML, Value: TabIndent, PreventDefault: true}
		}
		if InListItem(c.Node, c.Surface) {
			cmd := host.CmdIndent
			if c.Shift {
				cmd = host.CmdOutdent
			}
			return Action{Kind: Exec, Command: cmd, PreventDefault: true}
		}
	case event.KeyBackspace, event.KeyDelete, event.KeyEnter:
		return Decide(c)
	}
	return Action{}
}

// KeyPress decides a keypress: disabled returns are suppressed and a
// space typed right after a link ends the link.
func KeyPress(c Context) Action {
	switch c.Key {
	case event.KeyEnter:
		if c.DisableReturn {
			return Action{Kind: Suppress, PreventDefault: true}
		}
		if c.DisableDoubleReturn && emptyLine(c.Node, c.Surface) {
			return Action{Kind: Suppress, PreventDefault: true}
		}
	case event.KeySpace:
		if dom.Tag(c.Node) == "a" {
			return Action{Kind: Exec, Command: host.CmdUnlink}
		}
	}
	return Action{}
}

// KeyUp decides the follow-up formatting after a key was handled. An
// empty surface gets a paragraph; Enter outside headings and lists turns
// the new block into a paragraph and ends a link the caret was carried
// into.
func KeyUp(c Context) []Action {
	var out []Action
	if c.Node != nil && c.Node == c.Surface && !dom.HasElementChildren(c.Node) && !c.DisableReturn {
		out = append(out, formatParagraph())
	}
	if c.Key != event.KeyEnter || c.DisableReturn || c.Node == nil {
		return out
	}
	if dom.Tag(c.Node) == "li" || InListItem(c.Node, c.Surface) {
		return out
	}
	if !c.Shift && !IsHeading(c.Node) && !hasFormat(out) {
		out = append(out, formatParagraph())
	}
	if dom.Tag(c.Node) == "a" {
		out = append(out, Action{Kind: Exec, Command: host.CmdUnlink})
	}
	return out
}

func formatParagraph() Action {
	return Action{Kind: Exec, Command: host.CmdFormatBlock, Value: "p"}
}

func hasFormat(actions []Action) bool {
	for _, a := range actions {
		if a.Command == host.CmdFormatBlock {
			return true
		}
	}
	return false
}

// emptyLine reports whether the caret block holds no text, the state a
// second consecutive Enter would act on.
func emptyLine(n, surface *html.Node) bool {
	if n == nil || n == surface {
		return false
	}
	return IsEmpty(n)
}
