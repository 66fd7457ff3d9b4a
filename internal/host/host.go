// Package host defines the platform the editing engine runs on.
//
// The engine never owns the document. A Host owns the HTML tree, the live
// selection, native editing commands, geometry, event delivery and timers;
// the engine observes and drives it through this interface.
package host

import (
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/event"
	"github.com/dshills/stylus/internal/sched"
	"github.com/dshills/stylus/internal/ui"
)

// Native command names understood by hosts.
const (
	CmdBold                = "bold"
	CmdItalic              = "italic"
	CmdUnderline           = "underline"
	CmdStrikethrough       = "strikethrough"
	CmdSuperscript         = "superscript"
	CmdSubscript           = "subscript"
	CmdCreateLink          = "createLink"
	CmdUnlink              = "unlink"
	CmdFormatBlock         = "formatBlock"
	CmdIndent              = "indent"
	CmdOutdent             = "outdent"
	CmdInsertHTML          = "insertHTML"
	CmdInsertText          = "insertText"
	CmdInsertImage         = "insertImage"
	CmdInsertParagraph     = "insertParagraph"
	CmdDelete              = "delete"
	CmdForwardDelete       = "forwardDelete"
	CmdInsertOrderedList   = "insertOrderedList"
	CmdInsertUnorderedList = "insertUnorderedList"
	CmdJustifyLeft         = "justifyLeft"
	CmdJustifyCenter       = "justifyCenter"
	CmdJustifyRight        = "justifyRight"
	CmdJustifyFull         = "justifyFull"
)

// Host is the platform adapter used by the engine.
type Host interface {
	event.Listenable

	// Document returns the document node.
	Document() *html.Node

	// Selection returns the current selection range, or nil when there is
	// none. The returned range is a copy.
	Selection() *dom.Range

	// SetSelection replaces the selection. A nil range clears it.
	SetSelection(r *dom.Range)

	// ExecCommand runs a native editing command over the selection. The
	// result reports whether the host handled the command; hosts are not
	// required to make this observable.
	ExecCommand(name, value string) bool

	// QueryCommandState reports whether a command is active for the current
	// selection. supported is false when the host cannot answer.
	QueryCommandState(name string) (active, supported bool)

	// Fire dispatches a synthetic event to target and reports whether the
	// default action was allowed.
	Fire(target event.Target, e *event.Event) bool

	// Focus moves input focus to target.
	Focus(target event.Target)

	// Mount attaches an engine-owned UI tree to the page; Unmount detaches it.
	Mount(e *ui.Element)
	Unmount(e *ui.Element)

	// RangeRect returns the bounding rectangle of r in viewport coordinates.
	RangeRect(r *dom.Range) dom.Rect

	// ElementRect returns the bounding rectangle of n in viewport coordinates.
	ElementRect(n *html.Node) dom.Rect

	// Viewport returns the window size and scroll offsets.
	Viewport() dom.Viewport

	// Measure returns the rendered size of a UI element.
	Measure(e *ui.Element) dom.Size

	// Scheduler returns the scheduler for deferred callbacks.
	Scheduler() sched.Scheduler
}
