package editor

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/command"
	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/host"
	"github.com/dshills/stylus/internal/selection"
)

// Toolbar actions handled by the editor rather than passed to the host.
const (
	ActionAnchor = "anchor"
	ActionImage  = "image"
)

// formatTags are the blocks formatBlock toggles between.
var formatTags = []string{"p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre"}

// ExecAction implements command.Env. "append-<tag>" toggles the block
// format, "anchor" runs the link form, "image" inserts an image whose
// source is the selected text and anything else is a native command.
func (e *Editor) ExecAction(action string) {
	if !e.active {
		return
	}
	e.log.Debug("action %s", action)
	switch {
	case strings.HasPrefix(action, command.AppendPrefix):
		e.execFormatBlock(strings.TrimPrefix(action, command.AppendPrefix))
		e.position()
		e.refreshButtons()
	case action == ActionAnchor:
		if !e.opts.DisableAnchorForm && e.linkForm != nil {
			e.linkForm.Trigger()
		}
	case action == ActionImage:
		e.host.ExecCommand(host.CmdInsertImage, e.sel.Text())
	default:
		e.host.ExecCommand(action, "")
		e.position()
		if strings.HasPrefix(action, "justify") {
			e.refreshButtons()
		}
	}
}

// execFormatBlock formats the selected block as tag. A block already
// formatted as tag goes back to a paragraph; a paragraph inside a
// blockquote is outdented instead of nested.
func (e *Editor) execFormatBlock(tag string) bool {
	tag = strings.ToLower(tag)
	b := e.selectedBlock()
	if tag == "blockquote" && b != nil && dom.Tag(b.Parent) == "blockquote" {
		return e.host.ExecCommand(host.CmdOutdent, "")
	}
	if b != nil && dom.Tag(b) == tag {
		tag = "p"
	}
	return e.host.ExecCommand(host.CmdFormatBlock, tag)
}

// selectedBlock returns the formattable block holding the selection
// start, or nil.
func (e *Editor) selectedBlock() *html.Node {
	r := e.host.Selection()
	if r == nil {
		return nil
	}
	return dom.ClosestTag(r.Start.Node, selection.SurfaceOf(r.Start.Node), formatTags...)
}

func (e *Editor) position() {
	if e.toolbar != nil {
		e.toolbar.Position()
	}
}

func (e *Editor) refreshButtons() {
	if e.toolbar != nil {
		e.toolbar.RefreshButtonStates()
	}
}
