package block

import (
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/host"
)

// Apply carries out a on h. It reports whether anything changed.
func Apply(h host.Host, a Action) bool {
	switch a.Kind {
	case RemovePrevious:
		if a.Target == nil || a.Target.Parent == nil {
			return false
		}
		dom.Remove(a.Target)
		return true
	case InsertParagraphBefore:
		if a.Target == nil || a.Target.Parent == nil {
			return false
		}
		p := dom.NewElement("p")
		p.AppendChild(dom.NewElement("br"))
		a.Target.Parent.InsertBefore(p, a.Target)
		return true
	case RemoveCurrent:
		if a.Target == nil || a.Target.Parent == nil || a.Next == nil {
			return false
		}
		dom.Remove(a.Target)
		h.SetSelection(caretAtStart(a.Next))
		return true
	case Exec:
		return h.ExecCommand(a.Command, a.Value)
	}
	return false
}

// ApplyAll applies each action in order and reports whether any changed
// the surface.
func ApplyAll(h host.Host, actions []Action) bool {
	changed := false
	for _, a := range actions {
		if Apply(h, a) {
			changed = true
		}
	}
	return changed
}

func caretAtStart(n *html.Node) *dom.Range {
	p := dom.PointAt(n, 0)
	return dom.Caret(p.Node, p.Offset)
}
