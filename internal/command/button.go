package command

import (
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/host"
	"github.com/dshills/stylus/internal/ui"
)

// AppendPrefix marks block format actions such as "append-h3".
const AppendPrefix = "append-"

// DefaultActiveButtonClass marks active buttons.
const DefaultActiveButtonClass = "medium-editor-button-active"

// ButtonOptions configures the built-in buttons.
type ButtonOptions struct {
	FirstHeader  string
	SecondHeader string
	ActiveClass  string
}

// DefaultButtonOptions returns the stock button options.
func DefaultButtonOptions() ButtonOptions {
	return ButtonOptions{
		FirstHeader:  "h3",
		SecondHeader: "h4",
		ActiveClass:  DefaultActiveButtonClass,
	}
}

// Style is an inline style that means a button is applied. Value may list
// alternatives separated by "|".
type Style struct {
	Prop  string
	Value string
}

// ButtonData describes a built-in button.
type ButtonData struct {
	// Action is the native command or editor action run on click. The
	// header actions are resolved from ButtonOptions.
	Action string

	// Aria is the accessible label.
	Aria string

	// Tags are the element tags that mean the button is applied.
	Tags []string

	// Style is an inline style that means the button is applied.
	Style *Style

	// UseQueryState trusts the host's native state query.
	UseQueryState bool

	// Label is the plain text face; Markup the HTML face.
	Label  string
	Markup string
}

// Buttons describes every built-in button by name.
var Buttons = map[string]ButtonData{
	"bold": {
		Action: host.CmdBold, Aria: "bold", Tags: []string{"b", "strong"},
		Style: &Style{Prop: "font-weight", Value: "700|bold"}, UseQueryState: true,
		Label: "B", Markup: "<b>B</b>",
	},
	"italic": {
		Action: host.CmdItalic, Aria: "italic", Tags: []string{"i", "em"},
		Style: &Style{Prop: "font-style", Value: "italic"}, UseQueryState: true,
		Label: "I", Markup: "<b><i>I</i></b>",
	},
	"underline": {
		Action: host.CmdUnderline, Aria: "underline", Tags: []string{"u"},
		Style: &Style{Prop: "text-decoration", Value: "underline"}, UseQueryState: true,
		Label: "U", Markup: "<b><u>U</u></b>",
	},
	"strikethrough": {
		Action: host.CmdStrikethrough, Aria: "strike through", Tags: []string{"strike"},
		Style: &Style{Prop: "text-decoration", Value: "line-through"}, UseQueryState: true,
		Label: "A", Markup: "<s>A</s>",
	},
	"superscript": {
		Action: host.CmdSuperscript, Aria: "superscript", Tags: []string{"sup"},
		UseQueryState: true, Label: "x1", Markup: "<b>x<sup>1</sup></b>",
	},
	"subscript": {
		Action: host.CmdSubscript, Aria: "subscript", Tags: []string{"sub"},
		UseQueryState: true, Label: "x1", Markup: "<b>x<sub>1</sub></b>",
	},
	"anchor": {
		Action: "anchor", Aria: "link", Tags: []string{"a"},
		Label: "#", Markup: "<b>#</b>",
	},
	"image": {
		Action: "image", Aria: "image", Tags: []string{"img"},
		Label: "image", Markup: "<b>image</b>",
	},
	"header1": {
		Aria: "header type one", Label: "H1", Markup: "<b>H1</b>",
	},
	"header2": {
		Aria: "header type two", Label: "H2", Markup: "<b>H2</b>",
	},
	"quote": {
		Action: AppendPrefix + "blockquote", Aria: "blockquote", Tags: []string{"blockquote"},
		Label: "“", Markup: "<b>&ldquo;</b>",
	},
	"orderedlist": {
		Action: host.CmdInsertOrderedList, Aria: "ordered list", Tags: []string{"ol"},
		UseQueryState: true, Label: "1.", Markup: "<b>1.</b>",
	},
	"unorderedlist": {
		Action: host.CmdInsertUnorderedList, Aria: "unordered list", Tags: []string{"ul"},
		UseQueryState: true, Label: "•", Markup: "<b>&bull;</b>",
	},
	"pre": {
		Action: AppendPrefix + "pre", Aria: "preformatted text", Tags: []string{"pre"},
		Label: "0101", Markup: "<b>0101</b>",
	},
	"indent": {
		Action: host.CmdIndent, Aria: "indent",
		Label: "→", Markup: "<b>&rarr;</b>",
	},
	"outdent": {
		Action: host.CmdOutdent, Aria: "outdent",
		Label: "←", Markup: "<b>&larr;</b>",
	},
	"justifyCenter": {
		Action: host.CmdJustifyCenter, Aria: "center justify",
		Style: &Style{Prop: "text-align", Value: "center"}, Label: "C", Markup: "<b>C</b>",
	},
	"justifyFull": {
		Action: host.CmdJustifyFull, Aria: "full justify",
		Style: &Style{Prop: "text-align", Value: "justify"}, Label: "J", Markup: "<b>J</b>",
	},
	"justifyLeft": {
		Action: host.CmdJustifyLeft, Aria: "left justify",
		Style: &Style{Prop: "text-align", Value: "left"}, Label: "L", Markup: "<b>L</b>",
	},
	"justifyRight": {
		Action: host.CmdJustifyRight, Aria: "right justify",
		Style: &Style{Prop: "text-align", Value: "right"}, Label: "R", Markup: "<b>R</b>",
	},
}

// DefaultButton is a built-in toolbar button.
type DefaultButton struct {
	name        string
	data        ButtonData
	activeClass string
	env         Env
	el          *ui.Element
}

// NewDefaultButton creates the built-in button called name. It returns
// false for unknown names.
func NewDefaultButton(name string, opts ButtonOptions) (*DefaultButton, bool) {
	data, ok := Buttons[name]
	if !ok {
		return nil, false
	}
	switch name {
	case "header1":
		data.Action = AppendPrefix + opts.FirstHeader
		data.Tags = []string{opts.FirstHeader}
	case "header2":
		data.Action = AppendPrefix + opts.SecondHeader
		data.Tags = []string{opts.SecondHeader}
	}
	if opts.ActiveClass == "" {
		opts.ActiveClass = DefaultActiveButtonClass
	}
	return &DefaultButton{name: name, data: data, activeClass: opts.ActiveClass}, true
}

// Name implements Command.
func (b *DefaultButton) Name() string { return b.name }

// Action returns the action run on click.
func (b *DefaultButton) Action() string { return b.data.Action }

// Init implements Initializer.
func (b *DefaultButton) Init(env Env) error {
	b.env = env
	return nil
}

// Button implements ButtonProvider. The element is created once.
func (b *DefaultButton) Button() *ui.Element {
	if b.el != nil {
		return b.el
	}
	el := ui.New(ui.KindButton, b.name)
	el.Label = b.data.Label
	el.AddClass("medium-editor-action")
	el.AddClass("medium-editor-action-" + strings.ToLower(b.name))
	el.SetAttr("data-action", b.data.Action)
	el.SetAttr("aria-label", b.data.Aria)
	el.SetAttr("data-markup", b.data.Markup)
	if len(b.data.Tags) > 0 {
		el.SetAttr("data-element", b.data.Tags[0])
	}
	b.el = el
	return el
}

// QueryState implements StateQuerier. Buttons that do not use the native
// query report unsupported.
func (b *DefaultButton) QueryState() (active, supported bool) {
	if !b.data.UseQueryState || b.env == nil {
		return false, false
	}
	return b.env.Host().QueryCommandState(b.data.Action)
}

// IsActive implements Toggler.
func (b *DefaultButton) IsActive() bool {
	return b.Button().HasClass(b.activeClass)
}

// Activate implements Toggler.
func (b *DefaultButton) Activate() {
	b.Button().AddClass(b.activeClass)
}

// Deactivate implements Toggler.
func (b *DefaultButton) Deactivate() {
	b.Button().RemoveClass(b.activeClass)
}

// ShouldActivate implements ActivationChecker. A node matches when its tag
// is one of the button's tags or its inline style carries the button's
// style value.
func (b *DefaultButton) ShouldActivate(node *html.Node) bool {
	if slices.Contains(b.data.Tags, dom.Tag(node)) {
		return true
	}
	if b.data.Style == nil {
		return false
	}
	v, ok := dom.StyleProp(node, b.data.Style.Prop)
	if !ok {
		return false
	}
	return slices.Contains(strings.Split(b.data.Style.Value, "|"), v)
}

// HandleClick implements Clicker.
func (b *DefaultButton) HandleClick() {
	if b.env != nil {
		b.env.ExecAction(b.data.Action)
	}
}

var (
	_ ButtonProvider    = (*DefaultButton)(nil)
	_ StateQuerier      = (*DefaultButton)(nil)
	_ Toggler           = (*DefaultButton)(nil)
	_ ActivationChecker = (*DefaultButton)(nil)
	_ Initializer       = (*DefaultButton)(nil)
	_ Clicker           = (*DefaultButton)(nil)
)
