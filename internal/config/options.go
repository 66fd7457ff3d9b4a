package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Toolbar alignments for static toolbars.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Options controls an editor instance.
type Options struct {
	// Selection behaviour.
	AllowMultiParagraphSelection bool
	UpdateOnEmptySelection       bool
	StandardizeSelectionStart    bool

	// Timings.
	Delay                  time.Duration
	AnchorPreviewHideDelay time.Duration

	// Toolbar content.
	Buttons           []string
	FirstHeader       string
	SecondHeader      string
	ActiveButtonClass string
	FirstButtonClass  string
	LastButtonClass   string

	// Toolbar layout.
	StaticToolbar bool
	StickyToolbar bool
	ToolbarAlign  string
	DiffLeft      float64
	DiffTop       float64

	// Link form.
	AnchorInputPlaceholder   string
	AnchorInputCheckboxLabel string
	CheckLinkFormat          bool
	TargetBlank              bool
	AnchorTarget             bool
	AnchorButton             bool
	AnchorButtonClass        string

	// Toggles.
	DisableReturn       bool
	DisableDoubleReturn bool
	DisableToolbar      bool
	DisableEditing      bool
	DisableAnchorForm   bool
	DisablePlaceholders bool

	// Extensions maps extension names to Lua script paths.
	Extensions map[string]string
}

// Default returns the default options.
func Default() Options {
	return Options{
		AllowMultiParagraphSelection: true,
		AnchorPreviewHideDelay:       500 * time.Millisecond,
		Buttons:                      []string{"bold", "italic", "underline", "anchor", "header1", "header2", "quote"},
		FirstHeader:                  "h3",
		SecondHeader:                 "h4",
		ActiveButtonClass:            "medium-editor-button-active",
		FirstButtonClass:             "medium-editor-button-first",
		LastButtonClass:              "medium-editor-button-last",
		ToolbarAlign:                 AlignCenter,
		DiffTop:                      -10,
		AnchorInputPlaceholder:       "Paste or type a link",
		AnchorInputCheckboxLabel:     "Open in new window",
		AnchorButtonClass:            "btn",
	}
}

// Clone returns a deep copy of o.
func (o Options) Clone() Options {
	o.Buttons = slices.Clone(o.Buttons)
	o.Extensions = maps.Clone(o.Extensions)
	return o
}

type setter func(o *Options, v any) error

var fields = map[string]setter{
	"allowmultiparagraphselection": boolField(func(o *Options) *bool { return &o.AllowMultiParagraphSelection }),
	"updateonemptyselection":       boolField(func(o *Options) *bool { return &o.UpdateOnEmptySelection }),
	"standardizeselectionstart":    boolField(func(o *Options) *bool { return &o.StandardizeSelectionStart }),
	"delay":                        durationField(func(o *Options) *time.Duration { return &o.Delay }),
	"anchorpreviewhidedelay":       durationField(func(o *Options) *time.Duration { return &o.AnchorPreviewHideDelay }),
	"buttons":                      stringsField(func(o *Options) *[]string { return &o.Buttons }),
	"firstheader":                  stringField(func(o *Options) *string { return &o.FirstHeader }),
	"secondheader":                 stringField(func(o *Options) *string { return &o.SecondHeader }),
	"activebuttonclass":            stringField(func(o *Options) *string { return &o.ActiveButtonClass }),
	"firstbuttonclass":             stringField(func(o *Options) *string { return &o.FirstButtonClass }),
	"lastbuttonclass":              stringField(func(o *Options) *string { return &o.LastButtonClass }),
	"statictoolbar":                boolField(func(o *Options) *bool { return &o.StaticToolbar }),
	"stickytoolbar":                boolField(func(o *Options) *bool { return &o.StickyToolbar }),
	"toolbaralign":                 alignField,
	"diffleft":                     floatField(func(o *Options) *float64 { return &o.DiffLeft }),
	"difftop":                      floatField(func(o *Options) *float64 { return &o.DiffTop }),
	"anchorinputplaceholder":       stringField(func(o *Options) *string { return &o.AnchorInputPlaceholder }),
	"anchorinputcheckboxlabel":     stringField(func(o *Options) *string { return &o.AnchorInputCheckboxLabel }),
	"checklinkformat":              boolField(func(o *Options) *bool { return &o.CheckLinkFormat }),
	"targetblank":                  boolField(func(o *Options) *bool { return &o.TargetBlank }),
	"anchortarget":                 boolField(func(o *Options) *bool { return &o.AnchorTarget }),
	"anchorbutton":                 boolField(func(o *Options) *bool { return &o.AnchorButton }),
	"anchorbuttonclass":            stringField(func(o *Options) *string { return &o.AnchorButtonClass }),
	"disablereturn":                boolField(func(o *Options) *bool { return &o.DisableReturn }),
	"disabledoublereturn":          boolField(func(o *Options) *bool { return &o.DisableDoubleReturn }),
	"disabletoolbar":               boolField(func(o *Options) *bool { return &o.DisableToolbar }),
	"disableediting":               boolField(func(o *Options) *bool { return &o.DisableEditing }),
	"disableanchorform":            boolField(func(o *Options) *bool { return &o.DisableAnchorForm }),
	"disableplaceholders":          boolField(func(o *Options) *bool { return &o.DisablePlaceholders }),
	"extensions":                   extensionsField,
}

// NormalizeKey folds an option name to its lookup form.
func NormalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.NewReplacer("_", "", "-", "").Replace(key)
}

// Known reports whether key names an option.
func Known(key string) bool {
	_, ok := fields[NormalizeKey(key)]
	return ok
}

// Apply sets every recognised option in values. Unknown keys are ignored.
// Keys are applied in sorted order and the first bad value stops the
// update with an *OptionError; options applied before it keep their new
// values.
func (o *Options) Apply(values map[string]any) error {
	keys := slices.Sorted(maps.Keys(values))
	for _, key := range keys {
		set, ok := fields[NormalizeKey(key)]
		if !ok {
			continue
		}
		if err := set(o, values[key]); err != nil {
			return &OptionError{Key: key, Value: values[key], Err: err}
		}
	}
	return nil
}

// FromMap returns the defaults with values applied.
func FromMap(values map[string]any) (Options, error) {
	o := Default()
	if err := o.Apply(values); err != nil {
		return Options{}, err
	}
	return o, nil
}

func wrongType(want string, v any) error {
	return fmt.Errorf("%w: want %s, got %T", ErrInvalidOption, want, v)
}

func boolField(get func(*Options) *bool) setter {
	return func(o *Options, v any) error {
		b, ok := v.(bool)
		if !ok {
			return wrongType("bool", v)
		}
		*get(o) = b
		return nil
	}
}

func stringField(get func(*Options) *string) setter {
	return func(o *Options, v any) error {
		s, ok := v.(string)
		if !ok {
			return wrongType("string", v)
		}
		*get(o) = s
		return nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func floatField(get func(*Options) *float64) setter {
	return func(o *Options, v any) error {
		f, ok := toFloat(v)
		if !ok {
			return wrongType("number", v)
		}
		*get(o) = f
		return nil
	}
}

func durationField(get func(*Options) *time.Duration) setter {
	return func(o *Options, v any) error {
		var d time.Duration
		if s, ok := v.(string); ok {
			parsed, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidOption, err)
			}
			d = parsed
		} else {
			ms, ok := toFloat(v)
			if !ok {
				return wrongType("milliseconds or duration string", v)
			}
			d = time.Duration(ms * float64(time.Millisecond))
		}
		if d < 0 {
			return fmt.Errorf("%w: negative duration %v", ErrInvalidOption, d)
		}
		*get(o) = d
		return nil
	}
}

func stringsField(get func(*Options) *[]string) setter {
	return func(o *Options, v any) error {
		switch list := v.(type) {
		case []string:
			*get(o) = slices.Clone(list)
			return nil
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return wrongType("list of strings", v)
				}
				out = append(out, s)
			}
			*get(o) = out
			return nil
		}
		return wrongType("list of strings", v)
	}
}

func alignField(o *Options, v any) error {
	s, ok := v.(string)
	if !ok {
		return wrongType("string", v)
	}
	switch s = strings.ToLower(s); s {
	case AlignLeft, AlignCenter, AlignRight:
		o.ToolbarAlign = s
		return nil
	}
	return fmt.Errorf("%w: toolbar align must be left, center or right", ErrInvalidOption)
}

func extensionsField(o *Options, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return wrongType("table of script paths", v)
	}
	out := make(map[string]string, len(m))
	for name, val := range m {
		s, ok := val.(string)
		if !ok {
			return wrongType("script path string", val)
		}
		out[name] = s
	}
	o.Extensions = out
	return nil
}
