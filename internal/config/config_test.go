package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	o := Default()
	if !o.AllowMultiParagraphSelection {
		t.Error("AllowMultiParagraphSelection should default to true")
	}
	if o.AnchorPreviewHideDelay != 500*time.Millisecond {
		t.Errorf("AnchorPreviewHideDelay = %v", o.AnchorPreviewHideDelay)
	}
	if o.DiffTop != -10 || o.DiffLeft != 0 || o.Delay != 0 {
		t.Errorf("offsets = %v/%v delay = %v", o.DiffLeft, o.DiffTop, o.Delay)
	}
	if strings.Join(o.Buttons, ",") != "bold,italic,underline,anchor,header1,header2,quote" {
		t.Errorf("Buttons = %v", o.Buttons)
	}
	if o.FirstHeader != "h3" || o.SecondHeader != "h4" || o.AnchorButtonClass != "btn" {
		t.Errorf("headers/class = %s %s %s", o.FirstHeader, o.SecondHeader, o.AnchorButtonClass)
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		check  func(Options) bool
	}{
		{"camel case bool", map[string]any{"staticToolbar": true}, func(o Options) bool { return o.StaticToolbar }},
		{"snake case bool", map[string]any{"disable_return": true}, func(o Options) bool { return o.DisableReturn }},
		{"kebab case string", map[string]any{"first-header": "h2"}, func(o Options) bool { return o.FirstHeader == "h2" }},
		{"int milliseconds", map[string]any{"delay": 250}, func(o Options) bool { return o.Delay == 250*time.Millisecond }},
		{"float milliseconds", map[string]any{"delay": 12.0}, func(o Options) bool { return o.Delay == 12*time.Millisecond }},
		{"duration string", map[string]any{"anchorPreviewHideDelay": "1s"}, func(o Options) bool { return o.AnchorPreviewHideDelay == time.Second }},
		{"int64 offset", map[string]any{"diffLeft": int64(5)}, func(o Options) bool { return o.DiffLeft == 5 }},
		{"button list", map[string]any{"buttons": []any{"bold", "anchor"}}, func(o Options) bool { return len(o.Buttons) == 2 && o.Buttons[1] == "anchor" }},
		{"align", map[string]any{"toolbarAlign": "Right"}, func(o Options) bool { return o.ToolbarAlign == AlignRight }},
		{"extensions", map[string]any{"extensions": map[string]any{"hl": "hl.lua"}}, func(o Options) bool { return o.Extensions["hl"] == "hl.lua" }},
		{"unknown ignored", map[string]any{"noSuchOption": 1}, func(o Options) bool { return o.FirstHeader == "h3" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := FromMap(tt.values)
			if err != nil {
				t.Fatalf("FromMap() error = %v", err)
			}
			if !tt.check(o) {
				t.Errorf("option not applied: %+v", o)
			}
		})
	}
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"bool as string", map[string]any{"staticToolbar": "yes"}},
		{"string as number", map[string]any{"firstHeader": 3}},
		{"bad duration", map[string]any{"delay": "soon"}},
		{"negative duration", map[string]any{"delay": -5}},
		{"mixed list", map[string]any{"buttons": []any{"bold", 1}}},
		{"bad align", map[string]any{"toolbarAlign": "top"}},
		{"extension not a table", map[string]any{"extensions": "x.lua"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.values)
			var optErr *OptionError
			if !errors.As(err, &optErr) {
				t.Fatalf("FromMap() error = %v, want *OptionError", err)
			}
			if !errors.Is(err, ErrInvalidOption) {
				t.Errorf("error %v does not wrap ErrInvalidOption", err)
			}
		})
	}
}

func TestKnownAndNormalize(t *testing.T) {
	if NormalizeKey("Anchor_Preview-Hide_Delay") != "anchorpreviewhidedelay" {
		t.Errorf("NormalizeKey = %q", NormalizeKey("Anchor_Preview-Hide_Delay"))
	}
	if !Known("target_blank") || Known("target_bland") {
		t.Error("Known mismatch")
	}
}

func TestClone(t *testing.T) {
	a := Default()
	a.Extensions = map[string]string{"x": "x.lua"}
	b := a.Clone()
	b.Buttons[0] = "changed"
	b.Extensions["x"] = "y.lua"
	if a.Buttons[0] != "bold" || a.Extensions["x"] != "x.lua" {
		t.Error("Clone shares state with the original")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Formats(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "stylus.toml", "static_toolbar = true\ndelay = 100\nbuttons = [\"bold\", \"quote\"]\n[extensions]\nhl = \"hl.lua\"\n"},
		{"yaml", "stylus.yaml", "staticToolbar: true\ndelay: 100\nbuttons: [bold, quote]\nextensions:\n  hl: hl.lua\n"},
		{"json", "stylus.json", `{"staticToolbar": true, "delay": 100, "buttons": ["bold", "quote"], "extensions": {"hl": "hl.lua"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			o, err := Load(path, nil)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !o.StaticToolbar || o.Delay != 100*time.Millisecond {
				t.Errorf("StaticToolbar = %v, Delay = %v", o.StaticToolbar, o.Delay)
			}
			if len(o.Buttons) != 2 || o.Buttons[1] != "quote" {
				t.Errorf("Buttons = %v", o.Buttons)
			}
			if o.Extensions["hl"] != "hl.lua" {
				t.Errorf("Extensions = %v", o.Extensions)
			}
		})
	}
}

func TestLoad_OverridesAndMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "c.toml", "delay = 100\nfirstHeader = \"h1\"\n")

	o, err := Load(path, map[string]any{"delay": 5})
	if err != nil {
		t.Fatal(err)
	}
	if o.Delay != 5*time.Millisecond || o.FirstHeader != "h1" {
		t.Errorf("Delay = %v, FirstHeader = %q", o.Delay, o.FirstHeader)
	}

	o, err = Load(filepath.Join(dir, "missing.toml"), nil)
	if err != nil {
		t.Fatalf("Load(missing) error = %v", err)
	}
	if o.FirstHeader != "h3" {
		t.Error("missing file should yield defaults")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "c.ini"), nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Load(.ini) error = %v, want ErrUnknownFormat", err)
	}

	var parseErr *ParseError
	for _, f := range []struct{ name, content string }{
		{"bad.toml", "delay = = 1"},
		{"bad.yaml", "delay: [1"},
		{"bad.json", `{"delay": `},
		{"array.json", `[1, 2]`},
	} {
		path := writeFile(t, dir, f.name, f.content)
		if _, err := Load(path, nil); !errors.As(err, &parseErr) {
			t.Errorf("Load(%s) error = %v, want *ParseError", f.name, err)
		}
	}
}

func TestLoadReader(t *testing.T) {
	m, err := LoadReader(FormatYAML, strings.NewReader("diffTop: -20\n"))
	if err != nil {
		t.Fatal(err)
	}
	o, err := FromMap(m)
	if err != nil || o.DiffTop != -20 {
		t.Errorf("DiffTop = %v, err = %v", o.DiffTop, err)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{"a": 1, "nested": map[string]any{"x": 1, "y": 2}}
	src := map[string]any{"b": 2, "nested": map[string]any{"y": 3}}
	got := DeepMerge(dst, src)

	nested := got["nested"].(map[string]any)
	if got["a"] != 1 || got["b"] != 2 || nested["x"] != 1 || nested["y"] != 3 {
		t.Errorf("DeepMerge = %v", got)
	}
	src["b"] = 5
	if got["b"] != 2 {
		t.Error("DeepMerge should copy source values")
	}
	if DeepMerge(nil, nil) == nil {
		t.Error("DeepMerge(nil, nil) should return an empty map")
	}
}

func TestDeepMerge_Spellings(t *testing.T) {
	dst := map[string]any{
		"anchorTarget": false,
		"extensions":   map[string]any{"hl": "hl.lua"},
	}
	src := map[string]any{
		"anchor_target": true,
		"Extensions":    map[string]any{"Quote": "q.lua"},
	}
	got := DeepMerge(dst, src)
	if _, ok := got["anchorTarget"]; ok || got["anchor_target"] != true {
		t.Errorf("option spellings not folded: %v", got)
	}
	exts, ok := got["Extensions"].(map[string]any)
	if !ok || len(exts) != 2 || exts["hl"] != "hl.lua" || exts["Quote"] != "q.lua" {
		t.Errorf("extensions = %v, want both tables merged", got["Extensions"])
	}
	o, err := FromMap(got)
	if err != nil || !o.AnchorTarget || len(o.Extensions) != 2 {
		t.Errorf("FromMap = %+v, %v", o, err)
	}
}
