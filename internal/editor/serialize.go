package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/stylus/internal/dom"
)

// ErrInvalidJSON is returned by Load for malformed input.
var ErrInvalidJSON = errors.New("editor: invalid content JSON")

// Content is the serialized state of one surface.
type Content struct {
	Value string `json:"value"`
}

// Serialize returns the trimmed inner HTML of each surface, keyed by the
// surface's id or "element-<index>".
func (e *Editor) Serialize() map[string]Content {
	out := make(map[string]Content, len(e.elements))
	for i, el := range e.elements {
		out[e.surfaceKey(i)] = Content{Value: strings.TrimSpace(dom.InnerHTML(el))}
	}
	return out
}

// SerializeJSON encodes Serialize as {"key":{"value":"..."}} in surface
// order.
func (e *Editor) SerializeJSON() ([]byte, error) {
	data := []byte("{}")
	for i, el := range e.elements {
		var err error
		data, err = sjson.SetBytes(data, escapePath(e.surfaceKey(i))+".value", strings.TrimSpace(dom.InnerHTML(el)))
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", e.surfaceKey(i), err)
		}
	}
	return data, nil
}

// Load replaces the content of every surface named in data, in the format
// written by SerializeJSON. It returns the number of surfaces updated.
func (e *Editor) Load(data []byte) (int, error) {
	if !gjson.ValidBytes(data) {
		return 0, ErrInvalidJSON
	}
	n := 0
	for i, el := range e.elements {
		v := gjson.GetBytes(data, escapePath(e.surfaceKey(i))+".value")
		if !v.Exists() {
			continue
		}
		if err := dom.SetInnerHTML(el, v.String()); err != nil {
			return n, fmt.Errorf("load %s: %w", e.surfaceKey(i), err)
		}
		n++
	}
	if n > 0 {
		e.log.Debug("loaded %d surfaces", n)
	}
	return n, nil
}

// escapePath escapes the path syntax characters of gjson and sjson in a
// single key.
func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
