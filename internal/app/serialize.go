package app

import (
	"fmt"
	"io"

	"github.com/tidwall/pretty"

	"github.com/dshills/stylus/internal/config"
	"github.com/dshills/stylus/internal/editor"
	"github.com/dshills/stylus/internal/host/memhost"
)

// Headless runs the engine over a document without a screen, for batch
// commands.
type Headless struct {
	Doc    *Document
	Editor *editor.Editor
}

// OpenHeadless opens path and attaches an engine to the elements matching
// selector, with the options in configPath.
func OpenHeadless(path, configPath, selector string) (*Headless, error) {
	doc, err := OpenDocument(path)
	if err != nil {
		return nil, err
	}
	o, err := config.Load(configPath, nil)
	if err != nil {
		return nil, err
	}
	surfaces := doc.Surfaces(selector)
	if len(surfaces) == 0 {
		return nil, NewOperationError("open", doc.Path, ErrNoSurfaces)
	}
	ed, err := editor.New(memhost.New(doc.Root), surfaces, editor.WithOptions(o))
	if err != nil {
		return nil, err
	}
	return &Headless{Doc: doc, Editor: ed}, nil
}

// Serialize writes the content of every surface as JSON.
func (h *Headless) Serialize(w io.Writer, indent bool) error {
	data, err := h.Editor.SerializeJSON()
	if err != nil {
		return err
	}
	if indent {
		data = pretty.Pretty(data)
	} else {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}

// Import replaces surface content with the JSON written by Serialize and
// saves the document. It returns the number of surfaces updated.
func (h *Headless) Import(data []byte) (int, error) {
	n, err := h.Editor.Load(data)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: no surface key in the input", ErrNoSurfaces)
	}
	return n, h.Doc.Save()
}
