package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/editor"
	"github.com/dshills/stylus/internal/selection"
)

// Document is an HTML file open for editing.
type Document struct {
	// Path is the absolute file path.
	Path string

	// Name is the display name.
	Name string

	// Root is the parsed document node.
	Root *html.Node

	// authored holds the elements that carried contenteditable in the file.
	authored map[*html.Node]bool

	// clean is the rendering at the last save or MarkClean.
	clean []byte
}

// OpenDocument reads and parses the HTML file at path.
func OpenDocument(path string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	f, err := os.Open(absPath)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	defer f.Close()
	return ParseDocument(absPath, f)
}

// ParseDocument parses r as the document stored at path.
func ParseDocument(path string, r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	d := &Document{
		Path:     path,
		Name:     filepath.Base(path),
		Root:     root,
		authored: make(map[*html.Node]bool),
	}
	for _, n := range dom.QueryAll(root, "["+editor.EditableAttr+"]") {
		d.authored[n] = true
	}
	d.MarkClean()
	return d, nil
}

// Surfaces returns the elements matching selector. An empty selector
// matches DefaultSelector, falling back to the body when nothing carries
// the attribute.
func (d *Document) Surfaces(selector string) []*html.Node {
	if selector != "" {
		return dom.QueryAll(d.Root, selector)
	}
	if found := dom.QueryAll(d.Root, DefaultSelector); len(found) > 0 {
		return found
	}
	if body := dom.Body(d.Root); body != nil {
		return []*html.Node{body}
	}
	return nil
}

// Render writes the document without the attributes the editor adds to its
// surfaces.
func (d *Document) Render(w io.Writer) error {
	type removed struct {
		n     *html.Node
		key   string
		value string
	}
	var restore []removed
	for _, n := range dom.QueryAll(d.Root, "["+selection.ElementAttr+"]") {
		keys := []string{selection.ElementAttr}
		if !d.authored[n] {
			keys = append(keys, editor.EditableAttr)
		}
		for _, key := range keys {
			if v, ok := dom.Attr(n, key); ok {
				restore = append(restore, removed{n, key, v})
				dom.RemoveAttr(n, key)
			}
		}
	}
	defer func() {
		for _, r := range restore {
			dom.SetAttr(r.n, r.key, r.value)
		}
	}()
	return html.Render(w, d.Root)
}

func (d *Document) render() []byte {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return nil
	}
	return buf.Bytes()
}

// MarkClean records the current content as unmodified.
func (d *Document) MarkClean() {
	d.clean = d.render()
}

// IsModified reports whether the content differs from the last save.
func (d *Document) IsModified() bool {
	return !bytes.Equal(d.render(), d.clean)
}

// Save writes the document to its path through a temporary file in the
// same directory.
func (d *Document) Save() error {
	data := d.render()
	if data == nil {
		return NewOperationError("save", d.Path, errRender)
	}
	if err := writeFileAtomic(d.Path, data); err != nil {
		return NewOperationError("save", d.Path, err)
	}
	d.clean = data
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, mode); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
