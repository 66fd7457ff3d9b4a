// Package selection saves, restores and classifies the host selection
// relative to the editable surfaces of an editor.
//
// A Snapshot encodes a selection as flat code point offsets into the text of
// one surface. Offsets survive changes to node identity (a command that
// rewraps text in new elements) but not changes to text length. Save and
// Restore share the same iterative pre-order walk, so document nesting depth
// never grows the Go stack.
//
// Classify reports what kind of selection is live. Multi-paragraph detection
// is a markup heuristic over the selected HTML, not a structural block count:
// it counts paragraph, heading and blockquote elements in the cloned
// selection after dropping empty elements.
package selection
