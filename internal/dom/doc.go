// Package dom provides the tree primitives the editing engine works with.
//
// Documents are golang.org/x/net/html node trees owned by the host. This
// package never keeps state of its own; it offers:
//
//   - node helpers (tag and attribute access, class lists, text content)
//   - an iterative pre-order Walker with an explicit stack, so traversal depth
//     does not depend on document nesting
//   - Range and Point, the container/offset pairs a selection is made of
//   - text offset conversion between boundary points and flat character
//     offsets relative to a root node
//   - geometry types (Rect, Size, Viewport) used for toolbar positioning
//
// Character offsets count Unicode code points.
package dom
