// Package memhost is an in-memory Host over golang.org/x/net/html trees.
//
// It implements the native editing commands the engine relies on
// (formatBlock, createLink, unlink, indent, outdent, insertHTML, the inline
// formatting toggles, lists and justification) directly on the node tree,
// dispatches synthetic events with capture and bubble phases, lays text out
// on a fixed character grid, and runs deferred callbacks on a virtual clock
// unless another scheduler is supplied.
//
// memhost backs the engine's tests and the terminal frontend.
package memhost
