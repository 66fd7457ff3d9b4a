// Package term runs an editor in a terminal.
//
// Host extends the in-memory host with terminal metrics: the document is
// laid out on a grid of CellWidth x CellHeight pixels and every engine
// element is measured from its labels, so the engine's pixel geometry maps
// one to one onto screen cells. Session owns a tcell screen and translates
// its key, mouse and resize events into host input, redrawing the
// document, the toolbar, the link form and the anchor preview after each
// event and on a fixed frame interval.
//
// All engine work happens on the goroutine running the session's
// sched.Loop; only PollEvent runs elsewhere.
package term
