// Package event defines the input events the editing engine reacts to and
// the Binder that tracks the engine's listener subscriptions.
//
// Hosts deliver events to listeners registered through Listenable.Listen.
// The engine never registers listeners directly; it goes through a Binder,
// which records every subscription so that deactivation can remove all of
// them in one call:
//
//	b := event.NewBinder(host)
//	id := b.On(surface, event.TypeKeyUp, onKeyUp)
//	...
//	b.RemoveAll()
//
// Event targets are either *html.Node values from the document, *ui.Element
// values from the engine's own toolbar and preview, or the Window sentinel.
package event
