// Package command holds the toolbar commands of an editor and dispatches
// lifecycle hooks to them.
//
// A command is any value with a Name. Everything else it can do is optional
// and expressed through one small interface per capability: providing a
// button, providing a form, answering a native state query, checking state
// against an ancestor node, toggling an active flag, reacting to the toolbar
// hiding, initialising against the editor, and receiving arbitrary named
// hooks. The registry computes a Capability bitset for each command once at
// registration, so dispatch loops test bits instead of probing values on
// every call.
//
// Built-in commands are DefaultButton values described by the Buttons table.
// Host extensions are registered alongside them; an extension named in the
// button list replaces the built-in of the same name, and extensions not
// named in the list are still initialised but contribute no button.
package command
