// Package lua loads toolbar extensions written in Lua.
//
// A script becomes a command by defining global functions. The functions
// present decide the command's capabilities:
//
//	getButton()            button face: a label string or a table with
//	                       label, aria, action, tag and markup fields
//	getForm()              form panel: a placeholder string or a table
//	queryCommandState()    native state; return nil when unsupported
//	checkState(node)       inspect an ancestor of the selection
//	isActive(), activate(), deactivate()
//	shouldActivate(node)   whether node means the command is applied
//	onHide()               the toolbar actions were hidden
//	init()                 called once the editor is attached
//	onClick()              the button was clicked
//	hook(name, ...)        any other dispatched hook
//
// Nodes are passed as tables {tag=, text=, attrs={}}. The global stylus
// table exposes the editor:
//
//	stylus.exec(name, value)   run a native editing command
//	stylus.action(name)        run a toolbar action such as "append-h2"
//	stylus.selection()         the selected text
//	stylus.parent()            the element holding the selection
//	stylus.log(msg)            write to the editor log
//
// Scripts run in a sandbox: only the base, table, string and math
// libraries are opened, file loading functions are removed and every call
// is bounded by a timeout.
package lua
