// Package editor wires the editing engine together for a set of surfaces.
//
// An Editor owns one selection coordinator, command registry, toolbar,
// link form and anchor preview. New activates it: surfaces become
// editable, listeners are bound through a single event.Binder and every
// deferred callback is recorded in one sched.TaskSet. Deactivate removes
// all of it synchronously, so no callback scheduled before deactivation
// can touch the document afterwards.
//
// Event routing:
//
//	document mouseup, surface keyup/blur/click  -> toolbar.ScheduleCheck
//	surface keydown/keypress/keyup               -> block policies
//	window resize (throttled), scroll (sticky)   -> toolbar reposition
//	body click/focus outside the editor          -> throttled hide
//	toolbar button click                         -> command click handler
//
// The Editor implements command.Env, so commands run toolbar actions
// through ExecAction.
package editor
