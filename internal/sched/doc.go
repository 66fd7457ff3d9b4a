// Package sched provides deferred callbacks for the editing engine.
//
// All engine work runs on a single UI loop. A Scheduler hands out
// cancellable Task handles for one-shot (AfterFunc) and recurring (Every)
// callbacks. Two implementations are provided:
//
//   - Virtual: a deterministic clock advanced explicitly. Used by tests and
//     by the in-memory host.
//   - Loop: a real-time scheduler that serialises timer callbacks and posted
//     functions onto the goroutine running Loop.Run.
//
// Throttle coalesces high-frequency calls (resize, blur) to at most one
// leading and one trailing invocation per window, and TaskSet tracks every
// task an owner has scheduled so they can be cancelled together.
package sched
