// Package toolbar implements the contextual toolbar state machine.
//
// The toolbar is in one of three states: Hidden, ActionsVisible or
// FormVisible. CheckSelection is the single entry point that reconciles the
// state with the live selection; it is a no-op while a form keeps the
// toolbar alive or while selection updates are paused. Showing the actions
// panel is deferred by the configured delay, and the show and hide hooks
// fire once per real transition.
//
// Positioning has two modes. A floating toolbar is centred over the
// selection and clamped to the viewport; a static toolbar is pinned to its
// surface, optionally sticking to the viewport top while the surface
// scrolls past.
package toolbar
