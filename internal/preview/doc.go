// Package preview shows a floating preview of a link's target while the
// pointer rests on the link.
//
// The engine moves between three states. A qualifying hover starts
// Tracking and schedules a check after the show delay; if the pointer is
// still over the link the preview becomes Visible and a 200ms poll watches
// for the pointer leaving both the link and the preview. Once it has been
// gone longer than the hide delay the engine returns to Idle, cancelling
// the poll and removing every hover listener it added.
package preview
