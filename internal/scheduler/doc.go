// Package scheduler orders the passes of a validated graph.
//
// Ordering is Kahn's algorithm with the ready set kept in a min-heap keyed by
// graph insertion index, so the same graph always yields the same sequence.
// Each pass also gets a level: the length of the longest producer chain that
// ends at it. Passes sharing a level have no dependency on one another and
// may be dispatched together.
package scheduler
