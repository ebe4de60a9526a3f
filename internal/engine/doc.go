// Package engine compiles a graph into a plan and runs the plan once per
// frame.
//
// Compile validates the graph, orders its passes and binds every port to
// storage. The resulting Plan is tied to the graph generation it was built
// from and refuses to run once the graph changes. Plan.Execute runs one frame
// and, on success, publishes a deep-copied snapshot of the marked outputs.
//
// Engine wraps a graph and its current plan in the
// Uncompiled -> Compiled -> Executing -> Compiled state machine.
package engine
