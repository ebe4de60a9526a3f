// Package allocator binds every port of a scheduled graph to storage.
//
// Output ports get a resource.Buffer over a backing resource.Slot. Each
// output has a lifetime measured in steps, from the step of its producer to
// the step of its last consumer. Outputs the caller will read after the
// frame, and outputs feeding a marked input, live until the end of the frame.
// A slot is reused by a later output only when the previous tenant's
// lifetime ends strictly before the new one starts and both need the same
// number of values.
//
// Steps are plan positions for sequential execution and dependency levels
// for parallel execution, so passes dispatched together never share storage.
package allocator
