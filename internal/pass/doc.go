// Package pass defines the contract between the render-graph engine and the
// opaque units of per-frame work it schedules.
//
// A pass is a capability set rather than a class hierarchy:
//
//   - Reflect declares the pass's input and output ports;
//   - configuration is applied once, by the factory that built the pass;
//   - Execute reads resolved input bindings and writes into the storage the
//     allocator assigned to the pass's outputs.
//
// Optional capabilities are expressed as small interfaces (Compiler,
// Resetter, Scriptable) that the engine discovers with type assertions.
package pass
