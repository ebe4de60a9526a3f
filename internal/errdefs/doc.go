// Package errdefs defines the error taxonomy shared by the graph builder,
// the validator, the scheduler and the execution engine.
//
// Every error kind is a sentinel that callers match with errors.Is. The
// concrete value returned by the engine is an *Error, which carries the
// names of the pass, port or edge involved so a human editing a graph
// description can find the mistake without looking at engine internals.
//
// Kinds fall into three groups:
//
//   - build-time: returned by the offending builder call
//     (DuplicateName, InvalidName, UnknownPassType, InvalidConfig,
//     UnknownPass, UnknownPort, PortDirectionMismatch, PortAlreadyConnected,
//     PassLibraryNotFound)
//   - validation: returned by compile (UnsatisfiedInput, PortTypeMismatch,
//     CyclicDependency)
//   - runtime: returned by execute (PassExecutionFailed, StalePlan,
//     NotCompiled, FrameInFlight, NoExecutionYet, NotFound)
package errdefs
