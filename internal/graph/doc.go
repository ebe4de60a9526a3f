// Package graph holds the structural description of a render graph: the
// pass instances, the edges between their ports and the ports marked as
// graph outputs.
//
// # Building
//
// Builder calls mirror what a graph description issues:
//
//	g := graph.New("SVGF")
//	g.AddPass(gbuffer, "GBufferRaster")
//	g.AddPass(tracer, "PathTracer")
//	g.AddEdge("GBufferRaster.posW", "PathTracer.posW")
//	g.MarkOutput("PathTracer.color")
//
// Port references are resolved once, when the call is made, into interned
// PortHandle pairs. Every failing call leaves the graph untouched.
//
// # Generations
//
// Every successful structural mutation increments Generation. Compiled
// plans remember the generation they were built from and refuse to run once
// it moves.
//
// # Validation
//
// Validate checks endpoints, format compatibility, required inputs and
// acyclicity, in that order, and returns the pass dependency lists the
// scheduler consumes. It never mutates the graph.
package graph
