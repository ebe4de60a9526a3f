// Package publish sends per-frame summaries of a graph's outputs to an
// external viewer. Summaries carry shape and checksum only, never texel
// data.
package publish
