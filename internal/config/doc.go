// Package config defines the format-agnostic graph description model and
// the Loader interface that front ends implement to produce it.
//
// A Model is a plain record of builder calls: which pass libraries to load,
// which passes to create with what configuration, how to wire them and what
// to expose. Apply replays those calls against a registry and a new graph.
// FromGraph goes the other way and describes a live graph, so that it can be
// written back out by a front end.
package config
